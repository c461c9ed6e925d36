// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sched generates the transition schedule for one trial: the ordered
times at which every neuron in the trial switches to its next firing regime.

Transitions are synchronized across neurons but stochastic across trials:
each nominal boundary gets an independent zero-mean perturbation, re-sampled
(up to MaxTries) whenever it would break strict ordering or fall outside the
trial, so a schedule is always 0 < t_1 < t_2 < ... < trial length.
*/
package sched

import (
	"fmt"

	"github.com/emer/emergent/erand"
	"github.com/nmlab/synspike/regime"
)

// Params specifies how to generate a transition schedule.
type Params struct {
	NRegimes    int             `min:"1" desc:"number of regimes in a trial -- yields NRegimes-1 transition times, 0 for the degenerate single-regime control"`
	TrialLen    float64         `min:"0" def:"1000" desc:"total trial length, in time units"`
	Nominal     []float64       `desc:"explicit nominal transition times -- when nil, boundaries are evenly spaced at i*TrialLen/NRegimes"`
	Jitter      erand.RndParams `view:"inline" desc:"zero-mean perturbation added to each nominal boundary -- for Gaussian, Var is the standard deviation"`
	BoundJitter []float64       `desc:"optional per-boundary jitter magnitude overriding Jitter.Var, e.g. from regime duration jitters"`
	MaxTries    int             `def:"100" desc:"times to re-sample a perturbation that breaks ordering or range before failing"`
}

func (sp *Params) Defaults() {
	sp.NRegimes = 2
	sp.TrialLen = 1000
	sp.Jitter.Dist = erand.Gaussian
	sp.Jitter.Mean = 0
	sp.Jitter.Var = 0
	sp.MaxTries = 100
}

func (sp *Params) Validate() error {
	if sp.NRegimes < 1 {
		return fmt.Errorf("sched.Params: NRegimes must be >= 1, got %d", sp.NRegimes)
	}
	if sp.TrialLen <= 0 {
		return fmt.Errorf("sched.Params: TrialLen must be > 0, got %g", sp.TrialLen)
	}
	if sp.MaxTries <= 0 {
		return fmt.Errorf("sched.Params: MaxTries must be > 0, got %d", sp.MaxTries)
	}
	if sp.Jitter.Var < 0 {
		return fmt.Errorf("sched.Params: Jitter.Var must be >= 0, got %g", sp.Jitter.Var)
	}
	if sp.Nominal != nil && len(sp.Nominal) != sp.NRegimes-1 {
		return fmt.Errorf("sched.Params: %d nominal boundaries for %d regimes -- need NRegimes-1", len(sp.Nominal), sp.NRegimes)
	}
	if sp.BoundJitter != nil && len(sp.BoundJitter) != sp.NRegimes-1 {
		return fmt.Errorf("sched.Params: %d per-boundary jitters for %d regimes -- need NRegimes-1", len(sp.BoundJitter), sp.NRegimes)
	}
	return nil
}

// FromRegimes sets NRegimes, TrialLen, Nominal and BoundJitter from the
// duration parameters of the given regime sequence: the trial is the sum of
// mean durations, boundary i sits at the cumulative duration through regime
// i, and its jitter is that regime's DurJitter.  Jitter.Dist is left as
// configured (call Defaults first for the standard Gaussian).
func (sp *Params) FromRegimes(rs regime.Seq) error {
	if err := rs.Validate(); err != nil {
		return err
	}
	sp.NRegimes = len(rs)
	nb := len(rs) - 1
	sp.Nominal = make([]float64, nb)
	sp.BoundJitter = make([]float64, nb)
	cum := 0.0
	for i := range rs {
		cum += rs[i].DurMean
		if i < nb {
			sp.Nominal[i] = cum
			sp.BoundJitter[i] = rs[i].DurJitter
		}
	}
	sp.TrialLen = cum
	return nil
}

// NominalBounds returns the nominal transition times: Nominal when given,
// otherwise NRegimes-1 evenly spaced boundaries across TrialLen.
func (sp *Params) NominalBounds() []float64 {
	if sp.Nominal != nil {
		return sp.Nominal
	}
	nb := sp.NRegimes - 1
	bnds := make([]float64, nb)
	for i := 0; i < nb; i++ {
		bnds[i] = float64(i+1) * sp.TrialLen / float64(sp.NRegimes)
	}
	return bnds
}

// Gen generates one transition schedule using the given random source.
// Identical params and source state always produce the identical schedule.
// Each boundary is perturbed independently; a perturbation that would make
// the boundary <= its predecessor or fall outside (0, TrialLen) is
// re-sampled up to MaxTries, after which a *GenError is returned (a loud
// failure beats silently clamping a misconfigured jitter).
func (sp *Params) Gen(rnd erand.Rand) (Schedule, error) {
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	nb := sp.NRegimes - 1
	if nb == 0 {
		return Schedule{}, nil // single-regime negative control
	}
	nom := sp.NominalBounds()
	ts := make(Schedule, nb)
	prev := 0.0
	for i := 0; i < nb; i++ {
		jp := sp.Jitter
		if sp.BoundJitter != nil {
			jp.Var = sp.BoundJitter[i]
		}
		ok := false
		for try := 0; try < sp.MaxTries; try++ {
			t := nom[i] + jp.Gen(-1, rnd)
			if t > prev && t < sp.TrialLen {
				ts[i] = t
				prev = t
				ok = true
				break
			}
		}
		if !ok {
			return nil, &GenError{Bound: i, Nominal: nom[i], Tries: sp.MaxTries}
		}
	}
	return ts, nil
}

// Schedule is the ordered sequence of transition times for one trial,
// strictly increasing within (0, trial length).  An empty Schedule is the
// valid degenerate case of a single-regime trial.
type Schedule []float64

// Validate checks strict ordering within (0, trialLen).
func (ts Schedule) Validate(trialLen float64) error {
	prev := 0.0
	for i, t := range ts {
		if t <= prev || t >= trialLen {
			return fmt.Errorf("sched.Schedule: boundary %d at %g is not strictly within (%g, %g)", i, t, prev, trialLen)
		}
		prev = t
	}
	return nil
}

// RegimeAt returns the index of the regime active at time t, using the
// half-open convention [t_i, t_i+1): a time exactly on a boundary belongs
// to the new regime.
func (ts Schedule) RegimeAt(t float64) int {
	ri := 0
	for ri < len(ts) && t >= ts[ri] {
		ri++
	}
	return ri
}

// StateSeq returns the per-timestep regime labels for nSteps steps of the
// given width: the ground-truth state assignment sequence.
func (ts Schedule) StateSeq(nSteps int, timeStep float64) []int {
	st := make([]int, nSteps)
	ri := 0
	for si := 0; si < nSteps; si++ {
		t := float64(si) * timeStep
		for ri < len(ts) && t >= ts[ri] {
			ri++
		}
		st[si] = ri
	}
	return st
}

// GenError is returned when jittering could not produce a strictly ordered,
// in-range boundary within MaxTries re-samples.  It is not retried here:
// the fix is configuration (smaller jitter or wider regime spacing).
type GenError struct {
	Bound   int     // index of the failing boundary
	Nominal float64 // its nominal time
	Tries   int     // re-samples attempted
}

func (e *GenError) Error() string {
	return fmt.Sprintf("sched: boundary %d (nominal %g) could not be ordered after %d tries", e.Bound, e.Nominal, e.Tries)
}
