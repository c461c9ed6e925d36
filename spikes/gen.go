// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spikes generates synthetic multi-neuron spike-train datasets with
synchronized state changes: all neurons in a trial shift firing rate at the
same (jittered) transition times, while individual spike realizations remain
independent.  Datasets serve as ground truth for training and validating
state-change detection models.
*/
package spikes

import (
	"fmt"
	"math"

	"github.com/emer/emergent/erand"
	"github.com/emer/etable/etensor"
	"github.com/goki/ki/kit"
	"github.com/nmlab/synspike/regime"
	"github.com/nmlab/synspike/sched"
)

// SpikeModes are the spike sampling modes for each timestep.
type SpikeModes int

//go:generate stringer -type=SpikeModes

var KiT_SpikeModes = kit.Enums.AddEnum(SpikeModesN, kit.NotBitFlag, nil)

func (ev SpikeModes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *SpikeModes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// CountSpikes samples a Poisson spike count per timestep, with mean
	// rate * timestep.
	CountSpikes SpikeModes = iota

	// BinarySpikes samples a single Bernoulli spike per timestep, with
	// probability min(rate * timestep, 1).  Use only when rate * timestep
	// is small -- the cap at 1 spike is what this mode explicitly opts
	// into, instead of a count.
	BinarySpikes

	SpikeModesN
)

// GenParams are the spike sampling parameters for one trial.
type GenParams struct {
	TrialLen float64    `min:"0" def:"1000" desc:"total trial length, in time units -- must match the schedule's"`
	TimeStep float64    `min:"0" def:"1" desc:"width of one discrete timestep, in time units"`
	Mode     SpikeModes `desc:"per-timestep sampling mode: Poisson counts or capped binary spikes"`
}

func (gp *GenParams) Defaults() {
	gp.TrialLen = 1000
	gp.TimeStep = 1
	gp.Mode = CountSpikes
}

func (gp *GenParams) Validate() error {
	if gp.TrialLen <= 0 {
		return fmt.Errorf("spikes.GenParams: TrialLen must be > 0, got %g", gp.TrialLen)
	}
	if gp.TimeStep <= 0 || gp.TimeStep > gp.TrialLen {
		return fmt.Errorf("spikes.GenParams: TimeStep must be in (0, TrialLen], got %g", gp.TimeStep)
	}
	if gp.Mode < 0 || gp.Mode >= SpikeModesN {
		return fmt.Errorf("spikes.GenParams: invalid Mode %d", gp.Mode)
	}
	return nil
}

// NSteps returns the number of discrete timesteps in a trial.
func (gp *GenParams) NSteps() int {
	return int(math.Round(gp.TrialLen / gp.TimeStep))
}

// GenRates samples the spike train for one neuron given its already-resolved
// per-regime firing rates and the trial's shared transition schedule.
// The trace is a pure function of the inputs and the random source state.
// The regime active at step start time t is found by the half-open [t_i,
// t_i+1) convention, so a step starting exactly on a boundary samples from
// the new regime.
func GenRates(rates []float64, ts sched.Schedule, gp *GenParams, rnd erand.Rand) (*etensor.Float32, error) {
	if err := gp.Validate(); err != nil {
		return nil, err
	}
	if len(rates) != len(ts)+1 {
		return nil, fmt.Errorf("spikes: %d rates for %d transitions -- need one rate per regime", len(rates), len(ts))
	}
	if err := ts.Validate(gp.TrialLen); err != nil {
		return nil, err
	}
	nst := gp.NSteps()
	tr := &etensor.Float32{}
	tr.SetShape([]int{nst}, nil, []string{"Step"})
	ri := 0
	for si := 0; si < nst; si++ {
		t := float64(si) * gp.TimeStep
		for ri < len(ts) && t >= ts[ri] {
			ri++
		}
		lam := rates[ri] * gp.TimeStep
		var spk float64
		switch gp.Mode {
		case CountSpikes:
			spk = erand.PoissonGen(lam, -1, rnd)
		case BinarySpikes:
			p := lam
			if p > 1 {
				p = 1
			}
			if rnd.Float64(-1) < p {
				spk = 1
			}
		}
		tr.Values[si] = float32(spk)
	}
	return tr, nil
}

// Gen samples the spike train for one neuron from its regime sequence,
// resolving any per-trial rate choices from the same random source first.
func Gen(rs regime.Seq, ts sched.Schedule, gp *GenParams, rnd erand.Rand) (*etensor.Float32, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return GenRates(rs.TrialRates(rnd), ts, gp, rnd)
}
