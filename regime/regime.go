// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package regime defines the firing regimes that shape synthetic spike trains.

A regime is a maximal interval of a trial during which a neuron's firing
rate is held constant.  Each neuron carries its own ordered sequence of
regimes (a Seq), but the boundaries between regimes are shared across all
neurons in a trial -- that synchronization is what makes the generated data
useful as ground truth for state-change detection.
*/
package regime

import (
	"fmt"

	"github.com/emer/emergent/erand"
)

// Spec defines one firing regime for one neuron: the rate at which the
// neuron fires while the regime is active, and the nominal duration of
// the regime used to place transition boundaries.
type Spec struct {
	Regime      int       `desc:"0-based index of this regime within the trial -- must be sequential within a Seq"`
	Rate        float64   `min:"0" desc:"firing rate while this regime is active, in spikes per unit time"`
	RateChoices []float64 `desc:"optional alternative rates -- when non-empty, one is chosen uniformly at random per trial, replacing Rate"`
	DurMean     float64   `min:"0" desc:"mean duration of this regime, in time units -- used for nominal boundary placement"`
	DurJitter   float64   `min:"0" desc:"standard deviation of the stochastic offset applied to the boundary that ends this regime"`
}

func (sp *Spec) Defaults() {
	sp.Rate = 1
	sp.DurMean = 100
}

// Validate returns an *InvalidRegimeError if any static parameter is
// out of range.  Bad parameters are rejected here, never retried.
func (sp *Spec) Validate() error {
	if sp.Rate < 0 {
		return &InvalidRegimeError{Regime: sp.Regime, Field: "Rate", Val: sp.Rate}
	}
	for _, rc := range sp.RateChoices {
		if rc < 0 {
			return &InvalidRegimeError{Regime: sp.Regime, Field: "RateChoices", Val: rc}
		}
	}
	if sp.DurMean <= 0 {
		return &InvalidRegimeError{Regime: sp.Regime, Field: "DurMean", Val: sp.DurMean}
	}
	if sp.DurJitter < 0 {
		return &InvalidRegimeError{Regime: sp.Regime, Field: "DurJitter", Val: sp.DurJitter}
	}
	return nil
}

// TrialRate resolves the firing rate to use for one trial: Rate, or a
// uniform choice among RateChoices when any are given.
func (sp *Spec) TrialRate(rnd erand.Rand) float64 {
	if len(sp.RateChoices) > 0 {
		return sp.RateChoices[rnd.Intn(len(sp.RateChoices), -1)]
	}
	return sp.Rate
}

// Seq is the ordered sequence of regimes for one neuron across a trial.
type Seq []Spec

// NewSeq returns a Seq with one regime per given rate, all with the same
// duration parameters, with Regime indices filled in.
func NewSeq(rates []float64, durMean, durJitter float64) Seq {
	sq := make(Seq, len(rates))
	for i, r := range rates {
		sq[i] = Spec{Regime: i, Rate: r, DurMean: durMean, DurJitter: durJitter}
	}
	return sq
}

// Validate checks every Spec and that Regime indices are sequential from 0.
func (sq Seq) Validate() error {
	if len(sq) == 0 {
		return fmt.Errorf("regime.Seq: empty -- at least one regime is required")
	}
	for i := range sq {
		if sq[i].Regime != i {
			return &InvalidRegimeError{Regime: sq[i].Regime, Field: "Regime", Val: float64(i)}
		}
		if err := sq[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TrialRates resolves the per-regime rates for one trial.
func (sq Seq) TrialRates(rnd erand.Rand) []float64 {
	rts := make([]float64, len(sq))
	for i := range sq {
		rts[i] = sq[i].TrialRate(rnd)
	}
	return rts
}

// InvalidRegimeError reports a regime parameter that is out of range.
type InvalidRegimeError struct {
	Regime int     // regime index
	Field  string  // offending field
	Val    float64 // offending value
}

func (e *InvalidRegimeError) Error() string {
	return fmt.Sprintf("regime %d: invalid %s: %g", e.Regime, e.Field, e.Val)
}
