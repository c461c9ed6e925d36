// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikes

import (
	"sort"

	"github.com/emer/emergent/erand"
	"github.com/nmlab/synspike/regime"
	"github.com/nmlab/synspike/sched"
)

// RandomOpts bound the randomized hyperparameters drawn by RandomBatch.
type RandomOpts struct {
	MaxNeurons int     `def:"40" desc:"maximum number of neurons -- actual count is uniform in [2, MaxNeurons]"`
	MaxRegimes int     `def:"6" desc:"maximum number of regimes -- actual count is uniform in [1, MaxRegimes]"`
	MaxRate    float64 `def:"0.01" desc:"maximum per-step firing probability for any neuron in any regime"`
	TrialLen   float64 `def:"1000" desc:"trial length, in time units"`
	TimeStep   float64 `def:"1" desc:"timestep width, in time units"`
	MinDur     float64 `desc:"minimum spacing between regime boundaries -- 0 = TrialLen/20"`
	JitterStd  float64 `def:"6" desc:"standard deviation of boundary jitter, in time units"`
	MaxTries   int     `def:"100" desc:"times to re-draw a boundary set that violates MinDur spacing"`
}

func (ro *RandomOpts) Defaults() {
	ro.MaxNeurons = 40
	ro.MaxRegimes = 6
	ro.MaxRate = 0.01
	ro.TrialLen = 1000
	ro.TimeStep = 1
	ro.JitterStd = 6
	ro.MaxTries = 100
}

// RandomBatch draws a randomized batch configuration: a random neuron
// count, regime count, per-neuron per-regime rates, and nominal boundaries
// spaced at least MinDur apart (re-drawn as a set until spacing holds).
// Binary spike mode, since rates are per-step probabilities.  The returned
// params have MasterSeed set to the draw seed plus one, so the drawn
// configuration and its trials come from distinct streams.
func RandomBatch(seed int64, ntrials int, ro *RandomOpts) (*BatchParams, error) {
	rnd := erand.NewSysRand(seed)
	minDur := ro.MinDur
	if minDur <= 0 {
		minDur = ro.TrialLen / 20
	}
	maxn := ro.MaxNeurons
	if maxn < 2 {
		maxn = 2
	}
	maxr := ro.MaxRegimes
	if maxr < 1 {
		maxr = 1
	}
	nn := 2 + rnd.Intn(maxn-1, -1)
	nr := 1 + rnd.Intn(maxr, -1)

	nom, err := randBounds(nr-1, minDur, ro, rnd)
	if err != nil {
		return nil, err
	}

	bp := &BatchParams{}
	bp.Defaults()
	bp.NTrials = ntrials
	bp.NNeurons = nn
	bp.MasterSeed = seed + 1
	bp.Sched.NRegimes = nr
	bp.Sched.TrialLen = ro.TrialLen
	bp.Sched.Nominal = nom
	bp.Sched.Jitter.Var = ro.JitterStd
	bp.Gen.TimeStep = ro.TimeStep
	bp.Gen.Mode = BinarySpikes
	bp.Update()

	bp.Regimes = make([]regime.Seq, nn)
	durMean := ro.TrialLen / float64(nr)
	for n := 0; n < nn; n++ {
		rts := make([]float64, nr)
		for ri := 0; ri < nr; ri++ {
			rts[ri] = rnd.Float64(-1) * ro.MaxRate / ro.TimeStep
		}
		bp.Regimes[n] = regime.NewSeq(rts, durMean, ro.JitterStd)
	}
	return bp, nil
}

// randBounds draws nb nominal boundaries uniformly within
// [minDur, TrialLen-minDur], re-drawing the whole set until all adjacent
// gaps (including to the trial edges) are at least minDur.
func randBounds(nb int, minDur float64, ro *RandomOpts, rnd erand.Rand) ([]float64, error) {
	if nb == 0 {
		return nil, nil
	}
	lo := minDur
	hi := ro.TrialLen - minDur
	for try := 0; try < ro.MaxTries; try++ {
		bnds := make([]float64, nb)
		for i := range bnds {
			bnds[i] = lo + rnd.Float64(-1)*(hi-lo)
		}
		sort.Float64s(bnds)
		ok := true
		prev := 0.0
		for _, b := range bnds {
			if b-prev < minDur {
				ok = false
				break
			}
			prev = b
		}
		if ok {
			return bnds, nil
		}
	}
	return nil, &sched.GenError{Bound: nb - 1, Nominal: hi, Tries: ro.MaxTries}
}
