// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikes

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/emer/emergent/erand"
	"github.com/emer/etable/etensor"
	"github.com/nmlab/synspike/regime"
	"github.com/nmlab/synspike/sched"
)

// BatchParams configures generation of a full dataset of trials.
type BatchParams struct {
	NTrials     int          `min:"1" desc:"number of independent trials to generate"`
	NNeurons    int          `min:"1" desc:"number of neurons per trial"`
	MasterSeed  int64        `desc:"master random seed -- the sole source from which every per-trial substream is derived"`
	NWorkers    int          `desc:"parallel worker goroutines for batch generation -- 0 = GOMAXPROCS"`
	Categorical bool         `desc:"keep at most one spiking neuron per timestep, chosen uniformly among those that spiked -- requires BinarySpikes mode"`
	Sched       sched.Params `view:"inline" desc:"transition schedule parameters, shared by all trials"`
	Gen         GenParams    `view:"inline" desc:"spike sampling parameters"`
	Regimes     []regime.Seq `desc:"per-neuron regime sequences -- length NNeurons, each of length Sched.NRegimes"`
}

func (bp *BatchParams) Defaults() {
	bp.NTrials = 1
	bp.NNeurons = 1
	bp.Sched.Defaults()
	bp.Gen.Defaults()
	bp.Update()
}

// Update keeps derived parameters consistent: the sampling trial length
// always follows the schedule's.
func (bp *BatchParams) Update() {
	bp.Gen.TrialLen = bp.Sched.TrialLen
}

func (bp *BatchParams) Validate() error {
	if bp.NTrials < 1 {
		return fmt.Errorf("spikes.BatchParams: NTrials must be >= 1, got %d", bp.NTrials)
	}
	if bp.NNeurons < 1 {
		return fmt.Errorf("spikes.BatchParams: NNeurons must be >= 1, got %d", bp.NNeurons)
	}
	if err := bp.Sched.Validate(); err != nil {
		return err
	}
	if err := bp.Gen.Validate(); err != nil {
		return err
	}
	if bp.Gen.TrialLen != bp.Sched.TrialLen {
		return fmt.Errorf("spikes.BatchParams: Gen.TrialLen %g != Sched.TrialLen %g -- call Update", bp.Gen.TrialLen, bp.Sched.TrialLen)
	}
	if bp.Categorical && bp.Gen.Mode != BinarySpikes {
		return fmt.Errorf("spikes.BatchParams: Categorical requires BinarySpikes mode")
	}
	if len(bp.Regimes) != bp.NNeurons {
		return fmt.Errorf("spikes.BatchParams: %d regime sequences for %d neurons", len(bp.Regimes), bp.NNeurons)
	}
	for n, rs := range bp.Regimes {
		if len(rs) != bp.Sched.NRegimes {
			return fmt.Errorf("spikes.BatchParams: neuron %d has %d regimes, schedule has %d", n, len(rs), bp.Sched.NRegimes)
		}
		if err := rs.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TrialSeed returns the random seed for the given trial index, derived
// additively from the master seed with a stride that keeps the per-neuron
// substream seeds of different trials disjoint.  Within a trial, the
// schedule stream sits at the trial seed, neuron n at trial seed + 1 + n,
// and the categorical stream after the neurons.
func (bp *BatchParams) TrialSeed(trial int) int64 {
	return bp.MasterSeed + int64(trial)*int64(bp.NNeurons+2)
}

// GenTrial generates the trial at the given index, alone, from its derived
// substreams.  The result is identical to the same trial generated as part
// of a full batch: trial content never depends on generation order.
func GenTrial(bp *BatchParams, idx int) (*Trial, error) {
	if err := bp.Validate(); err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, fmt.Errorf("spikes.GenTrial: trial index must be >= 0, got %d", idx)
	}
	tseed := bp.TrialSeed(idx)
	ts, err := bp.Sched.Gen(erand.NewSysRand(tseed))
	if err != nil {
		return nil, err
	}
	nst := bp.Gen.NSteps()
	spk := &etensor.Float32{}
	spk.SetShape([]int{bp.NNeurons, nst}, nil, []string{"Neuron", "Step"})
	rates := make([][]float64, bp.NNeurons)
	for n := 0; n < bp.NNeurons; n++ {
		nrnd := erand.NewSysRand(tseed + 1 + int64(n))
		rts := bp.Regimes[n].TrialRates(nrnd)
		tr, err := GenRates(rts, ts, &bp.Gen, nrnd)
		if err != nil {
			return nil, err
		}
		copy(spk.Values[n*nst:(n+1)*nst], tr.Values)
		rates[n] = rts
	}
	trl := &Trial{Idx: idx, Schedule: ts, Rates: rates, Spikes: spk}
	if bp.Categorical {
		trl.categorize(erand.NewSysRand(tseed + 1 + int64(bp.NNeurons)))
	}
	return trl, nil
}

// GenDataset generates the full dataset, running trials across NWorkers
// goroutines.  Each trial owns its derived substreams, so workers share no
// mutable state and two calls with the same params produce bit-identical
// datasets.  Any per-trial failure aborts the batch with a
// *DatasetGenError naming the failing trial -- no partial dataset is
// returned.
func GenDataset(bp *BatchParams) (*Dataset, error) {
	if err := bp.Validate(); err != nil {
		return nil, err
	}
	nw := bp.NWorkers
	if nw <= 0 {
		nw = runtime.GOMAXPROCS(0)
	}
	if nw > bp.NTrials {
		nw = bp.NTrials
	}
	trls := make([]*Trial, bp.NTrials)
	errs := make([]error, nw)
	var wg sync.WaitGroup
	for w := 0; w < nw; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for ti := w; ti < bp.NTrials; ti += nw {
				trl, err := GenTrial(bp, ti)
				if err != nil {
					errs[w] = &DatasetGenError{Trial: ti, Err: err}
					return
				}
				trls[ti] = trl
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return &Dataset{Params: *bp, Trials: trls}, nil
}

// DatasetGenError wraps a per-trial generation failure with the index of
// the failing trial.  The whole batch fails: a silently partial dataset
// would poison any downstream evaluation.
type DatasetGenError struct {
	Trial int   // failing trial index
	Err   error // underlying failure
}

func (e *DatasetGenError) Error() string {
	return fmt.Sprintf("spikes: generating trial %d: %v", e.Trial, e.Err)
}

func (e *DatasetGenError) Unwrap() error {
	return e.Err
}
