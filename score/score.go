// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package score evaluates change-point estimates against the ground-truth
transition schedules of a generated dataset.

Matching is one-to-one nearest-neighbor within a tolerance window: each
estimate can be credited to at most one true transition, with ties broken
by smallest absolute error and then earliest estimate.  Unmatched true
transitions are false negatives; unmatched estimates are false positives.
*/
package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"github.com/nmlab/synspike/spikes"
)

// Estimates maps trial index to the estimated transition times for that
// trial, in the same time units as generation.  Produced by an external
// detection model; trials without an entry are scored as all-missed.
type Estimates map[int][]float64

// Params configure scoring.
type Params struct {
	Tol float64 `min:"0" def:"20" desc:"tolerance window: an estimate within this distance of a true transition may be matched to it"`
}

func (sp *Params) Defaults() {
	sp.Tol = 20
}

func (sp *Params) Validate() error {
	if sp.Tol <= 0 {
		return fmt.Errorf("score.Params: Tol must be > 0, got %g", sp.Tol)
	}
	return nil
}

// TrialScore is the per-trial breakdown of matching results.
type TrialScore struct {
	Trial     int       `desc:"trial index"`
	NTrue     int       `desc:"number of true transitions"`
	NEst      int       `desc:"number of estimates supplied"`
	NMatched  int       `desc:"estimates matched to true transitions within tolerance"`
	NFalseNeg int       `desc:"true transitions with no matched estimate"`
	NFalsePos int       `desc:"estimates not matched to any true transition"`
	Errs      []float64 `desc:"signed error (matched estimate - true time) per true transition, NaN where missed"`
	AbsErrSum float64   `desc:"sum of absolute errors over matched transitions"`
}

// MAE returns the mean absolute error over this trial's matched
// transitions, 0 if none matched.
func (ts *TrialScore) MAE() float64 {
	if ts.NMatched == 0 {
		return 0
	}
	return ts.AbsErrSum / float64(ts.NMatched)
}

// Report holds per-trial and aggregate scoring results.  It is derived and
// recomputable; nothing mutates it after Score returns.
type Report struct {
	Tol      float64      `desc:"tolerance window the report was computed with"`
	Trials   []TrialScore `desc:"per-trial breakdown, in trial order"`
	MAE      float64      `desc:"mean absolute error over all matched transitions"`
	FNRate   float64      `desc:"false negatives / true transitions"`
	FPRate   float64      `desc:"false positives / estimates supplied"`
	ErrRange minmax.F64   `desc:"range of signed errors over matched transitions"`
}

// Score compares the given estimates against the dataset's ground truth.
// Every trial in the dataset is scored; estimates referencing a trial index
// absent from the dataset fail with *InputMismatchError.
func Score(ds *spikes.Dataset, est Estimates, prm *Params) (*Report, error) {
	if err := prm.Validate(); err != nil {
		return nil, err
	}
	nt := ds.NTrials()
	for ti := range est {
		if ti < 0 || ti >= nt {
			return nil, &InputMismatchError{Trial: ti, NTrials: nt}
		}
	}
	rp := &Report{Tol: prm.Tol, Trials: make([]TrialScore, nt)}
	rp.ErrRange.SetInfinity()
	nTrue, nEst, nFN, nFP, nMatch := 0, 0, 0, 0, 0
	for ti := 0; ti < nt; ti++ {
		tsc := matchTrial(ti, ds.Trial(ti).Schedule, est[ti], prm.Tol)
		rp.Trials[ti] = tsc
		nTrue += tsc.NTrue
		nEst += tsc.NEst
		nFN += tsc.NFalseNeg
		nFP += tsc.NFalsePos
		nMatch += tsc.NMatched
		rp.MAE += tsc.AbsErrSum
		for _, e := range tsc.Errs {
			if !math.IsNaN(e) {
				rp.ErrRange.FitValInRange(e)
			}
		}
	}
	if nMatch > 0 {
		rp.MAE /= float64(nMatch)
	}
	if nTrue > 0 {
		rp.FNRate = float64(nFN) / float64(nTrue)
	}
	if nEst > 0 {
		rp.FPRate = float64(nFP) / float64(nEst)
	}
	return rp, nil
}

// cand is one (true transition, estimate) pairing within tolerance.
type cand struct {
	abs float64 // |err|
	err float64 // signed err
	ei  int     // estimate index
	ti  int     // true transition index
}

// matchTrial does one-to-one nearest-neighbor matching for one trial.
func matchTrial(trial int, truth, ests []float64, tol float64) TrialScore {
	tsc := TrialScore{Trial: trial, NTrue: len(truth), NEst: len(ests)}
	tsc.Errs = make([]float64, len(truth))
	for i := range tsc.Errs {
		tsc.Errs[i] = math.NaN()
	}
	var cands []cand
	for ti, tt := range truth {
		for ei, et := range ests {
			err := et - tt
			if math.Abs(err) <= tol {
				cands = append(cands, cand{abs: math.Abs(err), err: err, ei: ei, ti: ti})
			}
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].abs != cands[j].abs {
			return cands[i].abs < cands[j].abs
		}
		if cands[i].ei != cands[j].ei {
			return cands[i].ei < cands[j].ei
		}
		return cands[i].ti < cands[j].ti
	})
	usedT := make([]bool, len(truth))
	usedE := make([]bool, len(ests))
	for _, c := range cands {
		if usedT[c.ti] || usedE[c.ei] {
			continue
		}
		usedT[c.ti] = true
		usedE[c.ei] = true
		tsc.Errs[c.ti] = c.err
		tsc.AbsErrSum += c.abs
		tsc.NMatched++
	}
	tsc.NFalseNeg = len(truth) - tsc.NMatched
	tsc.NFalsePos = len(ests) - tsc.NMatched
	return tsc
}

// Table returns the per-trial breakdown as a table, one row per trial.
func (rp *Report) Table() *etable.Table {
	dt := &etable.Table{}
	dt.SetMetaData("name", "ScoreReport")
	dt.SetMetaData("desc", "per-trial change-point scoring breakdown")
	dt.SetMetaData("read-only", "true")
	sch := etable.Schema{
		{"Trial", etensor.INT64, nil, nil},
		{"NTrue", etensor.INT64, nil, nil},
		{"NEst", etensor.INT64, nil, nil},
		{"NMatched", etensor.INT64, nil, nil},
		{"NFalseNeg", etensor.INT64, nil, nil},
		{"NFalsePos", etensor.INT64, nil, nil},
		{"MAE", etensor.FLOAT64, nil, nil},
	}
	dt.SetFromSchema(sch, len(rp.Trials))
	for i := range rp.Trials {
		tsc := &rp.Trials[i]
		dt.SetCellFloat("Trial", i, float64(tsc.Trial))
		dt.SetCellFloat("NTrue", i, float64(tsc.NTrue))
		dt.SetCellFloat("NEst", i, float64(tsc.NEst))
		dt.SetCellFloat("NMatched", i, float64(tsc.NMatched))
		dt.SetCellFloat("NFalseNeg", i, float64(tsc.NFalseNeg))
		dt.SetCellFloat("NFalsePos", i, float64(tsc.NFalsePos))
		dt.SetCellFloat("MAE", i, tsc.MAE())
	}
	return dt
}

// InputMismatchError reports estimates referencing a trial index that is
// not in the dataset being scored.
type InputMismatchError struct {
	Trial   int // offending trial index
	NTrials int // trials in the dataset
}

func (e *InputMismatchError) Error() string {
	return fmt.Sprintf("score: estimates reference trial %d, dataset has %d trials", e.Trial, e.NTrials)
}
