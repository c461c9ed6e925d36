// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regime

import (
	"errors"
	"testing"

	"github.com/emer/emergent/erand"
)

func TestSpecValidate(t *testing.T) {
	sp := Spec{Rate: 5, DurMean: 100}
	if err := sp.Validate(); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}

	bad := []Spec{
		{Rate: -1, DurMean: 100},
		{Rate: 1, DurMean: 0},
		{Rate: 1, DurMean: -5},
		{Rate: 1, DurMean: 100, DurJitter: -1},
		{Rate: 1, DurMean: 100, RateChoices: []float64{0.5, -0.5}},
	}
	for i, sp := range bad {
		err := sp.Validate()
		if err == nil {
			t.Errorf("bad spec %d accepted", i)
			continue
		}
		var ire *InvalidRegimeError
		if !errors.As(err, &ire) {
			t.Errorf("bad spec %d: error is %T, not *InvalidRegimeError", i, err)
		}
	}
}

func TestSeqValidate(t *testing.T) {
	sq := NewSeq([]float64{5, 20, 10}, 100, 0)
	if err := sq.Validate(); err != nil {
		t.Errorf("valid seq rejected: %v", err)
	}
	if err := (Seq{}).Validate(); err == nil {
		t.Errorf("empty seq accepted")
	}
	sq[1].Regime = 5 // out of sequence
	if err := sq.Validate(); err == nil {
		t.Errorf("out-of-sequence regime index accepted")
	}
}

func TestTrialRate(t *testing.T) {
	rnd := erand.NewSysRand(1)
	sp := Spec{Regime: 0, Rate: 5, DurMean: 100}
	for i := 0; i < 10; i++ {
		if r := sp.TrialRate(rnd); r != 5 {
			t.Errorf("fixed rate changed: %v", r)
		}
	}
	sp.RateChoices = []float64{0.3, 0.6}
	seen := map[float64]bool{}
	for i := 0; i < 100; i++ {
		r := sp.TrialRate(rnd)
		if r != 0.3 && r != 0.6 {
			t.Errorf("choice rate %v not among choices", r)
		}
		seen[r] = true
	}
	if len(seen) != 2 {
		t.Errorf("only %d of 2 choices seen in 100 draws", len(seen))
	}
}

func TestTrialRatesDeterminism(t *testing.T) {
	sq := Seq{
		{Regime: 0, RateChoices: []float64{1, 2, 3}, DurMean: 100},
		{Regime: 1, Rate: 5, DurMean: 100},
	}
	a := sq.TrialRates(erand.NewSysRand(42))
	b := sq.TrialRates(erand.NewSysRand(42))
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("rate %d differs across identical seeds: %v vs %v", i, a[i], b[i])
		}
	}
}
