// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sched

import (
	"errors"
	"testing"

	"github.com/emer/emergent/erand"
	"github.com/nmlab/synspike/regime"
)

func TestZeroJitterExact(t *testing.T) {
	sp := Params{}
	sp.Defaults()
	sp.NRegimes = 2
	sp.TrialLen = 1000
	ts, err := sp.Gen(erand.NewSysRand(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 1 || ts[0] != 500 {
		t.Errorf("zero-jitter even spacing: got %v, want [500]", ts)
	}
}

func TestDegenerate(t *testing.T) {
	sp := Params{}
	sp.Defaults()
	sp.NRegimes = 1
	ts, err := sp.Gen(erand.NewSysRand(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 0 {
		t.Errorf("single-regime trial has %d transitions, want 0", len(ts))
	}
}

func TestMonotonic(t *testing.T) {
	sp := Params{}
	sp.Defaults()
	sp.NRegimes = 5
	sp.TrialLen = 1000
	sp.Jitter.Var = 30
	for seed := int64(0); seed < 50; seed++ {
		ts, err := sp.Gen(erand.NewSysRand(seed))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if len(ts) != 4 {
			t.Fatalf("seed %d: %d transitions, want 4", seed, len(ts))
		}
		if err := ts.Validate(sp.TrialLen); err != nil {
			t.Errorf("seed %d: %v", seed, err)
		}
	}
}

func TestDeterminism(t *testing.T) {
	sp := Params{}
	sp.Defaults()
	sp.NRegimes = 4
	sp.Jitter.Var = 25
	a, err := sp.Gen(erand.NewSysRand(99))
	if err != nil {
		t.Fatal(err)
	}
	b, err := sp.Gen(erand.NewSysRand(99))
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("boundary %d differs across identical seeds: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestGenError(t *testing.T) {
	sp := Params{}
	sp.Defaults()
	sp.NRegimes = 3
	sp.TrialLen = 1000
	sp.Nominal = []float64{600, 400} // unorderable with zero jitter
	_, err := sp.Gen(erand.NewSysRand(1))
	if err == nil {
		t.Fatal("unorderable nominal boundaries accepted")
	}
	var ge *GenError
	if !errors.As(err, &ge) {
		t.Fatalf("error is %T, not *GenError", err)
	}
	if ge.Bound != 1 {
		t.Errorf("failing boundary %d, want 1", ge.Bound)
	}
}

func TestRegimeAt(t *testing.T) {
	ts := Schedule{500}
	cases := []struct {
		t    float64
		want int
	}{
		{0, 0},
		{499, 0},
		{499.999, 0},
		{500, 1}, // boundary belongs to the new regime
		{999, 1},
	}
	for _, c := range cases {
		if got := ts.RegimeAt(c.t); got != c.want {
			t.Errorf("RegimeAt(%v) = %d, want %d", c.t, got, c.want)
		}
	}
	if got := (Schedule{}).RegimeAt(123); got != 0 {
		t.Errorf("empty schedule RegimeAt = %d, want 0", got)
	}
}

func TestStateSeq(t *testing.T) {
	ts := Schedule{2, 5}
	st := ts.StateSeq(8, 1)
	want := []int{0, 0, 1, 1, 1, 2, 2, 2}
	for i := range want {
		if st[i] != want[i] {
			t.Errorf("state[%d] = %d, want %d", i, st[i], want[i])
		}
	}
}

func TestFromRegimes(t *testing.T) {
	sq := regime.Seq{
		{Regime: 0, Rate: 5, DurMean: 100, DurJitter: 3},
		{Regime: 1, Rate: 10, DurMean: 200, DurJitter: 7},
		{Regime: 2, Rate: 1, DurMean: 50},
	}
	sp := Params{}
	sp.Defaults()
	if err := sp.FromRegimes(sq); err != nil {
		t.Fatal(err)
	}
	if sp.NRegimes != 3 || sp.TrialLen != 350 {
		t.Errorf("NRegimes %d TrialLen %g, want 3, 350", sp.NRegimes, sp.TrialLen)
	}
	if sp.Nominal[0] != 100 || sp.Nominal[1] != 300 {
		t.Errorf("nominal %v, want [100 300]", sp.Nominal)
	}
	if sp.BoundJitter[0] != 3 || sp.BoundJitter[1] != 7 {
		t.Errorf("bound jitter %v, want [3 7]", sp.BoundJitter)
	}
	if err := sp.Validate(); err != nil {
		t.Errorf("derived params invalid: %v", err)
	}
}
