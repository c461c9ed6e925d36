// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trialenv

import (
	"testing"

	"github.com/emer/emergent/env"
	"github.com/nmlab/synspike/regime"
	"github.com/nmlab/synspike/spikes"
)

func testDataset(t *testing.T) *spikes.Dataset {
	bp := &spikes.BatchParams{}
	bp.Defaults()
	bp.NTrials = 3
	bp.NNeurons = 2
	bp.MasterSeed = 11
	bp.Sched.NRegimes = 2
	bp.Sched.TrialLen = 100
	bp.Regimes = []regime.Seq{
		regime.NewSeq([]float64{2, 9}, 50, 0),
		regime.NewSeq([]float64{7, 1}, 50, 0),
	}
	bp.Update()
	ds, err := spikes.GenDataset(bp)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestStep(t *testing.T) {
	ds := testDataset(t)
	ev := &TrialEnv{Nm: "TestEnv", Data: ds}
	if err := ev.Validate(); err != nil {
		t.Fatal(err)
	}
	ev.Init(0)
	for i := 0; i < ds.NTrials(); i++ {
		ev.Step()
		cur, _, _ := ev.Counter(env.Trial)
		if cur != i {
			t.Errorf("step %d: trial counter %d", i, cur)
		}
		st := ev.State("Spikes")
		if st == nil {
			t.Fatal("no Spikes state")
		}
		want := ds.Trial(i).Spikes.Values
		got := ev.Spikes.Values
		for vi := range want {
			if got[vi] != want[vi] {
				t.Fatalf("trial %d value %d: state %v, dataset %v", i, vi, got[vi], want[vi])
			}
		}
	}
	// wraps back to trial 0, incrementing epoch
	ev.Step()
	if cur, _, _ := ev.Counter(env.Trial); cur != 0 {
		t.Errorf("trial counter after wrap %d, want 0", cur)
	}
	if cur, _, chg := ev.Counter(env.Epoch); cur != 1 || !chg {
		t.Errorf("epoch counter after wrap %d (chg %v), want 1 (true)", cur, chg)
	}
}

func TestNoTruthExposed(t *testing.T) {
	ds := testDataset(t)
	ev := &TrialEnv{Nm: "TestEnv", Data: ds}
	ev.Init(0)
	for _, el := range ev.States() {
		if el.Name != "Spikes" {
			t.Errorf("unexpected state element %q", el.Name)
		}
	}
	if st := ev.State("Bounds"); st != nil {
		t.Errorf("ground truth reachable as env state")
	}
}
