// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package trialenv presents a generated spike dataset as an environment that
detection / learning models can step through trial by trial.

Only the spike observations are exposed as environment state: the
ground-truth schedules stay inside the Dataset, reachable by the scorer but
never presented to the model under evaluation.
*/
package trialenv

import (
	"fmt"

	"github.com/emer/emergent/env"
	"github.com/emer/etable/etensor"
	"github.com/nmlab/synspike/spikes"
)

// TrialEnv steps through the trials of a generated Dataset, presenting each
// trial's NNeurons x NSteps spike tensor as the "Spikes" state element.
type TrialEnv struct {
	Nm     string          `desc:"name of this environment"`
	Dsc    string          `desc:"description of this environment"`
	Data   *spikes.Dataset `desc:"dataset of generated trials to present -- ground truth stays internal"`
	Spikes etensor.Float32 `view:"no-inline" desc:"current trial's spike observations, NNeurons x NSteps"`
	Run    env.Ctr         `view:"inline" desc:"current run of model as provided during Init"`
	Epoch  env.Ctr         `view:"inline" desc:"number of times through the full set of trials"`
	Trial  env.Ctr         `view:"inline" desc:"trial within the dataset"`
}

func (ev *TrialEnv) Name() string { return ev.Nm }
func (ev *TrialEnv) Desc() string { return ev.Dsc }

func (ev *TrialEnv) Validate() error {
	if ev.Data == nil || ev.Data.NTrials() == 0 {
		return fmt.Errorf("TrialEnv: %v has no dataset set", ev.Nm)
	}
	return nil
}

func (ev *TrialEnv) Counters() []env.TimeScales {
	return []env.TimeScales{env.Run, env.Epoch, env.Trial}
}

func (ev *TrialEnv) States() env.Elements {
	nn := ev.Data.Params.NNeurons
	nst := ev.Data.NSteps()
	els := env.Elements{
		{"Spikes", []int{nn, nst}, []string{"Neuron", "Step"}},
	}
	return els
}

func (ev *TrialEnv) State(element string) etensor.Tensor {
	switch element {
	case "Spikes":
		return &ev.Spikes
	}
	return nil
}

func (ev *TrialEnv) Actions() env.Elements {
	return nil
}

// String returns the current state as a string
func (ev *TrialEnv) String() string {
	return fmt.Sprintf("Trial_%d", ev.Trial.Cur)
}

func (ev *TrialEnv) Init(run int) {
	ev.Run.Scale = env.Run
	ev.Epoch.Scale = env.Epoch
	ev.Trial.Scale = env.Trial
	ev.Run.Init()
	ev.Epoch.Init()
	ev.Trial.Init()
	ev.Run.Cur = run
	if ev.Data != nil {
		ev.Trial.Max = ev.Data.NTrials()
		nn := ev.Data.Params.NNeurons
		nst := ev.Data.NSteps()
		ev.Spikes.SetShape([]int{nn, nst}, nil, []string{"Neuron", "Step"})
	}
	ev.Trial.Cur = -1 // init state -- key so that first Step() = 0
}

// SetTrial copies the spike observations of the given trial into the
// current state tensor.
func (ev *TrialEnv) SetTrial(idx int) {
	trl := ev.Data.Trial(idx)
	copy(ev.Spikes.Values, trl.Spikes.Values)
}

func (ev *TrialEnv) Step() bool {
	ev.Epoch.Same()      // good idea to just reset all non-inner-most counters at start
	if ev.Trial.Incr() { // true if wraps around Max back to 0
		ev.Epoch.Incr()
	}
	ev.SetTrial(ev.Trial.Cur)
	return true
}

func (ev *TrialEnv) Action(element string, input etensor.Tensor) {
	// nop
}

func (ev *TrialEnv) Counter(scale env.TimeScales) (cur, prv int, chg bool) {
	switch scale {
	case env.Run:
		return ev.Run.Query()
	case env.Epoch:
		return ev.Epoch.Query()
	case env.Trial:
		return ev.Trial.Query()
	}
	return -1, -1, false
}

// Compile-time check that implements Env interface
var _ env.Env = (*TrialEnv)(nil)
