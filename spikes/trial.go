// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikes

import (
	"fmt"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/erand"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/nmlab/synspike/sched"
)

// Trial is one independently generated multi-neuron episode.  All neurons
// share the single Schedule; their spike realizations are otherwise
// independent.  A Trial is fully built in one generation call and immutable
// afterward.
type Trial struct {
	Idx      int              `desc:"index of this trial within its dataset"`
	Schedule sched.Schedule   `desc:"ground-truth transition times shared by all neurons"`
	Rates    [][]float64      `desc:"resolved per-neuron, per-regime firing rates used for this trial"`
	Spikes   *etensor.Float32 `view:"no-inline" desc:"spike data, NNeurons x NSteps"`
}

// NNeurons returns the number of neurons in the trial.
func (tr *Trial) NNeurons() int {
	return tr.Spikes.Dim(0)
}

// NSteps returns the number of timesteps in the trial.
func (tr *Trial) NSteps() int {
	return tr.Spikes.Dim(1)
}

// NeuronTrace returns the spike values for one neuron across the trial,
// as a direct (read-only) slice of the underlying tensor.
func (tr *Trial) NeuronTrace(n int) []float32 {
	nst := tr.NSteps()
	return tr.Spikes.Values[n*nst : (n+1)*nst]
}

// RasterString renders the trial as an X / - text raster, one line per
// neuron, X wherever at least one spike was sampled in the step.
func (tr *Trial) RasterString() string {
	var b strings.Builder
	nn := tr.NNeurons()
	for n := 0; n < nn; n++ {
		fmt.Fprintf(&b, "Neuron %d: ", n+1)
		for _, v := range tr.NeuronTrace(n) {
			if v > 0 {
				b.WriteByte('X')
			} else {
				b.WriteByte('-')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// categorize enforces at most one spiking neuron per timestep, keeping one
// survivor chosen uniformly among the neurons that spiked in that step.
// Only meaningful for binary spike data; called during trial construction.
func (tr *Trial) categorize(rnd erand.Rand) {
	nn := tr.NNeurons()
	nst := tr.NSteps()
	fires := make([]int, 0, nn)
	for si := 0; si < nst; si++ {
		fires = fires[:0]
		for n := 0; n < nn; n++ {
			if tr.Spikes.Values[n*nst+si] > 0 {
				fires = append(fires, n)
			}
		}
		if len(fires) <= 1 {
			continue
		}
		keep := fires[rnd.Intn(len(fires), -1)]
		for _, n := range fires {
			if n != keep {
				tr.Spikes.Values[n*nst+si] = 0
			}
		}
	}
}

// Dataset is an ordered, immutable collection of Trials, retaining both the
// noisy spike observations and the ground-truth schedules.  Observations
// and ground truth are exposed through separate tables so a detection model
// under evaluation never sees the truth.
type Dataset struct {
	Params BatchParams `desc:"parameters the dataset was generated with -- read-only after generation"`
	Trials []*Trial    `desc:"the generated trials, in index order"`
}

// NTrials returns the number of trials.
func (ds *Dataset) NTrials() int {
	return len(ds.Trials)
}

// Trial returns the trial at the given index.
func (ds *Dataset) Trial(i int) *Trial {
	return ds.Trials[i]
}

// NSteps returns the number of timesteps per trial.
func (ds *Dataset) NSteps() int {
	return ds.Params.Gen.NSteps()
}

// SpikesTable returns the observation side of the dataset as a table with
// one row per trial: the trial index and the NNeurons x NSteps spike
// tensor.  This is the full input surface for a detection model -- no
// ground truth is included.
func (ds *Dataset) SpikesTable() *etable.Table {
	dt := &etable.Table{}
	dt.SetMetaData("name", "Spikes")
	dt.SetMetaData("desc", "per-trial spike observations")
	dt.SetMetaData("read-only", "true")
	nn := ds.Params.NNeurons
	nst := ds.NSteps()
	sch := etable.Schema{
		{"Trial", etensor.INT64, nil, nil},
		{"Spikes", etensor.FLOAT32, []int{nn, nst}, []string{"Neuron", "Step"}},
	}
	dt.SetFromSchema(sch, ds.NTrials())
	for i, tr := range ds.Trials {
		dt.SetCellFloat("Trial", i, float64(i))
		dt.SetCellTensor("Spikes", i, tr.Spikes)
	}
	return dt
}

// TruthTable returns the ground-truth side of the dataset as a table with
// one row per trial: the trial index and its transition times.  This is
// consumed by the scorer only, never by the model under evaluation.
func (ds *Dataset) TruthTable() *etable.Table {
	dt := &etable.Table{}
	dt.SetMetaData("name", "Truth")
	dt.SetMetaData("desc", "per-trial ground-truth transition times")
	dt.SetMetaData("read-only", "true")
	nb := ds.Params.Sched.NRegimes - 1
	sch := etable.Schema{
		{"Trial", etensor.INT64, nil, nil},
		{"NBounds", etensor.INT64, nil, nil},
	}
	if nb > 0 {
		sch = append(sch, etable.Column{"Bounds", etensor.FLOAT64, []int{nb}, []string{"Bound"}})
	}
	dt.SetFromSchema(sch, ds.NTrials())
	bnd := &etensor.Float64{}
	if nb > 0 {
		bnd.SetShape([]int{nb}, nil, []string{"Bound"})
	}
	for i, tr := range ds.Trials {
		dt.SetCellFloat("Trial", i, float64(i))
		dt.SetCellFloat("NBounds", i, float64(len(tr.Schedule)))
		if nb > 0 {
			copy(bnd.Values, tr.Schedule)
			dt.SetCellTensor("Bounds", i, bnd)
		}
	}
	return dt
}

// SizeReport returns a human-readable summary of the dataset's size and
// memory use.
func (ds *Dataset) SizeReport() string {
	var b strings.Builder
	mem := 0
	for _, tr := range ds.Trials {
		mem += len(tr.Spikes.Values)*4 + len(tr.Schedule)*8
	}
	fmt.Fprintf(&b, "%14s:\t Trials: %d\t Neurons: %d\t Steps: %d\t Mem: %v\n",
		"Dataset", ds.NTrials(), ds.Params.NNeurons, ds.NSteps(), (datasize.ByteSize)(mem).HumanReadable())
	return b.String()
}
