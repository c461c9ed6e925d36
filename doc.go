// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package synspike generates synthetic multi-neuron spike-train datasets with
deliberate, temporally synchronized state changes, for training and
validating state-change detection models.  This top-level of the repository
has no functional code -- everything is organized into the following
sub-packages:

* regime: firing-regime value types -- per-neuron rates and durations.

* sched: synchronized-but-jittered transition schedules for a trial.

* spikes: spike-train sampling, trials, datasets, and parallel batch
generation from explicit per-trial random substreams.

* score: change-point scoring of external estimates against ground truth,
plus state alignment and coverage measures.

* trialenv: an environment presenting generated datasets to downstream
models, exposing spike observations but never ground truth.

* examples/fakedata: a runnable text-raster demo that compiles into a
program.
*/
package synspike
