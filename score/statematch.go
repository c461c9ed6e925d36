// Copyright (c) 2024, The Synspike Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package score

import "math"

// KLDiv returns the Kullback-Leibler divergence sum(p * log(p / q)) of p
// from q.  Entries where p is 0 contribute 0; a q of 0 against a nonzero p
// yields +Inf.  Slices must be the same length.
func KLDiv(p, q []float64) float64 {
	kl := 0.0
	for i := range p {
		if p[i] == 0 {
			continue
		}
		kl += p[i] * math.Log(p[i]/q[i])
	}
	return kl
}

// StateMatch aligns estimated per-state emission rates to reference rates:
// it returns the permutation perm such that est[perm[i]] corresponds to
// ref[i], minimizing the total KL divergence of estimated from reference
// rows, along with that total.  State labels from a detection model are
// arbitrary, so alignment is required before any per-state comparison.
// est and ref must have the same number of rows; a mismatch returns a nil
// permutation and +Inf.
func StateMatch(est, ref [][]float64) (perm []int, kl float64) {
	if len(est) != len(ref) {
		return nil, math.Inf(1)
	}
	n := len(ref)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	best := math.Inf(1)
	var bestPerm []int
	permute(idx, 0, func(p []int) {
		tot := 0.0
		for i := 0; i < n; i++ {
			tot += KLDiv(est[p[i]], ref[i])
		}
		if tot < best {
			best = tot
			bestPerm = append([]int(nil), p...)
		}
	})
	return bestPerm, best
}

// permute visits all permutations of idx[k:] in place.
func permute(idx []int, k int, visit func(p []int)) {
	if k == len(idx) {
		visit(idx)
		return
	}
	for i := k; i < len(idx); i++ {
		idx[k], idx[i] = idx[i], idx[k]
		permute(idx, k+1, visit)
		idx[k], idx[i] = idx[i], idx[k]
	}
}

// StateCoverage returns the fraction of timesteps whose predicted state
// label matches the true label.  Slices must be the same length; an empty
// truth yields 0.
func StateCoverage(truth, pred []int) float64 {
	if len(truth) == 0 {
		return 0
	}
	n := 0
	for i := range truth {
		if truth[i] == pred[i] {
			n++
		}
	}
	return float64(n) / float64(len(truth))
}
