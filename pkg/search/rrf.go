// Copyright 2025 The sapdocs Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package search

import "sort"

// rrfK is the reciprocal-rank fusion constant.
const rrfK = 60

// fusedScoreScale turns fractional fusion scores into integers without
// losing the ordering (1/(60+1) scales to 16393).
const fusedScoreScale = 1e6

// fuseRRF merges ranked lists by reciprocal-rank fusion: each hit at
// rank r (1-based) in any list contributes 1/(rrfK+r). Provenance is
// kept from the hit's first appearance; list order breaks exact ties so
// fusion is deterministic. Each returned hit carries its fused score
// (scaled to an integer) so the output sequence is non-increasing.
func fuseRRF(lists ...[]Hit) []Hit {
	type fused struct {
		hit   Hit
		score float64
		order int
	}
	acc := make(map[string]*fused)
	next := 0
	for _, list := range lists {
		for r, hit := range list {
			f, ok := acc[hit.ID]
			if !ok {
				f = &fused{hit: hit, order: next}
				next++
				acc[hit.ID] = f
			}
			f.score += 1.0 / float64(rrfK+r+1)
		}
	}

	out := make([]*fused, 0, len(acc))
	for _, f := range acc {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].order < out[j].order
	})

	hits := make([]Hit, len(out))
	for i, f := range out {
		hits[i] = f.hit
		hits[i].Score = int(f.score * fusedScoreScale)
	}
	return hits
}
