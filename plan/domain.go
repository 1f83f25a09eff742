// Copyright 2026 kernelplan Authors
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

package plan

import "math"

// Dynamic is the sentinel for a loop bound or shape extent that is not known
// at compile time.
const Dynamic int64 = math.MinInt64

// IsDynamic reports whether v is the Dynamic sentinel.
func IsDynamic(v int64) bool { return v == Dynamic }

// IteratorKind classifies a loop dimension of an iteration domain.
type IteratorKind uint8

const (
	// Parallel dimensions carry no loop-carried dependence and may be
	// distributed across workers.
	Parallel IteratorKind = iota
	// Reduction dimensions accumulate into the output and must stay
	// sequential within one worker.
	Reduction
)

func (k IteratorKind) String() string {
	if k == Reduction {
		return "reduction"
	}
	return "parallel"
}

// LoopDim is one dimension of an iteration domain. Lower and Upper are
// half-open bounds; either may be Dynamic.
type LoopDim struct {
	Lower int64
	Upper int64
	Kind  IteratorKind
}

// TripCount returns Upper-Lower, or Dynamic if either bound is unknown.
func (d LoopDim) TripCount() int64 {
	if IsDynamic(d.Lower) || IsDynamic(d.Upper) {
		return Dynamic
	}
	return d.Upper - d.Lower
}

// IterationDomain is the ordered loop nest of a kernel, outermost first.
type IterationDomain []LoopDim

// Rank returns the number of loop dimensions.
func (dom IterationDomain) Rank() int { return len(dom) }

// StaticRanges returns the per-dimension trip counts, Dynamic where a bound
// is unknown.
func (dom IterationDomain) StaticRanges() []int64 {
	ranges := make([]int64, len(dom))
	for i, d := range dom {
		ranges[i] = d.TripCount()
	}
	return ranges
}

// FullyDynamic reports whether every dimension has an unknown trip count.
// The zero-rank domain is not considered fully dynamic.
func (dom IterationDomain) FullyDynamic() bool {
	if len(dom) == 0 {
		return false
	}
	for _, d := range dom {
		if !IsDynamic(d.TripCount()) {
			return false
		}
	}
	return true
}

// TileLevel is one level of a tile hierarchy: one entry per dimension of the
// domain it was computed against. A zero entry means the dimension is not
// tiled at this level.
type TileLevel []int64

func zeroLevel(rank int) TileLevel { return make(TileLevel, rank) }

func uniformLevel(rank int, v int64) TileLevel {
	level := make(TileLevel, rank)
	for i := range level {
		level[i] = v
	}
	return level
}
