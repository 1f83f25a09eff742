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

import (
	"math/bits"
	"slices"
)

// DistributeTileSizes computes the outermost (work distribution) tile sizes
// for an iteration domain.
//
// Each dimension is sized independently first: when a vector hint is given
// the largest hint multiple that divides the workload wins, otherwise the
// largest power of two not above half the workload. A dimension with a zero
// maxTiles entry or a dynamic bound keeps maxTiles as-is and is excluded
// from balancing.
//
// The balancing pass then doubles tile sizes, innermost dimension first,
// until the total unit count drops to unitsPerThread*threadCount or no
// dimension can grow. Doubling never breaks a divisibility property the
// dimension already holds against its vector hint, and the total unit count
// never rises above its pre-balancing value.
func DistributeTileSizes(dom IterationDomain, minTiles, maxTiles, vectorHints TileLevel,
	threadCount, unitsPerThread int) TileLevel {
	rank := dom.Rank()
	tiles := uniformLevel(rank, 1)
	unitsPerDim := uniformLevel(rank, 1)
	workload := uniformLevel(rank, 1)

	hint := func(i int) int64 {
		if i < len(vectorHints) {
			return vectorHints[i]
		}
		return 1
	}

	for i, d := range dom {
		if maxTiles[i] == 0 || IsDynamic(d.Lower) || IsDynamic(d.Upper) {
			tiles[i] = maxTiles[i]
			workload[i] = Dynamic
			continue
		}

		workload[i] = d.Upper - d.Lower
		candidate := int64(1)
		target := min(workload[i]/2, maxTiles[i])
		if vs := hint(i); vs > 1 {
			// Largest hint multiple that divides the workload and clears
			// the minimum.
			for k := vs; k <= target; k += vs {
				if workload[i]%k == 0 && k >= minTiles[i] {
					candidate = k
				}
			}
		}
		if hint(i) <= 1 || candidate == 1 {
			candidate = max(powerOfTwoFloor(target), minTiles[i])
		}

		tiles[i] = min(candidate, maxTiles[i])
		unitsPerDim[i] = ceilDiv(workload[i], tiles[i])
	}

	// Reduce the unit count where the work is divided too finely.
	// Over-provision to unitsPerThread times the thread count.
	limit := int64(unitsPerThread) * int64(threadCount)
	units := int64(1)
	for _, n := range unitsPerDim {
		units *= n
	}
	for currDim := rank; units > limit && currDim > 0; {
		i := currDim - 1
		size := tiles[i]
		if workload[i] == Dynamic || size >= maxTiles[i] || size >= workload[i] {
			currDim--
			continue
		}

		newSize := min(size*2, workload[i])
		if vs := hint(i); vs > 1 &&
			size%vs == 0 && workload[i]%size == 0 &&
			(newSize%vs != 0 || workload[i]%newSize != 0) {
			// The current size divides cleanly against the hint and the
			// doubled one would not; keep it.
			currDim--
			continue
		}

		tiles[i] = newSize
		if n := ceilDiv(workload[i], newSize); n < unitsPerDim[i] {
			units = units / unitsPerDim[i] * n
			unitsPerDim[i] = n
		} else {
			currDim--
		}
	}
	return tiles
}

// distributionLevel computes the distribution tile level for a kernel:
// non-partitionable loops are masked to zero, tiles come from
// DistributeTileSizes, and a final divisor-search pass makes every nonzero
// tile divide its trip count (or, with allowIncomplete, leaves a bounded
// runtime remainder).
func distributionLevel(k *KernelDescriptor, minTiles, maxTiles TileLevel,
	allowIncomplete bool, vectorHints TileLevel, facts TargetFacts, opts Options) TileLevel {
	rank := k.Loops.Rank()
	adjMin := zeroLevel(rank)
	adjMax := zeroLevel(rank)
	adjHints := uniformLevel(rank, 1)
	for _, i := range k.PartitionableLoops() {
		adjMin[i] = minTiles[i]
		adjMax[i] = maxTiles[i]
		if len(vectorHints) != 0 {
			adjHints[i] = vectorHints[i]
		}
	}

	tiles := DistributeTileSizes(k.Loops, adjMin, adjMax, adjHints,
		facts.threadCount(), opts.unitsPerThread())

	// Fix the sizes up so that they divide the trip count; otherwise the
	// level is not vectorizable downstream.
	for i, d := range k.Loops {
		if tiles[i] == 0 {
			continue
		}
		tiles[i] = ChooseTileSize(d.Lower, d.Upper, tiles[i], minTiles[i], allowIncomplete)
	}
	return tiles
}

// splitParallelAndReductionTiles copies the vector-level tile sizes into a
// parallel level (reduction entries zeroed) and a reduction level (parallel
// entries zeroed).
func splitParallelAndReductionTiles(dom IterationDomain, sizes TileLevel) (parallel, reduction TileLevel) {
	parallel = slices.Clone(sizes)
	reduction = slices.Clone(sizes)
	for i, d := range dom {
		if d.Kind == Parallel {
			reduction[i] = 0
		} else {
			parallel[i] = 0
		}
	}
	return parallel, reduction
}

// setAlwaysVectorizeSizes forces dynamic dimensions to tile size 1 so they
// are always vectorized (as single-element vectors) rather than left
// untiled.
func setAlwaysVectorizeSizes(dom IterationDomain, parallel, reduction TileLevel) {
	for i, d := range dom {
		if !IsDynamic(d.TripCount()) {
			continue
		}
		if d.Kind == Parallel {
			parallel[i] = 1
		} else {
			reduction[i] = 1
		}
	}
}

// adjustVectorSizesForDynamicShapes applies the always-vectorize rule and
// then, for fully dynamic kernels under peeling, restores the innermost
// vectorizable dimension so only one dimension gets peeled: the lowest order
// parallel one, or failing that the lowest order reduction one.
func adjustVectorSizesForDynamicShapes(dom IterationDomain, strategy PreProcStrategy,
	parallel, reduction TileLevel) {
	origParallel := slices.Clone(parallel)
	origReduction := slices.Clone(reduction)
	setAlwaysVectorizeSizes(dom, parallel, reduction)

	if !dom.FullyDynamic() || strategy != PreProcPeeling {
		return
	}

	for i := len(origParallel) - 1; i >= 0; i-- {
		if origParallel[i] > 1 {
			parallel[i] = origParallel[i]
			return
		}
	}
	for i := len(origReduction) - 1; i >= 0; i-- {
		if origReduction[i] > 1 {
			reduction[i] = origReduction[i]
			return
		}
	}
}

func powerOfTwoFloor(v int64) int64 {
	if v <= 0 {
		return 0
	}
	return int64(1) << (bits.Len64(uint64(v)) - 1)
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
