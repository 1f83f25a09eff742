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

import "slices"

// planContraction builds the multi-level hierarchy for matmul-like kernels.
// The vector-level tile triple comes from the architecture table, the outer
// level from the distribution planner, and the pre-processing strategy picks
// between the padding, peeling and plain no-pad pipelines.
func planContraction(k *KernelDescriptor, facts TargetFacts, opts Options) (Configuration, error) {
	rank := k.Loops.Rank()
	if red := k.ReductionDims(); len(red) != 1 || red[0] != rank-1 {
		return Configuration{}, diagf(k,
			"expected to have exactly one reduction dim, and it is the innermost dim")
	}
	if len(k.Inputs) < 2 || len(k.Outputs) < 1 {
		return Configuration{}, diagf(k, "contraction needs two inputs and one output")
	}
	lhs, rhs, out := k.Inputs[0], k.Inputs[1], k.Outputs[0]

	// Consider all element types and use the smallest vector size; the tile
	// sizes are chosen against it.
	vectorSize := int64(facts.VectorSize(lhs.ElemBits))
	vectorSize = min(vectorSize, int64(facts.VectorSize(rhs.ElemBits)))
	vectorSize = min(vectorSize, int64(facts.VectorSize(out.ElemBits)))
	quantized := lhs.ElemBits != out.ElemBits

	vecTiles := matmulVectorTileSizes(facts, vectorSize, quantized, rank)
	if quantized {
		// Clamp to the static shape so oversized vector tiles on quantized
		// kernels do not spill to the stack.
		for i, s := range k.Loops.StaticRanges() {
			if i >= len(vecTiles) || IsDynamic(s) {
				continue
			}
			vecTiles[i] = ChooseTileSize(0, s, vecTiles[i], vectorSize, false)
		}
	}

	defaultMax := opts.distTileSize()
	if facts.Arch == ArchX86 || facts.Arch == ArchRiscV {
		defaultMax = 128
	}
	maxTiles := uniformLevel(rank, defaultMax)
	if k.Batch {
		// Never split a batch across units.
		maxTiles[0] = 1
	}

	strategy := PreProcessing(k, facts, opts)

	var distTiles TileLevel
	if strategy == PreProcPadding {
		if rank == 3 {
			maxTiles[0] = 192
			maxTiles[1] = 128
		}
		distTiles = distributionLevel(k, vecTiles, maxTiles, true, nil, facts, opts)
	} else {
		distTiles = distributionLevel(k, vecTiles, maxTiles, false, nil, facts, opts)
	}

	// Arm keeps its own non-quantized schedule; everything else goes
	// through the pad or no-pad pipelines.
	if facts.Arch == ArchArm && !quantized {
		return armContractionConfig(k, distTiles, vecTiles, vectorSize), nil
	}
	if strategy == PreProcPadding {
		return padContractionConfig(k, distTiles, vecTiles, vectorSize), nil
	}
	if opts.EnableTripleTiling {
		levels := []TileLevel{distTiles, {0, 0, 384}, vecTiles}
		if multiTileDivisible(k, levels) {
			return noPadContractionConfig(k, levels, vectorSize, strategy), nil
		}
		// Not exactly divisible; fall back to the two-level hierarchy.
	}
	levels := []TileLevel{distTiles, vecTiles}
	return noPadContractionConfig(k, levels, vectorSize, strategy), nil
}

// reductionExtent is the static K extent, read off the lhs operand's
// innermost axis.
func reductionExtent(lhs Operand) int64 {
	if len(lhs.Shape) == 0 {
		return Dynamic
	}
	return lhs.Shape[len(lhs.Shape)-1]
}

// padContractionConfig separates the vector tiles into a parallel level with
// the reduction entry zeroed and a reduction level sized by divisor search
// over K alone.
func padContractionConfig(k *KernelDescriptor, distTiles, vecTiles TileLevel, vectorSize int64) Configuration {
	rank := k.Loops.Rank()
	parallel := slices.Clone(vecTiles)
	parallel[rank-1] = 0

	reduction := zeroLevel(rank)
	reduction[rank-1] = ChooseTileSize(0, reductionExtent(k.Inputs[0]),
		vecTiles[rank-1], vectorSize, false)

	return Configuration{
		Levels:           []TileLevel{distTiles, parallel, reduction},
		Pipeline:         PipelinePadThenTileContraction,
		NativeVectorSize: int(vectorSize),
	}
}

// armContractionConfig derives the vector level by divisor search against
// the distribution tiles and splits it into parallel and reduction levels.
func armContractionConfig(k *KernelDescriptor, distTiles, vecTiles TileLevel, vectorSize int64) Configuration {
	rank := k.Loops.Rank()
	shape := k.Loops.StaticRanges()

	sizes := make(TileLevel, 0, rank)
	for i := 0; i < rank-1; i++ {
		bound := distTiles[i]
		if bound == 0 {
			bound = shape[i]
		}
		sizes = append(sizes, ChooseTileSize(0, bound, vecTiles[i], vectorSize, false))
	}
	sizes = append(sizes, ChooseTileSize(0, reductionExtent(k.Inputs[0]),
		vecTiles[rank-1], vectorSize, false))

	parallel, reduction := splitParallelAndReductionTiles(k.Loops, sizes)
	return Configuration{
		Levels:           []TileLevel{distTiles, parallel, reduction},
		Pipeline:         PipelineMmt4dTiling,
		NativeVectorSize: int(vectorSize),
	}
}

// multiTileDivisible reports whether every level of the hierarchy divides
// the running shape exactly, dimension by dimension. Only exact three-loop
// static kernels qualify.
func multiTileDivisible(k *KernelDescriptor, levels []TileLevel) bool {
	rank := k.Loops.Rank()
	if rank != 3 {
		return false
	}
	running := k.Loops.StaticRanges()
	for _, s := range running {
		if IsDynamic(s) {
			return false
		}
	}
	for _, level := range levels {
		for i := 0; i < rank; i++ {
			if level[i] == 0 {
				continue
			}
			if running[i]%level[i] != 0 {
				return false
			}
			running[i] = level[i]
		}
	}
	return true
}

// noPadContractionConfig finalizes an unpadded hierarchy: the innermost
// input level is re-sized by divisor search against the running shape, then
// split into parallel and reduction levels. allowIncomplete tracks the
// peeling decision; peeled kernels tolerate a runtime boundary tile.
func noPadContractionConfig(k *KernelDescriptor, levels []TileLevel, vectorSize int64,
	strategy PreProcStrategy) Configuration {
	running := k.Loops.StaticRanges()
	for _, level := range levels[:len(levels)-1] {
		for i, t := range level {
			if t == 0 || IsDynamic(running[i]) {
				continue
			}
			running[i] = t
		}
	}

	vecTiles := levels[len(levels)-1]
	sizes := make(TileLevel, 0, len(vecTiles))
	for i, t := range vecTiles {
		if t != 0 {
			t = ChooseTileSize(0, running[i], t, vectorSize, strategy == PreProcPeeling)
		}
		sizes = append(sizes, t)
	}

	parallel, reduction := splitParallelAndReductionTiles(k.Loops, sizes)
	adjustVectorSizesForDynamicShapes(k.Loops, strategy, parallel, reduction)

	out := make([]TileLevel, 0, len(levels)+1)
	out = append(out, levels[:len(levels)-1]...)
	out = append(out, parallel, reduction)
	return Configuration{
		Levels:           out,
		Pipeline:         noPadContractionPipeline(strategy, len(levels)),
		NativeVectorSize: int(vectorSize),
	}
}

// planMmt4d tiles the data-tiled matmul: distribution over the outer M/N
// loops and a vector level equal to the operands' inner tile shape.
func planMmt4d(k *KernelDescriptor, facts TargetFacts, opts Options) (Configuration, error) {
	rank := k.Loops.Rank()
	if len(k.Inputs) < 2 || len(k.Outputs) < 1 {
		return Configuration{}, diagf(k, "mmt4d needs two inputs and one output")
	}

	var distTiles TileLevel
	if len(opts.Mmt4dDistTileSizes) != 0 {
		distTiles = slices.Clone(opts.Mmt4dDistTileSizes)
	} else {
		// Distribution covers the outer M and N loops only; the inner tile
		// loops always execute whole within one unit.
		minTiles := zeroLevel(rank)
		maxTiles := zeroLevel(rank)
		if rank > 0 {
			minTiles[0], maxTiles[0] = 4, 48
		}
		if rank > 1 {
			minTiles[1], maxTiles[1] = 4, 32
		}
		distTiles = DistributeTileSizes(k.Loops, minTiles, maxTiles, nil,
			facts.threadCount(), opts.unitsPerThread())
		for i, d := range k.Loops {
			if distTiles[i] == 0 {
				continue
			}
			distTiles[i] = ChooseTileSize(d.Lower, d.Upper, distTiles[i], minTiles[i], false)
		}
	}

	var vecTiles TileLevel
	if len(opts.Mmt4dL1TileSizes) != 0 {
		vecTiles = slices.Clone(opts.Mmt4dL1TileSizes)
	} else {
		vecTiles = uniformLevel(rank, 1)
		if rank == 6 {
			// [M, N, K, M0, N0, K0]: the inner loops take the operands'
			// packed tile shape whole.
			lhs, rhs := k.Inputs[0], k.Inputs[1]
			vecTiles[3] = dimOr(lhs.Shape, 2, 1)
			vecTiles[4] = dimOr(rhs.Shape, 2, 1)
			vecTiles[5] = dimOr(lhs.Shape, 3, 1)
		}
	}

	parallel, reduction := splitParallelAndReductionTiles(k.Loops, vecTiles)
	return Configuration{
		Levels:   []TileLevel{distTiles, parallel, reduction},
		Pipeline: PipelineMmt4dTiling,
	}, nil
}

func dimOr(shape []int64, i int, def int64) int64 {
	if i >= len(shape) || IsDynamic(shape[i]) {
		return def
	}
	return shape[i]
}
