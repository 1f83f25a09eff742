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

// minimumWorkload is the floor on elements per work unit for elementwise
// kernels; below it dispatch overhead dominates execution time.
const minimumWorkload = 4096

// minTileSizesForEachDim derives per-dimension minimum tile sizes from the
// operands: the loop behind each operand's fastest-varying axis must cover
// at least one vector of that operand's element type. Dimensions left of the
// rightmost vectorized one only unroll, so they are clamped to the target's
// unroll budget.
func minTileSizesForEachDim(k *KernelDescriptor, facts TargetFacts) TileLevel {
	rank := k.Loops.Rank()
	minTiles := uniformLevel(rank, 1)
	scan := func(ops []Operand) {
		for _, op := range ops {
			fv := op.FastestVarying
			if fv < 0 || fv >= rank || len(op.Shape) == 0 {
				continue
			}
			minTiles[fv] = max(minTiles[fv], int64(facts.VectorSize(op.ElemBits)))
		}
	}
	scan(k.Inputs)
	scan(k.Outputs)

	limit := maxUnrollFactor(facts)
	if k.TransposeLike() {
		limit = maxTransposeUnrollFactor(facts)
	}
	vecDim := rank - 1
	for ; vecDim >= 0; vecDim-- {
		if minTiles[vecDim] > 1 {
			break
		}
	}
	for i := vecDim - 1; i >= 0; i-- {
		minTiles[i] = min(minTiles[i], limit)
	}
	return minTiles
}

// vectorLevelTiles derives the vector-level tile sizes from the
// distribution level: tiled dimensions shrink to a divisor of their
// distribution tile, untiled unit dimensions stay untiled.
func vectorLevelTiles(k *KernelDescriptor, distTiles, minTiles TileLevel) TileLevel {
	shape := k.Loops.StaticRanges()
	tiles := zeroLevel(k.Loops.Rank())
	for i := range tiles {
		if distTiles[i] != 0 {
			tiles[i] = ChooseTileSize(0, distTiles[i], minTiles[i], minTiles[i], false)
		} else if shape[i] != 1 {
			tiles[i] = minTiles[i]
		}
	}
	return tiles
}

// planGeneric routes a structured kernel through the transpose and
// elementwise specializations before the default generic hierarchy.
func planGeneric(k *KernelDescriptor, facts TargetFacts, opts Options) (Configuration, error) {
	if cfg, ok := transposeConfig(k, facts, opts); ok {
		return cfg, nil
	}
	if cfg, ok := elementwiseConfig(k, facts, opts); ok {
		return cfg, nil
	}
	return defaultGenericConfig(k, facts, opts), nil
}

// transposeConfig specializes permutation kernels to 8x8 vector tiles. The
// downstream transpose patterns only exist for wide-SIMD x86 and exactly two
// vectorized dimensions whose sizes unroll in multiples of 8; anything else
// falls through.
func transposeConfig(k *KernelDescriptor, facts TargetFacts, opts Options) (Configuration, bool) {
	if facts.Arch != ArchX86 || !facts.HasWideSIMD || !k.TransposeLike() {
		return Configuration{}, false
	}

	rank := k.Loops.Rank()
	minTiles := minTileSizesForEachDim(k, facts)
	vectorized := 0
	for _, t := range minTiles {
		if t > 1 {
			if t%8 != 0 {
				return Configuration{}, false
			}
			vectorized++
		}
	}
	if vectorized != 2 {
		return Configuration{}, false
	}
	for i, t := range minTiles {
		if t > 1 {
			minTiles[i] = 8
		}
	}

	maxTiles := uniformLevel(rank, opts.distTileSize())
	distTiles := distributionLevel(k, minTiles, maxTiles, false, nil, facts, opts)
	parallel := vectorLevelTiles(k, distTiles, minTiles)

	pipeline := PipelineNoPadDoubleTileContraction
	if !k.TensorSemantics {
		pipeline = PipelineBufferTileAndVectorize
	}
	return Configuration{
		Levels:   []TileLevel{distTiles, parallel, zeroLevel(rank)},
		Pipeline: pipeline,
	}, true
}

// elementwiseConfig grows the distribution tiles of elementwise kernels
// until each unit covers minimumWorkload elements, then caps the vector
// level so the unroll factor stays reasonable.
func elementwiseConfig(k *KernelDescriptor, facts TargetFacts, opts Options) (Configuration, bool) {
	rank := k.Loops.Rank()
	if rank == 0 || !k.Elementwise() {
		return Configuration{}, false
	}

	minTiles := minTileSizesForEachDim(k, facts)
	maxTiles := uniformLevel(rank, opts.distTileSize())
	distTiles := distributionLevel(k, minTiles, maxTiles, true, nil, facts, opts)

	shape := k.Loops.StaticRanges()
	workload := int64(1)
	for i, s := range shape {
		if IsDynamic(s) {
			workload = Dynamic
			break
		}
		if distTiles[i] != 0 {
			s = distTiles[i]
		}
		workload *= s
	}
	for dim := 0; workload < minimumWorkload && dim < rank; {
		cur := distTiles[dim]
		if workload == Dynamic || cur == 0 || IsDynamic(shape[dim]) || cur == shape[dim] {
			dim++
			continue
		}
		grown := min(cur*2, shape[dim])
		workload = workload / cur * grown
		distTiles[dim] = grown
	}

	// Cap the vector level to a quarter vector of 8-bit elements; most
	// kernels are 32-bit, keeping unrolling at one register's worth.
	vecCap := int64(facts.VectorSize(8)) / 4
	if vecCap < 1 {
		vecCap = 1
	}
	vecTiles := make(TileLevel, rank)
	for i, t := range minTiles {
		vecTiles[i] = min(t, vecCap)
	}

	pipeline := PipelineTileThenPeel
	if !k.TensorSemantics {
		pipeline = PipelineBufferTileAndVectorize
	}
	// The zero reduction level exists to trigger the peeling transform;
	// nothing is tiled by it.
	return Configuration{
		Levels:   []TileLevel{distTiles, vecTiles, zeroLevel(rank)},
		Pipeline: pipeline,
	}, true
}

// defaultGenericConfig is the three-level hierarchy every remaining
// structured kernel gets.
func defaultGenericConfig(k *KernelDescriptor, facts TargetFacts, opts Options) Configuration {
	rank := k.Loops.Rank()
	if rank == 0 {
		return Configuration{Pipeline: PipelineDefault}
	}

	minTiles := minTileSizesForEachDim(k, facts)
	// Half the default ceiling keeps the stack footprint of fused generic
	// kernels in check.
	maxTiles := uniformLevel(rank, opts.distTileSize()/2)
	distTiles := distributionLevel(k, minTiles, maxTiles, false, nil, facts, opts)

	sizes := vectorLevelTiles(k, distTiles, minTiles)
	parallel, reduction := splitParallelAndReductionTiles(k.Loops, sizes)

	strategy := PreProcessing(k, facts, opts)
	adjustVectorSizesForDynamicShapes(k.Loops, strategy, parallel, reduction)

	pipeline := PipelineBufferTileAndVectorize
	if k.TensorSemantics {
		if strategy == PreProcPeeling {
			pipeline = PipelineTileThenPeel
		} else {
			pipeline = PipelineNoPadDoubleTileContraction
		}
	}
	return Configuration{
		Levels:   []TileLevel{distTiles, parallel, reduction},
		Pipeline: pipeline,
	}
}

// planDefault gives tilable-but-uncategorized kernels a distribution-only
// configuration: unit tiles everywhere except the innermost partitionable
// dimension, which covers one vector of the narrowest operand type.
func planDefault(k *KernelDescriptor, facts TargetFacts, opts Options, pipeline Pipeline) Configuration {
	rank := k.Loops.Rank()
	partitionable := k.PartitionableLoops()

	minTiles := uniformLevel(rank, 1)
	maxTiles := uniformLevel(rank, 1)
	if len(partitionable) > 0 {
		minTiles[partitionable[len(partitionable)-1]] =
			int64(facts.VectorSize(k.referenceElemBits()))
		for _, i := range partitionable {
			maxTiles[i] = opts.distTileSize()
		}
	}

	distTiles := distributionLevel(k, minTiles, maxTiles, false, nil, facts, opts)
	return Configuration{
		Levels:   []TileLevel{distTiles},
		Pipeline: pipeline,
	}
}
