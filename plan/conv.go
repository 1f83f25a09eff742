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

// planConv handles 2D convolutions and pooling. The distribution level gets
// a vector-size hint on the output-channel dimension; the vector level comes
// from the per-architecture table and is re-sized by divisor search against
// whatever the distribution level left per unit.
func planConv(k *KernelDescriptor, facts TargetFacts, opts Options) (Configuration, error) {
	rank := k.Loops.Rank()
	if rank < 4 {
		return Configuration{}, diagf(k, "convolution needs at least [batch, outH, outW, channels] loops, got rank %d", rank)
	}
	if len(k.Outputs) < 1 {
		return Configuration{}, diagf(k, "convolution needs an output operand")
	}
	vectorSize := int64(facts.VectorSize(k.Outputs[0].ElemBits))
	vecTiles := convVectorTileSizes(k.Kind, facts, vectorSize, rank)

	minTiles := uniformLevel(rank, 1)
	maxTiles := uniformLevel(rank, opts.distTileSize())
	hints := uniformLevel(rank, 1)
	// Hint the vector size on OC so the distribution level stays a multiple
	// of it there.
	hints[3] = vectorSize

	distTiles := distributionLevel(k, minTiles, maxTiles, false, hints, facts, opts)

	shape := k.Loops.StaticRanges()
	sizes := uniformLevel(rank, 1)
	copy(sizes, vecTiles)
	for i := range sizes {
		bound := distTiles[i]
		if bound == 0 {
			bound = shape[i]
		}
		// A tile size of 1 is deliberate: that dimension is decomposed to a
		// lower-rank named op, not vectorized.
		if sizes[i] != 1 {
			sizes[i] = ChooseTileSize(0, bound, sizes[i], vectorSize, false)
		}
	}

	parallel, reduction := splitParallelAndReductionTiles(k.Loops, sizes)
	setAlwaysVectorizeSizes(k.Loops, parallel, reduction)

	return Configuration{
		Levels:           []TileLevel{distTiles, parallel, reduction},
		Pipeline:         PipelineConvTileAndDecompose,
		NativeVectorSize: int(vectorSize),
	}, nil
}
