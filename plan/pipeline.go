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

// Pipeline names the fixed downstream lowering recipe that consumes a
// Configuration. Exactly one value is attached per kernel.
type Pipeline uint8

const (
	// PipelineDefault lowers without specialized tiling.
	PipelineDefault Pipeline = iota
	// PipelineDataTilingOnly applies only the data-layout (pack/unpack)
	// distribution level.
	PipelineDataTilingOnly
	// PipelinePadThenTileContraction pads operands to full tiles before the
	// multi-level contraction tiling.
	PipelinePadThenTileContraction
	// PipelineNoPadDoubleTileContraction is the two-level contraction
	// hierarchy without padding.
	PipelineNoPadDoubleTileContraction
	// PipelineNoPadTripleTileContraction adds an L1 cache level between the
	// distribution and vector levels.
	PipelineNoPadTripleTileContraction
	// PipelineTileThenPeel peels a trailing partial iteration so the main
	// loop body sees only full tiles; used for peeled contractions and
	// elementwise kernels.
	PipelineTileThenPeel
	// PipelineConvTileAndDecompose tiles a convolution and decomposes it to
	// lower-rank named ops.
	PipelineConvTileAndDecompose
	// PipelineMmt4dTiling is the data-tiled matmul hierarchy.
	PipelineMmt4dTiling
	// PipelineBufferTileAndVectorize tiles and vectorizes in place on
	// kernels with buffer semantics, without pre-processing.
	PipelineBufferTileAndVectorize
	// PipelineVectorBackendDefault targets the portable vector backend,
	// which disallows stack allocation and so always vectorizes.
	PipelineVectorBackendDefault
)

func (p Pipeline) String() string {
	switch p {
	case PipelineDefault:
		return "default"
	case PipelineDataTilingOnly:
		return "data-tiling"
	case PipelinePadThenTileContraction:
		return "pad-then-tile"
	case PipelineNoPadDoubleTileContraction:
		return "double-tile"
	case PipelineNoPadTripleTileContraction:
		return "triple-tile"
	case PipelineTileThenPeel:
		return "tile-then-peel"
	case PipelineConvTileAndDecompose:
		return "conv-tile-and-decompose"
	case PipelineMmt4dTiling:
		return "mmt4d-tiling"
	case PipelineBufferTileAndVectorize:
		return "buffer-tile-and-vectorize"
	case PipelineVectorBackendDefault:
		return "vector-backend-default"
	default:
		return "invalid"
	}
}

// noPadContractionPipeline maps a pre-processing choice and level count to
// the contraction pipeline consuming an unpadded hierarchy.
func noPadContractionPipeline(strategy PreProcStrategy, numLevels int) Pipeline {
	if strategy == PreProcPeeling {
		return PipelineTileThenPeel
	}
	if numLevels == 3 {
		return PipelineNoPadTripleTileContraction
	}
	return PipelineNoPadDoubleTileContraction
}
