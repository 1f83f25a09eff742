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

// partitionedTileSizes fills every partitionable dimension with defaultSize
// and zeroes the rest.
func partitionedTileSizes(k *KernelDescriptor, defaultSize int64) TileLevel {
	tiles := zeroLevel(k.Loops.Rank())
	for _, i := range k.PartitionableLoops() {
		tiles[i] = defaultSize
	}
	return tiles
}

// planPack distributes over the packed (outer) domain. The default tile
// counts workload in unpacked elements, so each blocked dimension is divided
// by its inner tile to keep the work per unit comparable.
func planPack(k *KernelDescriptor, opts Options) (Configuration, error) {
	if len(k.InnerTiles) != len(k.InnerDimsPos) {
		return Configuration{}, diagf(k, "pack has %d inner tiles for %d blocked dims",
			len(k.InnerTiles), len(k.InnerDimsPos))
	}
	tiles := partitionedTileSizes(k, opts.distTileSize())
	for j, pos := range k.InnerDimsPos {
		size := k.InnerTiles[j]
		if pos >= len(tiles) || tiles[pos] == 0 || IsDynamic(size) {
			continue
		}
		tiles[pos] = max(tiles[pos]/size, 1)
	}
	return Configuration{
		Levels:   []TileLevel{tiles},
		Pipeline: PipelineDataTilingOnly,
	}, nil
}

// unpackDefaultTileSize is deliberately small; unpack touches scattered
// source tiles and large units thrash the cache.
const unpackDefaultTileSize = 16

// planUnpack distributes over the unpacked domain, rounding each blocked
// dimension up to a whole number of inner tiles.
func planUnpack(k *KernelDescriptor, pipeline Pipeline) (Configuration, error) {
	if len(k.InnerTiles) != len(k.InnerDimsPos) {
		return Configuration{}, diagf(k, "unpack has %d inner tiles for %d blocked dims",
			len(k.InnerTiles), len(k.InnerDimsPos))
	}
	tiles := partitionedTileSizes(k, unpackDefaultTileSize)
	for j, pos := range k.InnerDimsPos {
		size := k.InnerTiles[j]
		if pos >= len(tiles) || tiles[pos] == 0 || IsDynamic(size) {
			continue
		}
		tiles[pos] = alignTo(tiles[pos], size)
	}
	return Configuration{
		Levels:   []TileLevel{tiles},
		Pipeline: pipeline,
	}, nil
}

// planFFT sizes the innermost dimension to cover 2^stage butterflies per
// unit, never below the default distribution tile. The stage must be a
// compile-time constant; radix scheduling cannot be deferred to runtime.
func planFFT(k *KernelDescriptor, opts Options, pipeline Pipeline) (Configuration, error) {
	tiles := partitionedTileSizes(k, opts.distTileSize())
	rank := k.Loops.Rank()
	if rank >= 1 && tiles[rank-1] != 0 {
		if !k.FFTStageStatic {
			return Configuration{}, diagf(k, "non-constant stage might not work for fft op")
		}
		tiles[rank-1] = max(int64(1)<<k.FFTStage, opts.distTileSize())
	}
	return Configuration{
		Levels:   []TileLevel{tiles},
		Pipeline: pipeline,
	}, nil
}

func alignTo(v, align int64) int64 {
	return (v + align - 1) / align * align
}
