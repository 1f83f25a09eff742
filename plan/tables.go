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

// Architecture-specific tile tables. These are hard-coded starting points
// derived from experiments, kept as data so they can be audited and tested
// in isolation; no smartness belongs here.

type matmulKey struct {
	arch      ArchFamily
	quantized bool
}

// matmulTileEntry is an (M, N, K) vector-level tile triple. When scaled is
// set the entries are multiples of the vector width in elements.
type matmulTileEntry struct {
	sizes  [3]int64
	scaled bool
}

var matmulTileTable = map[matmulKey]matmulTileEntry{
	{ArchX86, false}: {sizes: [3]int64{8, 32, 16}},
	{ArchX86, true}:  {sizes: [3]int64{8, 32, 16}},

	// RISC-V natively supports scalar x vector products, so dimension k is
	// tiled but not vectorized; vectorizing it would lower to a gather per
	// broadcast.
	{ArchRiscV, false}: {sizes: [3]int64{8, 32, 1}},
	{ArchRiscV, true}:  {sizes: [3]int64{8, 32, 1}},

	{ArchArm, false}: {sizes: [3]int64{5, 1, 16}, scaled: true},
	{ArchArm, true}:  {sizes: [3]int64{1, 4, 1}, scaled: true},
}

// matmulVectorTileSizes returns the vector-level (M, N, K) tile triple for a
// contraction, padded or truncated to rank loops (extra outer loops tile
// at 1).
func matmulVectorTileSizes(facts TargetFacts, vectorSize int64, quantized bool, rank int) TileLevel {
	entry, ok := matmulTileTable[matmulKey{facts.Arch, quantized}]
	if !ok {
		// Unknown architectures tile every dimension at one vector.
		entry = matmulTileEntry{sizes: [3]int64{1, 1, 1}, scaled: true}
	}
	triple := entry.sizes
	if entry.scaled {
		for i := range triple {
			triple[i] *= vectorSize
		}
	}

	sizes := make(TileLevel, 0, rank)
	if rank > 3 {
		for i := 0; i < rank-3; i++ {
			sizes = append(sizes, 1)
		}
		sizes = append(sizes, triple[:]...)
	} else {
		sizes = append(sizes, triple[3-rank:]...)
	}
	return sizes
}

type convKey struct {
	kind OpKind
	arch ArchFamily
}

// convTileEntry describes per-loop vector-level tiles as base + vmul*v so a
// single table covers both literal sizes and vector-scaled ones.
type convTileEntry struct {
	base []int64
	vmul []int64
}

// Loop orders: NHWC convs are [N, OH, OW, OC, KH, KW, IC], NHWC pooling and
// depthwise are [N, OH, OW, OC/C, KH, KW], channel-first layouts put the
// channel dimension second.
var convTileTable = map[convKey]convTileEntry{
	{OpConv2DNhwc, ArchX86}:   {base: []int64{1, 1, 8, 0, 1, 1, 8}, vmul: []int64{0, 0, 0, 2, 0, 0, 0}},
	{OpConv2DNhwc, ArchRiscV}: {base: []int64{1, 1, 8, 0, 1, 1, 8}, vmul: []int64{0, 0, 0, 2, 0, 0, 0}},
	{OpConv2DNhwc, ArchArm}:   {base: []int64{1, 1, 32, 64, 1, 1, 16}},
	{OpConv2DNhwc, ArchUnknown}: {
		base: []int64{1, 1, 0, 0, 1, 1, 0}, vmul: []int64{0, 0, 1, 1, 0, 0, 1}},

	{OpPoolingNhwc, ArchX86}:   {base: []int64{1, 1, 8, 0, 1, 8}, vmul: []int64{0, 0, 0, 2, 0, 0}},
	{OpPoolingNhwc, ArchRiscV}: {base: []int64{1, 1, 8, 0, 1, 8}, vmul: []int64{0, 0, 0, 2, 0, 0}},
	{OpPoolingNhwc, ArchArm}:   {base: []int64{1, 1, 32, 64, 1, 16}},
	{OpPoolingNhwc, ArchUnknown}: {
		base: []int64{1, 1, 0, 0, 1, 0}, vmul: []int64{0, 0, 1, 1, 0, 1}},

	{OpDepthwiseConv, ArchX86}:   {base: []int64{1, 1, 8, 0, 1, 3}, vmul: []int64{0, 0, 0, 2, 0, 0}},
	{OpDepthwiseConv, ArchRiscV}: {base: []int64{1, 1, 8, 0, 1, 3}, vmul: []int64{0, 0, 0, 1, 0, 0}},
	{OpDepthwiseConv, ArchArm}:   {base: []int64{1, 1, 4, 4, 1, 4}},
	{OpDepthwiseConv, ArchUnknown}: {
		base: []int64{1, 1, 0, 0, 1, 0}, vmul: []int64{0, 0, 1, 1, 0, 1}},

	// Channel-first layouts use one layout-derived entry on every
	// architecture.
	{OpConv2DNchw, ArchUnknown}: {
		base: []int64{1, 0, 1, 8, 8, 1, 1}, vmul: []int64{0, 2, 0, 0, 0, 0, 0}},
	{OpPoolingNchw, ArchUnknown}: {
		base: []int64{1, 0, 1, 8, 8, 1, 1}, vmul: []int64{0, 2, 0, 0, 0, 0, 0}},
}

// convVectorTileSizes returns the vector-level tile sizes for a convolution
// or pooling kernel, truncated to the kernel's rank.
func convVectorTileSizes(kind OpKind, facts TargetFacts, vectorSize int64, rank int) TileLevel {
	entry, ok := convTileTable[convKey{kind, facts.Arch}]
	if !ok {
		entry, ok = convTileTable[convKey{kind, ArchUnknown}]
	}
	if !ok {
		return uniformLevel(rank, 1)
	}

	sizes := make(TileLevel, 0, len(entry.base))
	for i, b := range entry.base {
		v := b
		if entry.vmul != nil && entry.vmul[i] != 0 {
			v += entry.vmul[i] * vectorSize
		}
		sizes = append(sizes, v)
	}
	if len(sizes) > rank {
		sizes = sizes[:rank]
	}
	return sizes
}

// maxUnrollFactor bounds how far dimensions left of the vector dimension
// may unroll.
func maxUnrollFactor(TargetFacts) int64 { return 8 }

// maxTransposeUnrollFactor is the tighter bound applied to transpose-like
// kernels; only wide-SIMD x86 profits from unrolled transposes.
func maxTransposeUnrollFactor(facts TargetFacts) int64 {
	if facts.Arch == ArchX86 && facts.HasWideSIMD {
		return 8
	}
	return 1
}
