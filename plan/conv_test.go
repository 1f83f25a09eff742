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
	"errors"
	"testing"
)

// convNhwcKernel is a [N, OH, OW, OC, KH, KW, IC] convolution.
func convNhwcKernel(n, oh, ow, oc, kh, kw, ic int64) *KernelDescriptor {
	return &KernelDescriptor{
		Name: "conv_2d_nhwc",
		Kind: OpConv2DNhwc,
		Loops: IterationDomain{
			{Upper: n, Kind: Parallel},
			{Upper: oh, Kind: Parallel},
			{Upper: ow, Kind: Parallel},
			{Upper: oc, Kind: Parallel},
			{Upper: kh, Kind: Reduction},
			{Upper: kw, Kind: Reduction},
			{Upper: ic, Kind: Reduction},
		},
		Inputs: []Operand{
			{Shape: []int64{n, oh + kh - 1, ow + kw - 1, ic}, ElemBits: 32, FastestVarying: 6},
			{Shape: []int64{kh, kw, ic, oc}, ElemBits: 32, FastestVarying: 3},
		},
		Outputs: []Operand{
			{Shape: []int64{n, oh, ow, oc}, ElemBits: 32, FastestVarying: 3, Identity: true},
		},
		TensorSemantics: true,
	}
}

func TestPlanConvNhwcX86(t *testing.T) {
	k := convNhwcKernel(1, 56, 56, 64, 3, 3, 64)
	facts := TargetFacts{Arch: ArchX86, NativeVectorBits: 256, ThreadCount: 8}

	got, err := planConv(k, facts, DefaultOptions())
	if err != nil {
		t.Fatalf("planConv: %v", err)
	}
	assertConfig(t, got, Configuration{
		Levels: []TileLevel{
			{0, 14, 14, 64, 0, 0, 0},
			{1, 1, 7, 16, 0, 0, 0},
			{0, 0, 0, 0, 1, 1, 8},
		},
		Pipeline:         PipelineConvTileAndDecompose,
		NativeVectorSize: 8,
	})
}

func TestPlanConvDynamicDims(t *testing.T) {
	k := convNhwcKernel(1, 56, 56, 64, 3, 3, 64)
	// Dynamic spatial dim: the parallel vector tile there collapses to 1 so
	// the dimension is still vectorized.
	k.Loops[2].Upper = Dynamic

	facts := TargetFacts{Arch: ArchX86, NativeVectorBits: 256, ThreadCount: 8}
	got, err := planConv(k, facts, DefaultOptions())
	if err != nil {
		t.Fatalf("planConv: %v", err)
	}
	if got.Levels[1][2] != 1 {
		t.Errorf("parallel level = %v, want tile 1 on the dynamic dim", got.Levels[1])
	}
}

func TestPlanConvRejectsLowRank(t *testing.T) {
	k := &KernelDescriptor{
		Name:  "conv_1d",
		Kind:  OpConv2DNhwc,
		Loops: parallelDomain(1, 8, 8),
	}
	_, err := planConv(k, TargetFacts{}, DefaultOptions())
	var diag *Diagnostic
	if !errors.As(err, &diag) {
		t.Fatalf("err = %v, want *Diagnostic", err)
	}
}

func TestConvVectorTileSizes(t *testing.T) {
	tests := []struct {
		name       string
		kind       OpKind
		facts      TargetFacts
		vectorSize int64
		rank       int
		want       TileLevel
	}{
		{
			name: "nhwc x86", kind: OpConv2DNhwc,
			facts: TargetFacts{Arch: ArchX86}, vectorSize: 8, rank: 7,
			want: TileLevel{1, 1, 8, 16, 1, 1, 8},
		},
		{
			name: "nhwc arm", kind: OpConv2DNhwc,
			facts: TargetFacts{Arch: ArchArm}, vectorSize: 4, rank: 7,
			want: TileLevel{1, 1, 32, 64, 1, 1, 16},
		},
		{
			name: "nhwc unknown arch scales", kind: OpConv2DNhwc,
			facts: TargetFacts{}, vectorSize: 4, rank: 7,
			want: TileLevel{1, 1, 4, 4, 1, 1, 4},
		},
		{
			name: "pooling x86", kind: OpPoolingNhwc,
			facts: TargetFacts{Arch: ArchX86}, vectorSize: 8, rank: 6,
			want: TileLevel{1, 1, 8, 16, 1, 8},
		},
		{
			name: "depthwise riscv", kind: OpDepthwiseConv,
			facts: TargetFacts{Arch: ArchRiscV}, vectorSize: 4, rank: 6,
			want: TileLevel{1, 1, 8, 4, 1, 3},
		},
		{
			name: "nchw layout table", kind: OpConv2DNchw,
			facts: TargetFacts{Arch: ArchX86}, vectorSize: 8, rank: 7,
			want: TileLevel{1, 16, 1, 8, 8, 1, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convVectorTileSizes(tt.kind, tt.facts, tt.vectorSize, tt.rank)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
