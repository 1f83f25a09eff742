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
	"slices"
	"testing"
)

func TestPlanPack(t *testing.T) {
	k := &KernelDescriptor{
		Name:         "pack",
		Kind:         OpPack,
		Loops:        parallelDomain(64, 64),
		InnerDimsPos: []int{0, 1},
		InnerTiles:   []int64{8, 16},
	}
	got, err := planPack(k, DefaultOptions())
	if err != nil {
		t.Fatalf("planPack: %v", err)
	}
	// Workload counts unpacked elements: 64 default divided by the inner
	// tile per blocked dim.
	if !slices.Equal(got.Levels[0], TileLevel{8, 4}) {
		t.Errorf("tiles = %v, want [8 4]", got.Levels[0])
	}
	if got.Pipeline != PipelineDataTilingOnly {
		t.Errorf("pipeline = %s, want %s", got.Pipeline, PipelineDataTilingOnly)
	}
}

func TestPlanPackDynamicInnerTile(t *testing.T) {
	k := &KernelDescriptor{
		Name:         "pack",
		Kind:         OpPack,
		Loops:        parallelDomain(64, 64),
		InnerDimsPos: []int{1},
		InnerTiles:   []int64{Dynamic},
	}
	got, err := planPack(k, DefaultOptions())
	if err != nil {
		t.Fatalf("planPack: %v", err)
	}
	if !slices.Equal(got.Levels[0], TileLevel{64, 64}) {
		t.Errorf("tiles = %v, want dynamic inner tile ignored", got.Levels[0])
	}
}

func TestPlanUnpack(t *testing.T) {
	k := &KernelDescriptor{
		Name:         "unpack",
		Kind:         OpUnpack,
		Loops:        parallelDomain(100, 100),
		InnerDimsPos: []int{0, 1},
		InnerTiles:   []int64{6, 7},
	}
	got, err := planUnpack(k, PipelineDataTilingOnly)
	if err != nil {
		t.Fatalf("planUnpack: %v", err)
	}
	// 16 rounded up to whole inner tiles.
	if !slices.Equal(got.Levels[0], TileLevel{18, 21}) {
		t.Errorf("tiles = %v, want [18 21]", got.Levels[0])
	}
}

func TestPlanFFT(t *testing.T) {
	tests := []struct {
		name  string
		stage int64
		want  TileLevel
	}{
		// 2^5 = 32 stays below the 64 floor.
		{name: "small stage floors", stage: 5, want: TileLevel{64, 64}},
		{name: "large stage doubles", stage: 7, want: TileLevel{64, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := &KernelDescriptor{
				Name:           "fft",
				Kind:           OpFFT,
				Loops:          parallelDomain(64, 1024),
				FFTStage:       tt.stage,
				FFTStageStatic: true,
			}
			got, err := planFFT(k, DefaultOptions(), PipelineDefault)
			if err != nil {
				t.Fatalf("planFFT: %v", err)
			}
			if !slices.Equal(got.Levels[0], tt.want) {
				t.Errorf("tiles = %v, want %v", got.Levels[0], tt.want)
			}
		})
	}
}

func TestPlanFFTNonStaticStage(t *testing.T) {
	k := &KernelDescriptor{
		Name:  "fft",
		Kind:  OpFFT,
		Loops: parallelDomain(64, 1024),
	}
	_, err := planFFT(k, DefaultOptions(), PipelineDefault)
	var diag *Diagnostic
	if !errors.As(err, &diag) {
		t.Fatalf("err = %v, want *Diagnostic", err)
	}
	if diag.Reason != "non-constant stage might not work for fft op" {
		t.Errorf("unexpected reason %q", diag.Reason)
	}
}
