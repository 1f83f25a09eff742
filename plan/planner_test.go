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

func TestPlanKernelUnknown(t *testing.T) {
	// An unrecognized category is success with no specialized tiling, not
	// an error.
	k := &KernelDescriptor{Name: "mystery", Kind: OpUnknown, Loops: parallelDomain(100)}
	got, err := PlanKernel(k, TargetFacts{}, DefaultOptions())
	if err != nil {
		t.Fatalf("PlanKernel: %v", err)
	}
	if len(got.Levels) != 0 || got.Pipeline != PipelineDefault {
		t.Errorf("got %s, want empty default configuration", got)
	}
}

func TestPlanKernelDeterministic(t *testing.T) {
	k := matmulKernel(384, 512, 768, 32, 32)
	facts := TargetFacts{Arch: ArchX86, NativeVectorBits: 256, ThreadCount: 8}

	first, err := PlanKernel(k, facts, DefaultOptions())
	if err != nil {
		t.Fatalf("PlanKernel: %v", err)
	}
	second, err := PlanKernel(k, facts, DefaultOptions())
	if err != nil {
		t.Fatalf("PlanKernel: %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("repeated planning differs: %s vs %s", first, second)
	}
}

func TestPlanModule(t *testing.T) {
	matmul := &Kernel{KernelDescriptor: *matmulKernel(128, 128, 128, 32, 32)}
	add := &Kernel{KernelDescriptor: *elementwiseKernel(512, 512)}
	facts := TargetFacts{Arch: ArchX86, NativeVectorBits: 256, ThreadCount: 8}

	if err := PlanModule([]*Kernel{matmul, add}, facts, DefaultOptions()); err != nil {
		t.Fatalf("PlanModule: %v", err)
	}
	if matmul.Config() == nil || add.Config() == nil {
		t.Fatal("kernels not configured")
	}
	if matmul.Config().Pipeline != PipelinePadThenTileContraction {
		t.Errorf("matmul pipeline = %s", matmul.Config().Pipeline)
	}
	if add.Config().Pipeline != PipelineTileThenPeel {
		t.Errorf("add pipeline = %s", add.Config().Pipeline)
	}
}

func TestPlanModuleUserConfig(t *testing.T) {
	user := Configuration{
		Levels:   []TileLevel{{16, 16, 0}},
		Pipeline: PipelineNoPadDoubleTileContraction,
	}
	k := &Kernel{KernelDescriptor: *matmulKernel(128, 128, 128, 32, 32)}
	k.UserConfig = &user

	if err := PlanModule([]*Kernel{k}, TargetFacts{Arch: ArchX86}, DefaultOptions()); err != nil {
		t.Fatalf("PlanModule: %v", err)
	}
	got := k.Config()
	if got == nil || !got.Equal(user) {
		t.Fatalf("config = %v, want the user override", got)
	}
	// The attached copy must not alias the user's slices.
	got.Levels[0][0] = 99
	if user.Levels[0][0] != 16 {
		t.Error("attached configuration aliases UserConfig")
	}
}

func TestPlanModuleSkipsConfigured(t *testing.T) {
	k := &Kernel{KernelDescriptor: *matmulKernel(128, 128, 128, 32, 32)}
	pre := Configuration{Pipeline: PipelineDefault}
	if !k.Attach(pre) {
		t.Fatal("first Attach failed")
	}
	if err := PlanModule([]*Kernel{k}, TargetFacts{Arch: ArchX86}, DefaultOptions()); err != nil {
		t.Fatalf("PlanModule: %v", err)
	}
	if !k.Config().Equal(pre) {
		t.Errorf("config = %s, want the pre-attached one untouched", *k.Config())
	}
}

func TestPlanModuleDiagnosticAborts(t *testing.T) {
	good := &Kernel{KernelDescriptor: *elementwiseKernel(512, 512)}
	bad := &Kernel{KernelDescriptor: *matmulKernel(128, 128, 128, 32, 32)}
	bad.Loops[0].Kind = Reduction

	err := PlanModule([]*Kernel{good, bad}, TargetFacts{Arch: ArchX86}, DefaultOptions())
	var diag *Diagnostic
	if !errors.As(err, &diag) {
		t.Fatalf("err = %v, want *Diagnostic", err)
	}
	if diag.Kernel != "matmul" {
		t.Errorf("diagnostic names kernel %q, want %q", diag.Kernel, "matmul")
	}
	if good.Config() == nil {
		t.Error("kernel before the failing one lost its configuration")
	}
	if bad.Config() != nil {
		t.Error("failing kernel must stay unconfigured")
	}
}

func TestAttachAtMostOnce(t *testing.T) {
	k := &Kernel{}
	first := Configuration{Pipeline: PipelineDefault}
	if !k.Attach(first) {
		t.Fatal("first Attach failed")
	}
	if k.Attach(Configuration{Pipeline: PipelineMmt4dTiling}) {
		t.Fatal("second Attach succeeded")
	}
	if k.Config().Pipeline != PipelineDefault {
		t.Errorf("config overwritten: %s", k.Config().Pipeline)
	}
}

func TestPlanKernelVectorBackend(t *testing.T) {
	facts := TargetFacts{ThreadCount: 8}

	t.Run("dynamic dims pinned", func(t *testing.T) {
		k := &KernelDescriptor{
			Name:  "add",
			Kind:  OpGeneric,
			Loops: parallelDomain(-1),
			Inputs: []Operand{
				{Shape: []int64{Dynamic}, ElemBits: 32, FastestVarying: 0, Identity: true},
			},
			Outputs: []Operand{
				{Shape: []int64{Dynamic}, ElemBits: 32, FastestVarying: 0, Identity: true},
			},
		}
		got, err := PlanKernelVectorBackend(k, facts, DefaultOptions())
		if err != nil {
			t.Fatalf("PlanKernelVectorBackend: %v", err)
		}
		if !slices.Equal(got.Levels[0], TileLevel{1}) {
			t.Errorf("tiles = %v, want [1]", got.Levels[0])
		}
		if got.Pipeline != PipelineVectorBackendDefault {
			t.Errorf("pipeline = %s, want %s", got.Pipeline, PipelineVectorBackendDefault)
		}
	})

	t.Run("unpack keeps data tiling sizes", func(t *testing.T) {
		k := &KernelDescriptor{
			Name:         "unpack",
			Kind:         OpUnpack,
			Loops:        parallelDomain(100, 100),
			InnerDimsPos: []int{0, 1},
			InnerTiles:   []int64{8, 8},
		}
		got, err := PlanKernelVectorBackend(k, facts, DefaultOptions())
		if err != nil {
			t.Fatalf("PlanKernelVectorBackend: %v", err)
		}
		if !slices.Equal(got.Levels[0], TileLevel{16, 16}) {
			t.Errorf("tiles = %v, want [16 16]", got.Levels[0])
		}
		if got.Pipeline != PipelineVectorBackendDefault {
			t.Errorf("pipeline = %s, want %s", got.Pipeline, PipelineVectorBackendDefault)
		}
	})

	t.Run("fft requires static stage", func(t *testing.T) {
		k := &KernelDescriptor{Name: "fft", Kind: OpFFT, Loops: parallelDomain(64, 1024)}
		_, err := PlanKernelVectorBackend(k, facts, DefaultOptions())
		var diag *Diagnostic
		if !errors.As(err, &diag) {
			t.Fatalf("err = %v, want *Diagnostic", err)
		}
	})
}
