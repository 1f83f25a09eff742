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

import "testing"

func TestPreProcessing(t *testing.T) {
	staticKernel := func(tensor bool) *KernelDescriptor {
		return &KernelDescriptor{
			Loops:           matmulDomain(128, 128, 128),
			TensorSemantics: tensor,
		}
	}
	dynamicKernel := &KernelDescriptor{
		Loops:           parallelDomain(-1, -1),
		TensorSemantics: true,
	}

	tests := []struct {
		name  string
		k     *KernelDescriptor
		facts TargetFacts
		opts  Options
		want  PreProcStrategy
	}{
		{
			name: "buffer semantics",
			k:    staticKernel(false), facts: TargetFacts{Arch: ArchX86},
			opts: DefaultOptions(), want: PreProcNone,
		},
		{
			name: "triple tiling disables preprocessing",
			k:    staticKernel(true), facts: TargetFacts{Arch: ArchX86},
			opts: Options{EnablePadding: true, EnablePeeling: true, EnableTripleTiling: true},
			want: PreProcNone,
		},
		{
			name: "fully dynamic peels before arch default",
			k:    dynamicKernel, facts: TargetFacts{Arch: ArchX86},
			opts: DefaultOptions(), want: PreProcPeeling,
		},
		{
			name: "x86 pads",
			k:    staticKernel(true), facts: TargetFacts{Arch: ArchX86},
			opts: DefaultOptions(), want: PreProcPadding,
		},
		{
			name: "x86 padding disabled",
			k:    staticKernel(true), facts: TargetFacts{Arch: ArchX86},
			opts: Options{EnablePeeling: true}, want: PreProcNone,
		},
		{
			name: "riscv peels",
			k:    staticKernel(true), facts: TargetFacts{Arch: ArchRiscV},
			opts: DefaultOptions(), want: PreProcPeeling,
		},
		{
			name: "arm default",
			k:    staticKernel(true), facts: TargetFacts{Arch: ArchArm},
			opts: DefaultOptions(), want: PreProcNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PreProcessing(tt.k, tt.facts, tt.opts); got != tt.want {
				t.Errorf("PreProcessing() = %s, want %s", got, tt.want)
			}
		})
	}
}
