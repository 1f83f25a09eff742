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

func TestVectorSize(t *testing.T) {
	tests := []struct {
		name     string
		facts    TargetFacts
		elemBits int
		want     int
	}{
		{name: "avx2 f32", facts: TargetFacts{NativeVectorBits: 256}, elemBits: 32, want: 8},
		{name: "avx2 i8", facts: TargetFacts{NativeVectorBits: 256}, elemBits: 8, want: 32},
		{name: "neon f64", facts: TargetFacts{NativeVectorBits: 128}, elemBits: 64, want: 2},
		{name: "zero facts default", facts: TargetFacts{}, elemBits: 32, want: 4},
		{name: "element wider than register", facts: TargetFacts{NativeVectorBits: 64}, elemBits: 128, want: 1},
		{name: "zero element width", facts: TargetFacts{NativeVectorBits: 256}, elemBits: 0, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.facts.VectorSize(tt.elemBits); got != tt.want {
				t.Errorf("VectorSize(%d) = %d, want %d", tt.elemBits, got, tt.want)
			}
		})
	}
}

func TestParseArchFamily(t *testing.T) {
	tests := []struct {
		in   string
		want ArchFamily
	}{
		{"amd64", ArchX86},
		{"x86_64", ArchX86},
		{"X86", ArchX86},
		{"aarch64", ArchArm},
		{"arm64", ArchArm},
		{"riscv64", ArchRiscV},
		{"wasm32", ArchUnknown},
		{"", ArchUnknown},
	}
	for _, tt := range tests {
		if got := ParseArchFamily(tt.in); got != tt.want {
			t.Errorf("ParseArchFamily(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestThreadCountDefault(t *testing.T) {
	if got := (TargetFacts{}).threadCount(); got != DefaultThreadCount {
		t.Errorf("threadCount() = %d, want %d", got, DefaultThreadCount)
	}
	if got := (TargetFacts{ThreadCount: 16}).threadCount(); got != 16 {
		t.Errorf("threadCount() = %d, want 16", got)
	}
}
