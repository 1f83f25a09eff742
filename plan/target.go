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
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// ArchFamily is the instruction-set family the kernel is compiled for.
type ArchFamily uint8

const (
	ArchUnknown ArchFamily = iota
	ArchX86
	ArchArm
	ArchRiscV
)

func (a ArchFamily) String() string {
	switch a {
	case ArchX86:
		return "x86"
	case ArchArm:
		return "arm"
	case ArchRiscV:
		return "riscv"
	default:
		return "unknown"
	}
}

// ParseArchFamily maps common architecture spellings onto an ArchFamily.
// Unrecognized strings resolve to ArchUnknown, never an error; unknown
// architectures fall back to documented defaults everywhere.
func ParseArchFamily(s string) ArchFamily {
	switch strings.ToLower(s) {
	case "x86", "x86_64", "amd64", "i386", "386":
		return ArchX86
	case "arm", "arm64", "aarch64":
		return ArchArm
	case "riscv", "riscv32", "riscv64":
		return ArchRiscV
	default:
		return ArchUnknown
	}
}

// Defaults used when a TargetFacts field is left zero.
const (
	DefaultNativeVectorBits = 128
	DefaultThreadCount      = 8
)

// TargetFacts is what the planner knows about the target hardware. The zero
// value is usable: unknown architecture, 128-bit vectors, 8 threads.
type TargetFacts struct {
	Arch ArchFamily

	// NativeVectorBits is the SIMD register width in bits. Zero means
	// DefaultNativeVectorBits. A target description or user override is
	// applied here before planning.
	NativeVectorBits int

	// ThreadCount is the runtime worker count the distribution level
	// balances against. Zero means DefaultThreadCount.
	ThreadCount int

	// HasWideSIMD is set when the target has a wide permute-capable SIMD
	// unit (AVX2, SVE, RVV); it gates the transpose specialization.
	HasWideSIMD bool

	// HasMatrixExt is set when the target has a matrix/tile extension
	// (AMX, SME).
	HasMatrixExt bool
}

// VectorSize returns how many elements of the given bit width one native
// vector register holds. Always at least 1.
func (t TargetFacts) VectorSize(elemBits int) int {
	bits := t.NativeVectorBits
	if bits <= 0 {
		bits = DefaultNativeVectorBits
	}
	if elemBits <= 0 {
		return 1
	}
	n := bits / elemBits
	if n < 1 {
		return 1
	}
	return n
}

func (t TargetFacts) threadCount() int {
	if t.ThreadCount <= 0 {
		return DefaultThreadCount
	}
	return t.ThreadCount
}

// DetectHostTarget derives TargetFacts from the machine the planner runs
// on, for CLI and test use. Cross-compilation flows should build the facts
// from the target description instead.
func DetectHostTarget() TargetFacts {
	facts := TargetFacts{
		NativeVectorBits: DefaultNativeVectorBits,
		ThreadCount:      runtime.NumCPU(),
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		facts.Arch = ArchX86
		switch {
		case cpu.X86.HasAVX512F:
			facts.NativeVectorBits = 512
		case cpu.X86.HasAVX2:
			facts.NativeVectorBits = 256
		}
		facts.HasWideSIMD = cpu.X86.HasAVX2
		facts.HasMatrixExt = cpu.X86.HasAMXTile
	case "arm64":
		facts.Arch = ArchArm
		facts.HasWideSIMD = cpu.ARM64.HasSVE
		facts.HasMatrixExt = cpu.ARM64.HasSME
	case "riscv64":
		facts.Arch = ArchRiscV
		facts.HasWideSIMD = cpu.RISCV64.HasV
	}
	return facts
}
