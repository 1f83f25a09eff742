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

// Package main is a diagnostic tool that prints the CPU features Go detects
// on this machine and the target facts the planner derives from them.
package main

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/scottamain/kernelplan/plan"
)

func main() {
	fmt.Printf("GOOS: %s\n", runtime.GOOS)
	fmt.Printf("GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("NumCPU: %d\n", runtime.NumCPU())
	fmt.Println()

	facts := plan.DetectHostTarget()
	fmt.Println("=== planner target facts ===")
	fmt.Printf("  Arch:             %s\n", facts.Arch)
	fmt.Printf("  NativeVectorBits: %d\n", facts.NativeVectorBits)
	fmt.Printf("  ThreadCount:      %d\n", facts.ThreadCount)
	fmt.Printf("  HasWideSIMD:      %v\n", facts.HasWideSIMD)
	fmt.Printf("  HasMatrixExt:     %v\n", facts.HasMatrixExt)
	fmt.Printf("  f32 vector:       %d elements\n", facts.VectorSize(32))
	fmt.Printf("  i8 vector:        %d elements\n", facts.VectorSize(8))
	fmt.Println()

	switch runtime.GOARCH {
	case "arm64":
		printARM64Features()
	case "amd64":
		printAMD64Features()
	case "riscv64":
		printRISCV64Features()
	}
}

func printARM64Features() {
	fmt.Println("=== golang.org/x/sys/cpu.ARM64 ===")
	fmt.Printf("  HasASIMD:   %v (NEON baseline)\n", cpu.ARM64.HasASIMD)
	fmt.Printf("  HasFP:      %v (Floating point)\n", cpu.ARM64.HasFP)
	fmt.Printf("  HasFPHP:    %v (FP16 scalar, ARMv8.2-A)\n", cpu.ARM64.HasFPHP)
	fmt.Printf("  HasASIMDHP: %v (FP16 NEON, ARMv8.2-A)\n", cpu.ARM64.HasASIMDHP)
	fmt.Printf("  HasSVE:     %v (Scalable Vector Extension)\n", cpu.ARM64.HasSVE)
	fmt.Printf("  HasSVE2:    %v (SVE2)\n", cpu.ARM64.HasSVE2)
	fmt.Printf("  HasSME:     %v (Scalable Matrix Extension)\n", cpu.ARM64.HasSME)
	fmt.Printf("  HasATOMICS: %v (Large System Extensions)\n", cpu.ARM64.HasATOMICS)
	fmt.Printf("  HasCRC32:   %v\n", cpu.ARM64.HasCRC32)
}

func printAMD64Features() {
	fmt.Println("=== golang.org/x/sys/cpu.X86 ===")
	fmt.Printf("  HasAVX:      %v\n", cpu.X86.HasAVX)
	fmt.Printf("  HasAVX2:     %v\n", cpu.X86.HasAVX2)
	fmt.Printf("  HasAVX512F:  %v\n", cpu.X86.HasAVX512F)
	fmt.Printf("  HasAVX512BW: %v\n", cpu.X86.HasAVX512BW)
	fmt.Printf("  HasAVX512VL: %v\n", cpu.X86.HasAVX512VL)
	fmt.Printf("  HasAVX512DQ: %v\n", cpu.X86.HasAVX512DQ)
	fmt.Printf("  HasAMXTile:  %v\n", cpu.X86.HasAMXTile)
	fmt.Printf("  HasAMXInt8:  %v\n", cpu.X86.HasAMXInt8)
	fmt.Printf("  HasAMXBF16:  %v\n", cpu.X86.HasAMXBF16)
	fmt.Printf("  HasFMA:      %v\n", cpu.X86.HasFMA)
	fmt.Printf("  HasSSE42:    %v\n", cpu.X86.HasSSE42)
}

func printRISCV64Features() {
	fmt.Println("=== golang.org/x/sys/cpu.RISCV64 ===")
	fmt.Printf("  HasV:              %v (Vector extension)\n", cpu.RISCV64.HasV)
	fmt.Printf("  HasFastMisaligned: %v\n", cpu.RISCV64.HasFastMisaligned)
}
