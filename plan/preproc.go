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

// PreProcStrategy is the vectorization pre-processing applied to a kernel
// before tiling is lowered.
type PreProcStrategy uint8

const (
	// PreProcNone applies no pre-processing transformation.
	PreProcNone PreProcStrategy = iota
	// PreProcPadding pads operands so vector dimensions become multiples of
	// the vector length.
	PreProcPadding
	// PreProcPeeling splits off trailing partial iterations so the main
	// loop sees full vectors.
	PreProcPeeling
)

func (s PreProcStrategy) String() string {
	switch s {
	case PreProcPadding:
		return "padding"
	case PreProcPeeling:
		return "peeling"
	default:
		return "none"
	}
}

// PreProcessing picks the pre-processing strategy for a kernel. The check
// order matters: the fully-dynamic peeling rule runs before the
// architecture defaults.
func PreProcessing(k *KernelDescriptor, facts TargetFacts, opts Options) PreProcStrategy {
	if !k.TensorSemantics {
		return PreProcNone
	}

	// The triple-tiling hierarchy is not mature enough to combine with
	// padding or peeling.
	if opts.EnableTripleTiling {
		return PreProcNone
	}

	if k.Loops.FullyDynamic() && opts.EnablePeeling {
		return PreProcPeeling
	}

	if facts.Arch == ArchX86 && opts.EnablePadding {
		return PreProcPadding
	}

	if facts.Arch == ArchRiscV && opts.EnablePeeling {
		return PreProcPeeling
	}

	return PreProcNone
}
