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

// OpKind is the closed set of operation categories the planner knows how to
// tile. Adding a category means adding a value here and a branch in
// PlanKernel, nothing else.
type OpKind uint8

const (
	// OpUnknown is any operation without tiling semantics. It plans to the
	// Default pipeline with an empty hierarchy; this is success, not failure.
	OpUnknown OpKind = iota
	// OpContraction covers matmul, batch matmul and other inner-product
	// style ops with one innermost reduction dimension.
	OpContraction
	// OpMmt4d is the data-tiled matmul on pre-packed 4D operands.
	OpMmt4d
	// OpConv2DNhwc is a 2D convolution with [N, OH, OW, OC, KH, KW, IC]
	// iteration order.
	OpConv2DNhwc
	// OpConv2DNchw is a 2D convolution in channel-first layout.
	OpConv2DNchw
	// OpDepthwiseConv is a depthwise 2D convolution in NHWC layout.
	OpDepthwiseConv
	// OpPoolingNhwc covers sum/min/max pooling in NHWC layout.
	OpPoolingNhwc
	// OpPoolingNchw covers pooling in channel-first layout.
	OpPoolingNchw
	// OpPack tiles a tensor into a blocked layout.
	OpPack
	// OpUnpack restores a blocked layout to row-major.
	OpUnpack
	// OpFFT is a radix-2 FFT stage.
	OpFFT
	// OpGeneric is a structured loop nest without a more specific category:
	// elementwise, reduction and transpose kernels land here and are told
	// apart from the descriptor itself.
	OpGeneric
	// OpOther is a tilable operation with no specialized heuristic; it gets
	// a distribution-only configuration.
	OpOther
)

func (k OpKind) String() string {
	switch k {
	case OpContraction:
		return "contraction"
	case OpMmt4d:
		return "mmt4d"
	case OpConv2DNhwc:
		return "conv_2d_nhwc"
	case OpConv2DNchw:
		return "conv_2d_nchw"
	case OpDepthwiseConv:
		return "depthwise_conv_2d"
	case OpPoolingNhwc:
		return "pooling_nhwc"
	case OpPoolingNchw:
		return "pooling_nchw"
	case OpPack:
		return "pack"
	case OpUnpack:
		return "unpack"
	case OpFFT:
		return "fft"
	case OpGeneric:
		return "generic"
	case OpOther:
		return "other"
	default:
		return "unknown"
	}
}

// ParseOpKind is the inverse of String. Unrecognized names map to OpUnknown.
func ParseOpKind(s string) OpKind {
	for k := OpContraction; k <= OpOther; k++ {
		if k.String() == s {
			return k
		}
	}
	return OpUnknown
}

// Operand describes one input or output of a kernel as the planner sees it:
// a shape, an element width, and how its innermost axis maps onto the loop
// nest.
type Operand struct {
	// Shape holds static extents; entries may be Dynamic.
	Shape []int64
	// ElemBits is the element bit width (8, 16, 32, 64).
	ElemBits int
	// FastestVarying is the loop dimension the operand's innermost axis
	// iterates over, or -1 when the operand is rank-0 or not loop-indexed.
	FastestVarying int
	// Identity and Permutation classify the operand's access pattern.
	// Identity means axis i reads loop i; Permutation means the axes are a
	// (possibly non-trivial) reordering of the loops.
	Identity    bool
	Permutation bool
}

// KernelDescriptor is everything the planner consumes about one kernel.
// It is plain data extracted from the IR by the caller; the planner never
// reads IR directly.
type KernelDescriptor struct {
	Name string
	Kind OpKind

	Loops   IterationDomain
	Inputs  []Operand
	Outputs []Operand

	// TensorSemantics is false when the kernel reads and writes fixed
	// buffers; such kernels skip vectorization pre-processing.
	TensorSemantics bool

	// Batch marks a batch contraction; the batch dimension is never split
	// across more than one unit at the distribution level.
	Batch bool

	// InnerTiles and InnerDimsPos carry pack/unpack (and mmt4d) static
	// inner-tile metadata: InnerTiles[j] blocks loop InnerDimsPos[j].
	InnerTiles   []int64
	InnerDimsPos []int

	// FFTStage is the radix-2 stage count; FFTStageStatic is false when the
	// stage is not a compile-time constant.
	FFTStage       int64
	FFTStageStatic bool

	// UserConfig, when set, short-circuits planning for this kernel.
	UserConfig *Configuration
}

// maxDistributionDims bounds how many parallel loops the distribution level
// may split across workers.
const maxDistributionDims = 3

// PartitionableLoops returns the loop indices eligible for work
// distribution: the parallel dimensions, keeping only the innermost
// maxDistributionDims of them.
func (k *KernelDescriptor) PartitionableLoops() []int {
	var loops []int
	for i, d := range k.Loops {
		if d.Kind == Parallel {
			loops = append(loops, i)
		}
	}
	if len(loops) > maxDistributionDims {
		loops = loops[len(loops)-maxDistributionDims:]
	}
	return loops
}

// ReductionDims returns the indices of the reduction dimensions.
func (k *KernelDescriptor) ReductionDims() []int {
	var dims []int
	for i, d := range k.Loops {
		if d.Kind == Reduction {
			dims = append(dims, i)
		}
	}
	return dims
}

// Elementwise reports whether the kernel is a pure elementwise map: at least
// one loop, all parallel, and every output written through an identity
// access.
func (k *KernelDescriptor) Elementwise() bool {
	if len(k.Loops) == 0 || len(k.Outputs) == 0 {
		return false
	}
	for _, d := range k.Loops {
		if d.Kind != Parallel {
			return false
		}
	}
	for _, out := range k.Outputs {
		if !out.Identity {
			return false
		}
	}
	return true
}

// TransposeLike reports whether the kernel is a single-input permutation:
// one input, one output, all loops parallel, and exactly one side accessed
// through a non-identity permutation.
func (k *KernelDescriptor) TransposeLike() bool {
	if len(k.Loops) < 2 || len(k.Inputs) != 1 || len(k.Outputs) != 1 {
		return false
	}
	for _, d := range k.Loops {
		if d.Kind != Parallel {
			return false
		}
	}
	in, out := k.Inputs[0], k.Outputs[0]
	return (in.Identity && out.Permutation && !out.Identity) ||
		(out.Identity && in.Permutation && !in.Identity)
}

// referenceElemBits returns the narrowest ranked operand element width, used
// by the default path to size vectors. Rank-0 operands are skipped; they are
// not vector-loadable, so using them would pessimize the vector length.
func (k *KernelDescriptor) referenceElemBits() int {
	bits := 32
	scan := func(ops []Operand) {
		for _, op := range ops {
			if len(op.Shape) == 0 || op.ElemBits <= 0 {
				continue
			}
			if op.ElemBits < bits {
				bits = op.ElemBits
			}
		}
	}
	scan(k.Inputs)
	scan(k.Outputs)
	return bits
}

// Kernel pairs a descriptor with its at-most-once Configuration slot.
type Kernel struct {
	KernelDescriptor

	config *Configuration
}

// Config returns the attached Configuration, or nil if the kernel has not
// been planned.
func (k *Kernel) Config() *Configuration { return k.config }

// Attach stores cfg on the kernel. It reports false, and changes nothing,
// if a Configuration is already present.
func (k *Kernel) Attach(cfg Configuration) bool {
	if k.config != nil {
		return false
	}
	k.config = &cfg
	return true
}
