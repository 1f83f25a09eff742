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

// PlanKernel computes a lowering Configuration for a single kernel. It is a
// pure function of the descriptor, the target facts, and the options; the
// caller decides what to do with the result. A returned error is always a
// *Diagnostic describing why no configuration could be produced.
func PlanKernel(k *KernelDescriptor, facts TargetFacts, opts Options) (Configuration, error) {
	switch k.Kind {
	case OpContraction:
		return planContraction(k, facts, opts)
	case OpMmt4d:
		return planMmt4d(k, facts, opts)
	case OpConv2DNhwc, OpConv2DNchw, OpDepthwiseConv, OpPoolingNhwc, OpPoolingNchw:
		return planConv(k, facts, opts)
	case OpPack:
		return planPack(k, opts)
	case OpUnpack:
		return planUnpack(k, PipelineDataTilingOnly)
	case OpFFT:
		return planFFT(k, opts, PipelineDefault)
	case OpGeneric:
		return planGeneric(k, facts, opts)
	case OpOther:
		return planDefault(k, facts, opts, PipelineDefault), nil
	default:
		// Kernels the planner does not understand still lower; they just
		// get no specialized tiling.
		return Configuration{Pipeline: PipelineDefault}, nil
	}
}

// PlanKernelVectorBackend plans a kernel for the portable vector backend,
// which has no target SIMD registers and handles only a single distribution
// level. Data-tiling and FFT kernels keep their specialized sizes; everything
// else gets the default distribution with dynamic dimensions pinned to 1.
func PlanKernelVectorBackend(k *KernelDescriptor, facts TargetFacts, opts Options) (Configuration, error) {
	switch k.Kind {
	case OpFFT:
		return planFFT(k, opts, PipelineVectorBackendDefault)
	case OpUnpack:
		return planUnpack(k, PipelineVectorBackendDefault)
	default:
	}

	cfg := planDefault(k, facts, opts, PipelineVectorBackendDefault)
	for i, d := range k.Loops {
		if IsDynamic(d.TripCount()) && cfg.Levels[0][i] != 0 {
			cfg.Levels[0][i] = 1
		}
	}
	return cfg, nil
}

// PlanModule plans every kernel in a module. Kernels are independent; each
// is planned in turn and the result attached. Kernels that already carry a
// configuration are left alone, and a kernel-supplied UserConfig wins over
// planning. The first diagnostic aborts the walk.
func PlanModule(kernels []*Kernel, facts TargetFacts, opts Options) error {
	for _, k := range kernels {
		if k.Config() != nil {
			continue
		}
		if k.UserConfig != nil {
			k.Attach(k.UserConfig.Clone())
			continue
		}
		cfg, err := PlanKernel(&k.KernelDescriptor, facts, opts)
		if err != nil {
			return err
		}
		k.Attach(cfg)
	}
	return nil
}
