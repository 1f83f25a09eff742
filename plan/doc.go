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

// Package plan decides how a CPU code generator should tile a compute
// kernel's loop nest and which lowering pipeline should consume the result.
//
// Given a KernelDescriptor (loop bounds, iterator kinds, operand shapes and
// element widths) and TargetFacts (ISA family, native vector width, thread
// count), PlanKernel produces a Configuration: an ordered tile hierarchy
// whose outermost level distributes work across threads, plus a Pipeline tag
// naming the downstream lowering recipe. The planner is a pure function; the
// caller (or PlanModule) attaches the Configuration to the kernel, at most
// once.
//
// All heuristics are deterministic and bounded: divisor scans never exceed
// O(maxSize) iterations, and the workgroup-balancing pass only ever doubles
// tile sizes toward a fixed ceiling.
package plan
