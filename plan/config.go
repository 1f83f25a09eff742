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
	"fmt"
	"slices"
)

// Configuration is the planner's full output for one kernel: the tile
// hierarchy (index 0 = outermost distribution level), the pipeline that
// consumes it, and optionally the vector width in elements the tiles were
// sized against. Configurations are immutable once attached; downstream
// stages only read them.
type Configuration struct {
	Levels           []TileLevel
	Pipeline         Pipeline
	NativeVectorSize int
}

// Clone returns a deep copy.
func (c Configuration) Clone() Configuration {
	levels := make([]TileLevel, len(c.Levels))
	for i, l := range c.Levels {
		levels[i] = slices.Clone(l)
	}
	return Configuration{
		Levels:           levels,
		Pipeline:         c.Pipeline,
		NativeVectorSize: c.NativeVectorSize,
	}
}

// Equal reports whether two configurations are identical level by level.
func (c Configuration) Equal(o Configuration) bool {
	if c.Pipeline != o.Pipeline || c.NativeVectorSize != o.NativeVectorSize ||
		len(c.Levels) != len(o.Levels) {
		return false
	}
	for i := range c.Levels {
		if !slices.Equal(c.Levels[i], o.Levels[i]) {
			return false
		}
	}
	return true
}

func (c Configuration) String() string {
	return fmt.Sprintf("{levels: %v, pipeline: %s, vector: %d}",
		c.Levels, c.Pipeline, c.NativeVectorSize)
}

// Diagnostic is a hard planning failure raised against one kernel, such as a
// contraction whose reduction dimension is not innermost. It aborts
// compilation of the kernel's enclosing unit; unsupported categories never
// produce one.
type Diagnostic struct {
	Kernel string
	Reason string
}

func (d *Diagnostic) Error() string {
	if d.Kernel == "" {
		return d.Reason
	}
	return fmt.Sprintf("kernel %q: %s", d.Kernel, d.Reason)
}

func diagf(k *KernelDescriptor, format string, args ...any) error {
	return &Diagnostic{Kernel: k.Name, Reason: fmt.Sprintf(format, args...)}
}
