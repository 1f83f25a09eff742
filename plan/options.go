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

// Options are the planner's global tuning knobs, passed by value into every
// entry point. Changing them changes numeric outcomes, never contracts.
type Options struct {
	// EnablePadding allows the Padding pre-processing strategy. Padding is
	// only applied on x86; it costs too much on Arm and RISC-V.
	EnablePadding bool

	// EnablePeeling allows the Peeling pre-processing strategy.
	EnablePeeling bool

	// EnableTripleTiling switches contraction kernels to the experimental
	// three-level hierarchy when the shapes divide exactly.
	EnableTripleTiling bool

	// DistTileSize is the default per-dimension ceiling for the work
	// distribution level.
	DistTileSize int64

	// UnitsPerThread caps the distribution level at roughly
	// UnitsPerThread * ThreadCount work units before the balancing pass
	// stops growing tiles.
	UnitsPerThread int

	// Mmt4dDistTileSizes and Mmt4dL1TileSizes override the computed mmt4d
	// levels when non-empty.
	Mmt4dDistTileSizes []int64
	Mmt4dL1TileSizes   []int64
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		EnablePadding:  true,
		EnablePeeling:  true,
		DistTileSize:   64,
		UnitsPerThread: 2,
	}
}

func (o Options) distTileSize() int64 {
	if o.DistTileSize <= 0 {
		return 64
	}
	return o.DistTileSize
}

func (o Options) unitsPerThread() int {
	if o.UnitsPerThread <= 0 {
		return 2
	}
	return o.UnitsPerThread
}
