// Command planlens plans tile hierarchies for kernel descriptors given as
// JSON and prints the resulting configurations. It exists to inspect what
// the planner would do for a workload without running a compiler.
//
// Usage:
//
//	planlens -arch x86 -vector-bits 256 kernels.json
//	planlens -host < kernels.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/scottamain/kernelplan/plan"
)

var (
	archName   = flag.String("arch", "", "target architecture (x86, arm, riscv); empty means unknown")
	vectorBits = flag.Int("vector-bits", 0, "native vector width in bits (0 = default)")
	threads    = flag.Int("threads", 0, "worker thread count (0 = default)")
	host       = flag.Bool("host", false, "detect the target from the host CPU")
	wideSIMD   = flag.Bool("wide-simd", false, "target has a wide permute-capable SIMD unit")
	tripleTile = flag.Bool("triple-tiling", false, "enable the three-level contraction hierarchy")
	noPadding  = flag.Bool("no-padding", false, "disable the padding pre-processing strategy")
	noPeeling  = flag.Bool("no-peeling", false, "disable the peeling pre-processing strategy")
	vecBackend = flag.Bool("vector-backend", false, "plan for the portable vector backend")
	asJSON     = flag.Bool("json", false, "emit configurations as JSON")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("planlens: ")
	flag.Parse()

	in := os.Stdin
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	kernels, err := decodeKernels(in)
	if err != nil {
		log.Fatalf("reading kernels: %v", err)
	}
	if len(kernels) == 0 {
		log.Fatal("no kernels in input")
	}

	facts := targetFacts()
	opts := options()

	title := cases.Title(language.English)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for _, k := range kernels {
		desc := k.descriptor()
		cfg, err := planOne(&desc, facts, opts)
		if err != nil {
			log.Fatal(err)
		}
		if *asJSON {
			if err := enc.Encode(configJSON(k.Name, cfg)); err != nil {
				log.Fatal(err)
			}
			continue
		}
		fmt.Printf("=== %s (%s) ===\n", k.Name, title.String(desc.Kind.String()))
		printConfig(cfg)
	}
}

func planOne(k *plan.KernelDescriptor, facts plan.TargetFacts, opts plan.Options) (plan.Configuration, error) {
	if *vecBackend {
		return plan.PlanKernelVectorBackend(k, facts, opts)
	}
	return plan.PlanKernel(k, facts, opts)
}

func targetFacts() plan.TargetFacts {
	facts := plan.TargetFacts{}
	if *host {
		facts = plan.DetectHostTarget()
	}
	if *archName != "" {
		facts.Arch = plan.ParseArchFamily(*archName)
	}
	if *vectorBits != 0 {
		facts.NativeVectorBits = *vectorBits
	}
	if *threads != 0 {
		facts.ThreadCount = *threads
	}
	if *wideSIMD {
		facts.HasWideSIMD = true
	}
	return facts
}

func options() plan.Options {
	opts := plan.DefaultOptions()
	opts.EnableTripleTiling = *tripleTile
	if *noPadding {
		opts.EnablePadding = false
	}
	if *noPeeling {
		opts.EnablePeeling = false
	}
	return opts
}

var levelNames = []string{"distribution", "cache", "parallel", "reduction"}

func printConfig(cfg plan.Configuration) {
	fmt.Printf("pipeline: %s\n", cfg.Pipeline)
	if cfg.NativeVectorSize != 0 {
		fmt.Printf("vector size: %d elements\n", cfg.NativeVectorSize)
	}
	names := levelNames
	if len(cfg.Levels) != 4 {
		// Without a cache level the middle names shift up.
		names = []string{"distribution", "parallel", "reduction", ""}
	}
	for i, level := range cfg.Levels {
		name := fmt.Sprintf("level %d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		fmt.Printf("  %-12s %v\n", name, []int64(level))
	}
	fmt.Println()
}

func configJSON(name string, cfg plan.Configuration) any {
	levels := make([][]int64, len(cfg.Levels))
	for i, l := range cfg.Levels {
		levels[i] = l
	}
	return struct {
		Kernel           string    `json:"kernel"`
		Pipeline         string    `json:"pipeline"`
		Levels           [][]int64 `json:"levels"`
		NativeVectorSize int       `json:"nativeVectorSize,omitempty"`
	}{name, cfg.Pipeline.String(), levels, cfg.NativeVectorSize}
}

// kernelJSON is the wire form of a kernel descriptor. Extents use null for
// dynamic bounds so hand-written inputs stay readable.
type kernelJSON struct {
	Name            string        `json:"name"`
	Kind            string        `json:"kind"`
	Loops           []loopJSON    `json:"loops"`
	Inputs          []operandJSON `json:"inputs"`
	Outputs         []operandJSON `json:"outputs"`
	TensorSemantics *bool         `json:"tensorSemantics,omitempty"`
	Batch           bool          `json:"batch,omitempty"`
	InnerTiles      []*int64      `json:"innerTiles,omitempty"`
	InnerDimsPos    []int         `json:"innerDimsPos,omitempty"`
	FFTStage        *int64        `json:"fftStage,omitempty"`
}

type loopJSON struct {
	Lower *int64 `json:"lower,omitempty"`
	Upper *int64 `json:"upper"`
	Kind  string `json:"kind,omitempty"`
}

type operandJSON struct {
	Shape          []*int64 `json:"shape"`
	ElemBits       int      `json:"elemBits"`
	FastestVarying *int     `json:"fastestVarying,omitempty"`
	Identity       bool     `json:"identity,omitempty"`
	Permutation    bool     `json:"permutation,omitempty"`
}

func decodeKernels(r io.Reader) ([]kernelJSON, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var kernels []kernelJSON
	if err := dec.Decode(&kernels); err != nil {
		return nil, err
	}
	return kernels, nil
}

func extent(v *int64) int64 {
	if v == nil {
		return plan.Dynamic
	}
	return *v
}

func (k kernelJSON) descriptor() plan.KernelDescriptor {
	desc := plan.KernelDescriptor{
		Name:         k.Name,
		Kind:         plan.ParseOpKind(k.Kind),
		Batch:        k.Batch,
		InnerDimsPos: k.InnerDimsPos,
	}

	desc.TensorSemantics = k.TensorSemantics == nil || *k.TensorSemantics
	if k.FFTStage != nil {
		desc.FFTStage = *k.FFTStage
		desc.FFTStageStatic = true
	}
	for _, t := range k.InnerTiles {
		desc.InnerTiles = append(desc.InnerTiles, extent(t))
	}

	desc.Loops = make(plan.IterationDomain, len(k.Loops))
	for i, l := range k.Loops {
		dim := plan.LoopDim{Upper: extent(l.Upper)}
		if l.Lower != nil {
			dim.Lower = extent(l.Lower)
		}
		if l.Kind == "reduction" {
			dim.Kind = plan.Reduction
		}
		desc.Loops[i] = dim
	}

	desc.Inputs = operands(k.Inputs)
	desc.Outputs = operands(k.Outputs)
	return desc
}

func operands(ops []operandJSON) []plan.Operand {
	out := make([]plan.Operand, len(ops))
	for i, o := range ops {
		op := plan.Operand{
			ElemBits:       o.ElemBits,
			FastestVarying: -1,
			Identity:       o.Identity,
			Permutation:    o.Permutation,
		}
		if o.FastestVarying != nil {
			op.FastestVarying = *o.FastestVarying
		}
		for _, s := range o.Shape {
			op.Shape = append(op.Shape, extent(s))
		}
		out[i] = op
	}
	return out
}
