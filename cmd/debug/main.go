// debug dumps the resolved model of one or more instruction definition
// files. Handy when a diagram looks wrong: the dump shows exactly which
// fields, segments, and diagnostics the resolver produced.
package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/rvtools/rvenc/internal/isa"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: debug <definition.yaml> [more.yaml ...]")
		os.Exit(1)
	}

	for _, path := range os.Args[1:] {
		inst, err := isa.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}
		resolved := isa.ResolveInstruction(inst)
		fmt.Printf("=== %s ===\n", path)
		spew.Dump(resolved)
	}
}
