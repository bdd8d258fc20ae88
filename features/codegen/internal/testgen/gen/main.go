// Command gen regenerates features_gen.go from testgen.Spec.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hupe1980/ngramfeat/features/codegen"
	"github.com/hupe1980/ngramfeat/features/codegen/internal/testgen"
)

func main() {
	out := flag.String("o", "features_gen.go", "Output file")
	flag.Parse()

	fs := testgen.Spec()
	src, err := codegen.Generate(codegen.Config{Package: "testgen", Spec: &fs})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, src, 0o644); err != nil { //nolint:gosec // generated source is world-readable
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
