// Package codegen renders static feature implementations for a feature spec.
//
// The generated package folds every template with constant seeds and input
// indices, and exports Factory, which returns a features.StaticFactory
// stamped with the hash of the spec. MakeFeatures prefers it over the
// interpreted implementations while the model's hash matches.
package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"strings"
	"text/template"

	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/spec"
)

// ErrInvalidPackage is returned for package names that are not Go identifiers.
var ErrInvalidPackage = errors.New("codegen: invalid package name")

// Config describes one generated file.
type Config struct {
	// Package is the name of the generated package.
	Package string
	// Spec is the feature spec to compile.
	Spec *spec.FeatureSpec
	// Source names the model in the file header. Optional.
	Source string
}

type patternView struct {
	Index int
	Expr  string
}

type ngramView struct {
	Index int
	Seed  string
	In    [spec.MaxOrder]int
	Batch string
}

type fileView struct {
	Package   string
	Source    string
	Hash      string
	Patterns  []patternView
	Ngrams    []ngramView
	Uni       []ngramView
	Bi        []ngramView
	Tri       []ngramView
	NumUni    int
	NumBi     int
	NumTri    int
	NumNgrams int
}

// Generate returns the formatted Go source for cfg.
func Generate(cfg Config) ([]byte, error) {
	if !token.IsIdentifier(cfg.Package) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPackage, cfg.Package)
	}
	if cfg.Spec == nil {
		return nil, errors.New("codegen: nil spec")
	}
	if err := cfg.Spec.Validate(); err != nil {
		return nil, err
	}

	view := buildView(cfg)
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("codegen: render: %w", err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: format: %w", err)
	}
	return out, nil
}

func literal(v uint64) string { return fmt.Sprintf("0x%016x", v) }

// fold renders the key fold of seed over args as nested Mix calls.
func fold(seed uint64, args []string) string {
	expr := literal(seed)
	for _, a := range args {
		expr = "features.Mix(" + expr + ", " + a + ")"
	}
	return expr
}

func buildView(cfg Config) fileView {
	fs := cfg.Spec
	v := fileView{
		Package:   cfg.Package,
		Source:    cfg.Source,
		Hash:      literal(fs.Hash()),
		NumNgrams: len(fs.Ngram),
	}

	for i, p := range fs.Pattern {
		args := make([]string, len(p.Inputs))
		for k, in := range p.Inputs {
			args[k] = fmt.Sprintf("src.At(%d)", in)
		}
		v.Patterns = append(v.Patterns, patternView{Index: i, Expr: fold(features.Seed(i), args)})
	}

	ctxs := [spec.MaxOrder]string{"data.T0", "data.T1", "data.T2"}
	for j, g := range fs.Ngram {
		nv := ngramView{Index: j, Seed: literal(features.Seed(j))}
		args := make([]string, len(g.Inputs))
		for o, in := range g.Inputs {
			nv.In[o] = in
			args[o] = fmt.Sprintf("%s.At(r, %d)", ctxs[o], in)
		}
		nv.Batch = fold(features.Seed(j), args)
		v.Ngrams = append(v.Ngrams, nv)
	}

	for _, j := range fs.NgramsOfOrder(1) {
		v.Uni = append(v.Uni, v.Ngrams[j])
	}
	for _, j := range fs.NgramsOfOrder(2) {
		v.Bi = append(v.Bi, v.Ngrams[j])
	}
	for _, j := range fs.NgramsOfOrder(3) {
		v.Tri = append(v.Tri, v.Ngrams[j])
	}
	v.NumUni, v.NumBi, v.NumTri = len(v.Uni), len(v.Bi), len(v.Tri)
	return v
}

var fileTemplate = template.Must(template.New("static").Funcs(template.FuncMap{
	"comment": func(s string) string { return strings.ReplaceAll(s, "\n", " ") },
}).Parse(staticTemplate))
