package codegen

const staticTemplate = `// Code generated by featuregen. DO NOT EDIT.
{{- if .Source}}
// Source: {{comment .Source}}
{{- end}}

package {{.Package}}

import (
	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/sliceable"
)

// RuntimeHash is the hash of the feature spec this file was generated from.
const RuntimeHash uint64 = {{.Hash}}

// Factory returns the generated feature implementations.
func Factory() features.StaticFactory {
	return &features.StaticSet{
		Hash:             RuntimeHash,
		PatternImpl:      patternImpl{},
		NgramImpl:        ngramImpl{},
		PartialNgramImpl: partialNgramImpl{},
	}
}

var (
	_ features.PatternApply      = patternImpl{}
	_ features.NgramApply        = ngramImpl{}
	_ features.PartialNgramApply = partialNgramImpl{}
)

type patternImpl struct{}

func (patternImpl) ApplyBatch(data *features.PatternFeatureData) {
{{- if .Patterns}}
	for r := range data.Patterns.Rows() {
		src := data.Features.Row(r)
		dst := data.Patterns.Row(r)
{{- range .Patterns}}
		dst.Set({{.Index}}, {{.Expr}})
{{- end}}
	}
{{- end}}
}

type ngramImpl struct{}

func (ngramImpl) ApplyBatch(data *features.NgramFeatureData) {
{{- if .Ngrams}}
	for r := range data.FeatureIDs.Rows() {
		ids := data.FeatureIDs.Row(r)
{{- range .Ngrams}}
		ids.Set({{.Index}}, features.ID({{.Batch}})&data.Mask)
{{- end}}
	}
{{- end}}
}

type partialNgramImpl struct{}

func (partialNgramImpl) AllocateBuffers(buf *features.FeatureBuffer, stats features.RunStats, a features.Allocator) error {
	return buf.Allocate(features.BufferLayout{NumUnigrams: {{.NumUni}}, NumBigrams: {{.NumBi}}, NumTrigrams: {{.NumTri}}}, stats, a)
}

func (partialNgramImpl) ApplyUni(buf *features.FeatureBuffer, p0 sliceable.ConstSliceable[uint64], scorer features.Scorer, result sliceable.MutableArraySlice[float32]) {
	n := p0.Rows()
	buf.CheckBatch(n)
	features.CheckResult(result, n)
{{- if .Uni}}
	ids := buf.ValBuf1({{.NumUni}})
	for i := range n {
		row := p0.Row(i)
{{- range $u, $t := .Uni}}
		ids.Set({{$u}}, features.ID(features.Mix({{$t.Seed}}, row.At({{index $t.In 0}}))))
{{- end}}
		*result.Ptr(i) += scorer.Score(ids.Const())
	}
{{- end}}
}

func (partialNgramImpl) ApplyBiStep1(buf *features.FeatureBuffer, p0 sliceable.ConstSliceable[uint64]) features.BiToken {
	n := p0.Rows()
	tok := buf.BeginBigram(n)
{{- if .Bi}}
	t1 := buf.T1Buf({{.NumBi}}, n)
	for i := range n {
		row := p0.Row(i)
		keys := t1.Row(i)
{{- range $b, $t := .Bi}}
		keys.Set({{$b}}, features.Mix({{$t.Seed}}, row.At({{index $t.In 0}})))
{{- end}}
	}
{{- end}}
	return tok
}

func (partialNgramImpl) ApplyBiStep2(buf *features.FeatureBuffer, tok features.BiToken, p1 sliceable.ArraySlice[uint64], scorer features.Scorer, result sliceable.MutableArraySlice[float32]) {
	buf.CheckBigram(tok)
	n := tok.Elems()
	features.CheckResult(result, n)
{{- if .Bi}}
	t1 := buf.T1Buf({{.NumBi}}, n).Const()
	ids := buf.ValBuf1({{.NumBi}})
	for i := range n {
		keys := t1.Row(i)
{{- range $b, $t := .Bi}}
		ids.Set({{$b}}, features.ID(features.Mix(keys.At({{$b}}), p1.At({{index $t.In 1}}))))
{{- end}}
		*result.Ptr(i) += scorer.Score(ids.Const())
	}
{{- end}}
}

func (partialNgramImpl) ApplyTriStep1(buf *features.FeatureBuffer, p0 sliceable.ConstSliceable[uint64]) features.TriToken1 {
	n := p0.Rows()
	tok := buf.BeginTrigram(n)
{{- if .Tri}}
	t2 := buf.T2Buf1({{.NumTri}}, n)
	for i := range n {
		row := p0.Row(i)
		keys := t2.Row(i)
{{- range $x, $t := .Tri}}
		keys.Set({{$x}}, features.Mix({{$t.Seed}}, row.At({{index $t.In 0}})))
{{- end}}
	}
{{- end}}
	return tok
}

func (partialNgramImpl) ApplyTriStep2(buf *features.FeatureBuffer, tok features.TriToken1, p1 sliceable.ArraySlice[uint64]) features.TriToken2 {
	tok2 := buf.ContinueTrigram(tok)
{{- if .Tri}}
	n := tok.Elems()
	src := buf.T2Buf1({{.NumTri}}, n).Const()
	dst := buf.T2Buf2({{.NumTri}}, n)
	for i := range n {
		in := src.Row(i)
		out := dst.Row(i)
{{- range $x, $t := .Tri}}
		out.Set({{$x}}, features.Mix(in.At({{$x}}), p1.At({{index $t.In 1}})))
{{- end}}
	}
{{- end}}
	return tok2
}

func (partialNgramImpl) ApplyTriStep3(buf *features.FeatureBuffer, tok features.TriToken2, p2 sliceable.ArraySlice[uint64], scorer features.Scorer, result sliceable.MutableArraySlice[float32]) {
	buf.CheckTrigram2(tok)
	n := tok.Elems()
	features.CheckResult(result, n)
{{- if .Tri}}
	t2 := buf.T2Buf2({{.NumTri}}, n).Const()
	ids := buf.ValBuf2({{.NumTri}})
	for i := range n {
		keys := t2.Row(i)
{{- range $x, $t := .Tri}}
		ids.Set({{$x}}, features.ID(features.Mix(keys.At({{$x}}), p2.At({{index $t.In 2}}))))
{{- end}}
		*result.Ptr(i) += scorer.Score(ids.Const())
	}
{{- end}}
}
`
