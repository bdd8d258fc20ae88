package features

import (
	"fmt"

	"github.com/hupe1980/ngramfeat/spec"
	"github.com/hupe1980/ngramfeat/util"
)

// DynamicPrimitive interprets primitive templates.
type DynamicPrimitive struct {
	defs []spec.PrimitiveDef
}

// NewDynamicPrimitive builds the primitive capability for fs.
func NewDynamicPrimitive(fs *spec.FeatureSpec) *DynamicPrimitive {
	return &DynamicPrimitive{defs: fs.Primitive}
}

// ApplyBatch implements PrimitiveApply.
func (d *DynamicPrimitive) ApplyBatch(ctx *PrimitiveFeatureContext, data *PrimitiveFeatureData) {
	out := data.Features
	for r := range out.Rows() {
		row := out.Row(r)
		for c, def := range d.defs {
			var v int32
			if def.Kind == spec.Copy {
				v = ctx.Entries.At(r, def.Index)
			} else {
				v = ctx.Provided.At(r, def.Index)
			}
			row.Set(c, uint64(int64(v))) //nolint:gosec // sign extension is the encoding
		}
	}
}

type computeOp struct {
	kind   spec.ComputeKind
	seed   uint64
	inputs []int
	values []int64
}

// DynamicCompute interprets compute templates.
type DynamicCompute struct {
	offset int
	ops    []computeOp
}

// NewDynamicCompute builds the compute capability for fs.
func NewDynamicCompute(fs *spec.FeatureSpec) *DynamicCompute {
	d := &DynamicCompute{offset: len(fs.Primitive), ops: make([]computeOp, len(fs.Compute))}
	for i, def := range fs.Compute {
		d.ops[i] = computeOp{
			kind:   def.Kind,
			seed:   Seed(d.offset + i),
			inputs: def.Inputs,
			values: def.Values,
		}
	}
	return d
}

// ApplyBatch implements ComputeApply. Values derive from the primitive
// columns of data only; ctx.Provided is checked against the batch size.
func (d *DynamicCompute) ApplyBatch(ctx *ComputeFeatureContext, data *PrimitiveFeatureData) {
	out := data.Features
	if n := ctx.Provided.Rows(); n != 0 && n != out.Rows() {
		panic(fmt.Sprintf("features: compute context has %d rows for %d nodes", n, out.Rows()))
	}
	for r := range out.Rows() {
		row := out.Row(r)
		for i, op := range d.ops {
			var v uint64
			switch op.kind {
			case spec.Combine:
				v = op.seed
				for _, in := range op.inputs {
					v = Mix(v, row.At(in))
				}
			case spec.Match:
				if util.Contains(op.values, int64(row.At(op.inputs[0]))) { //nolint:gosec // reverses the sign extension
					v = 1
				}
			}
			row.Set(d.offset+i, v)
		}
	}
}

// DynamicPattern interprets pattern templates.
type DynamicPattern struct {
	seeds  []uint64
	inputs [][]int
}

// NewDynamicPattern builds the pattern capability for fs.
func NewDynamicPattern(fs *spec.FeatureSpec) *DynamicPattern {
	d := &DynamicPattern{
		seeds:  make([]uint64, len(fs.Pattern)),
		inputs: make([][]int, len(fs.Pattern)),
	}
	for i, def := range fs.Pattern {
		d.seeds[i] = Seed(i)
		d.inputs[i] = def.Inputs
	}
	return d
}

// ApplyBatch implements PatternApply.
func (d *DynamicPattern) ApplyBatch(data *PatternFeatureData) {
	for r := range data.Patterns.Rows() {
		src := data.Features.Row(r)
		dst := data.Patterns.Row(r)
		for p, seed := range d.seeds {
			k := seed
			for _, in := range d.inputs[p] {
				k = Mix(k, src.At(in))
			}
			dst.Set(p, k)
		}
	}
}

// ngramTemplate is one n-gram template with its seed precomputed.
type ngramTemplate struct {
	order int
	seed  uint64
	in    [spec.MaxOrder]int
}

func compileNgrams(fs *spec.FeatureSpec, indices []int) []ngramTemplate {
	out := make([]ngramTemplate, len(indices))
	for i, j := range indices {
		def := fs.Ngram[j]
		t := ngramTemplate{order: def.Order(), seed: Seed(j)}
		copy(t.in[:], def.Inputs)
		out[i] = t
	}
	return out
}

// DynamicNgram evaluates n-gram templates over whole contexts.
type DynamicNgram struct {
	templates []ngramTemplate
}

// NewDynamicNgram builds the ngram capability for fs.
func NewDynamicNgram(fs *spec.FeatureSpec) *DynamicNgram {
	all := make([]int, len(fs.Ngram))
	for i := range all {
		all[i] = i
	}
	return &DynamicNgram{templates: compileNgrams(fs, all)}
}

// ApplyBatch implements NgramApply.
func (d *DynamicNgram) ApplyBatch(data *NgramFeatureData) {
	for r := range data.FeatureIDs.Rows() {
		ids := data.FeatureIDs.Row(r)
		for j, t := range d.templates {
			k := Mix(t.seed, data.T0.At(r, t.in[0]))
			if t.order >= 2 {
				k = Mix(k, data.T1.At(r, t.in[1]))
			}
			if t.order == 3 {
				k = Mix(k, data.T2.At(r, t.in[2]))
			}
			ids.Set(j, ID(k)&data.Mask)
		}
	}
}

var (
	_ PrimitiveApply = (*DynamicPrimitive)(nil)
	_ ComputeApply   = (*DynamicCompute)(nil)
	_ PatternApply   = (*DynamicPattern)(nil)
	_ NgramApply     = (*DynamicNgram)(nil)
)
