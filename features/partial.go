package features

import (
	"github.com/hupe1980/ngramfeat/sliceable"
	"github.com/hupe1980/ngramfeat/spec"
)

// DynamicPartialNgram evaluates n-gram templates with the incremental
// protocol. Keys are folded in the same order as DynamicNgram, so both
// produce identical ids.
type DynamicPartialNgram struct {
	uni []ngramTemplate
	bi  []ngramTemplate
	tri []ngramTemplate
}

// NewDynamicPartialNgram builds the partial-ngram capability for fs.
func NewDynamicPartialNgram(fs *spec.FeatureSpec) *DynamicPartialNgram {
	return &DynamicPartialNgram{
		uni: compileNgrams(fs, fs.NgramsOfOrder(1)),
		bi:  compileNgrams(fs, fs.NgramsOfOrder(2)),
		tri: compileNgrams(fs, fs.NgramsOfOrder(3)),
	}
}

// Layout returns the per-order template counts.
func (d *DynamicPartialNgram) Layout() BufferLayout {
	return BufferLayout{NumUnigrams: len(d.uni), NumBigrams: len(d.bi), NumTrigrams: len(d.tri)}
}

// AllocateBuffers implements PartialNgramApply.
func (d *DynamicPartialNgram) AllocateBuffers(buf *FeatureBuffer, stats RunStats, a Allocator) error {
	return buf.Allocate(d.Layout(), stats, a)
}

// ApplyUni implements PartialNgramApply.
func (d *DynamicPartialNgram) ApplyUni(buf *FeatureBuffer, p0 sliceable.ConstSliceable[uint64], scorer Scorer, result sliceable.MutableArraySlice[float32]) {
	n := p0.Rows()
	buf.CheckBatch(n)
	CheckResult(result, n)
	if len(d.uni) == 0 {
		return
	}

	ids := buf.ValBuf1(len(d.uni))
	for i := range n {
		row := p0.Row(i)
		for u, t := range d.uni {
			ids.Set(u, ID(Mix(t.seed, row.At(t.in[0]))))
		}
		*result.Ptr(i) += scorer.Score(ids.Const())
	}
}

// ApplyBiStep1 implements PartialNgramApply.
func (d *DynamicPartialNgram) ApplyBiStep1(buf *FeatureBuffer, p0 sliceable.ConstSliceable[uint64]) BiToken {
	n := p0.Rows()
	tok := buf.BeginBigram(n)

	t1 := buf.T1Buf(len(d.bi), n)
	for i := range n {
		row := p0.Row(i)
		keys := t1.Row(i)
		for b, t := range d.bi {
			keys.Set(b, Mix(t.seed, row.At(t.in[0])))
		}
	}
	return tok
}

// ApplyBiStep2 implements PartialNgramApply.
func (d *DynamicPartialNgram) ApplyBiStep2(buf *FeatureBuffer, tok BiToken, p1 sliceable.ArraySlice[uint64], scorer Scorer, result sliceable.MutableArraySlice[float32]) {
	buf.CheckBigram(tok)
	n := tok.Elems()
	CheckResult(result, n)
	if len(d.bi) == 0 {
		return
	}

	t1 := buf.T1Buf(len(d.bi), n).Const()
	ids := buf.ValBuf1(len(d.bi))
	for i := range n {
		keys := t1.Row(i)
		for b, t := range d.bi {
			ids.Set(b, ID(Mix(keys.At(b), p1.At(t.in[1]))))
		}
		*result.Ptr(i) += scorer.Score(ids.Const())
	}
}

// ApplyTriStep1 implements PartialNgramApply.
func (d *DynamicPartialNgram) ApplyTriStep1(buf *FeatureBuffer, p0 sliceable.ConstSliceable[uint64]) TriToken1 {
	n := p0.Rows()
	tok := buf.BeginTrigram(n)

	t2 := buf.T2Buf1(len(d.tri), n)
	for i := range n {
		row := p0.Row(i)
		keys := t2.Row(i)
		for x, t := range d.tri {
			keys.Set(x, Mix(t.seed, row.At(t.in[0])))
		}
	}
	return tok
}

// ApplyTriStep2 implements PartialNgramApply.
func (d *DynamicPartialNgram) ApplyTriStep2(buf *FeatureBuffer, tok TriToken1, p1 sliceable.ArraySlice[uint64]) TriToken2 {
	tok2 := buf.ContinueTrigram(tok)
	n := tok.Elems()

	src := buf.T2Buf1(len(d.tri), n).Const()
	dst := buf.T2Buf2(len(d.tri), n)
	for i := range n {
		in := src.Row(i)
		out := dst.Row(i)
		for x, t := range d.tri {
			out.Set(x, Mix(in.At(x), p1.At(t.in[1])))
		}
	}
	return tok2
}

// ApplyTriStep3 implements PartialNgramApply.
func (d *DynamicPartialNgram) ApplyTriStep3(buf *FeatureBuffer, tok TriToken2, p2 sliceable.ArraySlice[uint64], scorer Scorer, result sliceable.MutableArraySlice[float32]) {
	buf.CheckTrigram2(tok)
	n := tok.Elems()
	CheckResult(result, n)
	if len(d.tri) == 0 {
		return
	}

	t2 := buf.T2Buf2(len(d.tri), n).Const()
	ids := buf.ValBuf2(len(d.tri))
	for i := range n {
		keys := t2.Row(i)
		for x, t := range d.tri {
			ids.Set(x, ID(Mix(keys.At(x), p2.At(t.in[2]))))
		}
		*result.Ptr(i) += scorer.Score(ids.Const())
	}
}

var _ PartialNgramApply = (*DynamicPartialNgram)(nil)
