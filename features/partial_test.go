package features

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ngramfeat/internal/arena"
	"github.com/hupe1980/ngramfeat/sliceable"
)

// batchScores evaluates every template of the given order over whole
// contexts: candidate i with predecessor p1 and pre-predecessor p2.
func batchScores(t *testing.T, p0 sliceable.ConstSliceable[uint64], p1, p2 sliceable.ArraySlice[uint64], order int, scorer *weightScorer) []float32 {
	t.Helper()
	fs := ngramSpec()
	n := p0.Rows()

	ids := sliceable.New(make([]uint32, n*len(fs.Ngram)), n, len(fs.Ngram))
	NewDynamicNgram(fs).ApplyBatch(&NgramFeatureData{
		T0:         p0,
		T1:         repeatRow(p1, n),
		T2:         repeatRow(p2, n),
		FeatureIDs: ids,
		Mask:       ^uint32(0),
	})

	out := make([]float32, n)
	for i := range n {
		var sel []uint32
		for _, j := range fs.NgramsOfOrder(order) {
			sel = append(sel, ids.At(i, j))
		}
		out[i] = scorer.Score(sliceable.Of(sel))
	}
	return out
}

func TestPartialNgram_MatchesBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	fs := ngramSpec()
	p := NewDynamicPartialNgram(fs)
	scorer := newWeightScorer(rng, 10)

	const n = 2
	var buf FeatureBuffer
	require.NoError(t, p.AllocateBuffers(&buf, RunStats{MaxStarts: n}, heapAllocator{}))

	p0 := randomRows(rng, n, len(fs.Pattern)).Const()
	contexts := randomRows(rng, 2, len(fs.Pattern)).Const()

	t.Run("unigram", func(t *testing.T) {
		got := make([]float32, n)
		p.ApplyUni(&buf, p0, scorer, sliceable.MutableOf(got))
		want := batchScores(t, p0, contexts.Row(0), contexts.Row(1), 1, scorer)
		assert.InDeltaSlice(t, want, got, 1e-5)
	})

	t.Run("bigram", func(t *testing.T) {
		tok := p.ApplyBiStep1(&buf, p0)
		for c := range contexts.Rows() {
			got := make([]float32, n)
			p.ApplyBiStep2(&buf, tok, contexts.Row(c), scorer, sliceable.MutableOf(got))
			want := batchScores(t, p0, contexts.Row(c), contexts.Row(0), 2, scorer)
			assert.InDeltaSlice(t, want, got, 1e-5)
		}
	})

	t.Run("trigram", func(t *testing.T) {
		tok := p.ApplyTriStep1(&buf, p0)
		for a := range contexts.Rows() {
			tok2 := p.ApplyTriStep2(&buf, tok, contexts.Row(a))
			for b := range contexts.Rows() {
				got := make([]float32, n)
				p.ApplyTriStep3(&buf, tok2, contexts.Row(b), scorer, sliceable.MutableOf(got))
				want := batchScores(t, p0, contexts.Row(a), contexts.Row(b), 3, scorer)
				assert.InDeltaSlice(t, want, got, 1e-5)
			}
		}
	})
}

func TestPartialNgram_Accumulates(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	fs := ngramSpec()
	p := NewDynamicPartialNgram(fs)
	scorer := newWeightScorer(rng, 8)

	var buf FeatureBuffer
	require.NoError(t, p.AllocateBuffers(&buf, RunStats{MaxStarts: 3}, heapAllocator{}))
	p0 := randomRows(rng, 3, len(fs.Pattern)).Const()

	once := make([]float32, 3)
	p.ApplyUni(&buf, p0, scorer, sliceable.MutableOf(once))

	twice := []float32{1, 1, 1}
	p.ApplyUni(&buf, p0, scorer, sliceable.MutableOf(twice))
	p.ApplyUni(&buf, p0, scorer, sliceable.MutableOf(twice))

	for i := range once {
		assert.InDelta(t, 1+2*once[i], twice[i], 1e-4)
	}
}

func TestPartialNgram_EndToEndFourStarts(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	fs := ngramSpec()
	p := NewDynamicPartialNgram(fs)
	scorer := newWeightScorer(rng, 12)

	err := arena.Scoped(context.Background(), func(a *arena.Arena) error {
		var buf FeatureBuffer
		require.NoError(t, p.AllocateBuffers(&buf, RunStats{MaxStarts: 4}, a))
		assert.Equal(t, uint32(0), buf.CurrentElems)

		p0 := randomRows(rng, 4, len(fs.Pattern)).Const()

		uni := make([]float32, 4)
		p.ApplyUni(&buf, p0, scorer, sliceable.MutableOf(uni))
		wantUni := batchScores(t, p0, p0.Row(0), p0.Row(0), 1, scorer)
		for i := range uni {
			assert.NotZero(t, uni[i])
			assert.InDelta(t, wantUni[i], uni[i], 1e-5)
		}

		tok := p.ApplyBiStep1(&buf, p0)
		assert.Equal(t, uint32(4), buf.CurrentElems)
		cached := append([]uint64(nil), buf.T1Buf(2, 4).Data()...)

		contexts := randomRows(rng, 2, len(fs.Pattern)).Const()
		for c := range contexts.Rows() {
			got := make([]float32, 4)
			p.ApplyBiStep2(&buf, tok, contexts.Row(c), scorer, sliceable.MutableOf(got))

			want := batchScores(t, p0, contexts.Row(c), contexts.Row(c), 2, scorer)
			assert.InDeltaSlice(t, want, got, 1e-5)
			assert.Equal(t, cached, buf.T1Buf(2, 4).Data(), "step2 must not touch the step1 cache")
		}
		return nil
	})
	require.NoError(t, err)
}

func TestPartialNgram_CapacityAtBoundary(t *testing.T) {
	fs := ngramSpec()
	p := NewDynamicPartialNgram(fs)
	layout := p.Layout()
	perGroup := max(layout.NumUnigrams, layout.NumBigrams, layout.NumTrigrams)

	for _, maxStarts := range []int{1, 8} {
		rng := rand.New(rand.NewSource(int64(maxStarts)))
		scorer := newWeightScorer(rng, 6)

		var buf FeatureBuffer
		require.NoError(t, p.AllocateBuffers(&buf, RunStats{MaxStarts: uint32(maxStarts)}, heapAllocator{}))

		caps := buf.Capacities()
		assert.GreaterOrEqual(t, caps[0], maxStarts*layout.NumBigrams)
		assert.GreaterOrEqual(t, caps[1], maxStarts*layout.NumTrigrams)
		assert.GreaterOrEqual(t, caps[2], maxStarts*layout.NumTrigrams)
		assert.GreaterOrEqual(t, caps[3], perGroup)
		assert.GreaterOrEqual(t, caps[4], perGroup)

		result := sliceable.MutableOf(make([]float32, maxStarts))
		for n := 0; n <= maxStarts; n++ {
			p0 := randomRows(rng, n, len(fs.Pattern)).Const()
			ctx := randomRows(rng, 2, len(fs.Pattern)).Const()

			assert.NotPanics(t, func() {
				p.ApplyUni(&buf, p0, scorer, result)
				bt := p.ApplyBiStep1(&buf, p0)
				for r := range ctx.Rows() {
					p.ApplyBiStep2(&buf, bt, ctx.Row(r), scorer, result)
				}
				tt := p.ApplyTriStep1(&buf, p0)
				for r := range ctx.Rows() {
					tt2 := p.ApplyTriStep2(&buf, tt, ctx.Row(r))
					p.ApplyTriStep3(&buf, tt2, ctx.Row(1-r), scorer, result)
				}
			}, "batch of %d with max starts %d", n, maxStarts)
		}

		over := randomRows(rng, maxStarts+1, len(fs.Pattern)).Const()
		assert.Panics(t, func() { p.ApplyBiStep1(&buf, over) })
		assert.Panics(t, func() { p.ApplyTriStep1(&buf, over) })
		assert.Panics(t, func() {
			p.ApplyUni(&buf, over, scorer, sliceable.MutableOf(make([]float32, maxStarts+1)))
		})
	}
}

func TestPartialNgram_StaleTokens(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	fs := ngramSpec()
	p := NewDynamicPartialNgram(fs)
	scorer := newWeightScorer(rng, 6)

	var buf, other FeatureBuffer
	require.NoError(t, p.AllocateBuffers(&buf, RunStats{MaxStarts: 2}, heapAllocator{}))
	require.NoError(t, p.AllocateBuffers(&other, RunStats{MaxStarts: 2}, heapAllocator{}))

	p0 := randomRows(rng, 2, len(fs.Pattern)).Const()
	row := randomRows(rng, 1, len(fs.Pattern)).Const().Row(0)
	result := sliceable.MutableOf(make([]float32, 2))

	t.Run("bigram", func(t *testing.T) {
		old := p.ApplyBiStep1(&buf, p0)
		current := p.ApplyBiStep1(&buf, p0)

		assert.Panics(t, func() { p.ApplyBiStep2(&buf, old, row, scorer, result) })
		assert.Panics(t, func() { p.ApplyBiStep2(&buf, BiToken{}, row, scorer, result) })
		assert.Panics(t, func() { p.ApplyBiStep2(&other, current, row, scorer, result) })
		assert.NotPanics(t, func() { p.ApplyBiStep2(&buf, current, row, scorer, result) })
	})

	t.Run("trigram", func(t *testing.T) {
		old := p.ApplyTriStep1(&buf, p0)
		current := p.ApplyTriStep1(&buf, p0)
		assert.Panics(t, func() { p.ApplyTriStep2(&buf, old, row) })

		first := p.ApplyTriStep2(&buf, current, row)
		second := p.ApplyTriStep2(&buf, current, row)
		assert.Panics(t, func() { p.ApplyTriStep3(&buf, first, row, scorer, result) })
		assert.NotPanics(t, func() { p.ApplyTriStep3(&buf, second, row, scorer, result) })

		p.ApplyTriStep1(&buf, p0)
		assert.Panics(t, func() { p.ApplyTriStep3(&buf, second, row, scorer, result) })
	})

	t.Run("bigram and trigram generations are independent", func(t *testing.T) {
		bt := p.ApplyBiStep1(&buf, p0)
		p.ApplyTriStep1(&buf, p0)
		assert.NotPanics(t, func() { p.ApplyBiStep2(&buf, bt, row, scorer, result) })
	})
}

func TestPartialNgram_Preconditions(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	fs := ngramSpec()
	p := NewDynamicPartialNgram(fs)
	scorer := newWeightScorer(rng, 6)
	p0 := randomRows(rng, 3, len(fs.Pattern)).Const()

	t.Run("use before allocation", func(t *testing.T) {
		var buf FeatureBuffer
		assert.Panics(t, func() { p.ApplyBiStep1(&buf, p0) })
	})

	t.Run("allocated twice", func(t *testing.T) {
		var buf FeatureBuffer
		require.NoError(t, p.AllocateBuffers(&buf, RunStats{MaxStarts: 3}, heapAllocator{}))
		assert.Panics(t, func() { _ = p.AllocateBuffers(&buf, RunStats{MaxStarts: 3}, heapAllocator{}) })
	})

	t.Run("short result", func(t *testing.T) {
		var buf FeatureBuffer
		require.NoError(t, p.AllocateBuffers(&buf, RunStats{MaxStarts: 3}, heapAllocator{}))
		short := sliceable.MutableOf(make([]float32, 2))

		assert.Panics(t, func() { p.ApplyUni(&buf, p0, scorer, short) })
		tok := p.ApplyBiStep1(&buf, p0)
		assert.Panics(t, func() { p.ApplyBiStep2(&buf, tok, p0.Row(0), scorer, short) })
	})

	t.Run("allocator refuses", func(t *testing.T) {
		var buf FeatureBuffer
		err := p.AllocateBuffers(&buf, RunStats{MaxStarts: 3}, refusingAllocator{})
		require.ErrorIs(t, err, errRefused)
	})
}

func TestFeatureBuffer_Regions(t *testing.T) {
	var buf FeatureBuffer
	layout := BufferLayout{NumUnigrams: 1, NumBigrams: 3, NumTrigrams: 2}
	require.NoError(t, buf.Allocate(layout, RunStats{MaxStarts: 4}, heapAllocator{}))

	assert.Equal(t, [5]int{12, 8, 8, 3, 3}, buf.Capacities())
	assert.Equal(t, 4, buf.MaxStarts())

	t1 := buf.T1Buf(3, 4)
	assert.Equal(t, 4, t1.Rows())
	assert.Equal(t, 3, t1.Cols())
	assert.Equal(t, 3, buf.ValBuf2(3).Len())

	assert.Panics(t, func() { buf.T1Buf(3, 5) })
	assert.Panics(t, func() { buf.T2Buf2(3, 4) })
	assert.Panics(t, func() { buf.ValBuf1(4) })
}
