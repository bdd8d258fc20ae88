package features

import (
	"fmt"

	"github.com/hupe1980/ngramfeat/internal/conv"
	"github.com/hupe1980/ngramfeat/sliceable"
)

// BufferLayout is the number of templates per n-gram order.
type BufferLayout struct {
	NumUnigrams int
	NumBigrams  int
	NumTrigrams int
}

// FeatureBuffer is the working memory of the incremental protocol.
//
// It is allocated once per run from the run's allocator and must be used by
// a single goroutine. Its memory is released with the allocator.
type FeatureBuffer struct {
	// CurrentElems is the batch size cached by the last step1 call.
	CurrentElems uint32

	maxStarts int
	allocated bool

	t1  []uint64
	t2a []uint64
	t2b []uint64

	val1 []uint32
	val2 []uint32

	biGen   uint64
	triGen  uint64
	tri2Gen uint64
}

// Allocate sizes the buffer for layout and stats. Static and dynamic
// AllocateBuffers implementations delegate here.
//
// Key regions hold one row per candidate (up to MaxStarts) and one column per
// template of the order. Value regions hold the ids of one candidate.
// Allocate panics when called twice on the same buffer.
func (b *FeatureBuffer) Allocate(layout BufferLayout, stats RunStats, a Allocator) error {
	if b.allocated {
		panic("features: feature buffer allocated twice")
	}

	maxStarts, err := conv.Uint32ToInt(stats.MaxStarts)
	if err != nil {
		return fmt.Errorf("features: max starts: %w", err)
	}
	biSize, err := conv.MulInt(layout.NumBigrams, maxStarts)
	if err != nil {
		return fmt.Errorf("features: bigram region: %w", err)
	}
	triSize, err := conv.MulInt(layout.NumTrigrams, maxStarts)
	if err != nil {
		return fmt.Errorf("features: trigram region: %w", err)
	}
	valSize := max(layout.NumUnigrams, layout.NumBigrams, layout.NumTrigrams)

	if b.t1, err = a.Uint64s(biSize); err != nil {
		return err
	}
	if b.t2a, err = a.Uint64s(triSize); err != nil {
		return err
	}
	if b.t2b, err = a.Uint64s(triSize); err != nil {
		return err
	}
	if b.val1, err = a.Uint32s(valSize); err != nil {
		return err
	}
	if b.val2, err = a.Uint32s(valSize); err != nil {
		return err
	}

	b.maxStarts = maxStarts
	b.CurrentElems = 0
	b.allocated = true
	return nil
}

// MaxStarts returns the largest batch the buffer accepts.
func (b *FeatureBuffer) MaxStarts() int { return b.maxStarts }

// Capacities returns the element capacity of each region:
// t1, t2a, t2b, val1, val2.
func (b *FeatureBuffer) Capacities() [5]int {
	return [5]int{len(b.t1), len(b.t2a), len(b.t2b), len(b.val1), len(b.val2)}
}

// ValBuf1 returns the first n elements of the first value region.
func (b *FeatureBuffer) ValBuf1(n int) sliceable.MutableArraySlice[uint32] {
	return sliceable.NewMutableArraySlice(b.val1, 0, n)
}

// ValBuf2 returns the first n elements of the second value region.
func (b *FeatureBuffer) ValBuf2(n int) sliceable.MutableArraySlice[uint32] {
	return sliceable.NewMutableArraySlice(b.val2, 0, n)
}

// T1Buf returns the bigram key region as numElems rows of numBigrams keys.
func (b *FeatureBuffer) T1Buf(numBigrams, numElems int) sliceable.Sliceable[uint64] {
	return region("t1", b.t1, numBigrams, numElems)
}

// T2Buf1 returns the first trigram key region as numElems rows of numTrigrams keys.
func (b *FeatureBuffer) T2Buf1(numTrigrams, numElems int) sliceable.Sliceable[uint64] {
	return region("t2a", b.t2a, numTrigrams, numElems)
}

// T2Buf2 returns the second trigram key region as numElems rows of numTrigrams keys.
func (b *FeatureBuffer) T2Buf2(numTrigrams, numElems int) sliceable.Sliceable[uint64] {
	return region("t2b", b.t2b, numTrigrams, numElems)
}

func region(name string, data []uint64, groups, elems int) sliceable.Sliceable[uint64] {
	if groups < 0 || elems < 0 || groups*elems > len(data) {
		panic(fmt.Sprintf("features: %s request %d×%d exceeds capacity %d", name, elems, groups, len(data)))
	}
	return sliceable.New(data, elems, groups)
}

// BiToken proves that ApplyBiStep1 filled the bigram region.
type BiToken struct {
	buf   *FeatureBuffer
	gen   uint64
	elems int
}

// Elems returns the batch size of the step1 call.
func (t BiToken) Elems() int { return t.elems }

// TriToken1 proves that ApplyTriStep1 filled the first trigram region.
type TriToken1 struct {
	buf   *FeatureBuffer
	gen   uint64
	elems int
}

// Elems returns the batch size of the step1 call.
func (t TriToken1) Elems() int { return t.elems }

// TriToken2 proves that ApplyTriStep2 filled the second trigram region.
type TriToken2 struct {
	buf   *FeatureBuffer
	gen   uint64
	gen2  uint64
	elems int
}

// Elems returns the batch size of the step1 call.
func (t TriToken2) Elems() int { return t.elems }

// BeginBigram starts a bigram generation for a batch of n candidates.
// Tokens of earlier generations become stale.
func (b *FeatureBuffer) BeginBigram(n int) BiToken {
	b.CheckBatch(n)
	b.biGen++
	b.CurrentElems = uint32(n) //nolint:gosec // n <= maxStarts, which came from a uint32
	return BiToken{buf: b, gen: b.biGen, elems: n}
}

// CheckBigram panics unless tok belongs to the current bigram generation of b.
func (b *FeatureBuffer) CheckBigram(tok BiToken) {
	if tok.buf != b || tok.gen != b.biGen {
		panic(fmt.Sprintf("features: stale bigram token (generation %d, current %d)", tok.gen, b.biGen))
	}
}

// BeginTrigram starts a trigram generation for a batch of n candidates.
func (b *FeatureBuffer) BeginTrigram(n int) TriToken1 {
	b.CheckBatch(n)
	b.triGen++
	b.CurrentElems = uint32(n) //nolint:gosec // n <= maxStarts, which came from a uint32
	return TriToken1{buf: b, gen: b.triGen, elems: n}
}

// CheckTrigram panics unless tok belongs to the current trigram generation of b.
func (b *FeatureBuffer) CheckTrigram(tok TriToken1) {
	if tok.buf != b || tok.gen != b.triGen {
		panic(fmt.Sprintf("features: stale trigram token (generation %d, current %d)", tok.gen, b.triGen))
	}
}

// ContinueTrigram validates tok and starts a new fill of the second trigram
// region. Earlier TriToken2 values become stale.
func (b *FeatureBuffer) ContinueTrigram(tok TriToken1) TriToken2 {
	b.CheckTrigram(tok)
	b.tri2Gen++
	return TriToken2{buf: b, gen: tok.gen, gen2: b.tri2Gen, elems: tok.elems}
}

// CheckTrigram2 panics unless tok reflects the latest ApplyTriStep2 of b.
func (b *FeatureBuffer) CheckTrigram2(tok TriToken2) {
	if tok.buf != b || tok.gen != b.triGen || tok.gen2 != b.tri2Gen {
		panic(fmt.Sprintf("features: stale trigram step2 token (generation %d/%d, current %d/%d)",
			tok.gen, tok.gen2, b.triGen, b.tri2Gen))
	}
}

// CheckBatch panics unless the buffer is allocated and n candidates fit.
func (b *FeatureBuffer) CheckBatch(n int) {
	if !b.allocated {
		panic("features: feature buffer used before AllocateBuffers")
	}
	if n < 0 || n > b.maxStarts {
		panic(fmt.Sprintf("features: batch of %d exceeds max starts %d", n, b.maxStarts))
	}
}

// CheckResult panics when result cannot hold n scores.
func CheckResult(result sliceable.MutableArraySlice[float32], n int) {
	if result.Len() < n {
		panic(fmt.Sprintf("features: result of %d cannot hold %d scores", result.Len(), n))
	}
}
