package features

import (
	"errors"
	"math/rand"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/ngramfeat/sliceable"
	"github.com/hupe1980/ngramfeat/spec"
)

type testContainer struct {
	fs       *spec.FeatureSpec
	hash     uint64
	required *bitset.BitSet
}

func (c *testContainer) FeatureSpec() *spec.FeatureSpec { return c.fs }
func (c *testContainer) RuntimeHash() uint64            { return c.hash }
func (c *testContainer) Required() *bitset.BitSet       { return c.required }

func newContainer(fs *spec.FeatureSpec) *testContainer {
	var h uint64
	if fs != nil {
		h = fs.Hash()
	}
	return &testContainer{fs: fs, hash: h, required: CapabilitySet(AllCapabilities[:]...)}
}

// weightScorer sums weights[id & mask].
type weightScorer struct {
	weights []float32
	calls   int
}

func newWeightScorer(rng *rand.Rand, bits uint) *weightScorer {
	w := make([]float32, 1<<bits)
	for i := range w {
		w[i] = float32(rng.Intn(1000)+1) / 100
	}
	return &weightScorer{weights: w}
}

func (s *weightScorer) mask() uint32 { return uint32(len(s.weights) - 1) } //nolint:gosec // small table

func (s *weightScorer) Score(ids sliceable.ArraySlice[uint32]) float32 {
	s.calls++
	var sum float32
	for i := range ids.Len() {
		sum += s.weights[ids.At(i)&s.mask()]
	}
	return sum
}

type heapAllocator struct{}

func (heapAllocator) Uint64s(n int) ([]uint64, error) { return make([]uint64, n), nil }
func (heapAllocator) Uint32s(n int) ([]uint32, error) { return make([]uint32, n), nil }

var errRefused = errors.New("refused")

type refusingAllocator struct{}

func (refusingAllocator) Uint64s(int) ([]uint64, error) { return nil, errRefused }
func (refusingAllocator) Uint32s(int) ([]uint32, error) { return nil, errRefused }

// ngramSpec has two patterns, two unigrams, two bigrams and two trigrams
// interleaved so that template indices differ from per-order positions.
func ngramSpec() *spec.FeatureSpec {
	return &spec.FeatureSpec{
		NumEntryFields: 2,
		NumProvided:    1,
		Primitive: []spec.PrimitiveDef{
			{Name: "surface", Kind: spec.Copy, Index: 0},
			{Name: "pos", Kind: spec.Copy, Index: 1},
			{Name: "len", Kind: spec.Provided, Index: 0},
		},
		Compute: []spec.ComputeDef{
			{Name: "surface_pos", Kind: spec.Combine, Inputs: []int{0, 1}},
			{Name: "is_noun", Kind: spec.Match, Inputs: []int{1}, Values: []int64{1, 2}},
		},
		Pattern: []spec.PatternDef{
			{Name: "word", Inputs: []int{3}},
			{Name: "pos", Inputs: []int{1, 4}},
		},
		Ngram: []spec.NgramDef{
			{Name: "uni_word", Inputs: []int{0}},
			{Name: "bi_pos", Inputs: []int{1, 1}},
			{Name: "tri_pos", Inputs: []int{1, 1, 1}},
			{Name: "uni_pos", Inputs: []int{1}},
			{Name: "bi_word_pos", Inputs: []int{0, 1}},
			{Name: "tri_mixed", Inputs: []int{0, 1, 0}},
		},
	}
}

// randomRows returns rows × cols random pattern keys.
func randomRows(rng *rand.Rand, rows, cols int) sliceable.Sliceable[uint64] {
	data := make([]uint64, rows*cols)
	for i := range data {
		data[i] = rng.Uint64()
	}
	return sliceable.New(data, rows, cols)
}

// repeatRow stacks row n times.
func repeatRow(row sliceable.ArraySlice[uint64], n int) sliceable.ConstSliceable[uint64] {
	data := make([]uint64, 0, n*row.Len())
	for range n {
		for i := range row.Len() {
			data = append(data, row.At(i))
		}
	}
	return sliceable.NewConst(data, n, row.Len())
}
