package features

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/ngramfeat/sliceable"
	"github.com/hupe1980/ngramfeat/spec"
)

// PrimitiveApply fills the primitive columns of node rows.
type PrimitiveApply interface {
	ApplyBatch(ctx *PrimitiveFeatureContext, data *PrimitiveFeatureData)
}

// ComputeApply fills the compute columns of node rows from the primitive ones.
type ComputeApply interface {
	ApplyBatch(ctx *ComputeFeatureContext, data *PrimitiveFeatureData)
}

// PatternApply folds node rows into pattern keys.
type PatternApply interface {
	ApplyBatch(data *PatternFeatureData)
}

// NgramApply computes n-gram feature ids over whole contexts.
type NgramApply interface {
	ApplyBatch(data *NgramFeatureData)
}

// PartialNgramApply computes n-gram scores incrementally.
//
// p0 holds the pattern rows of the candidate batch, at most RunStats.MaxStarts
// rows. p1 and p2 are the pattern rows of the predecessor and the
// pre-predecessor of the hypothesis being extended. Scores are added to
// result[i] for every candidate row i.
type PartialNgramApply interface {
	AllocateBuffers(buf *FeatureBuffer, stats RunStats, a Allocator) error
	ApplyUni(buf *FeatureBuffer, p0 sliceable.ConstSliceable[uint64], scorer Scorer, result sliceable.MutableArraySlice[float32])
	ApplyBiStep1(buf *FeatureBuffer, p0 sliceable.ConstSliceable[uint64]) BiToken
	ApplyBiStep2(buf *FeatureBuffer, tok BiToken, p1 sliceable.ArraySlice[uint64], scorer Scorer, result sliceable.MutableArraySlice[float32])
	ApplyTriStep1(buf *FeatureBuffer, p0 sliceable.ConstSliceable[uint64]) TriToken1
	ApplyTriStep2(buf *FeatureBuffer, tok TriToken1, p1 sliceable.ArraySlice[uint64]) TriToken2
	ApplyTriStep3(buf *FeatureBuffer, tok TriToken2, p2 sliceable.ArraySlice[uint64], scorer Scorer, result sliceable.MutableArraySlice[float32])
}

// Scorer turns the feature ids of one candidate into a score.
// Implementations must not retain ids after returning.
type Scorer interface {
	Score(ids sliceable.ArraySlice[uint32]) float32
}

// Container is a loaded model as seen by MakeFeatures.
type Container interface {
	// FeatureSpec returns the templates dynamic implementations are built
	// from, or nil when the model carries none.
	FeatureSpec() *spec.FeatureSpec
	// RuntimeHash is the hash a static factory must match.
	RuntimeHash() uint64
	// Required lists the capabilities analysis needs.
	Required() *bitset.BitSet
}

// Allocator provides run-scoped memory for feature buffers.
type Allocator interface {
	Uint64s(n int) ([]uint64, error)
	Uint32s(n int) ([]uint32, error)
}

// RunStats describes one analysis run.
type RunStats struct {
	// MaxStarts is the maximum number of nodes starting at any one boundary.
	MaxStarts uint32
}
