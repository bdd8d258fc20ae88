package model

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/sliceable"
	"github.com/hupe1980/ngramfeat/spec"
)

// ErrInvalidWeights is returned for weight tables whose length is not a
// positive power of two.
var ErrInvalidWeights = errors.New("model: weight count must be a positive power of two")

// DefaultRequired are the capabilities a model requires unless told otherwise.
var DefaultRequired = features.AllCapabilities[:]

// Model is a loaded scoring model. It implements features.Container and is
// read-only after construction.
type Model struct {
	Name    string
	Spec    spec.FeatureSpec
	Weights []float32

	required []features.Capability
	hash     uint64
}

var _ features.Container = (*Model)(nil)

// New validates its arguments and builds a model. With no required
// capabilities DefaultRequired is used.
func New(name string, fs spec.FeatureSpec, weights []float32, required ...features.Capability) (*Model, error) {
	if err := fs.Validate(); err != nil {
		return nil, err
	}
	if len(weights) == 0 || bits.OnesCount(uint(len(weights))) != 1 || uint64(len(weights)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWeights, len(weights))
	}
	if len(required) == 0 {
		required = DefaultRequired
	}

	return &Model{
		Name:     name,
		Spec:     fs,
		Weights:  weights,
		required: append([]features.Capability(nil), required...),
		hash:     fs.Hash(),
	}, nil
}

// FeatureSpec implements features.Container.
func (m *Model) FeatureSpec() *spec.FeatureSpec { return &m.Spec }

// RuntimeHash implements features.Container. It is the content hash of the spec.
func (m *Model) RuntimeHash() uint64 { return m.hash }

// Required implements features.Container.
func (m *Model) Required() *bitset.BitSet { return features.CapabilitySet(m.required...) }

// RequiredList returns the required capabilities in declaration order.
func (m *Model) RequiredList() []features.Capability {
	return append([]features.Capability(nil), m.required...)
}

// Mask returns the id mask of the weight table.
func (m *Model) Mask() uint32 { return uint32(len(m.Weights) - 1) } //nolint:gosec // length checked in New

// Scorer returns a scorer over the model weights.
func (m *Model) Scorer() *LinearScorer {
	return &LinearScorer{weights: m.Weights, mask: m.Mask()}
}

// LinearScorer sums the weights of feature ids. Ids are masked into the
// weight table, so raw 32-bit ids and pre-masked ids score the same.
type LinearScorer struct {
	weights []float32
	mask    uint32
}

var _ features.Scorer = (*LinearScorer)(nil)

// NewLinearScorer builds a scorer over weights, whose length must be a
// power of two.
func NewLinearScorer(weights []float32) (*LinearScorer, error) {
	if len(weights) == 0 || bits.OnesCount(uint(len(weights))) != 1 || uint64(len(weights)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWeights, len(weights))
	}
	return &LinearScorer{weights: weights, mask: uint32(len(weights) - 1)}, nil //nolint:gosec // checked above
}

// Score implements features.Scorer.
func (s *LinearScorer) Score(ids sliceable.ArraySlice[uint32]) float32 {
	var sum float32
	for i := range ids.Len() {
		sum += s.weights[ids.At(i)&s.mask]
	}
	return sum
}

// Mask returns the id mask.
func (s *LinearScorer) Mask() uint32 { return s.mask }
