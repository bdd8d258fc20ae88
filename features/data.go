package features

import "github.com/hupe1980/ngramfeat/sliceable"

// PrimitiveFeatureContext holds the raw values of a batch of nodes, one row
// per node.
type PrimitiveFeatureContext struct {
	// Entries are dictionary entry fields.
	Entries sliceable.ConstSliceable[int32]
	// Provided are values the lattice supplies per node.
	Provided sliceable.ConstSliceable[int32]
}

// ComputeFeatureContext accompanies compute evaluation. Compute templates
// read only primitive columns of PrimitiveFeatureData; a provided value
// reaches them through a spec.Provided primitive.
type ComputeFeatureContext struct {
	// Provided are the lattice-provided values of the batch, when the caller
	// has them. A non-empty view must have one row per node. The dynamic
	// implementation only checks its shape.
	Provided sliceable.ConstSliceable[int32]
}

// PrimitiveFeatureData receives primitive and compute values:
// one row per node, columns [primitive..., compute...].
type PrimitiveFeatureData struct {
	Features sliceable.Sliceable[uint64]
}

// PatternFeatureData maps node rows to pattern keys.
type PatternFeatureData struct {
	Features sliceable.ConstSliceable[uint64]
	Patterns sliceable.Sliceable[uint64]
}

// NgramFeatureData describes whole contexts: row i of T0, T1 and T2 holds the
// pattern keys of the node, its predecessor and the predecessor's
// predecessor. FeatureIDs receives one column per n-gram template.
type NgramFeatureData struct {
	T0 sliceable.ConstSliceable[uint64]
	T1 sliceable.ConstSliceable[uint64]
	T2 sliceable.ConstSliceable[uint64]

	FeatureIDs sliceable.Sliceable[uint32]

	// Mask is applied to every id. Use ^uint32(0) to keep all bits.
	Mask uint32
}
