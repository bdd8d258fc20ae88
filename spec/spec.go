package spec

import (
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/ngramfeat/internal/hash"
)

// MaxOrder is the longest supported n-gram.
const MaxOrder = 3

// PrimitiveKind selects where a primitive feature reads its value.
type PrimitiveKind uint8

const (
	// Copy reads dictionary entry field Index.
	Copy PrimitiveKind = iota
	// Provided reads lattice-provided node value Index.
	Provided
)

func (k PrimitiveKind) String() string {
	switch k {
	case Copy:
		return "copy"
	case Provided:
		return "provided"
	default:
		return fmt.Sprintf("PrimitiveKind(%d)", uint8(k))
	}
}

// ComputeKind selects how a compute feature derives its value.
type ComputeKind uint8

const (
	// Combine hashes the listed primitive values.
	Combine ComputeKind = iota
	// Match is 1 when primitive Inputs[0] is one of Values, else 0.
	Match
)

func (k ComputeKind) String() string {
	switch k {
	case Combine:
		return "combine"
	case Match:
		return "match"
	default:
		return fmt.Sprintf("ComputeKind(%d)", uint8(k))
	}
}

// PrimitiveDef is a primitive feature template.
type PrimitiveDef struct {
	Name  string        `json:"name" msgpack:"name"`
	Kind  PrimitiveKind `json:"kind" msgpack:"kind"`
	Index int           `json:"index" msgpack:"index"`
}

// ComputeDef is a compute feature template. Inputs index primitive features.
type ComputeDef struct {
	Name   string      `json:"name" msgpack:"name"`
	Kind   ComputeKind `json:"kind" msgpack:"kind"`
	Inputs []int       `json:"inputs" msgpack:"inputs"`
	Values []int64     `json:"values,omitempty" msgpack:"values,omitempty"`
}

// PatternDef combines columns of the [primitive..., compute...] row into one key.
type PatternDef struct {
	Name   string `json:"name" msgpack:"name"`
	Inputs []int  `json:"inputs" msgpack:"inputs"`
}

// NgramDef is an n-gram feature template. len(Inputs) is its order and
// Inputs[k] is the pattern read from context position k: 0 is the node being
// scored, 1 its predecessor, 2 the predecessor's predecessor.
type NgramDef struct {
	Name   string `json:"name" msgpack:"name"`
	Inputs []int  `json:"inputs" msgpack:"inputs"`
}

// Order returns the n-gram order.
func (d NgramDef) Order() int { return len(d.Inputs) }

// FeatureSpec is a complete set of feature templates.
type FeatureSpec struct {
	NumEntryFields int            `json:"num_entry_fields" msgpack:"num_entry_fields"`
	NumProvided    int            `json:"num_provided" msgpack:"num_provided"`
	Primitive      []PrimitiveDef `json:"primitive" msgpack:"primitive"`
	Compute        []ComputeDef   `json:"compute" msgpack:"compute"`
	Pattern        []PatternDef   `json:"pattern" msgpack:"pattern"`
	Ngram          []NgramDef     `json:"ngram" msgpack:"ngram"`
}

// NumFeatures returns the width of a primitive row: primitive plus compute columns.
func (s *FeatureSpec) NumFeatures() int {
	return len(s.Primitive) + len(s.Compute)
}

// NgramsOfOrder returns the indices into Ngram of all templates of the given order,
// in definition order.
func (s *FeatureSpec) NgramsOfOrder(order int) []int {
	var idx []int
	for i, d := range s.Ngram {
		if d.Order() == order {
			idx = append(idx, i)
		}
	}
	return idx
}

// Hash returns the content hash of the spec: xxhash64 of its JSON encoding.
func (s *FeatureSpec) Hash() uint64 {
	data, err := gojson.Marshal(s)
	if err != nil {
		// Every field is a plain value; encoding cannot fail.
		panic(fmt.Sprintf("spec: encode for hashing: %v", err))
	}
	return hash.Sum64(data)
}
