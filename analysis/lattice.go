package analysis

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/internal/conv"
	"github.com/hupe1980/ngramfeat/spec"
)

var (
	// ErrInvalidLattice is returned for lattices that do not fit the model.
	ErrInvalidLattice = errors.New("analysis: invalid lattice")
	// ErrNoPath is returned when no path connects the first and last boundary.
	ErrNoPath = errors.New("analysis: no path through lattice")
)

// Node is a candidate token.
type Node struct {
	// Entry holds the dictionary entry fields.
	Entry []int32
	// Provided holds lattice-provided values.
	Provided []int32
	// Length is the number of boundaries the node spans.
	Length int
}

// Lattice lists candidate nodes by start boundary. A node at boundary b
// ends at b+Length; the path ends at len(Boundaries).
type Lattice struct {
	Boundaries [][]Node
}

// NodeRef addresses a node as Boundaries[Boundary][Index].
type NodeRef struct {
	Boundary int
	Index    int
}

// Node returns the node ref points at.
func (l *Lattice) Node(ref NodeRef) *Node {
	return &l.Boundaries[ref.Boundary][ref.Index]
}

// Stats returns the run statistics of l. The end sentinel counts as a
// batch of one.
func (l *Lattice) Stats() features.RunStats {
	maxStarts := 1
	for _, nodes := range l.Boundaries {
		maxStarts = max(maxStarts, len(nodes))
	}
	n, err := conv.IntToUint32(maxStarts)
	if err != nil {
		panic(err)
	}
	return features.RunStats{MaxStarts: n}
}

// Validate checks that every node fits fs and stays inside the lattice.
func (l *Lattice) Validate(fs *spec.FeatureSpec) error {
	if l == nil || len(l.Boundaries) == 0 {
		return fmt.Errorf("%w: no boundaries", ErrInvalidLattice)
	}
	for b, nodes := range l.Boundaries {
		for i, n := range nodes {
			switch {
			case len(n.Entry) != fs.NumEntryFields:
				return fmt.Errorf("%w: node %d@%d has %d entry fields, want %d", ErrInvalidLattice, i, b, len(n.Entry), fs.NumEntryFields)
			case len(n.Provided) != fs.NumProvided:
				return fmt.Errorf("%w: node %d@%d has %d provided values, want %d", ErrInvalidLattice, i, b, len(n.Provided), fs.NumProvided)
			case n.Length < 1 || b+n.Length > len(l.Boundaries):
				return fmt.Errorf("%w: node %d@%d has length %d", ErrInvalidLattice, i, b, n.Length)
			}
		}
	}
	return nil
}
