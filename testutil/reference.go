package testutil

import (
	"slices"

	"github.com/hupe1980/ngramfeat/analysis"
	"github.com/hupe1980/ngramfeat/internal/hash"
	"github.com/hupe1980/ngramfeat/spec"
)

// ReferencePatterns evaluates the templates of fs for one node, without any
// of the batch machinery.
func ReferencePatterns(fs *spec.FeatureSpec, n *analysis.Node) []uint64 {
	vals := make([]uint64, 0, fs.NumFeatures())
	for _, p := range fs.Primitive {
		v := n.Provided
		if p.Kind == spec.Copy {
			v = n.Entry
		}
		vals = append(vals, uint64(int64(v[p.Index]))) //nolint:gosec // sign extension
	}
	for i, c := range fs.Compute {
		var v uint64
		switch c.Kind {
		case spec.Combine:
			v = hash.Seed(len(fs.Primitive) + i)
			for _, in := range c.Inputs {
				v = hash.Mix(v, vals[in])
			}
		case spec.Match:
			if slices.Contains(c.Values, int64(vals[c.Inputs[0]])) { //nolint:gosec // sign extension
				v = 1
			}
		}
		vals = append(vals, v)
	}

	out := make([]uint64, len(fs.Pattern))
	for i, p := range fs.Pattern {
		k := hash.Seed(i)
		for _, in := range p.Inputs {
			k = hash.Mix(k, vals[in])
		}
		out[i] = k
	}
	return out
}

// ReferenceScore scores path followed by the end sentinel. Positions before
// the path and the sentinel itself use all-zero pattern rows.
func ReferenceScore(fs *spec.FeatureSpec, weights []float32, path []*analysis.Node) float32 {
	zero := make([]uint64, len(fs.Pattern))
	rows := make([][]uint64, len(path))
	for i, n := range path {
		rows[i] = ReferencePatterns(fs, n)
	}
	at := func(k int) []uint64 {
		if k < 0 || k >= len(rows) {
			return zero
		}
		return rows[k]
	}

	mask := uint64(len(weights) - 1) //nolint:gosec // power of two
	var score float32
	for k := 0; k <= len(path); k++ {
		var row float32
		for j, g := range fs.Ngram {
			key := hash.Seed(j)
			for o, in := range g.Inputs {
				key = hash.Mix(key, at(k - o)[in])
			}
			row += weights[uint64(uint32(key))&mask]
		}
		score += row
	}
	return score
}

// BestPath enumerates every path through lat and returns the highest
// reference score. Only usable on small lattices.
func BestPath(fs *spec.FeatureSpec, weights []float32, lat *analysis.Lattice) (float32, []analysis.NodeRef) {
	var (
		best     float32
		bestPath []analysis.NodeRef
		found    bool
		refs     []analysis.NodeRef
		nodes    []*analysis.Node
	)

	var walk func(b int)
	walk = func(b int) {
		if b == len(lat.Boundaries) {
			s := ReferenceScore(fs, weights, nodes)
			if !found || s > best {
				best, bestPath, found = s, slices.Clone(refs), true
			}
			return
		}
		for i := range lat.Boundaries[b] {
			ref := analysis.NodeRef{Boundary: b, Index: i}
			n := lat.Node(ref)
			refs = append(refs, ref)
			nodes = append(nodes, n)
			walk(b + n.Length)
			refs = refs[:len(refs)-1]
			nodes = nodes[:len(nodes)-1]
		}
	}
	walk(0)
	return best, bestPath
}
