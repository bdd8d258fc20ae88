package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ngramfeat/analysis"
	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/sliceable"
)

func TestSpec_Valid(t *testing.T) {
	rng := NewRNG(4711)

	for range 50 {
		fs := rng.Spec(DefaultSpecConfig)
		require.NoError(t, fs.Validate())
		assert.Len(t, fs.Primitive, 4)
		assert.Len(t, fs.NgramsOfOrder(3), 2)
	}
}

func TestLattice(t *testing.T) {
	rng := NewRNG(4711)
	fs := rng.Spec(DefaultSpecConfig)

	lat := rng.Lattice(&fs, 7, 3, 3)

	require.NoError(t, lat.Validate(&fs))
	assert.Len(t, lat.Boundaries, 7)
	assert.LessOrEqual(t, lat.Stats().MaxStarts, uint32(3))
	for _, nodes := range lat.Boundaries {
		assert.Equal(t, 1, nodes[0].Length)
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	w1 := rng.Weights(4)
	rng.Reset()
	w2 := rng.Weights(4)

	assert.Equal(t, w1, w2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestZipf(t *testing.T) {
	rng := NewRNG(1)
	counts := make([]int, 8)
	for range 2000 {
		counts[rng.Zipf(8, 1.5)]++
	}
	assert.Greater(t, counts[0], counts[7])
	assert.Equal(t, 0, rng.Zipf(1, 1.5))
}

func TestReferencePatterns_MatchDynamic(t *testing.T) {
	rng := NewRNG(99)
	fs := rng.Spec(DefaultSpecConfig)
	lat := rng.Lattice(&fs, 1, 4, 1)
	nodes := lat.Boundaries[0]
	n := len(nodes)

	entries := make([]int32, 0, n*fs.NumEntryFields)
	provided := make([]int32, 0, n*fs.NumProvided)
	for _, node := range nodes {
		entries = append(entries, node.Entry...)
		provided = append(provided, node.Provided...)
	}
	prov := sliceable.NewConst(provided, n, fs.NumProvided)
	data := features.PrimitiveFeatureData{Features: sliceable.New(make([]uint64, n*fs.NumFeatures()), n, fs.NumFeatures())}
	features.NewDynamicPrimitive(&fs).ApplyBatch(&features.PrimitiveFeatureContext{
		Entries:  sliceable.NewConst(entries, n, fs.NumEntryFields),
		Provided: prov,
	}, &data)
	features.NewDynamicCompute(&fs).ApplyBatch(&features.ComputeFeatureContext{Provided: prov}, &data)
	patterns := sliceable.New(make([]uint64, n*len(fs.Pattern)), n, len(fs.Pattern))
	features.NewDynamicPattern(&fs).ApplyBatch(&features.PatternFeatureData{Features: data.Features.Const(), Patterns: patterns})

	for i := range nodes {
		want := ReferencePatterns(&fs, &nodes[i])
		assert.Equal(t, want, patterns.Row(i).Data(), "node %d", i)
	}
}

func TestBestPath_SingleChain(t *testing.T) {
	rng := NewRNG(3)
	fs := rng.Spec(DefaultSpecConfig)
	lat := rng.Lattice(&fs, 3, 1, 1)
	weights := rng.Weights(6)

	score, path := BestPath(&fs, weights, lat)

	require.Len(t, path, 3)
	want := ReferenceScore(&fs, weights, []*analysis.Node{
		&lat.Boundaries[0][0], &lat.Boundaries[1][0], &lat.Boundaries[2][0],
	})
	assert.Equal(t, want, score)
}
