package analysis

import (
	"context"

	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/internal/arena"
	"github.com/hupe1980/ngramfeat/sliceable"
	"github.com/hupe1980/ngramfeat/util"
)

// bos addresses the begin-of-sentence sentinel.
var bos = NodeRef{Boundary: -1, Index: -1}

type hypothesis struct {
	node  NodeRef
	prev  int32
	score float32
}

// run holds the state of one Analyze call. Scratch memory comes from the run
// arena and is invalid once the arena is freed.
type run struct {
	a   *Analyzer
	lat *Lattice
	ar  *arena.Arena
	buf features.FeatureBuffer

	prim    features.PrimitiveApply
	comp    features.ComputeApply
	pat     features.PatternApply
	ngram   features.NgramApply
	partial features.PartialNgramApply

	numFeatures int
	numPatterns int

	entries  []int32
	provided []int32
	feats    []uint64
	uni      []float32
	scores   []float32

	// zero is the pattern row of the BOS and EOS sentinels.
	zero     sliceable.ConstSliceable[uint64]
	patterns []sliceable.ConstSliceable[uint64]

	hyps []hypothesis
	ends [][]int32
}

func newRun(a *Analyzer, lat *Lattice, ar *arena.Arena) (*run, error) {
	fs := a.fs
	r := &run{
		a:           a,
		lat:         lat,
		ar:          ar,
		prim:        a.holder.Primitive.Get(),
		comp:        a.holder.Compute.Get(),
		pat:         a.holder.Pattern.Get(),
		ngram:       a.holder.Ngram.Get(),
		partial:     a.holder.PartialNgram.Get(),
		numFeatures: fs.NumFeatures(),
		numPatterns: len(fs.Pattern),
		patterns:    make([]sliceable.ConstSliceable[uint64], len(lat.Boundaries)),
	}

	stats := lat.Stats()
	if err := r.partial.AllocateBuffers(&r.buf, stats, ar); err != nil {
		return nil, err
	}
	maxStarts := int(stats.MaxStarts)

	var err error
	if r.entries, err = arena.Alloc[int32](ar, maxStarts*fs.NumEntryFields); err != nil {
		return nil, err
	}
	if r.provided, err = arena.Alloc[int32](ar, maxStarts*fs.NumProvided); err != nil {
		return nil, err
	}
	if r.feats, err = ar.Uint64s(maxStarts * r.numFeatures); err != nil {
		return nil, err
	}
	if r.uni, err = arena.Alloc[float32](ar, maxStarts); err != nil {
		return nil, err
	}
	if r.scores, err = arena.Alloc[float32](ar, maxStarts); err != nil {
		return nil, err
	}
	zero, err := ar.Uint64s(r.numPatterns)
	if err != nil {
		return nil, err
	}
	r.zero = sliceable.NewConst(zero, 1, r.numPatterns)
	return r, nil
}

func (r *run) decode(ctx context.Context) (*Result, error) {
	numBoundaries := len(r.lat.Boundaries)
	r.ends = make([][]int32, numBoundaries+1)
	r.hyps = append(r.hyps[:0], hypothesis{node: bos, prev: -1})
	r.ends[0] = []int32{0}

	for b := range numBoundaries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nodes := r.lat.Boundaries[b]
		beam := r.prune(b)
		if len(nodes) == 0 || len(beam) == 0 {
			continue
		}

		p0, err := r.patternsAt(b)
		if err != nil {
			return nil, err
		}
		r.expand(p0, beam, func(i int, h int32, score float32) {
			end := b + nodes[i].Length
			r.ends[end] = append(r.ends[end], r.push(hypothesis{
				node:  NodeRef{Boundary: b, Index: i},
				prev:  h,
				score: score,
			}))
		})
	}

	beam := r.prune(numBoundaries)
	if len(beam) == 0 {
		return nil, ErrNoPath
	}

	best := int32(-1)
	var bestScore float32
	r.expand(r.zero, beam, func(_ int, h int32, score float32) {
		if best < 0 || score > bestScore {
			best, bestScore = h, score
		}
	})

	path := r.backtrack(best)
	score, err := r.rescore(path)
	if err != nil {
		return nil, err
	}
	return &Result{Path: path, Score: score, BeamScore: bestScore}, nil
}

func (r *run) push(h hypothesis) int32 {
	r.hyps = append(r.hyps, h)
	return int32(len(r.hyps) - 1) //nolint:gosec // bounded by lattice size
}

func (r *run) better(x, y int32) bool { return r.hyps[x].score > r.hyps[y].score }

// prune keeps the beam width best hypotheses ending at boundary b.
func (r *run) prune(b int) []int32 {
	cands := r.ends[b]
	if w := r.a.beamWidth; len(cands) > w {
		util.Partition(cands, r.better, w, len(cands))
		cands = cands[:w]
		r.ends[b] = cands
	}
	return cands
}

// patternsAt evaluates primitive, compute and pattern features for the nodes
// starting at b and keeps the pattern rows for the rest of the run.
func (r *run) patternsAt(b int) (sliceable.ConstSliceable[uint64], error) {
	fs := r.a.fs
	nodes := r.lat.Boundaries[b]
	n := len(nodes)

	for i, node := range nodes {
		copy(r.entries[i*fs.NumEntryFields:], node.Entry)
		copy(r.provided[i*fs.NumProvided:], node.Provided)
	}
	provided := sliceable.NewConst(r.provided, n, fs.NumProvided)

	data := features.PrimitiveFeatureData{Features: sliceable.New(r.feats, n, r.numFeatures)}
	r.prim.ApplyBatch(&features.PrimitiveFeatureContext{
		Entries:  sliceable.NewConst(r.entries, n, fs.NumEntryFields),
		Provided: provided,
	}, &data)
	r.comp.ApplyBatch(&features.ComputeFeatureContext{Provided: provided}, &data)

	storage, err := r.ar.Uint64s(n * r.numPatterns)
	if err != nil {
		return sliceable.ConstSliceable[uint64]{}, err
	}
	out := sliceable.New(storage, n, r.numPatterns)
	r.pat.ApplyBatch(&features.PatternFeatureData{Features: data.Features.Const(), Patterns: out})

	r.patterns[b] = out.Const()
	return r.patterns[b], nil
}

func (r *run) pattern(ref NodeRef) sliceable.ArraySlice[uint64] {
	if ref.Boundary < 0 {
		return r.zero.Row(0)
	}
	return r.patterns[ref.Boundary].Row(ref.Index)
}

// expand scores every row of p0 against every hypothesis in beam. Step one
// of each n-gram order runs once for the batch; the later steps run per
// hypothesis.
func (r *run) expand(p0 sliceable.ConstSliceable[uint64], beam []int32, emit func(i int, h int32, score float32)) {
	n := p0.Rows()
	buf := &r.buf
	uni := r.uni[:n]
	util.Fill(uni, 0)
	r.partial.ApplyUni(buf, p0, r.a.scorer, sliceable.MutableOf(uni))

	biTok := r.partial.ApplyBiStep1(buf, p0)
	triTok := r.partial.ApplyTriStep1(buf, p0)

	for _, h := range beam {
		hyp := r.hyps[h]
		p1 := r.pattern(hyp.node)
		p2 := r.zero.Row(0)
		if hyp.prev >= 0 {
			p2 = r.pattern(r.hyps[hyp.prev].node)
		}

		scores := r.scores[:n]
		util.CopyBuffer(uni, scores)
		result := sliceable.MutableOf(scores)
		r.partial.ApplyBiStep2(buf, biTok, p1, r.a.scorer, result)
		tok2 := r.partial.ApplyTriStep2(buf, triTok, p1)
		r.partial.ApplyTriStep3(buf, tok2, p2, r.a.scorer, result)

		for i, s := range scores {
			emit(i, h, hyp.score+s)
		}
	}
}

func (r *run) backtrack(h int32) []NodeRef {
	var path []NodeRef
	for ; h >= 0 && r.hyps[h].node != bos; h = r.hyps[h].prev {
		path = append(path, r.hyps[h].node)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// rescore scores path followed by EOS with the batch n-gram capability.
func (r *run) rescore(path []NodeRef) (float32, error) {
	rows := len(path) + 1
	cols := r.numPatterns

	rowAt := func(k int) sliceable.ArraySlice[uint64] {
		if k < 0 || k >= len(path) {
			return r.zero.Row(0)
		}
		return r.pattern(path[k])
	}

	var ctxs [3]sliceable.Sliceable[uint64]
	for t := range ctxs {
		storage, err := r.ar.Uint64s(rows * cols)
		if err != nil {
			return 0, err
		}
		ctxs[t] = sliceable.New(storage, rows, cols)
		for k := range rows {
			src := rowAt(k - t)
			dst := ctxs[t].Row(k)
			for c := range cols {
				dst.Set(c, src.At(c))
			}
		}
	}

	numNgrams := len(r.a.fs.Ngram)
	idStorage, err := r.ar.Uint32s(rows * numNgrams)
	if err != nil {
		return 0, err
	}
	ids := sliceable.New(idStorage, rows, numNgrams)
	r.ngram.ApplyBatch(&features.NgramFeatureData{
		T0:         ctxs[0].Const(),
		T1:         ctxs[1].Const(),
		T2:         ctxs[2].Const(),
		FeatureIDs: ids,
		Mask:       ^uint32(0),
	})

	var score float32
	for k := range rows {
		score += r.a.scorer.Score(ids.Const().Row(k))
	}
	return score, nil
}
