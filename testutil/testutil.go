package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/ngramfeat/analysis"
	"github.com/hupe1980/ngramfeat/spec"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// Weights returns a weight table of 1<<bits values in [-1, 1).
func (r *RNG) Weights(bits int) []float32 {
	w := make([]float32, 1<<bits)
	r.FillUniformRange(w, -1, 1)
	return w
}

// Zipf returns a Zipfian-distributed value in [0, n).
// P(k) ∝ 1/k^s where s is the skew parameter. Dictionary fields are drawn
// from it, so a few values dominate the way frequent entries do.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// SpecConfig shapes a random feature spec.
type SpecConfig struct {
	NumEntryFields int
	NumProvided    int
	NumCompute     int
	NumPattern     int
	// NumNgram templates cycle through orders 1, 2 and 3.
	NumNgram int
	// ValueRange bounds entry values, which Match computes test against.
	ValueRange int
}

// DefaultSpecConfig yields small specs with every kind of template.
var DefaultSpecConfig = SpecConfig{
	NumEntryFields: 3,
	NumProvided:    1,
	NumCompute:     2,
	NumPattern:     4,
	NumNgram:       6,
	ValueRange:     8,
}

// Spec returns a random valid feature spec. Every entry field and provided
// value gets a primitive.
func (r *RNG) Spec(cfg SpecConfig) spec.FeatureSpec {
	r.mu.Lock()
	defer r.mu.Unlock()

	fs := spec.FeatureSpec{NumEntryFields: cfg.NumEntryFields, NumProvided: cfg.NumProvided}
	for i := range cfg.NumEntryFields {
		fs.Primitive = append(fs.Primitive, spec.PrimitiveDef{Name: fmt.Sprintf("entry%d", i), Kind: spec.Copy, Index: i})
	}
	for i := range cfg.NumProvided {
		fs.Primitive = append(fs.Primitive, spec.PrimitiveDef{Name: fmt.Sprintf("provided%d", i), Kind: spec.Provided, Index: i})
	}

	numPrim := len(fs.Primitive)
	for i := range cfg.NumCompute {
		def := spec.ComputeDef{Name: fmt.Sprintf("compute%d", i)}
		if i%2 == 0 {
			def.Kind = spec.Combine
			for range 1 + r.rand.Intn(2) {
				def.Inputs = append(def.Inputs, r.rand.Intn(numPrim))
			}
		} else {
			def.Kind = spec.Match
			def.Inputs = []int{r.rand.Intn(numPrim)}
			for range 1 + r.rand.Intn(3) {
				def.Values = append(def.Values, int64(r.rand.Intn(max(cfg.ValueRange, 1))))
			}
		}
		fs.Compute = append(fs.Compute, def)
	}

	numFeatures := fs.NumFeatures()
	for i := range cfg.NumPattern {
		def := spec.PatternDef{Name: fmt.Sprintf("pattern%d", i)}
		for range 1 + r.rand.Intn(3) {
			def.Inputs = append(def.Inputs, r.rand.Intn(numFeatures))
		}
		fs.Pattern = append(fs.Pattern, def)
	}

	for i := range cfg.NumNgram {
		def := spec.NgramDef{Name: fmt.Sprintf("ngram%d", i)}
		for range i%spec.MaxOrder + 1 {
			def.Inputs = append(def.Inputs, r.rand.Intn(cfg.NumPattern))
		}
		fs.Ngram = append(fs.Ngram, def)
	}
	return fs
}

// Lattice returns a random lattice over numBoundaries boundaries. Every
// boundary has a node of length one, so a full path always exists.
func (r *RNG) Lattice(fs *spec.FeatureSpec, numBoundaries, maxStarts, maxLength int) *analysis.Lattice {
	r.mu.Lock()
	defer r.mu.Unlock()

	lat := &analysis.Lattice{Boundaries: make([][]analysis.Node, numBoundaries)}
	for b := range numBoundaries {
		n := 1 + r.rand.Intn(maxStarts)
		nodes := make([]analysis.Node, n)
		for i := range nodes {
			length := 1
			if i > 0 {
				length = 1 + r.rand.Intn(min(maxLength, numBoundaries-b))
			}
			nodes[i] = analysis.Node{
				Entry:    r.valuesLocked(fs.NumEntryFields, 8),
				Provided: r.valuesLocked(fs.NumProvided, 4),
				Length:   length,
			}
		}
		lat.Boundaries[b] = nodes
	}
	return lat
}

func (r *RNG) valuesLocked(n, valueRange int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(r.zipfLocked(valueRange, 1.2)) //nolint:gosec // small range
	}
	return out
}
