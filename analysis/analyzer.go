package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/internal/arena"
	"github.com/hupe1980/ngramfeat/internal/resource"
	"github.com/hupe1980/ngramfeat/spec"
)

// DefaultBeamWidth is the number of hypotheses kept per boundary.
const DefaultBeamWidth = 5

// RequiredCapabilities are the capabilities an Analyzer drives.
var RequiredCapabilities = features.AllCapabilities[:]

// Result is the best path through a lattice.
type Result struct {
	Path []NodeRef
	// Score is the path score computed by the batch n-gram capability.
	Score float32
	// BeamScore is the score the incremental search accumulated.
	BeamScore float32
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithBeamWidth sets the number of hypotheses kept per boundary.
func WithBeamWidth(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.beamWidth = n
		}
	}
}

// WithLogger sets the logger for run summaries.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithResourceController bounds concurrent runs and arena memory.
func WithResourceController(rc *resource.Controller) Option {
	return func(a *Analyzer) { a.rc = rc }
}

// WithConcurrency bounds the lattices AnalyzeBatch decodes at once.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithArenaChunkSize sets the chunk size of run arenas.
func WithArenaChunkSize(size int) Option {
	return func(a *Analyzer) { a.chunkSize = size }
}

// Analyzer decodes lattices with a resolved feature holder.
type Analyzer struct {
	holder *features.Holder
	scorer features.Scorer
	fs     *spec.FeatureSpec

	beamWidth   int
	concurrency int
	chunkSize   int
	logger      *slog.Logger
	rc          *resource.Controller
}

// New builds an Analyzer. The holder must provide every capability in
// RequiredCapabilities.
func New(holder *features.Holder, scorer features.Scorer, fs *spec.FeatureSpec, opts ...Option) (*Analyzer, error) {
	switch {
	case holder == nil:
		return nil, errors.New("analysis: nil feature holder")
	case scorer == nil:
		return nil, errors.New("analysis: nil scorer")
	case fs == nil:
		return nil, errors.New("analysis: nil feature spec")
	}
	if err := fs.Validate(); err != nil {
		return nil, err
	}
	if err := holder.Validate(features.CapabilitySet(RequiredCapabilities...)); err != nil {
		return nil, err
	}

	a := &Analyzer{
		holder:      holder,
		scorer:      scorer,
		fs:          fs,
		beamWidth:   DefaultBeamWidth,
		concurrency: runtime.GOMAXPROCS(0),
		chunkSize:   arena.DefaultChunkSize,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// BeamWidth returns the configured beam width.
func (a *Analyzer) BeamWidth() int { return a.beamWidth }

// Analyze returns the best path through lat.
func (a *Analyzer) Analyze(ctx context.Context, lat *Lattice) (*Result, error) {
	if err := lat.Validate(a.fs); err != nil {
		return nil, err
	}
	if err := a.rc.AcquireRun(ctx); err != nil {
		return nil, err
	}
	defer a.rc.ReleaseRun()

	start := time.Now()
	var res *Result
	err := arena.Scoped(ctx, func(ar *arena.Arena) error {
		r, err := newRun(a, lat, ar)
		if err != nil {
			return err
		}
		res, err = r.decode(ctx)
		if err != nil {
			return err
		}
		a.logger.LogAttrs(ctx, slog.LevelDebug, "analysis run",
			slog.Int("boundaries", len(lat.Boundaries)),
			slog.Int("hypotheses", len(r.hyps)),
			slog.Int("path_length", len(res.Path)),
			slog.Int64("arena_bytes", ar.Stats().BytesUsed),
			slog.Duration("elapsed", time.Since(start)),
		)
		return nil
	}, arena.WithMemoryAcquirer(a.rc), arena.WithChunkSize(a.chunkSize))
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AnalyzeBatch decodes lats concurrently. Results are in input order; the
// first error cancels the remaining runs.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, lats []*Lattice) ([]*Result, error) {
	results := make([]*Result, len(lats))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, lat := range lats {
		g.Go(func() error {
			res, err := a.Analyze(gctx, lat)
			if err != nil {
				return fmt.Errorf("analysis: lattice %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
