package ngramfeat

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/ngramfeat/analysis"
	"github.com/hupe1980/ngramfeat/blobstore"
	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/internal/resource"
	"github.com/hupe1980/ngramfeat/model"
)

// Engine is a loaded model with resolved features, ready to analyze
// lattices. It is safe for concurrent use.
type Engine struct {
	model    *model.Model
	holder   *features.Holder
	analyzer *analysis.Analyzer
	rc       *resource.Controller

	logger  *Logger
	metrics MetricsCollector
	closed  atomic.Bool
}

// Open loads the model stored under name and builds an Engine for it.
func Open(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	rc := newController(o.limits)

	start := time.Now()
	m, err := model.Load(ctx, store, name, model.WithResourceController(rc))
	elapsed := time.Since(start)
	o.metricsCollector.RecordModelLoad(elapsed, err)
	if err != nil {
		o.logger.LogModelLoad(ctx, name, 0, 0, elapsed, err)
		return nil, translateError(err)
	}
	o.logger.LogModelLoad(ctx, m.Name, m.RuntimeHash(), len(m.Weights), elapsed, nil)

	return newEngine(ctx, m, rc, o)
}

// New builds an Engine for an in-memory model.
func New(m *model.Model, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	return newEngine(context.Background(), m, newController(o.limits), o)
}

func newController(l ResourceLimits) *resource.Controller {
	if l == (ResourceLimits{}) {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   l.MemoryLimitBytes,
		MaxConcurrentRuns:  l.MaxConcurrentRuns,
		IOLimitBytesPerSec: l.IOLimitBytesPerSec,
	})
}

func newEngine(ctx context.Context, m *model.Model, rc *resource.Controller, o options) (*Engine, error) {
	logger := o.logger.WithModel(m.Name)

	holder, err := features.MakeFeatures(m, o.staticFactory, features.WithLogger(logger.Logger))
	if err != nil {
		return nil, translateError(err)
	}
	logger.LogResolution(ctx, holder)

	aopts := append(o.analysisOptions(), analysis.WithResourceController(rc), analysis.WithLogger(logger.Logger))
	a, err := analysis.New(holder, m.Scorer(), m.FeatureSpec(), aopts...)
	if err != nil {
		return nil, translateError(err)
	}

	return &Engine{
		model:    m,
		holder:   holder,
		analyzer: a,
		rc:       rc,
		logger:   logger,
		metrics:  o.metricsCollector,
	}, nil
}

// Model returns the loaded model.
func (e *Engine) Model() *model.Model { return e.model }

// Selection reports which implementation serves capability c.
func (e *Engine) Selection(c features.Capability) features.Selection {
	return e.holder.Selection(c)
}

// Analyze returns the best path through lat.
func (e *Engine) Analyze(ctx context.Context, lat *analysis.Lattice) (*analysis.Result, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	res, err := e.analyzer.Analyze(ctx, lat)
	elapsed := time.Since(start)

	boundaries, pathLen := 0, 0
	if lat != nil {
		boundaries = len(lat.Boundaries)
	}
	if res != nil {
		pathLen = len(res.Path)
	}
	e.metrics.RecordAnalyze(boundaries, elapsed, err)
	e.logger.LogRun(ctx, boundaries, pathLen, elapsed, err)
	return res, translateError(err)
}

// AnalyzeBatch analyzes lats concurrently. Results are in input order.
func (e *Engine) AnalyzeBatch(ctx context.Context, lats []*analysis.Lattice) ([]*analysis.Result, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	res, err := e.analyzer.AnalyzeBatch(ctx, lats)
	elapsed := time.Since(start)

	failed := 0
	if err != nil {
		failed = len(lats)
	}
	e.metrics.RecordBatch(len(lats), failed, elapsed)
	e.logger.LogBatch(ctx, len(lats), elapsed, err)
	return res, translateError(err)
}

// Stats reports the engine's resource usage.
type Stats struct {
	ActiveRuns  int64
	MemoryBytes int64
}

// Stats returns current resource usage. Without resource limits both
// values stay zero.
func (e *Engine) Stats() Stats {
	return Stats{ActiveRuns: e.rc.ActiveRuns(), MemoryBytes: e.rc.MemoryUsage()}
}
