package ngramfeat

import (
	"log/slog"

	"github.com/hupe1980/ngramfeat/analysis"
	"github.com/hupe1980/ngramfeat/features"
)

// ResourceLimits bounds what an Engine may use. Zero values mean unlimited.
type ResourceLimits struct {
	// MemoryLimitBytes bounds the arena memory of concurrent runs and the
	// buffers of model loads.
	MemoryLimitBytes int64 `toml:"memory_limit_bytes"`
	// MaxConcurrentRuns bounds the analyses executing at once.
	MaxConcurrentRuns int64 `toml:"max_concurrent_runs"`
	// IOLimitBytesPerSec bounds model read throughput.
	IOLimitBytesPerSec int64 `toml:"io_limit_bytes_per_sec"`
}

type options struct {
	staticFactory    features.StaticFactory
	beamWidth        int
	concurrency      int
	arenaChunkSize   int
	limits           ResourceLimits
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Engine constructor/load behavior.
type Option func(*options)

// WithStaticFactory supplies generated feature implementations. They are
// used for every capability they provide as long as their hash matches the
// model; otherwise the engine falls back to interpreting the model's spec.
func WithStaticFactory(f features.StaticFactory) Option {
	return func(o *options) {
		o.staticFactory = f
	}
}

// WithBeamWidth sets the number of hypotheses kept per lattice boundary.
func WithBeamWidth(n int) Option {
	return func(o *options) {
		o.beamWidth = n
	}
}

// WithConcurrency bounds the lattices AnalyzeBatch decodes at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithArenaChunkSize sets the chunk size of per-run arenas.
func WithArenaChunkSize(size int) Option {
	return func(o *options) {
		o.arenaChunkSize = size
	}
}

// WithResourceLimits bounds memory, concurrent runs and model IO.
func WithResourceLimits(limits ResourceLimits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &ngramfeat.BasicMetricsCollector{}
//	e, _ := ngramfeat.Open(ctx, store, "kyoto.ngfm", ngramfeat.WithMetricsCollector(metrics))
//	// ... use e ...
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Avg latency: %dns\n", stats.AnalyzeCount, stats.AnalyzeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := ngramfeat.NewJSONLogger(slog.LevelInfo)
//	e, _ := ngramfeat.New(m, ngramfeat.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		beamWidth:        analysis.DefaultBeamWidth,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) analysisOptions() []analysis.Option {
	return []analysis.Option{
		analysis.WithBeamWidth(o.beamWidth),
		analysis.WithConcurrency(o.concurrency),
		analysis.WithArenaChunkSize(o.arenaChunkSize),
		analysis.WithLogger(o.logger.Logger),
	}
}
