package ngramfeat

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordModelLoad is called after each model load.
	RecordModelLoad(duration time.Duration, err error)

	// RecordAnalyze is called after each single-lattice analysis.
	// boundaries is the lattice length.
	RecordAnalyze(boundaries int, duration time.Duration, err error)

	// RecordBatch is called after each batch analysis.
	// count is the number of lattices, failed is zero or count.
	RecordBatch(count, failed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordModelLoad(time.Duration, error)    {}
func (NoopMetricsCollector) RecordAnalyze(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount         atomic.Int64
	LoadErrors        atomic.Int64
	AnalyzeCount      atomic.Int64
	AnalyzeErrors     atomic.Int64
	AnalyzeBoundaries atomic.Int64
	AnalyzeTotalNanos atomic.Int64
	BatchCount        atomic.Int64
	BatchItems        atomic.Int64
	BatchFailed       atomic.Int64
}

// RecordModelLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordModelLoad(_ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordAnalyze implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAnalyze(boundaries int, duration time.Duration, err error) {
	b.AnalyzeCount.Add(1)
	b.AnalyzeBoundaries.Add(int64(boundaries))
	b.AnalyzeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AnalyzeErrors.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, failed int, _ time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:         b.LoadCount.Load(),
		LoadErrors:        b.LoadErrors.Load(),
		AnalyzeCount:      b.AnalyzeCount.Load(),
		AnalyzeErrors:     b.AnalyzeErrors.Load(),
		AnalyzeBoundaries: b.AnalyzeBoundaries.Load(),
		AnalyzeAvgNanos:   b.avgAnalyzeNanos(),
		BatchCount:        b.BatchCount.Load(),
		BatchItems:        b.BatchItems.Load(),
		BatchFailed:       b.BatchFailed.Load(),
	}
}

func (b *BasicMetricsCollector) avgAnalyzeNanos() int64 {
	count := b.AnalyzeCount.Load()
	if count == 0 {
		return 0
	}
	return b.AnalyzeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount         int64
	LoadErrors        int64
	AnalyzeCount      int64
	AnalyzeErrors     int64
	AnalyzeBoundaries int64
	AnalyzeAvgNanos   int64
	BatchCount        int64
	BatchItems        int64
	BatchFailed       int64
}
