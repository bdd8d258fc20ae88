// Package resource governs the process-wide budgets shared by analysis runs.
//
// The Controller manages three resources:
//
//   - Memory: bytes reserved by run arenas. Reservations block until
//     memory is returned or the context ends (weighted semaphore).
//   - Runs: the number of analysis runs executing at once.
//   - IO: a token bucket limiting model-load throughput so loading a new
//     model does not starve the disk or network used by running analyses.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 256 << 20,
//	    MaxConcurrentRuns: 8,
//	})
//	if err := rc.AcquireRun(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseRun()
//
// All methods are safe for concurrent use, and a nil *Controller imposes no
// limits, so callers never need nil checks.
package resource
