// Package arena provides the scoped, run-lifetime allocator behind feature
// buffers.
//
// An Arena hands out typed, cache-line aligned slices carved from large
// off-heap chunks (anonymous mappings). Nothing is freed individually: every
// allocation shares the lifetime of the run that owns the arena and is
// released in one step by Free, typically through Scoped:
//
//	err := arena.Scoped(ctx, func(a *arena.Arena) error {
//	    keys, err := arena.Alloc[uint64](a, 1024)
//	    ...
//	}, arena.WithMemoryAcquirer(controller))
//
// # Concurrency
//
// An Arena belongs to exactly one run and is not safe for concurrent use.
// Independent runs use independent arenas.
//
// # Element types
//
// Chunks live outside the Go heap, so only pointer-free scalar element
// types may be allocated (see Scalar).
package arena
