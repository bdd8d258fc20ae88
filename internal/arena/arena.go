package arena

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/hupe1980/ngramfeat/internal/mmap"
)

// MemoryAcquirer accounts arena chunks against a shared memory budget.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, bytes int64) error
	ReleaseMemory(bytes int64)
}

var (
	// ErrFreed is returned when allocating from a freed arena.
	ErrFreed = errors.New("arena: freed")
	// ErrMaxChunksExceeded is returned when the arena would exceed MaxChunks.
	ErrMaxChunksExceeded = errors.New("arena: max chunks exceeded")
)

const (
	// DefaultChunkSize is the size of a regular chunk (256 KiB).
	DefaultChunkSize = 256 * 1024
	// MaxChunks bounds the chunks one run may hold.
	MaxChunks = 4096
)

// CacheLine is the alignment of every allocation.
var CacheLine = int(unsafe.Sizeof(cpu.CacheLinePad{}))

// Scalar lists the element types an arena may hold.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Stats describes arena memory use.
type Stats struct {
	Chunks        int   // chunks currently mapped
	BytesReserved int64 // bytes mapped from the OS
	BytesUsed     int64 // bytes requested by allocations
	BytesWasted   int64 // alignment padding
	Allocs        int   // allocation count
}

// Arena is a bump allocator over off-heap chunks.
type Arena struct {
	ctx       context.Context
	chunkSize int
	acquirer  MemoryAcquirer

	chunks []*mmap.Mapping
	cur    []byte
	off    int
	stats  Stats
	freed  bool
}

// Option configures an Arena.
type Option func(*Arena)

// WithChunkSize sets the regular chunk size. Allocations larger than a chunk
// receive a dedicated chunk of their own.
func WithChunkSize(size int) Option {
	return func(a *Arena) {
		if size > 0 {
			a.chunkSize = size
		}
	}
}

// WithMemoryAcquirer accounts chunks against acquirer.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// New creates an empty arena. No memory is mapped until the first allocation.
// ctx bounds waits on the memory acquirer.
func New(ctx context.Context, opts ...Option) *Arena {
	a := &Arena{
		ctx:       ctx,
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Scoped runs fn with a fresh arena and frees it when fn returns.
func Scoped(ctx context.Context, fn func(a *Arena) error, opts ...Option) error {
	a := New(ctx, opts...)
	defer a.Free()
	return fn(a)
}

// Alloc returns a zeroed slice of n elements, aligned to CacheLine.
func Alloc[T Scalar](a *Arena, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	var zero T
	size := n * int(unsafe.Sizeof(zero))
	b, err := a.AllocBytes(size)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil //nolint:gosec // aligned, pointer-free chunk memory
}

// Uint64s allocates n uint64 values.
func (a *Arena) Uint64s(n int) ([]uint64, error) { return Alloc[uint64](a, n) }

// Uint32s allocates n uint32 values.
func (a *Arena) Uint32s(n int) ([]uint32, error) { return Alloc[uint32](a, n) }

// AllocBytes returns a zeroed, cache-line aligned byte slice of size bytes.
func (a *Arena) AllocBytes(size int) ([]byte, error) {
	if a.freed {
		return nil, ErrFreed
	}
	if size <= 0 {
		return nil, nil
	}

	mask := CacheLine - 1
	start := (a.off + mask) &^ mask
	if a.cur == nil || start+size > len(a.cur) {
		if err := a.grow(size); err != nil {
			return nil, err
		}
		start = 0
	}

	a.stats.BytesWasted += int64(start - a.off)
	a.stats.BytesUsed += int64(size)
	a.stats.Allocs++

	a.off = start + size
	return a.cur[start:a.off:a.off], nil
}

func (a *Arena) grow(min int) error {
	if len(a.chunks) >= MaxChunks {
		return ErrMaxChunksExceeded
	}

	size := a.chunkSize
	if min > size {
		size = min
	}

	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(a.ctx, int64(size)); err != nil {
			return fmt.Errorf("arena: reserve %d bytes: %w", size, err)
		}
	}

	m, err := mmap.MapAnon(size)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(size))
		}
		return fmt.Errorf("arena: map chunk: %w", err)
	}

	a.chunks = append(a.chunks, m)
	a.cur = m.Bytes()
	a.off = 0
	a.stats.Chunks++
	a.stats.BytesReserved += int64(size)
	return nil
}

// Stats returns the current usage.
func (a *Arena) Stats() Stats {
	return a.stats
}

// Free unmaps every chunk and returns the memory to the acquirer.
// Slices obtained from the arena must not be used afterwards.
// Free is idempotent.
func (a *Arena) Free() {
	if a.freed {
		return
	}
	a.freed = true

	for _, m := range a.chunks {
		size := m.Size()
		_ = m.Close()
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(size))
		}
	}
	a.chunks = nil
	a.cur = nil
	a.off = 0
	a.stats.Chunks = 0
	a.stats.BytesReserved = 0
}

func (a *Arena) String() string {
	return fmt.Sprintf("Arena{chunks: %d, reserved: %d B, used: %d B, wasted: %d B, allocs: %d}",
		a.stats.Chunks, a.stats.BytesReserved, a.stats.BytesUsed, a.stats.BytesWasted, a.stats.Allocs)
}
