package arena

import (
	"context"
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ngramfeat/internal/resource"
)

func TestAlloc_TypedAndAligned(t *testing.T) {
	a := New(context.Background(), WithChunkSize(4096))
	defer a.Free()

	keys, err := Alloc[uint64](a, 10)
	require.NoError(t, err)
	require.Len(t, keys, 10)

	vals, err := Alloc[uint32](a, 3)
	require.NoError(t, err)
	require.Len(t, vals, 3)

	scores, err := Alloc[float32](a, 5)
	require.NoError(t, err)

	for _, p := range []unsafe.Pointer{unsafe.Pointer(&keys[0]), unsafe.Pointer(&vals[0]), unsafe.Pointer(&scores[0])} {
		assert.Zero(t, uintptr(p)%uintptr(CacheLine))
	}

	for i := range keys {
		assert.Zero(t, keys[i])
		keys[i] = uint64(i)
	}
	vals[0] = 1
	assert.Equal(t, uint64(9), keys[9], "allocations must not overlap")

	st := a.Stats()
	assert.Equal(t, 1, st.Chunks)
	assert.Equal(t, 3, st.Allocs)
	assert.Equal(t, int64(80+12+20), st.BytesUsed)
}

func TestAlloc_Zero(t *testing.T) {
	a := New(context.Background())
	defer a.Free()

	s, err := Alloc[uint64](a, 0)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Zero(t, a.Stats().Chunks)
}

func TestAlloc_Growth(t *testing.T) {
	a := New(context.Background(), WithChunkSize(1024))
	defer a.Free()

	_, err := Alloc[uint64](a, 100)
	require.NoError(t, err)
	_, err = Alloc[uint64](a, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Stats().Chunks)

	big, err := Alloc[uint64](a, 1000)
	require.NoError(t, err)
	assert.Len(t, big, 1000)
	assert.Equal(t, 3, a.Stats().Chunks)
}

func TestFree(t *testing.T) {
	a := New(context.Background())
	_, err := Alloc[uint32](a, 8)
	require.NoError(t, err)

	a.Free()
	a.Free()

	_, err = Alloc[uint32](a, 8)
	assert.ErrorIs(t, err, ErrFreed)
	assert.Zero(t, a.Stats().BytesReserved)
}

func TestScoped_ReleasesMemory(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})

	err := Scoped(context.Background(), func(a *Arena) error {
		_, err := Alloc[uint64](a, 16)
		require.NoError(t, err)
		assert.Equal(t, int64(4096), rc.MemoryUsage())
		return nil
	}, WithChunkSize(4096), WithMemoryAcquirer(rc))

	require.NoError(t, err)
	assert.Zero(t, rc.MemoryUsage())
}

func TestScoped_PropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	err := Scoped(context.Background(), func(*Arena) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestAlloc_MemoryLimit(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 4096})
	a := New(context.Background(), WithChunkSize(4096), WithMemoryAcquirer(rc))
	defer a.Free()

	_, err := Alloc[uint64](a, 1024)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Zero(t, rc.MemoryUsage())
}
