package model

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ngramfeat/blobstore"
	"github.com/hupe1980/ngramfeat/codec"
	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/internal/hash"
	"github.com/hupe1980/ngramfeat/internal/resource"
	"github.com/hupe1980/ngramfeat/sliceable"
	"github.com/hupe1980/ngramfeat/spec"
)

func testSpec() spec.FeatureSpec {
	return spec.FeatureSpec{
		NumEntryFields: 2,
		NumProvided:    1,
		Primitive: []spec.PrimitiveDef{
			{Name: "surface", Kind: spec.Copy, Index: 0},
			{Name: "pos", Kind: spec.Copy, Index: 1},
			{Name: "length", Kind: spec.Provided, Index: 0},
		},
		Compute: []spec.ComputeDef{
			{Name: "is_noun", Kind: spec.Match, Inputs: []int{1}, Values: []int64{1, 2}},
		},
		Pattern: []spec.PatternDef{
			{Name: "p_surface", Inputs: []int{0}},
			{Name: "p_pos", Inputs: []int{1, 3}},
		},
		Ngram: []spec.NgramDef{
			{Name: "uni", Inputs: []int{0}},
			{Name: "bi", Inputs: []int{1, 1}},
			{Name: "tri", Inputs: []int{1, 0, 1}},
		},
	}
}

func testModel(t *testing.T, numWeights int) *Model {
	t.Helper()
	rng := rand.New(rand.NewSource(int64(numWeights)))
	w := make([]float32, numWeights)
	for i := range w {
		// A small value range keeps the block compressible.
		w[i] = float32(rng.Intn(8)) / 4
	}
	m, err := New("test", testSpec(), w, features.Ngram, features.PartialNgram)
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	m := testModel(t, 16)

	assert.Equal(t, uint32(15), m.Mask())
	fs := testSpec()
	assert.Equal(t, fs.Hash(), m.RuntimeHash())
	assert.Equal(t, []features.Capability{features.Ngram, features.PartialNgram}, m.RequiredList())
	assert.True(t, m.Required().Test(uint(features.PartialNgram)))
	assert.False(t, m.Required().Test(uint(features.Primitive)))

	d, err := New("d", testSpec(), make([]float32, 4))
	require.NoError(t, err)
	assert.Equal(t, DefaultRequired, d.RequiredList())
}

func TestNew_Errors(t *testing.T) {
	for _, n := range []int{0, 3, 12} {
		_, err := New("bad", testSpec(), make([]float32, n))
		assert.ErrorIs(t, err, ErrInvalidWeights, "n=%d", n)
	}

	bad := testSpec()
	bad.Ngram[0].Inputs = []int{9}
	_, err := New("bad", bad, make([]float32, 4))
	assert.ErrorIs(t, err, spec.ErrInvalidSpec)
}

func TestLinearScorer(t *testing.T) {
	s, err := NewLinearScorer([]float32{1, 2, 4, 8})
	require.NoError(t, err)

	ids := sliceable.Of([]uint32{0, 3, 7, 1 << 20})
	// 7 & 3 == 3, (1<<20) & 3 == 0
	assert.Equal(t, float32(1+8+8+1), s.Score(ids))
	assert.Equal(t, uint32(3), s.Mask())

	_, err = NewLinearScorer(make([]float32, 6))
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	m := testModel(t, 1<<12)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		for _, name := range []string{"json", "go-json", "msgpack"} {
			t.Run(c.String()+"/"+name, func(t *testing.T) {
				cd, ok := codec.ByName(name)
				require.True(t, ok)

				var buf bytes.Buffer
				require.NoError(t, Encode(&buf, m, WithCompression(c), WithCodec(cd)))

				got, err := Decode(buf.Bytes())
				require.NoError(t, err)

				assert.Equal(t, m.Name, got.Name)
				assert.Equal(t, m.Spec, got.Spec)
				assert.Equal(t, m.Weights, got.Weights)
				assert.Equal(t, m.RequiredList(), got.RequiredList())
				assert.Equal(t, m.RuntimeHash(), got.RuntimeHash())
			})
		}
	}
}

func TestEncode_CompressionShrinks(t *testing.T) {
	m := testModel(t, 1<<14)

	var raw, zst bytes.Buffer
	require.NoError(t, Encode(&raw, m, WithCompression(CompressionNone)))
	require.NoError(t, Encode(&zst, m, WithCompression(CompressionZstd)))

	assert.Less(t, zst.Len(), raw.Len())
}

func TestCompressBlock_RawFallback(t *testing.T) {
	data := make([]byte, 4096)
	_, _ = rand.New(rand.NewSource(1)).Read(data)

	for _, c := range []Compression{CompressionLZ4, CompressionZstd} {
		block, err := compressBlock(data, c)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(block[4:]), "incompressible data is stored raw")

		out, err := decompressBlock(block, c)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	}

	_, err := compressBlock(data, Compression(9))
	assert.ErrorIs(t, err, ErrUnsupportedCompression)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("brotli")
	assert.Error(t, err)
	assert.Equal(t, "Compression(7)", Compression(7).String())
}

func encoded(t *testing.T, m *Model) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))
	return buf.Bytes()
}

func reseal(data []byte) {
	n := len(data) - 4
	binary.LittleEndian.PutUint32(data[n:], hash.CRC32C(data[:n]))
}

func TestDecode_Errors(t *testing.T) {
	m := testModel(t, 64)

	t.Run("bad magic", func(t *testing.T) {
		data := encoded(t, m)
		data[0] = 'X'
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrBadMagic)

		_, err = Decode([]byte("NG"))
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("checksum", func(t *testing.T) {
		data := encoded(t, m)
		data[len(data)/2] ^= 0xff
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("version", func(t *testing.T) {
		data := encoded(t, m)
		binary.LittleEndian.PutUint16(data[4:], Version+1)
		reseal(data)
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("compression id", func(t *testing.T) {
		data := encoded(t, m)
		data[6] = 42
		reseal(data)
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrUnsupportedCompression)
	})

	t.Run("codec name", func(t *testing.T) {
		data := encoded(t, m)
		// "go-json" starts at offset 8.
		copy(data[8:], "no-json")
		reseal(data)
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrUnknownCodec)
	})

	t.Run("truncated", func(t *testing.T) {
		data := encoded(t, m)
		short := append([]byte(nil), data[:len(data)/2]...)
		short = binary.LittleEndian.AppendUint32(short, 0)
		reseal(short)
		_, err := Decode(short)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	m := testModel(t, 256)

	stores := map[string]blobstore.BlobStore{
		"local":  blobstore.NewLocalStore(t.TempDir()),
		"memory": blobstore.NewMemoryStore(),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Save(ctx, store, "models/test.ngfm", m, WithCompression(CompressionLZ4)))

			got, err := Load(ctx, store, "models/test.ngfm")
			require.NoError(t, err)
			assert.Equal(t, m.Weights, got.Weights)
			assert.Equal(t, m.RuntimeHash(), got.RuntimeHash())

			rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20, IOLimitBytesPerSec: 1 << 30})
			got, err = Load(ctx, store, "models/test.ngfm", WithResourceController(rc))
			require.NoError(t, err)
			assert.Equal(t, m.Weights, got.Weights)
			assert.Zero(t, rc.MemoryUsage())

			_, err = Load(ctx, store, "models/missing.ngfm")
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}

// renamedCodec is a working codec under a name Decode cannot resolve.
type renamedCodec struct{ codec.Codec }

func (renamedCodec) Name() string { return "no-json" }

// shortStore cuts every streamed write off after half of its first chunk.
type shortStore struct{ blobstore.BlobStore }

func (s shortStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	w, err := s.BlobStore.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return shortWriter{w}, nil
}

type shortWriter struct{ blobstore.WritableBlob }

func (w shortWriter) Write(p []byte) (int, error) {
	n, _ := w.WritableBlob.Write(p[:len(p)/2])
	return n, io.ErrShortWrite
}

func TestSave_FailureKeepsPreviousModel(t *testing.T) {
	ctx := context.Background()
	old := testModel(t, 64)
	next := testModel(t, 128)

	stores := map[string]blobstore.BlobStore{
		"local":  blobstore.NewLocalStore(t.TempDir()),
		"memory": blobstore.NewMemoryStore(),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Save(ctx, store, "m.ngfm", old))

			err := Save(ctx, store, "m.ngfm", next, WithCodec(renamedCodec{codec.Default}))
			require.ErrorIs(t, err, ErrUnknownCodec)

			err = Save(ctx, shortStore{store}, "m.ngfm", next)
			require.ErrorIs(t, err, io.ErrShortWrite)

			got, err := Load(ctx, store, "m.ngfm")
			require.NoError(t, err)
			assert.Equal(t, old.Weights, got.Weights)

			err = Save(ctx, shortStore{store}, "fresh.ngfm", next)
			require.Error(t, err)
			_, err = Load(ctx, store, "fresh.ngfm")
			assert.ErrorIs(t, err, blobstore.ErrNotFound)

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"m.ngfm"}, names, "aborted writes leave nothing behind")
		})
	}
}

func TestLoad_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, Save(ctx, store, "m", testModel(t, 256)))

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})
	_, err := Load(ctx, store, "m", WithResourceController(rc))
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
}
