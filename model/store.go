package model

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/ngramfeat/blobstore"
	"github.com/hupe1980/ngramfeat/internal/resource"
)

type loadOptions struct {
	rc *resource.Controller
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithResourceController throttles model reads through rc's IO limit and
// reserves the blob size from its memory budget while decoding.
func WithResourceController(rc *resource.Controller) LoadOption {
	return func(o *loadOptions) { o.rc = rc }
}

// Save encodes m and writes it to store under name. The blob becomes
// visible only once fully written.
func Save(ctx context.Context, store blobstore.BlobStore, name string, m *Model, opts ...EncodeOption) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("model: create %s: %w", name, err)
	}
	if err := Encode(w, m, opts...); err != nil {
		_ = w.Abort()
		return fmt.Errorf("model: write %s: %w", name, err)
	}
	if err := w.Sync(); err != nil {
		_ = w.Abort()
		return fmt.Errorf("model: sync %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("model: commit %s: %w", name, err)
	}
	return nil
}

// Load reads and decodes the model stored under name.
//
// Without a resource controller, mappable blobs are decoded straight from
// the mapping. Otherwise the blob is streamed through the controller's
// rate limiter.
func Load(ctx context.Context, store blobstore.BlobStore, name string, opts ...LoadOption) (*Model, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("model: open %s: %w", name, err)
	}
	defer func() { _ = b.Close() }()

	if o.rc == nil {
		if mb, ok := b.(blobstore.Mappable); ok {
			data, err := mb.Bytes()
			if err != nil {
				return nil, fmt.Errorf("model: map %s: %w", name, err)
			}
			return decodeNamed(name, data)
		}
	}

	size := b.Size()
	if err := o.rc.AcquireMemory(ctx, size); err != nil {
		return nil, fmt.Errorf("model: load %s: %w", name, err)
	}
	defer o.rc.ReleaseMemory(size)

	rc, err := b.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, fmt.Errorf("model: read %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(resource.NewRateLimitedReader(ctx, rc, o.rc))
	if err != nil {
		return nil, fmt.Errorf("model: read %s: %w", name, err)
	}
	return decodeNamed(name, data)
}

func decodeNamed(name string, data []byte) (*Model, error) {
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("model: decode %s: %w", name, err)
	}
	return m, nil
}
