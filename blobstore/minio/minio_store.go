package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/ngramfeat/blobstore"
)

// contentType marks model objects. It is informational only.
const contentType = "application/vnd.ngramfeat.model"

// ErrAborted is the error a reader of an aborted upload sees.
var ErrAborted = errors.New("minio: upload aborted")

// Store keeps model blobs in a MinIO (or other S3-compatible) bucket.
//
// Blobs opened for reading are pinned to the ETag seen at Open: ranged
// reads fail instead of mixing bytes of two model versions when the
// object is replaced while a model is being loaded.
type Store struct {
	client   *minio.Client
	bucket   string
	prefix   string
	partSize uint64
}

var _ blobstore.BlobStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPartSize sets the multipart size for streamed writes. Zero lets the
// client choose.
func WithPartSize(size uint64) Option {
	return func(s *Store) { s.partSize = size }
}

// NewStore returns a store for bucket. rootPrefix is joined in front of
// every blob name (e.g. "models/").
func NewStore(client *minio.Client, bucket, rootPrefix string, opts ...Option) *Store {
	s := &Store{client: client, bucket: bucket, prefix: rootPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// relName strips the root prefix from an object key.
func relName(rootPrefix, key string) string {
	root := strings.TrimSuffix(rootPrefix, "/")
	if root == "" {
		return key
	}
	if rel, ok := strings.CutPrefix(key, root+"/"); ok {
		return rel
	}
	return key
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

func (s *Store) putOptions() minio.PutObjectOptions {
	return minio.PutObjectOptions{ContentType: contentType, PartSize: s.partSize}
}

// Open stats the object and returns a blob pinned to its current version.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if isNotFound(err) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("minio: stat %s: %w", key, err)
	}
	return &object{store: s, key: key, etag: info.ETag, size: info.Size}, nil
}

// Put uploads data in one request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), s.putOptions())
	return err
}

// Create streams writes into an upload of unknown size. The object
// appears when Close returns nil; Abort discards it.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()
	u := &upload{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, s.putOptions())
		_ = pr.CloseWithError(err)
		u.done <- err
	}()
	return u, nil
}

// Delete removes name. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns the sorted names under prefix. Directory markers are
// skipped.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := s.key(prefix)
	if strings.HasSuffix(prefix, "/") {
		full += "/"
	}

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: full, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		names = append(names, relName(s.prefix, obj.Key))
	}
	slices.Sort(names)
	return names, nil
}

// object is one version of a stored blob.
type object struct {
	store *Store
	key   string
	etag  string
	size  int64
}

func (o *object) Size() int64  { return o.size }
func (o *object) Close() error { return nil }

// span clamps [off, off+length) to the object. A negative length reads to
// the end. ok is false when nothing is left to read.
func (o *object) span(off, length int64) (first, last int64, ok bool) {
	if off < 0 || off >= o.size || length == 0 {
		return 0, 0, false
	}
	last = o.size - 1
	if length > 0 && off+length-1 < last {
		last = off + length - 1
	}
	return off, last, true
}

func (o *object) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	first, last, ok := o.span(off, length)
	if !ok {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	var opts minio.GetObjectOptions
	if err := opts.SetMatchETag(o.etag); err != nil {
		return nil, err
	}
	if err := opts.SetRange(first, last); err != nil {
		return nil, err
	}
	return o.store.client.GetObject(ctx, o.store.bucket, o.key, opts)
}

func (o *object) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= o.size {
		return 0, io.EOF
	}
	rc, err := o.ReadRange(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	n, err := io.ReadFull(rc, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

// upload is a streaming PutObject fed through a pipe.
type upload struct {
	pw       *io.PipeWriter
	done     chan error
	finished atomic.Bool
}

func (u *upload) Write(p []byte) (int, error) { return u.pw.Write(p) }

func (u *upload) Sync() error { return nil }

func (u *upload) Close() error {
	if !u.finished.CompareAndSwap(false, true) {
		return errors.New("minio: upload already finished")
	}
	if err := u.pw.Close(); err != nil {
		return err
	}
	return <-u.done
}

// Abort fails the pipe so PutObject returns without completing the object,
// then waits for it.
func (u *upload) Abort() error {
	if !u.finished.CompareAndSwap(false, true) {
		return nil
	}
	_ = u.pw.CloseWithError(ErrAborted)
	<-u.done
	return nil
}
