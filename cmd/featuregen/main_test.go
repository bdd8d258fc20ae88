package main

import (
	"context"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ngramfeat/blobstore"
	"github.com/hupe1980/ngramfeat/model"
	"github.com/hupe1980/ngramfeat/testutil"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	rng := testutil.NewRNG(11)

	m, err := model.New("sample", rng.Spec(testutil.DefaultSpecConfig), rng.Weights(8))
	require.NoError(t, err)
	require.NoError(t, model.Save(ctx, blobstore.NewLocalStore(dir), "sample.ngfm", m))

	out := filepath.Join(t.TempDir(), "gen", "features_gen.go")
	logger := slog.New(slog.DiscardHandler)
	require.NoError(t, run(ctx, logger, dir, "sample.ngfm", "sample", out))

	src, err := os.ReadFile(out)
	require.NoError(t, err)
	f, err := parser.ParseFile(token.NewFileSet(), out, src, 0)
	require.NoError(t, err)
	assert.Equal(t, "sample", f.Name.Name)

	err = run(ctx, logger, dir, "missing.ngfm", "sample", out)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
