package ngramfeat

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ngramfeat/blobstore"
	miniostore "github.com/hupe1980/ngramfeat/blobstore/minio"
	s3store "github.com/hupe1980/ngramfeat/blobstore/s3"
	"github.com/hupe1980/ngramfeat/model"
	"github.com/hupe1980/ngramfeat/testutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ngramfeat.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[model]
store = "local"
path = "/srv/models"
name = "kyoto.ngfm"

[analysis]
beam_width = 8
concurrency = 4

[resources]
memory_limit_bytes = 1048576
max_concurrent_runs = 2

[logging]
level = "debug"
format = "json"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/models", cfg.Model.Path)
	assert.Equal(t, "kyoto.ngfm", cfg.Model.Name)
	assert.Equal(t, 8, cfg.Analysis.BeamWidth)
	assert.Equal(t, 4, cfg.Analysis.Concurrency)
	assert.Equal(t, ResourceLimits{MemoryLimitBytes: 1 << 20, MaxConcurrentRuns: 2}, cfg.Resources)
	assert.Equal(t, LoggingConfig{Level: "debug", Format: "json"}, cfg.Logging)

	opts, err := cfg.Options()
	require.NoError(t, err)
	o := applyOptions(opts)
	assert.Equal(t, 8, o.beamWidth)
	assert.Equal(t, 4, o.concurrency)
	assert.Equal(t, cfg.Resources, o.limits)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[model]\nname = \"m.ngfm\"\n"))
	require.NoError(t, err)

	want := DefaultConfig()
	want.Model.Name = "m.ngfm"
	assert.Equal(t, &want, cfg)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[model\nname = 1"},
		{"unknown key", "[model]\nname = \"m\"\ncolour = \"blue\"\n"},
		{"missing name", "[model]\nstore = \"local\"\n"},
		{"unknown store", "[model]\nname = \"m\"\nstore = \"ftp\"\n"},
		{"s3 without bucket", "[model]\nname = \"m\"\nstore = \"s3\"\n"},
		{"minio without endpoint", "[model]\nname = \"m\"\nstore = \"minio\"\nbucket = \"b\"\n"},
		{"negative beam", "[model]\nname = \"m\"\n[analysis]\nbeam_width = -1\n"},
		{"bad level", "[model]\nname = \"m\"\n[logging]\nlevel = \"loud\"\n"},
		{"bad format", "[model]\nname = \"m\"\n[logging]\nformat = \"xml\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = ModelConfig{Store: "minio", Name: "m.ngfm", Bucket: "models", Endpoint: "localhost:9000"}
	cfg.Analysis.ArenaChunkSize = 1 << 16

	var buf bytes.Buffer
	require.NoError(t, SaveConfig(&buf, &cfg))

	loaded, err := LoadConfig(writeConfig(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, &cfg, loaded)
}

func TestConfig_Store(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Model.Path = t.TempDir()
		s, err := cfg.Store(ctx)
		require.NoError(t, err)
		assert.IsType(t, &blobstore.LocalStore{}, s)
	})

	t.Run("minio", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Model = ModelConfig{Store: "minio", Endpoint: "localhost:9000", Bucket: "models", AccessKey: "a", SecretKey: "b"}
		s, err := cfg.Store(ctx)
		require.NoError(t, err)
		assert.IsType(t, &miniostore.Store{}, s)
	})

	t.Run("s3", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
		t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
		t.Setenv("AWS_PROFILE", "")

		cfg := DefaultConfig()
		cfg.Model = ModelConfig{
			Store:     "s3",
			Bucket:    "models",
			Region:    "eu-central-1",
			Endpoint:  "http://localhost:4566",
			AccessKey: "a",
			SecretKey: "b",
		}
		s, err := cfg.Store(ctx)
		require.NoError(t, err)
		assert.IsType(t, &s3store.Store{}, s)
	})
}

func TestOpenConfig(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(11)
	fs := rng.Spec(testutil.DefaultSpecConfig)
	m, err := model.New("kyoto", fs, rng.Weights(8))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, model.Save(ctx, blobstore.NewLocalStore(dir), "kyoto.ngfm", m))

	cfg := DefaultConfig()
	cfg.Model.Path = dir
	cfg.Model.Name = "kyoto.ngfm"
	cfg.Logging.Format = "none"

	e, err := OpenConfig(ctx, &cfg)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, "kyoto", e.Model().Name)
	assert.Equal(t, DefaultConfig().Analysis.BeamWidth, e.analyzer.BeamWidth())

	cfg.Model.Name = "other.ngfm"
	_, err = OpenConfig(ctx, &cfg)
	assert.ErrorIs(t, err, ErrModelNotFound)
}
