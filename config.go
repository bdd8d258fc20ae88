package ngramfeat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/ngramfeat/blobstore"
	miniostore "github.com/hupe1980/ngramfeat/blobstore/minio"
	s3store "github.com/hupe1980/ngramfeat/blobstore/s3"
)

// ErrInvalidConfig is returned for configuration files that cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the file form of an Engine's setup.
//
//	[model]
//	store = "local"
//	path  = "/var/lib/ngramfeat"
//	name  = "kyoto.ngfm"
//
//	[analysis]
//	beam_width  = 5
//	concurrency = 8
//
//	[resources]
//	memory_limit_bytes = 268435456
//
//	[logging]
//	level  = "info"
//	format = "text"
type Config struct {
	Model     ModelConfig    `toml:"model"`
	Analysis  AnalysisConfig `toml:"analysis"`
	Resources ResourceLimits `toml:"resources"`
	Logging   LoggingConfig  `toml:"logging"`
}

// ModelConfig locates the model blob.
type ModelConfig struct {
	// Store is one of "local", "minio" or "s3".
	Store string `toml:"store"`
	// Path is the root directory of a local store.
	Path string `toml:"path"`
	// Name is the blob name of the model.
	Name string `toml:"name"`

	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

// AnalysisConfig tunes the decoder.
type AnalysisConfig struct {
	BeamWidth      int `toml:"beam_width"`
	Concurrency    int `toml:"concurrency"`
	ArenaChunkSize int `toml:"arena_chunk_size"`
}

// LoggingConfig selects the log output.
type LoggingConfig struct {
	// Level is a slog level name: debug, info, warn or error.
	Level string `toml:"level"`
	// Format is "text", "json" or "none".
	Format string `toml:"format"`
}

// DefaultConfig returns the configuration used for missing keys.
func DefaultConfig() Config {
	return Config{
		Model:    ModelConfig{Store: "local", Path: "."},
		Analysis: AnalysisConfig{BeamWidth: 5},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a TOML configuration file on top of DefaultConfig.
// Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes cfg as TOML to w.
func SaveConfig(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks that cfg can build an Engine.
func (c *Config) Validate() error {
	switch c.Model.Store {
	case "local":
	case "minio", "s3":
		if c.Model.Bucket == "" {
			return fmt.Errorf("%w: %s store needs a bucket", ErrInvalidConfig, c.Model.Store)
		}
		if c.Model.Store == "minio" && c.Model.Endpoint == "" {
			return fmt.Errorf("%w: minio store needs an endpoint", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Model.Store)
	}
	if c.Model.Name == "" {
		return fmt.Errorf("%w: model name is empty", ErrInvalidConfig)
	}
	if c.Analysis.BeamWidth < 0 || c.Analysis.Concurrency < 0 || c.Analysis.ArenaChunkSize < 0 {
		return fmt.Errorf("%w: negative analysis setting", ErrInvalidConfig)
	}
	if _, err := c.logLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json", "none":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

func (c *Config) logLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return level, nil
}

// Options converts cfg into Engine options.
func (c *Config) Options() ([]Option, error) {
	level, err := c.logLevel()
	if err != nil {
		return nil, err
	}

	var logger *Logger
	switch c.Logging.Format {
	case "json":
		logger = NewJSONLogger(level)
	case "none":
		logger = NoopLogger()
	default:
		logger = NewTextLogger(level)
	}

	return []Option{
		WithLogger(logger),
		WithBeamWidth(c.Analysis.BeamWidth),
		WithConcurrency(c.Analysis.Concurrency),
		WithArenaChunkSize(c.Analysis.ArenaChunkSize),
		WithResourceLimits(c.Resources),
	}, nil
}

// Store builds the blob store the model lives in.
func (c *Config) Store(ctx context.Context) (blobstore.BlobStore, error) {
	m := c.Model
	switch m.Store {
	case "local":
		return blobstore.NewLocalStore(m.Path), nil
	case "minio":
		client, err := minio.New(m.Endpoint, &minio.Options{
			Creds:  miniocreds.NewStaticV4(m.AccessKey, m.SecretKey, ""),
			Secure: m.UseSSL,
			Region: m.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, m.Bucket, m.Prefix), nil
	case "s3":
		var loadOpts []func(*awsconfig.LoadOptions) error
		if m.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(m.Region))
		}
		if m.AccessKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(m.AccessKey, m.SecretKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if m.Endpoint != "" {
				o.BaseEndpoint = aws.String(m.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3store.NewStore(client, m.Bucket, m.Prefix), nil
	default:
		return nil, fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, m.Store)
	}
}

// OpenConfig builds an Engine from cfg. Extra options are applied after the
// ones derived from cfg.
func OpenConfig(ctx context.Context, cfg *Config, optFns ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	store, err := cfg.Store(ctx)
	if err != nil {
		return nil, err
	}
	return Open(ctx, store, cfg.Model.Name, append(opts, optFns...)...)
}

// LoadConfigFile is LoadConfig followed by OpenConfig.
func LoadConfigFile(ctx context.Context, path string, optFns ...Option) (*Engine, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return OpenConfig(ctx, cfg, optFns...)
}
