// Command featuregen compiles the feature spec of a stored model into static
// Go implementations.
//
// Usage:
//
//	featuregen -store /var/lib/models -model kyoto.ngfm -pkg kyoto -o kyoto/features_gen.go
//
// The generated package exports Factory, which is passed to
// features.MakeFeatures (or ngramfeat.WithStaticFactory) when loading the
// same model.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"

	"github.com/hupe1980/ngramfeat/blobstore"
	"github.com/hupe1980/ngramfeat/features/codegen"
	"github.com/hupe1980/ngramfeat/model"
)

func main() {
	var (
		storeDir = flag.String("store", ".", "Directory of the local model store")
		name     = flag.String("model", "", "Model blob name inside the store")
		pkg      = flag.String("pkg", "", "Package name of the generated file")
		out      = flag.String("o", "-", "Output file, - for stdout")
		verbose  = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level, TimeFormat: time.Kitchen}))

	if *name == "" || *pkg == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -model NAME -pkg PACKAGE [options]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, *storeDir, *name, *pkg, *out); err != nil {
		logger.Error("featuregen failed", tint.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, storeDir, name, pkg, out string) error {
	m, err := model.Load(ctx, blobstore.NewLocalStore(storeDir), name)
	if err != nil {
		return err
	}
	logger.Debug("model loaded",
		"model", m.Name,
		"ngrams", len(m.Spec.Ngram),
		"hash", fmt.Sprintf("%016x", m.RuntimeHash()),
	)

	src, err := codegen.Generate(codegen.Config{Package: pkg, Spec: m.FeatureSpec(), Source: name})
	if err != nil {
		return err
	}

	if out == "-" {
		_, err = os.Stdout.Write(src)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(out, src, 0o644); err != nil { //nolint:gosec // generated source is world-readable
		return err
	}
	logger.Info("static features written", "file", out, "package", pkg, "bytes", len(src))
	return nil
}
