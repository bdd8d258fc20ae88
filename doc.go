// Package ngramfeat scores paths through morphological analysis lattices
// with n-gram feature templates.
//
// A model pairs a feature spec with a linear weight table. Opening it
// resolves the five feature capabilities (primitive, compute, pattern,
// n-gram and partial n-gram) to either generated static code or the
// dynamic interpreter, then decodes lattices with a beam search that
// accumulates n-gram scores incrementally.
//
// # Quick Start
//
//	ctx := context.Background()
//	e, _ := ngramfeat.Open(ctx, blobstore.NewLocalStore("./models"), "kyoto.ngfm")
//	defer e.Close()
//
//	res, _ := e.Analyze(ctx, lattice)
//	for _, ref := range res.Path {
//		node := lattice.Node(ref)
//		...
//	}
//
// # Static Features
//
// cmd/featuregen turns a model into Go source. Passing the generated
// factory with WithStaticFactory makes the engine use it for every
// capability it covers as long as its runtime hash matches the model:
//
//	e, _ := ngramfeat.Open(ctx, store, "kyoto.ngfm",
//		ngramfeat.WithStaticFactory(kyotofeat.Factory()))
//
// A mismatching factory is ignored with a warning and the dynamic
// implementations take over.
//
// # Configuration
//
// LoadConfig reads a TOML file selecting the model store (local
// directory, MinIO or S3), decoder settings, resource limits and
// logging. OpenConfig turns it into an Engine.
//
// # Resource Limits
//
// WithResourceLimits bounds the arena memory of concurrent analyses, the
// number of runs executing at once and model read throughput.
package ngramfeat
