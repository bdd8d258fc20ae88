// Package features implements feature computation for lattice scoring.
//
// Five capabilities make up a feature set:
//
//   - Primitive: copies raw dictionary and lattice values into a node row.
//   - Compute: derives further values from the primitive ones.
//   - Pattern: folds columns of a node row into 64-bit pattern keys.
//   - Ngram: evaluates n-gram feature ids over whole contexts.
//   - PartialNgram: evaluates the same ids incrementally, step by step, as a
//     decoder extends hypotheses one node at a time.
//
// Each capability has a dynamic implementation that interprets a
// spec.FeatureSpec at run time and may have a static one generated for a
// particular spec (see features/codegen). MakeFeatures resolves one active
// implementation per capability into a Holder: static when the factory's
// runtime hash matches the model, dynamic otherwise.
//
// # Incremental protocol
//
// A run allocates one FeatureBuffer with AllocateBuffers. For every lattice
// boundary the decoder calls ApplyUni and the step1 functions once on the
// batch of nodes starting there, then one step2 (and step3) call per beam
// context. Step1 returns a token; later steps panic when handed a token
// that a newer step1 has invalidated:
//
//	tok := p.ApplyBiStep1(buf, patterns)
//	for _, ctx := range beam {
//		p.ApplyBiStep2(buf, tok, ctx.Pattern, scorer, scores)
//	}
//
// Apply functions never fail and never allocate. Violated preconditions
// (stale tokens, batches over capacity, short result slices) panic.
package features
