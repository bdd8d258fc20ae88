// Package spec defines feature templates: the model-side description of
// which values a feature set reads and how they are combined into n-gram
// feature keys.
//
// A FeatureSpec is evaluated in four stages, one per batch capability:
//
//	entry fields, provided values
//	        │ Primitive (Copy / Provided)
//	        ▼
//	primitive values ──► Compute (Combine / Match)
//	        │
//	        ▼  row = [primitive..., compute...]
//	      Pattern  ──►  one 64-bit key per pattern and node
//	        │
//	        ▼
//	      Ngram    ──►  feature ids from the pattern keys of up to three
//	                   consecutive nodes
//
// The spec's content hash (Hash) identifies it: generated static feature
// code is only used for models whose spec hashes to the same value.
package spec
