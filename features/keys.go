package features

import "github.com/hupe1980/ngramfeat/internal/hash"

// Seed returns the initial key of template index.
func Seed(index int) uint64 { return hash.Seed(index) }

// Mix folds value into key.
func Mix(key, value uint64) uint64 { return hash.Mix(key, value) }

// ID truncates a key to a feature id.
func ID(key uint64) uint32 { return uint32(key) } //nolint:gosec // truncation is the id derivation
