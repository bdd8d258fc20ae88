// Package hash provides the hashing primitives of the feature engine.
//
// # Feature keys
//
// Feature keys are built by folding values into a 64-bit state with Mix:
//
//	k := hash.Mix(hash.Mix(hash.Seed(3), left), right)
//
// The fold is order dependent and deterministic across platforms. Every
// implementation of a feature capability (dynamic, generated or hand
// written) must fold in the same order so that incremental and
// whole-context evaluation produce identical keys.
//
// # Checksums
//
// Model files are protected with CRC32-Castagnoli, which Go's crc32 package
// accelerates in hardware where available:
//
//	checksum := hash.CRC32C(data)
package hash
