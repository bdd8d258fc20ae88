// Package analysis decodes a lattice of candidate nodes into its best path.
//
// The Analyzer runs a beam search over lattice boundaries. For each boundary
// it computes the pattern rows of the nodes starting there, caches the first
// n-gram step for the whole batch, and then extends every hypothesis of the
// beam with the second and third steps. The selected path is rescored with
// the batch n-gram capability.
//
// An Analyzer is safe for concurrent use; every run owns its arena and
// feature buffer.
package analysis
