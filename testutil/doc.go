// Package testutil provides testing utilities for ngramfeat.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random feature specs, weights and
// lattices, and an independent reference scorer for checking decoders.
//
// # Random Inputs
//
//	rng := testutil.NewRNG(seed)
//	fs := rng.Spec(testutil.DefaultSpecConfig)
//	weights := rng.Weights(10)
//	lat := rng.Lattice(&fs, 6, 3, 2)
//
// # Ground Truth
//
//	best := testutil.BestPath(&fs, weights, lat)
package testutil
