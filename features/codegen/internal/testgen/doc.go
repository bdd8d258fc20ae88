// Package testgen holds static features generated from Spec. Tests compare
// them against the dynamic implementations and against fresh Generate output.
package testgen

//go:generate go run ./gen -o features_gen.go
