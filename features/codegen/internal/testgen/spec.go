package testgen

import "github.com/hupe1980/ngramfeat/spec"

// Spec returns the feature spec features_gen.go was generated from.
// Regenerate after editing it.
func Spec() spec.FeatureSpec {
	return spec.FeatureSpec{
		NumEntryFields: 2,
		NumProvided:    1,
		Primitive: []spec.PrimitiveDef{
			{Name: "surface", Kind: spec.Copy, Index: 0},
			{Name: "pos", Kind: spec.Copy, Index: 1},
			{Name: "length", Kind: spec.Provided, Index: 0},
		},
		Compute: []spec.ComputeDef{
			{Name: "is_noun", Kind: spec.Match, Inputs: []int{1}, Values: []int64{1, 2}},
			{Name: "pos_length", Kind: spec.Combine, Inputs: []int{1, 2}},
		},
		Pattern: []spec.PatternDef{
			{Name: "p_surface", Inputs: []int{0}},
			{Name: "p_pos", Inputs: []int{1, 3}},
			{Name: "p_shape", Inputs: []int{4, 2}},
		},
		Ngram: []spec.NgramDef{
			{Name: "uni_surface", Inputs: []int{0}},
			{Name: "uni_pos", Inputs: []int{1}},
			{Name: "bi_pos", Inputs: []int{1, 1}},
			{Name: "bi_surface_pos", Inputs: []int{0, 1}},
			{Name: "tri_pos", Inputs: []int{1, 1, 1}},
			{Name: "tri_mixed", Inputs: []int{2, 0, 1}},
		},
	}
}
