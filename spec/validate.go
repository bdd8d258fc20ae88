package spec

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec is wrapped by every ValidationError.
var ErrInvalidSpec = errors.New("invalid feature spec")

// ValidationError describes the first invalid template found.
type ValidationError struct {
	Section string
	Index   int
	Name    string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s[%d] %q: %s", ErrInvalidSpec, e.Section, e.Index, e.Name, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidSpec }

// Validate checks kinds, arities and index ranges of every template.
func (s *FeatureSpec) Validate() error {
	if s.NumEntryFields < 0 || s.NumProvided < 0 {
		return &ValidationError{Section: "spec", Reason: "negative field count"}
	}

	names := make(map[string]struct{})
	checkName := func(section string, i int, name string) error {
		if name == "" {
			return &ValidationError{Section: section, Index: i, Reason: "empty name"}
		}
		key := section + "/" + name
		if _, dup := names[key]; dup {
			return &ValidationError{Section: section, Index: i, Name: name, Reason: "duplicate name"}
		}
		names[key] = struct{}{}
		return nil
	}
	inRange := func(section string, i int, name string, inputs []int, limit int) error {
		for _, in := range inputs {
			if in < 0 || in >= limit {
				return &ValidationError{Section: section, Index: i, Name: name,
					Reason: fmt.Sprintf("input %d out of range [0,%d)", in, limit)}
			}
		}
		return nil
	}

	for i, d := range s.Primitive {
		if err := checkName("primitive", i, d.Name); err != nil {
			return err
		}
		var limit int
		switch d.Kind {
		case Copy:
			limit = s.NumEntryFields
		case Provided:
			limit = s.NumProvided
		default:
			return &ValidationError{Section: "primitive", Index: i, Name: d.Name, Reason: "unknown kind " + d.Kind.String()}
		}
		if err := inRange("primitive", i, d.Name, []int{d.Index}, limit); err != nil {
			return err
		}
	}

	for i, d := range s.Compute {
		if err := checkName("compute", i, d.Name); err != nil {
			return err
		}
		switch d.Kind {
		case Combine:
			if len(d.Inputs) == 0 {
				return &ValidationError{Section: "compute", Index: i, Name: d.Name, Reason: "combine needs inputs"}
			}
		case Match:
			if len(d.Inputs) != 1 || len(d.Values) == 0 {
				return &ValidationError{Section: "compute", Index: i, Name: d.Name, Reason: "match needs one input and values"}
			}
		default:
			return &ValidationError{Section: "compute", Index: i, Name: d.Name, Reason: "unknown kind " + d.Kind.String()}
		}
		if err := inRange("compute", i, d.Name, d.Inputs, len(s.Primitive)); err != nil {
			return err
		}
	}

	for i, d := range s.Pattern {
		if err := checkName("pattern", i, d.Name); err != nil {
			return err
		}
		if len(d.Inputs) == 0 {
			return &ValidationError{Section: "pattern", Index: i, Name: d.Name, Reason: "no inputs"}
		}
		if err := inRange("pattern", i, d.Name, d.Inputs, s.NumFeatures()); err != nil {
			return err
		}
	}

	for i, d := range s.Ngram {
		if err := checkName("ngram", i, d.Name); err != nil {
			return err
		}
		if d.Order() < 1 || d.Order() > MaxOrder {
			return &ValidationError{Section: "ngram", Index: i, Name: d.Name,
				Reason: fmt.Sprintf("order %d outside [1,%d]", d.Order(), MaxOrder)}
		}
		if err := inRange("ngram", i, d.Name, d.Inputs, len(s.Pattern)); err != nil {
			return err
		}
	}

	return nil
}
