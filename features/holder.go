package features

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// ErrMissingCapability is wrapped by MissingCapabilityError.
var ErrMissingCapability = errors.New("missing feature capability")

// MissingCapabilityError names a required capability with no active implementation.
type MissingCapabilityError struct {
	Capability Capability
	// Cause explains why no dynamic implementation exists, if known.
	Cause error
}

func (e *MissingCapabilityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMissingCapability, e.Capability, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrMissingCapability, e.Capability)
}

func (e *MissingCapabilityError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrMissingCapability, e.Cause}
	}
	return []error{ErrMissingCapability}
}

// Selection tells which implementation of a slot is active.
type Selection uint8

const (
	SelectNone Selection = iota
	SelectStatic
	SelectDynamic
)

func (s Selection) String() string {
	switch s {
	case SelectNone:
		return "none"
	case SelectStatic:
		return "static"
	case SelectDynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("Selection(%d)", uint8(s))
	}
}

// Slot holds the implementations of one capability.
type Slot[T any] struct {
	Static  T
	Dynamic T
	Active  Selection
}

// Get returns the active implementation, or the zero value when none is.
func (s *Slot[T]) Get() T {
	switch s.Active {
	case SelectStatic:
		return s.Static
	case SelectDynamic:
		return s.Dynamic
	default:
		var zero T
		return zero
	}
}

func (s *Slot[T]) resolve(static, dynamic T, useStatic, haveStatic, haveDynamic bool) {
	s.Static, s.Dynamic = static, dynamic
	switch {
	case useStatic && haveStatic:
		s.Active = SelectStatic
	case haveDynamic:
		s.Active = SelectDynamic
	default:
		s.Active = SelectNone
	}
}

// Holder is the resolved feature set of a model. It is immutable after
// MakeFeatures and may be shared by concurrent runs.
type Holder struct {
	Primitive    Slot[PrimitiveApply]
	Compute      Slot[ComputeApply]
	Pattern      Slot[PatternApply]
	Ngram        Slot[NgramApply]
	PartialNgram Slot[PartialNgramApply]
}

// Selection returns the active selection of capability c.
func (h *Holder) Selection(c Capability) Selection {
	switch c {
	case Primitive:
		return h.Primitive.Active
	case Compute:
		return h.Compute.Active
	case Pattern:
		return h.Pattern.Active
	case Ngram:
		return h.Ngram.Active
	case PartialNgram:
		return h.PartialNgram.Active
	default:
		return SelectNone
	}
}

func (h *Holder) active(c Capability) bool {
	switch c {
	case Primitive:
		return h.Primitive.Get() != nil
	case Compute:
		return h.Compute.Get() != nil
	case Pattern:
		return h.Pattern.Get() != nil
	case Ngram:
		return h.Ngram.Get() != nil
	case PartialNgram:
		return h.PartialNgram.Get() != nil
	default:
		return false
	}
}

// Validate reports the first capability in required without an active
// implementation.
func (h *Holder) Validate(required *bitset.BitSet) error {
	for _, c := range CapabilityList(required) {
		if !h.active(c) {
			return &MissingCapabilityError{Capability: c}
		}
	}
	return nil
}
