package features

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Capability identifies one of the five feature computations.
type Capability uint8

const (
	Primitive Capability = iota
	Compute
	Pattern
	Ngram
	PartialNgram
)

// NumCapabilities is the number of capabilities.
const NumCapabilities = 5

// AllCapabilities lists every capability in resolution order.
var AllCapabilities = [NumCapabilities]Capability{Primitive, Compute, Pattern, Ngram, PartialNgram}

func (c Capability) String() string {
	switch c {
	case Primitive:
		return "primitive"
	case Compute:
		return "compute"
	case Pattern:
		return "pattern"
	case Ngram:
		return "ngram"
	case PartialNgram:
		return "partial-ngram"
	default:
		return fmt.Sprintf("Capability(%d)", uint8(c))
	}
}

// ParseCapability parses the String form of a capability.
func ParseCapability(s string) (Capability, error) {
	for _, c := range AllCapabilities {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("features: unknown capability %q", s)
}

// CapabilitySet returns a bit set with the given capabilities.
func CapabilitySet(caps ...Capability) *bitset.BitSet {
	bs := bitset.New(NumCapabilities)
	for _, c := range caps {
		bs.Set(uint(c))
	}
	return bs
}

// CapabilityList returns the capabilities contained in bs in ascending order.
func CapabilityList(bs *bitset.BitSet) []Capability {
	if bs == nil {
		return nil
	}
	var caps []Capability
	for i, ok := bs.NextSet(0); ok && i < NumCapabilities; i, ok = bs.NextSet(i + 1) {
		caps = append(caps, Capability(i)) //nolint:gosec // bounded by NumCapabilities
	}
	return caps
}
