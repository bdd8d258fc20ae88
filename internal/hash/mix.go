package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// seedBase separates template seeds from raw feature values.
const seedBase = 0x9e3779b97f4a7c15

// Seed returns the initial fold state for the template with the given index.
func Seed(index int) uint64 {
	return Mix(seedBase, uint64(index)) //nolint:gosec // template indices are small and non-negative
}

// Mix folds value into state and returns the new state.
func Mix(state, value uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], state)
	binary.LittleEndian.PutUint64(buf[8:], value)
	return xxhash.Sum64(buf[:])
}

// Sum64 returns the xxhash of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}
