// Package util provides small generic helpers over slices and the top-k
// partition primitive the decoder uses to prune its search frontier.
package util

import (
	"fmt"
	"slices"
)

// Contains reports whether v is present in s.
func Contains[T comparable](s []T, v T) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// CopyInsert appends every element of src to dst and returns the result.
func CopyInsert[T any](src []T, dst []T) []T {
	return append(dst, src...)
}

// CopyBuffer copies src into the front of dst.
// dst must be at least as long as src.
func CopyBuffer[T any](src []T, dst []T) {
	if len(dst) < len(src) {
		panic(fmt.Sprintf("util: copy of %d elements into buffer of %d", len(src), len(dst)))
	}
	copy(dst, src)
}

// Sort sorts s by less.
func Sort[T any](s []T, less func(a, b T) bool) {
	slices.SortFunc(s, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})
}

// Fill sets every element of s to v.
func Fill[T any](s []T, v T) {
	for i := range s {
		s[i] = v
	}
}
