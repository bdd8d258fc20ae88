package util

import "fmt"

// PartStep performs one Hoare-style partition pass of s around its middle
// element and returns the pivot's final index p.
//
// After the call every element of s[:p] is not greater than the pivot and
// every element of s[p+1:] is not less than it, so all elements strictly less
// than the pivot precede it. Runs of elements equal to the pivot are split
// between both sides, which keeps repeated passes balanced on ties.
func PartStep[T any](s []T, less func(a, b T) bool) int {
	n := len(s)
	if n <= 1 {
		return 0
	}

	mid := n / 2
	s[0], s[mid] = s[mid], s[0]
	pivot := s[0]

	i, j := 1, n-1
	for {
		for i <= j && less(s[i], pivot) {
			i++
		}
		for i <= j && less(pivot, s[j]) {
			j--
		}
		if i >= j {
			break
		}
		s[i], s[j] = s[j], s[i]
		i++
		j--
	}

	s[0], s[j] = s[j], s[0]
	return j
}

// Partition reorders s in place so that the minSize smallest elements under
// less occupy s[:minSize], and returns minSize.
//
// Neither side is sorted. Every element of s[:minSize] compares not greater
// than every element of s[minSize:]. The selection is a quickselect built on
// PartStep with a median-of-three pivot and runs in expected linear time.
//
// maxSize is the upper bound of an acceptable frontier; the split is always
// placed exactly at minSize. minSize == 0 is a no-op. Callers must clamp:
// minSize > maxSize or maxSize > len(s) panics.
func Partition[T any](s []T, less func(a, b T) bool, minSize, maxSize int) int {
	if minSize == 0 {
		return 0
	}
	if minSize < 0 || minSize > maxSize || maxSize > len(s) {
		panic(fmt.Sprintf("util: partition bounds min=%d max=%d len=%d", minSize, maxSize, len(s)))
	}
	if minSize == len(s) {
		return minSize
	}

	lo, hi := 0, len(s)
	for hi-lo > 1 {
		w := s[lo:hi]
		medianToMiddle(w, less)
		p := lo + PartStep(w, less)
		switch {
		case p == minSize:
			return minSize
		case p < minSize:
			lo = p + 1
		default:
			hi = p
		}
	}
	return minSize
}

// medianToMiddle moves the median of the first, middle and last elements of
// s into the middle slot, where PartStep takes its pivot from.
func medianToMiddle[T any](s []T, less func(a, b T) bool) {
	n := len(s)
	if n < 3 {
		return
	}
	a, b, c := 0, n/2, n-1
	if less(s[b], s[a]) {
		s[a], s[b] = s[b], s[a]
	}
	if less(s[c], s[b]) {
		s[b], s[c] = s[c], s[b]
		if less(s[b], s[a]) {
			s[a], s[b] = s[b], s[a]
		}
	}
}
