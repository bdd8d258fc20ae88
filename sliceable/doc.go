// Package sliceable provides typed, bounds-described windows over flat storage.
//
// Views never allocate and never own their storage. A view is described by a
// backing slice, an offset and an element count (1-D) or a row count and a
// row stride (2-D):
//
//	storage := make([]uint64, 64)
//	rows := sliceable.New(storage, 4, 8) // 4 groups of 8 elements
//	rows.Row(2).Set(0, 42)
//
// # Bounds
//
// Construction checks that the requested extent fits the backing storage and
// panics otherwise. Element access relies on Go's slice bounds checks.
//
// # Lifetime
//
// A view must not be used after its backing storage is released. For views
// over arena memory this means the view must not escape the run that owns
// the arena. This is a caller precondition; the package does not track it.
package sliceable
