package sliceable

import "fmt"

// ArraySlice is a read-only 1-D window.
type ArraySlice[T any] struct {
	data []T
}

// MutableArraySlice is a read/write 1-D window.
type MutableArraySlice[T any] struct {
	data []T
}

// NewArraySlice returns a read-only window of size elements starting at offset.
func NewArraySlice[T any](storage []T, offset, size int) ArraySlice[T] {
	return ArraySlice[T]{data: window(storage, offset, size)}
}

// Of wraps a whole slice as a read-only window.
func Of[T any](data []T) ArraySlice[T] {
	return ArraySlice[T]{data: data[:len(data):len(data)]}
}

// NewMutableArraySlice returns a mutable window of size elements starting at offset.
func NewMutableArraySlice[T any](storage []T, offset, size int) MutableArraySlice[T] {
	return MutableArraySlice[T]{data: window(storage, offset, size)}
}

// MutableOf wraps a whole slice as a mutable window.
func MutableOf[T any](data []T) MutableArraySlice[T] {
	return MutableArraySlice[T]{data: data[:len(data):len(data)]}
}

func window[T any](storage []T, offset, size int) []T {
	if offset < 0 || size < 0 || offset+size > len(storage) {
		panic(fmt.Sprintf("sliceable: window [%d:%d] out of range for storage of %d", offset, offset+size, len(storage)))
	}
	end := offset + size
	return storage[offset:end:end]
}

// Len returns the number of elements in the window.
func (s ArraySlice[T]) Len() int { return len(s.data) }

// At returns the element at i.
func (s ArraySlice[T]) At(i int) T { return s.data[i] }

// Sub returns a read-only sub-window.
func (s ArraySlice[T]) Sub(offset, size int) ArraySlice[T] {
	return ArraySlice[T]{data: window(s.data, offset, size)}
}

// Len returns the number of elements in the window.
func (s MutableArraySlice[T]) Len() int { return len(s.data) }

// At returns the element at i.
func (s MutableArraySlice[T]) At(i int) T { return s.data[i] }

// Set stores v at i.
func (s MutableArraySlice[T]) Set(i int, v T) { s.data[i] = v }

// Ptr returns a pointer to the element at i.
func (s MutableArraySlice[T]) Ptr(i int) *T { return &s.data[i] }

// Data exposes the window as a plain slice.
func (s MutableArraySlice[T]) Data() []T { return s.data }

// Sub returns a mutable sub-window.
func (s MutableArraySlice[T]) Sub(offset, size int) MutableArraySlice[T] {
	return MutableArraySlice[T]{data: window(s.data, offset, size)}
}

// Const returns a read-only view of the same window.
func (s MutableArraySlice[T]) Const() ArraySlice[T] { return ArraySlice[T](s) }

// Sliceable is a mutable 2-D window: rows groups of cols elements each,
// stored row-major.
type Sliceable[T any] struct {
	data []T
	rows int
	cols int
}

// ConstSliceable is the read-only flavor of Sliceable.
type ConstSliceable[T any] struct {
	data []T
	rows int
	cols int
}

// New returns a rows × cols window over the front of storage.
func New[T any](storage []T, rows, cols int) Sliceable[T] {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("sliceable: negative shape %d×%d", rows, cols))
	}
	return Sliceable[T]{data: window(storage, 0, rows*cols), rows: rows, cols: cols}
}

// FromSlice builds a 2-D window over a mutable 1-D window.
func FromSlice[T any](s MutableArraySlice[T], rows, cols int) Sliceable[T] {
	return New(s.data, rows, cols)
}

// NewConst returns a read-only rows × cols window over the front of storage.
func NewConst[T any](storage []T, rows, cols int) ConstSliceable[T] {
	return New(storage, rows, cols).Const()
}

// Rows returns the number of groups.
func (s Sliceable[T]) Rows() int { return s.rows }

// Cols returns the number of elements per group.
func (s Sliceable[T]) Cols() int { return s.cols }

// Size returns rows × cols.
func (s Sliceable[T]) Size() int { return len(s.data) }

// Row returns group i.
func (s Sliceable[T]) Row(i int) MutableArraySlice[T] {
	off := i * s.cols
	return MutableArraySlice[T]{data: s.data[off : off+s.cols : off+s.cols]}
}

// At returns element c of group r.
func (s Sliceable[T]) At(r, c int) T { return s.data[r*s.cols+c] }

// Set stores v as element c of group r.
func (s Sliceable[T]) Set(r, c int, v T) { s.data[r*s.cols+c] = v }

// Data exposes the flat storage of the window.
func (s Sliceable[T]) Data() []T { return s.data }

// TopRows returns the first n groups.
func (s Sliceable[T]) TopRows(n int) Sliceable[T] {
	if n > s.rows {
		panic(fmt.Sprintf("sliceable: %d rows requested from %d", n, s.rows))
	}
	return Sliceable[T]{data: s.data[: n*s.cols : n*s.cols], rows: n, cols: s.cols}
}

// Const returns a read-only view of the same window.
func (s Sliceable[T]) Const() ConstSliceable[T] { return ConstSliceable[T](s) }

// Rows returns the number of groups.
func (s ConstSliceable[T]) Rows() int { return s.rows }

// Cols returns the number of elements per group.
func (s ConstSliceable[T]) Cols() int { return s.cols }

// Size returns rows × cols.
func (s ConstSliceable[T]) Size() int { return len(s.data) }

// Row returns group i.
func (s ConstSliceable[T]) Row(i int) ArraySlice[T] {
	off := i * s.cols
	return ArraySlice[T]{data: s.data[off : off+s.cols : off+s.cols]}
}

// At returns element c of group r.
func (s ConstSliceable[T]) At(r, c int) T { return s.data[r*s.cols+c] }

// TopRows returns the first n groups.
func (s ConstSliceable[T]) TopRows(n int) ConstSliceable[T] {
	if n > s.rows {
		panic(fmt.Sprintf("sliceable: %d rows requested from %d", n, s.rows))
	}
	return ConstSliceable[T]{data: s.data[: n*s.cols : n*s.cols], rows: n, cols: s.cols}
}
