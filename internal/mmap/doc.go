// Package mmap provides memory mappings for model files and run arenas.
//
// Two kinds of mapping are supported:
//
//   - Open maps a model file read-only so it can be decoded without copying
//     it through a read buffer.
//   - MapAnon creates a private read-write anonymous mapping. Run arenas use
//     it for their chunks so feature buffers live off the Go heap and are
//     released in one call when the run ends.
//
// Unix uses mmap(2)/madvise(2); Windows uses MapViewOfFile and VirtualAlloc
// (Advise is a no-op there).
package mmap
