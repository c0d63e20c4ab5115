// Package native is the leaf ABI layer over libdcgm. It declares the
// vendor entry points the session wrapper uses as a typed Go interface,
// and provides the dlopen-backed implementation on platforms that
// support it (linux with cgo).
//
// The function table, struct layouts, and status values are dictated by
// the installed native library and are treated as given: struct version
// tags (size in the low 24 bits, revision in the top byte) must match
// what the library expects exactly.
//
// Load performs the process-wide library load. It runs at most once; a
// failure is cached and replayed to every later caller, since a library
// that failed to load once will not appear mid-process.
//
// Everything above this package works against Interface, so tests and
// alternative transports can substitute their own implementation.
package native
