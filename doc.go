// Package dcgm provides a safety-oriented Go wrapper around the NVIDIA
// Data Center GPU Manager library (libdcgm). It exposes device discovery,
// entity grouping, field watching, and topology queries through a small
// connection-oriented session API.
//
// # Architecture Overview
//
// The library is organized into a few packages with distinct responsibilities:
//
//	dcgm/         Root package with the shared domain vocabulary: connection
//	              modes, entity groups, status codes, field values, and
//	              topology records
//	├── session/  High-level API: one connection handle per Session, checked
//	              operations, mode-dispatched connect and teardown
//	├── native/   Leaf ABI layer: the function table of libdcgm expressed as
//	              a Go interface, plus the dlopen-backed implementation
//	└── errors/   Structured error types carrying the raw native status code
//
// # Quick Start
//
// Connect to a running host engine and list supported GPUs:
//
//	lib, err := native.Load(native.DefaultLibraryPath)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sess, err := session.New(lib, dcgm.ModeStandalone, []string{"127.0.0.1:5555", "0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
//	gpus, err := sess.GetAllSupportedDevices()
//	fmt.Println(gpus)
//
// # Lifecycle
//
// A Session owns exactly one connection handle. The handle is invalid until
// New succeeds and invalid again after Close. The mode chosen at construction
// drives exactly one matching teardown sequence: embedded sessions stop the
// in-process engine and shut the library down; standalone sessions disconnect
// and shut down. Close is idempotent.
//
// # Thread Safety
//
// Sessions are synchronous, blocking, and single-goroutine objects: no
// internal locking protects the connection handle. The only shared state is
// the process-wide library load performed by native.Load, which is
// synchronized and happens at most once; a load failure is cached and
// replayed to every subsequent caller.
//
// # Errors
//
// Every non-success native status is translated to a structured error that
// keeps the raw status code alongside the message obtained from the
// library's own string lookup. Local validation failures (malformed
// arguments, out-of-range device ids, empty input lists) never reach the
// native library.
package dcgm
