// Package session provides the high-level, checked API over the native
// DCGM library: one connection handle per Session, a closed
// connect/teardown state machine keyed on the connection mode, and
// translation of every non-success native status into a structured
// error.
//
// A Session is created against an externally-owned native.Interface,
// usually the one returned by native.Load. It is a synchronous,
// single-goroutine object: every operation is a direct blocking foreign
// call, and nothing protects the handle from concurrent use.
//
//	lib, err := native.Load(native.DefaultLibraryPath)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sess, err := session.New(lib, dcgm.ModeStandalone, []string{"127.0.0.1:5555", "0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
package session
