// Package errors provides structured error types for the go-dcgm wrapper.
//
// Errors are categorized by Phase (where in the session lifecycle the error
// occurred) and Kind (error category). Errors produced by a non-success
// native status additionally carry the raw status code, so callers can
// dispatch on the code instead of matching message text.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConnect, errors.KindNativeStatus).
//		Op("dcgmConnect_v2").
//		Status(-20).
//		Detail("Host engine connection invalid/disconnected").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Native(errors.PhaseQuery, "dcgmGetAllSupportedDevices", code, msg)
//	err := errors.InvalidArgument(errors.PhaseConnect, "missing address")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
