package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the session lifecycle the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // library loading
	PhaseInit     Phase = "init"     // library initialization
	PhaseConnect  Phase = "connect"  // connection establishment
	PhaseQuery    Phase = "query"    // device and value queries
	PhaseGroup    Phase = "group"    // entity and field grouping
	PhaseWatch    Phase = "watch"    // field watch registration
	PhaseTopology Phase = "topology" // topology queries and selection
	PhaseShutdown Phase = "shutdown" // teardown
)

// Kind categorizes the error
type Kind string

const (
	KindNativeStatus    Kind = "native_status"    // non-success status from the library
	KindInvalidArgument Kind = "invalid_argument" // local validation failure
	KindOutOfRange      Kind = "out_of_range"     // value exceeds a representable bound
	KindUnsupported     Kind = "unsupported"      // operation or mode not implemented
	KindNotConnected    Kind = "not_connected"    // session handle is no longer valid
	KindLibraryLoad     Kind = "library_load"     // library could not be loaded
	KindCorruptReply    Kind = "corrupt_reply"    // library reply violates its own bounds
)

// Error is the structured error type used throughout the wrapper. Status
// holds the raw native return code when Kind is KindNativeStatus; it is
// zero otherwise.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Status int32
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Kind == KindNativeStatus {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the native entry point involved
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Status sets the raw native return code
func (b *Builder) Status(status int32) *Builder {
	b.err.Status = status
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Native creates an error for a non-success status returned by the
// native entry point op. msg is the library's own translation of the
// status code.
func Native(phase Phase, op string, status int32, msg string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNativeStatus,
		Op:     op,
		Status: status,
		Detail: msg,
	}
}

// InvalidArgument creates a local validation error
func InvalidArgument(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Detail: detail,
	}
}

// OutOfRange creates an error for a value that exceeds a representable bound
func OutOfRange(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotConnected creates an error for an operation on a closed session
func NotConnected(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotConnected,
		Detail: "session is closed",
	}
}

// LibraryLoad creates an error for a failed library load
func LibraryLoad(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLibraryLoad,
		Detail: fmt.Sprintf("cannot load %s", path),
		Cause:  cause,
	}
}

// CorruptReply creates an error for a library reply that violates its
// own documented bounds
func CorruptReply(phase Phase, op, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCorruptReply,
		Op:     op,
		Detail: detail,
	}
}
