package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "native status",
			err: &Error{
				Phase:  PhaseConnect,
				Kind:   KindNativeStatus,
				Op:     "dcgmConnect_v2",
				Status: -20,
				Detail: "Host engine connection invalid/disconnected",
			},
			contains: []string{"[connect]", "native_status", "dcgmConnect_v2", "status -20", "invalid/disconnected"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseQuery,
				Kind:  KindNotConnected,
			},
			contains: []string{"[query]", "not_connected"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindLibraryLoad,
				Detail: "cannot load libdcgm.so.4",
				Cause:  errors.New("no such file"),
			},
			contains: []string{"[load]", "library_load", "libdcgm.so.4", "caused by", "no such file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_NoStatusSuffixForLocalErrors(t *testing.T) {
	err := InvalidArgument(PhaseConnect, "missing address")
	if strings.Contains(err.Error(), "status") {
		t.Errorf("local validation error should not print a status code: %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindLibraryLoad,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := Native(PhaseQuery, "dcgmGetDeviceAttributes", -6, "not supported")

	if !errors.Is(err, &Error{Phase: PhaseQuery, Kind: KindNativeStatus}) {
		t.Error("expected match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseConnect, Kind: KindNativeStatus}) {
		t.Error("unexpected match across phases")
	}
	if errors.Is(err, &Error{Phase: PhaseQuery, Kind: KindInvalidArgument}) {
		t.Error("unexpected match across kinds")
	}
}

func TestError_As(t *testing.T) {
	var wrapped error = Native(PhaseWatch, "dcgmWatchFields", -16, "not watched")

	var e *Error
	if !errors.As(wrapped, &e) {
		t.Fatal("errors.As failed")
	}
	if e.Status != -16 {
		t.Errorf("Status = %d, want -16", e.Status)
	}
	if e.Op != "dcgmWatchFields" {
		t.Errorf("Op = %q, want dcgmWatchFields", e.Op)
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseTopology, KindOutOfRange).
		Detail("gpu id %d exceeds bitmask limit %d", 64, 63).
		Build()

	if err.Phase != PhaseTopology || err.Kind != KindOutOfRange {
		t.Errorf("unexpected tags: %v %v", err.Phase, err.Kind)
	}
	if !strings.Contains(err.Detail, "64") || !strings.Contains(err.Detail, "63") {
		t.Errorf("Detail not formatted: %q", err.Detail)
	}
}
