package session

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	dcgm "github.com/Shreyas-G-nutanix/go-dcgm"
	"github.com/Shreyas-G-nutanix/go-dcgm/errors"
	"github.com/Shreyas-G-nutanix/go-dcgm/native"
)

// DefaultConnectTimeoutMs bounds standalone connection establishment.
const DefaultConnectTimeoutMs = 3_000_000

// Session owns one connection handle to a DCGM host engine. The handle
// is valid from a successful New until Close; the mode chosen at
// construction drives exactly one matching teardown sequence.
type Session struct {
	lib    native.Interface
	mode   dcgm.Mode
	handle native.Handle
	closed bool
}

// New initializes the native library and establishes a connection in
// the given mode.
//
// For ModeStandalone, args carries the connection arguments:
//
//	args[0]  address, host:port or a unix socket path
//	args[1]  whether the address is a unix socket path ("0"/"1"/"true"/"false")
//	args[2]  optional: whether the host engine keeps this client's state
//	         after disconnect
//
// ModeEmbedded takes no arguments and starts an in-process host engine
// in automatic operation mode. ModeStartHostengine is not implemented.
//
// Argument validation happens before any native call. If the connect
// step fails after a successful initialize, the library is shut down
// again before the error is returned.
func New(lib native.Interface, mode dcgm.Mode, args []string) (*Session, error) {
	if lib == nil {
		return nil, errors.InvalidArgument(errors.PhaseInit, "nil native interface")
	}

	var (
		addr   string
		params native.ConnectParams
	)
	switch mode {
	case dcgm.ModeEmbedded:
	case dcgm.ModeStandalone:
		var err error
		addr, params, err = parseStandaloneArgs(args)
		if err != nil {
			return nil, err
		}
	case dcgm.ModeStartHostengine:
		return nil, errors.Unsupported(errors.PhaseConnect, "start-hostengine mode is not implemented")
	default:
		return nil, errors.InvalidArgument(errors.PhaseConnect, fmt.Sprintf("invalid mode %d", int(mode)))
	}

	s := &Session{lib: lib, mode: mode}
	if err := s.check(errors.PhaseInit, "dcgmInit", lib.Init()); err != nil {
		return nil, err
	}

	var err error
	switch mode {
	case dcgm.ModeEmbedded:
		err = s.startEmbedded()
	case dcgm.ModeStandalone:
		err = s.connectStandalone(addr, params)
	}
	if err != nil {
		// The library was initialized; release it so a failed
		// construction leaves no state behind.
		if st := lib.Shutdown(); st != dcgm.StatusOK {
			native.Logger().Warn("shutdown after failed connect",
				zap.Int32("status", int32(st)))
		}
		return nil, err
	}

	native.Logger().Debug("session connected",
		zap.Stringer("mode", mode), zap.String("addr", addr))
	return s, nil
}

// Mode returns the connection mode fixed at construction.
func (s *Session) Mode() dcgm.Mode {
	return s.mode
}

// Close tears the session down with the sequence matching its mode:
// embedded sessions stop the in-process engine and shut the library
// down, standalone sessions disconnect and shut down. Close is
// idempotent; after the first call every operation fails with a
// not-connected error.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	handle := s.handle
	s.handle = 0

	var err error
	switch s.mode {
	case dcgm.ModeEmbedded:
		err = s.check(errors.PhaseShutdown, "dcgmStopEmbedded", s.lib.StopEmbedded(handle))
	case dcgm.ModeStandalone:
		err = s.check(errors.PhaseShutdown, "dcgmDisconnect", s.lib.Disconnect(handle))
	default:
		return errors.Unsupported(errors.PhaseShutdown, s.mode.String())
	}

	// The global shutdown runs even when the mode teardown failed, so
	// no exit path leaves the library initialized.
	shutErr := s.check(errors.PhaseShutdown, "dcgmShutdown", s.lib.Shutdown())
	if err != nil {
		return err
	}
	return shutErr
}

func (s *Session) startEmbedded() error {
	h, st := s.lib.StartEmbedded(native.OperationModeAuto)
	if err := s.check(errors.PhaseConnect, "dcgmStartEmbedded", st); err != nil {
		return err
	}
	s.handle = h
	return nil
}

func (s *Session) connectStandalone(addr string, params native.ConnectParams) error {
	h, st := s.lib.Connect(addr, params)
	if err := s.check(errors.PhaseConnect, "dcgmConnect_v2", st); err != nil {
		return err
	}
	s.handle = h
	return nil
}

func parseStandaloneArgs(args []string) (string, native.ConnectParams, error) {
	if len(args) < 2 {
		return "", native.ConnectParams{}, errors.InvalidArgument(errors.PhaseConnect,
			"standalone mode needs an address and a unix-socket flag")
	}
	if args[0] == "" {
		return "", native.ConnectParams{}, errors.InvalidArgument(errors.PhaseConnect,
			"empty address")
	}

	params := native.ConnectParams{TimeoutMs: DefaultConnectTimeoutMs}

	isUnix, err := strconv.ParseBool(args[1])
	if err != nil {
		return "", native.ConnectParams{}, errors.New(errors.PhaseConnect, errors.KindInvalidArgument).
			Detail("unix-socket flag %q is not a boolean", args[1]).Cause(err).Build()
	}
	params.AddressIsUnixSocket = isUnix

	if len(args) >= 3 {
		persist, err := strconv.ParseBool(args[2])
		if err != nil {
			return "", native.ConnectParams{}, errors.New(errors.PhaseConnect, errors.KindInvalidArgument).
				Detail("persist flag %q is not a boolean", args[2]).Cause(err).Build()
		}
		params.PersistAfterDisconnect = persist
	}

	return args[0], params, nil
}

// ensureOpen guards every operation against use after Close.
func (s *Session) ensureOpen(phase errors.Phase) error {
	if s.closed {
		return errors.NotConnected(phase)
	}
	return nil
}

// check translates a native status into an error, asking the library
// for its message and falling back to a synthetic one when the library
// has none.
func (s *Session) check(phase errors.Phase, op string, st dcgm.Status) error {
	if st == dcgm.StatusOK {
		return nil
	}
	msg := s.lib.ErrorString(st)
	if msg == "" {
		msg = fmt.Sprintf("unknown error %d", st)
	}
	return errors.Native(phase, op, int32(st), msg)
}
