// Package apperr defines the sentinel errors the CLI boundary checks with
// errors.Is to pick an exit code, following the teacher's habit of wrapping
// causes with fmt.Errorf("...: %w", err) rather than inventing custom error
// types per call site.
package apperr

import "errors"

var (
	// ErrTransientWrite marks a write to the gadget endpoint that failed
	// with EAGAIN/EWOULDBLOCK; the caller should retry on the next tick,
	// not tear down the session.
	ErrTransientWrite = errors.New("transient write failure, retry next tick")

	// ErrSourceDisconnected marks the Input Adapter's local event source
	// going away; the Protocol Engine falls back to the idle InputState and
	// keeps streaming rather than stopping.
	ErrSourceDisconnected = errors.New("input source disconnected")

	// ErrProtocolViolation marks a decoded output report that was
	// well-formed but made no sense in the engine's current phase (for
	// example a subcommand before a handshake command). Logged, not fatal.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrFatalIO marks a Transport failure that cannot be recovered from
	// without external intervention (ESHUTDOWN, unexpected close). Maps to
	// CLI exit code 1.
	ErrFatalIO = errors.New("fatal transport I/O error")

	// ErrConfigError marks an invalid CLI flag or config file value. Maps
	// to CLI exit code 2.
	ErrConfigError = errors.New("configuration error")
)
