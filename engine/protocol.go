// Package engine drives the Protocol Engine: the idle -> handshake ->
// streaming lifecycle described in spec.md section 4.4, bridging the
// Transport's gadget endpoint and a device/procontroller.Controller.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"

	"switchbridge/device/procontroller"
	"switchbridge/internal/apperr"
)

// Endpoint is the subset of transport.Gadget the engine depends on, kept as
// an interface so tests can drive it without a real /dev/hidg0 (SPEC_FULL.md
// section 8).
type Endpoint interface {
	Fd() int
	ReadReport(buf []byte) (int, error)
	WriteReport(buf []byte) error
}

// Source is the subset of inputsource.Adapter the engine depends on: it
// only needs to know the source is alive, not how events reach InputState
// (the Adapter owns that independently, writing into the same InputState
// the Controller encodes from).
type Source interface {
	// Alive reports whether the underlying EventSource is still connected.
	Alive() bool
	// Reset returns the owned InputState to Idle.
	Reset()
}

// Engine owns EngineState exclusively, per spec.md section 5's ownership
// invariant, and drives the handshake/streaming lifecycle.
type Engine struct {
	ep         Endpoint
	controller *procontroller.Controller
	source     Source
	log        *slog.Logger

	tick time.Duration
}

// New builds an Engine. tick is the pacing interval used while Streaming
// (spec.md's invariant: no gap larger than MaxStreamingGapMillis).
func New(ep Endpoint, controller *procontroller.Controller, source Source, tick time.Duration, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{ep: ep, controller: controller, source: source, log: log, tick: tick}
}

// Run drives the engine until ctx is cancelled or a fatal Transport error
// occurs. It returns apperr.ErrFatalIO-wrapped errors for the CLI boundary
// to map to exit code 1, and nil on a clean ctx cancellation.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	buf := make([]byte, procontroller.InputReportSize)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		waitMs := int(e.tick / time.Millisecond)
		ready, err := e.pollReadable(waitMs)
		if err != nil {
			return fmt.Errorf("poll gadget endpoint: %w", err)
		}

		if ready {
			if err := e.handleReadable(buf); err != nil {
				if errors.Is(err, apperr.ErrFatalIO) {
					return err
				}
				e.log.Warn("discarding malformed output report", "error", err)
			}
		}

		select {
		case <-ticker.C:
			if err := e.emitReport(); err != nil {
				if errors.Is(err, apperr.ErrFatalIO) {
					return err
				}
				e.log.Debug("transient write, retrying next tick", "error", err)
			}
		default:
		}
	}
}

func (e *Engine) pollReadable(timeoutMs int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(e.ep.Fd()), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, timeoutMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", apperr.ErrFatalIO, err)
	}
	if n == 0 {
		return false, nil
	}
	return fds[0].Revents&unix.POLLIN != 0, nil
}

func (e *Engine) handleReadable(buf []byte) error {
	n, err := e.ep.ReadReport(buf)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	if !e.source.Alive() {
		e.source.Reset()
	}

	usbCmd, isUSBCmd := e.controller.HandleOutput(buf[:n])
	if !isUSBCmd {
		return nil
	}
	return e.applyUSBCommand(usbCmd)
}

// applyUSBCommand advances Phase per spec.md section 4.4's USB-only
// handshake commands and writes the matching 0x81 status reply the console
// waits on before proceeding. Unrecognised commands are logged and ignored,
// not a protocol violation: the console may probe commands this emulation
// has no contract for (NFC/IR, firmware update) and expects silence, not an
// error.
func (e *Engine) applyUSBCommand(cmd byte) error {
	switch cmd {
	case procontroller.USBCmdStatusRequest:
		if e.controller.Engine.Phase == procontroller.PhaseAwaiting {
			e.controller.Engine.Phase = procontroller.PhaseHandshaking
		}
		return e.ep.WriteReport(e.usbStatusReply(cmd))
	case procontroller.USBCmdHandshake:
		e.controller.Engine.Phase = procontroller.PhaseHandshaking
		return e.ep.WriteReport(e.usbStatusReply(cmd))
	case procontroller.USBCmdSetBaud:
		return e.ep.WriteReport(e.usbStatusReply(cmd))
	case procontroller.USBCmdHIDOnly:
		e.controller.Engine.Phase = procontroller.PhaseStreaming
	case procontroller.USBCmdDisableUSBTimeout:
		// Acknowledged implicitly by the next report; no phase change.
	default:
		e.log.Debug("unhandled USB command", "cmd", fmt.Sprintf("0x%02x", cmd))
	}
	return nil
}

// usbStatusReply builds the fixed-size 0x81 status reply for one of the
// USB-only handshake commands (spec.md section 4.4 step 2): byte 0 is
// always 0x81, byte 1 echoes cmd, and for the status-request command
// (0x01) bytes 2-9 carry 0x00, 0x03, then the 6-byte MAC. Every other reply
// is zero-filled after the echoed command byte.
func (e *Engine) usbStatusReply(cmd byte) []byte {
	reply := make([]byte, procontroller.InputReportSize)
	reply[0] = procontroller.USBReplyStatus
	reply[1] = cmd
	if cmd == procontroller.USBCmdStatusRequest {
		reply[2] = 0x00
		reply[3] = 0x03
		copy(reply[4:10], e.controller.Engine.MAC[:])
	}
	return reply
}

// emitReport writes one report per tick once the console has begun the
// handshake; nothing is sent in PhaseAwaiting (no USB command observed yet)
// or PhaseSuspended.
func (e *Engine) emitReport() error {
	switch e.controller.Engine.Phase {
	case procontroller.PhaseAwaiting, procontroller.PhaseSuspended:
		return nil
	}
	return e.ep.WriteReport(e.controller.BuildReport())
}
