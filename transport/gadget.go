// Package transport wraps the USB gadget HID endpoint character device
// (conventionally /dev/hidg0) the console reads full input reports from and
// writes output reports to.
package transport

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"switchbridge/internal/apperr"
	"switchbridge/internal/log"
)

// Gadget is the non-blocking read/write handle to the gadget endpoint.
// Installing the gadget's USB descriptors (configfs/functionfs) is an
// external collaborator; Gadget only talks to the resulting character
// device once it exists.
type Gadget struct {
	file *os.File
	fd   int
	raw  log.RawLogger
}

// Open opens path (typically /dev/hidg0) read-write and puts it into
// non-blocking mode, matching diov-go-joysticker's unix.SetNonblock use on
// its interrupt-transfer fd. raw receives a hex-dump of every report
// crossing the endpoint (SPEC_FULL.md section 2); pass log.NewRaw(nil) for
// no tracing.
func Open(path string, raw log.RawLogger) (*Gadget, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open gadget endpoint %s: %w", path, err)
	}
	fd := int(f.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		f.Close()
		return nil, fmt.Errorf("set nonblocking %s: %w", path, err)
	}
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	return &Gadget{file: f, fd: fd, raw: raw}, nil
}

// Fd returns the underlying file descriptor for readiness polling.
func (g *Gadget) Fd() int { return g.fd }

// Close releases the underlying file descriptor.
func (g *Gadget) Close() error { return g.file.Close() }

// ReadReport performs one non-blocking read of an output report. A returned
// EAGAIN/EWOULDBLOCK is reported as (0, nil): nothing was ready to read,
// not an error worth logging.
func (g *Gadget) ReadReport(buf []byte) (n int, err error) {
	n, err = unix.Read(g.fd, buf)
	if err == nil {
		if n > 0 && g.raw != nil {
			g.raw.Log(true, buf[:n])
		}
		return n, nil
	}
	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
		return 0, nil
	}
	return 0, classifyReadError(err)
}

// WriteReport performs one non-blocking write of a full-size input report.
func (g *Gadget) WriteReport(buf []byte) error {
	_, err := unix.Write(g.fd, buf)
	if err == nil {
		if g.raw != nil {
			g.raw.Log(false, buf)
		}
		return nil
	}
	return classifyWriteError(err)
}

// classifyWriteError mirrors the teacher's isClientDisconnect style
// (internal/server/usb/server.go): distinguish a transient condition the
// caller should just retry from a fatal one that ends the session.
func classifyWriteError(err error) error {
	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
		return fmt.Errorf("%w: %v", apperr.ErrTransientWrite, err)
	}
	if errors.Is(err, unix.EPIPE) || errors.Is(err, unix.ESHUTDOWN) || errors.Is(err, syscall.ECONNRESET) {
		return fmt.Errorf("gadget endpoint gone: %w: %v", apperr.ErrFatalIO, err)
	}
	return fmt.Errorf("write gadget endpoint: %w: %v", apperr.ErrFatalIO, err)
}

func classifyReadError(err error) error {
	if errors.Is(err, unix.EPIPE) || errors.Is(err, unix.ESHUTDOWN) || errors.Is(err, syscall.ECONNRESET) {
		return fmt.Errorf("gadget endpoint gone: %w: %v", apperr.ErrFatalIO, err)
	}
	return fmt.Errorf("read gadget endpoint: %w: %v", apperr.ErrFatalIO, err)
}
