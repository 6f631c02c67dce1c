package transport

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"switchbridge/internal/apperr"
	"switchbridge/internal/log"
)

// newPipeGadget wires a Gadget directly to one end of an os.Pipe, put into
// non-blocking mode the same way Open does, so ReadReport/WriteReport can be
// exercised without a real /dev/hidg0 character device.
func newPipeGadget(t *testing.T) (*Gadget, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	require.NoError(t, unix.SetNonblock(int(r.Fd()), true))
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return &Gadget{file: r, fd: int(r.Fd())}, w
}

func TestGadgetReadReportReturnsData(t *testing.T) {
	g, w := newPipeGadget(t)

	_, err := w.Write([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := g.ReadReport(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf[:n])
}

func TestGadgetReadReportNothingReadyIsNotAnError(t *testing.T) {
	g, _ := newPipeGadget(t)

	buf := make([]byte, 64)
	n, err := g.ReadReport(buf)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGadgetFd(t *testing.T) {
	g, _ := newPipeGadget(t)
	assert.Equal(t, g.fd, g.Fd())
}

func TestClassifyWriteErrorFatalIO(t *testing.T) {
	err := classifyWriteError(unix.EPIPE)
	assert.ErrorIs(t, err, apperr.ErrFatalIO)
}

func TestClassifyWriteErrorTransient(t *testing.T) {
	err := classifyWriteError(unix.EAGAIN)
	assert.ErrorIs(t, err, apperr.ErrTransientWrite)
}

func TestGadgetReadReportTracesToRawLogger(t *testing.T) {
	g, w := newPipeGadget(t)
	var trace strings.Builder
	g.raw = log.NewRaw(&trace)

	_, err := w.Write([]byte{0xAB, 0xCD})
	require.NoError(t, err)

	buf := make([]byte, 64)
	_, err = g.ReadReport(buf)
	require.NoError(t, err)

	assert.Contains(t, trace.String(), "host->device")
	assert.Contains(t, trace.String(), "ab cd")
}

func TestGadgetWriteReportTracesToRawLogger(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	require.NoError(t, unix.SetNonblock(int(w.Fd()), true))
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})

	var trace strings.Builder
	g := &Gadget{file: w, fd: int(w.Fd()), raw: log.NewRaw(&trace)}

	require.NoError(t, g.WriteReport([]byte{0x30, 0x01}))

	assert.Contains(t, trace.String(), "device->host")
	assert.Contains(t, trace.String(), "30 01")
}
