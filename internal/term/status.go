// Package term renders a single-line, terminal-width-aware status display
// for the running bridge (phase, timer, last subcommand ack), enabled with
// --status.
package term

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"switchbridge/device/procontroller"
)

// Status writes one self-overwriting status line to an output stream,
// truncating to the terminal width so it never wraps onto a second line.
type Status struct {
	out    io.Writer
	fd     int
	mu     sync.Mutex
	lastNL bool
}

// NewStatus builds a Status writing to w. fd is the file descriptor to
// query for terminal width (typically os.Stdout.Fd()); width falls back to
// 80 columns when fd is not a terminal (golang.org/x/term.GetSize returns
// an error for pipes and redirected output).
func NewStatus(w io.Writer, fd int) *Status {
	return &Status{out: w, fd: fd}
}

// Default builds a Status writing to stdout.
func Default() *Status {
	return NewStatus(os.Stdout, int(os.Stdout.Fd()))
}

// Line formats and writes one status update, carriage-returning over the
// previous line rather than scrolling.
func (s *Status) Line(phase procontroller.Phase, timer uint8, lastAck byte, lastSubcmd byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	width := s.width()
	line := fmt.Sprintf("switchbridge: phase=%s timer=%d last_ack=0x%02x last_subcmd=0x%02x",
		phase, timer, lastAck, lastSubcmd)
	if len(line) > width {
		line = line[:width]
	}
	pad := width - len(line)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(s.out, "\r%s%s", line, strings.Repeat(" ", pad))
}

// Done writes a trailing newline, called once on shutdown so the last
// status line isn't left dangling mid-terminal.
func (s *Status) Done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out)
}

func (s *Status) width() int {
	w, _, err := term.GetSize(s.fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
