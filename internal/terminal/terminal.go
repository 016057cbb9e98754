//go:build !windows

package terminal

import (
	"errors"
	"io"
	"os"

	"github.td.teradata.com/sandbox/kilo/internal/config"
	"github.td.teradata.com/sandbox/kilo/internal/log"
	"golang.org/x/sys/unix"
	xterm "golang.org/x/term"
)

// Terminal is the controlling terminal: input is read from in, output goes to out and raw mode
// is applied to in.
type Terminal struct {
	in       *os.File
	out      *os.File
	inFd     int
	outFd    int
	timeout  uint8
	mode     *Mode
	detector *Detector
	log      *log.CoreLogger
}

func New(in *os.File, out *os.File, cfg *config.Terminal, logger *log.CoreLogger) *Terminal {
	if logger == nil {
		logger = log.New()
	}
	t := &Terminal{
		in:      in,
		out:     out,
		inFd:    int(in.Fd()),
		outFd:   int(out.Fd()),
		timeout: uint8(cfg.ReadTimeout),
		log:     logger,
	}
	t.detector = NewDetector(t, t, t.winsize, logger,
		WithProbeDistance(cfg.ProbeDistance),
		WithReportLimit(cfg.ReportLimit),
	)
	return t
}

// EnableRaw captures the original attributes on first use and switches to raw mode.
func (t *Terminal) EnableRaw() error {
	if t.mode == nil {
		m, err := CaptureMode(t.in.Fd(), t.timeout)
		if err != nil {
			return err
		}
		t.mode = m
	}
	if err := t.mode.EnableRaw(); err != nil {
		return err
	}
	t.log.Debugf("Raw mode enabled on %s", t.in.Name())
	return nil
}

// Restore puts the original attributes back. Safe to call any number of times.
func (t *Terminal) Restore() error {
	if t.mode == nil || !t.mode.Enabled() {
		return nil
	}
	if err := t.mode.Restore(); err != nil {
		return err
	}
	t.log.Debugf("Terminal mode restored on %s", t.in.Name())
	return nil
}

// Size detects the terminal geometry.
func (t *Terminal) Size() (Size, error) {
	return t.detector.DetectSize()
}

func (t *Terminal) winsize() (int, int, error) {
	return xterm.GetSize(t.outFd)
}

// Read reads from the terminal without going through os.File, so that a raw-mode read timeout
// comes back as zero bytes and a nil error rather than io.EOF.
func (t *Terminal) Read(b []byte) (int, error) {
	n, err := unix.Read(t.inFd, b)
	if n < 0 {
		n = 0
	}
	if err != nil {
		return n, &os.PathError{Op: "read", Path: t.in.Name(), Err: err}
	}
	return n, nil
}

// Write writes b with a single system call. It returns a non-nil error when n != len(b).
func (t *Terminal) Write(b []byte) (int, error) {
	n, err := unix.Write(t.outFd, b)
	if n < 0 {
		n = 0
	}
	if err != nil {
		return n, &os.PathError{Op: "write", Path: t.out.Name(), Err: err}
	}
	if n != len(b) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Transient reports whether err only means that no input was ready yet.
func Transient(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR)
}
