//go:build !windows

package terminal

import (
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Mode owns the line discipline settings of one terminal. The original attributes are captured
// once, before anything is changed, and are put back by Restore.
type Mode struct {
	fd       uintptr
	timeout  uint8
	original unix.Termios
	enabled  bool
	restored bool
}

// CaptureMode reads the current attributes of fd. timeout is the raw-mode read timeout in
// deciseconds.
func CaptureMode(fd uintptr, timeout uint8) (*Mode, error) {
	m := &Mode{fd: fd, timeout: timeout}
	if err := termios.Tcgetattr(fd, &m.original); err != nil {
		return nil, newError("tcgetattr", ErrTerminalQuery, err)
	}
	return m, nil
}

// Enabled reports whether raw mode has been applied.
func (m *Mode) Enabled() bool {
	return m.enabled && !m.restored
}

// RawAttributes derives raw-mode attributes from attrs: no line buffering, echo, signal keys,
// flow control, CR translation, output processing or parity checking. Reads return after at
// most timeout deciseconds even when no byte arrived.
func RawAttributes(attrs unix.Termios, timeout uint8) unix.Termios {
	raw := attrs
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = timeout
	return raw
}

// EnableRaw switches the terminal into raw mode. Only the first call changes anything.
func (m *Mode) EnableRaw() error {
	if m.enabled {
		return nil
	}
	raw := RawAttributes(m.original, m.timeout)
	if err := termios.Tcsetattr(m.fd, termios.TCSAFLUSH, &raw); err != nil {
		return newError("tcsetattr", ErrTerminalSet, err)
	}
	m.enabled = true
	return nil
}

// Restore reapplies the captured attributes. It is a no-op when raw mode was never enabled or
// has already been restored.
func (m *Mode) Restore() error {
	if !m.enabled || m.restored {
		return nil
	}
	if err := termios.Tcsetattr(m.fd, termios.TCSAFLUSH, &m.original); err != nil {
		return newError("tcsetattr", ErrTerminalSet, err)
	}
	m.restored = true
	return nil
}
