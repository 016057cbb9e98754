package editor

import (
	"github.td.teradata.com/sandbox/kilo/internal/terminal"
)

// QuitKey ends the session.
var QuitKey = CtrlKey('q')

// CtrlKey returns the byte the terminal sends for k pressed together with Control.
func CtrlKey(k byte) byte {
	return k & 0x1f
}

// ReadKey waits for one byte. Reads that time out or would block are retried.
func (e *Editor) ReadKey() (byte, error) {
	b := make([]byte, 1)
	for {
		n, err := e.device.Read(b)
		if n == 1 {
			return b[0], nil
		}
		if err != nil && !terminal.Transient(err) {
			return 0, &terminal.Error{Op: "read", Kind: terminal.ErrInputRead, Err: err}
		}
	}
}

// ProcessKeypress reads one key and acts on it. It returns false once the editor should stop.
func (e *Editor) ProcessKeypress() (bool, error) {
	c, err := e.ReadKey()
	if err != nil {
		return false, err
	}

	switch c {
	case QuitKey:
		e.frame.WriteString(terminal.ClearScreen)
		e.frame.WriteString(terminal.Home)
		if err := e.flush("quit"); err != nil {
			return false, err
		}
		return false, nil
	default:
		e.log.Debugf("Unmapped key: [%#02x]", c)
	}
	return true, nil
}
