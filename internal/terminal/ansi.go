// https://vt100.net/docs/vt100-ug/chapter3.html

package terminal

import (
	"fmt"
	"strconv"
)

const (
	Escape = '\x1b'

	ClearScreen = "\x1b[2J" // clears entire screen
	Home        = "\x1b[H"  // moves cursor to row 1 column 1

	Right = "\x1b[%dC" // n columns right
	Down  = "\x1b[%dB" // n rows down

	CursorReport = "\x1b[6n" // requests a cursor position report

	// ProbeDistance is far enough right and down to reach the bottom-right corner of any
	// plausible terminal. The terminal clamps the motion to its real edges.
	ProbeDistance = 999

	// ReportLimit bounds the bytes read while waiting for a cursor position report.
	ReportLimit = 32

	// ReportTerminator ends a cursor position report, ESC [ row ; col R.
	ReportTerminator = 'R'
)

// ProbeSequence moves the cursor n columns right and then n rows down.
func ProbeSequence(n int) string {
	return fmt.Sprintf(Right, n) + fmt.Sprintf(Down, n)
}

// cursorPosition renders the report a terminal sends for the given 1-based position.
func cursorPosition(row, col int) string {
	return "\x1b[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "R"
}
