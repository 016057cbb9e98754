package editor

import (
	"github.td.teradata.com/sandbox/kilo/internal/terminal"
)

// RefreshScreen clears the screen and redraws every row. There is no damage tracking: each call
// repaints the whole screen and emits identical bytes for an unchanged state.
func (e *Editor) RefreshScreen() error {
	e.frame.WriteString(terminal.ClearScreen)
	e.frame.WriteString(terminal.Home)
	e.DrawRows()
	e.frame.WriteString(terminal.Home)
	return e.flush("refresh screen")
}

// DrawRows appends one marker per screen row. The last row gets no line break so the terminal
// does not scroll.
func (e *Editor) DrawRows() {
	for y := 0; y < e.screenRows; y++ {
		e.frame.WriteString(e.marker)
		if y < e.screenRows-1 {
			e.frame.WriteString("\r\n")
		}
	}
}
