package terminal

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.td.teradata.com/sandbox/kilo/internal/log"
)

// Size is a terminal geometry in character cells.
type Size struct {
	Rows int
	Cols int
}

// WinsizeFunc asks the operating system for the window size.
type WinsizeFunc func() (cols int, rows int, err error)

// Detector finds the terminal size, first by asking the operating system and, when that fails,
// by pushing the cursor into the bottom-right corner and asking the terminal where it ended up.
type Detector struct {
	in       io.Reader
	out      io.Writer
	winsize  WinsizeFunc
	distance int
	limit    int
	log      *log.CoreLogger
}

// DetectorOption tunes a Detector.
type DetectorOption func(*Detector)

// WithProbeDistance sets how far the fallback probe moves the cursor.
func WithProbeDistance(n int) DetectorOption {
	return func(d *Detector) {
		d.distance = n
	}
}

// WithReportLimit bounds the cursor position report read.
func WithReportLimit(n int) DetectorOption {
	return func(d *Detector) {
		d.limit = n
	}
}

func NewDetector(in io.Reader, out io.Writer, winsize WinsizeFunc, logger *log.CoreLogger, options ...DetectorOption) *Detector {
	if logger == nil {
		logger = log.New()
	}
	d := &Detector{
		in:       in,
		out:      out,
		winsize:  winsize,
		distance: ProbeDistance,
		limit:    ReportLimit,
		log:      logger,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// DetectSize returns the terminal size. Zero columns from the operating system means the size
// is unknown, not that the terminal is empty.
func (d *Detector) DetectSize() (Size, error) {
	if d.winsize != nil {
		cols, rows, err := d.winsize()
		switch {
		case err != nil:
			d.log.Warnf("Window size query failed, probing cursor: %v", err)
		case cols <= 0:
			d.log.Infof("Window size reported %d columns, probing cursor", cols)
		default:
			d.log.Debugf("Window size %dx%d", cols, rows)
			return Size{Rows: rows, Cols: cols}, nil
		}
	}

	if err := d.write("probe", ProbeSequence(d.distance)); err != nil {
		return Size{}, newError("detect size", ErrGeometryDetection, err)
	}
	row, col, err := d.QueryCursorPosition()
	if err != nil {
		return Size{}, newError("detect size", ErrGeometryDetection, err)
	}
	d.log.Debugf("Cursor probe found %dx%d", col, row)
	return Size{Rows: row, Cols: col}, nil
}

// QueryCursorPosition asks the terminal for the cursor position and reads back its report.
// Reading stops at the terminator, at the first read that yields no byte, or when the bounded
// buffer is full.
func (d *Detector) QueryCursorPosition() (row int, col int, err error) {
	if err := d.write("cursor report", CursorReport); err != nil {
		return 0, 0, err
	}

	report := make([]byte, 0, d.limit)
	b := make([]byte, 1)
	for len(report) < d.limit-1 {
		if n, err := d.in.Read(b); n != 1 || err != nil {
			break
		}
		report = append(report, b[0])
		if b[0] == ReportTerminator {
			break
		}
	}
	return ParseCursorReport(report)
}

// ParseCursorReport parses ESC [ row ; col R. Both numbers must be positive decimals.
func ParseCursorReport(report []byte) (row int, col int, err error) {
	malformed := func(reason string) error {
		return newError("cursor position", ErrGeometryParse, fmt.Errorf("%s in %q", reason, report))
	}

	if len(report) < 2 || report[0] != Escape || report[1] != '[' {
		return 0, 0, malformed("missing ESC [ prefix")
	}
	if report[len(report)-1] != ReportTerminator {
		return 0, 0, malformed("missing terminator")
	}

	fields := bytes.Split(report[2:len(report)-1], []byte{';'})
	if len(fields) != 2 {
		return 0, 0, malformed("expected row;col")
	}
	if row, err = parseCoordinate(fields[0]); err != nil {
		return 0, 0, malformed("bad row")
	}
	if col, err = parseCoordinate(fields[1]); err != nil {
		return 0, 0, malformed("bad column")
	}
	return row, col, nil
}

func parseCoordinate(field []byte) (int, error) {
	if len(field) == 0 {
		return 0, strconv.ErrSyntax
	}
	for _, c := range field {
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	n, err := strconv.Atoi(string(field))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// write sends seq in one call. A short write is a failure.
func (d *Detector) write(op string, seq string) error {
	n, err := io.WriteString(d.out, seq)
	if err == nil && n != len(seq) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return newError(op, ErrOutputWrite, err)
	}
	return nil
}
