// Package editor runs the read-render loop of the editor on top of a raw-mode terminal.
package editor

import (
	"bytes"
	"io"

	"github.td.teradata.com/sandbox/kilo/internal/config"
	"github.td.teradata.com/sandbox/kilo/internal/log"
	"github.td.teradata.com/sandbox/kilo/internal/terminal"
)

// Device is the terminal the editor draws on and reads keys from.
type Device interface {
	io.ReadWriter
	EnableRaw() error
	Restore() error
	Size() (terminal.Size, error)
}

// Editor holds the state of one editing session.
type Editor struct {
	device     Device
	screenRows int
	screenCols int
	marker     string
	frame      bytes.Buffer
	log        *log.CoreLogger
}

// New returns an editor drawing on device. The screen size is detected when Run starts.
func New(device Device, cfg *config.Editor, logger *log.CoreLogger) *Editor {
	if logger == nil {
		logger = log.New()
	}
	return &Editor{
		device: device,
		marker: cfg.RowMarker,
		log:    logger,
	}
}

// Run switches the device into raw mode, detects the screen size and then redraws the screen
// and handles one key at a time until the quit key is pressed. The device is restored before
// Run returns, whatever the outcome.
func (e *Editor) Run() (err error) {
	if err = e.device.EnableRaw(); err != nil {
		return err
	}
	defer func() {
		rerr := e.device.Restore()
		if rerr == nil {
			return
		}
		e.log.Errorf("Terminal restore failed: %v", rerr)
		if err == nil {
			err = rerr
		}
	}()

	if err = e.init(); err != nil {
		return err
	}

	loop := true
	for loop {
		if err = e.RefreshScreen(); err != nil {
			return err
		}
		if loop, err = e.ProcessKeypress(); err != nil {
			return err
		}
	}
	e.log.Info("Quit requested")
	return nil
}

func (e *Editor) init() error {
	size, err := e.device.Size()
	if err != nil {
		return err
	}
	e.screenRows = size.Rows
	e.screenCols = size.Cols
	e.log.Infof("Screen is %d rows by %d columns", e.screenRows, e.screenCols)
	return nil
}

// flush writes the pending frame with a single write.
func (e *Editor) flush(op string) error {
	defer e.frame.Reset()
	n, err := e.device.Write(e.frame.Bytes())
	if err == nil && n != e.frame.Len() {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &terminal.Error{Op: op, Kind: terminal.ErrOutputWrite, Err: err}
	}
	return nil
}
