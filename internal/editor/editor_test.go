package editor

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/hinshun/vt10x"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.td.teradata.com/sandbox/kilo/internal/config"
	"github.td.teradata.com/sandbox/kilo/internal/terminal"
	"golang.org/x/sys/unix"
)

// fakeDevice is a simulated terminal. Reads are served from a script of results, writes are
// recorded one call at a time.
type fakeDevice struct {
	size       terminal.Size
	sizeErr    error
	enableErr  error
	restoreErr error
	reads      []readResult
	writes     []string
	writeErr   error
	enabled    int
	restored   int
	raw        bool
}

type readResult struct {
	b   byte
	n   int
	err error
}

func key(b byte) readResult {
	return readResult{b: b, n: 1}
}

func keys(bs ...byte) []readResult {
	var rs []readResult
	for _, b := range bs {
		rs = append(rs, key(b))
	}
	return rs
}

func (f *fakeDevice) Read(p []byte) (int, error) {
	if len(f.reads) == 0 {
		return 0, io.EOF
	}
	r := f.reads[0]
	f.reads = f.reads[1:]
	if r.n > 0 {
		p[0] = r.b
	}
	return r.n, r.err
}

func (f *fakeDevice) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.writes = append(f.writes, string(p))
	return len(p), nil
}

func (f *fakeDevice) EnableRaw() error {
	if f.enableErr != nil {
		return f.enableErr
	}
	f.enabled++
	f.raw = true
	return nil
}

func (f *fakeDevice) Restore() error {
	if f.restoreErr != nil {
		return f.restoreErr
	}
	if f.raw {
		f.restored++
		f.raw = false
	}
	return nil
}

func (f *fakeDevice) Size() (terminal.Size, error) {
	return f.size, f.sizeErr
}

func (f *fakeDevice) output() string {
	return strings.Join(f.writes, "")
}

func newTestEditor(device Device) *Editor {
	return New(device, config.DefaultConfig().Editor, nil)
}

func expectedFrame(rows int) string {
	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")
	for y := 0; y < rows; y++ {
		b.WriteString("~")
		if y < rows-1 {
			b.WriteString("\r\n")
		}
	}
	b.WriteString("\x1b[H")
	return b.String()
}

func TestCtrlKey(t *testing.T) {
	assert.Equal(t, byte(0x11), CtrlKey('q'))
	assert.Equal(t, byte(0x11), CtrlKey('Q'))
	assert.Equal(t, QuitKey, CtrlKey('q'))
}

func TestRun_EndToEnd(t *testing.T) {
	device := &fakeDevice{
		size:  terminal.Size{Rows: 24, Cols: 80},
		reads: keys(QuitKey),
	}
	e := newTestEditor(device)

	require.NoError(t, e.Run())

	require.Len(t, device.writes, 2)
	frame := device.writes[0]
	assert.Equal(t, expectedFrame(24), frame)
	assert.True(t, strings.HasPrefix(frame, "\x1b[2J\x1b[H"))
	assert.True(t, strings.HasSuffix(frame, "~\x1b[H"))
	assert.Equal(t, 24, strings.Count(frame, "~"))
	assert.Equal(t, 23, strings.Count(frame, "~\r\n"))
	assert.Equal(t, "\x1b[2J\x1b[H", device.writes[1])

	assert.Equal(t, 24, e.screenRows)
	assert.Equal(t, 80, e.screenCols)
	assert.Equal(t, 1, device.enabled)
	assert.Equal(t, 1, device.restored)
}

func TestRun_RendersOnSimulatedTerminal(t *testing.T) {
	device := &fakeDevice{
		size:  terminal.Size{Rows: 24, Cols: 80},
		reads: keys('a', QuitKey),
	}
	vt := vt10x.New(vt10x.WithSize(80, 24))
	e := newTestEditor(device)

	require.NoError(t, e.Run())
	_, err := vt.Write([]byte(device.writes[0]))
	require.NoError(t, err)

	for y := 0; y < 24; y++ {
		assert.Equal(t, '~', vt.Cell(0, y).Char, "row %d", y)
		assert.Equal(t, ' ', vt.Cell(1, y).Char, "row %d", y)
	}
	cur := vt.Cursor()
	assert.Equal(t, 0, cur.X)
	assert.Equal(t, 0, cur.Y)
}

func TestRefreshScreen_Idempotent(t *testing.T) {
	device := &fakeDevice{}
	e := newTestEditor(device)
	e.screenRows, e.screenCols = 5, 20

	require.NoError(t, e.RefreshScreen())
	require.NoError(t, e.RefreshScreen())

	require.Len(t, device.writes, 2)
	assert.Equal(t, device.writes[0], device.writes[1])
	assert.Equal(t, expectedFrame(5), device.writes[0])
}

func TestDrawRows(t *testing.T) {
	tests := []struct {
		rows int
		want string
	}{
		{rows: 0, want: ""},
		{rows: 1, want: "~"},
		{rows: 3, want: "~\r\n~\r\n~"},
	}

	for _, tt := range tests {
		e := newTestEditor(&fakeDevice{})
		e.screenRows = tt.rows
		e.DrawRows()
		assert.Equal(t, tt.want, e.frame.String(), "rows=%d", tt.rows)
	}
}

func TestDrawRows_CustomMarker(t *testing.T) {
	e := New(&fakeDevice{}, &config.Editor{RowMarker: "·"}, nil)
	e.screenRows = 2

	e.DrawRows()

	assert.Equal(t, "·\r\n·", e.frame.String())
}

func TestProcessKeypress_OnlyQuitKeyStops(t *testing.T) {
	for c := 0; c < 256; c++ {
		device := &fakeDevice{reads: keys(byte(c))}
		e := newTestEditor(device)

		running, err := e.ProcessKeypress()
		require.NoError(t, err)

		if byte(c) == QuitKey {
			assert.False(t, running)
			assert.Equal(t, "\x1b[2J\x1b[H", device.output())
			continue
		}
		assert.True(t, running, "byte %#02x", c)
		assert.Empty(t, device.writes, "byte %#02x", c)
	}
}

func TestReadKey_RetriesTransientConditions(t *testing.T) {
	device := &fakeDevice{reads: []readResult{
		{n: 0},
		{n: 0, err: unix.EAGAIN},
		{n: 0, err: unix.EINTR},
		key('x'),
	}}
	e := newTestEditor(device)

	c, err := e.ReadKey()
	require.NoError(t, err)

	assert.Equal(t, byte('x'), c)
	assert.Empty(t, device.reads)
}

func TestReadKey_Failure(t *testing.T) {
	boom := errors.New("input/output error")
	device := &fakeDevice{reads: []readResult{{n: 0, err: boom}}}
	e := newTestEditor(device)

	_, err := e.ReadKey()

	assert.ErrorIs(t, err, terminal.ErrInputRead)
	assert.ErrorIs(t, err, boom)
}

func TestRun_EnableRawFailure(t *testing.T) {
	device := &fakeDevice{enableErr: &terminal.Error{Op: "tcgetattr", Kind: terminal.ErrTerminalQuery, Err: unix.ENOTTY}}

	err := newTestEditor(device).Run()

	assert.ErrorIs(t, err, terminal.ErrTerminalQuery)
	assert.Empty(t, device.writes)
	assert.Zero(t, device.restored)
}

func TestRun_FatalErrorsRestoreTerminal(t *testing.T) {
	tests := []struct {
		name   string
		device *fakeDevice
		kind   error
	}{
		{
			name: "geometry",
			device: &fakeDevice{sizeErr: &terminal.Error{
				Op: "detect size", Kind: terminal.ErrGeometryDetection, Err: errors.New("no reply"),
			}},
			kind: terminal.ErrGeometryDetection,
		},
		{
			name:   "input",
			device: &fakeDevice{size: terminal.Size{Rows: 2, Cols: 10}, reads: keys('a', 'b')},
			kind:   terminal.ErrInputRead,
		},
		{
			name:   "output",
			device: &fakeDevice{size: terminal.Size{Rows: 2, Cols: 10}, writeErr: unix.EIO},
			kind:   terminal.ErrOutputWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestEditor(tt.device).Run()

			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, 1, tt.device.enabled)
			assert.Equal(t, 1, tt.device.restored)
			assert.False(t, tt.device.raw)
		})
	}
}

func TestRun_PanicRestoresTerminal(t *testing.T) {
	device := &fakeDevice{size: terminal.Size{Rows: 1, Cols: 1}}
	e := newTestEditor(device)
	e.device = panickingReader{device}

	assert.Panics(t, func() { _ = e.Run() })
	assert.Equal(t, 1, device.restored)
}

type panickingReader struct {
	*fakeDevice
}

func (panickingReader) Read([]byte) (int, error) {
	panic("keyboard on fire")
}

func TestRun_IgnoresKeysUntilQuit(t *testing.T) {
	device := &fakeDevice{
		size:  terminal.Size{Rows: 3, Cols: 10},
		reads: keys('h', 'j', 0x1b, 0x03, QuitKey),
	}

	require.NoError(t, newTestEditor(device).Run())

	// one frame per key read, then the quit clear
	require.Len(t, device.writes, 6)
	for _, w := range device.writes[:5] {
		assert.Equal(t, expectedFrame(3), w)
	}
	assert.True(t, bytes.Equal([]byte("\x1b[2J\x1b[H"), []byte(device.writes[5])))
}

func TestRun_RestoreFailure(t *testing.T) {
	restoreErr := &terminal.Error{Op: "tcsetattr", Kind: terminal.ErrTerminalSet, Err: unix.EIO}

	device := &fakeDevice{size: terminal.Size{Rows: 1, Cols: 1}, reads: keys(QuitKey), restoreErr: restoreErr}
	err := newTestEditor(device).Run()
	assert.ErrorIs(t, err, terminal.ErrTerminalSet)

	// the failure that ended the run is the one reported
	device = &fakeDevice{sizeErr: &terminal.Error{Op: "detect size", Kind: terminal.ErrGeometryDetection}, restoreErr: restoreErr}
	err = newTestEditor(device).Run()
	assert.ErrorIs(t, err, terminal.ErrGeometryDetection)
	assert.NotErrorIs(t, err, terminal.ErrTerminalSet)
}
