package termemu

import "io"

// ResponseProvider writes terminal responses (e.g., cursor position reports) back to the PTY.
// Typically an io.Writer connected to the PTY input.
type ResponseProvider = io.Writer

// NoopResponse discards all response data (useful when responses are not needed).
type NoopResponse struct{}

func (NoopResponse) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// --- Bell Provider ---

// BellProvider handles bell/beep events triggered by BEL (0x07) characters.
type BellProvider interface {
	// Ring is called when a bell character is received.
	Ring()
}

// NoopBell ignores all bell events.
type NoopBell struct{}

func (NoopBell) Ring() {}

// --- Title Provider ---

// TitleProvider handles window title changes (OSC 0, 2). Icon name changes
// (OSC 1) are not reported to it.
type TitleProvider interface {
	// SetTitle is called when the title changes.
	SetTitle(title string)
	// PushTitle saves the current title to the stack.
	PushTitle()
	// PopTitle restores the title from the stack.
	PopTitle()
}

// NoopTitle ignores all title operations.
type NoopTitle struct{}

func (NoopTitle) SetTitle(title string) {}
func (NoopTitle) PushTitle()            {}
func (NoopTitle) PopTitle()             {}

// Ensure implementations satisfy their interfaces
var _ ResponseProvider = NoopResponse{}

// ClipboardProvider handles clipboard read/write operations (OSC 52).
type ClipboardProvider interface {
	// Read returns content from the specified clipboard ('c' for clipboard, 'p' for primary selection).
	Read(clipboard byte) string
	// Write stores content to the specified clipboard.
	Write(clipboard byte, data []byte)
}

// ScrollbackProvider stores lines scrolled off the top of the primary buffer.
// Implementations can use in-memory storage, disk, database, etc.
type ScrollbackProvider interface {
	// Push appends a line to scrollback. Oldest lines should be removed if MaxLines is exceeded.
	Push(line []Cell)
	// Len returns the current number of stored lines.
	Len() int
	// Line returns the line at index, where 0 is the oldest line. Returns nil if out of range.
	Line(index int) []Cell
	// Clear removes all stored lines.
	Clear()
	// SetMaxLines sets the maximum capacity. Implementations should trim oldest lines if needed.
	SetMaxLines(max int)
	// MaxLines returns the current maximum capacity.
	MaxLines() int
}

// --- Clipboard Implementations ---

// NoopClipboard ignores all clipboard operations.
type NoopClipboard struct{}

func (NoopClipboard) Read(clipboard byte) string  { return "" }
func (NoopClipboard) Write(clipboard byte, data []byte) {}

// --- Scrollback Implementations ---

// NoopScrollback discards all scrollback lines (useful for alternate buffer which has no scrollback).
type NoopScrollback struct{}

func (NoopScrollback) Push(line []Cell)      {}
func (NoopScrollback) Len() int              { return 0 }
func (NoopScrollback) Line(index int) []Cell { return nil }
func (NoopScrollback) Clear()                {}
func (NoopScrollback) SetMaxLines(max int)   {}
func (NoopScrollback) MaxLines() int         { return 0 }

// --- Recording Provider ---

// RecordingProvider captures raw input bytes before ANSI parsing for replay or debugging.
type RecordingProvider interface {
	// Record appends raw bytes to the recording.
	Record(data []byte)
	// Data returns all captured bytes since the last Clear call.
	Data() []byte
	// Clear discards all recorded data.
	Clear()
}

// NoopRecording discards all input recordings.
type NoopRecording struct{}

func (NoopRecording) Record([]byte) {}
func (NoopRecording) Data() []byte  { return nil }
func (NoopRecording) Clear()        {}

// --- Tracer ---

// TraceRecord describes one recognized message.
type TraceRecord struct {
	Kind string // e.g. "csi", "esc", "osc", "dcs", "print", "c0"
	Raw  string // the raw bytes that produced this message
}

// Tracer is the trace hook interface. A Tracer set with WithTracer is stored
// on the terminal; the parser does not call it.
type Tracer interface {
	Trace(rec TraceRecord)
}

// NoopTracer discards all trace records.
type NoopTracer struct{}

func (NoopTracer) Trace(TraceRecord) {}

// --- Size Provider ---

// SizeProvider answers pixel-dimension queries (CSI t window manipulation,
// cell size reports) that a headless model has no opinion of on its own.
type SizeProvider interface {
	// CellSizePixels returns the rendered cell width and height in pixels.
	CellSizePixels() (width, height int)
}

// NoopSizeProvider reports a conservative fixed 10x20 pixel cell.
type NoopSizeProvider struct{}

func (NoopSizeProvider) CellSizePixels() (int, int) { return 10, 20 }

var _ SizeProvider = (*NoopSizeProvider)(nil)

// --- Working Directory Provider ---

// WorkingDirectoryProvider observes OSC 7 current-working-directory updates.
type WorkingDirectoryProvider interface {
	SetWorkingDirectory(uri string)
}

// NoopWorkingDirectory ignores working directory updates.
type NoopWorkingDirectory struct{}

func (NoopWorkingDirectory) SetWorkingDirectory(uri string) {}

// Ensure implementations satisfy their interfaces
var _ BellProvider = (*NoopBell)(nil)
var _ TitleProvider = (*NoopTitle)(nil)
var _ ClipboardProvider = (*NoopClipboard)(nil)
var _ ScrollbackProvider = (*NoopScrollback)(nil)
var _ RecordingProvider = (*NoopRecording)(nil)
var _ Tracer = (*NoopTracer)(nil)
var _ WorkingDirectoryProvider = (*NoopWorkingDirectory)(nil)
