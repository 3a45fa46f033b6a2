package termemu

import (
	"image/color"
	"strings"
	"sync"
)

// TerminalMode is a bitmask of terminal behavior flags.
// Multiple modes can be active simultaneously.
type TerminalMode uint32

const (
	// ModeCursorKeys enables cursor key mode (DECCKM).
	ModeCursorKeys TerminalMode = 1 << iota
	// ModeColumnMode enables 132-column mode.
	ModeColumnMode
	// ModeInsert enables insert mode (characters shift right instead of overwrite).
	ModeInsert
	// ModeOrigin enables origin mode (cursor positioning relative to scroll region).
	ModeOrigin
	// ModeLineWrap enables automatic line wrapping at column boundaries.
	ModeLineWrap
	// ModeBlinkingCursor enables blinking cursor.
	ModeBlinkingCursor
	// ModeLineFeedNewLine makes line feed also move to column 0.
	ModeLineFeedNewLine
	// ModeShowCursor makes the cursor visible.
	ModeShowCursor
	// ModeReportMouseClicks enables mouse click reporting.
	ModeReportMouseClicks
	// ModeReportCellMouseMotion enables mouse motion reporting (cell-based).
	ModeReportCellMouseMotion
	// ModeReportAllMouseMotion enables reporting of all mouse motion events.
	ModeReportAllMouseMotion
	// ModeReportFocusInOut enables focus in/out event reporting.
	ModeReportFocusInOut
	// ModeUTF8Mouse enables UTF-8 mouse encoding.
	ModeUTF8Mouse
	// ModeSGRMouse enables SGR mouse encoding.
	ModeSGRMouse
	// ModeAlternateScroll enables alternate scroll mode.
	ModeAlternateScroll
	// ModeUrgencyHints enables urgency hints.
	ModeUrgencyHints
	// ModeSwapScreenAndSetRestoreCursor swaps to alternate screen and saves cursor.
	// When unset, restores primary screen and cursor position.
	ModeSwapScreenAndSetRestoreCursor
	// ModeBracketedPaste enables bracketed paste mode.
	ModeBracketedPaste
	// ModeKeypadApplication enables application keypad mode.
	ModeKeypadApplication
)

const (
	// DEFAULT_ROWS is the default number of terminal rows.
	DEFAULT_ROWS = 24
	// DEFAULT_COLS is the default number of terminal columns.
	DEFAULT_COLS = 80
)

// Wire-level mode identifiers accepted by SetMode/UnsetMode (CSI h / CSI l,
// ANSI and DEC private). Distinct from the TerminalMode bitmask values
// stored in Terminal.modes, which setModeLocked translates these into.
const (
	TerminalModeCursorKeys TerminalMode = iota + 1
	TerminalModeColumnMode
	TerminalModeInsert
	TerminalModeOrigin
	TerminalModeLineWrap
	TerminalModeBlinkingCursor
	TerminalModeLineFeedNewLine
	TerminalModeShowCursor
	TerminalModeReportMouseClicks
	TerminalModeReportCellMouseMotion
	TerminalModeReportAllMouseMotion
	TerminalModeReportFocusInOut
	TerminalModeUTF8Mouse
	TerminalModeSGRMouse
	TerminalModeAlternateScroll
	TerminalModeUrgencyHints
	TerminalModeSwapScreenAndSetRestoreCursor
	TerminalModeBracketedPaste
)

// Selection defines a text region in the terminal, covering cells in reading
// order from Start to End.
// Start and End are normalized so Start is always before or equal to End.
type Selection struct {
	Start  Position
	End    Position
	Active bool
}

// Terminal emulates a VT220-compatible terminal without a display.
// It maintains two buffers: primary (with scrollback) and alternate (no scrollback).
// The active buffer switches when entering/exiting alternate screen mode.
// All operations are thread-safe via internal locking.
type Terminal struct {
	mu sync.RWMutex

	// Dimensions
	rows int
	cols int

	// Buffers
	primaryBuffer   *Buffer
	alternateBuffer *Buffer
	activeBuffer    *Buffer

	// Cursor
	cursor      *Cursor
	savedCursor *SavedCursor

	// Current cell attributes
	template CellTemplate

	// Charsets: G0-G3 designation slots, which of GL/GR each is invoked into,
	// and whether incoming bytes are interpreted as UTF-8.
	charsets      [4]Charset
	activeCharset int
	glCharset     CharsetIndex
	grCharset     CharsetIndex
	utf8Mode      bool

	// DECSCA protection: newly written cells are marked protected from
	// DECSED/DECSEL when this is set.
	protectMode bool

	// Scrolling region
	scrollTop    int
	scrollBottom int

	// Modes
	modes TerminalMode

	// Title and icon name, each with a bounded undo stack (XTWINOPS 22/23).
	title     string
	iconName  string
	titleStack    []titleStackEntry
	maxTitleStack int

	// XTSAVE/XTRESTORE: per-mode on/off stacks (CSI ? Pm s / CSI ? Pm r).
	modeStacks map[TerminalMode][]bool

	// Colors
	colors map[int]color.Color

	// Hyperlink
	currentHyperlink *Hyperlink

	// Keyboard mode
	keyboardModes   []KeyboardMode
	modifyOtherKeys ModifyOtherKeys

	// Byte-stream parser driving this terminal as its handler
	parser *Parser

	// Trace hook set by WithTracer. The parser does not call it.
	tracer Tracer

	// Selection
	selection Selection

	// Scrollback provider
	scrollbackStorage ScrollbackProvider

	// Middleware for handler interception
	middleware *Middleware

	// Providers for external data/actions
	responseProvider  ResponseProvider
	bellProvider      BellProvider
	titleProvider     TitleProvider
	clipboardProvider ClipboardProvider

	// AutoResize mode: terminal grows instead of scrolling/wrapping
	autoResize bool

	// Recording provider for capturing raw input
	recordingProvider RecordingProvider

	// Shell integration
	shellIntegrationProvider ShellIntegrationProvider
	promptMarks              []PromptMark

	// Working directory (OSC 7)
	workingDir               string
	workingDirectoryProvider WorkingDirectoryProvider

	// Size provider for pixel-level queries
	sizeProvider SizeProvider
}

// titleStackEntry pairs a pushed title with the icon name active at push time,
// matching the xterm XTWINOPS 22/23 push/pop-both-or-either semantics.
type titleStackEntry struct {
	title    string
	iconName string
}

// Option configures a Terminal during construction.
type Option func(*Terminal)

// WithSize sets the terminal dimensions.
// Values <= 0 are replaced with defaults (24x80).
func WithSize(rows, cols int) Option {
  if rows <= 0 {
    rows = DEFAULT_ROWS
  }

  if cols <= 0 {
    cols = DEFAULT_COLS
  }

	return func(t *Terminal) {
		t.rows = rows
		t.cols = cols
	}
}

// WithResponse sets the writer for terminal responses (e.g., cursor position reports).
// If nil, responses are discarded.
func WithResponse(p ResponseProvider) Option {
	return func(t *Terminal) {
		t.responseProvider = p
	}
}

// WithBell sets the handler for bell/beep events.
// Defaults to a no-op if not set.
func WithBell(p BellProvider) Option {
	return func(t *Terminal) {
		t.bellProvider = p
	}
}

// WithTitle sets the handler for window title changes.
// Defaults to a no-op if not set.
func WithTitle(p TitleProvider) Option {
	return func(t *Terminal) {
		t.titleProvider = p
	}
}

// WithClipboard sets the handler for clipboard read/write operations (OSC 52).
// Defaults to a no-op if not set.
func WithClipboard(p ClipboardProvider) Option {
	return func(t *Terminal) {
		t.clipboardProvider = p
	}
}

// WithScrollback sets the storage for scrollback lines.
// Lines scrolled off the top are pushed here. Defaults to a no-op if not set.
func WithScrollback(storage ScrollbackProvider) Option {
	return func(t *Terminal) {
		t.scrollbackStorage = storage
	}
}

// WithMiddleware sets functions to intercept ANSI handler calls.
// Each middleware receives the original parameters and a next function to call the default implementation.
func WithMiddleware(mw *Middleware) Option {
	return func(t *Terminal) {
		if t.middleware == nil {
			t.middleware = &Middleware{}
		}
		t.middleware.Merge(mw)
	}
}

// WithAutoResize enables growth mode: the buffer expands instead of scrolling or wrapping.
// Useful for capturing complete output without truncation.
func WithAutoResize() Option {
	return func(t *Terminal) {
		t.autoResize = true
	}
}

// WithRecording sets the handler for capturing raw input bytes before ANSI parsing.
// Useful for replay, debugging, or regression testing.
func WithRecording(p RecordingProvider) Option {
	return func(t *Terminal) {
		t.recordingProvider = p
	}
}

// WithShellIntegration sets the handler for shell integration events (OSC 133).
func WithShellIntegration(p ShellIntegrationProvider) Option {
	return func(t *Terminal) {
		t.shellIntegrationProvider = p
	}
}

// WithWorkingDirectory sets the observer for working directory changes (OSC 7).
func WithWorkingDirectory(p WorkingDirectoryProvider) Option {
	return func(t *Terminal) {
		t.workingDirectoryProvider = p
	}
}

// WithSizeProvider sets the provider for pixel dimension queries.
func WithSizeProvider(p SizeProvider) Option {
	return func(t *Terminal) {
		t.sizeProvider = p
	}
}

// WithTracer stores tr as the terminal's trace hook. The parser does not call
// it, so no trace records are emitted.
func WithTracer(tr Tracer) Option {
	return func(t *Terminal) {
		t.tracer = tr
	}
}

// WithUTF8Mode sets the initial UTF-8 decoding mode.
// Default is true.
func WithUTF8Mode(enabled bool) Option {
	return func(t *Terminal) {
		t.utf8Mode = enabled
	}
}

// New creates a terminal with the given options.
// Defaults to 24x80 with line wrap and cursor visible.
func New(opts ...Option) *Terminal {
	t := &Terminal{
		rows:              DEFAULT_ROWS,
		cols:              DEFAULT_COLS,
		colors:            make(map[int]color.Color),
		keyboardModes:     make([]KeyboardMode, 0),
		bellProvider:      NoopBell{},
		titleProvider:     NoopTitle{},
		clipboardProvider: NoopClipboard{},
		recordingProvider: NoopRecording{},
		maxTitleStack:     10,
		modeStacks:        make(map[TerminalMode][]bool),
		utf8Mode:          true,
		grCharset:         CharsetIndexG2,
	}

	for _, opt := range opts {
		opt(t)
	}

	// Create primary buffer with scrollback provider
	if t.scrollbackStorage == nil {
		t.scrollbackStorage = NoopScrollback{}
	}
	t.primaryBuffer = NewBufferWithStorage(t.rows, t.cols, t.scrollbackStorage)
	t.alternateBuffer = NewBuffer(t.rows, t.cols) // Alternate buffer has no scrollback
	t.activeBuffer = t.primaryBuffer

	t.cursor = NewCursor()
	t.template = NewCellTemplate()

	t.scrollTop = 0
	t.scrollBottom = t.rows

	t.modes = ModeLineWrap | ModeShowCursor

	t.parser = NewParser(t)

	return t
}

// Rows returns the terminal height in character rows.
func (t *Terminal) Rows() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}

// Cols returns the terminal width in character columns.
func (t *Terminal) Cols() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cols
}

// Cell returns the cell at (row, col) in the active buffer.
// Returns nil if coordinates are out of bounds.
func (t *Terminal) Cell(row, col int) *Cell {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer.Cell(row, col)
}

// HyperlinkAt returns the hyperlink (OSC 8) attached to the cell at (row, col)
// in the active buffer, or nil if there is none.
func (t *Terminal) HyperlinkAt(row, col int) *Hyperlink {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer.HyperlinkAt(row, col)
}

// HyperlinkSpan returns the contiguous column range on row sharing the
// hyperlink at (row, col), for highlighting the full extent of a link.
func (t *Terminal) HyperlinkSpan(row, col int) (start, end int, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer.HyperlinkSpan(row, col)
}

// CursorPos returns the current cursor position (0-based).
func (t *Terminal) CursorPos() (row, col int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cursor.Row, t.cursor.Col
}

// CursorVisible returns true if the cursor is currently visible.
func (t *Terminal) CursorVisible() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cursor.Visible
}

// CursorStyle returns the current cursor rendering style.
func (t *Terminal) CursorStyle() CursorStyle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cursor.Style
}

// Title returns the current window title string.
func (t *Terminal) Title() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.title
}

// HasMode returns true if the specified mode flag is enabled.
func (t *Terminal) HasMode(mode TerminalMode) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.modes&mode != 0
}

// IconName returns the current icon name string (OSC 1).
func (t *Terminal) IconName() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.iconName
}

// IsUTF8Mode returns whether incoming bytes are currently decoded as UTF-8.
func (t *Terminal) IsUTF8Mode() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.utf8Mode
}

// SetUTF8Mode toggles UTF-8 decoding of incoming bytes at runtime.
func (t *Terminal) SetUTF8Mode(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.utf8Mode = enabled
}

// CharacterSet returns the charset currently designated into the given G-slot.
func (t *Terminal) CharacterSet(index CharsetIndex) Charset {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.charsets[index]
}

// Resize changes the terminal dimensions and adjusts buffers accordingly.
// When shrinking rows, lines above cursor are moved to scrollback to preserve
// content near the cursor. Cursor position is clamped to the new bounds.
// Invalid dimensions (<= 0) are ignored.
func (t *Terminal) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	oldRows := t.rows

	// When shrinking rows on primary buffer, scroll lines to scrollback
	// to preserve content near cursor
	if rows < oldRows && t.activeBuffer == t.primaryBuffer {
		linesToScroll := oldRows - rows
		// Only scroll if cursor would be pushed off screen
		if t.cursor.Row >= rows {
			// Scroll up to keep cursor visible
			t.primaryBuffer.ScrollUp(0, oldRows, linesToScroll)
			t.cursor.Row -= linesToScroll
			if t.cursor.Row < 0 {
				t.cursor.Row = 0
			}
		}
	}

	t.rows = rows
	t.cols = cols
	t.primaryBuffer.Resize(rows, cols)
	t.alternateBuffer.Resize(rows, cols)

	// Clamp cursor to bounds
	if t.cursor.Row >= rows {
		t.cursor.Row = rows - 1
	}
	if t.cursor.Row < 0 {
		t.cursor.Row = 0
	}
	if t.cursor.Col >= cols {
		t.cursor.Col = cols - 1
	}
	if t.cursor.Col < 0 {
		t.cursor.Col = 0
	}

	// Adjust scroll region
	t.scrollTop = 0
	t.scrollBottom = rows
}

// Write processes raw bytes, parsing ANSI escape sequences and updating the terminal state.
// Implements io.Writer.
func (t *Terminal) Write(data []byte) (int, error) {
	t.recordingProvider.Record(data)
	t.parser.Push(data)
	return len(data), nil
}

// WriteString is a convenience method that converts the string to bytes and calls Write.
func (t *Terminal) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// clamp ensures the value is within the given range.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// effectiveRow returns the effective row considering origin mode.
func (t *Terminal) effectiveRow(row int) int {
	if t.modes&ModeOrigin != 0 {
		return row + t.scrollTop
	}
	return row
}

// scrollIfNeeded performs scrolling if cursor is outside scroll region.
// In autoResize mode, grows the buffer instead of scrolling.
func (t *Terminal) scrollIfNeeded() {
	if t.cursor.Row >= t.scrollBottom {
		if t.autoResize {
			// Grow the buffer instead of scrolling
			rowsToAdd := t.cursor.Row - t.scrollBottom + 1
			t.activeBuffer.GrowRows(rowsToAdd)
			t.rows = t.activeBuffer.Rows()
			t.scrollBottom = t.rows
		} else {
			linesToScroll := t.cursor.Row - t.scrollBottom + 1
			t.activeBuffer.ScrollUp(t.scrollTop, t.scrollBottom, linesToScroll)
			t.cursor.Row = t.scrollBottom - 1
		}
	} else if t.cursor.Row < t.scrollTop {
		linesToScroll := t.scrollTop - t.cursor.Row
		t.activeBuffer.ScrollDown(t.scrollTop, t.scrollBottom, linesToScroll)
		t.cursor.Row = t.scrollTop
	}
}

// SetResponseProvider sets the response provider at runtime.
func (t *Terminal) SetResponseProvider(p ResponseProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responseProvider = p
}

// ResponseProvider returns the current response provider.
func (t *Terminal) ResponseProvider() ResponseProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.responseProvider
}

// SetBellProvider sets the bell provider at runtime.
func (t *Terminal) SetBellProvider(p BellProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bellProvider = p
}

// BellProvider returns the current bell provider.
func (t *Terminal) BellProvider() BellProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bellProvider
}

// SetTitleProvider sets the title provider at runtime.
func (t *Terminal) SetTitleProvider(p TitleProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.titleProvider = p
}

// TitleProvider returns the current title provider.
func (t *Terminal) TitleProvider() TitleProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.titleProvider
}

// SetClipboardProvider sets the clipboard provider at runtime.
func (t *Terminal) SetClipboardProvider(c ClipboardProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clipboardProvider = c
}

// ClipboardProvider returns the current clipboard provider.
func (t *Terminal) ClipboardProvider() ClipboardProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.clipboardProvider
}

// SetMiddleware sets the middleware at runtime.
func (t *Terminal) SetMiddleware(mw *Middleware) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.middleware = mw
}

// Middleware returns the current middleware.
func (t *Terminal) Middleware() *Middleware {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.middleware
}

// writeResponse writes a response back via the response provider if set.
// Thread-safe: reads responseProvider with lock to avoid race conditions.
func (t *Terminal) writeResponse(data []byte) {
	t.mu.RLock()
	provider := t.responseProvider
	t.mu.RUnlock()

	if provider != nil {
		provider.Write(data)
	}
}

// writeResponseString writes a string response back via the writer if set.
func (t *Terminal) writeResponseString(s string) {
	t.writeResponse([]byte(s))
}

// --- Scrollback Methods ---

// ScrollbackLen returns the number of lines stored in scrollback (primary buffer only).
func (t *Terminal) ScrollbackLen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primaryBuffer.ScrollbackLen()
}

// ScrollbackLine returns a line from scrollback, where 0 is the oldest line.
// Returns nil if index is out of range.
func (t *Terminal) ScrollbackLine(index int) []Cell {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primaryBuffer.ScrollbackLine(index)
}

// ViewportRowToAbsolute converts a screen row to an absolute row (row 0 is the oldest scrollback line).
func (t *Terminal) ViewportRowToAbsolute(row int) int {
	return row + t.ScrollbackLen()
}

// AbsoluteRowToViewport converts an absolute row to a screen row, or returns -1
// if the row is in scrollback or below the screen.
func (t *Terminal) AbsoluteRowToViewport(absRow int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row := absRow - t.primaryBuffer.ScrollbackLen()
	if row < 0 || row >= t.rows {
		return -1
	}
	return row
}

// ClearScrollback removes all stored scrollback lines.
func (t *Terminal) ClearScrollback() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.primaryBuffer.ClearScrollback()
}

// SetMaxScrollback sets the maximum number of scrollback lines to retain.
// Older lines are automatically removed when the limit is exceeded.
func (t *Terminal) SetMaxScrollback(max int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.primaryBuffer.SetMaxScrollback(max)
}

// MaxScrollback returns the current maximum scrollback capacity.
func (t *Terminal) MaxScrollback() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primaryBuffer.MaxScrollback()
}

// SetScrollbackProvider replaces the scrollback storage implementation at runtime.
func (t *Terminal) SetScrollbackProvider(storage ScrollbackProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scrollbackStorage = storage
	t.primaryBuffer.SetScrollbackProvider(storage)
}

// ScrollbackProvider returns the current scrollback storage implementation.
func (t *Terminal) ScrollbackProvider() ScrollbackProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primaryBuffer.ScrollbackProvider()
}

// --- Dirty Tracking Methods ---

// HasDirty returns true if any cell in the active buffer was modified since the last ClearDirty call.
func (t *Terminal) HasDirty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer.HasDirty()
}

// DirtyCells returns positions of all cells modified since the last ClearDirty call.
func (t *Terminal) DirtyCells() []Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer.DirtyCells()
}

// ClearDirty marks all cells as clean, resetting the dirty tracking state.
func (t *Terminal) ClearDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeBuffer.ClearAllDirty()
}

// --- Selection Methods ---

// SetSelection sets the active text selection region.
// Start and end are automatically normalized so start is before or equal to end.
func (t *Terminal) SetSelection(start, end Position) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Normalize: ensure start is before end
	if end.Before(start) {
		start, end = end, start
	}

	t.selection = Selection{
		Start:  start,
		End:    end,
		Active: true,
	}
}

// ClearSelection deactivates the current selection.
func (t *Terminal) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.Active = false
}

// GetSelection returns the current selection state.
func (t *Terminal) GetSelection() Selection {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selection
}

// HasSelection returns true if a selection is currently active.
func (t *Terminal) HasSelection() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selection.Active
}

// IsSelected returns true if the cell at (row, col) is within the active selection.
func (t *Terminal) IsSelected(row, col int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.selection.Active {
		return false
	}

	pos := Position{Row: row, Col: col}
	start := t.selection.Start
	end := t.selection.End

	// Check if position is within selection range
	if pos.Before(start) {
		return false
	}
	if end.Before(pos) {
		return false
	}
	return true
}

// GetSelectedText extracts and returns the text content within the active selection.
// Empty cells are converted to spaces, and newlines separate rows.
func (t *Terminal) GetSelectedText() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.selection.Active {
		return ""
	}

	start := t.selection.Start
	end := t.selection.End

	var result []rune

	for row := start.Row; row <= end.Row && row < t.rows; row++ {
		startCol := 0
		endCol := t.cols

		if row == start.Row {
			startCol = start.Col
		}
		if row == end.Row {
			endCol = end.Col + 1
		}

		for col := startCol; col < endCol && col < t.cols; col++ {
			cell := t.activeBuffer.Cell(row, col)
			if cell != nil && !cell.IsWideSpacer() {
				if cell.Char == 0 {
					result = append(result, ' ')
				} else {
					result = append(result, cell.Char)
				}
			}
		}

		// Add newline between rows (but not after last row)
		if row < end.Row {
			result = append(result, '\n')
		}
	}

	return string(result)
}

// --- Convenience Methods ---

// LineContent returns the text content of a line, trimming trailing spaces.
// Returns empty string if the line contains only spaces or is out of bounds.
func (t *Terminal) LineContent(row int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer.LineContent(row)
}

// String returns the visible screen content as a newline-separated string.
// Trailing empty lines are omitted. Implements fmt.Stringer.
func (t *Terminal) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var lines []string
	lastNonEmpty := -1

	for row := range make([]struct{}, t.rows) {
		line := t.activeBuffer.LineContent(row)
		lines = append(lines, line)
		if line != "" {
			lastNonEmpty = row
		}
	}

	if lastNonEmpty < 0 {
		return ""
	}

	result := ""
	for i, line := range lines[:lastNonEmpty+1] {
		if i > 0 {
			result += "\n"
		}
		result += line
	}

	return result
}

// Search finds all occurrences of pattern in the visible screen content.
// Returns positions of the first character of each match.
func (t *Terminal) Search(pattern string) []Position {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if pattern == "" {
		return nil
	}

	var matches []Position
	patternRunes := []rune(pattern)

	for row := 0; row < t.rows; row++ {
		line := t.activeBuffer.LineContent(row)
		lineRunes := []rune(line)

		for col := 0; col <= len(lineRunes)-len(patternRunes); col++ {
			found := true
			for i, pr := range patternRunes {
				if lineRunes[col+i] != pr {
					found = false
					break
				}
			}
			if found {
				matches = append(matches, Position{Row: row, Col: col})
			}
		}
	}

	return matches
}

// SearchScrollback finds all occurrences of pattern in scrollback lines.
// Returned row values are negative, where -1 is the most recent scrollback line.
func (t *Terminal) SearchScrollback(pattern string) []Position {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if pattern == "" {
		return nil
	}

	var matches []Position
	patternRunes := []rune(pattern)
	scrollbackLen := t.primaryBuffer.ScrollbackLen()

	for i := 0; i < scrollbackLen; i++ {
		line := t.primaryBuffer.ScrollbackLine(i)
		if line == nil {
			continue
		}

		// Convert line to string
		var lineRunes []rune
		for _, cell := range line {
			if cell.IsWideSpacer() {
				continue
			}
			if cell.Char == 0 {
				lineRunes = append(lineRunes, ' ')
			} else {
				lineRunes = append(lineRunes, cell.Char)
			}
		}

		for col := 0; col <= len(lineRunes)-len(patternRunes); col++ {
			found := true
			for j, pr := range patternRunes {
				if lineRunes[col+j] != pr {
					found = false
					break
				}
			}
			if found {
				// Negative row indicates scrollback (0 is oldest)
				matches = append(matches, Position{Row: -(scrollbackLen - i), Col: col})
			}
		}
	}

	return matches
}

// IsAlternateScreen returns true if the alternate buffer is currently active.
// The alternate buffer has no scrollback and is typically used by full-screen applications.
func (t *Terminal) IsAlternateScreen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer == t.alternateBuffer
}

// ScrollRegion returns the current scrolling boundaries (0-based, exclusive bottom).
// When origin mode is enabled, cursor positioning is relative to scrollTop.
func (t *Terminal) ScrollRegion() (top, bottom int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scrollTop, t.scrollBottom
}

// CurrentSGR serializes the cursor's current SGR attribute state into the
// semicolon-separated parameter list DECRQSS echoes back for selector "m".
// Flags are emitted in ascending code order; "0" alone means no attributes set.
func (t *Terminal) CurrentSGR() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var codes []string
	f := t.template.Flags
	add := func(code string) { codes = append(codes, code) }

	if f&CellFlagBold != 0 {
		add("1")
	}
	if f&CellFlagDim != 0 {
		add("2")
	}
	if f&CellFlagItalic != 0 {
		add("3")
	}
	switch {
	case f&CellFlagDoubleUnderline != 0:
		add("4:2")
	case f&CellFlagCurlyUnderline != 0:
		add("4:3")
	case f&CellFlagDottedUnderline != 0:
		add("4:4")
	case f&CellFlagDashedUnderline != 0:
		add("4:5")
	case f&CellFlagUnderline != 0:
		add("4")
	}
	if f&CellFlagBlinkSlow != 0 {
		add("5")
	}
	if f&CellFlagBlinkFast != 0 {
		add("6")
	}
	if f&CellFlagReverse != 0 {
		add("7")
	}
	if f&CellFlagHidden != 0 {
		add("8")
	}
	if f&CellFlagStrike != 0 {
		add("9")
	}
	if f&CellFlagProportionalSpacing != 0 {
		add("26")
	}
	if f&CellFlagFramed != 0 {
		add("51")
	}
	if f&CellFlagEncircled != 0 {
		add("52")
	}
	if f&CellFlagOverlined != 0 {
		add("53")
	}
	if f&CellFlagSuperscript != 0 {
		add("73")
	}
	if f&CellFlagSubscript != 0 {
		add("74")
	}
	codes = append(codes, sgrColorCodes(t.template.Fg, 30, 38)...)
	codes = append(codes, sgrColorCodes(t.template.Bg, 40, 48)...)

	if len(codes) == 0 {
		return "0"
	}
	return strings.Join(codes, ";")
}

// --- Wrapped Line Tracking ---

// IsWrapped returns true if the line was wrapped due to column overflow, false if it ended with an explicit newline.
func (t *Terminal) IsWrapped(row int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeBuffer.IsWrapped(row)
}

// SetWrapped sets whether the line was wrapped or ended with an explicit newline.
func (t *Terminal) SetWrapped(row int, wrapped bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeBuffer.SetWrapped(row, wrapped)
}

// AutoResize returns true if growth mode is enabled (buffer expands instead of scrolling/wrapping).
func (t *Terminal) AutoResize() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.autoResize
}

// --- Recording Methods ---

// SetRecordingProvider replaces the recording handler at runtime.
func (t *Terminal) SetRecordingProvider(p RecordingProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordingProvider = p
}

// RecordingProvider returns the current recording handler.
func (t *Terminal) RecordingProvider() RecordingProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recordingProvider
}

// RecordedData returns all raw input bytes captured since the last ClearRecording call.
func (t *Terminal) RecordedData() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recordingProvider.Data()
}

// ClearRecording discards all captured input data.
func (t *Terminal) ClearRecording() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordingProvider.Clear()
}

// SetSizeProvider sets the provider for pixel dimension queries.
func (t *Terminal) SetSizeProvider(p SizeProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sizeProvider = p
}
