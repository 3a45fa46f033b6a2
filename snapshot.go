package termemu

import (
	"fmt"
	"image/color"
)

// SnapshotDetail specifies the level of detail in a snapshot.
type SnapshotDetail string

const (
	// SnapshotDetailText returns plain text only.
	SnapshotDetailText SnapshotDetail = "text"
	// SnapshotDetailStyled returns text with style segments per line.
	SnapshotDetailStyled SnapshotDetail = "styled"
	// SnapshotDetailFull returns full cell-by-cell data.
	SnapshotDetailFull SnapshotDetail = "full"
)

// Snapshot represents a complete terminal screen capture.
type Snapshot struct {
	Size   SnapshotSize   `json:"size"`
	Cursor SnapshotCursor `json:"cursor"`
	Lines  []SnapshotLine `json:"lines"`
}

// SnapshotSize holds terminal dimensions.
type SnapshotSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SnapshotCursor holds cursor state.
type SnapshotCursor struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Visible bool   `json:"visible"`
	Style   string `json:"style"`
}

// SnapshotLine represents a single line in the snapshot.
type SnapshotLine struct {
	Text     string            `json:"text"`
	Segments []SnapshotSegment `json:"segments,omitempty"`
	Cells    []SnapshotCell    `json:"cells,omitempty"`
}

// SnapshotSegment represents a styled text segment within a line.
type SnapshotSegment struct {
	Text       string         `json:"text"`
	Fg         string         `json:"fg,omitempty"`
	Bg         string         `json:"bg,omitempty"`
	Attributes SnapshotAttrs  `json:"attrs,omitempty"`
	Hyperlink  *SnapshotLink  `json:"hyperlink,omitempty"`
}

// SnapshotCell represents a single cell with full attributes.
type SnapshotCell struct {
	Char       string         `json:"char"`
	Fg         string         `json:"fg"`
	Bg         string         `json:"bg"`
	Attributes SnapshotAttrs  `json:"attrs,omitempty"`
	Hyperlink  *SnapshotLink  `json:"hyperlink,omitempty"`
	Wide       bool           `json:"wide,omitempty"`
	WideSpacer bool           `json:"wide_spacer,omitempty"`
}

// SnapshotAttrs holds text formatting attributes.
type SnapshotAttrs struct {
	Bold           bool   `json:"bold,omitempty"`
	Dim            bool   `json:"dim,omitempty"`
	Italic         bool   `json:"italic,omitempty"`
	Underline      bool   `json:"underline,omitempty"`
	UnderlineStyle string `json:"underline_style,omitempty"` // "single", "double", "curly", "dotted", "dashed"
	Blink          bool   `json:"blink,omitempty"`
	Reverse        bool   `json:"reverse,omitempty"`
	Hidden         bool   `json:"hidden,omitempty"`
	Strikethrough  bool   `json:"strikethrough,omitempty"`
	Overlined      bool   `json:"overlined,omitempty"`
	Framed         bool   `json:"framed,omitempty"`
	Encircled      bool   `json:"encircled,omitempty"`
	Protected      bool   `json:"protected,omitempty"` // DECSCA character protection
}

// SnapshotLink holds hyperlink information.
type SnapshotLink struct {
	ID  string `json:"id,omitempty"`
	URI string `json:"uri"`
}

// Snapshot creates a snapshot of the current terminal state.
// The detail parameter controls how much information is included.
func (t *Terminal) Snapshot(detail SnapshotDetail) *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := &Snapshot{
		Size: SnapshotSize{
			Rows: t.rows,
			Cols: t.cols,
		},
		Cursor: SnapshotCursor{
			Row:     t.cursor.Row,
			Col:     t.cursor.Col,
			Visible: t.cursor.Visible,
			Style:   cursorStyleToString(t.cursor.Style),
		},
		Lines: make([]SnapshotLine, t.rows),
	}

	for row := 0; row < t.rows; row++ {
		snap.Lines[row] = t.snapshotLine(row, detail)
	}

	return snap
}

// ViewportRows returns rows [start, end) addressed across scrollback and the
// active screen as one continuous space: row 0 is the oldest scrollback line.
func (t *Terminal) ViewportRows(start, end int, detail SnapshotDetail) []SnapshotLine {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if end <= start {
		return nil
	}

	scrollbackLen := t.primaryBuffer.ScrollbackLen()
	lines := make([]SnapshotLine, 0, end-start)

	for absRow := start; absRow < end; absRow++ {
		if absRow < scrollbackLen {
			cells := t.primaryBuffer.ScrollbackLine(absRow)
			lines = append(lines, t.snapshotCellsLine(cells, detail))
			continue
		}

		row := absRow - scrollbackLen
		if row < 0 || row >= t.rows {
			lines = append(lines, SnapshotLine{})
			continue
		}
		lines = append(lines, t.snapshotLine(row, detail))
	}

	return lines
}

// snapshotCellsLine builds a SnapshotLine from a raw cell slice (used for scrollback rows).
func (t *Terminal) snapshotCellsLine(cells []Cell, detail SnapshotDetail) SnapshotLine {
	line := SnapshotLine{Text: t.cellsToString(cells)}

	switch detail {
	case SnapshotDetailText:
	case SnapshotDetailStyled, SnapshotDetailFull:
		for _, cell := range cells {
			if cell.IsWideSpacer() {
				continue
			}
			ch := cell.Char
			if ch == 0 {
				ch = ' '
			}
			if detail == SnapshotDetailFull {
				line.Cells = append(line.Cells, SnapshotCell{
					Char:       string(ch),
					Fg:         colorToHex(cell.Fg),
					Bg:         colorToHex(cell.Bg),
					Attributes: cellAttrsToSnapshot(&cell),
					Hyperlink:  cellHyperlinkToSnapshot(&cell),
					Wide:       cell.IsWide(),
					WideSpacer: cell.IsWideSpacer(),
				})
			}
		}
	}

	return line
}

// snapshotLine creates a snapshot of a single line.
func (t *Terminal) snapshotLine(row int, detail SnapshotDetail) SnapshotLine {
	line := SnapshotLine{
		Text: t.activeBuffer.LineContent(row),
	}

	switch detail {
	case SnapshotDetailText:
		// Just text, already set

	case SnapshotDetailStyled:
		line.Segments = t.lineToSegments(row)

	case SnapshotDetailFull:
		line.Cells = t.lineToCells(row)
	}

	return line
}

// lineToSegments converts a line to styled segments (runs of same style).
func (t *Terminal) lineToSegments(row int) []SnapshotSegment {
	var segments []SnapshotSegment
	var current *SnapshotSegment
	var currentChars []rune

	for col := 0; col < t.cols; col++ {
		cell := t.activeBuffer.Cell(row, col)
		if cell == nil {
			continue
		}
		if cell.IsWideSpacer() {
			continue
		}

		fg := colorToHex(cell.Fg)
		bg := colorToHex(cell.Bg)
		attrs := cellAttrsToSnapshot(cell)
		link := cellHyperlinkToSnapshot(cell)

		// Check if we need to start a new segment
		if current == nil || !segmentMatches(current, fg, bg, attrs, link) {
			// Save current segment if exists
			if current != nil && len(currentChars) > 0 {
				current.Text = string(currentChars)
				segments = append(segments, *current)
			}

			// Start new segment
			current = &SnapshotSegment{
				Fg:         fg,
				Bg:         bg,
				Attributes: attrs,
				Hyperlink:  link,
			}
			currentChars = nil
		}

		ch := cell.Char
		if ch == 0 {
			ch = ' '
		}
		currentChars = append(currentChars, ch)
	}

	// Don't forget the last segment
	if current != nil && len(currentChars) > 0 {
		current.Text = string(currentChars)
		segments = append(segments, *current)
	}

	return segments
}

// lineToCells converts a line to full cell data.
func (t *Terminal) lineToCells(row int) []SnapshotCell {
	cells := make([]SnapshotCell, 0, t.cols)

	for col := 0; col < t.cols; col++ {
		cell := t.activeBuffer.Cell(row, col)
		if cell == nil {
			cells = append(cells, SnapshotCell{
				Char: " ",
				Fg:   colorToHex(nil),
				Bg:   colorToHex(nil),
			})
			continue
		}

		ch := cell.Char
		if ch == 0 {
			ch = ' '
		}

		sc := SnapshotCell{
			Char:       string(ch),
			Fg:         colorToHex(cell.Fg),
			Bg:         colorToHex(cell.Bg),
			Attributes: cellAttrsToSnapshot(cell),
			Hyperlink:  cellHyperlinkToSnapshot(cell),
			Wide:       cell.IsWide(),
			WideSpacer: cell.IsWideSpacer(),
		}

		cells = append(cells, sc)
	}

	return cells
}

// segmentMatches checks if segment matches the given style.
func segmentMatches(seg *SnapshotSegment, fg, bg string, attrs SnapshotAttrs, link *SnapshotLink) bool {
	if seg.Fg != fg || seg.Bg != bg {
		return false
	}
	if seg.Attributes != attrs {
		return false
	}
	// Compare hyperlinks
	if seg.Hyperlink == nil && link == nil {
		return true
	}
	if seg.Hyperlink == nil || link == nil {
		return false
	}
	return seg.Hyperlink.URI == link.URI && seg.Hyperlink.ID == link.ID
}

// colorToHex converts a color to hex string.
func colorToHex(c color.Color) string {
	if c == nil {
		return ""
	}

	rgba := resolveDefaultColor(c, true)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

// cellAttrsToSnapshot extracts cell attributes.
func cellAttrsToSnapshot(cell *Cell) SnapshotAttrs {
	underline := cell.HasFlag(CellFlagUnderline) || cell.HasFlag(CellFlagDoubleUnderline) ||
		cell.HasFlag(CellFlagCurlyUnderline) || cell.HasFlag(CellFlagDottedUnderline) || cell.HasFlag(CellFlagDashedUnderline)

	return SnapshotAttrs{
		Bold:           cell.HasFlag(CellFlagBold),
		Dim:            cell.HasFlag(CellFlagDim),
		Italic:         cell.HasFlag(CellFlagItalic),
		Underline:      underline,
		UnderlineStyle: underlineStyleToSnapshot(cell),
		Blink:          cell.HasFlag(CellFlagBlinkSlow) || cell.HasFlag(CellFlagBlinkFast),
		Reverse:        cell.HasFlag(CellFlagReverse),
		Hidden:         cell.HasFlag(CellFlagHidden),
		Strikethrough:  cell.HasFlag(CellFlagStrike),
		Overlined:      cell.HasFlag(CellFlagOverlined),
		Framed:         cell.HasFlag(CellFlagFramed),
		Encircled:      cell.HasFlag(CellFlagEncircled),
		Protected:      cell.Protected,
	}
}

func underlineStyleToSnapshot(cell *Cell) string {
	switch {
	case cell.HasFlag(CellFlagDoubleUnderline):
		return "double"
	case cell.HasFlag(CellFlagCurlyUnderline):
		return "curly"
	case cell.HasFlag(CellFlagDottedUnderline):
		return "dotted"
	case cell.HasFlag(CellFlagDashedUnderline):
		return "dashed"
	case cell.HasFlag(CellFlagUnderline):
		return "single"
	default:
		return ""
	}
}

// cellHyperlinkToSnapshot extracts hyperlink info.
func cellHyperlinkToSnapshot(cell *Cell) *SnapshotLink {
	if cell.Hyperlink == nil {
		return nil
	}
	return &SnapshotLink{
		ID:  cell.Hyperlink.ID,
		URI: cell.Hyperlink.URI,
	}
}

// cursorStyleToString converts cursor style to string.
func cursorStyleToString(style CursorStyle) string {
	switch style {
	case CursorStyleBlinkingBlock, CursorStyleSteadyBlock:
		return "block"
	case CursorStyleBlinkingUnderline, CursorStyleSteadyUnderline:
		return "underline"
	case CursorStyleBlinkingBar, CursorStyleSteadyBar:
		return "bar"
	default:
		return "block"
	}
}
