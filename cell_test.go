package termemu

import (
	"testing"
)

func TestNewCell(t *testing.T) {
	cell := NewCell()

	if cell.Char != ' ' {
		t.Errorf("expected space, got '%c'", cell.Char)
	}
	if fg, ok := cell.Fg.(*NamedColor); !ok || fg.Name != NamedColorForeground {
		t.Errorf("expected default foreground color, got %v", cell.Fg)
	}
	if bg, ok := cell.Bg.(*NamedColor); !ok || bg.Name != NamedColorBackground {
		t.Errorf("expected default background color, got %v", cell.Bg)
	}
	if cell.Flags != 0 {
		t.Error("expected no flags")
	}
}

func TestCellReset(t *testing.T) {
	cell := NewCell()
	cell.Char = 'A'
	cell.SetFlag(CellFlagBold)

	cell.Reset()

	if cell.Char != ' ' {
		t.Errorf("expected space after reset, got '%c'", cell.Char)
	}
	if cell.HasFlag(CellFlagBold) {
		t.Error("expected no flags after reset")
	}
}

func TestCellFlags(t *testing.T) {
	cell := NewCell()

	cell.SetFlag(CellFlagBold)
	if !cell.HasFlag(CellFlagBold) {
		t.Error("expected bold flag")
	}

	cell.SetFlag(CellFlagItalic)
	if !cell.HasFlag(CellFlagBold) || !cell.HasFlag(CellFlagItalic) {
		t.Error("expected both flags")
	}

	cell.ClearFlag(CellFlagBold)
	if cell.HasFlag(CellFlagBold) {
		t.Error("expected bold flag to be cleared")
	}
	if !cell.HasFlag(CellFlagItalic) {
		t.Error("expected italic flag to remain")
	}
}

func TestCellDirty(t *testing.T) {
	cell := NewCell()

	if cell.IsDirty() {
		t.Error("expected cell not dirty initially")
	}

	cell.MarkDirty()
	if !cell.IsDirty() {
		t.Error("expected cell to be dirty")
	}

	cell.ClearDirty()
	if cell.IsDirty() {
		t.Error("expected cell not dirty after clear")
	}
}

func TestCellWide(t *testing.T) {
	cell := NewCell()

	cell.SetFlag(CellFlagWideChar)
	if !cell.IsWide() {
		t.Error("expected cell to be wide")
	}

	spacer := NewCell()
	spacer.SetFlag(CellFlagWideCharSpacer)
	if !spacer.IsWideSpacer() {
		t.Error("expected cell to be spacer")
	}
}

func TestCellCopy(t *testing.T) {
	cell := NewCell()
	cell.Char = 'X'
	cell.SetFlag(CellFlagBold | CellFlagItalic)
	cell.Protected = true

	copied := cell.Copy()

	if copied.Char != 'X' {
		t.Errorf("expected 'X', got '%c'", copied.Char)
	}
	if !copied.HasFlag(CellFlagBold) || !copied.HasFlag(CellFlagItalic) {
		t.Error("expected flags to be copied")
	}
	if !copied.Protected {
		t.Error("expected Protected to be copied")
	}

	// Modify original, copy should be unchanged
	cell.Char = 'Y'
	cell.Protected = false
	if copied.Char != 'X' {
		t.Error("copy should be independent")
	}
	if !copied.Protected {
		t.Error("copy's Protected should be independent of the original")
	}
}

func TestCellResetClearsProtected(t *testing.T) {
	cell := NewCell()
	cell.Protected = true
	cell.SetFlag(CellFlagBold)

	cell.Reset()

	if cell.Protected {
		t.Error("expected Reset to clear Protected (DECSCA marks are per-write, not sticky)")
	}
}

func TestCellRareSGRFlags(t *testing.T) {
	cell := NewCell()

	for _, flag := range []CellFlags{
		CellFlagFramed,
		CellFlagEncircled,
		CellFlagOverlined,
		CellFlagSuperscript,
		CellFlagSubscript,
		CellFlagProportionalSpacing,
	} {
		cell.SetFlag(flag)
		if !cell.HasFlag(flag) {
			t.Errorf("expected flag %d to be set", flag)
		}
		cell.ClearFlag(flag)
		if cell.HasFlag(flag) {
			t.Errorf("expected flag %d to be cleared", flag)
		}
	}
}

func TestCellSuperscriptAndSubscriptAreIndependent(t *testing.T) {
	cell := NewCell()

	cell.SetFlag(CellFlagSuperscript)
	if !cell.HasFlag(CellFlagSuperscript) || cell.HasFlag(CellFlagSubscript) {
		t.Error("expected only superscript set")
	}

	cell.ClearFlag(CellFlagSuperscript)
	cell.SetFlag(CellFlagSubscript)
	if cell.HasFlag(CellFlagSuperscript) || !cell.HasFlag(CellFlagSubscript) {
		t.Error("expected only subscript set")
	}
}
