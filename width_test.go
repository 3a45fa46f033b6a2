package termemu

import (
	"testing"
)

func TestRuneWidth(t *testing.T) {
	tests := []struct {
		r        rune
		expected int
	}{
		{'A', 1},
		{'a', 1},
		{'1', 1},
		{' ', 1},
		{'中', 2},
		{'日', 2},
		{'本', 2},
		{'한', 2},
		{'글', 2},
		{'가', 2},
		{'Ａ', 2}, // Fullwidth A
		{0, 0},
	}

	for _, tt := range tests {
		got := runeWidth(tt.r)
		if got != tt.expected {
			t.Errorf("runeWidth(%q) = %d, want %d", tt.r, got, tt.expected)
		}
	}
}

func TestIsWideRune(t *testing.T) {
	tests := []struct {
		r        rune
		expected bool
	}{
		{'A', false},
		{'a', false},
		{' ', false},
		{'中', true},
		{'日', true},
		{'한', true},
		{'가', true},
		{'Ａ', true}, // Fullwidth A
		{'0', false},
	}

	for _, tt := range tests {
		got := isWideRune(tt.r)
		if got != tt.expected {
			t.Errorf("isWideRune(%q) = %v, want %v", tt.r, got, tt.expected)
		}
	}
}

func TestIsZeroWidthRune(t *testing.T) {
	tests := []struct {
		r        rune
		expected bool
	}{
		{'A', false},
		{'中', false},
		{0x0301, true}, // combining acute accent
		{0, true},
	}

	for _, tt := range tests {
		got := isZeroWidthRune(tt.r)
		if got != tt.expected {
			t.Errorf("isZeroWidthRune(%q) = %v, want %v", tt.r, got, tt.expected)
		}
	}
}

func TestTerminalWideCharacterOccupiesTwoCells(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("中")

	first := term.Cell(0, 0)
	second := term.Cell(0, 1)
	if first == nil || !first.IsWide() {
		t.Errorf("expected first cell to carry the wide-char flag, got %+v", first)
	}
	if second == nil || second.Char != ' ' {
		t.Errorf("expected second cell to hold a blank spacer character, got %+v", second)
	}

	row, col := term.CursorPos()
	if row != 0 || col != 2 {
		t.Errorf("expected cursor to advance by 2 columns, got (%d, %d)", row, col)
	}
}

func TestTerminalCombiningMarkDoesNotAdvanceCursor(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("é") // 'e' followed by a decomposed combining acute accent (U+0301)

	row, col := term.CursorPos()
	if row != 0 || col != 1 {
		t.Errorf("expected combining mark to be dropped without advancing cursor, got (%d, %d)", row, col)
	}
	if got := term.Cell(0, 0).Char; got != 'e' {
		t.Errorf("expected base character 'e' to remain, got %q", got)
	}
}

func TestStringWidth(t *testing.T) {
	tests := []struct {
		s        string
		expected int
	}{
		{"Hello", 5},
		{"中文", 4},
		{"Hello中文", 9},
		{"", 0},
		{"한글", 4},
	}

	for _, tt := range tests {
		got := StringWidth(tt.s)
		if got != tt.expected {
			t.Errorf("StringWidth(%q) = %d, want %d", tt.s, got, tt.expected)
		}
	}
}
