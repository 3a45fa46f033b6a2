package termemu

// PromptMark stores information about a semantic prompt mark (OSC 133).
// Used for prompt-based navigation in scrollback.
type PromptMark struct {
	// Type is the mark type (PromptStart, CommandStart, CommandExecuted, CommandFinished).
	Type ShellIntegrationMark
	// Row is the absolute row position (including scrollback offset).
	Row int
	// ExitCode is the command exit code (only valid for CommandFinished marks, -1 otherwise).
	ExitCode int
}

// anyMark matches any ShellIntegrationMark in NextPromptRow/PrevPromptRow.
const anyMark ShellIntegrationMark = -1

// ShellIntegrationProvider handles shell integration events (OSC 133).
type ShellIntegrationProvider interface {
	// OnMark is called when a shell integration mark is received.
	OnMark(mark ShellIntegrationMark, exitCode int)
}

// NoopShellIntegration ignores all shell integration events.
type NoopShellIntegration struct{}

func (NoopShellIntegration) OnMark(mark ShellIntegrationMark, exitCode int) {}

var _ ShellIntegrationProvider = (*NoopShellIntegration)(nil)

// ShellIntegrationMark processes a semantic prompt mark (OSC 133).
// Records the mark position for prompt-based navigation.
func (t *Terminal) ShellIntegrationMark(mark ShellIntegrationMark, exitCode int) {
	if t.middleware != nil && t.middleware.ShellIntegrationMark != nil {
		t.middleware.ShellIntegrationMark(mark, exitCode, t.shellIntegrationMarkInternal)
		return
	}
	t.shellIntegrationMarkInternal(mark, exitCode)
}

func (t *Terminal) shellIntegrationMarkInternal(mark ShellIntegrationMark, exitCode int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	scrollbackLen := t.primaryBuffer.ScrollbackLen()
	absoluteRow := t.cursor.Row + scrollbackLen

	t.promptMarks = append(t.promptMarks, PromptMark{
		Type:     mark,
		Row:      absoluteRow,
		ExitCode: exitCode,
	})

	if t.shellIntegrationProvider != nil {
		t.shellIntegrationProvider.OnMark(mark, exitCode)
	}
}

// PromptMarks returns all recorded prompt marks.
func (t *Terminal) PromptMarks() []PromptMark {
	t.mu.RLock()
	defer t.mu.RUnlock()

	marks := make([]PromptMark, len(t.promptMarks))
	copy(marks, t.promptMarks)
	return marks
}

// PromptMarkCount returns the number of recorded prompt marks.
func (t *Terminal) PromptMarkCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.promptMarks)
}

// ClearPromptMarks removes all recorded prompt marks.
func (t *Terminal) ClearPromptMarks() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promptMarks = nil
}

// NextPromptRow returns the absolute row of the next prompt mark after the given
// absolute row, or -1 if none exists. Pass anyMark's underlying value (-1) to match any type.
func (t *Terminal) NextPromptRow(currentAbsRow int, markType ShellIntegrationMark) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, mark := range t.promptMarks {
		if mark.Row > currentAbsRow {
			if markType == anyMark || mark.Type == markType {
				return mark.Row
			}
		}
	}
	return -1
}

// PrevPromptRow returns the absolute row of the previous prompt mark before the
// given absolute row, or -1 if none exists.
func (t *Terminal) PrevPromptRow(currentAbsRow int, markType ShellIntegrationMark) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := len(t.promptMarks) - 1; i >= 0; i-- {
		mark := t.promptMarks[i]
		if mark.Row < currentAbsRow {
			if markType == anyMark || mark.Type == markType {
				return mark.Row
			}
		}
	}
	return -1
}

// GetPromptMarkAt returns the prompt mark at the given absolute row, or nil if none exists.
func (t *Terminal) GetPromptMarkAt(absRow int) *PromptMark {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.promptMarks {
		if t.promptMarks[i].Row == absRow {
			mark := t.promptMarks[i]
			return &mark
		}
	}
	return nil
}

// SetShellIntegrationProvider sets the shell integration provider at runtime.
func (t *Terminal) SetShellIntegrationProvider(p ShellIntegrationProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shellIntegrationProvider = p
}

// ShellIntegrationProviderValue returns the current shell integration provider.
func (t *Terminal) ShellIntegrationProviderValue() ShellIntegrationProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shellIntegrationProvider
}

// GetLastCommandOutput returns the output of the last executed command: the
// text between the last CommandExecuted mark and the last CommandFinished mark.
// Returns empty string if no complete command output is available.
func (t *Terminal) GetLastCommandOutput() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.promptMarks) == 0 {
		return ""
	}

	var lastExecuted, lastFinished *PromptMark
	for i := len(t.promptMarks) - 1; i >= 0; i-- {
		mark := &t.promptMarks[i]
		if lastFinished == nil && mark.Type == CommandFinished {
			lastFinished = mark
		}
		if lastExecuted == nil && mark.Type == CommandExecuted {
			lastExecuted = mark
		}
		if lastExecuted != nil && lastFinished != nil {
			if lastExecuted.Row < lastFinished.Row {
				break
			}
			lastFinished = nil
			lastExecuted = nil
		}
	}

	if lastExecuted == nil || lastFinished == nil {
		return ""
	}

	return t.extractTextBetweenRows(lastExecuted.Row, lastFinished.Row)
}

// extractTextBetweenRows extracts text from startRow (inclusive) to endRow (exclusive).
// Rows are absolute (including scrollback offset).
func (t *Terminal) extractTextBetweenRows(startRow, endRow int) string {
	scrollbackLen := t.primaryBuffer.ScrollbackLen()

	var lines []string
	for absRow := startRow; absRow < endRow; absRow++ {
		var lineContent string

		if absRow < scrollbackLen {
			scrollbackLine := t.primaryBuffer.ScrollbackLine(absRow)
			if scrollbackLine != nil {
				lineContent = t.cellsToString(scrollbackLine)
			}
		} else {
			bufferRow := absRow - scrollbackLen
			if bufferRow >= 0 && bufferRow < t.rows {
				lineContent = t.activeBuffer.LineContent(bufferRow)
			}
		}

		lines = append(lines, lineContent)
	}

	result := ""
	lastNonEmpty := -1
	for i, line := range lines {
		if line != "" {
			lastNonEmpty = i
		}
	}

	if lastNonEmpty < 0 {
		return ""
	}

	for i := 0; i <= lastNonEmpty; i++ {
		if i > 0 {
			result += "\n"
		}
		result += lines[i]
	}

	return result
}

// cellsToString converts a slice of cells to a string, trimming trailing blanks.
func (t *Terminal) cellsToString(cells []Cell) string {
	lastNonSpace := -1
	for i := len(cells) - 1; i >= 0; i-- {
		cell := &cells[i]
		if cell.Char != ' ' && cell.Char != 0 && !cell.IsWideSpacer() {
			lastNonSpace = i
			break
		}
	}

	if lastNonSpace < 0 {
		return ""
	}

	runes := make([]rune, 0, lastNonSpace+1)
	for i := 0; i <= lastNonSpace; i++ {
		cell := &cells[i]
		if cell.IsWideSpacer() {
			continue
		}
		if cell.Char == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, cell.Char)
		}
	}

	return string(runes)
}
