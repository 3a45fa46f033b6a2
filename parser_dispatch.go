package termemu

import (
	"image/color"
	"strconv"
	"strings"
)

// executeCSI dispatches a fully-parsed CSI sequence to the terminal.
func (p *Parser) executeCSI(final byte) {
	priv := p.csiPrivate
	inter := p.csiIntermediate

	// Kitty keyboard protocol and XTMODKEYS both use 'u'/'m' with a private
	// marker that would otherwise collide with SCORC/SGR.
	if final == 'u' {
		p.executeKittyKeyboard(priv)
		return
	}
	if final == 'm' && priv == '>' {
		// XTMODKEYS set: CSI > Pp ; Pv m
		if p.param(0, 0) == 4 {
			p.term.SetModifyOtherKeys(ModifyOtherKeys(p.param(1, 0)))
		}
		return
	}
	if final == 'm' && priv == '?' {
		p.term.ReportModifyOtherKeys()
		return
	}

	if inter == '"' && final == 'q' {
		p.setProtectMode(p.param(0, 0))
		return
	}
	if inter == ' ' && final == 'q' {
		p.term.SetCursorStyle(CursorStyle(p.param(0, 0)))
		return
	}
	if inter == '!' && final == 'p' {
		// DECSTR soft reset: screen contents and cursor position are kept.
		p.term.mu.Lock()
		p.term.template = NewCellTemplate()
		p.term.modes &^= ModeOrigin
		p.term.modes |= ModeLineWrap | ModeShowCursor
		p.term.cursor.Visible = true
		p.term.scrollTop = 0
		p.term.scrollBottom = p.term.rows
		p.term.protectMode = false
		p.term.mu.Unlock()
		return
	}

	switch priv {
	case '?':
		p.executeDECPrivate(final)
		return
	}

	switch final {
	case 'A':
		p.term.MoveUp(p.paramMin1(0))
	case 'B', 'e':
		p.term.MoveDown(p.paramMin1(0))
	case 'C', 'a':
		p.term.MoveForward(p.paramMin1(0))
	case 'D':
		p.term.MoveBackward(p.paramMin1(0))
	case 'E':
		p.term.MoveDownCr(p.paramMin1(0))
	case 'F':
		p.term.MoveUpCr(p.paramMin1(0))
	case 'G', '`':
		p.term.GotoCol(p.paramMin1(0) - 1)
	case 'H', 'f':
		p.term.Goto(p.paramMin1(0)-1, p.paramMin1(1)-1)
	case 'I':
		p.term.MoveForwardTabs(p.paramMin1(0))
	case 'J':
		p.term.ClearScreen(ClearMode(p.param(0, 0)))
	case 'K':
		p.term.ClearLine(LineClearMode(p.param(0, 0)))
	case 'L':
		p.term.InsertBlankLines(p.paramMin1(0))
	case 'M':
		p.term.DeleteLines(p.paramMin1(0))
	case 'P':
		p.term.DeleteChars(p.paramMin1(0))
	case 'S':
		p.term.ScrollUp(p.paramMin1(0))
	case 'T':
		p.term.ScrollDown(p.paramMin1(0))
	case 'X':
		p.term.EraseChars(p.paramMin1(0))
	case 'Z':
		p.term.MoveBackwardTabs(p.paramMin1(0))
	case 'd':
		p.term.GotoLine(p.paramMin1(0) - 1)
	case 'g':
		p.term.ClearTabs(TabulationClearMode(p.param(0, 0)))
	case '@':
		p.term.InsertBlank(p.paramMin1(0))
	case 'h':
		p.setANSIModes(true)
	case 'l':
		p.setANSIModes(false)
	case 'm':
		p.executeSGR()
	case 'n':
		p.term.DeviceStatus(p.param(0, 0))
	case 'r':
		p.term.SetScrollingRegion(p.param(0, 1), p.param(1, 0))
	case 's':
		p.term.SaveCursorPosition()
	case 't':
		p.executeWindowOp()
	case 'c':
		p.term.IdentifyTerminal(0)
	}
}

func (p *Parser) setProtectMode(n int) {
	p.term.mu.Lock()
	p.term.protectMode = n == 1
	p.term.mu.Unlock()
}

func (p *Parser) setANSIModes(set bool) {
	for i := 0; i < p.paramCount(); i++ {
		n := p.param(i, 0)
		var mode TerminalMode
		switch n {
		case 4:
			mode = TerminalModeInsert
		case 20:
			mode = TerminalModeLineFeedNewLine
		default:
			continue
		}
		if set {
			p.term.SetMode(mode)
		} else {
			p.term.UnsetMode(mode)
		}
	}
}

// executeDECPrivate handles CSI ? Pm <final> sequences: mode set/reset, save/restore.
func (p *Parser) executeDECPrivate(final byte) {
	switch final {
	case 'h':
		p.setDECModes(true)
	case 'l':
		p.setDECModes(false)
	case 's':
		p.saveDECModes()
	case 'r':
		p.restoreDECModes()
	case 'n':
		p.term.DeviceStatus(p.param(0, 0))
	case 'J':
		p.term.ClearScreenSelective(ClearMode(p.param(0, 0)))
	case 'K':
		p.term.ClearLineSelective(LineClearMode(p.param(0, 0)))
	}
}

func (p *Parser) setDECModes(set bool) {
	for i := 0; i < p.paramCount(); i++ {
		n := p.param(i, 0)
		if n == 1048 {
			if set {
				p.term.SaveCursorPosition()
			} else {
				p.term.RestoreCursorPosition()
			}
			continue
		}
		mode, ok := decPrivateMode(n)
		if !ok {
			continue
		}
		if set {
			p.term.SetMode(mode)
		} else {
			p.term.UnsetMode(mode)
		}
	}
}

// decPrivateMode maps a DEC private mode number to its internal TerminalMode.
func decPrivateMode(n int) (TerminalMode, bool) {
	switch n {
	case 1:
		return TerminalModeCursorKeys, true
	case 3:
		return TerminalModeColumnMode, true
	case 6:
		return TerminalModeOrigin, true
	case 7:
		return TerminalModeLineWrap, true
	case 12:
		return TerminalModeBlinkingCursor, true
	case 25:
		return TerminalModeShowCursor, true
	case 47, 1047, 1049:
		return TerminalModeSwapScreenAndSetRestoreCursor, true
	case 1000:
		return TerminalModeReportMouseClicks, true
	case 1002:
		return TerminalModeReportCellMouseMotion, true
	case 1003:
		return TerminalModeReportAllMouseMotion, true
	case 1004:
		return TerminalModeReportFocusInOut, true
	case 1005:
		return TerminalModeUTF8Mouse, true
	case 1006:
		return TerminalModeSGRMouse, true
	case 1007:
		return TerminalModeAlternateScroll, true
	case 1042:
		return TerminalModeUrgencyHints, true
	case 2004:
		return TerminalModeBracketedPaste, true
	}
	return 0, false
}

// saveDECModes/restoreDECModes implement XTSAVE/XTRESTORE (CSI ? Pm s / CSI ? Pm r),
// pushing/popping the on/off state of each named mode on its own stack.
func (p *Parser) saveDECModes() {
	p.term.mu.Lock()
	defer p.term.mu.Unlock()

	for i := 0; i < p.paramCount(); i++ {
		mode, ok := decPrivateMode(p.param(i, 0))
		if !ok {
			continue
		}
		// Wire constant n maps to internal bit 1<<(n-1).
		p.term.modeStacks[mode] = append(p.term.modeStacks[mode], p.term.modes&(1<<(mode-1)) != 0)
	}
}

func (p *Parser) restoreDECModes() {
	p.term.mu.Lock()
	var toSet, toUnset []TerminalMode
	for i := 0; i < p.paramCount(); i++ {
		mode, ok := decPrivateMode(p.param(i, 0))
		if !ok {
			continue
		}
		stack := p.term.modeStacks[mode]
		if len(stack) == 0 {
			continue
		}
		state := stack[len(stack)-1]
		p.term.modeStacks[mode] = stack[:len(stack)-1]
		if state {
			toSet = append(toSet, mode)
		} else {
			toUnset = append(toUnset, mode)
		}
	}
	p.term.mu.Unlock()

	for _, m := range toSet {
		p.term.SetMode(m)
	}
	for _, m := range toUnset {
		p.term.UnsetMode(m)
	}
}

// executeKittyKeyboard handles the Kitty keyboard protocol's CSI ... u family.
func (p *Parser) executeKittyKeyboard(priv byte) {
	switch priv {
	case '?':
		p.term.ReportKeyboardMode()
	case '>':
		p.term.PushKeyboardMode(KeyboardMode(p.param(0, 0)))
	case '<':
		p.term.PopKeyboardMode(p.paramMin1(0))
	case '=':
		behavior := KeyboardModeBehaviorReplace
		switch p.param(1, 1) {
		case 2:
			behavior = KeyboardModeBehaviorUnion
		case 3:
			behavior = KeyboardModeBehaviorDifference
		}
		p.term.SetKeyboardMode(KeyboardMode(p.param(0, 0)), behavior)
	default:
		p.term.RestoreCursorPosition()
	}
}

// executeWindowOp handles CSI Ps ; Ps ; Ps t (XTWINOPS), the subset we act on.
func (p *Parser) executeWindowOp() {
	switch WindowOp(p.param(0, 0)) {
	case WindowOpReportTextAreaSizePixels:
		p.term.TextAreaSizePixels()
	case WindowOpReportTextAreaSizeChars:
		p.term.TextAreaSizeChars()
	case WindowOpPushTitle:
		p.term.PushTitle()
	case WindowOpPopTitle:
		p.term.PopTitle()
	default:
		if p.param(0, 0) == 6 {
			p.term.CellSizePixels()
		}
	}
}

// executeSGR walks the parsed SGR parameters, applying each as a
// TerminalCharAttribute. Extended colors (38/48/58) accept both the
// colon-subparameter form (38:2:r:g:b) and the legacy semicolon form
// (38;2;r;g;b), which consumes the following main parameters.
func (p *Parser) executeSGR() {
	if p.paramCount() == 0 {
		p.term.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeReset})
		return
	}

	for i := 0; i < len(p.csiParams); i++ {
		n := p.csiParams[i]
		if n < 0 {
			n = 0
		}

		switch {
		case n == 0:
			p.term.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeReset})
		case n == 1:
			p.attr(CharAttributeBold)
		case n == 2:
			p.attr(CharAttributeFaint)
		case n == 3:
			p.attr(CharAttributeItalic)
		case n == 4:
			p.sgrUnderline(i)
		case n == 5:
			p.attr(CharAttributeBlinkSlow)
		case n == 6:
			p.attr(CharAttributeBlinkFast)
		case n == 7:
			p.attr(CharAttributeReverse)
		case n == 8:
			p.attr(CharAttributeHidden)
		case n == 9:
			p.attr(CharAttributeStrike)
		case n == 10:
			// Primary font: no per-cell font tracking, accepted and ignored.
		case n >= 11 && n <= 19:
			p.term.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeFont, Font: n - 10})
		case n == 21:
			p.attr(CharAttributeDoubleUnderline)
		case n == 22:
			p.attr(CharAttributeCancelBoldDim)
		case n == 23:
			p.attr(CharAttributeCancelItalic)
		case n == 24:
			p.attr(CharAttributeCancelUnderline)
		case n == 25:
			p.attr(CharAttributeCancelBlink)
		case n == 26:
			p.attr(CharAttributeProportionalSpacing)
		case n == 27:
			p.attr(CharAttributeCancelReverse)
		case n == 28:
			p.attr(CharAttributeCancelHidden)
		case n == 29:
			p.attr(CharAttributeCancelStrike)
		case n >= 30 && n <= 37:
			p.indexedColor(CharAttributeForeground, n-30)
		case n == 38:
			i = p.extendedColor(CharAttributeForeground, i)
		case n == 39:
			p.term.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeForeground})
		case n >= 40 && n <= 47:
			p.indexedColor(CharAttributeBackground, n-40)
		case n == 48:
			i = p.extendedColor(CharAttributeBackground, i)
		case n == 49:
			p.term.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeBackground})
		case n == 50:
			p.attr(CharAttributeCancelProportionalSpacing)
		case n == 51:
			p.attr(CharAttributeFramed)
		case n == 52:
			p.attr(CharAttributeEncircled)
		case n == 53:
			p.attr(CharAttributeOverlined)
		case n == 54:
			p.attr(CharAttributeCancelFramedEncircled)
		case n == 55:
			p.attr(CharAttributeCancelOverlined)
		case n == 58:
			i = p.extendedColor(CharAttributeUnderlineColor, i)
		case n == 59:
			p.term.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeUnderlineColor})
		case n == 73:
			p.attr(CharAttributeSuperscript)
		case n == 74:
			p.attr(CharAttributeSubscript)
		case n == 75:
			p.attr(CharAttributeCancelSuperSubscript)
		case n >= 90 && n <= 97:
			p.indexedColor(CharAttributeForeground, n-90+8)
		case n >= 100 && n <= 107:
			p.indexedColor(CharAttributeBackground, n-100+8)
		}
	}
}

func (p *Parser) attr(a CharAttribute) {
	p.term.SetTerminalCharAttribute(TerminalCharAttribute{Attr: a})
}

func (p *Parser) indexedColor(a CharAttribute, idx int) {
	p.term.SetTerminalCharAttribute(TerminalCharAttribute{
		Attr:         a,
		IndexedColor: &IndexedColorAttr{Index: uint8(idx)},
	})
}

// sgrUnderline handles SGR 4 and its colon-subparameter styles (4:0 - 4:5).
func (p *Parser) sgrUnderline(i int) {
	var subs []int
	if i < len(p.csiSubParams) {
		subs = p.csiSubParams[i]
	}
	if len(subs) == 0 {
		p.attr(CharAttributeUnderline)
		return
	}
	switch subs[0] {
	case 0:
		p.attr(CharAttributeCancelUnderline)
	case 2:
		p.attr(CharAttributeDoubleUnderline)
	case 3:
		p.attr(CharAttributeCurlyUnderline)
	case 4:
		p.attr(CharAttributeDottedUnderline)
	case 5:
		p.attr(CharAttributeDashedUnderline)
	default:
		p.attr(CharAttributeUnderline)
	}
}

// extendedColor parses SGR 38/48/58 in either colon or legacy semicolon form,
// starting at main-parameter index i. Returns the index of the last main
// parameter consumed (so the caller's loop can skip past it).
func (p *Parser) extendedColor(a CharAttribute, i int) int {
	var subs []int
	if i < len(p.csiSubParams) {
		subs = p.csiSubParams[i]
	}

	if len(subs) > 0 {
		switch subs[0] {
		case 2:
			if len(subs) >= 4 {
				p.term.SetTerminalCharAttribute(TerminalCharAttribute{
					Attr:     a,
					RGBColor: &RGBColorAttr{R: clampByte(subs[1]), G: clampByte(subs[2]), B: clampByte(subs[3])},
				})
			}
		case 5:
			if len(subs) >= 2 {
				p.indexedColor(a, subs[1])
			}
		}
		return i
	}

	// Legacy form: 38;5;N or 38;2;r;g;b, consuming following main parameters.
	if i+1 >= len(p.csiParams) {
		return i
	}
	switch p.csiParams[i+1] {
	case 5:
		if i+2 < len(p.csiParams) {
			p.indexedColor(a, p.csiParams[i+2])
			return i + 2
		}
	case 2:
		if i+4 < len(p.csiParams) {
			p.term.SetTerminalCharAttribute(TerminalCharAttribute{
				Attr: a,
				RGBColor: &RGBColorAttr{
					R: clampByte(p.csiParams[i+2]),
					G: clampByte(p.csiParams[i+3]),
					B: clampByte(p.csiParams[i+4]),
				},
			})
			return i + 4
		}
	}
	return i
}

func clampByte(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

// executeOSC parses and dispatches a completed OSC string body ("Ps;Pt...").
func (p *Parser) executeOSC(body string) {
	cmd, rest, ok := strings.Cut(body, ";")
	if !ok {
		cmd, rest = body, ""
	}

	switch cmd {
	case "0", "2":
		p.term.SetTitle(rest)
	case "1":
		p.term.SetIconName(rest)
	case "4":
		p.executeOSC4(rest)
	case "7":
		p.term.SetWorkingDirectory(rest)
	case "8":
		p.executeOSC8(rest)
	case "10", "11", "12":
		p.term.SetDynamicColor(cmd, 0, "\x1b\\")
	case "52":
		p.executeOSC52(rest)
	case "104":
		p.executeOSC104(rest)
	case "133":
		p.executeOSC133(rest)
	}
}

// executeOSC4 handles OSC 4 ; index ; spec (palette query/set), repeated pairwise.
func (p *Parser) executeOSC4(rest string) {
	fields := strings.Split(rest, ";")
	for i := 0; i+1 < len(fields); i += 2 {
		idx, err := parseIntField(fields[i])
		if err != nil {
			continue
		}
		if fields[i+1] == "?" {
			p.term.SetDynamicColor("4;"+fields[i], idx, "\x1b\\")
			continue
		}
		if c, ok := parseXParseColor(fields[i+1]); ok {
			p.term.SetColor(idx, c)
		}
	}
}

func (p *Parser) executeOSC104(rest string) {
	if rest == "" {
		return
	}
	for _, field := range strings.Split(rest, ";") {
		idx, err := parseIntField(field)
		if err != nil {
			continue
		}
		p.term.ResetColor(idx)
	}
}

// executeOSC8 handles OSC 8 ; params ; uri (hyperlink start/end).
func (p *Parser) executeOSC8(rest string) {
	_, uri, ok := strings.Cut(rest, ";")
	if !ok {
		uri = rest
	}
	if uri == "" {
		p.term.SetHyperlink(nil)
		return
	}
	p.term.SetHyperlink(&Hyperlink{ID: uri, URI: uri})
}

// executeOSC52 handles OSC 52 ; clipboard ; base64-data-or-"?".
func (p *Parser) executeOSC52(rest string) {
	clip, data, ok := strings.Cut(rest, ";")
	if !ok || clip == "" {
		return
	}
	c := clip[0]
	if data == "?" {
		p.term.ClipboardLoad(c, "\x1b\\")
		return
	}
	p.term.ClipboardStore(c, []byte(data))
}

// executeOSC133 handles OSC 133 ; A/B/C/D (shell integration semantic prompt marks).
func (p *Parser) executeOSC133(rest string) {
	kind, arg, _ := strings.Cut(rest, ";")
	var mark ShellIntegrationMark
	switch kind {
	case "A":
		mark = PromptStart
	case "B":
		mark = CommandStart
	case "C":
		mark = CommandExecuted
	case "D":
		exitCode := -1
		if arg != "" {
			if n, err := parseIntField(arg); err == nil {
				exitCode = n
			}
		}
		p.term.ShellIntegrationMark(CommandFinished, exitCode)
		return
	default:
		return
	}
	p.term.ShellIntegrationMark(mark, -1)
}

// executeDCS handles a completed DCS body. The only DCS sequence we act on is
// DECRQSS (ESC P $ q Pt ST): the body here is "$q" followed by the selector.
func (p *Parser) executeDCS(body string) {
	if !strings.HasPrefix(body, "$q") {
		return
	}
	selector := body[2:]

	switch selector {
	case "m":
		p.term.writeResponseString("\x1bP1$r" + p.term.CurrentSGR() + "m\x1b\\")
	case "r":
		top, bottom := p.term.ScrollRegion()
		p.term.writeResponseString("\x1bP1$r" + strconv.Itoa(top+1) + ";" + strconv.Itoa(bottom) + "r\x1b\\")
	default:
		p.term.writeResponseString("\x1bP0$r\x1b\\")
	}
}

func parseIntField(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// parseXParseColor parses the subset of XParseColor syntax terminals
// actually receive in OSC color specs: "#RRGGBB" and "rgb:RR/GG/BB"
// (each component 1-4 hex digits, taking the high byte when wider than 8 bits).
func parseXParseColor(spec string) (color.Color, bool) {
	if strings.HasPrefix(spec, "#") && len(spec) == 7 {
		r, err1 := strconv.ParseUint(spec[1:3], 16, 8)
		g, err2 := strconv.ParseUint(spec[3:5], 16, 8)
		b, err3 := strconv.ParseUint(spec[5:7], 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, false
		}
		return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, true
	}

	if strings.HasPrefix(spec, "rgb:") {
		parts := strings.Split(spec[4:], "/")
		if len(parts) != 3 {
			return nil, false
		}
		comps := make([]uint8, 3)
		for i, part := range parts {
			if len(part) == 0 || len(part) > 4 {
				return nil, false
			}
			v, err := strconv.ParseUint(part, 16, 32)
			if err != nil {
				return nil, false
			}
			// Scale to 8 bits regardless of the source component width.
			bits := len(part) * 4
			if bits >= 8 {
				comps[i] = uint8(v >> uint(bits-8))
			} else {
				comps[i] = uint8(v << uint(8-bits))
			}
		}
		return color.RGBA{R: comps[0], G: comps[1], B: comps[2], A: 255}, true
	}

	return nil, false
}
