package termemu

// This file defines the message/attribute vocabulary the parser decodes
// bytes into and the dispatcher (handler.go) acts on. It stands in for the
// wire-format types an external decoder package would otherwise supply;
// here they're owned by the module so parsing and dispatch both live in
// one place.

// ClearMode selects which part of the screen an erase-display operation affects (ED).
type ClearMode int

const (
	ClearModeBelow ClearMode = iota
	ClearModeAbove
	ClearModeAll
	ClearModeSaved
)

// LineClearMode selects which part of a line an erase-line operation affects (EL).
type LineClearMode int

const (
	LineClearModeRight LineClearMode = iota
	LineClearModeLeft
	LineClearModeAll
)

// TabulationClearMode selects which tab stops a tab-clear operation affects (TBC).
type TabulationClearMode int

const (
	TabulationClearModeCurrent TabulationClearMode = iota
	TabulationClearModeAll
)

// KeyboardMode is a bitmask of Kitty keyboard protocol flags.
type KeyboardMode uint8

const (
	KeyboardModeNoMode KeyboardMode = 0
	KeyboardModeDisambiguateEscapeCodes KeyboardMode = 1 << (iota - 1)
	KeyboardModeReportEventTypes
	KeyboardModeReportAlternateKeys
	KeyboardModeReportAllKeysAsEscapeCodes
	KeyboardModeReportAssociatedText
)

// KeyboardModeBehavior selects how a new keyboard mode combines with the current one.
type KeyboardModeBehavior int

const (
	KeyboardModeBehaviorReplace KeyboardModeBehavior = iota
	KeyboardModeBehaviorUnion
	KeyboardModeBehaviorDifference
)

// ModifyOtherKeys controls the xterm modifyOtherKeys resource.
type ModifyOtherKeys int

const (
	ModifyOtherKeysReset ModifyOtherKeys = iota
	ModifyOtherKeysEnable
	ModifyOtherKeysEnableExceptWellDefined
)

// CharAttribute identifies an individual SGR (Select Graphic Rendition) code.
type CharAttribute int

const (
	CharAttributeReset CharAttribute = iota
	CharAttributeBold
	CharAttributeDim
	CharAttributeItalic
	CharAttributeUnderline
	CharAttributeDoubleUnderline
	CharAttributeCurlyUnderline
	CharAttributeDottedUnderline
	CharAttributeDashedUnderline
	CharAttributeBlinkSlow
	CharAttributeBlinkFast
	CharAttributeReverse
	CharAttributeHidden
	CharAttributeStrike
	CharAttributeCancelBold
	CharAttributeCancelBoldDim
	CharAttributeCancelItalic
	CharAttributeCancelUnderline
	CharAttributeCancelBlink
	CharAttributeCancelReverse
	CharAttributeCancelHidden
	CharAttributeCancelStrike
	CharAttributeForeground
	CharAttributeBackground
	CharAttributeUnderlineColor
	// Attributes added beyond the teacher's original taxonomy.
	CharAttributeFaint
	CharAttributeFont
	CharAttributeFramed
	CharAttributeEncircled
	CharAttributeOverlined
	CharAttributeCancelFramedEncircled
	CharAttributeCancelOverlined
	CharAttributeSuperscript
	CharAttributeSubscript
	CharAttributeCancelSuperSubscript
	CharAttributeProportionalSpacing
	CharAttributeCancelProportionalSpacing
)

// RGBColorAttr is a concrete 24-bit color carried in a TerminalCharAttribute.
type RGBColorAttr struct {
	R, G, B uint8
}

// IndexedColorAttr references a palette slot carried in a TerminalCharAttribute.
type IndexedColorAttr struct {
	Index uint8
}

// NamedColorAttr references one of the 16 ANSI colors carried in a TerminalCharAttribute.
type NamedColorAttr struct {
	Name int
}

// TerminalCharAttribute is one parsed SGR parameter, with an optional color payload
// for the foreground/background/underline-color attributes.
type TerminalCharAttribute struct {
	Attr         CharAttribute
	Font         int
	RGBColor     *RGBColorAttr
	IndexedColor *IndexedColorAttr
	NamedColor   *NamedColorAttr
}

// ShellIntegrationMark identifies an OSC 133 semantic prompt boundary.
type ShellIntegrationMark int

const (
	PromptStart ShellIntegrationMark = iota
	CommandStart
	CommandExecuted
	CommandFinished
)

// WindowOp identifies a CSI ... t window manipulation operation (subset we act on).
type WindowOp int

const (
	WindowOpReportTextAreaSizePixels WindowOp = 14
	WindowOpReportTextAreaSizeChars  WindowOp = 18
	WindowOpPushTitle                WindowOp = 22
	WindowOpPopTitle                 WindowOp = 23
)

// DecrqssRequest identifies a DECRQSS (request selection or setting) query selector.
type DecrqssRequest int

const (
	DecrqssUnknown DecrqssRequest = iota
	DecrqssSGR                    // "m"
	DecrqssDECSTBM                // "r"
)
