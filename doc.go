// Package termemu implements the parser and screen model at the core of a
// terminal emulator: given bytes from a PTY it recognizes ECMA-48/VT/xterm
// control sequences, applies their effect to an in-memory screen, and emits
// well-formed responses for device-status style queries.
//
// This package has no display of its own, which makes it useful for:
//   - Driving terminal applications in tests without a GUI
//   - Building terminal multiplexers, recorders, and web terminals
//   - Screen scraping and automation
//
// # Quick Start
//
//	term := termemu.New()
//	term.WriteString("\x1b[31mHello \x1b[32mWorld\x1b[0m!")
//	fmt.Println(term.String()) // "Hello World!"
//
// # Architecture
//
// The package is organized around these core types:
//
//   - [Parser]: byte-level state machine that recognizes control sequences
//     and calls the matching [Terminal] methods directly
//   - [Terminal]: the screen model (cursor, SGR state, scroll region, alt
//     screen, tab stops, charsets, title stacks) plus the handler methods
//     that turn recognized messages into buffer mutations
//   - [Buffer]: a 2D grid of cells with scrollback support
//   - [Cell]: a single grapheme with colors, attributes, and protection
//
// # Terminal
//
// Terminal implements [io.Writer], so raw PTY bytes can be written directly:
//
//	term := termemu.New(
//	    termemu.WithSize(24, 80),
//	    termemu.WithScrollback(storage),
//	    termemu.WithResponse(ptyWriter),
//	)
//
//	cmd := exec.Command("ls", "-la", "--color")
//	cmd.Stdout = term
//	cmd.Run()
//
//	for row := 0; row < term.Rows(); row++ {
//	    fmt.Println(term.LineContent(row))
//	}
//
// # Dual Buffers
//
// Terminal maintains two buffers:
//
//   - Primary buffer: normal mode, with optional scrollback storage
//   - Alternate buffer: used by full-screen apps (vim, less, htop); never
//     contributes to scrollback
//
//	if term.IsAlternateScreen() {
//	    // full-screen app is running
//	}
//
// # Colors
//
// Cell colors are stored using Go's [image/color] interface, supporting
// default, named (16), indexed (256), and 24-bit RGB colors.
// [Terminal.Snapshot] reports them resolved to hex RGB strings.
//
// # Scrollback
//
// Lines scrolled off the top of the primary buffer are retained up to a
// configurable capacity:
//
//	storage := termemu.NewMemoryScrollback(1000)
//	term := termemu.New(termemu.WithScrollback(storage))
//
//	for i := 0; i < term.ScrollbackLen(); i++ {
//	    line := term.ScrollbackLine(i)
//	}
//
// # Providers
//
// Providers handle terminal events and queries external to the screen
// model. All are optional, defaulting to no-ops:
//
//   - [BellProvider]: bell/beep events
//   - [TitleProvider]: window title changes (OSC 0/2); icon name changes
//     (OSC 1) are not reported to it
//   - [ClipboardProvider]: clipboard operations (OSC 52)
//   - [ScrollbackProvider]: storage for lines scrolled off screen
//   - [WorkingDirectoryProvider]: current working directory (OSC 7)
//   - [ShellIntegrationProvider]: semantic prompt marks (OSC 133)
//
// # Tracing
//
// [WithTracer] stores an optional [Tracer] on the terminal. The parser does
// not call it, so no [TraceRecord] is emitted and dispatch is unaffected:
//
//	term := termemu.New(termemu.WithTracer(myTracer))
//
// # Thread Safety
//
// All Terminal methods are safe for concurrent use via an internal
// [sync.RWMutex]. [Parser.Push] and the dispatch it triggers run
// synchronously to completion before returning, per the single-threaded
// cooperative model described in the package's specification.
package termemu
