// Package cli hosts a PurrView engine view inside an actual CLI
// terminal.
//
// The package draws the engine's cell grid onto the host terminal with
// ANSI escape sequences and feeds host keystrokes back to the engine
// through the input encoder. The engine itself lives behind the
// purrview.Engine contract; this package never interprets terminal
// output, it only paints cells and encodes keys.
//
// # Features
//
//   - Full-frame cell rendering batched into one write per frame
//   - True color (24-bit) output with a 256-color fallback
//   - Erase byte normalization: the host's Backspace is re-encoded
//     through the session's erase profile
//   - Window sizing that tracks the host terminal (SIGWINCH)
//   - Hosted cursor: the host terminal's own cursor is parked on the
//     engine's cursor cell
//   - Key interception hook for embedding programs
//
// # Basic Usage
//
//	import "github.com/phroun/purrview/cli"
//
//	opts := cli.Options{
//	    AutoSize: true, // fill the host terminal
//	}
//
//	term, err := cli.New(engine, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start the terminal (enters raw mode)
//	if err := term.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer term.Stop()
//
//	// Reserve a quit key; everything else goes to the engine.
//	term.SetKeyCallback(func(ev purrview.KeyEvent) bool {
//	    if ev.Code == purrview.KeyRune && ev.Ctrl && ev.Rune == 'q' {
//	        go term.Stop()
//	        return true
//	    }
//	    return false
//	})
//
//	term.Wait()
//
// # Architecture
//
// The package consists of three main components:
//
//   - Terminal: owns the raw-mode lifecycle and serializes the render
//     and input goroutines over one engine session
//   - Surface: paints pipeline draw calls as ANSI sequences at cell
//     resolution, one buffered write per frame
//   - InputHandler: reads raw input, parses escape sequences into key
//     events, and feeds them to the encoder
//
// The Terminal wraps the core purrview.Session, Geometry, Pipeline,
// and Encoder, so view behavior is identical across the Qt, GTK, TUI,
// and CLI adapters.
package cli
