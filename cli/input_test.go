package cli

import (
	"strings"
	"testing"

	"github.com/phroun/purrview"
	"github.com/phroun/purrview/enginetest"
)

func newTestTerminal(t *testing.T, opts Options) (*Terminal, *enginetest.Script) {
	t.Helper()
	if opts.Columns == 0 {
		opts.Columns = 10
	}
	if opts.Rows == 0 {
		opts.Rows = 3
	}
	engine := enginetest.NewScript(1, 1)
	term, err := New(engine, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return term, engine
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   purrview.KeyEvent
		wantN  int
		wantOK bool
	}{
		{"plain letter", "a", purrview.KeyEvent{Code: purrview.KeyRune, Rune: 'a'}, 1, true},
		{"utf8 rune", "猫", purrview.KeyEvent{Code: purrview.KeyRune, Rune: '猫'}, 3, true},
		{"enter", "\r", purrview.KeyEvent{Code: purrview.KeyEnter}, 1, true},
		{"tab", "\t", purrview.KeyEvent{Code: purrview.KeyTab}, 1, true},
		{"del byte", "\x7f", purrview.KeyEvent{Code: purrview.KeyBackspace}, 1, true},
		{"bs byte", "\x08", purrview.KeyEvent{Code: purrview.KeyBackspace}, 1, true},
		{"ctrl letter", "\x03", purrview.KeyEvent{Code: purrview.KeyRune, Rune: 'c', Ctrl: true}, 1, true},
		{"arrow up", "\x1b[A", purrview.KeyEvent{Code: purrview.KeyUp}, 3, true},
		{"home", "\x1b[H", purrview.KeyEvent{Code: purrview.KeyHome}, 3, true},
		{"ctrl right", "\x1b[1;5C", purrview.KeyEvent{Code: purrview.KeyRight, Ctrl: true}, 6, true},
		{"alt down", "\x1b[1;3B", purrview.KeyEvent{Code: purrview.KeyDown, Alt: true}, 6, true},
		{"delete", "\x1b[3~", purrview.KeyEvent{Code: purrview.KeyDelete}, 4, true},
		{"page up", "\x1b[5~", purrview.KeyEvent{Code: purrview.KeyPageUp}, 4, true},
		{"legacy f1", "\x1b[11~", purrview.KeyEvent{Code: purrview.KeyF1}, 5, true},
		{"f5", "\x1b[15~", purrview.KeyEvent{Code: purrview.KeyF5}, 5, true},
		{"f12", "\x1b[24~", purrview.KeyEvent{Code: purrview.KeyF12}, 5, true},
		{"ss3 f1", "\x1bOP", purrview.KeyEvent{Code: purrview.KeyF1}, 3, true},
		{"ss3 up", "\x1bOA", purrview.KeyEvent{Code: purrview.KeyUp}, 3, true},
		{"alt letter", "\x1bx", purrview.KeyEvent{Code: purrview.KeyRune, Rune: 'x', Alt: true}, 2, true},
		{"double escape", "\x1b\x1b", purrview.KeyEvent{Code: purrview.KeyEscape}, 1, true},
		{"unknown csi final consumed", "\x1b[Z", purrview.KeyEvent{}, 3, false},
		{"unknown tilde code consumed", "\x1b[99~", purrview.KeyEvent{}, 5, false},
		{"unmapped control consumed", "\x00", purrview.KeyEvent{}, 1, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev, n, ok := parseKey([]byte(tt.input))
			if n != tt.wantN || ok != tt.wantOK {
				t.Fatalf("parseKey(%q) = (n=%d, ok=%v), want (n=%d, ok=%v)", tt.input, n, ok, tt.wantN, tt.wantOK)
			}
			if ok && ev != tt.want {
				t.Errorf("parseKey(%q) = %+v, want %+v", tt.input, ev, tt.want)
			}
		})
	}
}

func TestParseKeyIncomplete(t *testing.T) {
	t.Parallel()

	// Partial sequences consume nothing and wait for more bytes.
	for _, input := range []string{"\x1b", "\x1b[", "\x1b[1;5", "\x1bO", "\xe7"} {
		if _, n, _ := parseKey([]byte(input)); n != 0 {
			t.Errorf("parseKey(%q) consumed %d bytes, want 0", input, n)
		}
	}
}

func TestFeedForwardsToEngine(t *testing.T) {
	t.Parallel()

	term, engine := newTestTerminal(t, Options{})

	term.input.Feed([]byte("hi"))
	if got := string(engine.Written()); got != "hi" {
		t.Errorf("engine received %q, want %q", got, "hi")
	}

	term.input.Feed([]byte("\x1b[A"))
	if got := string(engine.Written()); got != "hi\x1b[A" {
		t.Errorf("engine received %q, want arrow appended", got)
	}
}

func TestFeedNormalizesEraseByte(t *testing.T) {
	t.Parallel()

	// The host sends DEL; the engine's profile wants BS. The round
	// trip through key events converts it.
	term, engine := newTestTerminal(t, Options{Erase: purrview.EraseBS})
	term.input.Feed([]byte{0x7f})
	if got := engine.Written(); len(got) != 1 || got[0] != 0x08 {
		t.Errorf("engine received %q, want 0x08", got)
	}
}

func TestFeedBuffersIncompleteSequence(t *testing.T) {
	t.Parallel()

	term, engine := newTestTerminal(t, Options{})

	term.input.Feed([]byte("\x1b["))
	if got := engine.Written(); len(got) != 0 {
		t.Fatalf("engine received %q before the sequence completed", got)
	}

	term.input.Feed([]byte("A"))
	if got := string(engine.Written()); got != "\x1b[A" {
		t.Errorf("engine received %q, want the completed arrow", got)
	}
}

func TestFlushPendingResolvesBareEscape(t *testing.T) {
	t.Parallel()

	term, engine := newTestTerminal(t, Options{})

	term.input.Feed([]byte{0x1b})
	if got := engine.Written(); len(got) != 0 {
		t.Fatalf("engine received %q while the escape was ambiguous", got)
	}

	// The poll timeout fires with no further bytes: the ESC was the
	// Escape key.
	term.input.flushPending()
	if got := string(engine.Written()); got != "\x1b" {
		t.Errorf("engine received %q, want a lone escape", got)
	}
}

func TestFeedDropsOversizeSequence(t *testing.T) {
	t.Parallel()

	term, engine := newTestTerminal(t, Options{})

	term.input.Feed([]byte("\x1b[" + strings.Repeat("1;", 20)))
	if got := engine.Written(); len(got) != 0 {
		t.Fatalf("engine received %q from an oversize sequence", got)
	}

	// The parser recovered; ordinary input still works.
	term.input.Feed([]byte("x"))
	if got := string(engine.Written()); got != "x" {
		t.Errorf("engine received %q after recovery, want %q", got, "x")
	}
}

func TestKeyCallbackIntercepts(t *testing.T) {
	t.Parallel()

	term, engine := newTestTerminal(t, Options{})
	term.SetKeyCallback(func(ev purrview.KeyEvent) bool {
		return ev.Code == purrview.KeyRune && ev.Rune == 'q'
	})

	term.input.Feed([]byte("aqb"))
	if got := string(engine.Written()); got != "ab" {
		t.Errorf("engine received %q, want %q with the hotkey consumed", got, "ab")
	}
}
