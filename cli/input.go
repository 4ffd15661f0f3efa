package cli

import (
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/phroun/purrview"
)

// maxSequence bounds buffered escape-sequence bytes. Anything longer
// is not a key and gets dropped.
const maxSequence = 32

// pollTimeoutMs is the stdin poll interval. It doubles as the grace
// period after which a lone ESC byte is taken as the Escape key rather
// than the start of a sequence.
const pollTimeoutMs = 50

// InputHandler reads raw bytes from the host terminal and turns them
// into key events. The host already speaks the same encoding the
// engine expects, but the round trip through key events is deliberate:
// it normalizes the host's erase byte to the session's erase profile
// and gives the embedding program one interception point for hotkeys.
type InputHandler struct {
	term    *Terminal
	pending []byte
}

// NewInputHandler creates an input handler feeding the terminal.
func NewInputHandler(term *Terminal) *InputHandler {
	return &InputHandler{
		term:    term,
		pending: make([]byte, 0, maxSequence),
	}
}

// InputLoop reads and processes stdin until the terminal stops. The
// poll timeout keeps the loop interruptible; a blocking read would pin
// the goroutine past Stop.
func (h *InputHandler) InputLoop() {
	fd := int(os.Stdin.Fd())
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	buf := make([]byte, 256)

	for {
		select {
		case <-h.term.stopRender:
			return
		default:
		}

		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return
		}
		if n == 0 {
			h.flushPending()
			continue
		}

		rn, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if rn > 0 {
			h.Feed(buf[:rn])
		}
	}
}

// Feed parses raw input bytes into key events and dispatches them.
// Incomplete trailing sequences stay buffered for the next read.
func (h *InputHandler) Feed(data []byte) {
	h.pending = append(h.pending, data...)
	for len(h.pending) > 0 {
		ev, n, ok := parseKey(h.pending)
		if n == 0 {
			if len(h.pending) > maxSequence {
				h.pending = h.pending[:0]
			}
			return
		}
		h.pending = h.pending[n:]
		if ok {
			h.term.handleKey(ev)
		}
	}
}

// flushPending resolves input that stalled mid-sequence once the poll
// timeout says no more bytes are coming. A leading ESC becomes the
// Escape key and the remainder is re-fed; anything else unparseable is
// advanced past one byte at a time.
func (h *InputHandler) flushPending() {
	if len(h.pending) == 0 {
		return
	}
	rest := append([]byte(nil), h.pending[1:]...)
	first := h.pending[0]
	h.pending = h.pending[:0]
	if first == 0x1b {
		h.term.handleKey(purrview.KeyEvent{Code: purrview.KeyEscape})
	}
	if len(rest) > 0 {
		h.Feed(rest)
	}
}

// parseKey consumes one key event from the front of buf. It returns
// the bytes consumed, zero when the buffer holds an incomplete
// sequence, and whether a dispatchable event was produced. Consumed
// bytes with ok false are recognized but unmapped input.
func parseKey(buf []byte) (ev purrview.KeyEvent, n int, ok bool) {
	if len(buf) == 0 {
		return purrview.KeyEvent{}, 0, false
	}
	if buf[0] != 0x1b {
		return parsePlainKey(buf)
	}
	if len(buf) < 2 {
		return purrview.KeyEvent{}, 0, false
	}
	switch buf[1] {
	case '[':
		return parseCSIKey(buf)
	case 'O':
		return parseSS3Key(buf)
	case 0x1b:
		return purrview.KeyEvent{Code: purrview.KeyEscape}, 1, true
	}
	ev, n, ok = parsePlainKey(buf[1:])
	if n == 0 {
		return purrview.KeyEvent{}, 0, false
	}
	ev.Alt = true
	return ev, n + 1, ok
}

// parsePlainKey handles everything outside escape sequences: control
// bytes and UTF-8 text. Both erase bytes normalize to Backspace, so
// the session's erase profile decides what goes to the engine.
func parsePlainKey(buf []byte) (purrview.KeyEvent, int, bool) {
	b := buf[0]
	switch b {
	case 0x0d:
		return purrview.KeyEvent{Code: purrview.KeyEnter}, 1, true
	case 0x09:
		return purrview.KeyEvent{Code: purrview.KeyTab}, 1, true
	case 0x7f, 0x08:
		return purrview.KeyEvent{Code: purrview.KeyBackspace}, 1, true
	}
	if b >= 0x01 && b <= 0x1a {
		return purrview.KeyEvent{Code: purrview.KeyRune, Rune: rune('a' + b - 1), Ctrl: true}, 1, true
	}
	if b < 0x20 {
		return purrview.KeyEvent{}, 1, false
	}
	if !utf8.FullRune(buf) {
		return purrview.KeyEvent{}, 0, false
	}
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size == 1 {
		return purrview.KeyEvent{}, 1, false
	}
	return purrview.KeyEvent{Code: purrview.KeyRune, Rune: r}, size, true
}

// parseCSIKey parses ESC [ params final.
func parseCSIKey(buf []byte) (purrview.KeyEvent, int, bool) {
	i := 2
	for ; i < len(buf); i++ {
		c := buf[i]
		if c >= 0x40 && c <= 0x7e {
			break
		}
		if !(c >= '0' && c <= '9' || c == ';') {
			return purrview.KeyEvent{}, i + 1, false
		}
	}
	if i == len(buf) {
		if i > maxSequence {
			return purrview.KeyEvent{}, i, false
		}
		return purrview.KeyEvent{}, 0, false
	}
	final := buf[i]
	n := i + 1

	num, mod := splitParams(string(buf[2:i]))
	ev := purrview.KeyEvent{
		Ctrl: mod&4 != 0,
		Alt:  mod&2 != 0,
	}
	switch final {
	case 'A':
		ev.Code = purrview.KeyUp
	case 'B':
		ev.Code = purrview.KeyDown
	case 'C':
		ev.Code = purrview.KeyRight
	case 'D':
		ev.Code = purrview.KeyLeft
	case 'H':
		ev.Code = purrview.KeyHome
	case 'F':
		ev.Code = purrview.KeyEnd
	case '~':
		code, known := tildeKeyCode(num)
		if !known {
			return purrview.KeyEvent{}, n, false
		}
		ev.Code = code
	default:
		return purrview.KeyEvent{}, n, false
	}
	return ev, n, true
}

// parseSS3Key parses ESC O final, the application-mode encoding some
// hosts use for cursor and function keys.
func parseSS3Key(buf []byte) (purrview.KeyEvent, int, bool) {
	if len(buf) < 3 {
		return purrview.KeyEvent{}, 0, false
	}
	ev := purrview.KeyEvent{}
	switch buf[2] {
	case 'A':
		ev.Code = purrview.KeyUp
	case 'B':
		ev.Code = purrview.KeyDown
	case 'C':
		ev.Code = purrview.KeyRight
	case 'D':
		ev.Code = purrview.KeyLeft
	case 'H':
		ev.Code = purrview.KeyHome
	case 'F':
		ev.Code = purrview.KeyEnd
	case 'P':
		ev.Code = purrview.KeyF1
	case 'Q':
		ev.Code = purrview.KeyF2
	case 'R':
		ev.Code = purrview.KeyF3
	case 'S':
		ev.Code = purrview.KeyF4
	default:
		return purrview.KeyEvent{}, 3, false
	}
	return ev, 3, true
}

// splitParams splits CSI parameters "num" or "num;modifier" and
// returns the modifier as its bitmask (shift 1, alt 2, ctrl 4).
func splitParams(s string) (num, mod int) {
	if s == "" {
		return 0, 0
	}
	parts := strings.Split(s, ";")
	num, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		if m, err := strconv.Atoi(parts[1]); err == nil && m > 1 {
			mod = m - 1
		}
	}
	return num, mod
}

// tildeKeyCode maps the leading parameter of a tilde-terminated CSI
// sequence to its key. Both the legacy F-key numbers (11-14) and the
// modern ones (15-24) are accepted.
func tildeKeyCode(num int) (purrview.KeyCode, bool) {
	switch num {
	case 1, 7:
		return purrview.KeyHome, true
	case 2:
		return purrview.KeyInsert, true
	case 3:
		return purrview.KeyDelete, true
	case 4, 8:
		return purrview.KeyEnd, true
	case 5:
		return purrview.KeyPageUp, true
	case 6:
		return purrview.KeyPageDown, true
	case 11:
		return purrview.KeyF1, true
	case 12:
		return purrview.KeyF2, true
	case 13:
		return purrview.KeyF3, true
	case 14:
		return purrview.KeyF4, true
	case 15:
		return purrview.KeyF5, true
	case 17:
		return purrview.KeyF6, true
	case 18:
		return purrview.KeyF7, true
	case 19:
		return purrview.KeyF8, true
	case 20:
		return purrview.KeyF9, true
	case 21:
		return purrview.KeyF10, true
	case 23:
		return purrview.KeyF11, true
	case 24:
		return purrview.KeyF12, true
	default:
		return purrview.KeyRune, false
	}
}
