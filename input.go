package purrview

// KeyCode identifies a key event. KeyRune is a printable key carrying
// its code point; the rest are hard keys with fixed encodings.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// KeyEvent is one key press as delivered by a frontend, already
// normalized out of the toolkit's event type. Only key-down events
// reach the encoder.
type KeyEvent struct {
	Code KeyCode
	Rune rune
	Ctrl bool
	Alt  bool
}

// EraseMode selects the byte sent for Backspace and Delete. Engines
// disagree on which erase byte their line discipline expects, so the
// choice is made once at session setup and never varies by code path.
type EraseMode uint8

const (
	EraseDEL EraseMode = iota // DEL (0x7F), the default
	EraseBS                   // BS (0x08)
)

// Byte returns the erase byte for the mode.
func (m EraseMode) Byte() byte {
	if m == EraseBS {
		return 0x08
	}
	return 0x7F
}

// EncodeKey translates one key event into the raw bytes the engine
// expects, or nil when the event has no encoding (bare modifiers,
// unmapped keys). It is a pure function; the Encoder adds the session
// write and refresh side effects around it.
func EncodeKey(ev KeyEvent, erase EraseMode) []byte {
	switch ev.Code {
	case KeyRune:
		return encodeRune(ev.Rune, ev.Ctrl, ev.Alt)
	case KeyEnter:
		return []byte{0x0D}
	case KeyBackspace, KeyDelete:
		return []byte{erase.Byte()}
	case KeyTab:
		return []byte{0x09}
	case KeyEscape:
		return []byte{0x1B}
	case KeyUp:
		return []byte("\x1b[A")
	case KeyDown:
		return []byte("\x1b[B")
	case KeyRight:
		return []byte("\x1b[C")
	case KeyLeft:
		return []byte("\x1b[D")
	case KeyHome:
		return []byte("\x1b[H")
	case KeyEnd:
		return []byte("\x1b[F")
	case KeyPageUp:
		return []byte("\x1b[5~")
	case KeyPageDown:
		return []byte("\x1b[6~")
	case KeyInsert:
		return []byte("\x1b[2~")
	case KeyF1:
		return []byte("\x1bOP")
	case KeyF2:
		return []byte("\x1bOQ")
	case KeyF3:
		return []byte("\x1bOR")
	case KeyF4:
		return []byte("\x1bOS")
	case KeyF5:
		return []byte("\x1b[15~")
	case KeyF6:
		return []byte("\x1b[17~")
	case KeyF7:
		return []byte("\x1b[18~")
	case KeyF8:
		return []byte("\x1b[19~")
	case KeyF9:
		return []byte("\x1b[20~")
	case KeyF10:
		return []byte("\x1b[21~")
	case KeyF11:
		return []byte("\x1b[23~")
	case KeyF12:
		return []byte("\x1b[24~")
	default:
		return nil
	}
}

// forwardDeleteSeq erases one unit after the cursor. There is no single
// forward-erase byte, so forward surrounding deletion uses the Delete
// key's CSI sequence per unit.
var forwardDeleteSeq = []byte("\x1b[3~")

// encodeRune encodes a printable key. A latched control modifier turns
// a lone alphabetic rune into its control byte; every other rune keeps
// its literal encoding. Alt prefixes ESC.
func encodeRune(r rune, ctrl, alt bool) []byte {
	var data []byte
	if b, ok := controlByte(r); ctrl && ok {
		data = []byte{b}
	} else {
		data = []byte(string(r))
	}
	if alt {
		data = append([]byte{0x1B}, data...)
	}
	return data
}

// controlByte maps an alphabetic rune to its control-modifier byte
// ('a' or 'A' to 0x01 through 'z'/'Z' to 0x1A). Non-alphabetic runes
// bypass the transform.
func controlByte(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r-'a') + 1, true
	case r >= 'A' && r <= 'Z':
		return byte(r-'A') + 1, true
	default:
		return 0, false
	}
}

// Encoder turns key, composition, and deletion events into engine
// bytes. It is a two-state machine, idle or composing, whose only
// state is the composition buffer: the provisional text a predictive
// input method has supplied but not yet committed. Nothing else reads
// or writes that buffer.
//
// Every successful encode performs exactly one session write and one
// refresh request; events that encode to nothing do neither.
type Encoder struct {
	session     *Session
	erase       EraseMode
	composing   []rune
	ctrlLatched bool
	refresh     func()
}

// NewEncoder returns an encoder writing through the given session,
// with the DEL erase profile.
func NewEncoder(session *Session) *Encoder {
	return &Encoder{session: session, erase: EraseDEL}
}

// SetEraseMode selects the erase profile. Callers set it once during
// session setup, alongside engine creation.
func (e *Encoder) SetEraseMode(m EraseMode) {
	e.erase = m
}

// SetRefreshCallback registers the display refresh request that
// follows each successful encode.
func (e *Encoder) SetRefreshCallback(fn func()) {
	e.refresh = fn
}

// SetControlLatched sets the sticky control modifier used by hosts
// whose input method delivers text without per-event modifiers (a soft
// keyboard's ctrl key). While latched, any single alphabetic character
// forwarded through the text path is control-transformed. Clearing the
// latch after one use is the host's policy, not the encoder's.
func (e *Encoder) SetControlLatched(on bool) {
	e.ctrlLatched = on
}

// ControlLatched reports the sticky control modifier state.
func (e *Encoder) ControlLatched() bool {
	return e.ctrlLatched
}

// Composing reports whether provisional text is pending.
func (e *Encoder) Composing() bool {
	return len(e.composing) > 0
}

// SetComposingText replaces the provisional text. When the new text is
// longer than the buffer, the appended tail is forwarded immediately
// as committed bytes; when shorter or equal, nothing is emitted and
// the buffer just shrinks or is replaced. This length-only diff does
// not detect edits inside the provisional text; such edits forward
// nothing until the composition grows again. That is a documented
// limitation of the protocol, not a case to special-handle.
func (e *Encoder) SetComposingText(text string) {
	next := []rune(text)
	if len(next) > len(e.composing) {
		e.forwardText(string(next[len(e.composing):]))
	}
	e.composing = next
}

// FinishComposing ends composition. The buffer contents were already
// forwarded incrementally, so nothing is re-sent.
func (e *Encoder) FinishComposing() {
	e.composing = e.composing[:0]
}

// CommitText handles committed text from the input method. If a
// composition is pending its bytes were already flushed, so the commit
// only clears the buffer; otherwise the text is forwarded directly.
func (e *Encoder) CommitText(text string) {
	if len(e.composing) > 0 {
		e.composing = e.composing[:0]
		return
	}
	e.forwardText(text)
}

// Key encodes a hard key event and reports whether it was handled.
// Frontends return unhandled events to their toolkit. A latched
// control modifier counts as Ctrl for printable keys.
func (e *Encoder) Key(ev KeyEvent) bool {
	if ev.Code == KeyRune && e.ctrlLatched {
		ev.Ctrl = true
	}
	data := EncodeKey(ev, e.erase)
	if data == nil {
		return false
	}
	e.send(data)
	return true
}

// DeleteSurrounding erases text around the cursor at the input
// method's request: one erase byte per unit before the cursor, one
// forward-delete sequence per unit after. The whole request is one
// encode, so it costs one write and one refresh.
func (e *Encoder) DeleteSurrounding(before, after int) {
	if before <= 0 && after <= 0 {
		return
	}
	var data []byte
	for i := 0; i < before; i++ {
		data = append(data, e.erase.Byte())
	}
	for i := 0; i < after; i++ {
		data = append(data, forwardDeleteSeq...)
	}
	e.send(data)
}

// forwardText sends printable text, applying the control transform
// when the latch is set and exactly one alphabetic character is being
// forwarded. Multi-character forwards and non-alphabetic characters
// go out literally.
func (e *Encoder) forwardText(text string) {
	if text == "" {
		return
	}
	if e.ctrlLatched {
		runes := []rune(text)
		if len(runes) == 1 {
			if b, ok := controlByte(runes[0]); ok {
				e.send([]byte{b})
				return
			}
		}
	}
	e.send([]byte(text))
}

func (e *Encoder) send(data []byte) {
	if e.session != nil {
		e.session.Write(data)
	}
	if e.refresh != nil {
		e.refresh()
	}
}
