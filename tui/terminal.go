// Package tui hosts a PurrView engine view as a fullscreen tcell
// application. It is the portable sibling of the cli adapter: tcell
// owns terminal setup, color depth, and key decoding, and this package
// only moves cells and keys between tcell and the engine session.
package tui

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/phroun/purrview"
)

// Options configures terminal creation.
type Options struct {
	Theme purrview.Theme     // Color theme (default: purrview.DefaultTheme())
	Erase purrview.EraseMode // Erase byte profile (default: DEL)
}

// Terminal hosts a view for an external engine on a tcell screen. The
// event loop serializes everything: input handling, resize handling,
// and the frame cadence all run on the Run goroutine, so the type
// needs no lock. Methods other than Stop must be called from that
// goroutine (the key callback) or before Run.
type Terminal struct {
	screen tcell.Screen

	session  *purrview.Session
	geom     *purrview.Geometry
	pipeline *purrview.Pipeline
	encoder  *purrview.Encoder
	surface  *Surface
	options  Options

	quit chan struct{}

	onResize    func(cols, rows int)
	keyCallback func(purrview.KeyEvent) bool
}

// New creates a terminal view over the given engine on a new tcell
// screen covering the whole host terminal.
func New(engine purrview.Engine, opts Options) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return NewWithScreen(screen, engine, opts), nil
}

// NewWithScreen creates a terminal view on an already initialized
// screen. Tests use it with tcell's simulation screen.
func NewWithScreen(screen tcell.Screen, engine purrview.Engine, opts Options) *Terminal {
	if opts.Theme.Foreground == (purrview.RGB{}) {
		opts.Theme = purrview.DefaultTheme()
	}

	session := purrview.NewSession(engine)
	geom := purrview.NewGeometry(session)

	t := &Terminal{
		screen:  screen,
		session: session,
		geom:    geom,
		options: opts,
		quit:    make(chan struct{}),
	}

	t.surface = NewSurface(screen)
	t.surface.SetBackground(opts.Theme.Background)

	t.pipeline = purrview.NewPipeline(session, geom, opts.Theme)

	t.encoder = purrview.NewEncoder(session)
	t.encoder.SetEraseMode(opts.Erase)
	t.encoder.SetRefreshCallback(t.pipeline.RequestRender)

	t.applyTheme(opts.Theme)

	// Unit glyph metrics make surface units cells, so the grid is the
	// screen. The engine learns the size here, before the first frame.
	w, h := screen.Size()
	geom.Recompute(float64(w), float64(h), 1, 1)

	return t
}

// applyTheme sets the screen's default style so cleared cells show the
// theme background.
func (t *Terminal) applyTheme(theme purrview.Theme) {
	t.screen.SetStyle(tcell.StyleDefault.
		Foreground(toTcellColor(theme.Foreground)).
		Background(toTcellColor(theme.Background)))
	t.screen.Clear()
	t.surface.SetBackground(theme.Background)
	t.pipeline.SetTheme(theme)
}

// Run drives the view until Stop is called or a key callback stops it.
// Events and the frame cadence share one select loop.
func (t *Terminal) Run() {
	ticker := time.NewTicker(purrview.FrameInterval)
	defer ticker.Stop()

	eventCh := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			eventCh <- ev
		}
	}()

	for {
		select {
		case ev := <-eventCh:
			t.handleEvent(ev)
		case <-ticker.C:
			if t.pipeline.ShouldPaint() {
				t.pipeline.RenderFrame(t.surface)
			}
		case <-t.quit:
			return
		}
	}
}

// Stop makes Run return. Safe to call from any goroutine and from the
// key callback; stopping twice is a no-op.
func (t *Terminal) Stop() {
	select {
	case <-t.quit:
	default:
		close(t.quit)
	}
}

// Close releases the engine session and the screen. Call after Run
// returns.
func (t *Terminal) Close() error {
	err := t.session.Close()
	t.screen.Fini()
	return err
}

func (t *Terminal) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		key, ok := translateKey(ev)
		if !ok {
			return
		}
		if t.keyCallback != nil && t.keyCallback(key) {
			return
		}
		t.encoder.Key(key)
	case *tcell.EventResize:
		t.handleResize()
	}
}

// handleResize refits the grid to the screen. The engine hears about
// it only when the cell size actually changed.
func (t *Terminal) handleResize() {
	w, h := t.screen.Size()
	cols, rows, changed := t.geom.Recompute(float64(w), float64(h), 1, 1)
	t.screen.Clear()
	t.pipeline.RequestRender()
	if changed && t.onResize != nil {
		t.onResize(cols, rows)
	}
}

// Session returns the underlying engine session.
func (t *Terminal) Session() *purrview.Session {
	return t.session
}

// Encoder returns the input encoder, for hosts that feed composition
// or committed text alongside hard keys.
func (t *Terminal) Encoder() *purrview.Encoder {
	return t.encoder
}

// SetComposingText replaces the provisional text supplied by an input
// method.
func (t *Terminal) SetComposingText(text string) {
	t.encoder.SetComposingText(text)
}

// FinishComposing ends the current composition.
func (t *Terminal) FinishComposing() {
	t.encoder.FinishComposing()
}

// CommitText forwards committed text from an input method.
func (t *Terminal) CommitText(text string) {
	t.encoder.CommitText(text)
}

// DeleteSurrounding erases text around the cursor at an input
// method's request.
func (t *Terminal) DeleteSurrounding(before, after int) {
	t.encoder.DeleteSurrounding(before, after)
}

// Theme returns the active theme.
func (t *Terminal) Theme() purrview.Theme {
	return t.pipeline.Theme()
}

// SetTheme swaps the theme and repaints.
func (t *Terminal) SetTheme(theme purrview.Theme) {
	t.options.Theme = theme
	t.applyTheme(theme)
}

// SetOnResize sets a callback for grid size changes.
func (t *Terminal) SetOnResize(fn func(cols, rows int)) {
	t.onResize = fn
}

// SetKeyCallback sets a callback for intercepting decoded keys before
// they reach the encoder. Return true from the callback to consume the
// key. Fullscreen hosts reserve their quit key here.
func (t *Terminal) SetKeyCallback(fn func(purrview.KeyEvent) bool) {
	t.keyCallback = fn
}

// RenderOnce paints a single frame outside the Run loop. Tests and
// screenshot tools use it.
func (t *Terminal) RenderOnce() {
	t.pipeline.RenderFrame(t.surface)
}

// translateKey converts a tcell key event. Enter, Tab, Backspace, and
// Escape are matched before the control range because tcell aliases
// them to control keys.
func translateKey(ev *tcell.EventKey) (purrview.KeyEvent, bool) {
	out := purrview.KeyEvent{
		Ctrl: ev.Modifiers()&tcell.ModCtrl != 0,
		Alt:  ev.Modifiers()&tcell.ModAlt != 0,
	}

	switch ev.Key() {
	case tcell.KeyRune:
		out.Code = purrview.KeyRune
		out.Rune = ev.Rune()
		return out, true
	case tcell.KeyEnter:
		out.Code = purrview.KeyEnter
		return out, true
	case tcell.KeyTab:
		out.Code = purrview.KeyTab
		return out, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		out.Code = purrview.KeyBackspace
		return out, true
	case tcell.KeyDelete:
		out.Code = purrview.KeyDelete
		return out, true
	case tcell.KeyEscape:
		out.Code = purrview.KeyEscape
		return out, true
	case tcell.KeyUp:
		out.Code = purrview.KeyUp
		return out, true
	case tcell.KeyDown:
		out.Code = purrview.KeyDown
		return out, true
	case tcell.KeyRight:
		out.Code = purrview.KeyRight
		return out, true
	case tcell.KeyLeft:
		out.Code = purrview.KeyLeft
		return out, true
	case tcell.KeyHome:
		out.Code = purrview.KeyHome
		return out, true
	case tcell.KeyEnd:
		out.Code = purrview.KeyEnd
		return out, true
	case tcell.KeyPgUp:
		out.Code = purrview.KeyPageUp
		return out, true
	case tcell.KeyPgDn:
		out.Code = purrview.KeyPageDown
		return out, true
	case tcell.KeyInsert:
		out.Code = purrview.KeyInsert
		return out, true
	case tcell.KeyF1:
		out.Code = purrview.KeyF1
		return out, true
	case tcell.KeyF2:
		out.Code = purrview.KeyF2
		return out, true
	case tcell.KeyF3:
		out.Code = purrview.KeyF3
		return out, true
	case tcell.KeyF4:
		out.Code = purrview.KeyF4
		return out, true
	case tcell.KeyF5:
		out.Code = purrview.KeyF5
		return out, true
	case tcell.KeyF6:
		out.Code = purrview.KeyF6
		return out, true
	case tcell.KeyF7:
		out.Code = purrview.KeyF7
		return out, true
	case tcell.KeyF8:
		out.Code = purrview.KeyF8
		return out, true
	case tcell.KeyF9:
		out.Code = purrview.KeyF9
		return out, true
	case tcell.KeyF10:
		out.Code = purrview.KeyF10
		return out, true
	case tcell.KeyF11:
		out.Code = purrview.KeyF11
		return out, true
	case tcell.KeyF12:
		out.Code = purrview.KeyF12
		return out, true
	}

	// Ctrl+letter arrives as a dedicated key code, not a rune.
	if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		out.Code = purrview.KeyRune
		out.Rune = rune('a' + k - tcell.KeyCtrlA)
		out.Ctrl = true
		return out, true
	}

	return purrview.KeyEvent{}, false
}
