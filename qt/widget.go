package purrviewqt

import (
	"math"
	"sync"
	"unicode/utf8"

	"github.com/mappu/miqt/qt"

	"github.com/phroun/purrview"
)

// Widget is a Qt view over one engine session. The render pipeline
// paints into the widget's paint events through a QPainter adapter, a
// QTimer on the frame cadence requests updates when output is stale,
// key events feed the input encoder, and resize events drive the grid
// geometry. The widget talks to the engine only through the session.
type Widget struct {
	widget *qt.QWidget

	mu sync.Mutex

	session  *purrview.Session
	geom     *purrview.Geometry
	pipeline *purrview.Pipeline
	encoder  *purrview.Encoder

	// Font settings. Metrics come from QFontMetrics with estimated
	// ratios as the fallback for fonts that report nothing useful.
	fontFamily string
	fontSize   float64
	advance    float64
	lineHeight float64
	ascent     float64

	frameTimer *qt.QTimer

	onResize    func(cols, rows int)
	keyCallback func(purrview.KeyEvent) bool
}

// NewWidget creates a view widget over the given engine with an
// initial grid. The grid holds until Qt delivers the first resize
// event; from then on it tracks the widget size. A nil engine is
// accepted and yields a blank, inert view.
func NewWidget(engine purrview.Engine, cols, rows int) *Widget {
	w := &Widget{
		widget:     qt.NewQWidget2(),
		fontFamily: "Monospace",
		fontSize:   14,
	}

	w.session = purrview.NewSession(engine)
	w.geom = purrview.NewGeometry(w.session)
	w.pipeline = purrview.NewPipeline(w.session, w.geom, purrview.DefaultTheme())
	w.encoder = purrview.NewEncoder(w.session)
	w.encoder.SetRefreshCallback(w.pipeline.RequestRender)

	w.updateCellMetricsLocked()

	// Seed the grid before the first resize event so the engine
	// learns its size now rather than at the first paint.
	w.geom.Recompute(float64(cols)*w.advance, float64(rows)*w.lineHeight, w.advance, w.lineHeight)

	// Enable focus and input method events on the widget
	w.widget.SetFocusPolicy(qt.StrongFocus)
	w.widget.SetAttribute(qt.WA_InputMethodEnabled)

	// Set minimum size (small fixed value to allow flexible resizing)
	w.widget.SetMinimumSize2(100, 50)

	// Frame timer: request an update whenever there is something new
	// to paint. The painting itself happens in the paint event, the
	// only place Qt allows a QPainter on the widget.
	w.frameTimer = qt.NewQTimer2(w.widget.QObject)
	w.frameTimer.OnTimeout(func() {
		w.mu.Lock()
		stale := w.pipeline.ShouldPaint()
		w.mu.Unlock()
		if stale {
			w.widget.Update()
		}
	})
	w.frameTimer.Start(int(purrview.FrameInterval.Milliseconds()))

	// Connect events using miqt's OnXxxEvent pattern
	w.widget.OnPaintEvent(func(super func(event *qt.QPaintEvent), event *qt.QPaintEvent) {
		w.paintEvent(event)
	})
	w.widget.OnKeyPressEvent(func(super func(event *qt.QKeyEvent), event *qt.QKeyEvent) {
		w.keyPressEvent(event)
	})
	w.widget.OnResizeEvent(func(super func(event *qt.QResizeEvent), event *qt.QResizeEvent) {
		w.resizeEvent(event)
	})

	return w
}

// QWidget returns the underlying Qt widget for embedding in layouts
// or as a central widget.
func (w *Widget) QWidget() *qt.QWidget {
	return w.widget
}

// updateCellMetricsLocked measures the cell box for the current font.
func (w *Widget) updateCellMetricsLocked() {
	font := qt.NewQFont6(w.fontFamily, int(w.fontSize))
	font.SetFixedPitch(true)
	metrics := qt.NewQFontMetrics(font)
	w.advance = float64(metrics.AverageCharWidth())
	w.lineHeight = float64(metrics.Height())
	w.ascent = float64(metrics.Ascent())

	estAdvance, estHeight, estAscent := purrview.EstimateCellMetrics(w.fontSize)
	if w.advance < 1 {
		w.advance = estAdvance
	}
	if w.lineHeight < 1 {
		w.lineHeight = estHeight
	}
	if w.ascent < 1 {
		w.ascent = estAscent
	}
}

// paintEvent paints one full frame. Expose events arrive here too, so
// the frame is always painted from scratch regardless of dirty state.
func (w *Widget) paintEvent(event *qt.QPaintEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	theme := w.pipeline.Theme()

	painter := qt.NewQPainter2(w.widget.QPaintDevice)
	defer painter.End()

	// Clear the whole widget first; the pipeline skips cells on the
	// default background, which is only correct over a cleared
	// canvas.
	painter.FillRect5(0, 0, w.widget.Width(), w.widget.Height(), qcolor(theme.Background))

	font := qt.NewQFont6(w.fontFamily, int(w.fontSize))
	font.SetFixedPitch(true)
	painter.SetFont(font)

	w.pipeline.RenderFrame(&painterSurface{
		painter: painter,
		family:  w.fontFamily,
		size:    int(w.fontSize),
		ascent:  w.ascent,
		base:    font,
	})
}

func (w *Widget) keyPressEvent(event *qt.QKeyEvent) {
	// Accept immediately so unhandled keys do not bubble into
	// application shortcuts.
	event.Accept()

	modifiers := event.Modifiers()
	ctrl := modifiers&qt.ControlModifier != 0
	alt := modifiers&qt.AltModifier != 0

	kev, ok := translateKey(qt.Key(event.Key()), event.Text(), ctrl, alt)
	if !ok {
		return
	}

	w.mu.Lock()
	cb := w.keyCallback
	w.mu.Unlock()
	if cb != nil && cb(kev) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.encoder.Key(kev)
}

func (w *Widget) resizeEvent(event *qt.QResizeEvent) {
	w.mu.Lock()
	w.updateCellMetricsLocked()
	cols, rows, changed := w.geom.Recompute(
		float64(w.widget.Width()), float64(w.widget.Height()),
		w.advance, w.lineHeight)
	w.pipeline.RequestRender()
	fn := w.onResize
	w.mu.Unlock()

	if changed && fn != nil {
		fn(cols, rows)
	}
}

// SetFont sets the font family and point size. The point size is
// clamped to the supported zoom range and the grid is re-derived from
// the new metrics immediately.
func (w *Widget) SetFont(family string, size float64) {
	w.mu.Lock()
	w.fontFamily = family
	w.fontSize = purrview.ClampFontSize(size)
	w.updateCellMetricsLocked()
	cols, rows, changed := w.geom.Recompute(
		float64(w.widget.Width()), float64(w.widget.Height()),
		w.advance, w.lineHeight)
	w.pipeline.RequestRender()
	fn := w.onResize
	w.mu.Unlock()

	if changed && fn != nil {
		fn(cols, rows)
	}
	w.widget.Update()
}

// FontSize returns the current font size in points.
func (w *Widget) FontSize() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fontSize
}

// Theme returns the active theme.
func (w *Widget) Theme() purrview.Theme {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pipeline.Theme()
}

// SetTheme swaps the theme and repaints.
func (w *Widget) SetTheme(theme purrview.Theme) {
	w.mu.Lock()
	w.pipeline.SetTheme(theme)
	w.mu.Unlock()
	w.widget.Update()
}

// SetEraseMode selects the erase byte profile for Backspace and
// Delete.
func (w *Widget) SetEraseMode(m purrview.EraseMode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.encoder.SetEraseMode(m)
}

// SetResizeCallback sets a callback that's called when the grid size
// changes.
func (w *Widget) SetResizeCallback(fn func(cols, rows int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onResize = fn
}

// SetKeyCallback sets a callback for intercepting decoded keys before
// they reach the encoder. Return true from the callback to consume
// the key.
func (w *Widget) SetKeyCallback(fn func(purrview.KeyEvent) bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.keyCallback = fn
}

// Write sends raw bytes to the engine, bypassing the key encoder.
func (w *Widget) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.session.Write(data)
	w.pipeline.RequestRender()
	return n, err
}

// Size returns the grid size in cells.
func (w *Widget) Size() (cols, rows int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.geom.Size()
}

// Session returns the underlying engine session.
func (w *Widget) Session() *purrview.Session {
	return w.session
}

// Encoder returns the input encoder.
func (w *Widget) Encoder() *purrview.Encoder {
	return w.encoder
}

// SetComposingText replaces the provisional text supplied by an input
// method.
func (w *Widget) SetComposingText(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.encoder.SetComposingText(text)
}

// FinishComposing ends the current composition.
func (w *Widget) FinishComposing() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.encoder.FinishComposing()
}

// CommitText forwards committed text from an input method.
func (w *Widget) CommitText(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.encoder.CommitText(text)
}

// DeleteSurrounding erases text around the cursor at an input
// method's request.
func (w *Widget) DeleteSurrounding(before, after int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.encoder.DeleteSurrounding(before, after)
}

// Close stops the frame timer and closes the engine session. The
// widget itself is destroyed with its parent as usual.
func (w *Widget) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.frameTimer != nil {
		w.frameTimer.Stop()
		w.frameTimer = nil
	}
	return w.session.Close()
}

// translateKey maps a Qt key event to a key event. Bare modifiers and
// keys carrying no usable text report ok=false.
func translateKey(key qt.Key, text string, ctrl, alt bool) (purrview.KeyEvent, bool) {
	ev := purrview.KeyEvent{Ctrl: ctrl, Alt: alt}

	switch key {
	case qt.Key_Return, qt.Key_Enter:
		ev.Code = purrview.KeyEnter
	case qt.Key_Backspace:
		ev.Code = purrview.KeyBackspace
	case qt.Key_Delete:
		ev.Code = purrview.KeyDelete
	case qt.Key_Tab, qt.Key_Backtab:
		ev.Code = purrview.KeyTab
	case qt.Key_Escape:
		ev.Code = purrview.KeyEscape
	case qt.Key_Up:
		ev.Code = purrview.KeyUp
	case qt.Key_Down:
		ev.Code = purrview.KeyDown
	case qt.Key_Right:
		ev.Code = purrview.KeyRight
	case qt.Key_Left:
		ev.Code = purrview.KeyLeft
	case qt.Key_Home:
		ev.Code = purrview.KeyHome
	case qt.Key_End:
		ev.Code = purrview.KeyEnd
	case qt.Key_PageUp:
		ev.Code = purrview.KeyPageUp
	case qt.Key_PageDown:
		ev.Code = purrview.KeyPageDown
	case qt.Key_Insert:
		ev.Code = purrview.KeyInsert
	case qt.Key_F1:
		ev.Code = purrview.KeyF1
	case qt.Key_F2:
		ev.Code = purrview.KeyF2
	case qt.Key_F3:
		ev.Code = purrview.KeyF3
	case qt.Key_F4:
		ev.Code = purrview.KeyF4
	case qt.Key_F5:
		ev.Code = purrview.KeyF5
	case qt.Key_F6:
		ev.Code = purrview.KeyF6
	case qt.Key_F7:
		ev.Code = purrview.KeyF7
	case qt.Key_F8:
		ev.Code = purrview.KeyF8
	case qt.Key_F9:
		ev.Code = purrview.KeyF9
	case qt.Key_F10:
		ev.Code = purrview.KeyF10
	case qt.Key_F11:
		ev.Code = purrview.KeyF11
	case qt.Key_F12:
		ev.Code = purrview.KeyF12
	default:
		r, ok := textRune(text)
		if !ok {
			return purrview.KeyEvent{}, false
		}
		ev.Code = purrview.KeyRune
		ev.Rune = r
	}

	return ev, true
}

// textRune extracts the printable rune from a key event's text. Qt
// reports control characters for ctrl-modified letters; those map
// back to the letter, since the encoder applies the control transform
// itself.
func textRune(text string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(text)
	if size == 0 || r == utf8.RuneError {
		return 0, false
	}
	if r >= 1 && r <= 26 {
		return 'a' + r - 1, true
	}
	if r < 0x20 || r == 0x7F {
		return 0, false
	}
	return r, true
}

// painterSurface adapts one paint event's QPainter to the render
// surface. It lives for a single frame; no QPainter outlives its
// paint event.
type painterSurface struct {
	painter *qt.QPainter
	family  string
	size    int
	ascent  float64

	// base is the plain font already set on the painter; styled
	// tracks whether a bold/italic variant is currently active.
	base   *qt.QFont
	styled bool
}

// FillRect paints an opaque rectangle.
func (s *painterSurface) FillRect(x, y, width, height float64, c purrview.RGB) {
	s.painter.FillRect5(round(x), round(y), round(width), round(height), qcolor(c))
}

// DrawGlyph paints one glyph with its baseline derived from the cell
// top and the font ascent. Bold and italic select a font variant; dim
// darkens the ink since QPainter has no faint rendition.
func (s *painterSurface) DrawGlyph(glyph string, x, y float64, c purrview.RGB, style purrview.Style) {
	if style.Bold || style.Italic {
		font := qt.NewQFont6(s.family, s.size)
		font.SetFixedPitch(true)
		font.SetBold(style.Bold)
		font.SetItalic(style.Italic)
		s.painter.SetFont(font)
		s.styled = true
	} else if s.styled {
		s.painter.SetFont(s.base)
		s.styled = false
	}

	if style.Dim {
		c = dimmed(c)
	}
	s.painter.SetPen(qcolor(c))
	s.painter.DrawText3(round(x), round(y+s.ascent), glyph)
}

// FillCursor paints the translucent cursor overlay through the
// painter's opacity.
func (s *painterSurface) FillCursor(x, y, width, height float64, c purrview.RGB, opacity float64) {
	s.painter.SetOpacity(opacity)
	s.painter.FillRect5(round(x), round(y), round(width), round(height), qcolor(c))
	s.painter.SetOpacity(1.0)
}

// Flush is a no-op: Qt presents the frame when the paint event
// returns.
func (s *painterSurface) Flush() {}

func round(v float64) int {
	return int(math.Round(v))
}

func qcolor(c purrview.RGB) *qt.QColor {
	return qt.NewQColor3(int(c.R), int(c.G), int(c.B))
}

// dimmed darkens a color by a third, approximating the faint
// rendition.
func dimmed(c purrview.RGB) purrview.RGB {
	return purrview.RGB{
		R: uint8(int(c.R) * 2 / 3),
		G: uint8(int(c.G) * 2 / 3),
		B: uint8(int(c.B) * 2 / 3),
	}
}
