package purrviewgtk

import (
	"sync"

	"github.com/gotk3/gotk3/cairo"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"

	"github.com/phroun/purrview"
)

// Widget is a GTK view over one engine session: a DrawingArea the
// render pipeline paints through cairo on the frame cadence. Key
// events on the area feed the input encoder, allocation changes drive
// the grid geometry, and a glib timer queues draws whenever the
// pipeline or the engine reports stale output. The widget talks to
// the engine only through the session.
type Widget struct {
	mu sync.Mutex

	drawingArea *gtk.DrawingArea

	session  *purrview.Session
	geom     *purrview.Geometry
	pipeline *purrview.Pipeline
	encoder  *purrview.Encoder
	surface  *canvasSurface

	// Font settings. Cell metrics are estimated from the point size;
	// cairo's toy text API has no advance query worth blocking on.
	fontFamily string
	fontSize   float64
	advance    float64
	lineHeight float64
	ascent     float64

	frameTimer glib.SourceHandle

	onResize    func(cols, rows int)
	keyCallback func(purrview.KeyEvent) bool
}

// NewWidget creates a view widget over the given engine with an
// initial grid. The grid holds until GTK realizes the widget; from
// then on it tracks the allocation. A nil engine is accepted and
// yields a blank, inert view.
func NewWidget(engine purrview.Engine, cols, rows int) (*Widget, error) {
	w := &Widget{
		fontFamily: "Monospace",
		fontSize:   14,
	}
	w.advance, w.lineHeight, w.ascent = purrview.EstimateCellMetrics(w.fontSize)

	w.session = purrview.NewSession(engine)
	w.geom = purrview.NewGeometry(w.session)
	w.pipeline = purrview.NewPipeline(w.session, w.geom, purrview.DefaultTheme())
	w.encoder = purrview.NewEncoder(w.session)
	w.encoder.SetRefreshCallback(w.pipeline.RequestRender)
	w.surface = &canvasSurface{}

	// Seed the grid before the first allocation so the engine learns
	// its size now rather than at the first draw.
	w.geom.Recompute(float64(cols)*w.advance, float64(rows)*w.lineHeight, w.advance, w.lineHeight)

	var err error
	w.drawingArea, err = gtk.DrawingAreaNew()
	if err != nil {
		return nil, err
	}

	w.drawingArea.AddEvents(int(gdk.KEY_PRESS_MASK | gdk.BUTTON_PRESS_MASK))
	w.drawingArea.SetCanFocus(true)

	w.drawingArea.Connect("draw", w.onDraw)
	w.drawingArea.Connect("key-press-event", w.onKeyPress)
	w.drawingArea.Connect("configure-event", w.onConfigure)
	w.drawingArea.Connect("button-press-event", w.onButtonPress)

	// Set minimum size (small fixed value to allow flexible resizing)
	w.drawingArea.SetSizeRequest(100, 50)

	// Frame timer: queue a draw whenever there is something new to
	// paint. The painting itself happens in the draw handler, the only
	// place GTK hands out a cairo context.
	w.frameTimer = glib.TimeoutAdd(uint(purrview.FrameInterval.Milliseconds()), func() bool {
		w.mu.Lock()
		stale := w.pipeline.ShouldPaint()
		w.mu.Unlock()
		if stale {
			w.drawingArea.QueueDraw()
		}
		return true // Keep timer running
	})

	return w, nil
}

// DrawingArea returns the drawing area widget for packing into
// containers.
func (w *Widget) DrawingArea() *gtk.DrawingArea {
	return w.drawingArea
}

// onDraw paints one full frame. Expose events arrive here too, so the
// frame is always painted from scratch regardless of dirty state.
func (w *Widget) onDraw(da *gtk.DrawingArea, cr *cairo.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	theme := w.pipeline.Theme()

	// Clear the whole allocation first; the pipeline skips cells on
	// the default background, which is only correct over a canvas
	// already cleared to that color.
	alloc := da.GetAllocation()
	r, g, b := shade(theme.Background)
	cr.SetSourceRGB(r, g, b)
	cr.Rectangle(0, 0, float64(alloc.GetWidth()), float64(alloc.GetHeight()))
	cr.Fill()

	w.surface.begin(cr, w.fontFamily, w.fontSize, w.ascent)
	w.pipeline.RenderFrame(w.surface)
	w.surface.end()

	return true
}

func (w *Widget) onKeyPress(da *gtk.DrawingArea, ev *gdk.Event) bool {
	key := gdk.EventKeyNewFromEvent(ev)
	state := key.State()

	ctrl := state&uint(gdk.CONTROL_MASK) != 0
	alt := state&uint(gdk.MOD1_MASK) != 0

	kev, ok := translateKey(key.KeyVal(), ctrl, alt)
	if !ok {
		return false
	}

	w.mu.Lock()
	cb := w.keyCallback
	w.mu.Unlock()
	if cb != nil && cb(kev) {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.encoder.Key(kev)
}

func (w *Widget) onConfigure(da *gtk.DrawingArea, ev *gdk.Event) bool {
	w.mu.Lock()
	cols, rows, changed := w.recomputeLocked()
	fn := w.onResize
	w.mu.Unlock()

	if changed && fn != nil {
		fn(cols, rows)
	}
	return false
}

func (w *Widget) onButtonPress(da *gtk.DrawingArea, ev *gdk.Event) bool {
	btn := gdk.EventButtonNewFromEvent(ev)
	if btn.Button() == 1 { // Left button
		da.GrabFocus()
		return true
	}
	return false
}

// recomputeLocked re-derives the grid from the current allocation.
// Unrealized widgets report a degenerate allocation; those keep the
// seeded grid and only refresh the cell metrics.
func (w *Widget) recomputeLocked() (cols, rows int, changed bool) {
	alloc := w.drawingArea.GetAllocation()
	width := float64(alloc.GetWidth())
	height := float64(alloc.GetHeight())
	if width <= 1 || height <= 1 {
		c, r := w.geom.Size()
		width = float64(c) * w.advance
		height = float64(r) * w.lineHeight
	}
	cols, rows, changed = w.geom.Recompute(width, height, w.advance, w.lineHeight)
	w.pipeline.RequestRender()
	return cols, rows, changed
}

// SetFont sets the font family and point size. The point size is
// clamped to the supported zoom range and the grid is re-derived from
// the new metrics immediately.
func (w *Widget) SetFont(family string, size float64) {
	w.mu.Lock()
	w.fontFamily = family
	w.fontSize = purrview.ClampFontSize(size)
	w.advance, w.lineHeight, w.ascent = purrview.EstimateCellMetrics(w.fontSize)
	cols, rows, changed := w.recomputeLocked()
	fn := w.onResize
	w.mu.Unlock()

	if changed && fn != nil {
		fn(cols, rows)
	}
	w.drawingArea.QueueDraw()
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
	w.drawingArea.QueueDraw()
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
// drawing area itself is destroyed with its container as usual.
func (w *Widget) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.frameTimer != 0 {
		glib.SourceRemove(w.frameTimer)
		w.frameTimer = 0
	}
	return w.session.Close()
}

// translateKey maps a GDK keyval to a key event. Keyvals with no
// mapping (bare modifiers, dead keys) report ok=false so GTK keeps
// processing them.
func translateKey(keyval uint, ctrl, alt bool) (purrview.KeyEvent, bool) {
	ev := purrview.KeyEvent{Ctrl: ctrl, Alt: alt}

	switch keyval {
	case gdk.KEY_Return, gdk.KEY_KP_Enter:
		ev.Code = purrview.KeyEnter
	case gdk.KEY_BackSpace:
		ev.Code = purrview.KeyBackspace
	case gdk.KEY_Delete, gdk.KEY_KP_Delete:
		ev.Code = purrview.KeyDelete
	case gdk.KEY_Tab, gdk.KEY_ISO_Left_Tab:
		ev.Code = purrview.KeyTab
	case gdk.KEY_Escape:
		ev.Code = purrview.KeyEscape
	case gdk.KEY_Up, gdk.KEY_KP_Up:
		ev.Code = purrview.KeyUp
	case gdk.KEY_Down, gdk.KEY_KP_Down:
		ev.Code = purrview.KeyDown
	case gdk.KEY_Right, gdk.KEY_KP_Right:
		ev.Code = purrview.KeyRight
	case gdk.KEY_Left, gdk.KEY_KP_Left:
		ev.Code = purrview.KeyLeft
	case gdk.KEY_Home, gdk.KEY_KP_Home:
		ev.Code = purrview.KeyHome
	case gdk.KEY_End, gdk.KEY_KP_End:
		ev.Code = purrview.KeyEnd
	case gdk.KEY_Page_Up, gdk.KEY_KP_Page_Up:
		ev.Code = purrview.KeyPageUp
	case gdk.KEY_Page_Down, gdk.KEY_KP_Page_Down:
		ev.Code = purrview.KeyPageDown
	case gdk.KEY_Insert, gdk.KEY_KP_Insert:
		ev.Code = purrview.KeyInsert
	case gdk.KEY_F1:
		ev.Code = purrview.KeyF1
	case gdk.KEY_F2:
		ev.Code = purrview.KeyF2
	case gdk.KEY_F3:
		ev.Code = purrview.KeyF3
	case gdk.KEY_F4:
		ev.Code = purrview.KeyF4
	case gdk.KEY_F5:
		ev.Code = purrview.KeyF5
	case gdk.KEY_F6:
		ev.Code = purrview.KeyF6
	case gdk.KEY_F7:
		ev.Code = purrview.KeyF7
	case gdk.KEY_F8:
		ev.Code = purrview.KeyF8
	case gdk.KEY_F9:
		ev.Code = purrview.KeyF9
	case gdk.KEY_F10:
		ev.Code = purrview.KeyF10
	case gdk.KEY_F11:
		ev.Code = purrview.KeyF11
	case gdk.KEY_F12:
		ev.Code = purrview.KeyF12
	default:
		r := gdk.KeyvalToUnicode(keyval)
		if r == 0 {
			return purrview.KeyEvent{}, false
		}
		ev.Code = purrview.KeyRune
		ev.Rune = r
	}

	return ev, true
}

// canvasSurface adapts one draw callback's cairo context to the
// render surface. It is valid only between begin and end; no cairo
// context outlives its draw handler.
type canvasSurface struct {
	cr     *cairo.Context
	family string
	size   float64
	ascent float64

	// Current font face, so runs of same-styled glyphs select the
	// face once.
	haveFace  bool
	lastStyle purrview.Style
}

func (s *canvasSurface) begin(cr *cairo.Context, family string, size, ascent float64) {
	s.cr = cr
	s.family = family
	s.size = size
	s.ascent = ascent
	s.haveFace = false
}

func (s *canvasSurface) end() {
	s.cr = nil
}

// FillRect paints an opaque rectangle.
func (s *canvasSurface) FillRect(x, y, width, height float64, c purrview.RGB) {
	r, g, b := shade(c)
	s.cr.SetSourceRGB(r, g, b)
	s.cr.Rectangle(x, y, width, height)
	s.cr.Fill()
}

// DrawGlyph paints one glyph anchored at the cell's top-left corner.
// Bold and italic select the font face; dim darkens the ink since
// cairo has no faint rendition.
func (s *canvasSurface) DrawGlyph(glyph string, x, y float64, c purrview.RGB, style purrview.Style) {
	if !s.haveFace || s.lastStyle.Bold != style.Bold || s.lastStyle.Italic != style.Italic {
		slant := cairo.FONT_SLANT_NORMAL
		if style.Italic {
			slant = cairo.FONT_SLANT_ITALIC
		}
		weight := cairo.FONT_WEIGHT_NORMAL
		if style.Bold {
			weight = cairo.FONT_WEIGHT_BOLD
		}
		s.cr.SelectFontFace(s.family, slant, weight)
		s.cr.SetFontSize(s.size)
		s.haveFace = true
		s.lastStyle = style
	}

	if style.Dim {
		c = dimmed(c)
	}
	r, g, b := shade(c)
	s.cr.SetSourceRGB(r, g, b)
	s.cr.MoveTo(x, y+s.ascent)
	s.cr.ShowText(glyph)
}

// FillCursor paints the translucent cursor overlay with cairo's
// native alpha.
func (s *canvasSurface) FillCursor(x, y, width, height float64, c purrview.RGB, opacity float64) {
	r, g, b := shade(c)
	s.cr.SetSourceRGBA(r, g, b, opacity)
	s.cr.Rectangle(x, y, width, height)
	s.cr.Fill()
}

// Flush is a no-op: GTK presents the frame when the draw handler
// returns.
func (s *canvasSurface) Flush() {}

// shade converts 8-bit channels to cairo's unit range.
func shade(c purrview.RGB) (r, g, b float64) {
	return float64(c.R) / 255.0, float64(c.G) / 255.0, float64(c.B) / 255.0
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
