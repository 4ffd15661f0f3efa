package purrview

import "time"

// FrameInterval is the repaint cadence, targeting roughly 60 frames
// per second.
const FrameInterval = 16 * time.Millisecond

// Style is the glyph style subset a surface needs to pick and shade a
// font. Dim is delivered rather than pre-attenuated so cell surfaces
// can use their native dim attribute while pixel surfaces darken the
// color themselves.
type Style struct {
	Bold   bool
	Italic bool
	Dim    bool
}

// Surface is the drawing target of the render pipeline. Coordinates
// are in surface units with the origin at the top left; pixel surfaces
// use pixels, host-terminal surfaces use cells with unit metrics. The
// surface owns its font: DrawGlyph receives the cell's top-left corner
// and the surface applies its own baseline.
type Surface interface {
	// FillRect paints an opaque rectangle.
	FillRect(x, y, w, h float64, c RGB)

	// DrawGlyph paints one glyph anchored at the cell's top-left.
	DrawGlyph(glyph string, x, y float64, c RGB, style Style)

	// FillCursor paints the translucent cursor overlay. Surfaces
	// without alpha may approximate (blend, reverse, or hosted
	// cursor placement).
	FillCursor(x, y, w, h float64, c RGB, opacity float64)

	// Flush completes the frame. Buffered surfaces write out here;
	// draw-callback surfaces treat it as a no-op.
	Flush()
}

// Pipeline paints the repaint frames: each frame it walks every
// visible row through the session, resolves colors through the theme,
// and paints background, glyph, and cursor onto a surface. The core
// keeps no frame-to-frame pixel state; every frame is a full repaint.
// The owning frontend schedules the cadence on its host runtime (a Go
// ticker, a glib timeout, a QTimer) at FrameInterval and calls
// RenderFrame each tick, gated on ShouldPaint if it wants the skip
// optimization.
//
// Pipeline is not safe for concurrent use; the owning frontend
// serializes frames against input handling.
type Pipeline struct {
	session *Session
	geom    *Geometry
	theme   Theme

	needsPaint bool
}

// NewPipeline returns a pipeline over the given session, geometry, and
// theme. The first tick always paints.
func NewPipeline(session *Session, geom *Geometry, theme Theme) *Pipeline {
	return &Pipeline{
		session:    session,
		geom:       geom,
		theme:      theme,
		needsPaint: true,
	}
}

// Theme returns the active theme.
func (p *Pipeline) Theme() Theme {
	return p.theme
}

// SetTheme replaces the theme wholesale and forces a repaint. Themes
// are immutable while attached; there is no slot-level mutation.
func (p *Pipeline) SetTheme(t Theme) {
	p.theme = t
	p.needsPaint = true
}

// RequestRender marks the display stale. Encoders call it after each
// successful input encode; hosts call it on focus or expose events.
func (p *Pipeline) RequestRender() {
	p.needsPaint = true
}

// ShouldPaint reports whether the next tick needs to repaint: either a
// refresh was requested locally or the engine reports dirty rows.
// Engines without dirty tracking always report dirty, preserving the
// paint-every-tick contract.
func (p *Pipeline) ShouldPaint() bool {
	return p.needsPaint || p.session.Dirty()
}

// RenderFrame paints one full frame synchronously and acknowledges the
// engine's dirty state. Detached sessions paint nothing; the frame is
// still flushed so hosted cursors and buffers settle.
func (p *Pipeline) RenderFrame(s Surface) {
	p.needsPaint = false
	if p.session.Attached() {
		p.paintGrid(s)
		p.paintCursor(s)
		p.session.ClearDirty()
	}
	s.Flush()
}

// Run drives the frame cadence until stop closes, painting only when
// ShouldPaint reports stale output. It is the packaged loop for hosts
// that give the pipeline a goroutine of its own; toolkit frontends
// schedule RenderFrame on their own timers instead. The single-thread
// contract still holds: nothing else may touch the pipeline or its
// session while Run is live.
func (p *Pipeline) Run(s Surface, stop <-chan struct{}) {
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if p.ShouldPaint() {
				p.RenderFrame(s)
			}
		}
	}
}

func (p *Pipeline) paintGrid(s Surface) {
	cols, rows := p.geom.Size()
	cellW, cellH := p.geom.CellSize()

	for row := 0; row < rows; row++ {
		cells := p.session.Row(row)
		col := 0
		y := float64(row) * cellH
		for _, cell := range cells {
			if col >= cols {
				break
			}
			width := cell.Width()
			x := float64(col) * cellW

			// Background first. Cells matching the theme
			// background are skipped; the frontend cleared the
			// surface to that color, so the result is identical
			// to painting them.
			bg := p.theme.Resolve(cell.Background, BackgroundChannel)
			if bg != p.theme.Background {
				s.FillRect(x, y, cellW*float64(width), cellH, bg)
			}

			if cell.Glyph != "" && cell.Glyph != " " {
				fg := p.theme.Resolve(cell.Foreground, ForegroundChannel)
				s.DrawGlyph(cell.Glyph, x, y, fg, Style{
					Bold:   cell.Flags.Bold(),
					Italic: cell.Flags.Italic(),
					Dim:    cell.Flags.Dim(),
				})
			}

			col += width
		}
	}
}

// paintCursor draws the translucent cursor overlay at the engine's
// reported position, skipping silently when it falls outside the grid.
func (p *Pipeline) paintCursor(s Surface) {
	cols, rows := p.geom.Size()
	cx, cy := p.session.Cursor()
	if cx < 0 || cx >= cols || cy < 0 || cy >= rows {
		return
	}
	cellW, cellH := p.geom.CellSize()
	s.FillCursor(float64(cx)*cellW, float64(cy)*cellH, cellW, cellH, p.theme.Cursor, p.theme.CursorOpacity)
}

