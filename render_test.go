package purrview

import (
	"sync"
	"testing"
	"time"
)

// surfaceOp records one drawing call.
type surfaceOp struct {
	kind    string // rect, glyph, cursor, flush
	glyph   string
	x, y    float64
	w, h    float64
	color   RGB
	style   Style
	opacity float64
}

// recordingSurface captures the pipeline's drawing calls in order.
type recordingSurface struct {
	ops []surfaceOp
}

func (s *recordingSurface) FillRect(x, y, w, h float64, c RGB) {
	s.ops = append(s.ops, surfaceOp{kind: "rect", x: x, y: y, w: w, h: h, color: c})
}

func (s *recordingSurface) DrawGlyph(glyph string, x, y float64, c RGB, style Style) {
	s.ops = append(s.ops, surfaceOp{kind: "glyph", glyph: glyph, x: x, y: y, color: c, style: style})
}

func (s *recordingSurface) FillCursor(x, y, w, h float64, c RGB, opacity float64) {
	s.ops = append(s.ops, surfaceOp{kind: "cursor", x: x, y: y, w: w, h: h, color: c, opacity: opacity})
}

func (s *recordingSurface) Flush() {
	s.ops = append(s.ops, surfaceOp{kind: "flush"})
}

func (s *recordingSurface) byKind(kind string) []surfaceOp {
	var out []surfaceOp
	for _, op := range s.ops {
		if op.kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// newTestPipeline builds a pipeline over a rich engine with a
// unit-metric cell grid of the given size.
func newTestPipeline(cols, rows int) (*Pipeline, *richStubEngine) {
	engine := newRichStubEngine()
	session := NewSession(engine)
	geom := NewGeometry(session)
	geom.Recompute(float64(cols), float64(rows), 1, 1)
	return NewPipeline(session, geom, DefaultTheme()), engine
}

func TestPipelineShouldPaint(t *testing.T) {
	t.Parallel()

	p, engine := newTestPipeline(4, 2)

	// The first tick always paints.
	if !p.ShouldPaint() {
		t.Fatal("fresh pipeline declines to paint")
	}

	p.RenderFrame(&recordingSurface{})
	if p.ShouldPaint() {
		t.Error("pipeline still stale after a frame with a clean engine")
	}

	p.RequestRender()
	if !p.ShouldPaint() {
		t.Error("RequestRender did not mark the display stale")
	}
	p.RenderFrame(&recordingSurface{})

	// Engine-side dirt also triggers a paint.
	engine.dirty = true
	if !p.ShouldPaint() {
		t.Error("engine dirt not visible to ShouldPaint")
	}
}

func TestPipelineShouldPaintWithoutTracker(t *testing.T) {
	t.Parallel()

	// Engines without dirty tracking repaint every tick.
	engine := newStubEngine()
	session := NewSession(engine)
	geom := NewGeometry(session)
	geom.Recompute(4, 2, 1, 1)
	p := NewPipeline(session, geom, DefaultTheme())

	p.RenderFrame(&recordingSurface{})
	if !p.ShouldPaint() {
		t.Error("trackerless engine reported clean")
	}
}

func TestPipelineRenderFrameAcknowledgesDirty(t *testing.T) {
	t.Parallel()

	p, engine := newTestPipeline(4, 2)
	engine.dirty = true

	p.RenderFrame(&recordingSurface{})
	if engine.dirty {
		t.Error("RenderFrame did not acknowledge the engine's dirty state")
	}
}

func TestPipelineDetachedStillFlushes(t *testing.T) {
	t.Parallel()

	session := NewSession(nil)
	geom := NewGeometry(session)
	geom.Recompute(4, 2, 1, 1)
	p := NewPipeline(session, geom, DefaultTheme())

	s := &recordingSurface{}
	p.RenderFrame(s)

	if len(s.ops) != 1 || s.ops[0].kind != "flush" {
		t.Errorf("detached frame ops = %+v, want a single flush", s.ops)
	}
}

func TestPipelineBackgroundSkip(t *testing.T) {
	t.Parallel()

	p, engine := newTestPipeline(4, 1)
	// First cell sits on the default background (skipped), second on
	// the engine's red (painted).
	engine.cellRows[0] = "a\t229,229,229\t0,0,0\t\nb\t229,229,229\t205,49,49\t"

	s := &recordingSurface{}
	p.RenderFrame(s)

	rects := s.byKind("rect")
	if len(rects) != 1 {
		t.Fatalf("frame painted %d backgrounds, want 1: %+v", len(rects), rects)
	}
	if rects[0].x != 1 || rects[0].color != (RGB{205, 49, 49}) {
		t.Errorf("background = %+v, want red at x=1", rects[0])
	}
}

func TestPipelineGlyphPainting(t *testing.T) {
	t.Parallel()

	p, engine := newTestPipeline(4, 1)
	// Empty and space glyphs carry background only; no glyph call.
	engine.cellRows[0] = "A\t205,49,49\t0,0,0\tb\n\t255,255,255\t10,10,10\t\n \t255,255,255\t10,10,10\t"

	s := &recordingSurface{}
	p.RenderFrame(s)

	glyphs := s.byKind("glyph")
	if len(glyphs) != 1 {
		t.Fatalf("frame painted %d glyphs, want 1: %+v", len(glyphs), glyphs)
	}
	got := glyphs[0]
	if got.glyph != "A" || got.x != 0 {
		t.Errorf("glyph = %+v, want A at x=0", got)
	}
	if !got.style.Bold || got.style.Italic || got.style.Dim {
		t.Errorf("style = %+v, want bold only", got.style)
	}
	// Both blank cells still painted their non-default background.
	if rects := s.byKind("rect"); len(rects) != 2 {
		t.Errorf("frame painted %d backgrounds, want 2", len(rects))
	}
}

func TestPipelineWideCellAdvancesTwoColumns(t *testing.T) {
	t.Parallel()

	p, engine := newTestPipeline(10, 1)
	engine.cellRows[0] = "世\t255,255,255\t10,10,10\tw\nx\t255,255,255\t10,10,10\t"

	s := &recordingSurface{}
	p.RenderFrame(s)

	rects := s.byKind("rect")
	if len(rects) != 2 {
		t.Fatalf("frame painted %d backgrounds, want 2", len(rects))
	}
	if rects[0].x != 0 || rects[0].w != 2 {
		t.Errorf("wide background = %+v, want x=0 w=2", rects[0])
	}
	if rects[1].x != 2 || rects[1].w != 1 {
		t.Errorf("following background = %+v, want x=2 w=1", rects[1])
	}

	glyphs := s.byKind("glyph")
	if len(glyphs) != 2 || glyphs[0].x != 0 || glyphs[1].x != 2 {
		t.Errorf("glyph positions = %+v, want x=0 then x=2", glyphs)
	}
}

func TestPipelineClipsToGrid(t *testing.T) {
	t.Parallel()

	p, engine := newTestPipeline(2, 1)
	engine.cellRows[0] = "a\t255,255,255\t10,10,10\t\nb\t255,255,255\t10,10,10\t\nc\t255,255,255\t10,10,10\t"

	s := &recordingSurface{}
	p.RenderFrame(s)

	if glyphs := s.byKind("glyph"); len(glyphs) != 2 {
		t.Errorf("frame painted %d glyphs on a 2-column grid, want 2", len(glyphs))
	}
}

func TestPipelineCursor(t *testing.T) {
	t.Parallel()

	p, engine := newTestPipeline(4, 2)
	engine.cursorX, engine.cursorY = 3, 1

	s := &recordingSurface{}
	p.RenderFrame(s)

	cursors := s.byKind("cursor")
	if len(cursors) != 1 {
		t.Fatalf("frame painted %d cursors, want 1", len(cursors))
	}
	got := cursors[0]
	theme := DefaultTheme()
	if got.x != 3 || got.y != 1 || got.w != 1 || got.h != 1 {
		t.Errorf("cursor rect = %+v, want cell (3,1)", got)
	}
	if got.color != theme.Cursor || got.opacity != theme.CursorOpacity {
		t.Errorf("cursor paint = %+v, want theme cursor color and opacity", got)
	}

	// The cursor is the last thing before the flush.
	last := s.ops[len(s.ops)-1]
	secondLast := s.ops[len(s.ops)-2]
	if last.kind != "flush" || secondLast.kind != "cursor" {
		t.Errorf("frame tail = %s, %s; want cursor then flush", secondLast.kind, last.kind)
	}
}

func TestPipelineCursorOutsideGridSkipped(t *testing.T) {
	t.Parallel()

	positions := [][2]int{{4, 0}, {0, 2}, {-1, 0}, {0, -1}}
	for _, pos := range positions {
		p, engine := newTestPipeline(4, 2)
		engine.cursorX, engine.cursorY = pos[0], pos[1]

		s := &recordingSurface{}
		p.RenderFrame(s)

		if cursors := s.byKind("cursor"); len(cursors) != 0 {
			t.Errorf("cursor at %v painted %d overlays, want 0", pos, len(cursors))
		}
	}
}

func TestPipelineSetTheme(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(4, 2)
	p.RenderFrame(&recordingSurface{})

	theme := DefaultTheme()
	theme.Name = "other"
	theme.Background = RGB{30, 30, 46}
	p.SetTheme(theme)

	if got := p.Theme(); got.Name != "other" {
		t.Errorf("Theme().Name = %q, want %q", got.Name, "other")
	}
	if !p.ShouldPaint() {
		t.Error("theme change did not force a repaint")
	}
}

// signalSurface reports the first completed frame on a channel.
type signalSurface struct {
	recordingSurface
	painted chan struct{}
	once    sync.Once
}

func (s *signalSurface) Flush() {
	s.recordingSurface.Flush()
	s.once.Do(func() { close(s.painted) })
}

func TestPipelineRunPaintsAndStops(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(2, 1)
	s := &signalSurface{painted: make(chan struct{})}
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		p.Run(s, stop)
		close(done)
	}()

	select {
	case <-s.painted:
	case <-time.After(2 * time.Second):
		t.Fatal("Run never painted a stale pipeline")
	}

	close(stop)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after stop")
	}
}
