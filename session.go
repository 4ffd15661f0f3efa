package purrview

// Session owns the attached engine for the lifetime of one view. It is
// the only component allowed to close the engine; geometry, pipeline,
// and encoder all hold a borrowed *Session and never the Engine
// itself. A Session over a nil engine is valid and inert: every
// operation becomes a no-op, which is how engine startup failure
// degrades (the view keeps running, just blank).
//
// Session is not safe for concurrent use. The core runs on one logical
// thread; frontends that span goroutines or toolkit threads serialize
// access with their own mutex.
type Session struct {
	engine Engine
	cells  CellSource
	dirty  DirtyTracker
	closed bool
}

// NewSession wraps an engine, detecting its optional capabilities. A
// nil engine yields a detached session.
func NewSession(engine Engine) *Session {
	s := &Session{engine: engine}
	if engine != nil {
		s.cells, _ = engine.(CellSource)
		s.dirty, _ = engine.(DirtyTracker)
	}
	return s
}

// Attached reports whether an engine is present and not yet closed.
func (s *Session) Attached() bool {
	return s.engine != nil && !s.closed
}

// Write forwards raw input bytes to the engine. Detached sessions
// accept nothing. Errors mean the bytes were not delivered this tick;
// there is no retry.
func (s *Session) Write(p []byte) (int, error) {
	if !s.Attached() {
		return 0, nil
	}
	return s.engine.Write(p)
}

// Resize tells the engine the new authoritative grid size.
func (s *Session) Resize(cols, rows int) error {
	if !s.Attached() {
		return nil
	}
	return s.engine.Resize(cols, rows)
}

// Row fetches and decodes one row. Engines exposing the rich cell path
// take precedence; others fall back to the legacy plain-text path.
// Detached sessions have no rows.
func (s *Session) Row(row int) []Cell {
	if !s.Attached() {
		return nil
	}
	if s.cells != nil {
		return DecodeRow(s.cells.CellData(row))
	}
	return DecodeLine(s.engine.Line(row))
}

// Cursor returns the zero-based cursor position, (0,0) when detached.
func (s *Session) Cursor() (col, row int) {
	if !s.Attached() {
		return 0, 0
	}
	return s.engine.Cursor()
}

// Dirty reports whether a repaint is needed according to the engine.
// Engines without dirty tracking always report true, so pipelines
// repaint every tick for them.
func (s *Session) Dirty() bool {
	if !s.Attached() {
		return false
	}
	if s.dirty == nil {
		return true
	}
	return s.dirty.Dirty()
}

// ClearDirty acknowledges the current dirty state after a repaint.
func (s *Session) ClearDirty() {
	if s.Attached() && s.dirty != nil {
		s.dirty.ClearDirty()
	}
}

// Close releases the engine exactly once. Further calls, and calls on
// detached sessions, are no-ops.
func (s *Session) Close() error {
	if !s.Attached() {
		return nil
	}
	s.closed = true
	return s.engine.Close()
}
