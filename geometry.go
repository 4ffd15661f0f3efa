package purrview

import "math"

// Font size bounds for zoom gestures, in logical units. Geometry
// recomputation clamps to this range before measuring glyphs.
const (
	MinFontSize = 10
	MaxFontSize = 40
)

// ClampFontSize bounds a requested font size to the supported range.
func ClampFontSize(size float64) float64 {
	if size < MinFontSize {
		return MinFontSize
	}
	if size > MaxFontSize {
		return MaxFontSize
	}
	return size
}

// EstimateCellMetrics derives monospace cell metrics from a font size
// for surfaces without native font measurement. The ratios match the
// Qt fallback path: advance 6/10 and line height 12/10 of the point
// size, baseline ascent at the point size.
func EstimateCellMetrics(fontSize float64) (advance, height, ascent float64) {
	fontSize = ClampFontSize(fontSize)
	return fontSize * 6 / 10, fontSize * 12 / 10, fontSize
}

// Geometry converts drawing-surface dimensions and glyph metrics into
// the authoritative grid size and pushes changes to the engine. It
// holds a borrowed Session reference; the Session may be nil for
// standalone use (tests, measurement tools), in which case changes are
// computed but not announced.
type Geometry struct {
	session *Session

	cols, rows int
	cellW      float64
	cellH      float64
}

// NewGeometry returns a geometry bound to the given session. The grid
// is empty until the first Recompute.
func NewGeometry(session *Session) *Geometry {
	return &Geometry{session: session}
}

// Size returns the current grid dimensions in cells.
func (g *Geometry) Size() (cols, rows int) {
	return g.cols, g.rows
}

// CellSize returns the glyph advance and line height of the current
// grid, in surface units.
func (g *Geometry) CellSize() (w, h float64) {
	return g.cellW, g.cellH
}

// Recompute derives the grid from the available surface area and the
// monospace glyph metrics: columns = floor(width/advance), rows =
// floor(height/lineHeight), each clamped to a minimum of 1 so the grid
// never collapses. When the resulting (cols, rows) differs from the
// previous value the engine is notified exactly once through the
// session; recomputations that land on the same grid are no-ops.
func (g *Geometry) Recompute(surfaceWidth, surfaceHeight, glyphAdvance, lineHeight float64) (cols, rows int, changed bool) {
	cols = gridDim(surfaceWidth, glyphAdvance)
	rows = gridDim(surfaceHeight, lineHeight)

	g.cellW = glyphAdvance
	g.cellH = lineHeight

	if cols == g.cols && rows == g.rows {
		return cols, rows, false
	}
	g.cols = cols
	g.rows = rows
	if g.session != nil {
		g.session.Resize(cols, rows)
	}
	return cols, rows, true
}

// gridDim divides available space by a cell metric, clamped to 1.
// Degenerate metrics (zero or negative) also clamp rather than fault.
func gridDim(space, metric float64) int {
	if metric <= 0 {
		return 1
	}
	n := int(math.Floor(space / metric))
	if n < 1 {
		return 1
	}
	return n
}
