package purrview

// Engine is the calling contract of the external terminal engine: the
// process or library that interprets shell output and owns the cell
// grid. The view layer never parses escape sequences itself; it only
// feeds the engine raw bytes and queries row and cursor state.
//
// All methods are synchronous and expected to return in bounded time.
// A blocking engine stalls the render cadence: responsiveness is the
// engine's burden, and this layer defines no retry or timeout policy.
type Engine interface {
	// Write delivers raw input bytes to the engine and reports how
	// many were accepted.
	Write(p []byte) (int, error)

	// Resize tells the engine the authoritative grid size. The view
	// computes geometry from surface metrics; it is never inferred
	// from engine output.
	Resize(cols, rows int) error

	// Line returns one row as plain uncolored text, the legacy path.
	// Rows outside the grid return "".
	Line(row int) string

	// Cursor returns the zero-based cursor column and row.
	Cursor() (col, row int)

	// Close releases engine resources. The Session guarantees it is
	// called at most once.
	Close() error
}

// CellSource is the rich row path: engines that can serialize styled
// cells implement it alongside Engine, and the Session prefers it over
// Line whenever present.
type CellSource interface {
	// CellData returns one row in the canonical cell wire format
	// (see DecodeRow). Rows outside the grid return "".
	CellData(row int) string
}

// DirtyTracker is an optional engine capability reporting whether any
// row changed since the last ClearDirty. The pipeline uses it purely
// to skip repaint ticks; rendering must stay correct for engines that
// never implement it (every tick repaints).
type DirtyTracker interface {
	Dirty() bool
	ClearDirty()
}

// Config is the parameter bundle an engine constructor receives: the
// initial grid, the font size the view will render with, and the
// identity the engine's shell environment should assume.
type Config struct {
	Columns  int
	Rows     int
	FontSize float64
	HomeDir  string
	Username string
}

// Normalized returns the config with unset fields filled in (80x24
// grid, readable font size) so a zero Config is usable.
func (c Config) Normalized() Config {
	if c.Columns <= 0 {
		c.Columns = 80
	}
	if c.Rows <= 0 {
		c.Rows = 24
	}
	if c.FontSize <= 0 {
		c.FontSize = 14
	}
	return c
}
