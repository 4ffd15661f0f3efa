// Package enginetest provides in-process engine doubles for tests and
// demos. Script speaks the rich cell path and records everything the
// view sends it; Echo speaks only the legacy line path and behaves
// like a minimal echoing shell. Neither spawns a process.
package enginetest

import (
	"errors"

	"github.com/phroun/purrview"
)

var errClosed = errors.New("enginetest: engine closed")

// Script is a scripted engine: callers set its grid content and cursor
// directly and inspect what the view sent back. It implements the rich
// cell path and dirty tracking, so views exercise their styled
// rendering and repaint skipping against it.
type Script struct {
	cols, rows int
	cells      [][]purrview.Cell
	cursorCol  int
	cursorRow  int

	written []byte
	resizes [][2]int
	dirty   bool
	closed  bool
}

// NewScript creates a scripted engine with a blank grid.
func NewScript(cols, rows int) *Script {
	s := &Script{}
	s.reshape(cols, rows)
	return s
}

func (s *Script) reshape(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	next := make([][]purrview.Cell, rows)
	for r := range next {
		next[r] = make([]purrview.Cell, 0, cols)
		if r < len(s.cells) {
			next[r] = append(next[r], s.cells[r]...)
			if len(next[r]) > cols {
				next[r] = next[r][:cols]
			}
		}
	}
	s.cells = next
	s.cols = cols
	s.rows = rows
	if s.cursorCol >= cols {
		s.cursorCol = cols - 1
	}
	if s.cursorRow >= rows {
		s.cursorRow = rows - 1
	}
	s.dirty = true
}

// SetRow replaces one row's cells and marks the grid dirty. Rows
// outside the grid are ignored.
func (s *Script) SetRow(row int, cells []purrview.Cell) {
	if row < 0 || row >= s.rows {
		return
	}
	if len(cells) > s.cols {
		cells = cells[:s.cols]
	}
	s.cells[row] = append(s.cells[row][:0], cells...)
	s.dirty = true
}

// SetRowText replaces one row with plain text carrying the given
// colors. Grapheme clusters and wide glyphs are handled the same way
// the legacy path handles them.
func (s *Script) SetRowText(row int, text string, fg, bg purrview.RGB) {
	cells := purrview.DecodeLine(text)
	for i := range cells {
		cells[i].Foreground = fg
		cells[i].Background = bg
	}
	s.SetRow(row, cells)
}

// SetCursor moves the reported cursor and marks the grid dirty.
func (s *Script) SetCursor(col, row int) {
	s.cursorCol = col
	s.cursorRow = row
	s.dirty = true
}

// Size returns the current grid size.
func (s *Script) Size() (cols, rows int) {
	return s.cols, s.rows
}

// Write records input bytes for later inspection.
func (s *Script) Write(p []byte) (int, error) {
	if s.closed {
		return 0, errClosed
	}
	s.written = append(s.written, p...)
	return len(p), nil
}

// Resize records the requested size and reshapes the grid to it.
func (s *Script) Resize(cols, rows int) error {
	if s.closed {
		return errClosed
	}
	s.resizes = append(s.resizes, [2]int{cols, rows})
	s.reshape(cols, rows)
	return nil
}

// Line renders one row as plain text, the legacy path.
func (s *Script) Line(row int) string {
	if row < 0 || row >= s.rows {
		return ""
	}
	var out []byte
	for _, c := range s.cells[row] {
		if c.Glyph == "" {
			out = append(out, ' ')
			continue
		}
		out = append(out, c.Glyph...)
	}
	return string(out)
}

// CellData renders one row in the cell wire format, the rich path.
func (s *Script) CellData(row int) string {
	if row < 0 || row >= s.rows {
		return ""
	}
	return purrview.EncodeRow(s.cells[row])
}

// Cursor returns the scripted cursor position.
func (s *Script) Cursor() (col, row int) {
	return s.cursorCol, s.cursorRow
}

// Dirty reports whether the grid changed since the last ClearDirty.
func (s *Script) Dirty() bool {
	return s.dirty
}

// ClearDirty acknowledges the current grid state.
func (s *Script) ClearDirty() {
	s.dirty = false
}

// Close marks the engine closed. Further writes and resizes fail.
func (s *Script) Close() error {
	if s.closed {
		return errClosed
	}
	s.closed = true
	return nil
}

// Written returns everything the view wrote, in order.
func (s *Script) Written() []byte {
	return append([]byte(nil), s.written...)
}

// Resizes returns every resize the view requested, in order.
func (s *Script) Resizes() [][2]int {
	return append([][2]int(nil), s.resizes...)
}

// Closed reports whether Close was called.
func (s *Script) Closed() bool {
	return s.closed
}
