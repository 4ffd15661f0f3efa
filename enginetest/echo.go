package enginetest

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/phroun/purrview"
)

// Echo escape-swallowing states.
const (
	escNone = iota
	escSeen
	escCSI
)

// Echo is a minimal engine that behaves like a dumb echoing shell: it
// renders a prompt, echoes printable input, and understands just
// enough control bytes to stay coherent. Cursor and navigation
// sequences are swallowed, not interpreted.
//
// Echo deliberately implements neither the rich cell path nor dirty
// tracking, so views exercise their plain-text fallback and repaint
// every tick against it.
type Echo struct {
	cols, rows int
	grid       [][]rune
	col, row   int
	prompt     string

	escState int
	pending  []byte
	closed   bool
}

// NewEcho creates an echoing engine sized and personalized from the
// config, the same parameter bundle a real engine constructor takes.
func NewEcho(cfg purrview.Config) *Echo {
	cfg = cfg.Normalized()
	user := cfg.Username
	if user == "" {
		user = "guest"
	}
	home := cfg.HomeDir
	if home == "" {
		home = "~"
	}

	e := &Echo{
		cols:   cfg.Columns,
		rows:   cfg.Rows,
		prompt: user + ":" + home + "$ ",
	}
	e.grid = blankGrid(cfg.Columns, cfg.Rows)
	e.showPrompt()
	return e
}

func blankGrid(cols, rows int) [][]rune {
	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = blankRow(cols)
	}
	return grid
}

func blankRow(cols int) []rune {
	row := make([]rune, cols)
	for i := range row {
		row[i] = ' '
	}
	return row
}

func (e *Echo) showPrompt() {
	for _, r := range e.prompt {
		e.putRune(r)
	}
}

// Write interprets input bytes. Partial UTF-8 sequences are held until
// the rest arrives.
func (e *Echo) Write(p []byte) (int, error) {
	if e.closed {
		return 0, errClosed
	}
	e.pending = append(e.pending, p...)
	for len(e.pending) > 0 {
		b := e.pending[0]

		if e.escState == escSeen {
			if b == '[' {
				e.escState = escCSI
			} else {
				e.escState = escNone
			}
			e.pending = e.pending[1:]
			continue
		}
		if e.escState == escCSI {
			if b >= 0x40 && b <= 0x7e {
				e.escState = escNone
			}
			e.pending = e.pending[1:]
			continue
		}

		switch {
		case b == 0x1b:
			e.escState = escSeen
			e.pending = e.pending[1:]
		case b == 0x0d:
			// Carriage return submits the line.
			e.lineFeed()
			e.showPrompt()
			e.pending = e.pending[1:]
		case b == 0x0a:
			e.lineFeed()
			e.pending = e.pending[1:]
		case b == 0x09:
			e.tab()
			e.pending = e.pending[1:]
		case b == 0x7f || b == 0x08:
			// Both erase bytes are accepted regardless of the
			// view's erase profile.
			e.backspace()
			e.pending = e.pending[1:]
		case b < 0x20:
			e.pending = e.pending[1:]
		default:
			if !utf8.FullRune(e.pending) {
				return len(p), nil
			}
			r, size := utf8.DecodeRune(e.pending)
			e.pending = e.pending[size:]
			if r != utf8.RuneError {
				e.putRune(r)
			}
		}
	}
	return len(p), nil
}

// putRune echoes one glyph at the cursor. Wide glyphs advance two
// columns; the covered column holds a placeholder skipped by Line.
func (e *Echo) putRune(r rune) {
	w := runewidth.RuneWidth(r)
	if w < 1 {
		w = 1
	}
	if e.col+w > e.cols {
		e.lineFeed()
	}
	e.grid[e.row][e.col] = r
	for i := 1; i < w && e.col+i < e.cols; i++ {
		e.grid[e.row][e.col+i] = 0
	}
	e.col += w
}

func (e *Echo) lineFeed() {
	e.col = 0
	e.row++
	if e.row >= e.rows {
		copy(e.grid, e.grid[1:])
		e.grid[e.rows-1] = blankRow(e.cols)
		e.row = e.rows - 1
	}
}

func (e *Echo) tab() {
	next := (e.col/8 + 1) * 8
	if next >= e.cols {
		next = e.cols - 1
	}
	e.col = next
}

func (e *Echo) backspace() {
	if e.col == 0 {
		return
	}
	e.col--
	if e.grid[e.row][e.col] == 0 && e.col > 0 {
		// Landed on a wide placeholder; erase the glyph before it.
		e.col--
	}
	e.grid[e.row][e.col] = ' '
}

// Resize reshapes the grid, keeping the upper-left content.
func (e *Echo) Resize(cols, rows int) error {
	if e.closed {
		return errClosed
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	next := blankGrid(cols, rows)
	for r := 0; r < rows && r < e.rows; r++ {
		copy(next[r], e.grid[r])
	}
	e.grid = next
	e.cols = cols
	e.rows = rows
	if e.col >= cols {
		e.col = cols - 1
	}
	if e.row >= rows {
		e.row = rows - 1
	}
	return nil
}

// Line returns one row as plain text with trailing blanks trimmed.
func (e *Echo) Line(row int) string {
	if row < 0 || row >= e.rows {
		return ""
	}
	var sb strings.Builder
	for _, r := range e.grid[row] {
		if r == 0 {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " ")
}

// Cursor returns the echo cursor, in view columns.
func (e *Echo) Cursor() (col, row int) {
	return e.col, e.row
}

// Close marks the engine closed.
func (e *Echo) Close() error {
	if e.closed {
		return errClosed
	}
	e.closed = true
	return nil
}
