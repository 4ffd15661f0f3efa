package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/phroun/purrview"
)

// Surface paints the cell grid onto a tcell screen. Coordinates arrive
// in cells because the adapter registers unit glyph metrics. tcell
// buffers content itself, so Flush maps to Show and the frame appears
// atomically.
type Surface struct {
	screen tcell.Screen

	// Clear color. Cells the pipeline skips keep this color, and
	// glyphs over skipped cells are drawn against it.
	background purrview.RGB

	// Background painted by the most recent FillRect, consulted by
	// DrawGlyph for the glyph's cell background.
	haveRect bool
	rectX    float64
	rectY    float64
	rectBg   purrview.RGB

	haveCursor bool
}

// NewSurface creates a surface over an initialized screen.
func NewSurface(screen tcell.Screen) *Surface {
	return &Surface{screen: screen}
}

// SetBackground sets the clear color glyphs are drawn against when
// their cell background was skipped as redundant.
func (s *Surface) SetBackground(c purrview.RGB) {
	s.background = c
}

// FillRect paints a rectangle of cells with the given background.
func (s *Surface) FillRect(x, y, w, h float64, c purrview.RGB) {
	style := tcell.StyleDefault.Background(toTcellColor(c))
	for dy := 0; dy < int(h); dy++ {
		for dx := 0; dx < int(w); dx++ {
			s.screen.SetContent(int(x)+dx, int(y)+dy, ' ', nil, style)
		}
	}
	s.haveRect = true
	s.rectX = x
	s.rectY = y
	s.rectBg = c
}

// DrawGlyph paints one glyph cluster. The first rune is the base
// character and the rest ride along as combining runes. tcell spreads
// wide runes over two cells on its own.
func (s *Surface) DrawGlyph(glyph string, x, y float64, c purrview.RGB, style purrview.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	var combining []rune
	if len(runes) > 1 {
		combining = runes[1:]
	}

	bg := s.background
	if s.haveRect && s.rectX == x && s.rectY == y {
		bg = s.rectBg
	}

	st := tcell.StyleDefault.
		Foreground(toTcellColor(c)).
		Background(toTcellColor(bg)).
		Bold(style.Bold).
		Italic(style.Italic).
		Dim(style.Dim)
	s.screen.SetContent(int(x), int(y), runes[0], combining, st)
}

// FillCursor places the host cursor on the cell. The color and opacity
// are ignored; the terminal draws its own cursor.
func (s *Surface) FillCursor(x, y, w, h float64, c purrview.RGB, opacity float64) {
	s.screen.ShowCursor(int(x), int(y))
	s.haveCursor = true
}

// Flush shows the frame. Frames that painted no cursor hide it.
func (s *Surface) Flush() {
	if !s.haveCursor {
		s.screen.HideCursor()
	}
	s.screen.Show()
	s.haveRect = false
	s.haveCursor = false
}

func toTcellColor(c purrview.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
