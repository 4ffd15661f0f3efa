package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phroun/purrview"
)

// Surface paints the cell grid onto the host terminal with ANSI escape
// sequences. It is a cell-resolution surface: coordinates arrive in
// cells because the terminal adapter registers unit glyph metrics, and
// every paint call appends to a frame buffer that Flush writes to the
// host in a single call to avoid tearing.
//
// The host terminal has no alpha channel, so the cursor overlay is
// approximated by parking the host's own cursor on the cell and
// showing it; frames without a cursor paint leave it hidden.
type Surface struct {
	out io.Writer

	// Frame assembly buffer, written out once per Flush.
	frame strings.Builder

	// View origin within the host terminal, in cells.
	offsetX int
	offsetY int

	// Clear color. Cells the pipeline skips stay this color, and
	// glyphs over skipped cells are drawn against it.
	background purrview.RGB

	truecolor bool

	// Last attribute run, to skip redundant SGR output.
	haveAttr  bool
	lastFg    purrview.RGB
	lastBg    purrview.RGB
	lastStyle purrview.Style

	// Background painted by the most recent FillRect, consulted by
	// DrawGlyph for the glyph's cell background.
	haveRect bool
	rectX    float64
	rectY    float64
	rectBg   purrview.RGB

	// Host cursor placement for this frame.
	haveCursor bool
	cursorCol  int
	cursorRow  int
}

// NewSurface creates a surface writing to out, with the view's
// top-left corner at the given host cell offset. Passing nil for out
// writes to stdout. Color depth is probed from the environment.
func NewSurface(out io.Writer, offsetX, offsetY int) *Surface {
	if out == nil {
		out = os.Stdout
	}
	return &Surface{
		out:       out,
		offsetX:   offsetX,
		offsetY:   offsetY,
		truecolor: detectTrueColor(),
	}
}

// detectTrueColor reports whether the host terminal advertises 24-bit
// color support. Anything else falls back to the 256-color cube.
func detectTrueColor() bool {
	colorterm := os.Getenv("COLORTERM")
	if colorterm == "truecolor" || colorterm == "24bit" {
		return true
	}
	return strings.Contains(os.Getenv("TERM"), "truecolor")
}

// SetTrueColor overrides the probed color depth.
func (s *Surface) SetTrueColor(on bool) {
	s.truecolor = on
}

// SetBackground sets the clear color glyphs are drawn against when
// their cell background was skipped as redundant.
func (s *Surface) SetBackground(c purrview.RGB) {
	s.background = c
}

// beginFrame hides the host cursor before the first paint of a frame
// so partial updates never flicker it across the screen.
func (s *Surface) beginFrame() {
	if s.frame.Len() == 0 {
		s.frame.WriteString("\033[?25l")
	}
}

// moveTo positions the host cursor at a view cell. ANSI rows and
// columns are one-based.
func (s *Surface) moveTo(col, row int) {
	fmt.Fprintf(&s.frame, "\033[%d;%dH", s.offsetY+row+1, s.offsetX+col+1)
}

// setAttr emits the SGR run for the given colors and style, skipping
// the write when it matches the previous run.
func (s *Surface) setAttr(fg, bg purrview.RGB, style purrview.Style) {
	if s.haveAttr && fg == s.lastFg && bg == s.lastBg && style == s.lastStyle {
		return
	}
	s.frame.WriteString("\033[0")
	if style.Bold {
		s.frame.WriteString(";1")
	}
	if style.Dim {
		s.frame.WriteString(";2")
	}
	if style.Italic {
		s.frame.WriteString(";3")
	}
	s.frame.WriteByte(';')
	s.frame.WriteString(sgrColor(fg, true, s.truecolor))
	s.frame.WriteByte(';')
	s.frame.WriteString(sgrColor(bg, false, s.truecolor))
	s.frame.WriteByte('m')

	s.haveAttr = true
	s.lastFg = fg
	s.lastBg = bg
	s.lastStyle = style
}

// FillRect paints a rectangle of cells with the given background.
func (s *Surface) FillRect(x, y, w, h float64, c purrview.RGB) {
	s.beginFrame()
	cols := int(w)
	if cols < 1 {
		return
	}
	run := strings.Repeat(" ", cols)
	for row := 0; row < int(h); row++ {
		s.moveTo(int(x), int(y)+row)
		s.setAttr(s.lastFg, c, purrview.Style{})
		s.frame.WriteString(run)
	}
	s.haveRect = true
	s.rectX = x
	s.rectY = y
	s.rectBg = c
}

// DrawGlyph paints one glyph. The cell background is the one the
// preceding FillRect painted at this cell, or the clear color when the
// background paint was skipped.
func (s *Surface) DrawGlyph(glyph string, x, y float64, c purrview.RGB, style purrview.Style) {
	s.beginFrame()
	bg := s.background
	if s.haveRect && s.rectX == x && s.rectY == y {
		bg = s.rectBg
	}
	s.moveTo(int(x), int(y))
	s.setAttr(c, bg, style)
	s.frame.WriteString(glyph)
}

// FillCursor parks the host cursor on the cell. The color and opacity
// are ignored; the host terminal draws its own cursor.
func (s *Surface) FillCursor(x, y, w, h float64, c purrview.RGB, opacity float64) {
	s.haveCursor = true
	s.cursorCol = int(x)
	s.cursorRow = int(y)
}

// Flush terminates the frame and writes it to the host in one call.
// The host cursor is repositioned and shown only when the frame
// painted one.
func (s *Surface) Flush() {
	s.frame.WriteString("\033[0m")
	if s.haveCursor {
		s.moveTo(s.cursorCol, s.cursorRow)
		s.frame.WriteString("\033[?25h")
	}
	io.WriteString(s.out, s.frame.String())

	s.frame.Reset()
	s.haveAttr = false
	s.haveRect = false
	s.haveCursor = false
}

// sgrColor renders one color as an SGR parameter, 24-bit when the
// terminal supports it and the closest 256-color index otherwise.
func sgrColor(c purrview.RGB, foreground, truecolor bool) string {
	base := 48
	if foreground {
		base = 38
	}
	if truecolor {
		return fmt.Sprintf("%d;2;%d;%d;%d", base, c.R, c.G, c.B)
	}
	return fmt.Sprintf("%d;5;%d", base, xterm256(c))
}

// xterm256 quantizes a 24-bit color onto the xterm 256-color palette:
// the grayscale ramp for gray tones, the 6x6x6 cube for the rest.
func xterm256(c purrview.RGB) int {
	if c.R == c.G && c.G == c.B {
		if c.R < 8 {
			return 16
		}
		if c.R > 247 {
			return 231
		}
		return 232 + (int(c.R)-8)/10
	}
	return 16 + 36*cubeIndex(c.R) + 6*cubeIndex(c.G) + cubeIndex(c.B)
}

func cubeIndex(v uint8) int {
	if v < 48 {
		return 0
	}
	if v < 115 {
		return 1
	}
	return (int(v) - 35) / 40
}
