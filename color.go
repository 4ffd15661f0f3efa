// Package purrview provides the toolkit-neutral core of a terminal view
// layer for an external terminal engine: the engine interprets shell
// output and owns the cell grid; this package decodes the engine's cell
// wire protocol, resolves colors through a theme, tracks grid geometry,
// drives the repaint cadence, and encodes input events back into raw
// engine bytes.
//
// This package contains:
//   - RGB color type, theme, and default-palette resolution
//   - Cell representation and the cell wire codec
//   - Grid geometry and font metric helpers
//   - Render pipeline over an abstract drawing Surface
//   - Input encoder state machine (keys, composition, deletion)
//   - Engine interfaces and the Session resource object
//
// Toolkit-specific packages (purrview/gtk, purrview/qt, purrview/cli,
// purrview/tui) provide the widget and host-terminal implementations
// that use this core package.
package purrview

// RGB is a 24-bit color as three channel values.
type RGB struct {
	R, G, B uint8
}

// Channel selects which half of a cell a color belongs to. The resolver
// treats the engine's default background differently from its default
// foreground, so callers must say which side they are painting.
type Channel uint8

const (
	ForegroundChannel Channel = iota
	BackgroundChannel
)

// Engine wire defaults. Rows arriving over the cell protocol use these
// when a color component is missing or unparseable.
var (
	WireDefaultForeground = RGB{255, 255, 255}
	WireDefaultBackground = RGB{0, 0, 0}
)

// enginePalette holds the 16 colors the engine reports for unthemed
// ANSI output, in slot order: black, red, green, yellow, blue, magenta,
// cyan, white, then the bright variants. Resolution matches on exact
// equality against these values only.
var enginePalette = [16]RGB{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}

// Palette slot indices for the white entries, which stay unthemed.
const (
	slotWhite       = 7
	slotBrightWhite = 15
)

// EnginePaletteSlot returns the palette slot whose engine default value
// exactly equals c, or -1 when c is not an engine default. Equality is
// exact on all three channels; no tolerance matching.
func EnginePaletteSlot(c RGB) int {
	for i, ref := range enginePalette {
		if c == ref {
			return i
		}
	}
	return -1
}

// Hex returns the color as a hex string like "#rrggbb".
func (c RGB) Hex() string {
	return "#" + hexByte(c.R) + hexByte(c.G) + hexByte(c.B)
}

func hexByte(b uint8) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[b>>4], hex[b&0x0F]})
}

// ParseHexColor parses a hex color string in "#RRGGBB" or "#RGB" form.
func ParseHexColor(s string) (RGB, bool) {
	if len(s) == 0 || s[0] != '#' {
		return RGB{}, false
	}
	s = s[1:]
	var r, g, b uint8
	switch len(s) {
	case 3:
		r = parseHexNibble(s[0]) * 17
		g = parseHexNibble(s[1]) * 17
		b = parseHexNibble(s[2]) * 17
	case 6:
		r = parseHexNibble(s[0])<<4 | parseHexNibble(s[1])
		g = parseHexNibble(s[2])<<4 | parseHexNibble(s[3])
		b = parseHexNibble(s[4])<<4 | parseHexNibble(s[5])
	default:
		return RGB{}, false
	}
	return RGB{r, g, b}, true
}

func parseHexNibble(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
