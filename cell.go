package purrview

// CellFlags is the style bitset carried by a cell.
type CellFlags uint8

const (
	FlagBold CellFlags = 1 << iota
	FlagItalic
	FlagDim
	FlagWide
)

// Bold reports whether the bold flag is set.
func (f CellFlags) Bold() bool { return f&FlagBold != 0 }

// Italic reports whether the italic flag is set.
func (f CellFlags) Italic() bool { return f&FlagItalic != 0 }

// Dim reports whether the dim flag is set.
func (f CellFlags) Dim() bool { return f&FlagDim != 0 }

// Wide reports whether the cell spans two columns.
func (f CellFlags) Wide() bool { return f&FlagWide != 0 }

// Cell is one terminal grid position as decoded from the engine's cell
// protocol. Glyph holds zero or one printable unit (a full grapheme
// cluster, so combining marks ride along); an empty glyph still carries
// a background color and paints as a filled rectangle.
type Cell struct {
	Glyph      string
	Foreground RGB
	Background RGB
	Flags      CellFlags
}

// Width returns how many column slots the cell occupies: 2 for wide
// cells, 1 otherwise.
func (c Cell) Width() int {
	if c.Flags.Wide() {
		return 2
	}
	return 1
}

// BlankCell returns an empty single-width cell carrying the wire
// default colors. The codec substitutes it for malformed records.
func BlankCell() Cell {
	return Cell{
		Foreground: WireDefaultForeground,
		Background: WireDefaultBackground,
	}
}
