package purrview

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Cell wire format, the canonical versioned contract with the engine:
// one row per query, records separated by newline, fields separated by
// tab, color components separated by comma.
//
//	glyph <TAB> fgR,fgG,fgB <TAB> bgR,bgG,bgB <TAB> flags
//
// Flags is a character set drawn from "bidw" (bold, italic, dim, wide).
// A pipe-delimited variant of this protocol exists in the wild; it is
// deliberately not accepted here, since '|' is an ordinary glyph.
const (
	recordSeparator = "\n"
	fieldSeparator  = "\t"
	componentSep    = ","
)

// DecodeRow parses one row of serialized cell data into cells, in
// column order. An empty input decodes to no cells. Malformed records
// decode to a blank single-width cell so layout never stalls; flag
// characters outside the known set are ignored. Engines that terminate
// rather than separate records leave a trailing newline; one is
// tolerated so it does not read as a phantom blank cell.
func DecodeRow(data string) []Cell {
	data = strings.TrimSuffix(data, recordSeparator)
	if data == "" {
		return nil
	}
	records := strings.Split(data, recordSeparator)
	cells := make([]Cell, 0, len(records))
	for _, rec := range records {
		cells = append(cells, decodeRecord(rec))
	}
	return cells
}

// decodeRecord parses a single cell record. Records with fewer than
// four fields produce a blank cell; the column cursor still advances.
func decodeRecord(rec string) Cell {
	fields := strings.SplitN(rec, fieldSeparator, 4)
	if len(fields) < 4 {
		return BlankCell()
	}
	return Cell{
		Glyph:      fields[0],
		Foreground: decodeColorSpec(fields[1], WireDefaultForeground),
		Background: decodeColorSpec(fields[2], WireDefaultBackground),
		Flags:      decodeFlags(fields[3]),
	}
}

// decodeColorSpec parses "r,g,b". Each missing or unparseable component
// falls back to the matching channel of def, never to an error.
func decodeColorSpec(spec string, def RGB) RGB {
	parts := strings.Split(spec, componentSep)
	return RGB{
		R: decodeComponent(parts, 0, def.R),
		G: decodeComponent(parts, 1, def.G),
		B: decodeComponent(parts, 2, def.B),
	}
}

func decodeComponent(parts []string, i int, def uint8) uint8 {
	if i >= len(parts) {
		return def
	}
	v, err := strconv.Atoi(parts[i])
	if err != nil || v < 0 || v > 255 {
		return def
	}
	return uint8(v)
}

func decodeFlags(spec string) CellFlags {
	var f CellFlags
	for _, r := range spec {
		switch r {
		case 'b':
			f |= FlagBold
		case 'i':
			f |= FlagItalic
		case 'd':
			f |= FlagDim
		case 'w':
			f |= FlagWide
		}
	}
	return f
}

// EncodeRow serializes cells into the canonical wire form. Decoding an
// encoded row yields the same glyphs, colors, and flags. Engine doubles
// use it to speak the rich path; it is also how themes and tools write
// capture files.
func EncodeRow(cells []Cell) string {
	var sb strings.Builder
	for i, c := range cells {
		if i > 0 {
			sb.WriteString(recordSeparator)
		}
		sb.WriteString(c.Glyph)
		sb.WriteString(fieldSeparator)
		sb.WriteString(encodeColorSpec(c.Foreground))
		sb.WriteString(fieldSeparator)
		sb.WriteString(encodeColorSpec(c.Background))
		sb.WriteString(fieldSeparator)
		sb.WriteString(encodeFlags(c.Flags))
	}
	return sb.String()
}

func encodeColorSpec(c RGB) string {
	return strconv.Itoa(int(c.R)) + componentSep +
		strconv.Itoa(int(c.G)) + componentSep +
		strconv.Itoa(int(c.B))
}

func encodeFlags(f CellFlags) string {
	var sb strings.Builder
	if f.Bold() {
		sb.WriteByte('b')
	}
	if f.Italic() {
		sb.WriteByte('i')
	}
	if f.Dim() {
		sb.WriteByte('d')
	}
	if f.Wide() {
		sb.WriteByte('w')
	}
	return sb.String()
}

// DecodeLine converts a legacy plain-text row (the engine's uncolored
// path) into cells carrying the wire default colors. The text is split
// on grapheme cluster boundaries so combining marks stay attached to
// their base glyph, and clusters rendering double width are flagged
// wide. Control characters are assumed already stripped by the engine.
func DecodeLine(text string) []Cell {
	if text == "" {
		return nil
	}
	var cells []Cell
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		str := string(gr.Runes())
		cell := BlankCell()
		cell.Glyph = str
		if runewidth.StringWidth(str) >= 2 {
			cell.Flags |= FlagWide
		}
		cells = append(cells, cell)
	}
	return cells
}
