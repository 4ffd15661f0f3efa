package purrview

// Theme supplies the palette and chrome colors for one render session.
// A Theme is immutable while attached to a pipeline; switching themes
// replaces the whole value rather than mutating slots in place.
type Theme struct {
	Name string

	// Foreground and Background are the base colors of the drawing
	// area. Frontends clear their surface to Background before the
	// pipeline paints, which is what makes the per-cell background
	// skip in the pipeline a pure optimization.
	Foreground RGB
	Background RGB

	// Cursor is the overlay color for the cursor rectangle;
	// CursorOpacity is its alpha in [0,1].
	Cursor        RGB
	CursorOpacity float64

	// Palette maps the 16 logical slots (8 base + 8 bright) to the
	// colors this theme paints them with.
	Palette [16]RGB
}

// Resolve maps a wire color to the concrete color to paint.
//
// Colors that exactly equal one of the engine's 16 default palette
// values resolve to the corresponding theme palette slot; every other
// value passes through unchanged as true color, so programs emitting
// their own 24-bit output render faithfully. The two whites are never
// remapped: they are indistinguishable from deliberate white output
// and retheming them harms legibility.
//
// The one channel-dependent rule: the engine's default background
// black resolves to the theme Background on the background channel,
// so a themed background actually shows through; on the foreground
// channel black resolves to the theme's black slot.
//
// Resolve is total: every input produces a paintable color.
func (t *Theme) Resolve(c RGB, ch Channel) RGB {
	slot := EnginePaletteSlot(c)
	switch {
	case slot < 0:
		return c
	case slot == slotWhite || slot == slotBrightWhite:
		return c
	case slot == 0 && ch == BackgroundChannel:
		return t.Background
	default:
		return t.Palette[slot]
	}
}

// DefaultTheme returns the theme that paints engine output exactly as
// the engine reports it: the palette is the engine default palette and
// the base colors are the wire defaults. Hosts that theme the view
// start from this value and override slots.
func DefaultTheme() Theme {
	return Theme{
		Name:          "default",
		Foreground:    WireDefaultForeground,
		Background:    WireDefaultBackground,
		Cursor:        RGB{204, 204, 204},
		CursorOpacity: 0.4,
		Palette:       enginePalette,
	}
}
