package purrviewgtk

import (
	"github.com/gotk3/gotk3/gtk"

	"github.com/phroun/purrview"
)

// Options configures terminal creation
type Options struct {
	Columns    int                // Initial grid width in cells (default: 80)
	Rows       int                // Initial grid height in cells (default: 24)
	FontFamily string             // Font family (default: "Monospace")
	FontSize   float64            // Font size in points (default: 14)
	Theme      purrview.Theme     // Color theme (default: purrview.DefaultTheme())
	Erase      purrview.EraseMode // Erase byte profile (default: DEL)
}

// Terminal hosts an engine view as an embeddable GTK widget. The
// initial grid holds until the widget is allocated; from then on the
// grid tracks the widget size and the engine is told about every
// change.
type Terminal struct {
	widget  *Widget
	options Options
}

// New creates a terminal view over the given engine. A nil engine is
// accepted; the view stays blank until closed.
func New(engine purrview.Engine, opts Options) (*Terminal, error) {
	// Apply defaults
	if opts.Columns <= 0 {
		opts.Columns = 80
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.FontFamily == "" {
		opts.FontFamily = "Monospace"
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 14
	}
	if opts.Theme.Foreground == (purrview.RGB{}) {
		opts.Theme = purrview.DefaultTheme()
	}

	// Create widget
	widget, err := NewWidget(engine, opts.Columns, opts.Rows)
	if err != nil {
		return nil, err
	}

	widget.SetFont(opts.FontFamily, opts.FontSize)
	widget.SetTheme(opts.Theme)
	widget.SetEraseMode(opts.Erase)

	return &Terminal{
		widget:  widget,
		options: opts,
	}, nil
}

// Widget returns the underlying view widget.
func (t *Terminal) Widget() *Widget {
	return t.widget
}

// Area returns the GTK drawing area for packing into containers.
func (t *Terminal) Area() *gtk.DrawingArea {
	return t.widget.DrawingArea()
}

// Write sends raw bytes to the engine.
func (t *Terminal) Write(data []byte) (int, error) {
	return t.widget.Write(data)
}

// WriteString sends a string to the engine.
func (t *Terminal) WriteString(s string) (int, error) {
	return t.widget.Write([]byte(s))
}

// Size returns the grid size in cells.
func (t *Terminal) Size() (cols, rows int) {
	return t.widget.Size()
}

// SetFont sets the font family and point size.
func (t *Terminal) SetFont(family string, size float64) {
	t.widget.SetFont(family, size)
}

// Theme returns the active theme.
func (t *Terminal) Theme() purrview.Theme {
	return t.widget.Theme()
}

// SetTheme swaps the theme and repaints.
func (t *Terminal) SetTheme(theme purrview.Theme) {
	t.widget.SetTheme(theme)
}

// SetResizeCallback sets a callback that's called when the grid size
// changes.
func (t *Terminal) SetResizeCallback(fn func(cols, rows int)) {
	t.widget.SetResizeCallback(fn)
}

// SetKeyCallback sets a callback for intercepting decoded keys before
// they reach the encoder.
func (t *Terminal) SetKeyCallback(fn func(purrview.KeyEvent) bool) {
	t.widget.SetKeyCallback(fn)
}

// Session returns the underlying engine session.
func (t *Terminal) Session() *purrview.Session {
	return t.widget.Session()
}

// Encoder returns the input encoder, for hosts that feed composition
// or committed text alongside hard keys.
func (t *Terminal) Encoder() *purrview.Encoder {
	return t.widget.Encoder()
}

// SetComposingText replaces the provisional text supplied by an input
// method.
func (t *Terminal) SetComposingText(text string) {
	t.widget.SetComposingText(text)
}

// FinishComposing ends the current composition.
func (t *Terminal) FinishComposing() {
	t.widget.FinishComposing()
}

// CommitText forwards committed text from an input method.
func (t *Terminal) CommitText(text string) {
	t.widget.CommitText(text)
}

// DeleteSurrounding erases text around the cursor at an input
// method's request.
func (t *Terminal) DeleteSurrounding(before, after int) {
	t.widget.DeleteSurrounding(before, after)
}

// Close stops the frame timer and closes the engine session.
func (t *Terminal) Close() error {
	return t.widget.Close()
}
