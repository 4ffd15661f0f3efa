package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/phroun/purrview"
)

// Options configures terminal creation.
type Options struct {
	Columns int                // Grid width in cells (default: 80)
	Rows    int                // Grid height in cells (default: 24)
	Theme   purrview.Theme     // Color theme (default: purrview.DefaultTheme())
	Erase   purrview.EraseMode // Erase byte profile (default: DEL)

	// View origin within the host terminal, in cells from the top
	// left. Useful when the view shares the screen with other chrome.
	OffsetX int
	OffsetY int

	// If true, the grid tracks the host terminal size instead of the
	// fixed Columns and Rows.
	AutoSize bool
}

// Terminal hosts a view for an external engine inside the actual
// terminal the process runs on. It owns the raw-mode lifecycle, a
// render goroutine on the frame cadence, and an input goroutine that
// feeds decoded keys to the session.
type Terminal struct {
	mu sync.Mutex

	session  *purrview.Session
	geom     *purrview.Geometry
	pipeline *purrview.Pipeline
	encoder  *purrview.Encoder
	surface  *Surface
	input    *InputHandler
	options  Options

	done       chan struct{}
	stopRender chan struct{}
	stopped    bool

	// Original terminal state for restoration
	oldState *term.State

	// Actual terminal size
	hostCols int
	hostRows int

	// Callbacks
	onResize    func(cols, rows int)
	keyCallback func(purrview.KeyEvent) bool
}

// New creates a terminal view over the given engine. A nil engine is
// accepted; the view runs detached and paints nothing until stopped.
func New(engine purrview.Engine, opts Options) (*Terminal, error) {
	// Apply defaults
	if opts.Columns <= 0 {
		opts.Columns = 80
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.Theme.Foreground == (purrview.RGB{}) {
		opts.Theme = purrview.DefaultTheme()
	}

	// Detect host terminal size if auto-sizing
	hostCols, hostRows := getHostTerminalSize()
	if opts.AutoSize {
		opts.Columns = hostCols - opts.OffsetX
		opts.Rows = hostRows - opts.OffsetY
	}

	session := purrview.NewSession(engine)
	geom := purrview.NewGeometry(session)

	t := &Terminal{
		session:    session,
		geom:       geom,
		options:    opts,
		done:       make(chan struct{}),
		stopRender: make(chan struct{}),
		hostCols:   hostCols,
		hostRows:   hostRows,
	}

	t.surface = NewSurface(nil, opts.OffsetX, opts.OffsetY)
	t.surface.SetBackground(opts.Theme.Background)

	t.pipeline = purrview.NewPipeline(session, geom, opts.Theme)

	t.encoder = purrview.NewEncoder(session)
	t.encoder.SetEraseMode(opts.Erase)
	t.encoder.SetRefreshCallback(t.pipeline.RequestRender)

	t.input = NewInputHandler(t)

	// Unit glyph metrics make surface units cells, so the grid is
	// exactly the requested region. The engine learns the size here,
	// before the first frame.
	geom.Recompute(float64(opts.Columns), float64(opts.Rows), 1, 1)

	return t, nil
}

// getHostTerminalSize returns the current size of the host terminal
func getHostTerminalSize() (cols, rows int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return cols, rows
}

// Start enters raw mode, switches to the alternate screen, and starts
// the render and input goroutines.
func (t *Terminal) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Enter raw mode
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.oldState = oldState

	// Hide host cursor
	fmt.Print("\033[?25l")

	// Enable alternate screen buffer
	fmt.Print("\033[?1049h")

	// Clear screen
	fmt.Print("\033[2J\033[H")

	t.clearViewLocked()

	// Set up SIGWINCH handler for terminal resize
	go t.handleSIGWINCH()

	// Start render loop
	go t.renderLoop()

	// Start input loop
	go t.input.InputLoop()

	return nil
}

// clearViewLocked queues a background fill of the whole view region
// and a repaint. The fill lands in the surface's frame buffer and goes
// out with the next flush.
func (t *Terminal) clearViewLocked() {
	cols, rows := t.geom.Size()
	t.surface.FillRect(0, 0, float64(cols), float64(rows), t.pipeline.Theme().Background)
	t.pipeline.RequestRender()
}

// renderLoop repaints on the frame cadence whenever the pipeline or
// the engine reports stale output.
func (t *Terminal) renderLoop() {
	ticker := time.NewTicker(purrview.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.mu.Lock()
			if t.pipeline.ShouldPaint() {
				t.pipeline.RenderFrame(t.surface)
			}
			t.mu.Unlock()
		case <-t.stopRender:
			return
		}
	}
}

// handleSIGWINCH listens for terminal resize signals
func (t *Terminal) handleSIGWINCH() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			t.handleResize()
		case <-t.done:
			return
		}
	}
}

// handleResize updates the grid when the host terminal is resized.
func (t *Terminal) handleResize() {
	t.mu.Lock()
	defer t.mu.Unlock()

	newCols, newRows := getHostTerminalSize()
	if newCols == t.hostCols && newRows == t.hostRows {
		return
	}
	t.hostCols = newCols
	t.hostRows = newRows

	if t.options.AutoSize {
		cols, rows, changed := t.geom.Recompute(
			float64(newCols-t.options.OffsetX),
			float64(newRows-t.options.OffsetY),
			1, 1,
		)
		t.options.Columns = cols
		t.options.Rows = rows
		if changed && t.onResize != nil {
			t.onResize(cols, rows)
		}
	}

	// The host may have damaged the screen; repaint everything.
	t.clearViewLocked()
}

// handleKey runs one decoded key through the interception callback and
// then the encoder.
func (t *Terminal) handleKey(ev purrview.KeyEvent) {
	t.mu.Lock()
	cb := t.keyCallback
	t.mu.Unlock()

	if cb != nil && cb(ev) {
		return
	}

	t.mu.Lock()
	t.encoder.Key(ev)
	t.mu.Unlock()
}

// Write sends raw bytes to the engine, bypassing the key encoder.
func (t *Terminal) Write(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.session.Write(data)
	t.pipeline.RequestRender()
	return n, err
}

// WriteString sends a string to the engine.
func (t *Terminal) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// Size returns the grid size in cells.
func (t *Terminal) Size() (cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.geom.Size()
}

// HostSize returns the host terminal size.
func (t *Terminal) HostSize() (cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hostCols, t.hostRows
}

// Resize sets a fixed grid size. The engine is notified only when the
// size actually changes.
func (t *Terminal) Resize(cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols, rows, changed := t.geom.Recompute(float64(cols), float64(rows), 1, 1)
	t.options.Columns = cols
	t.options.Rows = rows
	t.clearViewLocked()
	if changed && t.onResize != nil {
		t.onResize(cols, rows)
	}
}

// Session returns the underlying engine session.
func (t *Terminal) Session() *purrview.Session {
	return t.session
}

// Encoder returns the input encoder, for hosts that feed composition
// or committed text alongside hard keys.
func (t *Terminal) Encoder() *purrview.Encoder {
	return t.encoder
}

// SetComposingText replaces the provisional text supplied by an input
// method.
func (t *Terminal) SetComposingText(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.encoder.SetComposingText(text)
}

// FinishComposing ends the current composition.
func (t *Terminal) FinishComposing() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.encoder.FinishComposing()
}

// CommitText forwards committed text from an input method.
func (t *Terminal) CommitText(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.encoder.CommitText(text)
}

// DeleteSurrounding erases text around the cursor at an input
// method's request.
func (t *Terminal) DeleteSurrounding(before, after int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.encoder.DeleteSurrounding(before, after)
}

// Theme returns the active theme.
func (t *Terminal) Theme() purrview.Theme {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pipeline.Theme()
}

// SetTheme swaps the theme and repaints.
func (t *Terminal) SetTheme(theme purrview.Theme) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pipeline.SetTheme(theme)
	t.surface.SetBackground(theme.Background)
	t.clearViewLocked()
}

// SetOnResize sets a callback for grid size changes.
func (t *Terminal) SetOnResize(fn func(cols, rows int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onResize = fn
}

// SetKeyCallback sets a callback for intercepting decoded keys before
// they reach the encoder. Return true from the callback to consume the
// key.
func (t *Terminal) SetKeyCallback(fn func(purrview.KeyEvent) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.keyCallback = fn
}

// Wait blocks until the terminal is stopped.
func (t *Terminal) Wait() {
	<-t.done
}

// Stop shuts down the goroutines, closes the engine session, and
// restores the original terminal state. Stopping twice is a no-op.
func (t *Terminal) Stop() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	close(t.stopRender)
	err := t.session.Close()
	oldState := t.oldState
	t.mu.Unlock()

	// Restore terminal state
	if oldState != nil {
		// Disable alternate screen buffer
		fmt.Print("\033[?1049l")

		// Show cursor
		fmt.Print("\033[?25h")

		// Reset attributes
		fmt.Print("\033[0m")

		// Restore terminal mode
		term.Restore(int(os.Stdin.Fd()), oldState)
	}

	close(t.done)
	return err
}

// Close is an alias for Stop
func (t *Terminal) Close() error {
	return t.Stop()
}
