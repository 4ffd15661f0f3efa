// Command purrview runs a terminal view over the built-in echo engine,
// in either the direct ANSI frontend or the tcell one. It exists to
// exercise the module end to end without a real engine; type at it and
// the echo engine types back. Ctrl+Q quits.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/phroun/purrview"
	"github.com/phroun/purrview/cli"
	"github.com/phroun/purrview/enginetest"
	"github.com/phroun/purrview/tui"
)

const (
	defaultUI       = "cli"
	defaultColumns  = 80
	defaultRows     = 24
	defaultFontSize = 14
	defaultErase    = "del"
	maximumGridSpan = 1000
)

// config captures startup settings for the demo binary. Environment
// variables supply the defaults; flags override them.
type config struct {
	UI         string
	Columns    int
	Rows       int
	FontSize   float64
	Erase      string
	Foreground string
	Background string
	Cursor     string
	LogPath    string
}

// loadFromEnv loads runtime configuration from PURRVIEW_* environment
// variables.
func loadFromEnv() (config, error) {
	ui, err := readString("PURRVIEW_UI", defaultUI)
	if err != nil {
		return config{}, err
	}

	cols, err := readInt("PURRVIEW_COLS", defaultColumns, 1, maximumGridSpan)
	if err != nil {
		return config{}, err
	}

	rows, err := readInt("PURRVIEW_ROWS", defaultRows, 1, maximumGridSpan)
	if err != nil {
		return config{}, err
	}

	fontSize, err := readFloat("PURRVIEW_FONT_SIZE", defaultFontSize)
	if err != nil {
		return config{}, err
	}

	erase, err := readString("PURRVIEW_ERASE", defaultErase)
	if err != nil {
		return config{}, err
	}

	return config{
		UI:         ui,
		Columns:    cols,
		Rows:       rows,
		FontSize:   fontSize,
		Erase:      erase,
		Foreground: os.Getenv("PURRVIEW_FG"),
		Background: os.Getenv("PURRVIEW_BG"),
		Cursor:     os.Getenv("PURRVIEW_CURSOR"),
		LogPath:    os.Getenv("PURRVIEW_LOG"),
	}, nil
}

func readString(key, fallback string) (string, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	if raw == "" {
		return "", fmt.Errorf("%s must not be empty", key)
	}
	return raw, nil
}

func readInt(key string, fallback, min, max int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}
	return parsed, nil
}

func readFloat(key string, fallback float64) (float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return parsed, nil
}

func main() {
	cfg, err := loadFromEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	cmd := &cobra.Command{
		Use:   "purrview",
		Short: "Terminal view demo over a built-in echo engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.UI, "ui", cfg.UI, "frontend: cli or tui")
	cmd.Flags().IntVar(&cfg.Columns, "cols", cfg.Columns, "grid width in cells")
	cmd.Flags().IntVar(&cfg.Rows, "rows", cfg.Rows, "grid height in cells")
	cmd.Flags().Float64Var(&cfg.FontSize, "font-size", cfg.FontSize, "font size reported to the engine")
	cmd.Flags().StringVar(&cfg.Erase, "erase", cfg.Erase, "erase byte profile: del or bs")
	cmd.Flags().StringVar(&cfg.Foreground, "fg", cfg.Foreground, "foreground override, #RRGGBB")
	cmd.Flags().StringVar(&cfg.Background, "bg", cfg.Background, "background override, #RRGGBB")
	cmd.Flags().StringVar(&cfg.Cursor, "cursor", cfg.Cursor, "cursor color override, #RRGGBB")
	cmd.Flags().StringVar(&cfg.LogPath, "log", cfg.LogPath, "append key=value event log to this file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	logger, closeLog, err := openLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	theme, err := buildTheme(cfg)
	if err != nil {
		return err
	}

	erase, err := parseEraseMode(cfg.Erase)
	if err != nil {
		return err
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("stdout is not a TTY (the demo draws ANSI output)")
	}

	engine := enginetest.NewEcho(purrview.Config{
		Columns:  cfg.Columns,
		Rows:     cfg.Rows,
		FontSize: cfg.FontSize,
		HomeDir:  os.Getenv("HOME"),
		Username: os.Getenv("USER"),
	})

	switch cfg.UI {
	case "cli":
		return runCLI(engine, theme, erase, cfg, logger)
	case "tui":
		return runTUI(engine, theme, erase, logger)
	}
	return fmt.Errorf("--ui must be cli or tui, got %q", cfg.UI)
}

func runCLI(engine purrview.Engine, theme purrview.Theme, erase purrview.EraseMode, cfg config, logger *log.Logger) error {
	term, err := cli.New(engine, cli.Options{
		Columns:  cfg.Columns,
		Rows:     cfg.Rows,
		Theme:    theme,
		Erase:    erase,
		AutoSize: true,
	})
	if err != nil {
		return err
	}

	term.SetOnResize(func(cols, rows int) {
		logger.Printf("event=resize cols=%d rows=%d", cols, rows)
	})
	term.SetKeyCallback(func(ev purrview.KeyEvent) bool {
		if isQuitKey(ev) {
			term.Stop()
			return true
		}
		return false
	})

	cols, rows := term.Size()
	logger.Printf("event=start ui=cli cols=%d rows=%d", cols, rows)

	if err := term.Start(); err != nil {
		return err
	}
	term.Wait()

	logger.Printf("event=stop ui=cli")
	return nil
}

func runTUI(engine purrview.Engine, theme purrview.Theme, erase purrview.EraseMode, logger *log.Logger) error {
	term, err := tui.New(engine, tui.Options{
		Theme: theme,
		Erase: erase,
	})
	if err != nil {
		return err
	}

	term.SetOnResize(func(cols, rows int) {
		logger.Printf("event=resize cols=%d rows=%d", cols, rows)
	})
	term.SetKeyCallback(func(ev purrview.KeyEvent) bool {
		if isQuitKey(ev) {
			term.Stop()
			return true
		}
		return false
	})

	logger.Printf("event=start ui=tui")
	term.Run()
	err = term.Close()
	logger.Printf("event=stop ui=tui")
	return err
}

func isQuitKey(ev purrview.KeyEvent) bool {
	return ev.Ctrl && ev.Code == purrview.KeyRune && (ev.Rune == 'q' || ev.Rune == 'Q')
}

// openLogger opens the event log. With no path the logger discards
// everything, keeping log calls unconditional at the call sites.
func openLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return log.New(f, "", log.LstdFlags), func() { f.Close() }, nil
}

// buildTheme starts from the default theme and applies any hex
// overrides.
func buildTheme(cfg config) (purrview.Theme, error) {
	theme := purrview.DefaultTheme()

	apply := func(flag, raw string, dst *purrview.RGB) error {
		if raw == "" {
			return nil
		}
		if !strings.HasPrefix(raw, "#") {
			raw = "#" + raw
		}
		c, ok := purrview.ParseHexColor(raw)
		if !ok {
			return fmt.Errorf("--%s must be a hex color like #1e1e2e, got %q", flag, raw)
		}
		*dst = c
		return nil
	}

	if err := apply("fg", cfg.Foreground, &theme.Foreground); err != nil {
		return purrview.Theme{}, err
	}
	if err := apply("bg", cfg.Background, &theme.Background); err != nil {
		return purrview.Theme{}, err
	}
	if err := apply("cursor", cfg.Cursor, &theme.Cursor); err != nil {
		return purrview.Theme{}, err
	}
	return theme, nil
}

func parseEraseMode(s string) (purrview.EraseMode, error) {
	switch s {
	case "del":
		return purrview.EraseDEL, nil
	case "bs":
		return purrview.EraseBS, nil
	}
	return purrview.EraseDEL, fmt.Errorf("--erase must be del or bs, got %q", s)
}
