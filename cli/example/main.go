// Example program demonstrating the cli frontend
//
// This hosts a view over the built-in echo engine inside your actual
// terminal. Type and the engine types back.
//
// Controls:
//   - Ctrl+Q: Quit
//   - All other input is passed to the engine
//
// Usage:
//   go run main.go

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phroun/purrview"
	"github.com/phroun/purrview/cli"
	"github.com/phroun/purrview/enginetest"
)

func main() {
	engine := enginetest.NewEcho(purrview.Config{
		Columns: 80,
		Rows:    24,
	})

	// Create terminal with options
	term, err := cli.New(engine, cli.Options{
		AutoSize: true, // Fill available space
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create terminal: %v\n", err)
		os.Exit(1)
	}

	// Ctrl+Q stops the view
	term.SetKeyCallback(func(ev purrview.KeyEvent) bool {
		if ev.Ctrl && ev.Code == purrview.KeyRune && ev.Rune == 'q' {
			term.Stop()
			return true
		}
		return false
	})

	// Handle cleanup on signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		term.Stop()
		os.Exit(0)
	}()

	// Start the terminal (enters raw mode, etc.)
	if err := term.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start terminal: %v\n", err)
		os.Exit(1)
	}

	// Wait for Ctrl+Q
	term.Wait()
}
