// Package tui renders assistant markdown for terminal display.
package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewRenderer returns a markdown-to-ANSI rendering function. Styling
// follows the detected terminal background.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Fall back to pass-through rather than failing the whole send
		// over a styling problem.
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return r.Render
}

// Interactive reports whether stdout is a color-capable terminal; when
// false the CLI prints plain markdown instead of ANSI output.
func Interactive() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}
