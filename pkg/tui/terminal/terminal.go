// Package terminal provides terminal detection and compatibility utilities.
package terminal

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Capability represents terminal capabilities
type Capability struct {
	// Has256Colors indicates 256-color support
	Has256Colors bool

	// Has16Colors indicates basic 16-color support
	Has16Colors bool

	// HasNoColors indicates no color support (TERM=dumb or NO_COLOR)
	HasNoColors bool

	// HasUnicode indicates Unicode symbol support
	HasUnicode bool

	// IsTmux indicates running inside tmux
	IsTmux bool

	// Term is the TERM environment variable
	Term string
}

// MinRecommendedWidth is the minimum recommended terminal width
const MinRecommendedWidth = 80

// MinRecommendedHeight is the minimum recommended terminal height
const MinRecommendedHeight = 12

// DetectCapabilities detects terminal capabilities from the environment
func DetectCapabilities() Capability {
	return DetectCapabilitiesFrom(os.Getenv)
}

// DetectCapabilitiesFrom detects capabilities using getenv to read variables.
func DetectCapabilitiesFrom(getenv func(string) string) Capability {
	term := getenv("TERM")
	colorTerm := getenv("COLORTERM")

	cap := Capability{
		Term:       term,
		HasUnicode: true,
		IsTmux:     getenv("TMUX") != "",
	}

	switch {
	case term == "dumb" || term == "":
		cap.HasNoColors = true
		cap.HasUnicode = false
	case colorTerm == "truecolor" || colorTerm == "24bit":
		cap.Has256Colors = true
	case strings.Contains(term, "256color"):
		cap.Has256Colors = true
	default:
		// Conservative fallback
		cap.Has16Colors = true
	}

	// https://no-color.org/
	if getenv("NO_COLOR") != "" {
		cap.HasNoColors = true
		cap.Has256Colors = false
		cap.Has16Colors = false
	}

	return cap
}

// Profile maps the capability onto a termenv color profile.
func (c Capability) Profile() termenv.Profile {
	switch {
	case c.HasNoColors:
		return termenv.Ascii
	case c.Has256Colors:
		return termenv.ANSI256
	default:
		return termenv.ANSI
	}
}

// Icons provides terminal-appropriate icons
type Icons struct {
	Cross   string
	Warning string
	Cursor  string
	Prev    string
	Next    string
}

// GetIcons returns appropriate icons for the terminal
func GetIcons(cap Capability) Icons {
	if cap.HasNoColors || !cap.HasUnicode {
		return Icons{
			Cross:   "[X]",
			Warning: "[!]",
			Cursor:  ">",
			Prev:    "<",
			Next:    ">",
		}
	}

	return Icons{
		Cross:   "✗",
		Warning: "⚠",
		Cursor:  "▶",
		Prev:    "‹",
		Next:    "›",
	}
}

// IsTooNarrow checks if the terminal width is below minimum
func IsTooNarrow(width int) bool {
	return width > 0 && width < MinRecommendedWidth
}

// IsTooShort checks if the terminal height is below minimum
func IsTooShort(height int) bool {
	return height > 0 && height < MinRecommendedHeight
}

// SizeWarning returns a warning message if terminal is too small
func SizeWarning(width, height int) string {
	var warnings []string

	if IsTooNarrow(width) {
		warnings = append(warnings, "Terminal too narrow, recommend 80+ columns")
	}
	if IsTooShort(height) {
		warnings = append(warnings, "Terminal too short, recommend 12+ rows")
	}

	return strings.Join(warnings, "; ")
}

// ConfigureLipgloss sets the lipgloss color profile from cap so that
// NO_COLOR and dumb terminals render plain text.
func ConfigureLipgloss(cap Capability) {
	lipgloss.SetColorProfile(cap.Profile())
}
