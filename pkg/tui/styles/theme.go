// Package styles provides theming and styling utilities for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette for the TUI interface
// These colors are defined to work with both 256-color and 16-color terminals
var (
	// Primary colors
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7C7AE6"}
	ColorPrimaryFg = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}

	// Status colors (semantic)
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#00AF87", Dark: "#00D787"} // Green
	ColorWarning = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"} // Yellow
	ColorError   = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"} // Red
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"} // Blue

	// Release dates are shown in the success color
	ColorDate = ColorSuccess

	// UI element colors
	ColorBorder    = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#585858"}
	ColorSubtle    = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"}
	ColorHighlight = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}
	ColorSubtleBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#303030"}
)

// Text styles for various UI elements
var (
	// StyleHeading is used for section headings and titles
	StyleHeading = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// StyleNormal is the default text style
	StyleNormal = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// StyleStatus is used for status messages and labels
	StyleStatus = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	// StyleError is used for error messages
	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	// StyleWarning is used for warning messages
	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	// StyleSuccess is used for success messages
	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	// StyleSubtle is used for secondary information
	StyleSubtle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	// StyleHighlight is used for emphasized text
	StyleHighlight = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	// StyleSelected marks the row under the cursor
	StyleSelected = lipgloss.NewStyle().
			Foreground(ColorPrimaryFg).
			Background(ColorPrimary).
			Bold(true)

	// StylePager is the "page x of y" footer
	StylePager = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Background(ColorSubtleBg).
			Padding(0, 1)
)

// StyleBox is a standard bordered box
var StyleBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder).
	Padding(0, 1)
