// Package format provides text helpers shared by the table renderer and the
// product browser.
package format

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DisplayWidth returns the visible width of a string.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate trims a string to a maximum display width.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "")
}

// Ellipsize is Truncate with a trailing "..." when s does not fit.
func Ellipsize(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return Truncate(s, width)
	}
	return runewidth.Truncate(s, width, "...")
}

// PadRight pads a string on the right to the target display width.
func PadRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	displayWidth := runewidth.StringWidth(s)
	if displayWidth >= width {
		return Truncate(s, width)
	}
	return s + strings.Repeat(" ", width-displayWidth)
}

// Count formats n with the singular or plural noun.
//
//	Count(1, "product", "products") = "1 product"
//	Count(0, "product", "products") = "0 products"
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
