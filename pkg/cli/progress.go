package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Stage is the state of one step of a multi-step command.
type Stage string

const (
	StageRunning  Stage = "running"
	StageComplete Stage = "complete"
	StageError    Stage = "error"
)

// ProgressWriter outputs progress updates to the terminal.
type ProgressWriter struct {
	w io.Writer
}

// NewProgressWriter creates a new ProgressWriter.
// If w is nil, os.Stdout is used.
func NewProgressWriter(w io.Writer) *ProgressWriter {
	if w == nil {
		w = os.Stdout
	}
	return &ProgressWriter{w: w}
}

// Step prints a progress line for stage.
func (pw *ProgressWriter) Step(stage Stage, description string) {
	var prefix string
	switch stage {
	case StageComplete:
		prefix = "✓" // checkmark
	case StageError:
		prefix = "✗" // X mark
	default:
		prefix = "→" // right arrow
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = string(stage)
	}

	_, _ = fmt.Fprintf(pw.w, "%s %s\n", prefix, description)
}

// PrintSummary prints labelled values ahead of a destructive command.
func (pw *ProgressWriter) PrintSummary(title string, rows [][2]string) {
	_, _ = fmt.Fprintln(pw.w, title)
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(pw.w, "  %-*s  %s\n", width+1, r[0]+":", r[1])
	}
	_, _ = fmt.Fprintln(pw.w)
}

// PrintSuccess prints a success message.
func (pw *ProgressWriter) PrintSuccess(message string) {
	pw.Step(StageComplete, message)
}

// PrintError prints an error message.
func (pw *ProgressWriter) PrintError(message string) {
	pw.Step(StageError, message)
}
