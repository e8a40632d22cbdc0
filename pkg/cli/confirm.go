// Package cli holds the prompts and progress output shared by the
// commands that change the database.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ConfirmOptions describes a yes/no question asked before a destructive
// data command such as flush, loaddata or restore.
type ConfirmOptions struct {
	Question string

	// Details are listed above the question, one "  - " line each. Data
	// commands use them for the fixture files or tables involved.
	Details []string

	// AssumeYes answers the question without prompting. It backs the
	// -y/--yes flag.
	AssumeYes bool

	Input  io.Reader // os.Stdin when nil
	Output io.Writer // os.Stdout when nil
}

// Confirm asks the question and reports whether the answer was y or yes,
// in any case. An empty line or end of input keeps the default of no.
func Confirm(opts ConfirmOptions) (bool, error) {
	if opts.AssumeYes {
		return true, nil
	}

	in, out := opts.Input, opts.Output
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	var b strings.Builder
	for _, d := range opts.Details {
		b.WriteString("  - " + d + "\n")
	}
	b.WriteString(opts.Question + " (y/N): ")
	if _, err := io.WriteString(out, b.String()); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	answer, err := readAnswer(in)
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func readAnswer(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func isYes(answer string) bool {
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}
