package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/andri/pocs/pkg/cli"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		assumeYes  bool
		wantResult bool
	}{
		{name: "yes lowercase", input: "y\n", wantResult: true},
		{name: "yes uppercase", input: "Y\n", wantResult: true},
		{name: "yes full word", input: "YES\n", wantResult: true},
		{name: "whitespace around yes", input: "  y  \n", wantResult: true},
		{name: "no", input: "n\n"},
		{name: "empty line keeps default", input: "\n"},
		{name: "anything else is no", input: "flush it\n"},
		{name: "eof without input", input: ""},
		{name: "yes without trailing newline", input: "yes", wantResult: true},
		{name: "assume yes skips the prompt", assumeYes: true, wantResult: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}

			result, err := cli.Confirm(cli.ConfirmOptions{
				Question:  "Flush the database?",
				AssumeYes: tt.assumeYes,
				Input:     strings.NewReader(tt.input),
				Output:    output,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.wantResult {
				t.Errorf("got result %v, want %v", result, tt.wantResult)
			}

			if tt.assumeYes {
				if output.Len() != 0 {
					t.Errorf("skipped prompt wrote %q", output.String())
				}
				return
			}
			if !strings.Contains(output.String(), "Flush the database? (y/N): ") {
				t.Errorf("expected prompt in output, got: %s", output.String())
			}
		})
	}
}

func TestConfirm_Details(t *testing.T) {
	output := &bytes.Buffer{}

	ok, err := cli.Confirm(cli.ConfirmOptions{
		Question: "Restore?",
		Details:  []string{"database: pocs.sqlite3", "dump: products.sql"},
		Input:    strings.NewReader("y\n"),
		Output:   output,
	})
	if err != nil || !ok {
		t.Fatalf("Confirm() = %v, %v", ok, err)
	}

	want := "  - database: pocs.sqlite3\n  - dump: products.sql\nRestore? (y/N): "
	if output.String() != want {
		t.Errorf("output = %q, want %q", output.String(), want)
	}
}
