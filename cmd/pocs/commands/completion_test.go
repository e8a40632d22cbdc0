package commands_test

import (
	"strings"
	"testing"
)

func TestCompletion(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "bash completion"},
		{"zsh", "compdef"},
		{"fish", "complete -c pocs"},
		{"powershell", "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			stdout, _, err := runPocs(t, "", "completion", tt.shell)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("expected %s completion script, got %q", tt.shell, stdout[:min(100, len(stdout))])
			}
		})
	}
}

func TestCompletionInvalidShell(t *testing.T) {
	if _, _, err := runPocs(t, "", "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestCompletionIgnoresBrokenConfig(t *testing.T) {
	if _, _, err := runPocs(t, "", "--config", "/nonexistent/pocs.yaml", "completion", "bash"); err != nil {
		t.Errorf("completion should not load config: %v", err)
	}
}
