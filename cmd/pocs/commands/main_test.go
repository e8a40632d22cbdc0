package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	_ "time/tzdata"

	"github.com/andri/pocs/cmd/pocs/commands"
)

// TestMain isolates the commands from any config file or POCS_* variable
// on the machine running the tests.
func TestMain(m *testing.M) {
	home, err := os.MkdirTemp("", "pocs-commands-home")
	if err != nil {
		panic("failed to create test HOME: " + err.Error())
	}
	if err := os.Setenv("HOME", home); err != nil {
		panic("failed to set test HOME: " + err.Error())
	}
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "POCS_") {
			_ = os.Unsetenv(name)
		}
	}

	code := m.Run()
	_ = os.RemoveAll(home)
	os.Exit(code)
}

// runPocs executes the root command with args and returns what it wrote to
// stdout and stderr.
func runPocs(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := commands.NewRootCmd()
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// tempDB returns a database path in a fresh temporary directory.
func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "pocs.sqlite3")
}
