package commands_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pocs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfigShowYAML(t *testing.T) {
	db := tempDB(t)

	stdout, _, err := runPocs(t, "", "--database", db, "--time-zone", "Asia/Tokyo", "config", "show")
	require.NoError(t, err)

	var out struct {
		Config struct {
			TimeZone string `yaml:"time-zone"`
			Database struct {
				Path string `yaml:"path"`
			} `yaml:"database"`
			TestRunner struct {
				Name string `yaml:"name"`
			} `yaml:"test-runner"`
		} `yaml:"config"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &out))

	assert.Equal(t, "Asia/Tokyo", out.Config.TimeZone)
	assert.Equal(t, db, out.Config.Database.Path)
	assert.Equal(t, "restore-db-dump", out.Config.TestRunner.Name)
}

func TestConfigShowJSONFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
pagination:
  products-per-page: 5
`)

	stdout, _, err := runPocs(t, "", "--config", path, "config", "show", "--format", "json")
	require.NoError(t, err)

	var out struct {
		ConfigFile string `json:"configFile"`
		Config     struct {
			Server struct {
				Port int `json:"port"`
			} `json:"server"`
			Pagination struct {
				ProductsPerPage int `json:"products-per-page"`
			} `json:"pagination"`
		} `json:"config"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))

	assert.Equal(t, path, out.ConfigFile)
	assert.Equal(t, 9090, out.Config.Server.Port)
	assert.Equal(t, 5, out.Config.Pagination.ProductsPerPage)
}

func TestConfigShowUnknownFormat(t *testing.T) {
	_, _, err := runPocs(t, "", "config", "show", "--format", "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestConfigValidate(t *testing.T) {
	path := writeConfig(t, "time-zone: Europe/Berlin\n")

	stdout, _, err := runPocs(t, "", "config", "validate", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Config file: "+path)
	assert.Contains(t, stdout, "Configuration is valid.")
}

func TestConfigValidateErrors(t *testing.T) {
	path := writeConfig(t, `
time-zone: Mars/Olympus
server:
  port: 99999
`)

	stdout, _, err := runPocs(t, "", "config", "validate", path)
	require.Error(t, err)
	assert.Equal(t, "configuration validation failed", err.Error())

	assert.Contains(t, stdout, "Configuration has errors:")
	assert.Contains(t, stdout, "invalid time-zone")
	assert.Contains(t, stdout, "invalid server.port 99999")
}

func TestConfigValidateJSON(t *testing.T) {
	path := writeConfig(t, `
pagination:
  products-per-page: 0
`)

	stdout, _, err := runPocs(t, "", "config", "validate", path, "--format", "json")
	require.Error(t, err)

	var out struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))

	assert.False(t, out.Valid)
	require.Len(t, out.Errors, 1)
	assert.True(t, strings.Contains(out.Errors[0], "products-per-page"), out.Errors[0])
}

func TestConfigValidateBrokenGlobalConfig(t *testing.T) {
	path := writeConfig(t, "server:\n  port: -1\n")

	stdout, _, err := runPocs(t, "", "--config", path, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, stdout, "invalid server.port")

	// other commands refuse to start
	_, _, err = runPocs(t, "", "--config", path, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestConfigEnvironment(t *testing.T) {
	t.Setenv("POCS_TIME_ZONE", "America/New_York")

	stdout, _, err := runPocs(t, "", "config", "show", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"time-zone": "America/New_York"`)
}
