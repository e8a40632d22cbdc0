// Package output renders command results as tables, JSON or YAML.
package output

import (
	"fmt"
	"strings"
)

// Format names how post, product and migration listings are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the formats --output accepts, table first as the default.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

// Names returns the format names for flag help and shell completion.
func Names() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return names
}

// ParseFormat reads an --output value. Case and surrounding space are
// ignored and "yml" is taken as yaml.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "yml" {
		return FormatYAML, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format: %s (want %s)", s, strings.Join(Names(), ", "))
}

func (f Format) String() string {
	return string(f)
}
