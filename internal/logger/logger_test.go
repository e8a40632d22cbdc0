package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name         string
		level        Level
		logFunc      func(*Logger, string)
		shouldAppear bool
	}{
		{
			name:         "debug level logs debug",
			level:        LevelDebug,
			logFunc:      func(l *Logger, msg string) { l.Debug(msg) },
			shouldAppear: true,
		},
		{
			name:         "info level filters debug",
			level:        LevelInfo,
			logFunc:      func(l *Logger, msg string) { l.Debug(msg) },
			shouldAppear: false,
		},
		{
			name:         "warn level filters info",
			level:        LevelWarn,
			logFunc:      func(l *Logger, msg string) { l.Info(msg) },
			shouldAppear: false,
		},
		{
			name:         "error level logs error",
			level:        LevelError,
			logFunc:      func(l *Logger, msg string) { l.Error(msg) },
			shouldAppear: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: tt.level, Format: FormatText, Output: &buf})

			tt.logFunc(l, "post saved")

			if got := strings.Contains(buf.String(), "post saved"); got != tt.shouldAppear {
				t.Errorf("message appeared = %v, want %v (output %q)", got, tt.shouldAppear, buf.String())
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})

	l.Info("product listed", "page", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "product listed" {
		t.Errorf("msg = %v, want %q", entry["msg"], "product listed")
	}
	if entry["page"] != float64(2) {
		t.Errorf("page = %v, want 2", entry["page"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"", LevelInfo, false},
		{"debug", LevelDebug, false},
		{"WARNING", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf}).With("request_id", "abc")

	ctx := NewContext(context.Background(), l)
	FromContext(ctx).Info("handled")

	if !strings.Contains(buf.String(), "request_id=abc") {
		t.Errorf("expected request_id attribute, got %q", buf.String())
	}

	if FromContext(context.Background()) != GetDefault() {
		t.Error("expected default logger for a bare context")
	}
}

func TestSetDefault(t *testing.T) {
	orig := GetDefault()
	defer SetDefault(orig)

	var buf bytes.Buffer
	SetDefault(New(Config{Level: LevelDebug, Output: &buf}))

	Debug("migrated", "version", 1)
	With("model", "post").Warn("empty datetime")

	out := buf.String()
	if !strings.Contains(out, "migrated") || !strings.Contains(out, "model=post") {
		t.Errorf("unexpected output %q", out)
	}
}
