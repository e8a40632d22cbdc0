package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	sqlite3 "modernc.org/sqlite/lib"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []statement
	}{
		{
			name: "simple",
			in:   "BEGIN;\nINSERT INTO t VALUES (1);\nCOMMIT;\n",
			want: []statement{
				{line: 1, sql: "BEGIN"},
				{line: 2, sql: "INSERT INTO t VALUES (1)"},
				{line: 3, sql: "COMMIT"},
			},
		},
		{
			name: "semicolon and escaped quote inside string",
			in:   "INSERT INTO t VALUES ('a;b ''c''');",
			want: []statement{{line: 1, sql: "INSERT INTO t VALUES ('a;b ''c''')"}},
		},
		{
			name: "comments dropped",
			in:   "-- header\n\n-- another\nSELECT 1; -- trailing\nSELECT 2",
			want: []statement{
				{line: 4, sql: "SELECT 1"},
				{line: 5, sql: "SELECT 2"},
			},
		},
		{
			name: "multi line statement",
			in:   "\nINSERT INTO t\n  VALUES ('x\ny');\n",
			want: []statement{{line: 2, sql: "INSERT INTO t\n  VALUES ('x\ny')"}},
		},
		{
			name: "empty",
			in:   "  \n-- nothing\n;;",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitStatements(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("splitStatements() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(statement{})); diff != "" {
				t.Errorf("splitStatements() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsTransactionControl(t *testing.T) {
	for stmt, want := range map[string]bool{
		"BEGIN TRANSACTION":      true,
		"commit":                 true,
		"  Rollback":             true,
		"INSERT INTO t VALUES 1": false,
		"DELETE FROM t":          false,
	} {
		if got := isTransactionControl(stmt); got != want {
			t.Errorf("isTransactionControl(%q) = %v, want %v", stmt, got, want)
		}
	}
}

func TestSQLLiteral(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{int64(42), "42"},
		{1.5, "1.5"},
		{"it's", "'it''s'"},
		{[]byte("raw"), "'raw'"},
	}
	for _, tt := range tests {
		if got := sqlLiteral(tt.in); got != tt.want {
			t.Errorf("sqlLiteral(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type codeErr struct{ code int }

func (e codeErr) Error() string { return "sqlite error" }
func (e codeErr) Code() int     { return e.code }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{codeErr{sqlite3.SQLITE_BUSY}, true},
		{codeErr{sqlite3.SQLITE_LOCKED}, true},
		{codeErr{sqlite3.SQLITE_CONSTRAINT}, false},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := isRetryable(tt.err); got != tt.want {
			t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWithRetry(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2,
	}

	t.Run("non retryable returned unchanged", func(t *testing.T) {
		want := errors.New("boom")
		calls := 0
		err := WithRetry(context.Background(), cfg, func() error {
			calls++
			return want
		})
		if err != want {
			t.Errorf("err = %v, want %v", err, want)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("success after busy", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), cfg, func() error {
			calls++
			if calls < 3 {
				return codeErr{sqlite3.SQLITE_BUSY}
			}
			return nil
		})
		if err != nil {
			t.Errorf("err = %v, want nil", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), cfg, func() error {
			calls++
			return codeErr{sqlite3.SQLITE_LOCKED}
		})
		if err == nil || !strings.Contains(err.Error(), "max retries (2) exceeded") {
			t.Errorf("err = %v", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WithRetry(ctx, cfg, func() error { return codeErr{sqlite3.SQLITE_BUSY} })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}
