package format

import "testing"

func TestPadRight(t *testing.T) {
	if got := PadRight("a", 3); got != "a  " {
		t.Fatalf("expected padding to width 3, got %q", got)
	}

	if got := PadRight("abcd", 2); got != "ab" {
		t.Fatalf("expected truncation to width 2, got %q", got)
	}

	if got := PadRight("日本", 6); got != "日本  " {
		t.Fatalf("expected wide runes to count double, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("expected empty string for width 0, got %q", got)
	}

	if got := Truncate("abc", 2); got != "ab" {
		t.Fatalf("expected truncation to width 2, got %q", got)
	}
}

func TestEllipsize(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Alpha", 10, "Alpha"},
		{"Alpha Centauri", 10, "Alpha C..."},
		{"Alpha", 3, "Alp"},
		{"Alpha", 0, ""},
	}

	for _, tt := range tests {
		if got := Ellipsize(tt.in, tt.width); got != tt.want {
			t.Errorf("Ellipsize(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	if got := Count(1, "product", "products"); got != "1 product" {
		t.Errorf("got %q", got)
	}
	if got := Count(2, "product", "products"); got != "2 products" {
		t.Errorf("got %q", got)
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * MiB, "5.0 MiB"},
		{3 * GiB, "3.0 GiB"},
		{-2048, "-2.0 KiB"},
	}

	for _, tt := range tests {
		if got := Size(tt.in); got != tt.want {
			t.Errorf("Size(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
