package ui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		maxWidth int
		want     string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "12345", 5, "12345"},
		{"cut", "a longer title", 8, "a longe…"},
		{"width one", "abc", 1, "…"},
		{"zero width", "abc", 0, ""},
		{"negative width", "abc", -1, ""},
		{"wide runes", "日本語テキスト", 7, "日本語…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.maxWidth); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"ab", 4, "ab  "},
		{"abcd", 4, "abcd"},
		{"abcdef", 4, "abcdef"},
		{"", 2, "  "},
	}
	for _, tt := range tests {
		if got := Pad(tt.in, tt.width); got != tt.want {
			t.Errorf("Pad(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestFormatTimeRel(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "unknown"},
		{"future", now.Add(time.Hour), "now"},
		{"seconds", now.Add(-30 * time.Second), "now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-48 * time.Hour), "2d ago"},
		{"weeks", now.Add(-15 * 24 * time.Hour), "2w ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimeRel(tt.t); got != tt.want {
				t.Errorf("FormatTimeRel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPriorityColor(t *testing.T) {
	if PriorityColor("CRITICAL") != ColorDanger {
		t.Error("CRITICAL should map to the danger color")
	}
	if PriorityColor("unknown") != ColorMuted {
		t.Error("unknown priorities should map to the muted color")
	}
}
