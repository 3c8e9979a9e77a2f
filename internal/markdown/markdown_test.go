package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		contains string
		absent   string
	}{
		{"empty", "   ", "", ""},
		{"emphasis", "bring *snacks*", "<em>snacks</em>", ""},
		{"strikethrough", "~~old plan~~", "<del>old plan</del>", ""},
		{"raw html dropped", "<script>alert(1)</script>", "", "<script>"},
		{"hard wraps", "line one\nline two", "<br", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Render(tt.src))
			if tt.contains != "" && !strings.Contains(got, tt.contains) {
				t.Errorf("Render(%q) = %q, want it to contain %q", tt.src, got, tt.contains)
			}
			if tt.absent != "" && strings.Contains(got, tt.absent) {
				t.Errorf("Render(%q) = %q, must not contain %q", tt.src, got, tt.absent)
			}
			if strings.TrimSpace(tt.src) == "" && got != "" {
				t.Errorf("Render(blank) = %q, want empty", got)
			}
		})
	}
}
