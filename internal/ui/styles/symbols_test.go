package styles

import (
	"strings"
	"testing"
)

func TestStatusSymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "✓"},
		{StatusSkipped, "-"},
		{StatusFailed, "✗"},
		{StatusPlanned, "○"},
		{Status("bogus"), "?"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := tt.status.Symbol(); got != tt.want {
				t.Errorf("Symbol() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatStatus_ContainsSymbol(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{StatusOK, StatusSkipped, StatusFailed, StatusPlanned} {
		if got := FormatStatus(s); !strings.Contains(got, s.Symbol()) {
			t.Errorf("FormatStatus(%q) = %q, missing symbol %q", s, got, s.Symbol())
		}
	}
}
