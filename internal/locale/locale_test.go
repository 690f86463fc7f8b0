package locale

import "testing"

func TestDigits(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1", "১"},
		{"12", "১২"},
		{"শ্রেণী 10", "শ্রেণী ১০"},
		{"2024-01", "২০২৪-০১"},
		{"", ""},
		{"abc", "abc"},
	}

	for _, tt := range tests {
		if got := Digits(tt.in); got != tt.expected {
			t.Errorf("Digits(%q): expected %q, got %q", tt.in, tt.expected, got)
		}
	}
}
