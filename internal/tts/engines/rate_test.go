package engines

import "testing"

func TestRateConversions(t *testing.T) {
	tests := []struct {
		rate       float64
		clamped    float64
		wpm        int
		lengthScal string
		atempo     string
	}{
		{0, 1, 175, "1.00", ""},
		{1, 1, 175, "1.00", ""},
		{0.9, 0.9, 158, "1.11", "atempo=0.90"},
		{2, 2, 350, "0.50", "atempo=2.00"},
		{0.1, 0.5, 88, "2.00", "atempo=0.50"},
		{5, 2, 350, "0.50", "atempo=2.00"},
	}

	for _, tt := range tests {
		if got := ClampRate(tt.rate); got != tt.clamped {
			t.Errorf("ClampRate(%v) = %v, want %v", tt.rate, got, tt.clamped)
		}
		if got := espeakWPM(tt.rate); got != tt.wpm {
			t.Errorf("espeakWPM(%v) = %d, want %d", tt.rate, got, tt.wpm)
		}
		if got := piperLengthScale(tt.rate); got != tt.lengthScal {
			t.Errorf("piperLengthScale(%v) = %s, want %s", tt.rate, got, tt.lengthScal)
		}
		if got := atempoFilter(tt.rate); got != tt.atempo {
			t.Errorf("atempoFilter(%v) = %q, want %q", tt.rate, got, tt.atempo)
		}
	}
}

func TestESpeakPitch(t *testing.T) {
	tests := map[float64]int{0: 50, 1: 50, 0.5: 25, 2: 99, -1: 0}
	for pitch, want := range tests {
		if got := espeakPitch(pitch); got != want {
			t.Errorf("espeakPitch(%v) = %d, want %d", pitch, got, want)
		}
	}
}
