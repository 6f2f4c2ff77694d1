package service

import (
	"testing"
	"time"
)

func TestFormatAverageResponse(t *testing.T) {
	tests := []struct {
		name      string
		durations []time.Duration
		want      string
	}{
		{"no triaged tickets", nil, "N/A"},
		{"under an hour", []time.Duration{20 * time.Minute, 40 * time.Minute}, "< 1 hr"},
		{"exactly averaged hours", []time.Duration{time.Hour, 3 * time.Hour}, "2.0 hrs"},
		{"fractional hours", []time.Duration{90 * time.Minute}, "1.5 hrs"},
		{"mixed pulls average below an hour", []time.Duration{5 * time.Minute, 55 * time.Minute}, "< 1 hr"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatAverageResponse(tc.durations); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
