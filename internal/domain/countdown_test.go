package domain

import (
	"testing"
	"time"
)

func TestRemaining(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    time.Duration
		open    bool
	}{
		{"at start", 0, 10 * time.Second, true},
		{"just before expiry", 9900 * time.Millisecond, 100 * time.Millisecond, true},
		{"exactly at expiry", 10 * time.Second, 0, false},
		{"after expiry", 10500 * time.Millisecond, 0, false},
		{"long after", time.Hour, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := start.Add(tc.elapsed)
			if got := Remaining(10, start, now); got != tc.want {
				t.Fatalf("remaining = %v, want %v", got, tc.want)
			}
			if got := AnswerOpen(10, start, now); got != tc.open {
				t.Fatalf("open = %v, want %v", got, tc.open)
			}
		})
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	start := time.Now()
	if got := Remaining(5, start, start.Add(time.Minute)); got != 0 {
		t.Fatalf("remaining = %v, want 0", got)
	}
}
