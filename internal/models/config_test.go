package models

import (
	"testing"
	"time"
)

func TestInWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hourAgo := now.Add(-time.Hour)
	inHour := now.Add(time.Hour)
	twoHoursAgo := now.Add(-2 * time.Hour)
	inTwoHours := now.Add(2 * time.Hour)

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  bool
	}{
		{name: "inside", start: &hourAgo, end: &inHour, want: true},
		{name: "future window", start: &inHour, end: &inTwoHours, want: false},
		{name: "past window", start: &twoHoursAgo, end: &hourAgo, want: false},
		{name: "start equals now", start: &now, end: &inHour, want: true},
		{name: "end equals now", start: &hourAgo, end: &now, want: true},
		{name: "missing start", start: nil, end: &inHour, want: false},
		{name: "missing end", start: &hourAgo, end: nil, want: false},
		{name: "both missing", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InWindow(tt.start, tt.end, now); got != tt.want {
				t.Errorf("InWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigWindows(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Minute)
	end := now.Add(time.Minute)

	cfg := &Config{SubmissionStart: &start, SubmissionEnd: &end}
	if !cfg.SubmissionOpen(now) {
		t.Error("expected submission window to be open")
	}
	if cfg.VotingOpen(now) {
		t.Error("expected voting window to be closed without bounds")
	}
}
