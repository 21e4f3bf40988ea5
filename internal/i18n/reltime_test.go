package i18n

import (
	"testing"
	"time"
)

func TestRelativeTime(t *testing.T) {
	Init("en")
	now := time.Now()

	cases := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"seconds", 45 * time.Second, "just now"},
		{"one minute", 61 * time.Second, "1 min ago"},
		{"minutes", 12 * time.Minute, "12 mins ago"},
		{"one hour", 65 * time.Minute, "1 hour ago"},
		{"hours", 7 * time.Hour, "7 hours ago"},
		{"one day", 30 * time.Hour, "1 day ago"},
		{"days", 96 * time.Hour, "4 days ago"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RelativeTime(now.Add(-tc.ago)); got != tc.want {
				t.Errorf("RelativeTime = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRelativeTimeShort(t *testing.T) {
	Init("en")
	now := time.Now()

	cases := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"same day", 6 * time.Hour, "today"},
		{"yesterday", 30 * time.Hour, "1d ago"},
		{"last week", 6 * 24 * time.Hour, "6d ago"},
		{"months", 75 * 24 * time.Hour, "2mo ago"},
		{"years", 800 * 24 * time.Hour, "2y ago"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RelativeTimeShort(now.Add(-tc.ago)); got != tc.want {
				t.Errorf("RelativeTimeShort = %q, want %q", got, tc.want)
			}
		})
	}

	if got := RelativeTimeShort(time.Time{}); got != "" {
		t.Errorf("zero time should render empty, got %q", got)
	}
}
