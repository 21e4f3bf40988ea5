package i18n

import (
	"fmt"
	"time"
)

// RelativeTime renders how long ago t was, long form. Project listings use
// it for last_accessed.
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	if d < time.Minute {
		return T("common.time.justNow", "just now")
	}
	if d < time.Hour {
		return agoN(int(d.Minutes()),
			"common.time.oneMinAgo", "1 min ago",
			"common.time.minsAgo", "%d mins ago")
	}
	if d < 24*time.Hour {
		return agoN(int(d.Hours()),
			"common.time.oneHourAgo", "1 hour ago",
			"common.time.hoursAgo", "%d hours ago")
	}
	return agoN(int(d.Hours()/24),
		"common.time.oneDayAgo", "1 day ago",
		"common.time.daysAgo", "%d days ago")
}

func agoN(n int, oneID, oneDefault, manyID, manyDefault string) string {
	if n == 1 {
		return T(oneID, oneDefault)
	}
	return Tf(manyID, manyDefault, n)
}

// RelativeTimeShort renders a compact form for TUI list rows. A zero time
// renders empty so unset timestamps leave no residue in the row.
func RelativeTimeShort(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	if d < 24*time.Hour {
		return T("common.time.short.today", "today")
	}
	if d < 48*time.Hour {
		return T("common.time.short.oneDayAgo", "1d ago")
	}
	days := int(d.Hours() / 24)
	if days < 30 {
		return fmt.Sprintf("%dd ago", days)
	}
	if days < 365 {
		return fmt.Sprintf("%dmo ago", days/30)
	}
	return fmt.Sprintf("%dy ago", days/365)
}
