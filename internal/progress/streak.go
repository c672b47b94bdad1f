package progress

import "time"

// nextStreak returns the streak and last study date after a session closes
// on the calendar day of now. lastDate is YYYY-MM-DD or empty.
func nextStreak(streak int, lastDate string, now time.Time) (int, string) {
	today := civilDate(now)
	todayStr := today.Format(dateLayout)

	if lastDate == "" {
		return 1, todayStr
	}
	last, err := time.Parse(dateLayout, lastDate)
	if err != nil {
		return 1, todayStr
	}

	switch {
	case last.Equal(today):
		// Already studied today.
	case last.Equal(today.AddDate(0, 0, -1)):
		streak++
	default:
		streak = 1
	}
	return streak, todayStr
}

// civilDate returns midnight UTC of t's calendar day in t's location, so
// dates compare by day regardless of zone.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
