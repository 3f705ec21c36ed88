package quota

import "time"

// The daily quota window is the UTC calendar day, identical for all users.

// StartOfDayUTC returns 00:00 UTC of the day containing now.
func StartOfDayUTC(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// NextResetUTC returns the next 00:00 UTC after now.
func NextResetUTC(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}
