package shared

import "time"

// DayWindow returns the half-open 24 hour window [startOfDay, startOfDay+24h)
// for the given date, in the date's own location. No timezone normalization
// beyond this; entries are filed under server-local days.
func DayWindow(date time.Time) (start, end time.Time) {
	start = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.Add(24 * time.Hour)
}

// ParseISODate converts an ISO-8601 date string at the API boundary into the
// internal date type. Accepts a bare date or a full RFC3339 timestamp.
func ParseISODate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
