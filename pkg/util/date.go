package util

import "time"

// DayStart truncates t to midnight UTC of its calendar day.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UnixDay converts unix seconds to the UTC day that contains them.
func UnixDay(ts int64) time.Time {
	return DayStart(time.Unix(ts, 0))
}
