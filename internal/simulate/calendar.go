package simulate

import "time"

// IsBusinessDay reports whether a date falls Monday through Friday.
// No holiday calendar is applied.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

// BusinessDaysSince counts the business days in the inclusive range
// [first business day strictly after from, to]. It returns 0 when to is
// not after from.
func BusinessDaysSince(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	count := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return count
}
