package calendar

import "time"

// Week and month resolution for the calendar views. Both work on civil
// dates in UTC; events are stored as UTC instants.

// WeekRange returns the bounds of the ISO week containing d: the Monday
// beginning the week at midnight, and the end of the following Sunday.
// Both bounds span the full day, so an event at any instant of the Monday
// or the Sunday falls inside.
func WeekRange(d time.Time) (monday, sundayEnd time.Time) {
	d = d.UTC()
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	// time.Weekday counts from Sunday; shift so Monday is day zero.
	sinceMonday := (int(day.Weekday()) + 6) % 7

	monday = day.AddDate(0, 0, -sinceMonday)
	sundayEnd = monday.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return monday, sundayEnd
}

// MonthRange returns the half-open interval [first of month, first of next
// month). An event starts in the month exactly when its start instant lies
// inside the interval.
func MonthRange(year int, month time.Month) (first, next time.Time) {
	first = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next = first.AddDate(0, 1, 0)
	return first, next
}
