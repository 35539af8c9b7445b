package timedataset

import (
	"math"
	"time"
)

// Day is the length of a single step of a daily series
const Day = 24 * time.Hour

// TimeSlice is a slice of dates in ascending order
type TimeSlice []time.Time

// Strings formats every date as YYYY-MM-DD
func (t TimeSlice) Strings() []string {
	res := make([]string, len(t))
	for i, d := range t {
		res[i] = FormatDate(d)
	}
	return res
}

// TruncateDay drops the time of day and location, returning midnight UTC of the
// calendar date.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays moves a date by n calendar days
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b. Negative if b
// is before a.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(TruncateDay(b).Sub(TruncateDay(a)).Hours() / 24.0))
}

// DateRange returns every calendar day from start to end inclusive. An end
// before start returns an empty slice.
func DateRange(start, end time.Time) TimeSlice {
	start = TruncateDay(start)
	end = TruncateDay(end)
	if end.Before(start) {
		return TimeSlice{}
	}
	n := DaysBetween(start, end) + 1
	res := make(TimeSlice, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, AddDays(start, i))
	}
	return res
}

// DateLayout is the wire format of a calendar date
const DateLayout = "2006-01-02"

// FormatDate renders a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses YYYY-MM-DD, optionally followed by a time of day which is
// discarded.
func ParseDate(s string) (time.Time, error) {
	layouts := []string{DateLayout, "2006-01-02 15:04:05", time.RFC3339}
	var err error
	for _, layout := range layouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return TruncateDay(t), nil
		}
	}
	return time.Time{}, err
}
