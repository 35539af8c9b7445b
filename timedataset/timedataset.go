package timedataset

import (
	"errors"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no observations")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrDuplicateDate      = errors.New("duplicate date")
	ErrMissingValue       = errors.New("series has a missing value")
	ErrUnknownColumn      = errors.New("unknown column")
	ErrDateBeforeStart    = errors.New("date is before the start of the table")
)

// Series is an append-only daily series. The value at index i belongs to the
// calendar day start+i. Values can only be added at the end so anything read
// for an earlier date never changes.
type Series struct {
	start time.Time
	y     []float64
}

// NewSeries returns a Series starting at the calendar day of start. The input
// slice is copied.
func NewSeries(start time.Time, y []float64) *Series {
	ySeries := make([]float64, len(y))
	copy(ySeries, y)
	return &Series{
		start: TruncateDay(start),
		y:     ySeries,
	}
}

// Start returns the first calendar day of the series
func (s *Series) Start() time.Time {
	return s.start
}

// End returns the last calendar day holding a value. For an empty series this is
// the day before start.
func (s *Series) End() time.Time {
	return AddDays(s.start, len(s.y)-1)
}

// Len returns the number of days stored
func (s *Series) Len() int {
	return len(s.y)
}

// At returns the value stored for a date
func (s *Series) At(date time.Time) (float64, bool) {
	i := DaysBetween(s.start, date)
	if i < 0 || i >= len(s.y) {
		return 0, false
	}
	return s.y[i], true
}

// Append adds the value for the next calendar day and returns that day
func (s *Series) Append(v float64) time.Time {
	s.y = append(s.y, v)
	return s.End()
}

// Before returns the values for every stored day strictly before date. The
// returned slice is capped so appending to it never writes into the series.
func (s *Series) Before(date time.Time) []float64 {
	i := DaysBetween(s.start, date)
	if i <= 0 {
		return nil
	}
	if i > len(s.y) {
		i = len(s.y)
	}
	return s.y[:i:i]
}

// Tail returns a copy of the last n values, fewer if the series is shorter
func (s *Series) Tail(n int) []float64 {
	if n > len(s.y) {
		n = len(s.y)
	}
	if n < 0 {
		n = 0
	}
	res := make([]float64, n)
	copy(res, s.y[len(s.y)-n:])
	return res
}

// Values returns a copy of all values
func (s *Series) Values() []float64 {
	res := make([]float64, len(s.y))
	copy(res, s.y)
	return res
}

// Dates returns the calendar day of every value
func (s *Series) Dates() TimeSlice {
	return DateRange(s.start, s.End())
}

// Copy returns an independent copy of the series
func (s *Series) Copy() *Series {
	return NewSeries(s.start, s.y)
}
