package feature

import (
	"strings"
	"time"

	"github.com/tkeereweer/electricity-price-predictor/event"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

const holidayPrefix = "holiday_"

// Holiday flags observed public holidays of a calendar with 1 and every other
// day with 0. It depends only on the date so future rows never need it
// extrapolated.
type Holiday struct {
	Calendar string `json:"calendar"`
}

func NewHoliday(calendar string) *Holiday {
	return &Holiday{strings.ToLower(calendar)}
}

func (h Holiday) String() string {
	return holidayPrefix + h.Calendar
}

func (h Holiday) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "calendar":
		return h.Calendar, true
	}
	return "", false
}

func (h Holiday) Type() FeatureType {
	return FeatureTypeHoliday
}

// Value returns 1 on an observed holiday and 0 otherwise
func (h Holiday) Value(date time.Time) (timedataset.Value, error) {
	events, err := event.Holidays(h.Calendar, date, date)
	if err != nil {
		return timedataset.None(), err
	}
	for _, e := range events {
		if e.Contains(date) {
			return timedataset.Some(1.0), nil
		}
	}
	return timedataset.Some(0.0), nil
}
