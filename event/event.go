package event

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/us"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

var ErrUnknownCalendar = errors.New("unknown holiday calendar")

// calendars holds the public holidays that move the day-ahead market
var calendars = map[string][]*cal.Holiday{
	"gb": {gb.NewYear, gb.GoodFriday, gb.EasterMonday, gb.ChristmasDay, gb.BoxingDay},
	"us": {us.NewYear, us.IndependenceDay, us.ThanksgivingDay, us.ChristmasDay},
}

// Calendars returns the names of the supported holiday calendars
func Calendars() []string {
	names := make([]string, 0, len(calendars))
	for name := range calendars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Event is a span of whole days, End exclusive
type Event struct {
	Name  string
	Start time.Time
	End   time.Time
}

// NewEvent spans the calendar days of start up to but excluding end
func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: timedataset.TruncateDay(start),
		End:   timedataset.TruncateDay(end),
	}
}

// Contains reports whether the calendar day of t falls inside the event
func (e Event) Contains(t time.Time) bool {
	d := timedataset.TruncateDay(t)
	return !d.Before(e.Start) && d.Before(e.End)
}

// Holidays returns the observed holidays of a calendar between start and end
// inclusive, ordered by date.
func Holidays(calendar string, start, end time.Time) ([]Event, error) {
	hols, exists := calendars[strings.ToLower(calendar)]
	if !exists {
		return nil, fmt.Errorf("%s, %w", calendar, ErrUnknownCalendar)
	}

	var events []Event
	for _, hol := range hols {
		events = append(events, Holiday(hol, start, end)...)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// Holiday returns a one day event per observed occurrence of hol between start
// and end inclusive. Observed dates may fall in a neighbouring year so those
// years are checked too.
func Holiday(hol *cal.Holiday, start, end time.Time) []Event {
	start = timedataset.TruncateDay(start)
	end = timedataset.TruncateDay(end)

	events := []Event{}
	for i := start.Year() - 1; i <= end.Year()+1; i++ {
		_, observed := hol.Calc(i)
		if observed.IsZero() {
			continue
		}
		observed = timedataset.TruncateDay(observed)
		if observed.Before(start) || observed.After(end) {
			continue
		}
		name := strings.ReplaceAll(fmt.Sprintf("%s_%d", hol.Name, i), " ", "_")
		events = append(events, NewEvent(name, observed, timedataset.AddDays(observed, 1)))
	}
	return events
}
