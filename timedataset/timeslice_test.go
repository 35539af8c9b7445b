package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRange(t *testing.T) {
	testData := map[string]struct {
		start    time.Time
		end      time.Time
		expected int
	}{
		"single day": {
			start:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 1,
		},
		"two days": {
			start:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			expected: 2,
		},
		"across leap day": {
			start:    time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			expected: 3,
		},
		"end before start": {
			start:    time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 0,
		},
		"time of day ignored": {
			start:    time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 1, 3, 1, 0, 0, 0, time.UTC),
			expected: 3,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := DateRange(td.start, td.end)
			require.Len(t, res, td.expected)
			for i := 1; i < len(res); i++ {
				assert.Equal(t, 1, DaysBetween(res[i-1], res[i]))
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected time.Time
		err      bool
	}{
		"date": {
			input:    "2025-01-02",
			expected: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		"date time": {
			input:    "2025-01-02 13:45:00",
			expected: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		"invalid": {
			input: "02/01/2025",
			err:   true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := ParseDate(td.input)
			if td.err {
				assert.NotNil(t, err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
			assert.Equal(t, td.input[:10], FormatDate(res))
		})
	}
}
