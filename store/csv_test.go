package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

const rawCSV = `,Date,Electricity Price,Gas Price
0,2024-01-01,80.5,30
1,2024-01-02,81,
3,2024-01-04 00:00:00,NaN,31.5
`

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(context.Background(), strings.NewReader(rawCSV), "Date")
	require.Nil(t, err)

	assert.Equal(t, []string{"Unnamed: 0", "Electricity Price", "Gas Price"}, tbl.Columns())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), tbl.Start())
	assert.Equal(t, 4, tbl.Len())

	price, err := tbl.Column("Electricity Price")
	require.Nil(t, err)
	assert.Equal(t, []timedataset.Value{
		timedataset.Some(80.5),
		timedataset.Some(81),
		timedataset.None(),
		timedataset.None(),
	}, price)

	gas, err := tbl.Column("Gas Price")
	require.Nil(t, err)
	assert.Equal(t, timedataset.None(), gas[1])
	assert.Equal(t, timedataset.Some(31.5), gas[3])
}

func TestReadCSVErrors(t *testing.T) {
	testData := map[string]struct {
		input string
		err   error
	}{
		"no date column": {
			input: "Day,Price\n2024-01-01,1\n",
			err:   ErrNoDateColumn,
		},
		"bad number": {
			input: "Date,Price\n2024-01-01,abc\n",
			err:   ErrInvalidCell,
		},
		"infinite number": {
			input: "Date,Price\n2024-01-01,inf\n",
			err:   ErrInvalidCell,
		},
		"overflowing number": {
			input: "Date,Price\n2024-01-01,-1e400\n",
			err:   ErrInvalidCell,
		},
		"bad date": {
			input: "Date,Price\n01/01/2024,1\n",
			err:   ErrInvalidCell,
		},
		"duplicate date": {
			input: "Date,Price\n2024-01-01,1\n2024-01-01,2\n",
			err:   timedataset.ErrDuplicateDate,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(context.Background(), strings.NewReader(td.input), "Date")
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestCSVSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daily.csv")
	require.Nil(t, os.WriteFile(path, []byte(rawCSV), 0o644))

	tbl, err := NewCSVSource(path).Load(context.Background())
	require.Nil(t, err)
	assert.Equal(t, 4, tbl.Len())

	_, err = NewCSVSource(filepath.Join(dir, "nope.csv")).Load(context.Background())
	assert.NotNil(t, err)
}

func TestCSVLagSource(t *testing.T) {
	dir := t.TempDir()
	lags := "Date,Gas_Price\n2024-12-28,\n2024-12-29,30\n2024-12-30,\n2024-12-31,32\n"
	require.Nil(t, os.WriteFile(LagPath(dir, "Gas_Price"), []byte(lags), 0o644))
	require.Nil(t, os.WriteFile(LagPath(dir, "Temperature"), []byte("Date,Temp\n2024-12-31,1\n"), 0o644))

	src := NewCSVLagSource(dir)
	testData := map[string]struct {
		name     string
		expected *timedataset.Series
		err      error
	}{
		"filled and trimmed": {
			name:     "Gas_Price",
			expected: timedataset.NewSeries(time.Date(2024, 12, 29, 0, 0, 0, 0, time.UTC), []float64{30, 30, 32}),
		},
		"missing file": {
			name: "CO2_Value",
			err:  ErrMissingLagTable,
		},
		"wrong column": {
			name: "Temperature",
			err:  ErrMissingColumn,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := src.LoadLags(context.Background(), td.name)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}
