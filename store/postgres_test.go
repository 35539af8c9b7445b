package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

func ptr(v float64) *float64 {
	return &v
}

func TestPostgresSourceLoad(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT date, variable, value FROM "observations"`)).
		WillReturnRows(pgxmock.NewRows([]string{"date", "variable", "value"}).
			AddRow(d1, "Electricity Price", ptr(80)).
			AddRow(d1, "Gas Price", ptr(30)).
			AddRow(d3, "Electricity Price", ptr(82)).
			AddRow(d3, "Temperature", (*float64)(nil)))

	tbl, err := NewPostgresSource(mockPool, "").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Electricity Price", "Gas Price", "Temperature"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, timedataset.Some(82), tbl.At("Electricity Price", d3))
	assert.Equal(t, timedataset.None(), tbl.At("Electricity Price", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, timedataset.None(), tbl.At("Gas Price", d3))
	assert.Equal(t, timedataset.None(), tbl.At("Temperature", d3))

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresSourceQueryError(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	queryErr := errors.New("connection refused")
	mockPool.ExpectQuery("SELECT date, variable, value FROM").WillReturnError(queryErr)

	_, err = NewPostgresSource(mockPool, "").Load(context.Background())
	assert.ErrorIs(t, err, queryErr)
}

func TestPostgresLagSource(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT date, value FROM "variable_lags" WHERE variable = $1`)).
		WithArgs("Gas_Price").
		WillReturnRows(pgxmock.NewRows([]string{"date", "value"}).
			AddRow(time.Date(2024, 12, 29, 0, 0, 0, 0, time.UTC), ptr(30)).
			AddRow(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), (*float64)(nil)).
			AddRow(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), ptr(32)))

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT date, value FROM "variable_lags" WHERE variable = $1`)).
		WithArgs("CO2_Value").
		WillReturnRows(pgxmock.NewRows([]string{"date", "value"}))

	src := NewPostgresLagSource(mockPool, "")
	s, err := src.LoadLags(context.Background(), "Gas_Price")
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 30, 32}, s.Values())
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), s.End())

	_, err = src.LoadLags(context.Background(), "CO2_Value")
	assert.ErrorIs(t, err, ErrMissingLagTable)

	assert.NoError(t, mockPool.ExpectationsWereMet())
}
