package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

// DefaultObservationTable holds the raw observations in long format
const DefaultObservationTable = "observations"

// DefaultLagTable holds the lag history of the exogenous variables in long
// format
const DefaultLagTable = "variable_lags"

// Querier is the subset of a pgx pool the sources need
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads (date, variable, value) rows and pivots them into a
// table with one column per variable. A NULL value is a missing cell.
type PostgresSource struct {
	DB    Querier
	Table string
}

func NewPostgresSource(db Querier, table string) *PostgresSource {
	if table == "" {
		table = DefaultObservationTable
	}
	return &PostgresSource{DB: db, Table: table}
}

func (p *PostgresSource) Load(ctx context.Context) (*timedataset.Table, error) {
	query := fmt.Sprintf(
		"SELECT date, variable, value FROM %s ORDER BY date, variable",
		pgx.Identifier{p.Table}.Sanitize(),
	)
	rows, err := p.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to query observations, %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	var names []string
	cols := make(map[string][]timedataset.Value)
	rowIdx := make(map[time.Time]int)

	for rows.Next() {
		var (
			date     time.Time
			variable string
			value    *float64
		)
		if err := rows.Scan(&date, &variable, &value); err != nil {
			return nil, fmt.Errorf("unable to scan observation, %w", err)
		}
		date = timedataset.TruncateDay(date)

		i, exists := rowIdx[date]
		if !exists {
			i = len(dates)
			rowIdx[date] = i
			dates = append(dates, date)
			for _, name := range names {
				cols[name] = append(cols[name], timedataset.None())
			}
		}
		if _, exists := cols[variable]; !exists {
			names = append(names, variable)
			cols[variable] = make([]timedataset.Value, len(dates))
		}

		cell := timedataset.None()
		if value != nil {
			cell = timedataset.Some(*value)
		}
		if cols[variable][i].Valid() {
			return nil, fmt.Errorf("%s on %s, %w", variable, timedataset.FormatDate(date), timedataset.ErrDuplicateDate)
		}
		cols[variable][i] = cell
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read observations, %w", err)
	}
	return timedataset.NewTableFromRecords(dates, names, cols)
}

// PostgresLagSource reads the lag history of a variable from rows of
// (date, variable, value)
type PostgresLagSource struct {
	DB    Querier
	Table string
}

func NewPostgresLagSource(db Querier, table string) *PostgresLagSource {
	if table == "" {
		table = DefaultLagTable
	}
	return &PostgresLagSource{DB: db, Table: table}
}

func (p *PostgresLagSource) LoadLags(ctx context.Context, name string) (*timedataset.Series, error) {
	query := fmt.Sprintf(
		"SELECT date, value FROM %s WHERE variable = $1 ORDER BY date",
		pgx.Identifier{p.Table}.Sanitize(),
	)
	rows, err := p.DB.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("unable to query lags of %s, %w", name, err)
	}
	defer rows.Close()

	var dates []time.Time
	var values []timedataset.Value
	for rows.Next() {
		var (
			date  time.Time
			value *float64
		)
		if err := rows.Scan(&date, &value); err != nil {
			return nil, fmt.Errorf("unable to scan lag of %s, %w", name, err)
		}
		dates = append(dates, date)
		if value == nil {
			values = append(values, timedataset.None())
			continue
		}
		values = append(values, timedataset.Some(*value))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read lags of %s, %w", name, err)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("%s, %w", name, ErrMissingLagTable)
	}

	tbl, err := timedataset.NewTableFromRecords(dates, []string{name}, map[string][]timedataset.Value{name: values})
	if err != nil {
		return nil, err
	}
	return lagSeries(tbl, name)
}
