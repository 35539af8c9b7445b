package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

// DefaultDateColumn is the header of the date column in every CSV file
const DefaultDateColumn = "Date"

// LagFileSuffix is appended to a variable name to find its lag table
const LagFileSuffix = "_lags.csv"

// CSVSource reads the raw table from a CSV file with a header row
type CSVSource struct {
	Path       string
	DateColumn string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path, DateColumn: DefaultDateColumn}
}

func (c *CSVSource) Load(ctx context.Context) (*timedataset.Table, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s, %w", c.Path, err)
	}
	defer f.Close()

	dateCol := c.DateColumn
	if dateCol == "" {
		dateCol = DefaultDateColumn
	}
	tbl, err := ReadCSV(ctx, f, dateCol)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %w", c.Path, err)
	}
	return tbl, nil
}

// ReadCSV parses a CSV with a header row into a table. Empty cells and NaN
// are missing. An empty header name becomes "Unnamed: <index>".
func ReadCSV(ctx context.Context, r io.Reader, dateColumn string) (*timedataset.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read header, %w", err)
	}
	dateIdx := -1
	names := make([]string, 0, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		header[i] = name
		if name == dateColumn {
			dateIdx = i
			continue
		}
		names = append(names, name)
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("%s, %w", dateColumn, ErrNoDateColumn)
	}

	var dates []time.Time
	cols := make(map[string][]timedataset.Value, len(names))
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read line %d, %w", line, err)
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}

		date, err := timedataset.ParseDate(strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d date %q, %w", line, record[dateIdx], errors.Join(err, ErrInvalidCell))
		}
		dates = append(dates, date)

		for i, cell := range record {
			if i == dateIdx {
				continue
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s, %w", line, header[i], err)
			}
			cols[header[i]] = append(cols[header[i]], v)
		}
	}
	return timedataset.NewTableFromRecords(dates, names, cols)
}

func parseCell(cell string) (timedataset.Value, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "nan", "na", "null":
		return timedataset.None(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return timedataset.None(), fmt.Errorf("%q, %w", cell, errors.Join(err, ErrInvalidCell))
	}
	if math.IsInf(v, 0) {
		return timedataset.None(), fmt.Errorf("%q is not finite, %w", cell, ErrInvalidCell)
	}
	return timedataset.Some(v), nil
}

// CSVLagSource reads lag tables named <name>_lags.csv from a directory. Each
// holds a date column and a column named after the variable.
type CSVLagSource struct {
	Dir        string
	DateColumn string
}

func NewCSVLagSource(dir string) *CSVLagSource {
	return &CSVLagSource{Dir: dir, DateColumn: DefaultDateColumn}
}

// LagPath returns where the lag table of a variable lives in dir
func LagPath(dir, name string) string {
	return filepath.Join(dir, name+LagFileSuffix)
}

func (c *CSVLagSource) LoadLags(ctx context.Context, name string) (*timedataset.Series, error) {
	path := LagPath(c.Dir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s, %w", path, ErrMissingLagTable)
		}
		return nil, fmt.Errorf("unable to open %s, %w", path, err)
	}
	defer f.Close()

	dateCol := c.DateColumn
	if dateCol == "" {
		dateCol = DefaultDateColumn
	}
	tbl, err := ReadCSV(ctx, f, dateCol)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %w", path, err)
	}
	return lagSeries(tbl, name)
}

// lagSeries forward fills a lag table column and drops leading missing days
func lagSeries(tbl *timedataset.Table, name string) (*timedataset.Series, error) {
	if !tbl.HasColumn(name) {
		return nil, fmt.Errorf("lag table has no %s column, %w", name, ErrMissingColumn)
	}
	if err := tbl.FillForward(name); err != nil {
		return nil, err
	}
	col, err := tbl.Column(name)
	if err != nil {
		return nil, err
	}
	first := 0
	for first < len(col) && !col[first].Valid() {
		first++
	}
	if first == len(col) {
		return nil, fmt.Errorf("lag table of %s is empty, %w", name, ErrMissingLagTable)
	}
	return tbl.Slice(timedataset.AddDays(tbl.Start(), first), tbl.End()).Series(name)
}
