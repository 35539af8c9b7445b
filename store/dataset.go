package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tkeereweer/electricity-price-predictor/feature"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

// Dataset is the cleaned table a forecast starts from. Latest is its last
// date and the forecast begins the day after.
type Dataset struct {
	Table  *timedataset.Table
	Target string
	Latest time.Time
}

// Prepare cleans a raw table: drop noise columns, rename, check required
// columns, fill gaps, derive target lags and moving averages and trim the
// incomplete rows at both ends. The raw table is not modified. At least
// MinHistory complete rows must remain.
func Prepare(raw *timedataset.Table, opt *Options) (*Dataset, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if raw == nil || raw.Len() == 0 {
		return nil, fmt.Errorf("empty table, %w", ErrInsufficientHistory)
	}

	tbl := raw.Copy()
	tbl.DropColumns(opt.DropColumns...)
	for from, to := range opt.Rename {
		tbl.RenameColumn(from, to)
	}

	required := opt.required()
	for _, name := range required {
		if !tbl.HasColumn(name) {
			return nil, fmt.Errorf("%s, %w", name, ErrMissingColumn)
		}
	}

	for _, name := range opt.FillForward {
		if err := tbl.FillForward(name); err != nil {
			return nil, fmt.Errorf("unable to forward fill, %w", err)
		}
	}
	for _, name := range opt.interiorFilled() {
		if err := tbl.FillInterior(name); err != nil {
			return nil, fmt.Errorf("unable to fill interior gaps, %w", err)
		}
	}
	for _, name := range opt.FillBackward {
		if err := tbl.FillBackward(name); err != nil {
			return nil, fmt.Errorf("unable to backward fill, %w", err)
		}
	}

	target, err := tbl.Column(opt.Target)
	if err != nil {
		return nil, err
	}
	derived := make([]string, 0, len(opt.Lags)+len(opt.MovingAverages))
	for _, k := range opt.Lags {
		f := feature.NewLag(k)
		if err := tbl.SetColumn(f.String(), feature.LagColumn(target, k)); err != nil {
			return nil, err
		}
		derived = append(derived, f.String())
	}
	for _, w := range opt.MovingAverages {
		f := feature.NewMovingAverage(w)
		if err := tbl.SetColumn(f.String(), feature.MovingAverageColumn(target, w, false)); err != nil {
			return nil, err
		}
		derived = append(derived, f.String())
	}

	first, last, err := completeRange(tbl, required, derived)
	if err != nil {
		return nil, err
	}
	trimmed := tbl.Slice(timedataset.AddDays(tbl.Start(), first), timedataset.AddDays(tbl.Start(), last))
	if trimmed.Len() < opt.MinHistory {
		return nil, fmt.Errorf(
			"%d clean observations of %s, need %d, %w",
			trimmed.Len(), opt.Target, opt.MinHistory, ErrInsufficientHistory,
		)
	}

	slog.Debug("prepared dataset",
		"rows", trimmed.Len(),
		"start", timedataset.FormatDate(trimmed.Start()),
		"latest", timedataset.FormatDate(trimmed.End()),
		"trimmed", tbl.Len()-trimmed.Len(),
	)
	return &Dataset{
		Table:  trimmed,
		Target: opt.Target,
		Latest: trimmed.End(),
	}, nil
}

// completeRange finds the first and last rows with every required and derived
// column present. Any required cell still missing between them is an interior
// gap.
func completeRange(tbl *timedataset.Table, required, derived []string) (int, int, error) {
	cols := make(map[string][]timedataset.Value, len(required)+len(derived))
	for _, name := range append(append([]string{}, required...), derived...) {
		col, err := tbl.Column(name)
		if err != nil {
			return 0, 0, err
		}
		cols[name] = col
	}
	complete := func(i int) bool {
		for _, col := range cols {
			if !col[i].Valid() {
				return false
			}
		}
		return true
	}

	first, last := -1, -1
	for i := 0; i < tbl.Len(); i++ {
		if complete(i) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return 0, 0, fmt.Errorf("no complete row, %w", ErrInsufficientHistory)
	}

	for i := first; i <= last; i++ {
		for _, name := range required {
			if !cols[name][i].Valid() {
				date := timedataset.AddDays(tbl.Start(), i)
				return 0, 0, fmt.Errorf("%s on %s, %w", name, timedataset.FormatDate(date), ErrInteriorGap)
			}
		}
	}
	return first, last, nil
}

// TargetSeries returns the target as a gap-free series
func (d *Dataset) TargetSeries() (*timedataset.Series, error) {
	return d.Table.Series(d.Target)
}

// History returns the target observations dated on or after Latest minus days
func (d *Dataset) History(days int) (*timedataset.Series, error) {
	start := timedataset.AddDays(d.Latest, -days)
	s, err := d.Table.Slice(start, d.Latest).Series(d.Target)
	if err != nil {
		return nil, fmt.Errorf("unable to build history, %w", err)
	}
	return s, nil
}

// Working returns a copy of the table to extrapolate and forecast on
func (d *Dataset) Working() *timedataset.Table {
	return d.Table.Copy()
}
