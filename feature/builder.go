package feature

import (
	"time"

	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

// Builder turns a date, the target history and the covariate table into a
// feature row. It holds no state between calls.
type Builder struct {
	opt *Options
}

func NewBuilder(opt *Options) (*Builder, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return &Builder{opt: opt}, nil
}

// Options returns the builder configuration
func (b *Builder) Options() Options {
	return *b.opt
}

// Labels returns every feature the builder produces in a stable order
func (b *Builder) Labels() *Labels {
	return NewLabels(b.opt.features())
}

// Row builds the features for date. Lags and moving averages only read target
// values strictly before date. Covariates and interactions read the table on
// date itself, whether the cell was observed or extrapolated. Anything that
// cannot be computed is left missing in the row.
func (b *Builder) Row(date time.Time, target *timedataset.Series, covariates *timedataset.Table) Row {
	date = timedataset.TruncateDay(date)
	row := Row{
		Date: date,
		Set:  make(Set),
	}

	for _, name := range b.opt.Covariates {
		row.Set.Add(NewCovariate(name), b.covariate(covariates, name, date))
	}

	var past []float64
	if target != nil {
		past = target.Before(date)
	}
	for _, k := range b.opt.Lags {
		lag := NewLag(k)
		row.Set.Add(lag, lag.Value(past))
	}
	for _, w := range b.opt.MovingAverages {
		ma := NewMovingAverage(w)
		row.Set.Add(ma, ma.Value(past, b.opt.Partial))
	}

	for _, in := range b.opt.Interactions {
		f := &Interaction{Name: in.Name, A: in.A, B: in.B}
		row.Set.Add(f, f.Value(
			b.covariate(covariates, in.A, date),
			b.covariate(covariates, in.B, date),
		))
	}

	if b.opt.Holidays != "" {
		hol := NewHoliday(b.opt.Holidays)
		val, err := hol.Value(date)
		if err != nil {
			val = timedataset.None()
		}
		row.Set.Add(hol, val)
	}
	return row
}

func (b *Builder) covariate(covariates *timedataset.Table, name string, date time.Time) timedataset.Value {
	if covariates == nil {
		return timedataset.None()
	}
	return covariates.At(name, date)
}
