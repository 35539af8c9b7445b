// Package extrapolate extends exogenous variables past their last observation
// with their own autoregressive predictors so the target model has covariates
// for every forecast day.
package extrapolate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tkeereweer/electricity-price-predictor/predictor"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInsufficientLags = errors.New("not enough lag values to seed the predictor")
	ErrNoLags           = errors.New("no lag series")
	ErrNoTable          = errors.New("no working table")
)

// Options configures the extrapolation of every variable
type Options struct {
	// NumLags is the number of most recent values fed to each predictor,
	// most recent first
	NumLags int `json:"num_lags" mapstructure:"num_lags"`

	// Parallelization is the number of variables extended concurrently
	Parallelization int `json:"parallelization" mapstructure:"parallelization"`
}

func NewDefaultOptions() *Options {
	return &Options{
		NumLags:         15,
		Parallelization: 1,
	}
}

func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.NumLags < 1 {
		return nil, fmt.Errorf("%d lags, %w", o.NumLags, ErrInsufficientLags)
	}
	if o.Parallelization < 1 {
		o.Parallelization = 1
	}
	return o, nil
}

// Job is one variable to extend: its predictor and observed history
type Job struct {
	Name      string
	Predictor predictor.PointPredictor
	Lags      *timedataset.Series
}

// Result summarises what was written for one variable
type Result struct {
	Name string

	// Series is the lag history extended to the end date
	Series *timedataset.Series

	// Seeded counts table observations appended to the lag history because
	// the lag table ended before them
	Seeded int

	// Copied counts observed lag values added past the end of the table
	Copied int

	// Predicted counts synthetic values generated
	Predicted int

	// Written counts cells filled in the working table
	Written int
}

// Extend extrapolates every job up to end inclusive and writes the values into
// working. A lag history ending before the table continues with the table's
// observations so predictions chain from the latest observed value. A cell
// that already holds an observation is never overwritten.
// Variables are independent so they may run concurrently, but each one is
// strictly sequential and the table is only written after all succeed.
func Extend(ctx context.Context, end time.Time, working *timedataset.Table, jobs []Job, opt *Options) ([]Result, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if working == nil {
		return nil, ErrNoTable
	}
	end = timedataset.TruncateDay(end)

	seeded := make([]Job, len(jobs))
	counts := make([]int, len(jobs))
	for i, job := range jobs {
		seeded[i], counts[i] = seed(job, working)
	}

	results := make([]Result, len(jobs))
	if opt.Parallelization == 1 || len(jobs) < 2 {
		for i, job := range seeded {
			res, err := Variable(ctx, end, job, opt.NumLags)
			if err != nil {
				return nil, err
			}
			res.Seeded = counts[i]
			results[i] = res
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opt.Parallelization)
		for i, job := range seeded {
			g.Go(func() error {
				res, err := Variable(gctx, end, job, opt.NumLags)
				if err != nil {
					return err
				}
				res.Seeded = counts[i]
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	tableEnd := working.End()
	for i := range results {
		if err := merge(working, tableEnd, end, &results[i]); err != nil {
			return nil, err
		}
		slog.Debug("extrapolated variable",
			"name", results[i].Name,
			"seeded", results[i].Seeded,
			"copied", results[i].Copied,
			"predicted", results[i].Predicted,
			"written", results[i].Written,
		)
	}
	return results, nil
}

// seed appends to a copy of the job's lag history the consecutive observations
// the table holds after the last lag value
func seed(job Job, working *timedataset.Table) (Job, int) {
	if job.Lags == nil {
		return job, 0
	}
	var lags *timedataset.Series
	n := 0
	for d := timedataset.AddDays(job.Lags.End(), 1); !d.After(working.End()); d = timedataset.AddDays(d, 1) {
		v, ok := working.At(job.Name, d).Get()
		if !ok {
			break
		}
		if lags == nil {
			lags = job.Lags.Copy()
		}
		lags.Append(v)
		n++
	}
	if lags != nil {
		job.Lags = lags
	}
	return job, n
}

// Variable extends a single variable from the day after its last observation
// to end inclusive. Each step feeds the NumLags most recent values, most
// recent first, and appends the prediction before the next step. The job's
// lag series is not modified.
func Variable(ctx context.Context, end time.Time, job Job, numLags int) (Result, error) {
	if job.Lags == nil {
		return Result{}, fmt.Errorf("%s, %w", job.Name, ErrNoLags)
	}
	if job.Predictor == nil {
		return Result{}, fmt.Errorf("%s, %w", job.Name, predictor.ErrMissingPredictor)
	}
	if job.Lags.Len() < numLags {
		return Result{}, fmt.Errorf(
			"%s has %d values, need %d, %w",
			job.Name, job.Lags.Len(), numLags, ErrInsufficientLags,
		)
	}

	series := job.Lags.Copy()
	res := Result{Name: job.Name, Series: series}

	x := make([]float64, numLags)
	end = timedataset.TruncateDay(end)
	for d := timedataset.AddDays(series.End(), 1); !d.After(end); d = timedataset.AddDays(d, 1) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		tail := series.Tail(numLags)
		for i := range x {
			x[i] = tail[numLags-1-i]
		}
		val, err := job.Predictor.Predict(x)
		if err != nil {
			return Result{}, fmt.Errorf(
				"unable to extrapolate %s on %s, %w",
				job.Name, timedataset.FormatDate(d), err,
			)
		}
		series.Append(val)
		res.Predicted++
	}
	return res, nil
}

// merge writes observed lag values past the table end and every predicted
// value up to end into the working table, filling only missing cells.
func merge(working *timedataset.Table, tableEnd, end time.Time, res *Result) error {
	observedEnd := timedataset.AddDays(res.Series.End(), -res.Predicted)
	from := timedataset.AddDays(observedEnd, 1)
	if tableEnd.Before(observedEnd) {
		from = timedataset.AddDays(tableEnd, 1)
	}
	if from.Before(working.Start()) {
		from = working.Start()
	}
	for _, d := range timedataset.DateRange(from, end) {
		predicted := d.After(observedEnd)
		val, ok := res.Series.At(d)
		if !ok {
			continue
		}
		wrote, err := working.Fill(res.Name, d, timedataset.Some(val))
		if err != nil {
			return fmt.Errorf("unable to write %s, %w", res.Name, err)
		}
		if !wrote {
			continue
		}
		res.Written++
		if !predicted {
			res.Copied++
		}
	}
	return nil
}
