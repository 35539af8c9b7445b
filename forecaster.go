// Package forecaster forecasts a daily electricity price by extrapolating its
// covariates and recursively predicting the price one day at a time.
package forecaster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tkeereweer/electricity-price-predictor/extrapolate"
	"github.com/tkeereweer/electricity-price-predictor/feature"
	"github.com/tkeereweer/electricity-price-predictor/forecast"
	"github.com/tkeereweer/electricity-price-predictor/predictor"
	"github.com/tkeereweer/electricity-price-predictor/store"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

var (
	ErrNoSource       = errors.New("no data source")
	ErrNoLagSource    = errors.New("no lag source")
	ErrNoRegistry     = errors.New("no predictor registry")
	ErrInvalidCutoff  = errors.New("backtest cutoff outside the dataset")
	ErrTargetNotFound = errors.New("registry target does not match the forecast target")
)

// Forecaster serves history and forecasts. The dataset is rebuilt from the
// source on every call and each call works on its own copy, so a Forecaster
// is safe for concurrent use.
type Forecaster struct {
	opt      *Options
	source   store.Source
	lags     store.LagSource
	registry *predictor.Registry
	builder  *feature.Builder
	logger   *slog.Logger
}

// New creates a Forecaster. Every exogenous variable in the options must have
// a predictor in the registry taking NumLags inputs and every target input must
// be a feature the builder produces.
func New(opt *Options, source store.Source, lags store.LagSource, registry *predictor.Registry, logger *slog.Logger) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrNoSource
	}
	if lags == nil {
		return nil, ErrNoLagSource
	}
	if registry == nil {
		return nil, ErrNoRegistry
	}
	if logger == nil {
		logger = slog.Default()
	}
	if name := registry.Target().Name; name != opt.Features.Target {
		return nil, fmt.Errorf("registry has %s, forecasting %s, %w", name, opt.Features.Target, ErrTargetNotFound)
	}
	for _, name := range opt.Exogenous {
		p, err := registry.Exogenous(name)
		if err != nil {
			return nil, err
		}
		if s, ok := p.(predictor.Sized); ok && s.Len() != opt.Extrapolation.NumLags {
			return nil, fmt.Errorf(
				"%s takes %d lags, extrapolating with %d, %w",
				name, s.Len(), opt.Extrapolation.NumLags, predictor.ErrInputMismatch,
			)
		}
	}

	builder, err := feature.NewBuilder(opt.Features)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize feature builder, %w", err)
	}
	built := builder.Labels()
	for _, label := range registry.Target().Labels.Labels() {
		if _, exists := built.Index(label); !exists {
			return nil, fmt.Errorf(
				"target input %s is not built, %w",
				label, errors.Join(predictor.ErrInputMismatch, feature.ErrUnknownFeature),
			)
		}
	}
	return &Forecaster{
		opt:      opt,
		source:   source,
		lags:     lags,
		registry: registry,
		builder:  builder,
		logger:   logger,
	}, nil
}

// Options returns the validated options
func (f *Forecaster) Options() Options {
	return *f.opt
}

// Dataset loads and prepares the dataset
func (f *Forecaster) Dataset(ctx context.Context) (*store.Dataset, error) {
	raw, err := f.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load observations, %w", err)
	}
	ds, err := store.Prepare(raw, f.opt.Store)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare dataset, %w", err)
	}
	f.logger.Debug("dataset prepared",
		"rows", ds.Table.Len(),
		"latest", timedataset.FormatDate(ds.Latest),
	)
	return ds, nil
}

// History returns the target observations of the trailing HistoryDays
func (f *Forecaster) History(ctx context.Context) (*History, error) {
	ds, err := f.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return f.history(ds)
}

func (f *Forecaster) history(ds *store.Dataset) (*History, error) {
	s, err := ds.History(f.opt.HistoryDays)
	if err != nil {
		return nil, err
	}
	return newHistory(s), nil
}

// Predict forecasts every day from the day after the latest observation to end
// inclusive. An end on or before the latest observation yields an empty
// forecast.
func (f *Forecaster) Predict(ctx context.Context, end time.Time) (*Prediction, error) {
	began := time.Now()
	end = timedataset.TruncateDay(end)

	ds, err := f.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	hist, err := f.history(ds)
	if err != nil {
		return nil, err
	}

	working := ds.Working()
	if err := f.extend(ctx, end, working); err != nil {
		return nil, err
	}

	start := timedataset.AddDays(ds.Latest, 1)
	res, err := f.run(ctx, working, start, end)
	if err != nil {
		return nil, err
	}

	f.logger.Info("forecast completed",
		"start", timedataset.FormatDate(start),
		"end", timedataset.FormatDate(end),
		"horizon", res.Len(),
		"duration", time.Since(began),
	)
	return &Prediction{
		History:  hist,
		Forecast: res,
		Latest:   ds.Latest,
	}, nil
}

// Backtest hides the target after cutoff and forecasts it back up to the
// latest observation using the observed covariates, then scores the forecast
// against the hidden values.
func (f *Forecaster) Backtest(ctx context.Context, cutoff time.Time) (*Backtest, error) {
	cutoff = timedataset.TruncateDay(cutoff)

	ds, err := f.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if !cutoff.Before(ds.Latest) || cutoff.Before(ds.Table.Start()) {
		return nil, fmt.Errorf(
			"cutoff %s, dataset from %s to %s, %w",
			timedataset.FormatDate(cutoff),
			timedataset.FormatDate(ds.Table.Start()),
			timedataset.FormatDate(ds.Latest),
			ErrInvalidCutoff,
		)
	}
	actual, err := ds.TargetSeries()
	if err != nil {
		return nil, err
	}

	working := ds.Working()
	start := timedataset.AddDays(cutoff, 1)
	for _, d := range timedataset.DateRange(start, ds.Latest) {
		if err := working.Set(ds.Target, d, timedataset.None()); err != nil {
			return nil, err
		}
	}

	res, err := f.run(ctx, working, start, ds.Latest)
	if err != nil {
		return nil, err
	}
	scores, err := res.Score(actual)
	if err != nil {
		return nil, fmt.Errorf("unable to score backtest, %w", err)
	}

	hist := actual.Before(start)
	histDays := f.opt.HistoryDays
	if histDays < len(hist) {
		hist = hist[len(hist)-histDays:]
	}
	histStart := timedataset.AddDays(start, -len(hist))

	oneStep, err := f.oneStep(ds, actual, start)
	if err != nil {
		return nil, err
	}

	f.logger.Info("backtest completed",
		"cutoff", timedataset.FormatDate(cutoff),
		"horizon", res.Len(),
		"mse", scores.MSE,
		"mape", scores.MAPE,
		"r2", scores.R2,
	)
	return &Backtest{
		Cutoff:    cutoff,
		History:   newHistory(timedataset.NewSeries(histStart, hist)),
		Forecast:  res,
		Actual:    res.Actuals(actual),
		Scores:    scores,
		OneStepR2: oneStep,
	}, nil
}

// oneStep scores the target predictor from start to the latest day with every
// row built from observations only
func (f *Forecaster) oneStep(ds *store.Dataset, actual *timedataset.Series, start time.Time) (*float64, error) {
	target := f.registry.Target()
	scorer, ok := target.Predictor.(predictor.Scorer)
	if !ok {
		return nil, nil
	}
	days := timedataset.DateRange(start, ds.Latest)
	rows := make([]feature.Row, 0, len(days))
	y := make([]float64, 0, len(days))
	for _, d := range days {
		v, ok := actual.At(d)
		if !ok {
			continue
		}
		rows = append(rows, f.builder.Row(d, actual, ds.Table))
		y = append(y, v)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	x, err := feature.Matrix(rows, target.Labels, false)
	if err != nil {
		return nil, fmt.Errorf("unable to build one step design matrix, %w", err)
	}
	r2, err := scorer.Score(x, y)
	if err != nil {
		return nil, fmt.Errorf("unable to score one step ahead, %w", err)
	}
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		f.logger.Debug("one step score undefined", "days", len(y))
		return nil, nil
	}
	f.logger.Debug("one step scored", "days", len(y), "r2", r2)
	return &r2, nil
}

// extend extrapolates every exogenous variable up to end into working
func (f *Forecaster) extend(ctx context.Context, end time.Time, working *timedataset.Table) error {
	jobs := make([]extrapolate.Job, 0, len(f.opt.Exogenous))
	for _, name := range f.opt.Exogenous {
		p, err := f.registry.Exogenous(name)
		if err != nil {
			return err
		}
		lags, err := f.lags.LoadLags(ctx, name)
		if err != nil {
			return fmt.Errorf("unable to load lags of %s, %w", name, err)
		}
		jobs = append(jobs, extrapolate.Job{
			Name:      name,
			Predictor: p,
			Lags:      lags,
		})
	}

	results, err := extrapolate.Extend(ctx, end, working, jobs, f.opt.Extrapolation)
	if err != nil {
		return fmt.Errorf("unable to extrapolate covariates, %w", err)
	}
	written := 0
	for _, res := range results {
		written += res.Written
	}
	f.logger.Debug("covariates extrapolated",
		"end", timedataset.FormatDate(end),
		"variables", len(results),
		"written", written,
	)
	return nil
}

func (f *Forecaster) run(ctx context.Context, working *timedataset.Table, start, end time.Time) (*forecast.Results, error) {
	target := f.registry.Target()
	engine, err := forecast.NewEngine(working, start, end, target.Predictor, target.Labels, f.builder)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast, %w", err)
	}
	res, err := engine.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to forecast, %w", err)
	}
	return res, nil
}
