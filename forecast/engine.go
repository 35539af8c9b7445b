// Package forecast runs the recursive day by day forecast of the target,
// feeding every prediction back as history for the next day.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tkeereweer/electricity-price-predictor/feature"
	"github.com/tkeereweer/electricity-price-predictor/predictor"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

var (
	ErrNoHistory     = errors.New("no target history before the forecast start")
	ErrHistoryGap    = errors.New("target history does not reach the day before the forecast start")
	ErrEngineDone    = errors.New("forecast engine already finished")
	ErrNoPredictor   = errors.New("no target predictor")
	ErrNoBuilder     = errors.New("no feature builder")
	ErrNoWorkingData = errors.New("no working table")
)

type State int

const (
	StateAwaitingDay State = iota
	StatePredicted
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingDay:
		return "awaiting_day"
	case StatePredicted:
		return "predicted"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Engine forecasts the target one calendar day at a time from start to end
// inclusive. Each day's row only sees target values strictly before that day,
// which after the first day include earlier predictions. An engine is used for
// a single run and is not safe for concurrent use.
type Engine struct {
	state   State
	start   time.Time
	end     time.Time
	current time.Time

	target  string
	history *timedataset.Series
	table   *timedataset.Table

	predictor predictor.IntervalPredictor
	labels    *feature.Labels
	builder   *feature.Builder

	pending predictor.Estimate
	rows    []feature.Row
	results *Results
	err     error
}

// NewEngine prepares a forecast over working, which must hold a complete
// target column up to the day before start along with the covariates of every
// forecast day. working is modified by the run.
func NewEngine(
	working *timedataset.Table,
	start, end time.Time,
	pred predictor.IntervalPredictor,
	labels *feature.Labels,
	builder *feature.Builder,
) (*Engine, error) {
	if working == nil {
		return nil, ErrNoWorkingData
	}
	if pred == nil || labels == nil {
		return nil, ErrNoPredictor
	}
	if builder == nil {
		return nil, ErrNoBuilder
	}
	start = timedataset.TruncateDay(start)
	end = timedataset.TruncateDay(end)
	target := builder.Options().Target

	dayBefore := timedataset.AddDays(start, -1)
	if dayBefore.Before(working.Start()) {
		return nil, fmt.Errorf("start %s, %w", timedataset.FormatDate(start), ErrNoHistory)
	}
	history, err := working.Slice(working.Start(), dayBefore).Series(target)
	if err != nil {
		return nil, fmt.Errorf("unable to read target history, %w", err)
	}
	if history.Len() == 0 {
		return nil, ErrNoHistory
	}
	if !history.End().Equal(dayBefore) {
		return nil, fmt.Errorf(
			"history ends %s, forecast starts %s, %w",
			timedataset.FormatDate(history.End()), timedataset.FormatDate(start), ErrHistoryGap,
		)
	}

	n := timedataset.DaysBetween(start, end) + 1
	if n < 0 {
		n = 0
	}
	return &Engine{
		state:     StateAwaitingDay,
		start:     start,
		end:       end,
		current:   start,
		target:    target,
		history:   history,
		table:     working,
		predictor: pred,
		labels:    labels,
		builder:   builder,
		rows:      make([]feature.Row, 0, n),
		results:   newResults(n),
	}, nil
}

// State returns the current state
func (e *Engine) State() State {
	return e.state
}

// Current returns the day being forecast
func (e *Engine) Current() time.Time {
	return e.current
}

// Step advances the engine by one transition. AWAITING_DAY predicts the
// current day, or finishes once past end. PREDICTED commits the prediction to
// the history and moves to the next day. A failed step leaves the engine
// unusable and every later call returns the same error.
func (e *Engine) Step() error {
	if e.err != nil {
		return e.err
	}
	switch e.state {
	case StateAwaitingDay:
		if e.current.After(e.end) {
			e.finish()
			return nil
		}
		if err := e.predict(); err != nil {
			e.err = err
			return err
		}
		e.state = StatePredicted
	case StatePredicted:
		if err := e.commit(); err != nil {
			e.err = err
			return err
		}
		e.state = StateAwaitingDay
	case StateDone:
		return ErrEngineDone
	}
	return nil
}

// Run steps the engine until it is done. Nothing is returned if any day
// fails or the context is cancelled.
func (e *Engine) Run(ctx context.Context) (*Results, error) {
	for e.state != StateDone {
		if err := ctx.Err(); err != nil {
			e.err = err
			return nil, err
		}
		if err := e.Step(); err != nil {
			return nil, err
		}
	}
	return e.results, nil
}

func (e *Engine) predict() error {
	row := e.builder.Row(e.current, e.history, e.table)
	x, err := row.Vector(e.labels)
	if err != nil {
		return err
	}
	est, err := e.predictor.Forecast(x)
	if err != nil {
		return fmt.Errorf("unable to forecast %s, %w", timedataset.FormatDate(e.current), err)
	}
	if err := est.Validate(); err != nil {
		return fmt.Errorf("forecast of %s, %w", timedataset.FormatDate(e.current), err)
	}
	e.rows = append(e.rows, row)
	e.pending = est
	e.results.add(e.current, est)
	return nil
}

func (e *Engine) commit() error {
	if d := e.history.Append(e.pending.Point); !d.Equal(e.current) {
		return fmt.Errorf(
			"appended %s while forecasting %s, %w",
			timedataset.FormatDate(d), timedataset.FormatDate(e.current), ErrHistoryGap,
		)
	}
	if err := e.table.Set(e.target, e.current, timedataset.Some(e.pending.Point)); err != nil {
		return fmt.Errorf("unable to record forecast, %w", err)
	}
	e.current = timedataset.AddDays(e.current, 1)
	return nil
}

func (e *Engine) finish() {
	e.table.TruncateFrom(e.start)
	e.state = StateDone
}

// Results returns the forecast once done, nil before
func (e *Engine) Results() *Results {
	if e.state != StateDone {
		return nil
	}
	return e.results
}

// Rows returns the feature rows used for every forecast day so far
func (e *Engine) Rows() []feature.Row {
	rows := make([]feature.Row, len(e.rows))
	copy(rows, e.rows)
	return rows
}

// History returns the target buffer, observations followed by every committed
// prediction
func (e *Engine) History() *timedataset.Series {
	return e.history
}

// Table returns the working table. Once done it only holds days before start.
func (e *Engine) Table() *timedataset.Table {
	return e.table
}
