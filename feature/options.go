package feature

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tkeereweer/electricity-price-predictor/event"
)

var (
	ErrNoTarget         = errors.New("no target column")
	ErrInvalidLag       = errors.New("lag must be at least 1")
	ErrInvalidWindow    = errors.New("moving average window must be at least 1")
	ErrInvalidOperand   = errors.New("interaction operand is not a covariate")
	ErrDuplicateFeature = errors.New("duplicate feature")
)

// Options configures which features a Builder produces for every row
type Options struct {
	Target         string        `json:"target" mapstructure:"target"`
	Covariates     []string      `json:"covariates" mapstructure:"covariates"`
	Lags           []int         `json:"lags" mapstructure:"lags"`
	MovingAverages []int         `json:"moving_averages" mapstructure:"moving_averages"`
	Interactions   []Interaction `json:"interactions" mapstructure:"interactions"`

	// Holidays names a holiday calendar to flag, empty to disable
	Holidays string `json:"holidays" mapstructure:"holidays"`

	// Partial allows moving averages over fewer values than the window when
	// not enough history precedes the row
	Partial bool `json:"partial" mapstructure:"partial"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Target: "Electricity_Price",
		Covariates: []string{
			"Temperature",
			"Gas_Price",
			"interconn_fra",
			"CO2_Value",
			"Electricity_Demand",
		},
		Lags:           []int{1, 7},
		MovingAverages: []int{7, 30},
		Interactions:   DefaultInteractions(),
	}
}

func (o *Options) Validate() error {
	if o == nil {
		return errors.New("nil feature options")
	}
	if o.Target == "" {
		return ErrNoTarget
	}
	for _, k := range o.Lags {
		if k < 1 {
			return fmt.Errorf("lag %d, %w", k, ErrInvalidLag)
		}
	}
	for _, w := range o.MovingAverages {
		if w < 1 {
			return fmt.Errorf("window %d, %w", w, ErrInvalidWindow)
		}
	}
	for _, in := range o.Interactions {
		for _, operand := range []string{in.A, in.B} {
			if !slices.Contains(o.Covariates, operand) {
				return fmt.Errorf("%s operand %q, %w", in.Name, operand, ErrInvalidOperand)
			}
		}
	}
	if o.Holidays != "" && !slices.Contains(event.Calendars(), NewHoliday(o.Holidays).Calendar) {
		return fmt.Errorf("%s, %w", o.Holidays, event.ErrUnknownCalendar)
	}

	seen := make(map[string]bool)
	for _, f := range o.features() {
		if seen[f.String()] {
			return fmt.Errorf("%s, %w", f, ErrDuplicateFeature)
		}
		seen[f.String()] = true
	}
	return nil
}

// MaxLookback returns the number of preceding days a row needs for every lag
// and full moving average window
func (o *Options) MaxLookback() int {
	var res int
	for _, k := range o.Lags {
		res = max(res, k)
	}
	for _, w := range o.MovingAverages {
		res = max(res, w)
	}
	return res
}

func (o *Options) features() []Feature {
	var res []Feature
	for _, name := range o.Covariates {
		res = append(res, NewCovariate(name))
	}
	for _, k := range o.Lags {
		res = append(res, NewLag(k))
	}
	for _, w := range o.MovingAverages {
		res = append(res, NewMovingAverage(w))
	}
	for _, in := range o.Interactions {
		res = append(res, &Interaction{Name: in.Name, A: in.A, B: in.B})
	}
	if o.Holidays != "" {
		res = append(res, NewHoliday(o.Holidays))
	}
	return res
}
