package forecaster

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tkeereweer/electricity-price-predictor/extrapolate"
	"github.com/tkeereweer/electricity-price-predictor/feature"
	"github.com/tkeereweer/electricity-price-predictor/store"
)

var ErrTargetMismatch = errors.New("store and feature targets differ")

// Options aggregates the options of every stage of a forecast
type Options struct {
	Store         *store.Options       `json:"store" mapstructure:"store"`
	Features      *feature.Options     `json:"features" mapstructure:"features"`
	Extrapolation *extrapolate.Options `json:"extrapolation" mapstructure:"extrapolation"`

	// Exogenous are the covariates extrapolated before every forecast. Each
	// needs a predictor and a lag table.
	Exogenous []string `json:"exogenous" mapstructure:"exogenous"`

	// HistoryDays is how far back from the latest observation the history
	// view reaches
	HistoryDays int `json:"history_days" mapstructure:"history_days"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Store:         store.NewDefaultOptions(),
		Features:      feature.NewDefaultOptions(),
		Extrapolation: extrapolate.NewDefaultOptions(),
		Exogenous: []string{
			"Temperature",
			"Gas_Price",
			"interconn_fra",
			"CO2_Value",
			"Electricity_Demand",
		},
		HistoryDays: 365,
	}
}

// Validate fills unset sections with defaults and checks the sections agree
// with each other
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	defaults := NewDefaultOptions()
	if o.Store == nil {
		o.Store = defaults.Store
	}
	if o.Features == nil {
		o.Features = defaults.Features
	}
	if o.Extrapolation == nil {
		o.Extrapolation = defaults.Extrapolation
	}
	if o.HistoryDays < 0 {
		return nil, fmt.Errorf("history days of %d must not be negative", o.HistoryDays)
	}

	if err := o.Store.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store options, %w", err)
	}
	if err := o.Features.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature options, %w", err)
	}
	extrapolation, err := o.Extrapolation.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid extrapolation options, %w", err)
	}
	o.Extrapolation = extrapolation

	if o.Store.Target != o.Features.Target {
		return nil, fmt.Errorf("%s and %s, %w", o.Store.Target, o.Features.Target, ErrTargetMismatch)
	}
	if slices.Contains(o.Exogenous, o.Store.Target) {
		return nil, fmt.Errorf("target %s cannot be exogenous", o.Store.Target)
	}
	return o, nil
}
