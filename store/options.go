package store

import (
	"errors"
	"fmt"
	"slices"
)

var ErrNoTarget = errors.New("no target column")

// Options controls how a raw table is cleaned into a Dataset
type Options struct {
	Target string `json:"target" mapstructure:"target"`

	// DropColumns are removed before anything else, absent ones are ignored
	DropColumns []string `json:"drop_columns" mapstructure:"drop_columns"`

	// Rename maps raw column names to the names the models use
	Rename map[string]string `json:"rename" mapstructure:"rename"`

	// Required columns must exist after renaming and may not have gaps inside
	// the prepared range
	Required []string `json:"required" mapstructure:"required"`

	FillForward  []string `json:"fill_forward" mapstructure:"fill_forward"`
	FillBackward []string `json:"fill_backward" mapstructure:"fill_backward"`

	// FillCovariates forward fills interior gaps of every required column
	// other than the target. Only a gap in the target is then an interior gap.
	FillCovariates bool `json:"fill_covariates" mapstructure:"fill_covariates"`

	// Lags and MovingAverages are computed on the target with the strictly
	// past definition used when forecasting
	Lags           []int `json:"lags" mapstructure:"lags"`
	MovingAverages []int `json:"moving_averages" mapstructure:"moving_averages"`

	// MinHistory is the least number of clean target observations accepted
	MinHistory int `json:"min_history" mapstructure:"min_history"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Target:      "Electricity_Price",
		DropColumns: []string{"Unnamed: 0", "Gas Demand"},
		Rename: map[string]string{
			"Electricity Demand": "Electricity_Demand",
			"Gas Price":          "Gas_Price",
			"Electricity Price":  "Electricity_Price",
		},
		Required: []string{
			"Electricity_Price",
			"Temperature",
			"Gas_Price",
			"interconn_fra",
			"CO2_Value",
			"Electricity_Demand",
		},
		FillForward:    []string{"Gas_Price", "interconn_fra", "CO2_Value"},
		FillBackward:   []string{"CO2_Value"},
		FillCovariates: true,
		Lags:           []int{1, 7},
		MovingAverages: []int{7, 30},
		MinHistory:     30,
	}
}

func (o *Options) Validate() error {
	if o == nil {
		return errors.New("nil store options")
	}
	if o.Target == "" {
		return ErrNoTarget
	}
	if o.MinHistory < 1 {
		return fmt.Errorf("min history of %d, %w", o.MinHistory, ErrInsufficientHistory)
	}
	for _, k := range o.Lags {
		if k < 1 {
			return fmt.Errorf("lag of %d must be at least 1", k)
		}
	}
	for _, w := range o.MovingAverages {
		if w < 1 {
			return fmt.Errorf("moving average window of %d must be at least 1", w)
		}
	}
	return nil
}

// interiorFilled lists the required covariates forward filled only between
// their first and last present values
func (o *Options) interiorFilled() []string {
	if !o.FillCovariates {
		return nil
	}
	var res []string
	for _, name := range o.Required {
		if name != o.Target && !slices.Contains(o.FillForward, name) {
			res = append(res, name)
		}
	}
	return res
}

func (o *Options) required() []string {
	res := []string{o.Target}
	for _, name := range o.Required {
		if name != o.Target {
			res = append(res, name)
		}
	}
	return res
}
