package forecaster

import (
	"time"

	"github.com/tkeereweer/electricity-price-predictor/forecast"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

// History is the trailing window of observed target values
type History struct {
	T []time.Time `json:"time"`
	Y []float64   `json:"values"`
}

func newHistory(s *timedataset.Series) *History {
	return &History{
		T: s.Dates(),
		Y: s.Values(),
	}
}

// Prediction is the observed history followed by the forecast. Forecast
// starts the day after Latest and is empty when the requested end is not
// after Latest.
type Prediction struct {
	History  *History          `json:"history"`
	Forecast *forecast.Results `json:"forecast"`
	Latest   time.Time         `json:"latest"`
}

// Backtest is a forecast from a cutoff compared to what was observed
type Backtest struct {
	Cutoff   time.Time         `json:"cutoff"`
	History  *History          `json:"history"`
	Forecast *forecast.Results `json:"forecast"`
	Actual   []float64         `json:"actual"`
	Scores   *forecast.Scores  `json:"scores"`

	// OneStepR2 scores the target model on the same days fed only observed
	// values. It is unset when the predictor cannot be scored or the window
	// has no variance.
	OneStepR2 *float64 `json:"one_step_r_squared,omitempty"`
}
