// Package predictor holds the fitted per-variable models used to extrapolate
// covariates and forecast the target.
package predictor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrMissingPredictor = errors.New("no predictor registered for variable")
	ErrMissingArtifact  = errors.New("predictor artifact not found")
	ErrInvalidArtifact  = errors.New("invalid predictor artifact")
	ErrInvalidInterval  = errors.New("interval does not contain the point estimate")
	ErrNotInterval      = errors.New("predictor does not produce intervals")
	ErrInputMismatch    = errors.New("predictor inputs do not match the configured features")
)

// PointPredictor maps a feature vector to a single value. Used for exogenous
// variables.
type PointPredictor interface {
	Predict(x []float64) (float64, error)
}

// IntervalPredictor maps a feature vector to a point estimate with bounds.
// Used for the target.
type IntervalPredictor interface {
	Forecast(x []float64) (Estimate, error)
}

// Sized is implemented by predictors expecting a fixed number of features
type Sized interface {
	Len() int
}

// Scorer rates a predictor against observed rows, one row per observation
// ordered like the predictor's labels
type Scorer interface {
	Score(x mat.Matrix, y []float64) (float64, error)
}

// Estimate is a point forecast with its prediction interval
type Estimate struct {
	Point float64 `json:"pred"`
	Lower float64 `json:"pred_lower"`
	Upper float64 `json:"pred_upper"`
}

// Validate checks Lower <= Point <= Upper
func (e Estimate) Validate() error {
	if e.Lower <= e.Point && e.Point <= e.Upper {
		return nil
	}
	return fmt.Errorf("lower %.4f, point %.4f, upper %.4f, %w", e.Lower, e.Point, e.Upper, ErrInvalidInterval)
}
