package predictor

import (
	"fmt"
	"math"

	"github.com/tkeereweer/electricity-price-predictor/feature"
	"github.com/tkeereweer/electricity-price-predictor/linearmodel"
	"gonum.org/v1/gonum/mat"
)

// Interval widens a point estimate symmetrically by ZScore residual standard
// deviations
type Interval struct {
	ResidualStdDev float64 `json:"residual_stddev"`
	ZScore         float64 `json:"zscore"`
}

func (i Interval) halfWidth() float64 {
	return math.Abs(i.ResidualStdDev * i.ZScore)
}

// Linear is a fitted linear model with the feature labels its coefficients
// follow. It implements PointPredictor and, when it carries an interval,
// IntervalPredictor.
type Linear struct {
	name     string
	model    *linearmodel.Model
	labels   *feature.Labels
	interval *Interval
}

func NewLinear(name string, model *linearmodel.Model, labels *feature.Labels, interval *Interval) (*Linear, error) {
	if model == nil || labels == nil {
		return nil, fmt.Errorf("%s has no model, %w", name, ErrInvalidArtifact)
	}
	if model.Len() != labels.Len() {
		return nil, fmt.Errorf(
			"%s has %d coefficients and %d labels, %w",
			name, model.Len(), labels.Len(), ErrInvalidArtifact,
		)
	}
	return &Linear{
		name:     name,
		model:    model,
		labels:   labels,
		interval: interval,
	}, nil
}

func (l *Linear) Name() string {
	return l.name
}

// Labels returns the features in coefficient order
func (l *Linear) Labels() *feature.Labels {
	return l.labels
}

// Len returns the number of features the model expects
func (l *Linear) Len() int {
	return l.labels.Len()
}

// HasInterval reports whether Forecast is supported
func (l *Linear) HasInterval() bool {
	return l.interval != nil
}

func (l *Linear) Predict(x []float64) (float64, error) {
	res, err := l.model.PredictVec(x)
	if err != nil {
		return 0, fmt.Errorf("unable to predict %s, %w", l.name, err)
	}
	return res, nil
}

// Score returns the coefficient of determination of the model over x
func (l *Linear) Score(x mat.Matrix, y []float64) (float64, error) {
	if len(y) == 0 {
		return 0, fmt.Errorf("%s, %w", l.name, linearmodel.ErrNoTargetMatrix)
	}
	r2, err := l.model.Score(x, mat.NewDense(len(y), 1, y))
	if err != nil {
		return 0, fmt.Errorf("unable to score %s, %w", l.name, err)
	}
	return r2, nil
}

func (l *Linear) Forecast(x []float64) (Estimate, error) {
	if l.interval == nil {
		return Estimate{}, fmt.Errorf("%s, %w", l.name, ErrNotInterval)
	}
	point, err := l.Predict(x)
	if err != nil {
		return Estimate{}, err
	}
	hw := l.interval.halfWidth()
	return Estimate{
		Point: point,
		Lower: point - hw,
		Upper: point + hw,
	}, nil
}
