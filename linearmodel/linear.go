// Package linearmodel evaluates fitted linear regression models
package linearmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Model is a fitted linear model y = intercept + coef·x. It is never mutated
// after construction and is safe for concurrent use.
type Model struct {
	coef      []float64
	intercept float64
}

// New returns a model from an already fitted intercept and coefficients
func New(intercept float64, coef []float64) (*Model, error) {
	if len(coef) == 0 {
		return nil, ErrNoCoefficients
	}
	c := make([]float64, len(coef))
	copy(c, coef)
	if !floats.HasNaN(c) && !math.IsNaN(intercept) {
		return &Model{coef: c, intercept: intercept}, nil
	}
	return nil, fmt.Errorf("coefficients contain NaN, %w", ErrNonFinite)
}

// PredictVec evaluates the model for a single observation
func (m *Model) PredictVec(x []float64) (float64, error) {
	if len(x) != len(m.coef) {
		return 0, fmt.Errorf("got %d features, but expected %d, %w", len(x), len(m.coef), ErrFeatureLenMismatch)
	}
	res := m.intercept + floats.Dot(m.coef, x)
	if math.IsNaN(res) || math.IsInf(res, 0) {
		return 0, ErrNonFinite
	}
	return res, nil
}

// Predict evaluates the model for every row of the design matrix
func (m *Model) Predict(x mat.Matrix) ([]float64, error) {
	if x == nil {
		return nil, ErrNoDesignMatrix
	}

	coef := append([]float64{m.intercept}, m.coef...)
	n := len(coef)

	rows, _ := x.Dims()
	ones := make([]float64, rows)
	floats.AddConst(1.0, ones)
	onesMx := mat.NewDense(1, rows, ones)

	var xWithOnes mat.Dense
	xWithOnes.Stack(onesMx, x.T())

	xn, _ := xWithOnes.Dims()
	if xn != n {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", xn-1, n-1, ErrFeatureLenMismatch)
	}
	coefMx := mat.NewDense(1, n, coef)

	var res mat.Dense
	res.Mul(coefMx, &xWithOnes)
	return res.RawRowView(0), nil
}

// Score computes the coefficient of determination of the prediction
func (m *Model) Score(x, y mat.Matrix) (float64, error) {
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	rows, _ := x.Dims()
	ym, _ := y.Dims()
	if rows != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", rows, ym, ErrTargetLenMismatch)
	}

	res, err := m.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)
	return stat.RSquaredFrom(res, ySlice, nil), nil
}

// Intercept returns the model intercept
func (m *Model) Intercept() float64 {
	return m.intercept
}

// Coef returns a slice copy of the coefficients in feature order
func (m *Model) Coef() []float64 {
	c := make([]float64, len(m.coef))
	copy(c, m.coef)
	return c
}

// Len returns the number of features the model expects
func (m *Model) Len() int {
	return len(m.coef)
}
