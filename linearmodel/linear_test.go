package linearmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNew(t *testing.T) {
	testData := map[string]struct {
		intercept float64
		coef      []float64
		err       error
	}{
		"valid": {
			intercept: 2,
			coef:      []float64{3, 4},
		},
		"no coefficients": {
			err: ErrNoCoefficients,
		},
		"nan coefficient": {
			coef: []float64{1, math.NaN()},
			err:  ErrNonFinite,
		},
		"nan intercept": {
			intercept: math.NaN(),
			coef:      []float64{1},
			err:       ErrNonFinite,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			m, err := New(td.intercept, td.coef)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.intercept, m.Intercept())
			assert.Equal(t, td.coef, m.Coef())
			assert.Equal(t, len(td.coef), m.Len())
		})
	}
}

func TestPredict(t *testing.T) {
	m, err := New(2, []float64{3, 4})
	require.Nil(t, err)

	x := mat.NewDense(4, 2, []float64{
		0, 0,
		3, 5,
		9, 20,
		12, 6,
	})
	y := mat.NewDense(4, 1, []float64{2, 31, 109, 62})

	res, err := m.Predict(x)
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{2, 31, 109, 62}, res, 1e-9)

	r2, err := m.Score(x, y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, 1e-9)

	_, err = m.Predict(mat.NewDense(1, 3, []float64{1, 2, 3}))
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)

	_, err = m.Score(x, mat.NewDense(2, 1, []float64{1, 2}))
	assert.ErrorIs(t, err, ErrTargetLenMismatch)
}

func TestPredictVec(t *testing.T) {
	m, err := New(2, []float64{3, 4})
	require.Nil(t, err)

	testData := map[string]struct {
		x        []float64
		expected float64
		err      error
	}{
		"valid": {
			x:        []float64{3, 5},
			expected: 31,
		},
		"too few": {
			x:   []float64{3},
			err: ErrFeatureLenMismatch,
		},
		"infinite": {
			x:   []float64{math.Inf(1), 0},
			err: ErrNonFinite,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := m.PredictVec(td.x)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected, res, 1e-9)
		})
	}
}
