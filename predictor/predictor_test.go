package predictor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkeereweer/electricity-price-predictor/linearmodel"
	"gonum.org/v1/gonum/mat"
)

const targetArtifact = `{
  "name": "Electricity_Price",
  "kind": "interval",
  "intercept": 1.5,
  "weights": [
    {"label": "lag_1", "value": 0.5},
    {"label": "Gas_Price", "value": 2}
  ],
  "interval": {"residual_stddev": 2, "zscore": 1.5}
}`

func TestDecodeArtifact(t *testing.T) {
	testData := map[string]struct {
		input string
		err   error
	}{
		"valid interval": {
			input: targetArtifact,
		},
		"valid point": {
			input: `{"name": "Temperature", "kind": "point", "intercept": 0, "weights": [{"label": "Temperature_lag1", "value": 1}]}`,
		},
		"interval without bounds": {
			input: `{"name": "x", "kind": "interval", "weights": [{"label": "lag_1", "value": 1}]}`,
			err:   ErrInvalidArtifact,
		},
		"unknown kind": {
			input: `{"name": "x", "kind": "tree", "weights": [{"label": "lag_1", "value": 1}]}`,
			err:   ErrInvalidArtifact,
		},
		"no weights": {
			input: `{"name": "x", "kind": "point"}`,
			err:   ErrInvalidArtifact,
		},
		"malformed": {
			input: `{"name": `,
			err:   ErrInvalidArtifact,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeArtifact(strings.NewReader(td.input))
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.Nil(t, err)
		})
	}
}

func TestLinearForecast(t *testing.T) {
	a, err := DecodeArtifact(strings.NewReader(targetArtifact))
	require.Nil(t, err)
	p, err := a.Linear()
	require.Nil(t, err)

	assert.Equal(t, []string{"lag_1", "Gas_Price"}, p.Labels().Strings())
	assert.True(t, p.HasInterval())

	est, err := p.Forecast([]float64{10, 3})
	require.Nil(t, err)
	assert.Equal(t, Estimate{Point: 12.5, Lower: 9.5, Upper: 15.5}, est)
	assert.Nil(t, est.Validate())

	_, err = p.Forecast([]float64{10})
	assert.NotNil(t, err)

	point, err := NewLagArtifact("Temperature", 1, []float64{0.5}).Linear()
	require.Nil(t, err)
	_, err = point.Forecast([]float64{1})
	assert.ErrorIs(t, err, ErrNotInterval)

	val, err := point.Predict([]float64{4})
	require.Nil(t, err)
	assert.Equal(t, 3.0, val)
}

func TestLinearScore(t *testing.T) {
	a, err := DecodeArtifact(strings.NewReader(targetArtifact))
	require.Nil(t, err)
	p, err := a.Linear()
	require.Nil(t, err)
	assert.Equal(t, 2, p.Len())

	obs := [][]float64{{10, 3}, {20, 1}, {5, 7}}
	x := mat.NewDense(3, 2, nil)
	y := make([]float64, len(obs))
	for i, row := range obs {
		x.SetRow(i, row)
		y[i], err = p.Predict(row)
		require.Nil(t, err)
	}

	r2, err := p.Score(x, y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, 1e-9)

	shifted := make([]float64, len(y))
	for i := range y {
		shifted[i] = y[i] + float64(i)
	}
	r2, err = p.Score(x, shifted)
	require.Nil(t, err)
	assert.Less(t, r2, 1.0)

	_, err = p.Score(mat.NewDense(3, 1, []float64{1, 2, 3}), y)
	assert.ErrorIs(t, err, linearmodel.ErrFeatureLenMismatch)

	_, err = p.Score(x, nil)
	assert.ErrorIs(t, err, linearmodel.ErrNoTargetMatrix)

	_, err = p.Score(x, y[:2])
	assert.ErrorIs(t, err, linearmodel.ErrTargetLenMismatch)
}

func TestEstimateValidate(t *testing.T) {
	assert.Nil(t, Estimate{Point: 1, Lower: 1, Upper: 1}.Validate())
	assert.ErrorIs(t, Estimate{Point: 1, Lower: 2, Upper: 3}.Validate(), ErrInvalidInterval)
	assert.ErrorIs(t, Estimate{Point: 4, Lower: 2, Upper: 3}.Validate(), ErrInvalidInterval)
}

func writeArtifact(t *testing.T, dir string, a Artifact) {
	out, err := json.Marshal(a)
	require.Nil(t, err)
	require.Nil(t, os.WriteFile(ArtifactPath(dir, a.Name), out, 0o644))
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	require.Nil(t, os.WriteFile(filepath.Join(dir, "Electricity_Price_model.json"), []byte(targetArtifact), 0o644))
	writeArtifact(t, dir, NewLagArtifact("Gas_Price", 0, []float64{1, 0, 0}))

	reg, err := LoadRegistry(dir, "Electricity_Price", []string{"Gas_Price"})
	require.Nil(t, err)
	assert.Equal(t, "Electricity_Price", reg.Target().Name)
	assert.Equal(t, []string{"Gas_Price"}, reg.ExogenousNames())

	p, err := reg.Exogenous("Gas_Price")
	require.Nil(t, err)
	val, err := p.Predict([]float64{7, 1, 1})
	require.Nil(t, err)
	assert.Equal(t, 7.0, val)

	_, err = reg.Exogenous("Temperature")
	assert.ErrorIs(t, err, ErrMissingPredictor)

	_, err = LoadRegistry(dir, "Electricity_Price", []string{"Gas_Price", "Temperature"})
	assert.ErrorIs(t, err, ErrMissingArtifact)

	_, err = LoadRegistry(dir, "Gas_Price", nil)
	assert.ErrorIs(t, err, ErrNotInterval)

	artifacts, err := Artifacts(dir, "Electricity_Price", []string{"Gas_Price"})
	require.Nil(t, err)
	require.Len(t, artifacts, 2)

	var buf bytes.Buffer
	require.Nil(t, artifacts[1].TablePrint(&buf, "", "  "))
	assert.Contains(t, buf.String(), "Gas_Price_lag1")
	assert.Contains(t, buf.String(), "...")
}
