package forecaster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkeereweer/electricity-price-predictor/feature"
	"github.com/tkeereweer/electricity-price-predictor/store"
)

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"nil": {
			opt: nil,
		},
		"missing sections": {
			opt: &Options{HistoryDays: 30},
		},
		"target mismatch": {
			opt: &Options{
				Store:    store.NewDefaultOptions(),
				Features: &feature.Options{Target: "Gas_Price"},
			},
			err: ErrTargetMismatch,
		},
		"invalid feature": {
			opt: &Options{
				Features: &feature.Options{Target: "Electricity_Price", Lags: []int{0}},
			},
			err: feature.ErrInvalidLag,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.NotNil(t, opt.Store)
			assert.NotNil(t, opt.Features)
			assert.NotNil(t, opt.Extrapolation)
		})
	}

	opt := NewDefaultOptions()
	opt.Exogenous = append(opt.Exogenous, "Electricity_Price")
	_, err := opt.Validate()
	assert.NotNil(t, err)
}
