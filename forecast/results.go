package forecast

import (
	"time"

	"github.com/tkeereweer/electricity-price-predictor/predictor"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

// Results holds one entry per forecast day in column form
type Results struct {
	T        []time.Time `json:"time"`
	Forecast []float64   `json:"forecast"`
	Upper    []float64   `json:"upper"`
	Lower    []float64   `json:"lower"`
}

func newResults(n int) *Results {
	return &Results{
		T:        make([]time.Time, 0, n),
		Forecast: make([]float64, 0, n),
		Upper:    make([]float64, 0, n),
		Lower:    make([]float64, 0, n),
	}
}

func (r *Results) add(date time.Time, est predictor.Estimate) {
	r.T = append(r.T, date)
	r.Forecast = append(r.Forecast, est.Point)
	r.Lower = append(r.Lower, est.Lower)
	r.Upper = append(r.Upper, est.Upper)
}

// Len returns the number of forecast days
func (r *Results) Len() int {
	return len(r.T)
}

// Estimate returns the forecast of the i-th day
func (r *Results) Estimate(i int) predictor.Estimate {
	return predictor.Estimate{
		Point: r.Forecast[i],
		Lower: r.Lower[i],
		Upper: r.Upper[i],
	}
}

// Actuals aligns observed values to the forecast days, NaN where none exists
func (r *Results) Actuals(observed *timedataset.Series) []float64 {
	res := make([]float64, len(r.T))
	for i, d := range r.T {
		val, ok := observed.At(d)
		if !ok {
			res[i] = timedataset.None().Float()
			continue
		}
		res[i] = val
	}
	return res
}

// Score compares the forecast against observed values of the same days
func (r *Results) Score(observed *timedataset.Series) (*Scores, error) {
	return NewScores(r.Forecast, r.Actuals(observed))
}
