package feature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tkeereweer/electricity-price-predictor/timedataset"
	"gonum.org/v1/gonum/stat"
)

const (
	lagPrefix = "lag_"
	maPrefix  = "ma_"
)

// Lag is the target value K days before the row's date
type Lag struct {
	K int `json:"k"`
}

func NewLag(k int) *Lag {
	return &Lag{k}
}

func (l Lag) String() string {
	return fmt.Sprintf("%s%d", lagPrefix, l.K)
}

func (l Lag) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "k":
		return strconv.Itoa(l.K), true
	}
	return "", false
}

func (l Lag) Type() FeatureType {
	return FeatureTypeLag
}

// Value returns the lag given the values strictly before the row's date
func (l Lag) Value(past []float64) timedataset.Value {
	if l.K < 1 || len(past) < l.K {
		return timedataset.None()
	}
	return timedataset.Some(past[len(past)-l.K])
}

// MovingAverage is the mean of the Window target values strictly before the
// row's date. The row's own value is never included.
type MovingAverage struct {
	Window int `json:"window"`
}

func NewMovingAverage(window int) *MovingAverage {
	return &MovingAverage{window}
}

func (m MovingAverage) String() string {
	return fmt.Sprintf("%s%d", maPrefix, m.Window)
}

func (m MovingAverage) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "window":
		return strconv.Itoa(m.Window), true
	}
	return "", false
}

func (m MovingAverage) Type() FeatureType {
	return FeatureTypeMovingAverage
}

// Value returns the average given the values strictly before the row's date.
// With fewer than Window values the result is missing unless partial is set,
// in which case the available values are averaged.
func (m MovingAverage) Value(past []float64, partial bool) timedataset.Value {
	if m.Window < 1 || len(past) == 0 {
		return timedataset.None()
	}
	if len(past) < m.Window {
		if !partial {
			return timedataset.None()
		}
		return timedataset.Some(stat.Mean(past, nil))
	}
	return timedataset.Some(stat.Mean(past[len(past)-m.Window:], nil))
}

// LagColumn computes a lag for every index of a column. A missing source cell
// makes the result missing.
func LagColumn(y []timedataset.Value, k int) []timedataset.Value {
	res := make([]timedataset.Value, len(y))
	if k < 1 {
		return res
	}
	for i := k; i < len(y); i++ {
		res[i] = y[i-k]
	}
	return res
}

// MovingAverageColumn computes a strictly past moving average for every index
// of a column, using the same definition as MovingAverage.Value. Any missing
// cell inside a window makes that result missing.
func MovingAverageColumn(y []timedataset.Value, w int, partial bool) []timedataset.Value {
	res := make([]timedataset.Value, len(y))
	ma := MovingAverage{Window: w}
	window := make([]float64, 0, w)
	for i := range y {
		lo := i - w
		if lo < 0 {
			lo = 0
		}
		window = window[:0]
		complete := true
		for _, v := range y[lo:i] {
			val, ok := v.Get()
			if !ok {
				complete = false
				break
			}
			window = append(window, val)
		}
		if !complete {
			continue
		}
		res[i] = ma.Value(window, partial)
	}
	return res
}
