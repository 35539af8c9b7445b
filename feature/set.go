package feature

import (
	"fmt"
	"time"

	"github.com/tkeereweer/electricity-price-predictor/timedataset"
	"gonum.org/v1/gonum/mat"
)

// Data pairs a feature with its value for a single day
type Data struct {
	F     Feature
	Value timedataset.Value
}

// Set represents a mapping to each feature data keyed by the string representation
// of the feature.
type Set map[string]Data

// Add stores a feature value, replacing any previous one for the same label
func (s Set) Add(f Feature, v timedataset.Value) {
	s[f.String()] = Data{F: f, Value: v}
}

// Get returns the value for a label, missing if the label is not in the set
func (s Set) Get(label string) timedataset.Value {
	d, exists := s[label]
	if !exists {
		return timedataset.None()
	}
	return d.Value
}

// Vector projects the set onto labels in their order. Every label must be
// present with a value.
func (s Set) Vector(labels *Labels) ([]float64, error) {
	if labels == nil {
		return nil, nil
	}
	x := make([]float64, 0, labels.Len())
	for _, f := range labels.Labels() {
		d, exists := s[f.String()]
		if !exists {
			return nil, fmt.Errorf("%s, %w", f, ErrUnknownFeature)
		}
		val, ok := d.Value.Get()
		if !ok {
			return nil, fmt.Errorf("%s, %w", f, ErrMissingFeature)
		}
		x = append(x, val)
	}
	return x, nil
}

// Row is the feature set of a single calendar day
type Row struct {
	Date time.Time
	Set  Set
}

// Vector projects the row onto labels. The error names the date and feature.
func (r Row) Vector(labels *Labels) ([]float64, error) {
	x, err := r.Set.Vector(labels)
	if err != nil {
		return nil, fmt.Errorf("unable to build feature vector for %s, %w", timedataset.FormatDate(r.Date), err)
	}
	return x, nil
}

// Matrix stacks the rows into an observation matrix with one row per day and
// one column per label, optionally prefixed by an intercept column of ones.
func Matrix(rows []Row, labels *Labels, intercept bool) (*mat.Dense, error) {
	if len(rows) == 0 || labels == nil || labels.Len() == 0 {
		return nil, nil
	}
	m := len(rows)
	n := labels.Len()
	if intercept {
		n += 1
	}

	obs := make([]float64, 0, m*n)
	for _, row := range rows {
		if intercept {
			obs = append(obs, 1.0)
		}
		x, err := row.Vector(labels)
		if err != nil {
			return nil, err
		}
		obs = append(obs, x...)
	}
	return mat.NewDense(m, n, obs), nil
}
