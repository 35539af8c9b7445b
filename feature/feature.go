package feature

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMissingFeature = errors.New("missing feature value")
	ErrUnknownFeature = errors.New("unknown feature")
	ErrInvalidLabel   = errors.New("invalid feature label")
)

type FeatureType int

const (
	FeatureTypeCovariate FeatureType = iota
	FeatureTypeLag
	FeatureTypeMovingAverage
	FeatureTypeInteraction
	FeatureTypeHoliday
)

func (t FeatureType) String() string {
	switch t {
	case FeatureTypeCovariate:
		return "covariate"
	case FeatureTypeLag:
		return "lag"
	case FeatureTypeMovingAverage:
		return "moving_average"
	case FeatureTypeInteraction:
		return "interaction"
	case FeatureTypeHoliday:
		return "holiday"
	}
	return "unknown"
}

type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
}

// Parse converts a label as stored in a model artifact back into a feature.
// Labels without a recognised prefix are covariates.
func Parse(label string) (Feature, error) {
	if label == "" {
		return nil, ErrInvalidLabel
	}
	switch {
	case strings.HasPrefix(label, lagPrefix):
		k, err := strconv.Atoi(strings.TrimPrefix(label, lagPrefix))
		if err != nil || k < 1 {
			return nil, fmt.Errorf("%s, %w", label, ErrInvalidLabel)
		}
		return NewLag(k), nil
	case strings.HasPrefix(label, maPrefix):
		w, err := strconv.Atoi(strings.TrimPrefix(label, maPrefix))
		if err != nil || w < 1 {
			return nil, fmt.Errorf("%s, %w", label, ErrInvalidLabel)
		}
		return NewMovingAverage(w), nil
	case strings.HasPrefix(label, interactionPrefix):
		return &Interaction{Name: label}, nil
	case strings.HasPrefix(label, holidayPrefix):
		return NewHoliday(strings.TrimPrefix(label, holidayPrefix)), nil
	}
	return NewCovariate(label), nil
}
