package predictor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/tkeereweer/electricity-price-predictor/feature"
	"github.com/tkeereweer/electricity-price-predictor/linearmodel"
)

type Kind string

const (
	KindPoint    Kind = "point"
	KindInterval Kind = "interval"
)

// Artifact is the serialized form of a fitted model
type Artifact struct {
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	Intercept float64   `json:"intercept"`
	Weights   []Weight  `json:"weights"`
	Interval  *Interval `json:"interval,omitempty"`
}

// Weight is one coefficient and the feature label it multiplies
type Weight struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// LagLabels returns the positional labels of an autoregressive model over n
// lags, most recent first
func LagLabels(name string, n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%s_lag%d", name, i+1)
	}
	return labels
}

// NewLagArtifact returns a point artifact over the n most recent values of a
// variable
func NewLagArtifact(name string, intercept float64, coef []float64) Artifact {
	labels := LagLabels(name, len(coef))
	weights := make([]Weight, len(coef))
	for i, c := range coef {
		weights[i] = Weight{Label: labels[i], Value: c}
	}
	return Artifact{
		Name:      name,
		Kind:      KindPoint,
		Intercept: intercept,
		Weights:   weights,
	}
}

// LoadArtifact reads an artifact from a JSON file
func LoadArtifact(path string) (Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Artifact{}, fmt.Errorf("%s, %w", path, ErrMissingArtifact)
		}
		return Artifact{}, fmt.Errorf("unable to open artifact, %w", err)
	}
	defer f.Close()
	return DecodeArtifact(f)
}

// DecodeArtifact reads an artifact from JSON
func DecodeArtifact(r io.Reader) (Artifact, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return Artifact{}, fmt.Errorf("unable to decode artifact, %w", errors.Join(err, ErrInvalidArtifact))
	}
	return a, a.Validate()
}

// Validate checks the artifact can be turned into a predictor
func (a Artifact) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("no name, %w", ErrInvalidArtifact)
	}
	if len(a.Weights) == 0 {
		return fmt.Errorf("%s has no weights, %w", a.Name, ErrInvalidArtifact)
	}
	switch a.Kind {
	case KindPoint:
	case KindInterval:
		if a.Interval == nil {
			return fmt.Errorf("%s is an interval model without interval, %w", a.Name, ErrInvalidArtifact)
		}
	default:
		return fmt.Errorf("%s has unknown kind %q, %w", a.Name, a.Kind, ErrInvalidArtifact)
	}
	return nil
}

// Labels parses the weight labels in coefficient order
func (a Artifact) Labels() (*feature.Labels, error) {
	names := make([]string, len(a.Weights))
	for i, w := range a.Weights {
		names[i] = w.Label
	}
	labels, err := feature.ParseLabels(names)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", a.Name, errors.Join(err, ErrInvalidArtifact))
	}
	return labels, nil
}

// Linear builds the predictor described by the artifact
func (a Artifact) Linear() (*Linear, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	labels, err := a.Labels()
	if err != nil {
		return nil, err
	}
	coef := make([]float64, len(a.Weights))
	for i, w := range a.Weights {
		coef[i] = w.Value
	}
	model, err := linearmodel.New(a.Intercept, coef)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", a.Name, errors.Join(err, ErrInvalidArtifact))
	}
	var interval *Interval
	if a.Kind == KindInterval {
		iv := *a.Interval
		interval = &iv
	}
	return NewLinear(a.Name, model, labels, interval)
}

func (a Artifact) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%sModel: %s (%s)\n", prefix, a.Name, a.Kind); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sIntercept: %.4f\n", prefix, indent, a.Intercept); err != nil {
		return err
	}
	if a.Interval != nil {
		if _, err := fmt.Fprintf(w, "%s%sInterval: residual stddev %.4f, z %.3f\n",
			prefix, indent, a.Interval.ResidualStdDev, a.Interval.ZScore); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s%sWeights:\n", prefix, indent); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%s%sLabel\tValue\t\n", prefix, indent, indent); err != nil {
		return err
	}
	for _, wt := range a.Weights {
		val := fmt.Sprintf("%.4f", wt.Value)
		if wt.Value == 0 {
			val = "..."
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s%s\t%s\t\n", prefix, indent, indent, wt.Label, val); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
