package predictor

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/tkeereweer/electricity-price-predictor/feature"
)

// ArtifactSuffix is appended to a variable name to find its artifact file
const ArtifactSuffix = "_model.json"

// Target is the predictor of the forecast variable with the feature order its
// inputs must follow
type Target struct {
	Name      string
	Predictor IntervalPredictor
	Labels    *feature.Labels
}

// Registry maps every variable to its predictor. It is built once and only
// read afterwards so it can be shared between concurrent requests.
type Registry struct {
	target    Target
	exogenous map[string]PointPredictor
	names     []string
}

func NewRegistry(target Target, exogenous map[string]PointPredictor) (*Registry, error) {
	if target.Predictor == nil || target.Labels == nil {
		return nil, fmt.Errorf("target %s, %w", target.Name, ErrMissingPredictor)
	}
	exog := make(map[string]PointPredictor, len(exogenous))
	names := make([]string, 0, len(exogenous))
	for name, p := range exogenous {
		if p == nil {
			return nil, fmt.Errorf("%s, %w", name, ErrMissingPredictor)
		}
		exog[name] = p
		names = append(names, name)
	}
	sort.Strings(names)
	return &Registry{
		target:    target,
		exogenous: exog,
		names:     names,
	}, nil
}

// Target returns the target predictor
func (r *Registry) Target() Target {
	return r.target
}

// Exogenous returns the predictor of a covariate
func (r *Registry) Exogenous(name string) (PointPredictor, error) {
	p, exists := r.exogenous[name]
	if !exists {
		return nil, fmt.Errorf("%s, %w", name, ErrMissingPredictor)
	}
	return p, nil
}

// ExogenousNames returns the covariates with a predictor in sorted order
func (r *Registry) ExogenousNames() []string {
	res := make([]string, len(r.names))
	copy(res, r.names)
	return res
}

// ArtifactPath returns where the artifact of a variable lives in dir
func ArtifactPath(dir, name string) string {
	return filepath.Join(dir, name+ArtifactSuffix)
}

// LoadRegistry reads the target artifact and one artifact per exogenous
// variable from dir. Any missing file fails the whole load.
func LoadRegistry(dir, target string, exogenous []string) (*Registry, error) {
	targetArtifact, err := LoadArtifact(ArtifactPath(dir, target))
	if err != nil {
		return nil, fmt.Errorf("unable to load target predictor, %w", err)
	}
	if targetArtifact.Kind != KindInterval {
		return nil, fmt.Errorf("target %s, %w", target, ErrNotInterval)
	}
	targetPred, err := targetArtifact.Linear()
	if err != nil {
		return nil, fmt.Errorf("unable to load target predictor, %w", err)
	}

	exog := make(map[string]PointPredictor, len(exogenous))
	for _, name := range exogenous {
		a, err := LoadArtifact(ArtifactPath(dir, name))
		if err != nil {
			return nil, fmt.Errorf("unable to load %s predictor, %w", name, err)
		}
		p, err := a.Linear()
		if err != nil {
			return nil, fmt.Errorf("unable to load %s predictor, %w", name, err)
		}
		exog[name] = p
	}

	return NewRegistry(
		Target{
			Name:      target,
			Predictor: targetPred,
			Labels:    targetPred.Labels(),
		},
		exog,
	)
}

// Artifacts reads every artifact a registry would load, for inspection
func Artifacts(dir, target string, exogenous []string) ([]Artifact, error) {
	names := append([]string{target}, exogenous...)
	res := make([]Artifact, 0, len(names))
	for _, name := range names {
		a, err := LoadArtifact(ArtifactPath(dir, name))
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, nil
}
