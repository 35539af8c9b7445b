package feature

import (
	"strings"
)

// Covariate is a raw column of the covariate table read on the row's own date
type Covariate struct {
	Name string `json:"name"`
}

func NewCovariate(name string) *Covariate {
	return &Covariate{name}
}

func (c Covariate) String() string {
	return c.Name
}

func (c Covariate) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return c.Name, true
	}
	return "", false
}

func (c Covariate) Type() FeatureType {
	return FeatureTypeCovariate
}

func (c Covariate) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = c.Name
	return res
}
