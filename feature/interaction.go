package feature

import (
	"fmt"
	"strings"

	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

const interactionPrefix = "interaction_"

// Interaction is the product of two covariates on the row's date
type Interaction struct {
	Name string `json:"name"`
	A    string `json:"a"`
	B    string `json:"b"`
}

func NewInteraction(idx int, a, b string) *Interaction {
	return &Interaction{
		Name: fmt.Sprintf("%s%d", interactionPrefix, idx),
		A:    a,
		B:    b,
	}
}

// DefaultInteractions are the products the target model was trained with
func DefaultInteractions() []Interaction {
	return []Interaction{
		*NewInteraction(1, "Gas_Price", "CO2_Value"),
		*NewInteraction(2, "Temperature", "Electricity_Demand"),
		*NewInteraction(3, "Gas_Price", "Electricity_Demand"),
		*NewInteraction(4, "Temperature", "Gas_Price"),
	}
}

func (i Interaction) String() string {
	return i.Name
}

func (i Interaction) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return i.Name, true
	case "a":
		return i.A, true
	case "b":
		return i.B, true
	}
	return "", false
}

func (i Interaction) Type() FeatureType {
	return FeatureTypeInteraction
}

// Value multiplies the two operands. Either one missing makes the product
// missing.
func (i Interaction) Value(a, b timedataset.Value) timedataset.Value {
	av, aok := a.Get()
	bv, bok := b.Get()
	if !aok || !bok {
		return timedataset.None()
	}
	return timedataset.Some(av * bv)
}
