package timedataset

import (
	"fmt"
	"math"
)

// Value is an optional observation. The zero value is missing.
type Value struct {
	v  float64
	ok bool
}

// Some returns a present value. NaN and infinities are treated as missing.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, ok: true}
}

// None returns a missing value
func None() Value {
	return Value{}
}

// Get returns the underlying float and whether it is present
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// Valid reports whether the value is present
func (v Value) Valid() bool {
	return v.ok
}

// Float returns the value or NaN if missing. Used at boundaries where NaN is
// the expected missing marker e.g. plotting.
func (v Value) Float() float64 {
	if !v.ok {
		return math.NaN()
	}
	return v.v
}

func (v Value) String() string {
	if !v.ok {
		return "<none>"
	}
	return fmt.Sprintf("%g", v.v)
}

// Values converts a float slice into present values, mapping NaN to missing
func Values(y []float64) []Value {
	res := make([]Value, len(y))
	for i, val := range y {
		res[i] = Some(val)
	}
	return res
}
