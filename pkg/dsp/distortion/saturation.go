// Package distortion provides the static saturation curves applied by the
// signal shaper.
package distortion

import (
	"fmt"
	"math"
)

// Type selects a transfer function
type Type int

const (
	// None passes samples through unchanged
	None Type = iota
	// Tanh applies tanh(kx)/tanh(k), normalized so that ±1 maps to ±1
	Tanh
	// Sigmoid applies the logistic curve 2/(1+exp(-kx))-1
	Sigmoid
)

// Drive is the fixed saturation constant k
const Drive = 5.0

var typeNames = [...]string{"none", "tanh", "sigmoid"}

// String returns the lower-case curve name
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// TypeFromIndex maps a choice parameter index to a Type. Out-of-range
// indices fall back to None.
func TypeFromIndex(i int) Type {
	if i < 0 || i >= len(typeNames) {
		return None
	}
	return Type(i)
}

// Saturator applies a saturation curve. It holds no per-sample state, so a
// single value can serve every channel.
type Saturator struct {
	tanhNorm float64 // 1/tanh(Drive), computed once
}

// NewSaturator creates a saturator with the tanh normalization precomputed
func NewSaturator() Saturator {
	return Saturator{tanhNorm: 1 / math.Tanh(Drive)}
}

// Process applies curve t to one sample
func (s Saturator) Process(t Type, x float32) float32 {
	switch t {
	case Tanh:
		return float32(math.Tanh(Drive*float64(x)) * s.tanhNorm)
	case Sigmoid:
		return float32(2/(1+math.Exp(-Drive*float64(x))) - 1)
	default:
		return x
	}
}

// ProcessBuffer applies curve t to buf in place
func (s Saturator) ProcessBuffer(t Type, buf []float32) {
	switch t {
	case Tanh:
		for i, x := range buf {
			buf[i] = float32(math.Tanh(Drive*float64(x)) * s.tanhNorm)
		}
	case Sigmoid:
		for i, x := range buf {
			buf[i] = float32(2/(1+math.Exp(-Drive*float64(x))) - 1)
		}
	}
}
