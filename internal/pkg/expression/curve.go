package expression

import (
	"fmt"
	"math"
)

type Curve int

const (
	Linear      Curve = iota // y = x
	Exponential              // y = x²
	Logarithmic              // y = √x
)

func (c Curve) String() string {
	switch c {
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	case Logarithmic:
		return "logarithmic"
	default:
		return fmt.Sprintf("Curve(%d)", int(c))
	}
}

func ParseCurve(s string) (Curve, error) {
	switch s {
	case "linear", "":
		return Linear, nil
	case "exponential":
		return Exponential, nil
	case "logarithmic":
		return Logarithmic, nil
	default:
		return Linear, fmt.Errorf("unsupported curve: \"%s\"", s)
	}
}

// ApplyCurve maps normalized value [0, 1] through the response curve.
// Input outside of the range is clamped first.
func ApplyCurve(c Curve, x float64) float64 {
	x = math.Max(0, math.Min(1, x))
	switch c {
	case Exponential:
		return x * x
	case Logarithmic:
		return math.Sqrt(x)
	default:
		return x
	}
}
