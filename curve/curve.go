// Package curve generates weekly demand sequences that sum to a hiring target.
package curve

import (
	"fmt"
	"strings"
)

// Shape names a demand distribution.
type Shape string

const (
	// Flat spreads the target evenly over every week.
	Flat Shape = "flat"
	// Linear ramps demand up in proportion to the week number.
	Linear Shape = "linear"
)

// ParseShape resolves a shape name, case-insensitively.
func ParseShape(name string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(name))) {
	case Flat, "":
		return Flat, nil
	case Linear:
		return Linear, nil
	default:
		return "", fmt.Errorf("unknown curve shape %q", name)
	}
}

// Generate returns weeks non-negative values summing to total.
// It returns an empty slice when weeks <= 0. Unknown shapes are flat.
func Generate(shape Shape, weeks int, total float64) []float64 {
	if weeks <= 0 {
		return []float64{}
	}
	curve := make([]float64, weeks)

	if shape == Linear {
		// Weight by week number, then rescale so the sum is exact.
		var sum float64
		for i := range curve {
			curve[i] = float64(i + 1)
			sum += curve[i]
		}
		factor := total / sum
		for i := range curve {
			curve[i] *= factor
		}
		return curve
	}

	perWeek := total / float64(weeks)
	for i := range curve {
		curve[i] = perWeek
	}
	return curve
}
