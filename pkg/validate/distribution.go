package validate

import (
	"errors"
	"fmt"
	"math"
)

// DefaultTolerance is how far the sum of a distribution may drift from 1.
const DefaultTolerance = 1e-3

var (
	ErrEmptyDistribution = errors.New("distribution is empty")
	ErrNoClasses         = errors.New("class list is empty")
	ErrLengthMismatch    = errors.New("distribution length does not match class list")
	ErrNaN               = errors.New("distribution contains NaN")
	ErrInfinite          = errors.New("distribution contains an infinite value")
	ErrNonPositiveMax    = errors.New("distribution maximum is not positive")
	ErrOutOfRange        = errors.New("distribution value outside [0,1]")
	ErrNotNormalized     = errors.New("distribution does not sum to 1")
)

// DistributionPolicy configures the numeric checks applied to model output.
type DistributionPolicy struct {
	// Tolerance for the sum check. If 0, uses DefaultTolerance.
	Tolerance float64
}

// Check returns nil when dist can be charted and averaged, or the first rule it breaks.
func (p DistributionPolicy) Check(dist []float64, classes []string) error {
	if len(dist) == 0 {
		return ErrEmptyDistribution
	}
	if len(classes) == 0 {
		return ErrNoClasses
	}
	if len(dist) != len(classes) {
		return fmt.Errorf("%w: %d values, %d classes", ErrLengthMismatch, len(dist), len(classes))
	}

	maxValue := math.Inf(-1)
	sum := 0.0
	for i, v := range dist {
		if math.IsNaN(v) {
			return fmt.Errorf("%w at index %d", ErrNaN, i)
		}
		if math.IsInf(v, 0) {
			return fmt.Errorf("%w at index %d", ErrInfinite, i)
		}
		if v > maxValue {
			maxValue = v
		}
		sum += v
	}
	if maxValue <= 0 {
		return ErrNonPositiveMax
	}

	for i, v := range dist {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %g at index %d", ErrOutOfRange, v, i)
		}
	}

	tolerance := p.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if math.Abs(sum-1) > tolerance {
		return fmt.Errorf("%w: sum is %g", ErrNotNormalized, sum)
	}
	return nil
}

// Valid reports whether Check passes.
func (p DistributionPolicy) Valid(dist []float64, classes []string) bool {
	return p.Check(dist, classes) == nil
}

// Distribution validates dist with the default policy.
func Distribution(dist []float64, classes []string) bool {
	return DistributionPolicy{}.Valid(dist, classes)
}
