package validate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/FrenchMajesty/emotion-classifier/pkg/validate"
)

func TestDistributionPolicy_Check(t *testing.T) {
	three := []string{"anger", "happy", "sad"}

	tests := []struct {
		name    string
		dist    []float64
		classes []string
		wantErr error
	}{
		{name: "valid", dist: []float64{0.1, 0.82, 0.08}, classes: three},
		{name: "one-hot", dist: []float64{0, 1, 0}, classes: three},
		{name: "single class", dist: []float64{1}, classes: []string{"neutral"}},
		{name: "within tolerance", dist: []float64{0.3333, 0.3333, 0.3333}, classes: three},
		{name: "empty", dist: nil, classes: three, wantErr: validate.ErrEmptyDistribution},
		{name: "no classes", dist: []float64{1}, classes: nil, wantErr: validate.ErrNoClasses},
		{name: "length mismatch", dist: []float64{0.5, 0.5}, classes: three, wantErr: validate.ErrLengthMismatch},
		{name: "NaN", dist: []float64{math.NaN(), 0.5, 0.5}, classes: three, wantErr: validate.ErrNaN},
		{name: "positive infinity", dist: []float64{math.Inf(1), 0, 0}, classes: three, wantErr: validate.ErrInfinite},
		{name: "negative infinity", dist: []float64{math.Inf(-1), 0.5, 0.5}, classes: three, wantErr: validate.ErrInfinite},
		{name: "all zero", dist: []float64{0, 0, 0}, classes: three, wantErr: validate.ErrNonPositiveMax},
		{name: "all negative", dist: []float64{-0.1, -0.2, -0.7}, classes: three, wantErr: validate.ErrNonPositiveMax},
		{name: "negative entry", dist: []float64{-0.5, 1.0, 0.5}, classes: three, wantErr: validate.ErrOutOfRange},
		{name: "above one", dist: []float64{1.5, 0, 0}, classes: three, wantErr: validate.ErrOutOfRange},
		{name: "not normalized", dist: []float64{0.5, 0.5, 0.5}, classes: three, wantErr: validate.ErrNotNormalized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.DistributionPolicy{}.Check(tt.dist, tt.classes)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Check() error = %v, want nil", err)
				}
				if !validate.Distribution(tt.dist, tt.classes) {
					t.Error("Distribution() = false, want true")
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Check() error = %v, want %v", err, tt.wantErr)
			}
			if validate.Distribution(tt.dist, tt.classes) {
				t.Error("Distribution() = true, want false")
			}
		})
	}
}

func TestDistributionPolicy_Tolerance(t *testing.T) {
	classes := []string{"a", "b"}
	dist := []float64{0.55, 0.5}

	if validate.Distribution(dist, classes) {
		t.Fatal("expected default tolerance to reject a sum of 1.05")
	}
	if !(validate.DistributionPolicy{Tolerance: 0.1}).Valid(dist, classes) {
		t.Fatal("expected a 0.1 tolerance to accept a sum of 1.05")
	}
}

// Accepted vectors always sum to roughly one and stay inside [0,1].
func TestDistribution_AcceptedVectorsAreNormalized(t *testing.T) {
	classes := []string{"a", "b", "c", "d"}
	candidates := [][]float64{
		{0.25, 0.25, 0.25, 0.25},
		{0.7, 0.1, 0.1, 0.1},
		{0.9, 0.1, 0, 0},
		{0.4, 0.4, 0.4, 0.4},
		{1, 1, 0, 0},
		{0.0001, 0, 0, 0},
	}

	for _, dist := range candidates {
		if !validate.Distribution(dist, classes) {
			continue
		}
		sum := 0.0
		for _, v := range dist {
			if v < 0 || v > 1 {
				t.Errorf("accepted %v with value %g outside [0,1]", dist, v)
			}
			sum += v
		}
		if math.Abs(sum-1) > validate.DefaultTolerance {
			t.Errorf("accepted %v with sum %g", dist, sum)
		}
	}
}
