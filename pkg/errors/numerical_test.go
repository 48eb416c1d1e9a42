package errors

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestCheckMatrix(t *testing.T) {
	clean := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := CheckMatrix("clean", clean); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dirty := mat.NewDense(2, 2, []float64{1, math.NaN(), 3, math.Inf(1)})
	err := CheckMatrix("dirty", dirty)
	if err == nil {
		t.Fatal("expected instability error")
	}
	var instErr *NumericalInstabilityError
	if !As(err, &instErr) {
		t.Fatalf("expected NumericalInstabilityError, got %T", err)
	}
	if len(instErr.Values) != 2 {
		t.Errorf("expected 2 offending values, got %d", len(instErr.Values))
	}
}

func TestCheckScalar(t *testing.T) {
	if err := CheckScalar("ok", 1.5, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckScalar("nan", math.NaN(), 3); err == nil {
		t.Error("expected error for NaN")
	}
	if err := CheckNumericalStability("vec", []float64{1, math.Inf(-1)}, 1); err == nil {
		t.Error("expected error for -Inf")
	}
}
