package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewConfigurationError(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		reason  string
		value   interface{}
		wantMsg string
	}{
		{
			name:    "with value",
			field:   "target_dimension",
			reason:  "must be less than the number of samples (20)",
			value:   20,
			wantMsg: "manifold: configuration error for 'target_dimension': must be less than the number of samples (20) (got: 20)",
		},
		{
			name:    "without value",
			field:   "kernel",
			reason:  "missing kernel",
			value:   nil,
			wantMsg: "manifold: configuration error for 'kernel': missing kernel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfigurationError(tt.field, tt.reason, tt.value)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var cfgErr *ConfigurationError
			if !As(err, &cfgErr) {
				t.Fatal("Error should be castable to *ConfigurationError")
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
			if !IsConfiguration(err) {
				t.Error("IsConfiguration should report true")
			}
		})
	}
}

func TestNewMissingInputError(t *testing.T) {
	err := NewMissingInputError("features")

	var cfgErr *ConfigurationError
	if !As(err, &cfgErr) {
		t.Fatal("Error should be castable to *ConfigurationError")
	}
	if cfgErr.Field != "features" {
		t.Errorf("Field = %q, want features", cfgErr.Field)
	}
	if !strings.Contains(err.Error(), "missing features") {
		t.Errorf("message %q should mention the missing input", err.Error())
	}
}

func TestNewUnsupportedMethodError(t *testing.T) {
	err := NewUnsupportedMethodError(42)
	if err.Error() != "manifold: unsupported method tag 42" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !IsUnsupportedMethod(err) {
		t.Error("IsUnsupportedMethod should report true")
	}
	if IsConfiguration(err) {
		t.Error("unsupported method is not a configuration error")
	}

	named := NewUnknownMethodNameError("pca")
	if named.Error() != `manifold: unsupported method "pca"` {
		t.Errorf("unexpected message: %s", named.Error())
	}
}

func TestNewNumericalError(t *testing.T) {
	err := NewNumericalError("isomap", "geodesic distances", ErrDisconnectedGraph)

	want := "manifold: isomap: numerical failure: geodesic distances: disconnected neighborhood graph"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if !Is(err, ErrDisconnectedGraph) {
		t.Error("NumericalError should unwrap to its cause")
	}
	if !IsNumerical(err) {
		t.Error("IsNumerical should report true")
	}
}

func TestInternalInvariantViolation(t *testing.T) {
	v := NewInternalInvariantViolation("Materialize", []int{20, 2}, []int{20, 3})
	want := "manifold: internal invariant violated in Materialize: expected shape [20 2], got [20 3]"
	if v.Error() != want {
		t.Errorf("Error() = %v, want %v", v.Error(), want)
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Vector", 5, 3, 1)

	want := "manifold: Vector: dimension mismatch on axis 1 (features). Expected 5, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewValueError(t *testing.T) {
	err := NewValueError("GaussianKernel", "width must be positive")
	if err.Error() != "manifold: GaussianKernel: width must be positive" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestNewConvergenceWarning(t *testing.T) {
	w := NewConvergenceWarning("stochastic-proximity-embedding", 100, "")
	if !strings.Contains(w.Error(), "failed to converge after 100 iterations") {
		t.Errorf("unexpected message: %s", w.Error())
	}

	var got error
	SetZerologWarnFunc(func(err error) { got = err })
	defer SetZerologWarnFunc(nil)
	Warn(w)
	if got != w {
		t.Error("warning handler should receive the warning")
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrSingularMatrix, "local gram matrix")
	if !Is(wrapped, ErrSingularMatrix) {
		t.Error("wrapped error should match its sentinel")
	}
	if !strings.Contains(wrapped.Error(), "local gram matrix") {
		t.Errorf("wrap message missing: %s", wrapped.Error())
	}

	wrappedf := Wrapf(ErrNoConvergence, "after %d sweeps", 3)
	if !Is(wrappedf, ErrNoConvergence) {
		t.Error("Wrapf should preserve the cause")
	}
}
