package errors

import (
	"errors"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "EigenSym")
		panic("mat: matrix not symmetric")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "EigenSym" {
		t.Errorf("Expected operation 'EigenSym', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if panicErr.Error() != "panic in EigenSym: mat: matrix not symmetric" {
		t.Errorf("unexpected message %q", panicErr.Error())
	}
}

// TestRecover_WithoutPanic tests the Recover function when no panic occurs
func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}
	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

func TestRecover_WithExistingError(t *testing.T) {
	original := errors.New("original")
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = original
		panic("boom")
	}

	err := testFunc()
	if !errors.Is(err, original) {
		t.Error("existing error should be preserved in the chain")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("panic value missing from %q", err.Error())
	}
}

func TestRecover_ReraisesInvariantViolation(t *testing.T) {
	violation := NewInternalInvariantViolation("Materialize", []int{4, 2}, []int{4, 3})

	defer func() {
		r := recover()
		if r != violation {
			t.Fatalf("expected the invariant violation to propagate, got %v", r)
		}
	}()

	_ = SafeExecute("engine", func() error {
		panic(violation)
	})
	t.Fatal("SafeExecute must not swallow an invariant violation")
}

func TestSafeExecute(t *testing.T) {
	if err := SafeExecute("ok", func() error { return nil }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	fnErr := errors.New("function error")
	if err := SafeExecute("fails", func() error { return fnErr }); err != fnErr {
		t.Errorf("expected function error, got %v", err)
	}

	err := SafeExecute("panics", func() error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("expected PanicError, got %T", err)
	}
}

func BenchmarkSafeExecute_NoPanic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = SafeExecute("bench", func() error { return nil })
	}
}
