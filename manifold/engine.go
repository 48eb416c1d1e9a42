package manifold

import (
	"github.com/GSawko/shogun/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Engine computes embeddings. Implementations own the numerics of every
// method; they receive only the hyperparameters the method reads and a data
// capability valid for the duration of the call.
//
// A failed computation should be reported as an *errors.NumericalError.
type Engine interface {
	Compute(method Method, bag Bag, data *Access) (*Result, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(method Method, bag Bag, data *Access) (*Result, error)

// Compute implements Engine.
func (f EngineFunc) Compute(method Method, bag Bag, data *Access) (*Result, error) {
	return f(method, bag, data)
}

// Result is the raw engine output: a row-major buffer of Rows x Cols values,
// one row per input sample in input order.
type Result struct {
	Rows int
	Cols int
	Data []float64
}

// NewResult flattens m into a Result.
func NewResult(m mat.Matrix) *Result {
	r, c := m.Dims()
	data := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data[i*c+j] = m.At(i, j)
		}
	}
	return &Result{Rows: r, Cols: c, Data: data}
}

// Materialize copies res into a dense matrix of rows x cols. A result of any
// other shape means the engine and the dispatcher disagree about the
// request, which is a defect: Materialize panics with an
// *errors.InternalInvariantViolation.
func Materialize(res *Result, rows, cols int) *mat.Dense {
	if res == nil {
		panic(errors.NewInternalInvariantViolation("Materialize", []int{rows, cols}, nil))
	}
	if res.Rows != rows || res.Cols != cols || len(res.Data) != rows*cols {
		panic(errors.NewInternalInvariantViolation("Materialize",
			[]int{rows, cols, rows * cols},
			[]int{res.Rows, res.Cols, len(res.Data)}))
	}
	data := make([]float64, len(res.Data))
	copy(data, res.Data)
	return mat.NewDense(rows, cols, data)
}
