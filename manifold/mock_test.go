package manifold

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

// denseFeatures is a minimal FeatureProvider over a dense matrix.
type denseFeatures struct {
	m *mat.Dense
}

func (f denseFeatures) NumVectors() int {
	r, _ := f.m.Dims()
	return r
}

func (f denseFeatures) Dimension() int {
	_, c := f.m.Dims()
	return c
}

func (f denseFeatures) Vector(i int, dst []float64) []float64 {
	_, c := f.m.Dims()
	if len(dst) < c {
		dst = make([]float64, c)
	}
	mat.Row(dst[:c], i, f.m)
	return dst[:c]
}

// gridFeatures returns n vectors of dimension d with deterministic values.
func gridFeatures(n, d int) denseFeatures {
	data := make([]float64, n*d)
	for i := range data {
		data[i] = float64((i*7)%11) + float64(i)/float64(len(data))
	}
	return denseFeatures{mat.NewDense(n, d, data)}
}

type constKernel struct{ n int }

func (k constKernel) NumEntities() int { return k.n }
func (k constKernel) Kernel(i, j int) float64 {
	if i == j {
		return 1
	}
	return 0.5
}

type constDistance struct{ n int }

func (d constDistance) NumEntities() int { return d.n }
func (d constDistance) Distance(i, j int) float64 {
	if i == j {
		return 0
	}
	return 1
}

type engineCall struct {
	method   Method
	bag      Bag
	category Category
	samples  int
}

// mockEngine records calls and returns a deterministic embedding whose
// entries depend only on the sample index, column and bag.
type mockEngine struct {
	mu    sync.Mutex
	calls []engineCall
	err   error
	// shape overrides the returned shape when non-zero.
	rows, cols int
	fill       func(i, j int) float64
	keepAccess *Access
	// capabilities captured during the last call
	keptKernel   KernelProvider
	keptDistance DistanceProvider
	keptFeatures FeatureProvider
	inspect      func(*Access)
}

func (m *mockEngine) Compute(method Method, bag Bag, data *Access) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, engineCall{method: method, bag: bag, category: data.Category(), samples: data.Len()})
	m.keepAccess = data
	m.keptKernel, m.keptDistance, m.keptFeatures = data.Kernel(), data.Distance(), data.Features()
	m.mu.Unlock()

	if m.inspect != nil {
		m.inspect(data)
	}
	if m.err != nil {
		return nil, m.err
	}
	rows, cols := data.Len(), bag.Int(ParamTargetDimension, 0)
	if m.rows != 0 {
		rows = m.rows
	}
	if m.cols != 0 {
		cols = m.cols
	}
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if m.fill != nil {
				out[i*cols+j] = m.fill(i, j)
				continue
			}
			out[i*cols+j] = float64(i)*0.25 + float64(j) + float64(bag.Int(ParamNeighbors, 0))
		}
	}
	return &Result{Rows: rows, Cols: cols, Data: out}, nil
}

func (m *mockEngine) Calls() []engineCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]engineCall, len(m.calls))
	copy(out, m.calls)
	return out
}
