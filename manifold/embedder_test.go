package manifold

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/GSawko/shogun/pkg/errors"
	"github.com/GSawko/shogun/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEmbedLocallyLinearShape(t *testing.T) {
	engine := &mockEngine{}
	p := NewParameters(LocallyLinearEmbedding, WithNeighbors(4), WithTargetDimension(2))

	out, err := NewEmbedder(engine).Embed(NewFeatureRequest(p, gridFeatures(20, 5)))
	require.NoError(t, err)

	r, c := out.Dims()
	assert.Equal(t, 20, r)
	assert.Equal(t, 2, c)

	calls := engine.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, LocallyLinearEmbedding, calls[0].method)
	assert.Equal(t, CategoryFeatures, calls[0].category)
	assert.Equal(t, 20, calls[0].samples)
	assert.Equal(t, Bag{ParamNeighbors: 4, ParamTargetDimension: 2, ParamEigenshift: 1e-9}, calls[0].bag)

	// rows keep input order
	assert.Equal(t, 4.0, out.At(0, 0))
	assert.Equal(t, 4.0+19*0.25+1, out.At(19, 1))
}

func TestEmbedRejectsBeforeEngineCall(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{
			name:  "neighbors not below samples",
			req:   NewFeatureRequest(NewParameters(Isomap, WithNeighbors(10)), gridFeatures(10, 3)),
			field: ParamNeighbors,
		},
		{
			name:  "perplexity above samples",
			req:   NewFeatureRequest(NewParameters(TDistributedStochasticNeighborEmbedding, WithSNE(50, 0.5)), gridFeatures(30, 3)),
			field: ParamSNEPerplexity,
		},
		{
			name:  "target dimension zero",
			req:   NewFeatureRequest(NewParameters(MultidimensionalScaling, WithTargetDimension(0)), gridFeatures(10, 3)),
			field: ParamTargetDimension,
		},
		{
			name:  "features method given a kernel",
			req:   NewKernelRequest(NewParameters(LaplacianEigenmaps, WithNeighbors(3)), constKernel{10}),
			field: "features",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{}
			out, err := NewEmbedder(engine).Embed(tt.req)
			assert.Nil(t, out)
			assert.Equal(t, tt.field, configField(t, err))
			assert.Empty(t, engine.Calls())
		})
	}
}

func TestEmbedParameterSet(t *testing.T) {
	engine := &mockEngine{}

	ps := DefaultParameterSet()
	ps.Method = KernelLocallyLinearEmbedding
	ps.NNeighbors = 3
	ps.Features = gridFeatures(8, 2)
	_, err := Embed(engine, ps)
	assert.Equal(t, "kernel", configField(t, err))
	assert.Empty(t, engine.Calls())

	ps.Kernel = constKernel{8}
	out, err := Embed(engine, ps)
	require.NoError(t, err)
	r, c := out.Dims()
	assert.Equal(t, 8, r)
	assert.Equal(t, 2, c)

	calls := engine.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, CategoryKernel, calls[0].category)
}

func TestEmbedIsDeterministic(t *testing.T) {
	engine := &mockEngine{}
	embedder := NewEmbedder(engine)
	req := NewFeatureRequest(NewParameters(LaplacianEigenmaps, WithNeighbors(5), WithTargetDimension(3)), gridFeatures(25, 4))

	first, err := embedder.Embed(req)
	require.NoError(t, err)
	second, err := embedder.Embed(req)
	require.NoError(t, err)
	assert.True(t, mat.Equal(first, second))
	assert.Equal(t, engine.Calls()[0].bag, engine.Calls()[1].bag)
}

func TestEmbedConcurrentCalls(t *testing.T) {
	engine := &mockEngine{}
	embedder := NewEmbedder(engine)
	features := gridFeatures(16, 3)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := NewParameters(MultidimensionalScaling, WithTargetDimension(uint(1+i%3)))
			_, errs[i] = embedder.Embed(NewFeatureRequest(p, features))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, engine.Calls(), 8)
}

func TestEmbedReleasesAccess(t *testing.T) {
	engine := &mockEngine{}
	_, err := NewEmbedder(engine).Embed(NewFeatureRequest(NewParameters(MultidimensionalScaling), gridFeatures(6, 2)))
	require.NoError(t, err)

	require.NotNil(t, engine.keepAccess)
	assert.Nil(t, engine.keepAccess.Features())
	assert.Nil(t, engine.keepAccess.Kernel())
	assert.Nil(t, engine.keepAccess.Distance())
}

func TestRetainedCapabilitiesReportNoData(t *testing.T) {
	engine := &mockEngine{}
	features := gridFeatures(6, 2)
	_, err := NewEmbedder(engine).Embed(NewFeatureRequest(NewParameters(MultidimensionalScaling), features))
	require.NoError(t, err)

	require.NotNil(t, engine.keptKernel)
	require.NotNil(t, engine.keptDistance)
	require.NotNil(t, engine.keptFeatures)

	assert.Equal(t, 0, engine.keptKernel.NumEntities())
	assert.True(t, math.IsNaN(engine.keptKernel.Kernel(0, 1)))
	assert.Equal(t, 0, engine.keptDistance.NumEntities())
	assert.True(t, math.IsNaN(engine.keptDistance.Distance(0, 1)))
	assert.Equal(t, 0, engine.keptFeatures.NumVectors())
	assert.Equal(t, 0, engine.keptFeatures.Dimension())
	assert.Empty(t, engine.keptFeatures.Vector(0, make([]float64, 2)))

	// The caller's provider is untouched.
	assert.Equal(t, 6, features.NumVectors())
}

func TestCapabilitiesLiveDuringCompute(t *testing.T) {
	var seen float64
	engine := &mockEngine{inspect: func(a *Access) {
		seen = a.Kernel().Kernel(0, 1) + a.Distance().Distance(0, 1)
	}}
	p := NewParameters(KernelLocallyLinearEmbedding, WithNeighbors(2))
	_, err := NewEmbedder(engine).Embed(NewKernelRequest(p, constKernel{5}))
	require.NoError(t, err)
	assert.InDelta(t, 0.5+1.0, seen, 1e-12)
}

func TestEmbedEngineErrors(t *testing.T) {
	features := gridFeatures(10, 3)
	req := NewFeatureRequest(NewParameters(MultidimensionalScaling), features)

	t.Run("untyped errors become numerical", func(t *testing.T) {
		cause := fmt.Errorf("eigen decomposition failed")
		_, err := NewEmbedder(&mockEngine{err: cause}).Embed(req)
		require.Error(t, err)
		assert.True(t, errors.IsNumerical(err))
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), MultidimensionalScaling.String())
	})

	t.Run("numerical errors pass through", func(t *testing.T) {
		cause := errors.NewNumericalError("custom", "no convergence", errors.ErrNoConvergence)
		_, err := NewEmbedder(&mockEngine{err: cause}).Embed(req)
		assert.Equal(t, cause, err)
	})

	t.Run("non-finite output", func(t *testing.T) {
		engine := &mockEngine{fill: func(i, j int) float64 {
			if i == 3 {
				return math.NaN()
			}
			return 1
		}}
		out, err := NewEmbedder(engine).Embed(req)
		assert.Nil(t, out)
		assert.True(t, errors.IsNumerical(err))
	})
}

func TestEmbedShapeMismatchPanics(t *testing.T) {
	engine := &mockEngine{rows: 9}
	req := NewFeatureRequest(NewParameters(MultidimensionalScaling), gridFeatures(10, 3))

	defer func() {
		r := recover()
		require.NotNil(t, r)
		violation, ok := r.(*errors.InternalInvariantViolation)
		require.True(t, ok, "unexpected panic value %v", r)
		assert.Equal(t, []int{10, 2, 20}, violation.Expected)
		assert.Equal(t, []int{9, 2, 18}, violation.Got)
	}()
	_, _ = NewEmbedder(engine).Embed(req)
	t.Fatal("expected panic")
}

func TestMaterialize(t *testing.T) {
	res := &Result{Rows: 2, Cols: 3, Data: []float64{1, 2, 3, 4, 5, 6}}
	out := Materialize(res, 2, 3)
	assert.Equal(t, 6.0, out.At(1, 2))

	res.Data[0] = 100
	assert.Equal(t, 1.0, out.At(0, 0), "materialized matrix must not alias engine memory")

	assert.Panics(t, func() { Materialize(nil, 2, 3) })
	assert.Panics(t, func() { Materialize(&Result{Rows: 2, Cols: 3, Data: make([]float64, 5)}, 2, 3) })

	round := NewResult(out)
	assert.Equal(t, 2, round.Rows)
	assert.Equal(t, 3, round.Cols)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, round.Data)
}

func TestEmbedLogsStates(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	embedder := NewEmbedder(&mockEngine{}, WithLogger(logger))

	_, err := embedder.Embed(NewFeatureRequest(NewParameters(Isomap, WithNeighbors(3)), gridFeatures(12, 3)))
	require.NoError(t, err)

	assert.True(t, logger.ContainsMessage("embedding computed"))
	assert.True(t, logger.ContainsField(log.StateKey, log.StateDone))
	assert.True(t, logger.ContainsField(log.StateKey, log.StateComputing))
	assert.True(t, logger.ContainsField(log.MethodKey, Isomap.String()))
	assert.True(t, logger.ContainsField(log.SamplesKey, 12.0))

	logger.Clear()
	_, err = embedder.Embed(NewFeatureRequest(NewParameters(Isomap, WithNeighbors(30)), gridFeatures(12, 3)))
	require.Error(t, err)
	assert.True(t, logger.ContainsMessage("request rejected"))
	assert.True(t, logger.ContainsField(log.StateKey, log.StateError))
}

func TestDerivedAccess(t *testing.T) {
	features := denseFeatures{mat.NewDense(3, 2, []float64{
		0, 0,
		3, 4,
		1, 0,
	})}
	a := NewAccess(CategoryFeatures, nil, nil, features)
	assert.Equal(t, 3, a.Len())
	assert.InDelta(t, 5.0, a.Distance().Distance(0, 1), 1e-12)
	assert.InDelta(t, 3.0, a.Kernel().Kernel(1, 2), 1e-12)

	// the kernel-induced distance of a linear kernel is Euclidean
	k := NewAccess(CategoryKernel, a.Kernel(), nil, nil)
	assert.Nil(t, k.Features())
	assert.InDelta(t, 5.0, k.Distance().Distance(0, 1), 1e-12)
	assert.Equal(t, 0.0, k.Distance().Distance(2, 2))

	d := NewAccess(CategoryDistance, nil, constDistance{4}, nil)
	assert.Equal(t, CategoryDistance, d.Category())
	assert.Nil(t, d.Kernel())
	assert.Equal(t, 1.0, d.Distance().Distance(0, 3))
}
