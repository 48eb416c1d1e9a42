// Package shogun computes nonlinear dimensionality reductions of numeric
// data through a single parameter-driven entry point.
//
// A call supplies one parameter set: the method, its hyperparameters and
// exactly one data source (a kernel, a distance or feature vectors). The
// request is validated against a static requirement table, dispatched to an
// embedding engine and returned as a dense matrix with one row per sample.
//
// # Installation
//
//	go get github.com/GSawko/shogun
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/GSawko/shogun/data"
//	    "github.com/GSawko/shogun/engine"
//	    "github.com/GSawko/shogun/manifold"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 3, []float64{
//	        0, 0, 0,
//	        1, 0, 0,
//	        0, 1, 0,
//	        0, 0, 1,
//	    })
//	    features, err := data.NewFeatures(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    ps := manifold.ParameterSet{
//	        Parameters: manifold.NewParameters(manifold.MultidimensionalScaling),
//	        Features:   features,
//	    }
//	    Y, err := manifold.Embed(engine.New(), ps)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(Y))
//	}
//
// # Packages
//
//   - manifold: Method table, parameters, validation and dispatch
//   - engine: Reference engine implementing the numerics
//   - data: Feature, kernel and distance providers, CSV input and output
//   - preprocessing: Feature scalers applied before embedding
//   - core/model: Transformer interface and fit state
//   - core/parallel: Parallel processing utilities
//   - pkg/errors: Typed errors (configuration, numerical, unsupported method)
//   - pkg/log: Structured logging backed by zerolog
//
// The manifold command (cmd/manifold) exposes the same call path for CSV
// files, configured by flags, MANIFOLD_* environment variables or a YAML
// config file.
//
// # Errors
//
// Configuration problems are reported before any computation as
// *errors.ConfigurationError naming the offending field. Engine failures
// come back as *errors.NumericalError and are never retried.
package shogun
