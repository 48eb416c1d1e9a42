package manifold

import (
	"github.com/GSawko/shogun/pkg/errors"
)

// Request is an embedding request: parameters plus exactly one borrowed data
// source. The concrete types are KernelRequest, DistanceRequest and
// FeatureRequest. Providers are read during the call only and never retained.
type Request interface {
	// Params returns the hyperparameters of the request.
	Params() Parameters
	// Category is the kind of data source carried by the request.
	Category() Category

	source() (int, bool)
	access() *Access
}

// KernelRequest carries a kernel matrix provider.
type KernelRequest struct {
	Parameters Parameters
	Kernel     KernelProvider
}

// NewKernelRequest returns a request embedding the entities covered by k.
func NewKernelRequest(p Parameters, k KernelProvider) KernelRequest {
	return KernelRequest{Parameters: p, Kernel: k}
}

// Params implements Request.
func (r KernelRequest) Params() Parameters { return r.Parameters }

// Category implements Request.
func (r KernelRequest) Category() Category { return CategoryKernel }

func (r KernelRequest) source() (int, bool) {
	if r.Kernel == nil {
		return 0, false
	}
	return r.Kernel.NumEntities(), true
}

func (r KernelRequest) access() *Access {
	return newKernelAccess(r.Kernel)
}

// DistanceRequest carries a distance matrix provider.
type DistanceRequest struct {
	Parameters Parameters
	Distance   DistanceProvider
}

// NewDistanceRequest returns a request embedding the entities covered by d.
func NewDistanceRequest(p Parameters, d DistanceProvider) DistanceRequest {
	return DistanceRequest{Parameters: p, Distance: d}
}

// Params implements Request.
func (r DistanceRequest) Params() Parameters { return r.Parameters }

// Category implements Request.
func (r DistanceRequest) Category() Category { return CategoryDistance }

func (r DistanceRequest) source() (int, bool) {
	if r.Distance == nil {
		return 0, false
	}
	return r.Distance.NumEntities(), true
}

func (r DistanceRequest) access() *Access {
	return newDistanceAccess(r.Distance)
}

// FeatureRequest carries a dense feature provider.
type FeatureRequest struct {
	Parameters Parameters
	Features   FeatureProvider
}

// NewFeatureRequest returns a request embedding the vectors of f.
func NewFeatureRequest(p Parameters, f FeatureProvider) FeatureRequest {
	return FeatureRequest{Parameters: p, Features: f}
}

// Params implements Request.
func (r FeatureRequest) Params() Parameters { return r.Parameters }

// Category implements Request.
func (r FeatureRequest) Category() Category { return CategoryFeatures }

func (r FeatureRequest) source() (int, bool) {
	if r.Features == nil {
		return 0, false
	}
	return r.Features.NumVectors(), true
}

// dimension returns the feature dimension.
func (r FeatureRequest) dimension() int {
	return r.Features.Dimension()
}

func (r FeatureRequest) access() *Access {
	return newFeatureAccess(r.Features)
}

// ParameterSet is the flat form of a request: parameters plus three optional
// data sources, of which only the one required by the method is read.
type ParameterSet struct {
	Parameters
	Kernel   KernelProvider
	Distance DistanceProvider
	Features FeatureProvider
}

// DefaultParameterSet returns default parameters with no data source.
func DefaultParameterSet() ParameterSet {
	return ParameterSet{Parameters: DefaultParameters()}
}

// Request selects the variant demanded by the method. The two other slots
// are ignored whether or not they are set.
func (ps ParameterSet) Request() (Request, error) {
	req, err := Lookup(ps.Method)
	if err != nil {
		return nil, err
	}
	switch req.Category {
	case CategoryKernel:
		if ps.Kernel == nil {
			return nil, errors.NewMissingInputError(CategoryKernel.String())
		}
		return NewKernelRequest(ps.Parameters, ps.Kernel), nil
	case CategoryDistance:
		if ps.Distance == nil {
			return nil, errors.NewMissingInputError(CategoryDistance.String())
		}
		return NewDistanceRequest(ps.Parameters, ps.Distance), nil
	default:
		if ps.Features == nil {
			return nil, errors.NewMissingInputError(CategoryFeatures.String())
		}
		return NewFeatureRequest(ps.Parameters, ps.Features), nil
	}
}
