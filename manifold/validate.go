package manifold

import (
	"fmt"
	"math"

	"github.com/GSawko/shogun/pkg/errors"
)

// Validated is a request that passed validation. It carries the resolved
// sample count and requirement so the dispatcher does not recompute them.
type Validated struct {
	request     Request
	params      Parameters
	requirement Requirement
	samples     int
}

// Method returns the selected method.
func (v *Validated) Method() Method { return v.params.Method }

// Params returns the validated hyperparameters.
func (v *Validated) Params() Parameters { return v.params }

// Requirement returns the requirement of the method.
func (v *Validated) Requirement() Requirement { return v.requirement }

// Samples returns the number of samples in the data source.
func (v *Validated) Samples() int { return v.samples }

// Category returns the input category of the request.
func (v *Validated) Category() Category { return v.requirement.Category }

// Validate checks req against the requirement table and the numeric bounds
// of the hyperparameters. It has no side effects beyond reading the sample
// count from the provider.
func Validate(req Request) (*Validated, error) {
	if req == nil {
		return nil, errors.NewConfigurationError("request", "request is nil", nil)
	}
	p := req.Params()

	requirement, err := Lookup(p.Method)
	if err != nil {
		return nil, err
	}

	if req.Category() != requirement.Category {
		return nil, errors.NewMissingInputError(requirement.Category.String())
	}
	n, ok := req.source()
	if !ok {
		return nil, errors.NewMissingInputError(requirement.Category.String())
	}
	if n < 2 {
		return nil, errors.NewConfigurationError("samples", "at least two samples are required", n)
	}

	if err := checkBounds(p, requirement, n); err != nil {
		return nil, err
	}
	if fr, ok := req.(interface{ dimension() int }); ok && requirement.Linear {
		if d := fr.dimension(); p.TargetDimension > uint(d) {
			return nil, errors.NewConfigurationError(ParamTargetDimension,
				fmt.Sprintf("must not exceed the feature dimension (%d)", d), p.TargetDimension)
		}
	}

	return &Validated{
		request:     req,
		params:      p,
		requirement: requirement,
		samples:     n,
	}, nil
}

func checkBounds(p Parameters, r Requirement, n int) error {
	lessThanSamples := fmt.Sprintf("must be less than the number of samples (%d)", n)

	if p.TargetDimension < 1 {
		return errors.NewConfigurationError(ParamTargetDimension, "must be at least 1", p.TargetDimension)
	}
	if p.TargetDimension >= uint(n) {
		return errors.NewConfigurationError(ParamTargetDimension, lessThanSamples, p.TargetDimension)
	}

	usesNeighbors := r.NeighborGraph ||
		(p.Method == StochasticProximityEmbedding && !p.SPEGlobalStrategy)
	if usesNeighbors {
		if p.NNeighbors < 1 {
			return errors.NewConfigurationError(ParamNeighbors, "must be at least 1", p.NNeighbors)
		}
		if p.NNeighbors >= uint(n) {
			return errors.NewConfigurationError(ParamNeighbors, lessThanSamples, p.NNeighbors)
		}
	}

	if r.Landmark && !(p.LandmarkRatio > 0 && p.LandmarkRatio <= 1) {
		return errors.NewConfigurationError(ParamLandmarkRatio, "must be in (0, 1]", p.LandmarkRatio)
	}

	if p.Method == TDistributedStochasticNeighborEmbedding {
		if !(p.SNEPerplexity > 0) {
			return errors.NewConfigurationError(ParamSNEPerplexity, "must be positive", p.SNEPerplexity)
		}
		if p.SNEPerplexity >= float64(n) {
			return errors.NewConfigurationError(ParamSNEPerplexity, lessThanSamples, p.SNEPerplexity)
		}
		if !(p.SNETheta >= 0) {
			return errors.NewConfigurationError(ParamSNETheta, "must be non-negative", p.SNETheta)
		}
	}

	return checkNumeric(p, r)
}

// checkNumeric applies the bounds that do not depend on the sample count.
// Only parameters the method reads are checked.
func checkNumeric(p Parameters, r Requirement) error {
	if r.Uses(ParamEigenshift) && !(p.Eigenshift >= 0) {
		return errors.NewConfigurationError(ParamEigenshift, "must be non-negative", p.Eigenshift)
	}
	if r.Uses(ParamGaussianKernelWidth) {
		w := p.GaussianKernelWidth
		if !(w > 0) || math.IsInf(w, 0) {
			return errors.NewConfigurationError(ParamGaussianKernelWidth, "must be positive and finite", w)
		}
	}
	if r.Uses(ParamTimesteps) {
		if err := checkCount(ParamTimesteps, p.NTimesteps); err != nil {
			return err
		}
	}
	if r.Uses(ParamSquishingRate) && !(p.SquishingRate > 0 && p.SquishingRate < 1) {
		return errors.NewConfigurationError(ParamSquishingRate, "must be in (0, 1)", p.SquishingRate)
	}
	if r.Uses(ParamSPETolerance) && !(p.SPETolerance > 0) {
		return errors.NewConfigurationError(ParamSPETolerance, "must be positive", p.SPETolerance)
	}
	if r.Uses(ParamSPENumUpdates) {
		if err := checkCount(ParamSPENumUpdates, p.SPENumUpdates); err != nil {
			return err
		}
	}
	if r.Uses(ParamFAEpsilon) && !(p.FAEpsilon > 0) {
		return errors.NewConfigurationError(ParamFAEpsilon, "must be positive", p.FAEpsilon)
	}
	if r.Uses(ParamMaxIteration) {
		if err := checkCount(ParamMaxIteration, p.MaxIteration); err != nil {
			return err
		}
	}
	return nil
}

// maxCount bounds iteration and update counts so they stay representable
// as int on every platform.
const maxCount = math.MaxInt32

func checkCount(field string, v uint) error {
	if v < 1 {
		return errors.NewConfigurationError(field, "must be at least 1", v)
	}
	if v > maxCount {
		return errors.NewConfigurationError(field, fmt.Sprintf("must not exceed %d", maxCount), v)
	}
	return nil
}
