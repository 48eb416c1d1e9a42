package manifold

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/GSawko/shogun/pkg/errors"
)

// Bag is the flattened parameter bag handed to an engine: hyperparameter
// key to value. Unsigned parameters are stored as int, real ones as
// float64 and flags as bool.
type Bag map[string]interface{}

// Has reports whether key is present.
func (b Bag) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// Int returns the integer stored under key, or fallback.
func (b Bag) Int(key string, fallback int) int {
	switch v := b[key].(type) {
	case int:
		return v
	case uint:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// Float returns the real value stored under key, or fallback.
func (b Bag) Float(key string, fallback float64) float64 {
	switch v := b[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

// Bool returns the flag stored under key, or fallback.
func (b Bag) Bool(key string, fallback bool) bool {
	if v, ok := b[key].(bool); ok {
		return v
	}
	return fallback
}

// Keys returns the keys in sorted order.
func (b Bag) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the bag as a plain map.
func (b Bag) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// String renders the bag as sorted key=value pairs.
func (b Bag) String() string {
	parts := make([]string, 0, len(b))
	for _, k := range b.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, b[k]))
	}
	return strings.Join(parts, ", ")
}

type paramKind int

const (
	kindUint paramKind = iota
	kindFloat
	kindBool
)

type paramField struct {
	kind paramKind
	get  func(p *Parameters) interface{}
	set  func(p *Parameters, v interface{})
}

// ParameterMapper translates between Parameters and flattened bags, and
// resolves the aliases accepted when parameters come from generic maps.
type ParameterMapper struct {
	fields  map[string]paramField
	aliases map[string]string
}

// NewParameterMapper creates a mapper with the standard keys and aliases.
func NewParameterMapper() *ParameterMapper {
	pm := &ParameterMapper{
		fields:  make(map[string]paramField),
		aliases: make(map[string]string),
	}
	pm.initializeMappings()
	return pm
}

func (pm *ParameterMapper) initializeMappings() {
	pm.addUint(ParamNeighbors, func(p *Parameters) *uint { return &p.NNeighbors }, "k", "neighbors", "k_neighbors")
	pm.addUint(ParamTimesteps, func(p *Parameters) *uint { return &p.NTimesteps }, "timesteps", "t")
	pm.addUint(ParamTargetDimension, func(p *Parameters) *uint { return &p.TargetDimension }, "n_components", "dim", "dimension")
	pm.addUint(ParamSPENumUpdates, func(p *Parameters) *uint { return &p.SPENumUpdates }, "num_updates")
	pm.addFloat(ParamEigenshift, func(p *Parameters) *float64 { return &p.Eigenshift }, "eigen_shift", "shift")
	pm.addFloat(ParamLandmarkRatio, func(p *Parameters) *float64 { return &p.LandmarkRatio }, "landmarks", "ratio")
	pm.addFloat(ParamGaussianKernelWidth, func(p *Parameters) *float64 { return &p.GaussianKernelWidth }, "kernel_width", "width", "sigma")
	pm.addFloat(ParamSPETolerance, func(p *Parameters) *float64 { return &p.SPETolerance }, "tolerance")
	pm.addBool(ParamSPEGlobalStrategy, func(p *Parameters) *bool { return &p.SPEGlobalStrategy }, "global_strategy", "global")
	pm.addUint(ParamMaxIteration, func(p *Parameters) *uint { return &p.MaxIteration }, "max_iter", "max_iterations")
	pm.addFloat(ParamFAEpsilon, func(p *Parameters) *float64 { return &p.FAEpsilon }, "epsilon")
	pm.addFloat(ParamSNETheta, func(p *Parameters) *float64 { return &p.SNETheta }, "theta", "angle")
	pm.addFloat(ParamSNEPerplexity, func(p *Parameters) *float64 { return &p.SNEPerplexity }, "perplexity")
	pm.addFloat(ParamSquishingRate, func(p *Parameters) *float64 { return &p.SquishingRate }, "squishing")
}

func (pm *ParameterMapper) addAliases(key string, aliases []string) {
	for _, alias := range aliases {
		pm.aliases[alias] = key
	}
}

func (pm *ParameterMapper) addUint(key string, field func(*Parameters) *uint, aliases ...string) {
	pm.fields[key] = paramField{
		kind: kindUint,
		get:  func(p *Parameters) interface{} { return int(*field(p)) },
		set:  func(p *Parameters, v interface{}) { *field(p) = v.(uint) },
	}
	pm.addAliases(key, aliases)
}

func (pm *ParameterMapper) addFloat(key string, field func(*Parameters) *float64, aliases ...string) {
	pm.fields[key] = paramField{
		kind: kindFloat,
		get:  func(p *Parameters) interface{} { return *field(p) },
		set:  func(p *Parameters, v interface{}) { *field(p) = v.(float64) },
	}
	pm.addAliases(key, aliases)
}

func (pm *ParameterMapper) addBool(key string, field func(*Parameters) *bool, aliases ...string) {
	pm.fields[key] = paramField{
		kind: kindBool,
		get:  func(p *Parameters) interface{} { return *field(p) },
		set:  func(p *Parameters, v interface{}) { *field(p) = v.(bool) },
	}
	pm.addAliases(key, aliases)
}

// Canonical resolves name, which may be an alias, to its bag key.
func (pm *ParameterMapper) Canonical(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	if _, ok := pm.fields[key]; ok {
		return key, true
	}
	if canonical, ok := pm.aliases[key]; ok {
		return canonical, true
	}
	return "", false
}

// BagFor builds the bag of p holding only the hyperparameters its method
// reads.
func (pm *ParameterMapper) BagFor(p Parameters) (Bag, error) {
	req, err := Lookup(p.Method)
	if err != nil {
		return nil, err
	}
	bag := make(Bag, len(req.Params))
	for _, key := range req.Params {
		bag[key] = pm.fields[key].get(&p)
	}
	return bag, nil
}

// ToMap returns every hyperparameter of p keyed by its canonical name.
func (pm *ParameterMapper) ToMap(p Parameters) map[string]interface{} {
	out := make(map[string]interface{}, len(pm.fields))
	for key, f := range pm.fields {
		out[key] = f.get(&p)
	}
	return out
}

// Apply sets the hyperparameters in values onto p. Keys may be canonical
// names or aliases; values may be numbers, bools or strings that parse as
// the field's type. Unknown keys and unconvertible values produce a
// ConfigurationError naming the key.
func (pm *ParameterMapper) Apply(p *Parameters, values map[string]interface{}) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		key, ok := pm.Canonical(name)
		if !ok {
			return errors.NewConfigurationError(name, "unknown parameter", values[name])
		}
		f := pm.fields[key]
		v, err := convert(f.kind, values[name])
		if err != nil {
			return errors.NewConfigurationError(key, err.Error(), values[name])
		}
		f.set(p, v)
	}
	return nil
}

func convert(kind paramKind, v interface{}) (interface{}, error) {
	switch kind {
	case kindUint:
		switch x := v.(type) {
		case uint:
			return x, nil
		case int:
			if x < 0 {
				return nil, fmt.Errorf("must be non-negative")
			}
			return uint(x), nil
		case int64:
			if x < 0 {
				return nil, fmt.Errorf("must be non-negative")
			}
			return uint(x), nil
		case float64:
			if x < 0 || x != math.Trunc(x) {
				return nil, fmt.Errorf("must be a non-negative integer")
			}
			return uint(x), nil
		case string:
			n, err := strconv.ParseUint(strings.TrimSpace(x), 10, 0)
			if err != nil {
				return nil, fmt.Errorf("must be a non-negative integer")
			}
			return uint(n), nil
		}
	case kindFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case uint:
			return float64(x), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil {
				return nil, fmt.Errorf("must be a number")
			}
			return f, nil
		}
	case kindBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(x))
			if err != nil {
				return nil, fmt.Errorf("must be true or false")
			}
			return b, nil
		}
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}
