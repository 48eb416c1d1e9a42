package cli

import (
	"github.com/GSawko/shogun/engine"
	"github.com/GSawko/shogun/manifold"
	"github.com/GSawko/shogun/pkg/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config keys shared by the config file, the environment and the flags.
const (
	KeyMethod      = "method"
	KeyKernel      = "kernel"
	KeyKernelWidth = "kernel_width"
	KeyDegree      = "kernel_degree"
	KeyScale       = "scale"
	KeySeed        = "seed"
	KeyPrecision   = "precision"
	KeyParams      = "params"
)

// Config is the resolved configuration of an embed run.
type Config struct {
	Method      string  `mapstructure:"method"`
	Kernel      string  `mapstructure:"kernel"`
	KernelWidth float64 `mapstructure:"kernel_width"`
	Degree      int     `mapstructure:"kernel_degree"`
	Scale       string  `mapstructure:"scale"`
	Seed        int64   `mapstructure:"seed"`
	Precision   int     `mapstructure:"precision"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyMethod, manifold.DefaultParameters().Method.String())
	v.SetDefault(KeyKernel, "gaussian")
	v.SetDefault(KeyKernelWidth, 1.0)
	v.SetDefault(KeyDegree, 2)
	v.SetDefault(KeyScale, "none")
	v.SetDefault(KeySeed, engine.DefaultSeed)
	v.SetDefault(KeyPrecision, -1)
}

// loadConfig decodes the top-level settings.
func loadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.NewConfigurationError("config", err.Error(), nil)
	}
	return cfg, nil
}

// loadParameters builds the hyperparameters of method: defaults first, then
// the "params" section of the config file. Keys in that section must be
// canonical parameter names.
func loadParameters(v *viper.Viper, method manifold.Method) (manifold.Parameters, error) {
	p := manifold.NewParameters(method)
	if !v.IsSet(KeyParams) {
		return p, nil
	}
	strict := func(c *mapstructure.DecoderConfig) {
		c.ErrorUnused = true
	}
	if err := v.UnmarshalKey(KeyParams, &p, viper.DecoderConfigOption(strict)); err != nil {
		return p, errors.NewConfigurationError(KeyParams, err.Error(), nil)
	}
	p.Method = method
	return p, nil
}
