// Package cli implements the manifold command line tool.
package cli

import (
	"os"
	"strings"

	"github.com/GSawko/shogun/pkg/errors"
	"github.com/GSawko/shogun/pkg/log"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Global flags
const (
	FlagConfig   = "config"
	FlagLogLevel = "log-level"
)

// EnvPrefix prefixes environment overrides, e.g. MANIFOLD_METHOD.
const EnvPrefix = "MANIFOLD"

// NewRootCommand builds the command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "manifold",
		Short: "Nonlinear dimensionality reduction of numeric CSV data",
		Long: "manifold embeds high-dimensional samples into a low-dimensional space with one of\n" +
			"seventeen nonlinear methods (LLE, Isomap, diffusion maps, t-SNE, ...).\n" +
			"Settings are read from $HOME/.manifold.yaml, MANIFOLD_* environment variables and flags,\n" +
			"in increasing order of precedence.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, cfgFile); err != nil {
				return err
			}
			return configureLogging(v)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, FlagConfig, "", "config file (default is $HOME/.manifold.yaml)")
	root.PersistentFlags().String(FlagLogLevel, "warn", "log level: debug, info, warn, error")
	_ = v.BindPFlag(FlagLogLevel, root.PersistentFlags().Lookup(FlagLogLevel))

	root.AddCommand(newEmbedCommand(v), newMethodsCommand())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads the config file and enables environment overrides. A
// missing default config file is not an error; a missing explicit one is.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return errors.Wrap(err, "locate home directory")
		}
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName(".manifold")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	log.GetLoggerWithName("cli").Debug("using config file", "file", v.ConfigFileUsed())
	return nil
}

func configureLogging(v *viper.Viper) error {
	name := v.GetString(FlagLogLevel)
	level, ok := log.ParseLevel(name)
	if !ok {
		return errors.NewConfigurationError(FlagLogLevel, "must be one of debug, info, warn, error", name)
	}
	log.SetLevel(level)
	return nil
}
