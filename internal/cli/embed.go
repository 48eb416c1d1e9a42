package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GSawko/shogun/data"
	"github.com/GSawko/shogun/engine"
	"github.com/GSawko/shogun/manifold"
	"github.com/GSawko/shogun/metrics"
	"github.com/GSawko/shogun/pkg/errors"
	"github.com/GSawko/shogun/pkg/log"
	"github.com/GSawko/shogun/preprocessing"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"
)

// Flags of the embed command
const (
	FlagInput           = "input"
	FlagOutput          = "output"
	FlagMethod          = "method"
	FlagNeighbors       = "neighbors"
	FlagTargetDimension = "target-dimension"
	FlagSet             = "set"
	FlagKernel          = "kernel"
	FlagKernelWidth     = "kernel-width"
	FlagKernelDegree    = "kernel-degree"
	FlagScale           = "scale"
	FlagHeader          = "header"
	FlagSkipColumns     = "skip-columns"
	FlagPrecision       = "precision"
	FlagSeed            = "seed"
	FlagQuality         = "quality"
)

type embedOptions struct {
	input           string
	output          string
	neighbors       uint
	targetDimension uint
	set             map[string]string
	header          bool
	skipColumns     []int
	quality         int
}

func newEmbedCommand(v *viper.Viper) *cobra.Command {
	opts := &embedOptions{}

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed the rows of a numeric CSV file",
		Long: "Embed the rows of a numeric CSV file with one of the registered methods.\n\n" +
			"The built-in engine does not implement " + strings.Join(unavailableMethods(), " or ") +
			"; requests for them fail with a numerical error. Run \"manifold methods\" for the full table.",
		Example: "  manifold embed -m lle -k 8 -d 2 -i data.csv -o embedding.csv\n" +
			"  manifold embed -m diffusion-map --kernel-width 0.5 --set n_timesteps=4 -i data.csv\n" +
			"  cat data.csv | manifold embed -m tsne --set perplexity=20 --scale standard",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmbed(cmd, v, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, FlagInput, "i", "-", "input CSV file, - for stdin")
	flags.StringVarP(&opts.output, FlagOutput, "o", "-", "output CSV file, - for stdout")
	flags.StringP(FlagMethod, "m", manifold.DefaultParameters().Method.String(), "embedding method, see 'manifold methods'")
	flags.UintVarP(&opts.neighbors, FlagNeighbors, "k", manifold.DefaultParameters().NNeighbors, "number of neighbors")
	flags.UintVarP(&opts.targetDimension, FlagTargetDimension, "d", manifold.DefaultParameters().TargetDimension, "output dimension")
	flags.StringToStringVar(&opts.set, FlagSet, nil, "hyperparameter overrides, e.g. --set perplexity=20,max_iteration=500")
	flags.String(FlagKernel, "gaussian", "kernel built from the features for kernel methods: gaussian, linear, polynomial")
	flags.Float64(FlagKernelWidth, 1.0, "width of the gaussian kernel")
	flags.Int(FlagKernelDegree, 2, "degree of the polynomial kernel")
	flags.String(FlagScale, "none", "feature scaling before embedding: none, standard, minmax")
	flags.BoolVar(&opts.header, FlagHeader, false, "skip the first CSV record")
	flags.IntSliceVar(&opts.skipColumns, FlagSkipColumns, nil, "zero-based CSV columns to ignore")
	flags.Int(FlagPrecision, -1, "decimals written per value, -1 for shortest exact")
	flags.Int64(FlagSeed, engine.DefaultSeed, "seed of the stochastic methods")
	flags.IntVar(&opts.quality, FlagQuality, 0, "report stress, trustworthiness and continuity over this many neighbors on stderr")

	setDefaults(v)
	for key, flag := range map[string]string{
		KeyMethod:      FlagMethod,
		KeyKernel:      FlagKernel,
		KeyKernelWidth: FlagKernelWidth,
		KeyDegree:      FlagKernelDegree,
		KeyScale:       FlagScale,
		KeySeed:        FlagSeed,
		KeyPrecision:   FlagPrecision,
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	return cmd
}

func runEmbed(cmd *cobra.Command, v *viper.Viper, opts *embedOptions) error {
	logger := log.GetLoggerWithName("cli")

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	method, err := manifold.ParseMethod(cfg.Method)
	if err != nil {
		return err
	}
	params, err := loadParameters(v, method)
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, opts, &params); err != nil {
		return err
	}

	x, err := readInput(cmd, opts)
	if err != nil {
		return err
	}
	rows, cols := x.Dims()
	logger.Info("read input", log.SamplesKey, rows, log.FeaturesKey, cols)

	var features mat.Matrix = x
	scaler, err := preprocessing.ParseScaler(cfg.Scale)
	if err != nil {
		return err
	}
	if scaler != nil {
		if features, err = scaler.FitTransform(x); err != nil {
			return err
		}
	}

	ps, err := buildParameterSet(cfg, params, features)
	if err != nil {
		return err
	}

	out, err := manifold.Embed(engine.New(engine.WithSeed(cfg.Seed)), ps)
	if err != nil {
		return err
	}
	if opts.quality > 0 {
		if err := reportQuality(cmd, features, out, opts.quality); err != nil {
			return err
		}
	}
	return writeOutput(cmd, opts.output, out, cfg.Precision)
}

func reportQuality(cmd *cobra.Command, x, y mat.Matrix, k int) error {
	q, err := metrics.Evaluate(x, y, k)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(),
		"stress=%.6f residual_variance=%.6f trustworthiness=%.6f continuity=%.6f (k=%d)\n",
		q.Stress, q.ResidualVariance, q.Trustworthiness, q.Continuity, q.Neighbors)
	return nil
}

// applyOverrides applies --set pairs and the explicitly given shortcut
// flags on top of p.
func applyOverrides(cmd *cobra.Command, opts *embedOptions, p *manifold.Parameters) error {
	values := make(map[string]interface{}, len(opts.set)+2)
	for k, val := range opts.set {
		values[k] = val
	}
	if cmd.Flags().Changed(FlagNeighbors) {
		values[manifold.ParamNeighbors] = opts.neighbors
	}
	if cmd.Flags().Changed(FlagTargetDimension) {
		values[manifold.ParamTargetDimension] = opts.targetDimension
	}
	return manifold.NewParameterMapper().Apply(p, values)
}

// buildParameterSet fills the data slot the method requires. Kernel methods
// receive a kernel evaluated over the features.
func buildParameterSet(cfg Config, params manifold.Parameters, x mat.Matrix) (manifold.ParameterSet, error) {
	features, err := data.NewFeatures(x)
	if err != nil {
		return manifold.ParameterSet{}, err
	}
	ps := manifold.ParameterSet{Parameters: params, Features: features}

	req, err := manifold.Lookup(params.Method)
	if err != nil {
		return ps, err
	}
	if req.Category != manifold.CategoryKernel {
		return ps, nil
	}

	switch strings.ToLower(cfg.Kernel) {
	case "gaussian":
		ps.Kernel, err = data.GaussianKernel(features, cfg.KernelWidth)
	case "linear":
		ps.Kernel = data.LinearKernel(features)
	case "polynomial":
		ps.Kernel, err = data.PolynomialKernel(features, cfg.Degree, 1)
	default:
		err = errors.NewConfigurationError(KeyKernel, "must be one of gaussian, linear, polynomial", cfg.Kernel)
	}
	return ps, err
}

func readInput(cmd *cobra.Command, opts *embedOptions) (*mat.Dense, error) {
	var in io.Reader = cmd.InOrStdin()
	if opts.input != "-" {
		f, err := os.Open(opts.input)
		if err != nil {
			return nil, errors.Wrap(err, "open input")
		}
		defer f.Close()
		in = f
	}
	return data.ReadCSV(in, data.CSVOptions{Header: opts.header, SkipColumns: opts.skipColumns})
}

func writeOutput(cmd *cobra.Command, path string, m mat.Matrix, precision int) error {
	if path == "-" {
		return data.WriteCSV(cmd.OutOrStdout(), m, precision)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := data.WriteCSV(f, m, precision); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}
