package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/GSawko/shogun/engine"
	"github.com/GSawko/shogun/manifold"
	"github.com/GSawko/shogun/pkg/errors"
	"github.com/spf13/cobra"
)

// FlagCategory filters the methods listing.
const FlagCategory = "category"

func newMethodsCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "methods",
		Short: "List the embedding methods with their input and hyperparameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			methods := manifold.Methods()
			if category != "" {
				c, err := parseCategory(category)
				if err != nil {
					return err
				}
				methods = manifold.MethodsFor(c)
			}

			ref := engine.New()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tINPUT\tAVAILABLE\tPARAMETERS")
			for _, m := range methods {
				req, err := manifold.Lookup(m)
				if err != nil {
					return err
				}
				available := "yes"
				if !ref.Supports(m) {
					available = "no"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m, req.Category, available, strings.Join(req.Params, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&category, FlagCategory, "", "only list methods taking this input: kernel, distance, features")
	return cmd
}

func parseCategory(name string) (manifold.Category, error) {
	for _, c := range []manifold.Category{manifold.CategoryKernel, manifold.CategoryDistance, manifold.CategoryFeatures} {
		if strings.EqualFold(name, c.String()) {
			return c, nil
		}
	}
	return 0, errors.NewConfigurationError(FlagCategory, "must be one of kernel, distance, features", name)
}

// unavailableMethods lists the registered methods the reference engine
// does not implement.
func unavailableMethods() []string {
	ref := engine.New()
	var names []string
	for _, m := range manifold.Methods() {
		if !ref.Supports(m) {
			names = append(names, m.String())
		}
	}
	return names
}
