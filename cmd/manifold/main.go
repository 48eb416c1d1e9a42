// Command manifold embeds numeric CSV data with nonlinear dimensionality
// reduction methods.
package main

import "github.com/GSawko/shogun/internal/cli"

func main() {
	cli.Execute()
}
