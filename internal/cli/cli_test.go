package cli

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GSawko/shogun/manifold"
	"github.com/GSawko/shogun/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helixCSV writes n samples of a helix as CSV rows.
func helixCSV(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		s := 0.3 * float64(i)
		fmt.Fprintf(&b, "%g,%g,%g\n", math.Cos(s), math.Sin(s), 0.2*s)
	}
	return b.String()
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func records(t *testing.T, out string) [][]string {
	t.Helper()
	var rows [][]string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		rows = append(rows, strings.Split(line, ","))
	}
	return rows
}

func configField(t *testing.T, err error) string {
	t.Helper()
	var cfgErr *errors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "expected a configuration error, got %v", err)
	return cfgErr.Field
}

func TestMethodsCommand(t *testing.T) {
	out, err := run(t, "", "methods")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 1+len(manifold.Methods()))
	assert.True(t, strings.HasPrefix(lines[0], "METHOD"))
	assert.Contains(t, out, "isomap")
	assert.Contains(t, out, "sne_perplexity")

	out, err = run(t, "", "methods", "--category", "kernel")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, out, "diffusion-map")
	assert.Contains(t, out, "kernel-locally-linear-embedding")

	_, err = run(t, "", "methods", "--category", "graph")
	assert.Equal(t, FlagCategory, configField(t, err))
}

func TestUnavailableMethodsAreListed(t *testing.T) {
	out, err := run(t, "", "methods")
	require.NoError(t, err)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		switch fields[0] {
		case "hessian-locally-linear-embedding", "manifold-sculpting":
			assert.Equal(t, "no", fields[2], fields[0])
		case "isomap", "t-distributed-stochastic-neighbor-embedding":
			assert.Equal(t, "yes", fields[2], fields[0])
		}
	}

	assert.Equal(t, []string{"hessian-locally-linear-embedding", "manifold-sculpting"}, unavailableMethods())

	help, err := run(t, "", "embed", "--help")
	require.NoError(t, err)
	assert.Contains(t, help, "does not implement hessian-locally-linear-embedding or manifold-sculpting")
}

func TestEmbedFromStdin(t *testing.T) {
	out, err := run(t, helixCSV(20), "embed", "-m", "lle", "-k", "4", "-d", "2")
	require.NoError(t, err)

	rows := records(t, out)
	require.Len(t, rows, 20)
	for _, r := range rows {
		assert.Len(t, r, 2)
	}
}

func TestEmbedFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	outPath := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(in, []byte("x,y,z\n"+helixCSV(15)), 0o600))

	_, err := run(t, "", "embed", "-m", "mds", "--header", "-i", in, "-o", outPath, "--precision", "4")
	require.NoError(t, err)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	rows := records(t, string(raw))
	require.Len(t, rows, 15)
	for _, r := range rows {
		require.Len(t, r, 2)
		for _, v := range r {
			parts := strings.SplitN(v, ".", 2)
			require.Len(t, parts, 2)
			assert.Len(t, parts[1], 4)
		}
	}
}

func TestEmbedConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "manifold.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"method: isomap\n"+
			"params:\n"+
			"  n_neighbors: 4\n"+
			"  target_dimension: 1\n"), 0o600))

	out, err := run(t, helixCSV(20), "embed", "--config", cfg)
	require.NoError(t, err)
	rows := records(t, out)
	require.Len(t, rows, 20)
	assert.Len(t, rows[0], 1)

	// flags win over the file
	out, err = run(t, helixCSV(20), "embed", "--config", cfg, "-d", "2")
	require.NoError(t, err)
	assert.Len(t, records(t, out)[0], 2)
}

func TestEmbedKernelMethod(t *testing.T) {
	out, err := run(t, helixCSV(20), "embed", "-m", "klle", "-k", "5", "--kernel", "linear")
	require.NoError(t, err)
	assert.Len(t, records(t, out), 20)
}

func TestEmbedErrors(t *testing.T) {
	dir := t.TempDir()
	unknownParam := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknownParam, []byte("method: mds\nparams:\n  neighbours: 3\n"), 0o600))

	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{
			name:  "perplexity above samples",
			args:  []string{"embed", "-m", "tsne", "--set", "perplexity=50"},
			field: manifold.ParamSNEPerplexity,
		},
		{
			name:  "unknown override",
			args:  []string{"embed", "-m", "lle", "--set", "neighbours=3"},
			field: "neighbours",
		},
		{
			name:  "bad override value",
			args:  []string{"embed", "-m", "lle", "--set", "k=-3"},
			field: manifold.ParamNeighbors,
		},
		{
			name:  "neighbors not below samples",
			args:  []string{"embed", "-m", "isomap", "-k", "30"},
			field: manifold.ParamNeighbors,
		},
		{
			name:  "unknown scaler",
			args:  []string{"embed", "-m", "mds", "--scale", "robust"},
			field: KeyScale,
		},
		{
			name:  "unknown kernel",
			args:  []string{"embed", "-m", "dm", "--kernel", "sigmoid"},
			field: KeyKernel,
		},
		{
			name:  "unknown config parameter",
			args:  []string{"embed", "--config", unknownParam},
			field: KeyParams,
		},
		{
			name:  "bad log level",
			args:  []string{"embed", "-m", "mds", "--log-level", "loud"},
			field: FlagLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, helixCSV(30), tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.field, configField(t, err))
		})
	}
}

func TestEmbedUnknownMethod(t *testing.T) {
	_, err := run(t, helixCSV(10), "embed", "-m", "umap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "umap")
}

func TestEmbedScaled(t *testing.T) {
	out, err := run(t, helixCSV(12), "embed", "-m", "mds", "--scale", "standard", "-d", "1")
	require.NoError(t, err)
	assert.Len(t, records(t, out), 12)
}

func TestEmbedQualityReport(t *testing.T) {
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(helixCSV(20)))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"embed", "-m", "isomap", "-k", "4", "--quality", "3"})

	require.NoError(t, cmd.Execute())
	assert.Len(t, records(t, out.String()), 20)
	assert.Contains(t, errOut.String(), "trustworthiness=")
	assert.Contains(t, errOut.String(), "(k=3)")
}
