package data

import (
	"bytes"
	"strings"
	"testing"

	"github.com/GSawko/shogun/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestReadCSV(t *testing.T) {
	input := "id,x,y\n" +
		"a, 1.5, 2\n" +
		"b,3,-4e-1\n"

	m, err := ReadCSV(strings.NewReader(input), CSVOptions{Header: true, SkipColumns: []int{0}})
	require.NoError(t, err)

	want := mat.NewDense(2, 2, []float64{1.5, 2, 3, -0.4})
	assert.True(t, mat.Equal(want, m))
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{"empty", "", func(err error) bool { return errors.Is(err, errors.ErrEmptyData) }},
		{"ragged", "1,2\n3\n", func(err error) bool {
			var dim *errors.DimensionError
			return errors.As(err, &dim)
		}},
		{"not a number", "1,x\n", func(err error) bool { return strings.Contains(err.Error(), "line 1, column 1") }},
		{"nan", "1,NaN\n", func(err error) bool { return strings.Contains(err.Error(), "finite") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), CSVOptions{})
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, mat.NewDense(2, 2, []float64{1, 0.125, -2, 3.5}), 3))
	assert.Equal(t, "1.000,0.125\n-2.000,3.500\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, mat.NewDense(1, 2, []float64{0.1, 2}), -1))
	assert.Equal(t, "0.1,2\n", buf.String())
}
