package data

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/GSawko/shogun/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CSVOptions controls how ReadCSV interprets a file.
type CSVOptions struct {
	// Header skips the first record.
	Header bool
	// SkipColumns lists zero-based columns to drop, e.g. identifiers.
	SkipColumns []int
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// ReadCSV parses numeric records into a dense matrix, one row per record.
// Every kept field must parse as a finite float and every record must have
// the same number of kept fields.
func ReadCSV(r io.Reader, opts CSVOptions) (*mat.Dense, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	skip := make(map[int]struct{}, len(opts.SkipColumns))
	for _, c := range opts.SkipColumns {
		skip[c] = struct{}{}
	}

	var values []float64
	cols := -1
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read csv")
		}
		line++
		if line == 1 && opts.Header {
			continue
		}

		kept := 0
		for i, field := range record {
			if _, ok := skip[i]; ok {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Newf("csv line %d, column %d: %q is not a finite number", line, i, field)
			}
			values = append(values, v)
			kept++
		}
		if cols == -1 {
			cols = kept
		} else if kept != cols {
			return nil, errors.NewDimensionError("data.ReadCSV", cols, kept, 1)
		}
	}

	if cols <= 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "read csv")
	}
	return mat.NewDense(len(values)/cols, cols, values), nil
}

// WriteCSV writes m row by row with the given number of decimals; a
// negative precision uses the shortest exact representation.
func WriteCSV(w io.Writer, m mat.Matrix, precision int) error {
	writer := csv.NewWriter(w)
	r, c := m.Dims()
	record := make([]string, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			record[j] = strconv.FormatFloat(m.At(i, j), 'f', precision, 64)
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "write csv")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "write csv")
}
