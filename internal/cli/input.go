package cli

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// Samples is a table read from CSV: dims input columns and an optional
// value column. Every cell may be real ("0.5") or complex ("1+2i").
type Samples struct {
	Header []string
	X      *mat.CDense
	// Y is nil when the table has no value column.
	Y []complex128
}

// Len returns the number of rows.
func (s *Samples) Len() int {
	r, _ := s.X.Dims()
	return r
}

// ReadSamplesFile opens file ("-" for stdin) and reads it with ReadSamples.
func ReadSamplesFile(file string, dims int, stdin io.Reader) (*Samples, error) {
	if file == "-" {
		return ReadSamples(stdin, dims)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", file)
	}
	defer f.Close()
	s, err := ReadSamples(f, dims)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", file)
	}
	return s, nil
}

// ReadSamples parses CSV rows of dims inputs followed by at most one value.
// Lines starting with '#' are skipped; a first row that does not parse as
// numbers is taken as the header.
func ReadSamples(r io.Reader, dims int) (*Samples, error) {
	if dims <= 0 {
		return nil, errors.NewValidationError("dims", "must be positive", dims)
	}
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}

	s := &Samples{}
	if len(records) > 0 {
		if _, err := parseRow(records[0]); err != nil {
			s.Header = records[0]
			records = records[1:]
		}
	}
	if len(records) == 0 {
		return nil, errors.ErrEmptyData
	}

	width := len(records[0])
	if width != dims && width != dims+1 {
		return nil, errors.NewDimensionError("ReadSamples", dims+1, width, 1)
	}
	X := mat.NewCDense(len(records), dims, nil)
	if width == dims+1 {
		s.Y = make([]complex128, len(records))
	}
	for i, rec := range records {
		row, err := parseRow(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+1)
		}
		for j := 0; j < dims; j++ {
			X.Set(i, j, row[j])
		}
		if s.Y != nil {
			s.Y[i] = row[dims]
		}
	}
	s.X = X
	return s, nil
}

func parseRow(rec []string) ([]complex128, error) {
	out := make([]complex128, len(rec))
	for j, cell := range rec {
		v, err := strconv.ParseComplex(strings.TrimSpace(cell), 128)
		if err != nil {
			return nil, errors.NewValidationError("cell", "not a number", cell)
		}
		out[j] = v
	}
	return out, nil
}

// WritePredictions writes the inputs of X followed by the real and
// imaginary parts of yhat as CSV.
func WritePredictions(w io.Writer, header []string, X mat.CMatrix, yhat []complex128) error {
	rows, dims := X.Dims()
	cw := csv.NewWriter(w)
	if header == nil {
		header = make([]string, dims)
		for j := range header {
			header[j] = "x" + strconv.Itoa(j)
		}
	}
	if err := cw.Write(append(append([]string(nil), header[:dims]...), "re", "im")); err != nil {
		return err
	}
	rec := make([]string, dims+2)
	for i := 0; i < rows; i++ {
		for j := 0; j < dims; j++ {
			rec[j] = formatComplex(X.At(i, j))
		}
		rec[dims] = strconv.FormatFloat(real(yhat[i]), 'g', -1, 64)
		rec[dims+1] = strconv.FormatFloat(imag(yhat[i]), 'g', -1, 64)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatComplex(z complex128) string {
	if imag(z) == 0 {
		return strconv.FormatFloat(real(z), 'g', -1, 64)
	}
	return strconv.FormatComplex(z, 'g', -1, 128)
}
