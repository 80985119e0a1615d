// Package store persists layout matrices and caches rendered artifacts.
//
// The layout matrix format is a headerless comma-separated numeric table:
// one row per facility in network node order, two columns (x, y). Loading is
// strict: a row-count or column-count mismatch against the target network
// fails rather than truncating or padding, since a silently misaligned layout
// would attach coordinates to the wrong facilities.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/mfleury/transplot/pkg/errors"
)

// ReadMatrix loads a layout matrix from path. rows is the expected row count
// (the network's facility count); pass a negative value to accept any.
func ReadMatrix(path string, rows int) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open layout %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "parse layout %s", path)
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeShapeMismatch, "layout %s is empty", path)
	}
	if rows >= 0 && len(records) != rows {
		return nil, errors.New(errors.ErrCodeShapeMismatch,
			"layout %s has %d rows, network has %d facilities", path, len(records), rows)
	}

	m := mat.NewDense(len(records), 2, nil)
	for i, rec := range records {
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidPath, err,
					"layout %s row %d: bad value %q", path, i+1, field)
			}
			m.Set(i, j, v)
		}
	}

	return m, nil
}

// WriteMatrix writes a layout matrix to path in the same headerless format.
func WriteMatrix(path string, m *mat.Dense) error {
	rows, cols := m.Dims()
	if cols != 2 {
		return errors.New(errors.ErrCodeShapeMismatch, "layout matrix has %d columns, want 2", cols)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for i := 0; i < rows; i++ {
		rec := []string{
			fmt.Sprintf("%g", m.At(i, 0)),
			fmt.Sprintf("%g", m.At(i, 1)),
		}
		if err := w.Write(rec); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
	}
	w.Flush()
	return w.Error()
}
