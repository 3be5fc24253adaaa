// Package csv writes and reads event tables as comma-separated values.
package csv

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/fwojciec/cmtharvest"
)

// Ensure Serializer implements cmtharvest.TableSerializer at compile time.
var _ cmtharvest.TableSerializer = (*Serializer)(nil)

// Serializer writes a dataset as a CSV table. The header is the first-seen
// union of field names; a field missing from a record is an empty cell.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Serialize writes ds to w. Output is a pure function of ds. A dataset
// without fields produces no output at all.
func (s *Serializer) Serialize(ds *cmtharvest.Dataset, w io.Writer) (*cmtharvest.TableStats, error) {
	columns := ds.Columns()
	if len(columns) == 0 {
		return &cmtharvest.TableStats{Rows: ds.Len()}, nil
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return nil, cmtharvest.Wrap(cmtharvest.EIO, err, "writing table header")
	}

	row := make([]string, len(columns))
	for _, rec := range records(ds) {
		for i, name := range columns {
			row[i] = ""
			if v, ok := rec.Get(name); ok {
				row[i] = v.String()
			}
		}
		if err := cw.Write(row); err != nil {
			return nil, cmtharvest.Wrap(cmtharvest.EIO, err, "writing table row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, cmtharvest.Wrap(cmtharvest.EIO, err, "flushing table")
	}

	return &cmtharvest.TableStats{Columns: columns, Rows: ds.Len()}, nil
}

func records(ds *cmtharvest.Dataset) []*cmtharvest.Record {
	if ds == nil {
		return nil
	}
	return ds.Records
}

// Table is a CSV table read back from disk.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value of column name in row i, or "" when absent.
func (t *Table) Cell(i int, name string) string {
	j := t.Index(name)
	if j < 0 || i < 0 || i >= len(t.Rows) || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// ReadTable reads a table written by Serializer. Empty input yields a
// table with no columns.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, cmtharvest.Wrap(cmtharvest.EINVALID, err, "reading table header")
	}

	t := &Table{Columns: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, cmtharvest.Wrap(cmtharvest.EINVALID, err, "reading table row %d", len(t.Rows)+1)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
