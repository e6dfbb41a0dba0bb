// Package rowstore abstracts the spreadsheet-shaped backing store: named
// tables of ordered rows, where row 0 is the header and the header is the
// schema. Three backends exist: in-memory (dev/tests), postgres via GORM,
// and the real Google Sheets document.
package rowstore

import "errors"

// Row is one table row. Cells are strings; numeric interpretation is the
// caller's business, same as reading a spreadsheet.
type Row []string

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	c := make(Row, len(r))
	copy(c, r)
	return c
}

// ErrTableNotFound is wrapped by Store.Table for absent tables.
var ErrTableNotFound = errors.New("table not found")

// Table is a handle on one named table.
//
// A successful Append or WriteCell is visible to the next Rows call in the
// same process. WriteCells applies one logical row update; it is atomic on
// the memory and postgres backends but may partially apply on sheets.
type Table interface {
	Name() string
	Rows() ([]Row, error)
	Append(row Row) error
	WriteCell(rowIdx, colIdx int, value string) error
	WriteCells(rowIdx int, cells map[int]string) error
}

// Store resolves table handles. Indexes are 0-based including the header row.
type Store interface {
	// Table returns an existing table, or an error wrapping ErrTableNotFound.
	Table(name string) (Table, error)
	// FindOrCreate returns the named table, creating it with the given header
	// row when absent. The header is only written on creation.
	FindOrCreate(name string, header Row) (Table, error)
}
