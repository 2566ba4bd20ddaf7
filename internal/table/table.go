// Package table provides Table, an in-memory sequence of typed rows under an
// ordered list of column names.
//
// Operations that derive a new table copy the selected rows by default. The
// AsView option makes the derived table share row storage with its source
// instead, so a cell written through either table is visible through both.
package table

import (
	"github.com/arkilian/tabular/internal/inference"
	"github.com/arkilian/tabular/pkg/types"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// Table holds rows of values under named columns. Every row has exactly
// len(Columns()) values. Tables are not safe for concurrent mutation.
type Table struct {
	columns []string
	rows    []types.Row
}

// New creates a table with the given columns and initial rows. Rows are
// copied; every row must match the column count.
func New(columns []string, rows ...types.Row) (*Table, error) {
	t := &Table{columns: append([]string(nil), columns...)}
	for _, row := range rows {
		if err := t.AddRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNew is New for statically known tables; it panics on arity errors.
func MustNew(columns []string, rows ...types.Row) *Table {
	t, err := New(columns, rows...)
	if err != nil {
		panic(err)
	}
	return t
}

// derive builds a table over rows without validation. Callers guarantee
// the rows already match columns.
func derive(columns []string, rows []types.Row, o options) *Table {
	t := &Table{columns: append([]string(nil), columns...)}
	if o.view {
		t.rows = rows
		return t
	}
	t.rows = make([]types.Row, len(rows))
	for i, row := range rows {
		t.rows[i] = row.Clone()
	}
	return t
}

// Columns returns a copy of the column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.columns)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows exposes the row storage. Mutating it mutates the table.
func (t *Table) Rows() []types.Row {
	return t.rows
}

// AddRow appends a copy of row.
func (t *Table) AddRow(row types.Row) error {
	if len(row) != len(t.columns) {
		return terrors.NewRowArityMismatch(len(row), len(t.columns))
	}
	t.rows = append(t.rows, row.Clone())
	return nil
}

// AppendRows appends every row, failing before any row is added if one of
// them has the wrong width.
func (t *Table) AppendRows(rows []types.Row) error {
	for _, row := range rows {
		if len(row) != len(t.columns) {
			return terrors.NewRowArityMismatch(len(row), len(t.columns))
		}
	}
	for _, row := range rows {
		t.rows = append(t.rows, row.Clone())
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	return derive(t.columns, t.rows, options{})
}

// SameColumns reports whether both tables have identical column lists,
// names and order.
func (t *Table) SameColumns(other *Table) bool {
	return sameColumns(t.columns, other.columns)
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both tables have the same columns and structurally
// equal rows in the same order.
func (t *Table) Equal(other *Table) bool {
	if other == nil || !t.SameColumns(other) || len(t.rows) != len(other.rows) {
		return false
	}
	for i := range t.rows {
		if !t.rows[i].Equal(other.rows[i]) {
			return false
		}
	}
	return true
}

// AutoDetectTypes detects a type for every column from its current values
// and coerces the columns to it. A table without rows is left unchanged.
func (t *Table) AutoDetectTypes() ([]types.ColumnType, error) {
	if len(t.rows) == 0 {
		return nil, nil
	}
	detected := inference.DetectRows(t.rows, len(t.columns))
	plan := make(map[int]types.ColumnType, len(detected))
	for i, ct := range detected {
		plan[i] = ct
	}
	if err := t.SetColumnTypes(plan); err != nil {
		return nil, err
	}
	return detected, nil
}
