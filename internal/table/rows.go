package table

import (
	"github.com/arkilian/tabular/pkg/types"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// RowsByNumber returns rows start through stop, both inclusive. Bounds are
// clamped to the table; stop < start yields an empty table.
func (t *Table) RowsByNumber(start, stop int, opts ...Option) *Table {
	if start < 0 {
		start = 0
	}
	if stop >= len(t.rows) {
		stop = len(t.rows) - 1
	}
	if start > stop {
		return derive(t.columns, nil, buildOptions(opts))
	}
	// The capacity cap keeps appends to a view from overwriting source rows.
	return derive(t.columns, t.rows[start:stop+1:stop+1], buildOptions(opts))
}

// Row returns the single row at position i as a table.
func (t *Table) Row(i int, opts ...Option) *Table {
	return t.RowsByNumber(i, i, opts...)
}

// RowsByKey returns the rows whose first column matches one of keys.
// Integers and floats match when numerically equal.
func (t *Table) RowsByKey(keys []types.Value, opts ...Option) *Table {
	var selected []types.Row
	if len(t.columns) > 0 {
		for _, row := range t.rows {
			for _, k := range keys {
				if types.Equivalent(row[0], k) {
					selected = append(selected, row)
					break
				}
			}
		}
	}
	return derive(t.columns, selected, buildOptions(opts))
}

// FilterRows keeps the rows whose mask entry is true. The mask must have one
// entry per row.
func (t *Table) FilterRows(mask []bool, opts ...Option) (*Table, error) {
	if len(mask) != len(t.rows) {
		return nil, terrors.NewCardinalityError("mask has %d entries, table has %d rows", len(mask), len(t.rows))
	}
	var selected []types.Row
	for i, keep := range mask {
		if keep {
			selected = append(selected, t.rows[i])
		}
	}
	return derive(t.columns, selected, buildOptions(opts)), nil
}

// Concat stacks the rows of b under the rows of a. Both tables must have
// identical column lists.
func Concat(a, b *Table, opts ...Option) (*Table, error) {
	if !a.SameColumns(b) {
		return nil, terrors.NewSchemaMismatch("cannot concat %v with %v", a.columns, b.columns)
	}
	rows := make([]types.Row, 0, len(a.rows)+len(b.rows))
	rows = append(rows, a.rows...)
	rows = append(rows, b.rows...)
	return derive(a.columns, rows, buildOptions(opts)), nil
}

// Split cuts the table before row k. The first table holds rows [0, k) and
// the second rows [k, Len()).
func (t *Table) Split(k int, opts ...Option) (*Table, *Table, error) {
	if k < 0 || k > len(t.rows) {
		return nil, nil, terrors.NewCardinalityError("split point %d outside [0, %d]", k, len(t.rows))
	}
	o := buildOptions(opts)
	head := derive(t.columns, t.rows[:k:k], o)
	tail := derive(t.columns, t.rows[k:], o)
	return head, tail, nil
}
