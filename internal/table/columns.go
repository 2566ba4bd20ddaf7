package table

import (
	"fmt"
	"sort"

	"github.com/arkilian/tabular/internal/inference"
	"github.com/arkilian/tabular/pkg/types"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// ColumnTypes reports the declared type of every column, by position.
func (t *Table) ColumnTypes() []types.ColumnType {
	return inference.DeclaredRows(t.rows, len(t.columns))
}

// ColumnTypesByName reports the declared type of every column, by name.
// For duplicate names the first column wins.
func (t *Table) ColumnTypesByName() map[string]types.ColumnType {
	declared := t.ColumnTypes()
	out := make(map[string]types.ColumnType, len(t.columns))
	for i, name := range t.columns {
		if _, seen := out[name]; !seen {
			out[name] = declared[i]
		}
	}
	return out
}

// SetColumnTypes coerces each listed column to its target type. Either every
// listed column is converted or, on the first failure, none is.
func (t *Table) SetColumnTypes(plan map[int]types.ColumnType) error {
	positions := make([]int, 0, len(plan))
	for pos := range plan {
		if _, err := t.resolve(At(pos)); err != nil {
			return err
		}
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	staged := make([][]types.Value, len(positions))
	for i, pos := range positions {
		coerced, err := types.CoerceAll(t.column(pos), plan[pos])
		if err != nil {
			return fmt.Errorf("column %q: %w", t.columns[pos], err)
		}
		staged[i] = coerced
	}

	for i, pos := range positions {
		for r, row := range t.rows {
			row[pos] = staged[i][r]
		}
	}
	return nil
}

// SetColumnTypesByName is SetColumnTypes keyed by column name.
func (t *Table) SetColumnTypesByName(plan map[string]types.ColumnType) error {
	byPos := make(map[int]types.ColumnType, len(plan))
	for name, ct := range plan {
		pos, err := t.resolve(Named(name))
		if err != nil {
			return err
		}
		byPos[pos] = ct
	}
	return t.SetColumnTypes(byPos)
}

// Values returns the values of one column, top to bottom.
func (t *Table) Values(ref Ref) ([]types.Value, error) {
	pos, err := t.resolve(ref)
	if err != nil {
		return nil, err
	}
	return t.column(pos), nil
}

// Value returns the cell of a single-row table.
func (t *Table) Value(ref Ref) (types.Value, error) {
	if len(t.rows) != 1 {
		return types.Value{}, terrors.NewCardinalityError("Value needs exactly one row, table has %d", len(t.rows))
	}
	pos, err := t.resolve(ref)
	if err != nil {
		return types.Value{}, err
	}
	return t.rows[0][pos], nil
}

// SetValues overwrites one column. values must have one entry per row.
func (t *Table) SetValues(values []types.Value, ref Ref) error {
	if len(values) != len(t.rows) {
		return terrors.NewCardinalityError("got %d values for %d rows", len(values), len(t.rows))
	}
	pos, err := t.resolve(ref)
	if err != nil {
		return err
	}
	for i, row := range t.rows {
		row[pos] = values[i]
	}
	return nil
}

// SetValue overwrites a cell of a single-row table.
func (t *Table) SetValue(value types.Value, ref Ref) error {
	if len(t.rows) != 1 {
		return terrors.NewCardinalityError("SetValue needs exactly one row, table has %d", len(t.rows))
	}
	pos, err := t.resolve(ref)
	if err != nil {
		return err
	}
	t.rows[0][pos] = value
	return nil
}

// Project returns a new table holding only the referenced columns, in the
// order given. Projection always copies since the row layout changes.
func (t *Table) Project(refs ...Ref) (*Table, error) {
	positions := make([]int, len(refs))
	columns := make([]string, len(refs))
	for i, ref := range refs {
		pos, err := t.resolve(ref)
		if err != nil {
			return nil, err
		}
		positions[i] = pos
		columns[i] = t.columns[pos]
	}

	out := &Table{columns: columns, rows: make([]types.Row, len(t.rows))}
	for r, row := range t.rows {
		projected := make(types.Row, len(positions))
		for i, pos := range positions {
			projected[i] = row[pos]
		}
		out.rows[r] = projected
	}
	return out, nil
}

func (t *Table) column(pos int) []types.Value {
	out := make([]types.Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[pos]
	}
	return out
}
