package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	terrors "github.com/arkilian/tabular/internal/errors"
	"github.com/arkilian/tabular/pkg/types"
)

func intRow(vals ...int64) types.Row {
	row := make(types.Row, len(vals))
	for i, v := range vals {
		row[i] = types.Int(v)
	}
	return row
}

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New([]string{"id", "a", "b"},
		intRow(1, 5, 5),
		intRow(2, 3, 4),
		intRow(3, 9, 1),
		intRow(4, 7, 7),
	)
	require.NoError(t, err)
	return tbl
}

func TestNew_RowArity(t *testing.T) {
	_, err := New([]string{"a", "b"}, intRow(1))
	require.ErrorIs(t, err, terrors.ErrRowArityMismatch)

	tbl := MustNew([]string{"a", "b"})
	require.ErrorIs(t, tbl.AddRow(intRow(1, 2, 3)), terrors.ErrRowArityMismatch)
	require.NoError(t, tbl.AddRow(intRow(1, 2)))
	require.Equal(t, 1, tbl.Len())
}

func TestAppendRows_AllOrNothing(t *testing.T) {
	tbl := MustNew([]string{"a"})
	err := tbl.AppendRows([]types.Row{intRow(1), intRow(1, 2)})
	require.ErrorIs(t, err, terrors.ErrRowArityMismatch)
	require.Equal(t, 0, tbl.Len())
}

func TestRowsByNumber(t *testing.T) {
	tbl := sampleTable(t)

	sub := tbl.RowsByNumber(1, 2)
	require.Equal(t, 2, sub.Len())
	require.True(t, sub.Rows()[0].Equal(intRow(2, 3, 4)))
	require.True(t, sub.Rows()[1].Equal(intRow(3, 9, 1)))

	require.Equal(t, 1, tbl.Row(3).Len())
	require.Equal(t, 3, tbl.RowsByNumber(1, 100).Len())
	require.Equal(t, 0, tbl.RowsByNumber(10, 12).Len())
	require.Equal(t, 0, tbl.RowsByNumber(2, 1).Len())
	require.Equal(t, tbl.Columns(), sub.Columns())
}

func TestRowsByNumber_CopyIsIndependent(t *testing.T) {
	tbl := sampleTable(t)
	sub := tbl.Row(0)
	require.NoError(t, sub.SetValue(types.Int(100), Named("a")))

	v, err := tbl.Row(0).Value(Named("a"))
	require.NoError(t, err)
	require.True(t, v.Equal(types.Int(5)), "copy must not write through to the source")
}

func TestRowsByNumber_ViewSharesStorage(t *testing.T) {
	tbl := sampleTable(t)
	view := tbl.Row(0, AsView())
	require.NoError(t, view.SetValue(types.Int(100), Named("a")))

	v, err := tbl.Row(0).Value(Named("a"))
	require.NoError(t, err)
	require.True(t, v.Equal(types.Int(100)), "view must write through to the source")

	// Appending to a view must not clobber the next source row.
	require.NoError(t, view.AddRow(intRow(9, 9, 9)))
	require.True(t, tbl.Rows()[1].Equal(intRow(2, 3, 4)))
}

func TestRowsByKey(t *testing.T) {
	tbl := sampleTable(t)
	got := tbl.RowsByKey([]types.Value{types.Int(2), types.Float(4), types.Text("3")})
	require.Equal(t, 2, got.Len())
	require.True(t, got.Rows()[0].Equal(intRow(2, 3, 4)))
	require.True(t, got.Rows()[1].Equal(intRow(4, 7, 7)))

	require.Equal(t, 0, tbl.RowsByKey(nil).Len())
}

func TestColumnTypes(t *testing.T) {
	tbl := MustNew([]string{"id", "when", "name", "mixed"},
		types.Row{types.Int(1), types.Text("2024-01-01"), types.Text("x"), types.Int(1)},
		types.Row{types.Int(2), types.Text("2024-01-02"), types.Null(), types.Text("y")},
	)

	require.Equal(t, []types.ColumnType{types.TypeInteger, types.TypeDate, types.TypeText, types.TypeText}, tbl.ColumnTypes())
	require.Equal(t, types.TypeDate, tbl.ColumnTypesByName()["when"])
}

func TestAutoDetectAndSetColumnTypes(t *testing.T) {
	tbl := MustNew([]string{"id", "price"},
		types.Row{types.Int(1), types.Text("200000")},
		types.Row{types.Int(2), types.Text("150000")},
	)

	detected, err := tbl.AutoDetectTypes()
	require.NoError(t, err)
	require.Equal(t, []types.ColumnType{types.TypeInteger, types.TypeInteger}, detected)

	require.NoError(t, tbl.SetColumnTypes(map[int]types.ColumnType{1: types.TypeFloat}))
	prices, err := tbl.Values(Named("price"))
	require.NoError(t, err)
	require.Equal(t, []types.Value{types.Float(200000), types.Float(150000)}, prices)
}

func TestSetColumnTypes_Atomic(t *testing.T) {
	tbl := MustNew([]string{"a", "b"},
		types.TextRow("1", "2"),
		types.TextRow("3", "oops"),
	)

	err := tbl.SetColumnTypesByName(map[string]types.ColumnType{"a": types.TypeInteger, "b": types.TypeInteger})
	require.ErrorIs(t, err, terrors.ErrCoercion)

	a, _ := tbl.Values(At(0))
	require.Equal(t, types.KindText, a[0].Kind(), "no column may be converted when one fails")

	require.ErrorIs(t, tbl.SetColumnTypes(map[int]types.ColumnType{5: types.TypeText}), terrors.ErrColumnNotFound)
	require.ErrorIs(t, tbl.SetColumnTypesByName(map[string]types.ColumnType{"zz": types.TypeText}), terrors.ErrColumnNotFound)
}

func TestSetColumnTypes_PreservesAbsent(t *testing.T) {
	tbl := MustNew([]string{"a"}, types.Row{types.Text("1")}, types.Row{types.Null()})
	require.NoError(t, tbl.SetColumnTypes(map[int]types.ColumnType{0: types.TypeInteger}))
	require.True(t, tbl.Rows()[1][0].IsNull())
}

func TestValueAndSetValue_Cardinality(t *testing.T) {
	tbl := sampleTable(t)
	_, err := tbl.Value(At(0))
	require.ErrorIs(t, err, terrors.ErrCardinality)
	require.ErrorIs(t, tbl.SetValue(types.Int(1), At(0)), terrors.ErrCardinality)

	empty := MustNew([]string{"a"})
	_, err = empty.Value(At(0))
	require.ErrorIs(t, err, terrors.ErrCardinality)

	one := tbl.Row(1)
	_, err = one.Value(Named("nope"))
	require.ErrorIs(t, err, terrors.ErrColumnNotFound)
}

func TestSetValues(t *testing.T) {
	tbl := sampleTable(t)
	require.ErrorIs(t, tbl.SetValues([]types.Value{types.Int(1)}, At(1)), terrors.ErrCardinality)

	vals := []types.Value{types.Text("w"), types.Text("x"), types.Text("y"), types.Text("z")}
	require.NoError(t, tbl.SetValues(vals, Named("b")))
	got, err := tbl.Values(At(2))
	require.NoError(t, err)
	require.Equal(t, vals, got)
}

func TestDuplicateColumnNames_ResolveToFirst(t *testing.T) {
	tbl := MustNew([]string{"x", "x"}, intRow(1, 2))
	v, err := tbl.Value(Named("x"))
	require.NoError(t, err)
	require.True(t, v.Equal(types.Int(1)))
}

func TestProject(t *testing.T) {
	tbl := sampleTable(t)
	p, err := tbl.Project(Named("b"), At(0))
	require.NoError(t, err)
	require.Equal(t, []string{"b", "id"}, p.Columns())
	require.True(t, p.Rows()[1].Equal(intRow(4, 2)))

	_, err = tbl.Project(At(7))
	require.ErrorIs(t, err, terrors.ErrColumnNotFound)
}

func TestConcat(t *testing.T) {
	a := sampleTable(t)
	b := MustNew(a.Columns(), intRow(5, 0, 0))

	c, err := Concat(a, b)
	require.NoError(t, err)
	require.Equal(t, a.Len()+b.Len(), c.Len())
	require.True(t, c.Rows()[4].Equal(intRow(5, 0, 0)))
	require.True(t, c.Rows()[0].Equal(intRow(1, 5, 5)))

	other := MustNew([]string{"id", "b", "a"})
	_, err = Concat(a, other)
	require.ErrorIs(t, err, terrors.ErrSchemaMismatch)
}

func TestSplit(t *testing.T) {
	tbl := sampleTable(t)
	head, tail, err := tbl.Split(1)
	require.NoError(t, err)
	require.Equal(t, 1, head.Len())
	require.Equal(t, 3, tail.Len())

	_, _, err = tbl.Split(5)
	require.ErrorIs(t, err, terrors.ErrCardinality)
	_, _, err = tbl.Split(-1)
	require.ErrorIs(t, err, terrors.ErrCardinality)
}

func TestComparisons(t *testing.T) {
	tbl := MustNew([]string{"a", "b"}, intRow(5, 5), intRow(3, 4))

	eq, err := tbl.Eq(At(0), At(1))
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, eq)

	filtered, err := tbl.FilterRows(eq)
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Len())
	require.True(t, filtered.Rows()[0].Equal(intRow(5, 5)))

	cases := map[Operator][]bool{
		OpGt: {false, false},
		OpLt: {false, true},
		OpGe: {true, false},
		OpLe: {true, true},
		OpNe: {false, true},
	}
	for op, want := range cases {
		got, err := tbl.Compare(At(0), Named("b"), op)
		require.NoError(t, err, op.String())
		require.Equal(t, want, got, op.String())
	}
}

func TestComparisons_MixedKinds(t *testing.T) {
	tbl := MustNew([]string{"a", "b"},
		types.Row{types.Int(2), types.Float(2)},
		types.Row{types.Text("2"), types.Int(2)},
	)

	eq, err := tbl.Eq(At(0), At(1))
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, eq)

	_, err = tbl.Lt(At(0), At(1))
	require.ErrorIs(t, err, terrors.ErrCoercion)

	empty := MustNew([]string{"a", "b"})
	got, err := empty.Gt(At(0), At(1))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFilterRows_MaskLength(t *testing.T) {
	tbl := sampleTable(t)
	_, err := tbl.FilterRows([]bool{true})
	require.ErrorIs(t, err, terrors.ErrCardinality)
}

func TestPrint(t *testing.T) {
	tbl := MustNew([]string{"id", "price", "ok"},
		types.Row{types.Int(1), types.Float(200000), types.Bool(true)},
		types.Row{types.Int(2), types.Null(), types.Bool(false)},
	)
	want := "id\tprice\tok\n1\t200000.0\tTrue\n2\tNULL\tFalse\n"
	require.Equal(t, want, tbl.String())
}

func TestEqualAndClone(t *testing.T) {
	tbl := sampleTable(t)
	c := tbl.Clone()
	require.True(t, tbl.Equal(c))
	c.Rows()[0][0] = types.Int(42)
	require.False(t, tbl.Equal(c))
	require.False(t, tbl.Equal(nil))
}
