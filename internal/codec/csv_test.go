package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arkilian/tabular/internal/table"
	"github.com/arkilian/tabular/pkg/types"

	terrors "github.com/arkilian/tabular/internal/errors"
)

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, mixedTable(t)))
	require.Equal(t,
		"id,ok,price,day,name\n"+
			"1,True,2.5,2024-03-01,alpha\n"+
			"2,False,-0.25,1969-12-31,\n"+
			",,,,\"gamma, with comma\"\n",
		buf.String())
}

func TestDecodeCSV(t *testing.T) {
	in := "\ufeffid,note\n1,\"a, b\"\n2,\n3,\"multi\nline\"\n"
	tbl, err := DecodeCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []string{"id", "note"}, tbl.Columns())
	require.Equal(t, []types.Row{
		types.TextRow("1", "a, b"),
		{types.Text("2"), types.Null()},
		types.TextRow("3", "multi\nline"),
	}, tbl.Rows())
}

func TestDecodeCSV_Errors(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader(""))
	require.ErrorIs(t, err, terrors.ErrEmptySource)

	_, err = DecodeCSV(strings.NewReader("a,b\n1,2,3\n"))
	require.ErrorIs(t, err, terrors.ErrRowArityMismatch)

	_, err = DecodeCSV(strings.NewReader("a,b\n1,\"unterminated\n"))
	require.ErrorIs(t, err, terrors.ErrUnsupportedFormat)

	_, err = DecodeCSV(strings.NewReader("a,b\n"), ExpectColumns([]string{"a"}))
	require.ErrorIs(t, err, terrors.ErrSchemaMismatch)
}

func TestCSV_SingleColumnAbsentValues(t *testing.T) {
	src := table.MustNew([]string{"v"},
		types.Row{types.Text("x")},
		types.Row{types.Null()},
		types.Row{types.Null()},
	)

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, src))
	require.Equal(t, "v\nx\n\"\"\n\"\"\n", buf.String())

	got, err := DecodeCSV(&buf)
	require.NoError(t, err)
	require.True(t, got.Equal(src))
}

func TestEncodeText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeText(&buf, mixedTable(t)))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "id\tok\tprice\tday\tname", lines[0])
	require.Equal(t, "2\tFalse\t-0.25\t1969-12-31\tNULL", lines[2])
}
