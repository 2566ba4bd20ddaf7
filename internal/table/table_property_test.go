package table

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/arkilian/tabular/pkg/types"
)

// TestProperty_SplitConcat checks that splitting a table at any valid point
// and concatenating the halves restores the original rows in order.
func TestProperty_SplitConcat(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Concat(Split(T, k)) == T", prop.ForAll(
		func(keys []int64, k int) bool {
			tbl := MustNew([]string{"key", "label"})
			for _, key := range keys {
				if err := tbl.AddRow(types.Row{types.Int(key), types.Text("row")}); err != nil {
					return false
				}
			}
			k = k % (len(keys) + 1)

			head, tail, err := tbl.Split(k)
			if err != nil {
				return false
			}
			if head.Len() != k || tail.Len() != len(keys)-k {
				return false
			}
			joined, err := Concat(head, tail)
			if err != nil {
				return false
			}
			return joined.Equal(tbl)
		},
		gen.SliceOf(gen.Int64()),
		gen.IntRange(0, 1000),
	))

	properties.Property("Concat row count is the sum of inputs", prop.ForAll(
		func(n, m int) bool {
			a := MustNew([]string{"x"})
			b := MustNew([]string{"x"})
			for i := 0; i < n; i++ {
				_ = a.AddRow(types.Row{types.Int(int64(i))})
			}
			for i := 0; i < m; i++ {
				_ = b.AddRow(types.Row{types.Int(int64(n + i))})
			}
			c, err := Concat(a, b)
			if err != nil || c.Len() != n+m {
				return false
			}
			for i, row := range c.Rows() {
				if v, _ := row[0].AsInt(); v != int64(i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 50),
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}
