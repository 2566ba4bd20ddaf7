package table

import (
	"bufio"
	"io"
	"strings"
)

// Print writes the table as tab-separated text: the column names on the
// first line, then one line per row.
func (t *Table) Print(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(t.columns, "\t") + "\n"); err != nil {
		return err
	}
	fields := make([]string, len(t.columns))
	for _, row := range t.rows {
		for i, v := range row {
			fields[i] = v.String()
		}
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// String renders the table the way Print does.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Print(&sb)
	return sb.String()
}
