package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/arkilian/tabular/internal/table"
	"github.com/arkilian/tabular/pkg/types"

	terrors "github.com/arkilian/tabular/internal/errors"
)

const utf8BOM = "\ufeff"

// EncodeCSV writes the header record followed by one record per row.
// Absent values become empty fields; every other value is written with
// Value.String.
func EncodeCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := writeRecord(w, cw, t.Columns()); err != nil {
		return fmt.Errorf("codec: failed to write csv header: %w", err)
	}

	record := make([]string, t.Width())
	for _, row := range t.Rows() {
		for i, v := range row {
			if v.IsNull() {
				record[i] = ""
			} else {
				record[i] = v.String()
			}
		}
		if err := writeRecord(w, cw, record); err != nil {
			return fmt.Errorf("codec: failed to write csv record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("codec: failed to flush csv: %w", err)
	}
	return nil
}

// DecodeCSV reads a header record and the rows under it. Every field is
// returned as Text, except empty fields which are absent; use
// Table.AutoDetectTypes or Load with WithAutoDetect to type the columns.
func DecodeCSV(r io.Reader, opts ...Option) (*table.Table, error) {
	s := buildSettings(opts)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, terrors.NewEmptySource("csv input has no header record")
	}
	if err != nil {
		return nil, malformedCSV(err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	if s.expect != nil && !equalColumns(s.expect, header) {
		return nil, schemaMismatch(s.expect, header)
	}

	t, err := table.New(header)
	if err != nil {
		return nil, err
	}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformedCSV(err)
		}
		row := make(types.Row, len(record))
		for i, field := range record {
			if field == "" {
				row[i] = types.Null()
			} else {
				row[i] = types.Text(field)
			}
		}
		if err := t.AddRow(row); err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("codec: csv line %d: %w", line, err)
		}
	}
	return t, nil
}

// writeRecord writes one record. A record made of a single empty field is
// written as a quoted empty string, since csv.Writer would emit a blank line
// that csv.Reader skips.
func writeRecord(w io.Writer, cw *csv.Writer, record []string) error {
	if len(record) != 1 || record[0] != "" {
		return cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}

func malformedCSV(err error) error {
	return terrors.Wrap(terrors.ErrCategoryCodec, terrors.CodeUnsupportedFormat, "malformed csv", err)
}

func equalColumns(a, b []string) bool {
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

func schemaMismatch(want, got []string) error {
	return terrors.NewSchemaMismatch("columns %v do not match expected %v", got, want).
		WithDetails(map[string]interface{}{"expected": want, "got": got})
}
