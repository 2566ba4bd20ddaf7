package codec

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arkilian/tabular/internal/table"
	"github.com/arkilian/tabular/pkg/types"

	terrors "github.com/arkilian/tabular/internal/errors"
)

const sqliteLayoutVersion = 1

var sqliteSchema = []string{
	`CREATE TABLE tabular_meta (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	) WITHOUT ROWID`,
	`CREATE TABLE tabular_columns (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE tabular_cells (
		row_idx INTEGER NOT NULL,
		col_idx INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		value,
		PRIMARY KEY (row_idx, col_idx)
	) WITHOUT ROWID`,
}

// EncodeSQLite writes t into a new SQLite database at path. The database is
// built under a temporary name and renamed into place once closed.
func EncodeSQLite(ctx context.Context, path string, t *table.Table) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("codec: failed to create directory: %w", err)
	}

	tmp := tempSibling(path)
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	db, err := sql.Open("sqlite3", sqliteDSN(tmp, "rwc"))
	if err != nil {
		return fmt.Errorf("codec: failed to create SQLite database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("codec: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range sqliteSchema {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("codec: failed to create SQLite schema: %w", err)
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO tabular_meta (key, value) VALUES ('version', ?), ('row_count', ?)`,
		sqliteLayoutVersion, t.Len()); err != nil {
		return fmt.Errorf("codec: failed to write metadata: %w", err)
	}

	colStmt, err := tx.PrepareContext(ctx, `INSERT INTO tabular_columns (position, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("codec: failed to prepare column insert: %w", err)
	}
	defer colStmt.Close()
	for i, name := range t.Columns() {
		if _, err = colStmt.ExecContext(ctx, i, name); err != nil {
			return fmt.Errorf("codec: failed to insert column %q: %w", name, err)
		}
	}

	cellStmt, err := tx.PrepareContext(ctx, `INSERT INTO tabular_cells (row_idx, col_idx, kind, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("codec: failed to prepare cell insert: %w", err)
	}
	defer cellStmt.Close()
	for r, row := range t.Rows() {
		for c, v := range row {
			if _, err = cellStmt.ExecContext(ctx, r, c, int(v.Kind()), sqliteValue(v)); err != nil {
				return fmt.Errorf("codec: failed to insert cell (%d, %d): %w", r, c, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("codec: failed to commit SQLite database: %w", err)
	}
	if err = db.Close(); err != nil {
		return fmt.Errorf("codec: failed to close SQLite database: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("codec: failed to rename into %s: %w", path, err)
	}
	return nil
}

// DecodeSQLite reads a table written by EncodeSQLite.
func DecodeSQLite(ctx context.Context, path string, opts ...Option) (*table.Table, error) {
	s := buildSettings(opts)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("codec: failed to open %s: %w", path, err)
	}
	db, err := sql.Open("sqlite3", sqliteDSN(path, "ro"))
	if err != nil {
		return nil, fmt.Errorf("codec: failed to open SQLite database: %w", err)
	}
	defer db.Close()

	var version, rowCount int64
	if err := db.QueryRowContext(ctx, `SELECT value FROM tabular_meta WHERE key = 'version'`).Scan(&version); err != nil {
		return nil, notTabular(path, err)
	}
	if version != sqliteLayoutVersion {
		return nil, terrors.NewUnsupportedFormat("unsupported SQLite table layout version %d in %s", version, path)
	}
	if err := db.QueryRowContext(ctx, `SELECT value FROM tabular_meta WHERE key = 'row_count'`).Scan(&rowCount); err != nil {
		return nil, notTabular(path, err)
	}
	if rowCount < 0 {
		return nil, terrors.NewUnsupportedFormat("negative row count %d in %s", rowCount, path)
	}

	columns, err := readSQLiteColumns(ctx, db, path)
	if err != nil {
		return nil, err
	}
	if s.expect != nil && !equalColumns(s.expect, columns) {
		return nil, schemaMismatch(s.expect, columns)
	}

	rows, err := readSQLiteCells(ctx, db, path, int(rowCount), len(columns))
	if err != nil {
		return nil, err
	}

	t, err := table.New(columns)
	if err != nil {
		return nil, err
	}
	if err := t.AppendRows(rows); err != nil {
		return nil, err
	}
	return t, nil
}

func readSQLiteColumns(ctx context.Context, db *sql.DB, path string) ([]string, error) {
	rs, err := db.QueryContext(ctx, `SELECT position, name FROM tabular_columns ORDER BY position`)
	if err != nil {
		return nil, notTabular(path, err)
	}
	defer rs.Close()

	columns := []string{}
	for rs.Next() {
		var (
			pos  int
			name string
		)
		if err := rs.Scan(&pos, &name); err != nil {
			return nil, notTabular(path, err)
		}
		if pos != len(columns) {
			return nil, terrors.NewUnsupportedFormat("column positions in %s are not contiguous at %d", path, pos)
		}
		columns = append(columns, name)
	}
	if err := rs.Err(); err != nil {
		return nil, notTabular(path, err)
	}
	return columns, nil
}

func readSQLiteCells(ctx context.Context, db *sql.DB, path string, rowCount, width int) ([]types.Row, error) {
	rows := make([]types.Row, rowCount)
	for i := range rows {
		rows[i] = make(types.Row, width)
	}

	rs, err := db.QueryContext(ctx, `SELECT row_idx, col_idx, kind, value FROM tabular_cells ORDER BY row_idx, col_idx`)
	if err != nil {
		return nil, notTabular(path, err)
	}
	defer rs.Close()

	seen := 0
	for rs.Next() {
		var (
			r, c, kind int
			raw        interface{}
		)
		if err := rs.Scan(&r, &c, &kind, &raw); err != nil {
			return nil, notTabular(path, err)
		}
		if r < 0 || r >= rowCount || c < 0 || c >= width {
			return nil, terrors.NewUnsupportedFormat("cell (%d, %d) in %s is outside %d rows by %d columns", r, c, path, rowCount, width)
		}
		v, err := fromSQLite(types.Kind(kind), raw)
		if err != nil {
			return nil, err
		}
		rows[r][c] = v
		seen++
	}
	if err := rs.Err(); err != nil {
		return nil, notTabular(path, err)
	}
	if seen != rowCount*width {
		return nil, terrors.NewUnsupportedFormat("%s holds %d cells, want %d", path, seen, rowCount*width)
	}
	return rows, nil
}

// sqliteValue maps a value onto a SQLite storage class. Dates are stored as
// days since the Unix epoch.
func sqliteValue(v types.Value) interface{} {
	switch v.Kind() {
	case types.KindBool:
		b, _ := v.AsBool()
		if b {
			return int64(1)
		}
		return int64(0)
	case types.KindInt:
		i, _ := v.AsInt()
		return i
	case types.KindFloat:
		f, _ := v.AsFloat()
		return f
	case types.KindDate:
		d, _ := v.AsDate()
		return d.DaysSinceEpoch()
	case types.KindText:
		s, _ := v.AsText()
		return s
	default:
		return nil
	}
}

func fromSQLite(kind types.Kind, raw interface{}) (types.Value, error) {
	if kind == types.KindNull {
		return types.Null(), nil
	}
	switch x := raw.(type) {
	case nil:
		// SQLite stores NaN as NULL.
		if kind == types.KindFloat {
			return types.Float(math.NaN()), nil
		}
	case int64:
		switch kind {
		case types.KindBool:
			return types.Bool(x != 0), nil
		case types.KindInt:
			return types.Int(x), nil
		case types.KindFloat:
			return types.Float(float64(x)), nil
		case types.KindDate:
			return types.DateOf(types.DateFromDays(x)), nil
		}
	case float64:
		if kind == types.KindFloat {
			return types.Float(x), nil
		}
	case string:
		if kind == types.KindText {
			return types.Text(x), nil
		}
	case []byte:
		if kind == types.KindText {
			return types.Text(string(x)), nil
		}
	}
	return types.Value{}, terrors.NewUnsupportedFormat("cell of kind %s holds unexpected %T", kind, raw)
}

func notTabular(path string, err error) error {
	return terrors.Wrap(terrors.ErrCategoryCodec, terrors.CodeUnsupportedFormat,
		fmt.Sprintf("%s is not a tabular SQLite database", path), err)
}

// sqliteDSN builds a SQLite URI opening path in the given mode. The path is
// escaped so '?', '#' and '%' in file names are not read as URI syntax.
func sqliteDSN(path, mode string) string {
	return "file:" + (&url.URL{Path: filepath.ToSlash(path)}).EscapedPath() + "?mode=" + mode
}
