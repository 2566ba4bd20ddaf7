// Package codec reads and writes tables as CSV, framed binary, SQLite and a
// write-only text dump, with chunked saves and multi-file loads.
package codec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arkilian/tabular/internal/table"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// Save writes t to path in the format its extension selects and returns the
// paths written. With WithMaxRows(n), n > 0, rows are split into chunk files
// of at most n rows named by ChunkPath; an empty table then writes nothing.
func Save(t *table.Table, path string, opts ...Option) ([]string, error) {
	s := buildSettings(opts)
	if s.maxRows < 0 {
		return nil, terrors.NewInvalidArgument("max rows must not be negative, got %d", s.maxRows).
			WithDetails(map[string]interface{}{"max_rows": s.maxRows})
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	if s.maxRows == 0 {
		if err := writeFile(t, path, format, s); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	chunks := (t.Len() + s.maxRows - 1) / s.maxRows
	written := make([]string, 0, chunks)
	for i := 0; i < chunks; i++ {
		part := t.RowsByNumber(i*s.maxRows, (i+1)*s.maxRows-1, table.AsView())
		chunkPath := ChunkPath(path, format, i+1)
		if err := writeFile(part, chunkPath, format, s); err != nil {
			return written, err
		}
		written = append(written, chunkPath)
	}
	return written, nil
}

func writeFile(t *table.Table, path string, format Format, s settings) error {
	switch format {
	case FormatCSV:
		return writeAtomic(path, func(w io.Writer) error { return EncodeCSV(w, t) })
	case FormatBinary:
		return writeAtomic(path, func(w io.Writer) error {
			return EncodeBinary(w, t, WithCompression(s.compress))
		})
	case FormatText:
		return writeAtomic(path, func(w io.Writer) error { return EncodeText(w, t) })
	case FormatSQLite:
		return EncodeSQLite(context.Background(), path, t)
	default:
		return terrors.NewUnsupportedFormat("cannot write format %s", format)
	}
}

// Load reads every path and concatenates their rows in argument order. The
// first file that yields a header fixes the column list; a later file with
// different columns fails with a schema mismatch. Files that yield no header
// are skipped.
func Load(paths []string, opts ...Option) (*table.Table, error) {
	s := buildSettings(opts)
	if len(paths) == 0 {
		return nil, terrors.NewEmptySource("no input files given")
	}

	formats := make([]Format, len(paths))
	for i, path := range paths {
		format, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		if !format.Decodable() {
			return nil, terrors.NewUnsupportedFormat("%s files are write-only: %s", format, path).
				WithDetails(map[string]interface{}{"path": path})
		}
		formats[i] = format
	}

	var merged *table.Table
	for i, path := range paths {
		var expect []string
		if merged != nil {
			expect = merged.Columns()
		} else {
			expect = s.expect
		}

		part, err := readFile(path, formats[i], expect)
		if errors.Is(err, terrors.ErrEmptySource) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("codec: loading %s: %w", path, err)
		}

		if merged == nil {
			merged = part
			continue
		}
		if err := merged.AppendRows(part.Rows()); err != nil {
			return nil, fmt.Errorf("codec: loading %s: %w", path, err)
		}
	}
	if merged == nil {
		return nil, terrors.NewEmptySource("no input file has a header")
	}

	if s.autoDetect {
		if _, err := merged.AutoDetectTypes(); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func readFile(path string, format Format, expect []string) (*table.Table, error) {
	var opts []Option
	if expect != nil {
		opts = append(opts, ExpectColumns(expect))
	}

	if format == FormatSQLite {
		return DecodeSQLite(context.Background(), path, opts...)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("codec: failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	switch format {
	case FormatCSV:
		return DecodeCSV(r, opts...)
	case FormatBinary:
		return DecodeBinary(r, opts...)
	default:
		return nil, terrors.NewUnsupportedFormat("cannot read format %s", format)
	}
}

// LoadChunks finds the chunk files Save wrote for base and loads them in
// ascending chunk order.
func LoadChunks(base string, opts ...Option) (*table.Table, error) {
	dir, prefix := filepath.Split(base)
	prefix += chunkMarker
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("codec: failed to list %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if _, ok := ChunkIndex(path); !ok {
			continue
		}
		if strings.Contains(e.Name()[len(prefix):], chunkMarker) {
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, terrors.NewEmptySource(fmt.Sprintf("no chunk files found for %s", base))
	}

	SortChunkPaths(paths)
	return Load(paths, opts...)
}
