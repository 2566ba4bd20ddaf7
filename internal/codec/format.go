package codec

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// Format is an on-disk table encoding.
type Format int

const (
	// FormatCSV is comma-delimited text with a header record
	FormatCSV Format = iota + 1

	// FormatBinary is the framed, checksummed typed encoding
	FormatBinary

	// FormatText is the tab-separated display dump (write-only)
	FormatText

	// FormatSQLite stores the table in a SQLite database file
	FormatSQLite
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatBinary:
		return "binary"
	case FormatText:
		return "text"
	case FormatSQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the extension, without the dot, used for chunk files.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatBinary:
		return "pickle"
	case FormatText:
		return "txt"
	case FormatSQLite:
		return "sqlite"
	default:
		return ""
	}
}

// Decodable reports whether tables can be loaded back from the format.
func (f Format) Decodable() bool {
	return f == FormatCSV || f == FormatBinary || f == FormatSQLite
}

// FormatFromPath selects a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".pkl", ".pickle":
		return FormatBinary, nil
	case ".txt":
		return FormatText, nil
	case ".sqlite", ".db":
		return FormatSQLite, nil
	default:
		return 0, terrors.NewUnsupportedFormat("unsupported file extension in %q (use .csv, .pkl, .pickle, .txt, .sqlite or .db)", path).
			WithDetails(map[string]interface{}{"path": path})
	}
}

const chunkMarker = "_part"

// ChunkPath names chunk i (1-based) of a chunked save to base:
// {base}_part{i}.{extension}.
func ChunkPath(base string, format Format, i int) string {
	return fmt.Sprintf("%s%s%d.%s", base, chunkMarker, i, format.Extension())
}

// ChunkIndex extracts the chunk number from a path produced by ChunkPath.
func ChunkIndex(path string) (int, bool) {
	name := filepath.Base(path)
	at := strings.LastIndex(name, chunkMarker)
	if at < 0 {
		return 0, false
	}
	rest := name[at+len(chunkMarker):]
	dot := strings.IndexByte(rest, '.')
	if dot <= 0 {
		return 0, false
	}
	n, err := strconv.Atoi(rest[:dot])
	if err != nil || n < 1 || strings.ContainsAny(rest[:dot], "+-") {
		return 0, false
	}
	return n, true
}

// SortChunkPaths orders chunk files by ascending chunk number, so part10
// sorts after part9. Paths without a chunk number keep their relative order
// ahead of the chunks.
func SortChunkPaths(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		a, _ := ChunkIndex(paths[i])
		b, _ := ChunkIndex(paths[j])
		return a < b
	})
}
