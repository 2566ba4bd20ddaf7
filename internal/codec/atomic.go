package codec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// tempSibling returns a unique hidden path next to path.
func tempSibling(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.New().String()[:8]))
}

// writeAtomic streams encode into a temporary sibling of path and renames it
// into place, so readers never observe a half-written table. The temporary
// file is removed on every failure path.
func writeAtomic(path string, encode func(w io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("codec: failed to create directory: %w", err)
	}

	tmp := tempSibling(path)
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("codec: failed to create %s: %w", tmp, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = encode(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("codec: failed to flush %s: %w", path, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("codec: failed to sync %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("codec: failed to close %s: %w", path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("codec: failed to rename into %s: %w", path, err)
	}
	return nil
}
