package storage

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/arkilian/tabular/internal/codec"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// DefaultFetchConcurrency bounds parallel downloads in Archive.Fetch.
const DefaultFetchConcurrency = 4

// Archive publishes saved table files under an object prefix and fetches
// them back in load order.
type Archive struct {
	store       ObjectStorage
	concurrency int
}

// NewArchive creates an archive over store.
func NewArchive(store ObjectStorage) *Archive {
	return &Archive{store: store, concurrency: DefaultFetchConcurrency}
}

// WithConcurrency sets the number of parallel downloads used by Fetch.
func (a *Archive) WithConcurrency(n int) *Archive {
	a.concurrency = n
	return a
}

// ObjectKey names the object that holds localPath under prefix.
func ObjectKey(prefix, localPath string) string {
	return path.Join(strings.Trim(prefix, "/"), filepath.Base(localPath))
}

// Publish uploads each file under prefix, keeping its base name, and returns
// the object keys in argument order.
func (a *Archive) Publish(ctx context.Context, prefix string, paths []string) ([]string, error) {
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		key := ObjectKey(prefix, p)
		if err := a.store.Upload(ctx, p, key); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Fetch downloads every loadable table file under prefix into destDir and
// returns the local paths in load order: chunk files by ascending chunk
// number, after any unchunked files. Objects whose extension no decoder
// handles are skipped.
func (a *Archive) Fetch(ctx context.Context, prefix, destDir string) ([]string, error) {
	listPrefix := strings.Trim(prefix, "/")
	if listPrefix != "" {
		listPrefix += "/"
	}
	objects, err := a.store.ListObjects(ctx, listPrefix)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, key := range objects {
		if strings.Contains(strings.TrimPrefix(key, listPrefix), "/") {
			continue
		}
		format, err := codec.FormatFromPath(key)
		if err != nil || !format.Decodable() {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, terrors.NewEmptySource("no table files under prefix " + prefix)
	}
	codec.SortChunkPaths(keys)

	result, err := NewBatchDownloader(a.store, a.concurrency, destDir).Download(ctx, keys)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result.LocalPaths, nil
}
