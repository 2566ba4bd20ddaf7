package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// BatchDownloader coordinates parallel downloads from object storage into a
// single local directory.
type BatchDownloader struct {
	storage     ObjectStorage
	concurrency int
	destDir     string
}

// BatchResult contains the outcome of a batch download operation.
type BatchResult struct {
	// LocalPaths holds the local file for each requested object, in request
	// order. Entries for failed downloads are empty.
	LocalPaths []string
	Errors     map[string]error
	Downloads  int
}

// Err returns one of the download errors, or nil when every object arrived.
func (r *BatchResult) Err() error {
	for _, err := range r.Errors {
		return err
	}
	return nil
}

// NewBatchDownloader creates a new batch downloader.
// storage: the ObjectStorage implementation to download from
// concurrency: maximum number of parallel downloads
// destDir: directory the objects are written to
func NewBatchDownloader(storage ObjectStorage, concurrency int, destDir string) *BatchDownloader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchDownloader{
		storage:     storage,
		concurrency: concurrency,
		destDir:     destDir,
	}
}

// Download fetches every object in parallel. Objects are stored under their
// base name, so two objects with the same base name are rejected up front.
func (b *BatchDownloader) Download(ctx context.Context, objectPaths []string) (*BatchResult, error) {
	result := &BatchResult{
		LocalPaths: make([]string, len(objectPaths)),
		Errors:     make(map[string]error),
	}

	locals := make([]string, len(objectPaths))
	seen := make(map[string]string, len(objectPaths))
	for i, p := range objectPaths {
		local := b.localPath(p)
		if prev, dup := seen[local]; dup {
			return nil, terrors.NewInvalidArgument("objects %s and %s both download to %s", prev, p, local)
		}
		seen[local] = p
		locals[i] = local
	}

	sem := semaphore.NewWeighted(int64(b.concurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, p := range objectPaths {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			result.Errors[p] = fmt.Errorf("semaphore acquire failed: %w", err)
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(i int, objectPath string) {
			defer sem.Release(1)
			defer wg.Done()

			if err := b.storage.Download(ctx, objectPath, locals[i]); err != nil {
				mu.Lock()
				result.Errors[objectPath] = err
				mu.Unlock()
				return
			}

			mu.Lock()
			result.LocalPaths[i] = locals[i]
			result.Downloads++
			mu.Unlock()
		}(i, p)
	}

	wg.Wait()

	return result, nil
}

// localPath maps an object path to a file directly under destDir.
func (b *BatchDownloader) localPath(objectPath string) string {
	return filepath.Join(b.destDir, path.Base(objectPath))
}
