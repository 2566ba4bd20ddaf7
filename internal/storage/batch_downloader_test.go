package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	terrors "github.com/arkilian/tabular/internal/errors"
)

func uploadTestObjects(t *testing.T, storage ObjectStorage, content []byte, keys ...string) {
	t.Helper()
	srcDir := t.TempDir()
	for i, key := range keys {
		srcPath := filepath.Join(srcDir, strconv.Itoa(i)+"_"+filepath.Base(key))
		if err := os.WriteFile(srcPath, content, 0644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		if err := storage.Upload(context.Background(), srcPath, key); err != nil {
			t.Fatalf("Upload failed for %s: %v", key, err)
		}
	}
}

func TestBatchDownloader_BasicDownload(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	paths := []string{"run/obj1.csv", "run/obj2.csv", "run/obj3.csv", "run/obj4.csv", "run/obj5.csv",
		"run/obj6.csv", "run/obj7.csv", "run/obj8.csv", "run/obj9.csv", "run/obj10.csv"}
	content := []byte("test content")
	uploadTestObjects(t, storage, content, paths...)

	destDir := t.TempDir()
	result, err := NewBatchDownloader(storage, 3, destDir).Download(context.Background(), paths)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
	if result.Downloads != len(paths) {
		t.Errorf("expected %d downloads, got %d", len(paths), result.Downloads)
	}

	// Local paths follow request order
	for i, p := range paths {
		want := filepath.Join(destDir, filepath.Base(p))
		if result.LocalPaths[i] != want {
			t.Errorf("LocalPaths[%d] = %s, want %s", i, result.LocalPaths[i], want)
		}
		downloaded, err := os.ReadFile(want)
		if err != nil {
			t.Errorf("failed to read downloaded file %s: %v", p, err)
			continue
		}
		if string(downloaded) != string(content) {
			t.Errorf("content mismatch for %s", p)
		}
	}
}

func TestBatchDownloader_PartialFailure(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	paths := []string{"exists1.csv", "exists2.csv", "exists3.csv", "nonexistent1.csv", "nonexistent2.csv"}
	uploadTestObjects(t, storage, []byte("partial failure test"), paths[:3]...)

	result, err := NewBatchDownloader(storage, 3, t.TempDir()).Download(context.Background(), paths)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if result.Downloads != 3 {
		t.Errorf("expected 3 downloads, got %d", result.Downloads)
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d", len(result.Errors))
	}
	for _, p := range paths[3:] {
		if err, exists := result.Errors[p]; !exists {
			t.Errorf("expected error for path %s", p)
		} else if !errors.Is(err, terrors.ErrObjectNotFound) {
			t.Errorf("expected ErrObjectNotFound for %s, got %v", p, err)
		}
	}
	for i := 3; i < len(paths); i++ {
		if result.LocalPaths[i] != "" {
			t.Errorf("expected empty local path for failed %s, got %s", paths[i], result.LocalPaths[i])
		}
	}
	if result.Err() == nil {
		t.Error("expected Err to report a failure")
	}
}

func TestBatchDownloader_EmptyRequest(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	result, err := NewBatchDownloader(storage, 3, t.TempDir()).Download(context.Background(), nil)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if len(result.LocalPaths) != 0 || len(result.Errors) != 0 || result.Downloads != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if result.Err() != nil {
		t.Errorf("expected no error, got %v", result.Err())
	}
}

func TestBatchDownloader_DuplicateBaseNames(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	_, err = NewBatchDownloader(storage, 2, t.TempDir()).Download(context.Background(),
		[]string{"a/t.csv", "b/t.csv"})
	if !errors.Is(err, terrors.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestBatchDownloader_CancelledContext(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	paths := []string{"a.csv", "b.csv"}
	uploadTestObjects(t, storage, []byte("x"), paths...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewBatchDownloader(storage, 1, t.TempDir()).Download(ctx, paths)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if result.Downloads != 0 {
		t.Errorf("expected no downloads after cancel, got %d", result.Downloads)
	}
	if len(result.Errors) != len(paths) {
		t.Errorf("expected %d errors, got %d", len(paths), len(result.Errors))
	}
}
