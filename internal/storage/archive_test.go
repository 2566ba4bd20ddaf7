package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arkilian/tabular/internal/codec"
	"github.com/arkilian/tabular/internal/table"
	"github.com/arkilian/tabular/pkg/types"

	terrors "github.com/arkilian/tabular/internal/errors"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, local, want string
	}{
		{"runs/2024", "/tmp/out/t.csv_part1.csv", "runs/2024/t.csv_part1.csv"},
		{"/runs/", "t.pkl", "runs/t.pkl"},
		{"", "dir/t.sqlite", "t.sqlite"},
	}
	for _, tt := range tests {
		if got := ObjectKey(tt.prefix, tt.local); got != tt.want {
			t.Errorf("ObjectKey(%q, %q) = %q, want %q", tt.prefix, tt.local, got, tt.want)
		}
	}
}

func TestArchive_PublishFetchLoad(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	src := table.MustNew([]string{"id", "name"})
	for i := 0; i < 25; i++ {
		if err := src.AddRow(types.Row{types.Int(int64(i)), types.Text("row")}); err != nil {
			t.Fatalf("AddRow failed: %v", err)
		}
	}

	outDir := t.TempDir()
	written, err := codec.Save(src, filepath.Join(outDir, "t.pkl"), codec.WithMaxRows(2))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(written) != 13 {
		t.Fatalf("expected 13 chunks, got %d", len(written))
	}

	archive := NewArchive(store).WithConcurrency(3)
	keys, err := archive.Publish(ctx, "runs/today", written)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if keys[9] != "runs/today/t.pkl_part10.pickle" {
		t.Errorf("unexpected key %s", keys[9])
	}

	// Objects that are not loadable tables, or live deeper, are ignored.
	stray := filepath.Join(t.TempDir(), "notes.json")
	if err := os.WriteFile(stray, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to write stray file: %v", err)
	}
	if err := store.Upload(ctx, stray, "runs/today/notes.json"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if err := store.Upload(ctx, written[0], "runs/today/old/t.pkl_part1.pickle"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	fetched, err := archive.Fetch(ctx, "runs/today", t.TempDir())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(fetched) != len(written) {
		t.Fatalf("expected %d fetched files, got %d", len(written), len(fetched))
	}
	for i, p := range fetched {
		if filepath.Base(p) != filepath.Base(written[i]) {
			t.Errorf("fetched[%d] = %s, want %s", i, filepath.Base(p), filepath.Base(written[i]))
		}
	}

	got, err := codec.Load(fetched)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !got.Equal(src) {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", got, src)
	}
}

func TestArchive_FetchEmptyPrefix(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	_, err = NewArchive(store).Fetch(context.Background(), "nothing/here", t.TempDir())
	if !errors.Is(err, terrors.ErrEmptySource) {
		t.Errorf("expected ErrEmptySource, got %v", err)
	}
}

func TestArchive_PublishMissingFile(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	keys, err := NewArchive(store).Publish(context.Background(), "p", []string{filepath.Join(t.TempDir(), "gone.csv")})
	if terrors.GetCode(err) != terrors.CodeUploadFailed {
		t.Errorf("expected upload failure, got %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys, got %v", keys)
	}
}
