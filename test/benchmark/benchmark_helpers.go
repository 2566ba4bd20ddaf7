package benchmark

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arkilian/tabular/internal/storage"
	"github.com/arkilian/tabular/internal/table"
	"github.com/arkilian/tabular/pkg/types"
	"github.com/joho/godotenv"
)

// PrefixedStorage wraps an ObjectStorage and prepends a prefix to all object paths.
type PrefixedStorage struct {
	inner  storage.ObjectStorage
	prefix string
}

func (s *PrefixedStorage) Upload(ctx context.Context, localPath, objectPath string) error {
	return s.inner.Upload(ctx, localPath, s.prefix+"/"+objectPath)
}

func (s *PrefixedStorage) Download(ctx context.Context, objectPath, localPath string) error {
	return s.inner.Download(ctx, s.prefix+"/"+objectPath, localPath)
}

func (s *PrefixedStorage) Delete(ctx context.Context, objectPath string) error {
	return s.inner.Delete(ctx, s.prefix+"/"+objectPath)
}

func (s *PrefixedStorage) Exists(ctx context.Context, objectPath string) (bool, error) {
	return s.inner.Exists(ctx, s.prefix+"/"+objectPath)
}

// ListObjects strips the prefix from returned keys so callers see the same
// key space they wrote to.
func (s *PrefixedStorage) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	objects, err := s.inner.ListObjects(ctx, s.prefix+"/"+prefix)
	if err != nil {
		return nil, err
	}
	stripped := make([]string, len(objects))
	for i, obj := range objects {
		stripped[i] = strings.TrimPrefix(obj, s.prefix+"/")
	}
	return stripped, nil
}

// latencyStorage adds a fixed delay to every Download to mimic a remote
// object store.
type latencyStorage struct {
	inner      storage.ObjectStorage
	getLatency time.Duration
	getCount   atomic.Int64
}

func newLatencyStorage(inner storage.ObjectStorage, getLatency time.Duration) *latencyStorage {
	return &latencyStorage{inner: inner, getLatency: getLatency}
}

func (l *latencyStorage) Upload(ctx context.Context, localPath, objectPath string) error {
	return l.inner.Upload(ctx, localPath, objectPath)
}

func (l *latencyStorage) Download(ctx context.Context, objectPath, localPath string) error {
	l.getCount.Add(1)
	time.Sleep(l.getLatency)
	return l.inner.Download(ctx, objectPath, localPath)
}

func (l *latencyStorage) Delete(ctx context.Context, objectPath string) error {
	return l.inner.Delete(ctx, objectPath)
}

func (l *latencyStorage) Exists(ctx context.Context, objectPath string) (bool, error) {
	return l.inner.Exists(ctx, objectPath)
}

func (l *latencyStorage) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	return l.inner.ListObjects(ctx, prefix)
}

// getBenchmarkStorage returns a storage interface and a cleanup func.
// It respects TABULAR_STORAGE_TYPE=s3 from .env or environment.
// For S3 every object lives under "bench/<benchName>/<timestamp>".
func getBenchmarkStorage(b *testing.B, benchName string) (storage.ObjectStorage, func()) {
	// Try loading .env from project root (../../.env relative to test/benchmark)
	_ = godotenv.Load("../../.env")

	if os.Getenv("TABULAR_STORAGE_TYPE") == "s3" {
		bucket := os.Getenv("TABULAR_S3_BUCKET")
		if bucket == "" {
			b.Fatal("TABULAR_S3_BUCKET is required for s3 benchmark")
		}

		cfg := storage.DefaultS3Config()
		if v := os.Getenv("TABULAR_S3_REGION"); v != "" {
			cfg.Region = v
		}
		cfg.Endpoint = os.Getenv("TABULAR_S3_ENDPOINT")
		cfg.UsePathStyle = os.Getenv("TABULAR_S3_USE_PATH_STYLE") == "true"

		st, err := storage.NewS3Storage(context.Background(), bucket, cfg)
		if err != nil {
			b.Fatalf("Failed to initialize S3 storage: %v", err)
		}

		prefix := fmt.Sprintf("bench/%s/%d", benchName, time.Now().UnixNano())
		b.Logf("Running benchmark against S3 Bucket: %s Prefix: %s", bucket, prefix)

		// Objects are left in place for inspection
		return &PrefixedStorage{inner: st, prefix: prefix}, func() {}
	}

	dir, err := os.MkdirTemp("", "tabular-bench-"+benchName+"-*")
	if err != nil {
		b.Fatal(err)
	}
	st, err := storage.NewLocalStorage(path.Join(dir, "storage"))
	if err != nil {
		b.Fatal(err)
	}
	return st, func() { os.RemoveAll(dir) }
}

var benchColumns = []string{"id", "tenant", "amount", "active", "day", "note"}

// generateTable builds a mixed-type table with a fixed seed.
func generateTable(count int) *table.Table {
	rng := rand.New(rand.NewSource(42))
	base := types.NewDate(2024, time.January, 1)
	rows := make([]types.Row, count)
	for i := range rows {
		rows[i] = types.Row{
			types.Int(int64(i)),
			types.Text(fmt.Sprintf("tenant_%d", i%100)),
			types.Float(rng.Float64() * 1000),
			types.Bool(i%3 == 0),
			types.DateOf(types.DateFromDays(base.DaysSinceEpoch() + int64(i%365))),
			types.Text("benchmark payload " + fmt.Sprint(rng.Intn(1_000_000))),
		}
	}
	return table.MustNew(benchColumns, rows...)
}

// generateTextTable builds the all-text table a CSV decode produces.
func generateTextTable(count int) *table.Table {
	src := generateTable(count)
	rows := make([]types.Row, src.Len())
	for i, row := range src.Rows() {
		fields := make([]string, len(row))
		for j, v := range row {
			fields[j] = v.String()
		}
		rows[i] = types.TextRow(fields...)
	}
	return table.MustNew(benchColumns, rows...)
}
