// Package app wires configuration, codecs and storage into the tabular
// command's load, transform, save and publish pipeline.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/arkilian/tabular/internal/codec"
	"github.com/arkilian/tabular/internal/config"
	"github.com/arkilian/tabular/internal/storage"
	"github.com/arkilian/tabular/internal/table"
	"github.com/arkilian/tabular/pkg/types"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// Job describes one run of the pipeline.
type Job struct {
	// Inputs are local table files, loaded in order
	Inputs []string

	// FetchPrefix loads the files archived under this prefix instead of Inputs
	FetchPrefix string

	// SetTypes re-types columns by name before saving
	SetTypes map[string]types.ColumnType

	// Print writes the table to Out
	Print bool

	// ShowTypes writes each column's declared type to Out
	ShowTypes bool

	// Output is the destination file; empty skips saving
	Output string

	// PublishPrefix uploads the saved files under this prefix
	PublishPrefix string

	// Out receives printed output (default: os.Stdout)
	Out io.Writer
}

// Result summarizes a finished run.
type Result struct {
	Table     *table.Table
	Loaded    []string
	Written   []string
	Published []string
}

// App runs jobs against one configuration.
type App struct {
	cfg   *config.Config
	store storage.ObjectStorage
}

// New creates a new App with the given configuration.
func New(cfg *config.Config) (*App, error) {
	// Resolve paths and validate
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &App{cfg: cfg}, nil
}

// NewWithStorage creates an App that uses store instead of the configured
// storage backend.
func NewWithStorage(cfg *config.Config, store storage.ObjectStorage) (*App, error) {
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	return a, nil
}

// Run executes job and reports what it loaded and wrote.
func (a *App) Run(ctx context.Context, job Job) (*Result, error) {
	out := job.Out
	if out == nil {
		out = os.Stdout
	}

	inputs := job.Inputs
	if job.FetchPrefix != "" {
		fetched, err := a.fetch(ctx, job.FetchPrefix)
		if err != nil {
			return nil, err
		}
		inputs = fetched
	}
	if len(inputs) == 0 {
		return nil, terrors.NewEmptySource("no input files given")
	}

	var loadOpts []codec.Option
	if a.cfg.Load.AutoDetect {
		loadOpts = append(loadOpts, codec.WithAutoDetect())
	}
	t, err := codec.Load(inputs, loadOpts...)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d rows x %d columns from %d file(s)", t.Len(), t.Width(), len(inputs))

	if len(job.SetTypes) > 0 {
		if err := t.SetColumnTypesByName(job.SetTypes); err != nil {
			return nil, err
		}
		log.Printf("Re-typed %d column(s)", len(job.SetTypes))
	}

	if job.ShowTypes {
		if err := writeTypes(out, t); err != nil {
			return nil, err
		}
	}
	if job.Print {
		if err := t.Print(out); err != nil {
			return nil, err
		}
	}

	result := &Result{Table: t, Loaded: inputs}
	if job.Output == "" {
		if job.PublishPrefix != "" {
			return nil, terrors.NewInvalidArgument("publishing requires an output file")
		}
		return result, nil
	}

	result.Written, err = codec.Save(t, job.Output,
		codec.WithMaxRows(a.cfg.Save.MaxRows),
		codec.WithCompression(a.cfg.Save.Compress),
	)
	if err != nil {
		return nil, err
	}
	log.Printf("Saved %d file(s) to %s", len(result.Written), job.Output)

	if job.PublishPrefix != "" {
		archive, err := a.archive(ctx)
		if err != nil {
			return nil, err
		}
		result.Published, err = archive.Publish(ctx, job.PublishPrefix, result.Written)
		if err != nil {
			return nil, err
		}
		log.Printf("Published %d object(s) under %s", len(result.Published), job.PublishPrefix)
	}

	return result, nil
}

func (a *App) fetch(ctx context.Context, prefix string) ([]string, error) {
	archive, err := a.archive(ctx)
	if err != nil {
		return nil, err
	}
	paths, err := archive.Fetch(ctx, prefix, a.cfg.Load.FetchDir)
	if err != nil {
		return nil, err
	}
	log.Printf("Fetched %d file(s) from %s", len(paths), prefix)
	return paths, nil
}

func (a *App) archive(ctx context.Context) (*storage.Archive, error) {
	if err := a.initStorage(ctx); err != nil {
		return nil, err
	}
	return storage.NewArchive(a.store).WithConcurrency(a.cfg.Load.FetchConcurrency), nil
}

// initStorage creates the configured storage backend on first use.
func (a *App) initStorage(ctx context.Context) error {
	if a.store != nil {
		return nil
	}

	var err error
	switch a.cfg.Storage.Type {
	case config.StorageLocal:
		a.store, err = storage.NewLocalStorage(a.cfg.Storage.Path)
	case config.StorageS3:
		s3Cfg := storage.DefaultS3Config()
		if a.cfg.Storage.S3.Region != "" {
			s3Cfg.Region = a.cfg.Storage.S3.Region
		}
		if a.cfg.Storage.S3.MaxRetries > 0 {
			s3Cfg.MaxRetries = a.cfg.Storage.S3.MaxRetries
		}
		s3Cfg.Endpoint = a.cfg.Storage.S3.Endpoint
		s3Cfg.UsePathStyle = a.cfg.Storage.S3.UsePathStyle
		a.store, err = storage.NewS3Storage(ctx, a.cfg.Storage.S3.Bucket, s3Cfg)
	default:
		return fmt.Errorf("unsupported storage type: %s", a.cfg.Storage.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Printf("Storage initialized: type=%s", a.cfg.Storage.Type)
	if a.cfg.Storage.Type == config.StorageS3 {
		log.Printf("S3 Config: Bucket=%s, Region=%s, Endpoint=%s",
			a.cfg.Storage.S3.Bucket, a.cfg.Storage.S3.Region, a.cfg.Storage.S3.Endpoint)
	}
	return nil
}

func writeTypes(w io.Writer, t *table.Table) error {
	for i, ct := range t.ColumnTypes() {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", t.Columns()[i], ct); err != nil {
			return err
		}
	}
	return nil
}

// ParseTypeAssignments parses "column=TYPE" pairs. A column named twice
// keeps the last assignment.
func ParseTypeAssignments(pairs []string) (map[string]types.ColumnType, error) {
	plan := make(map[string]types.ColumnType, len(pairs))
	for _, pair := range pairs {
		at := strings.LastIndexByte(pair, '=')
		if at <= 0 || at == len(pair)-1 {
			return nil, terrors.NewInvalidArgument("type assignment %q must look like column=TYPE", pair)
		}
		ct, err := types.ParseColumnType(pair[at+1:])
		if err != nil {
			return nil, terrors.Wrap(terrors.ErrCategoryValidation, terrors.CodeInvalidArgument,
				fmt.Sprintf("bad type assignment %q", pair), err)
		}
		plan[pair[:at]] = ct
	}
	return plan, nil
}

// SortedColumns returns the columns of plan in name order.
func SortedColumns(plan map[string]types.ColumnType) []string {
	names := make([]string, 0, len(plan))
	for name := range plan {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
