// Package main implements the tabular binary: load one or more table files,
// optionally re-type columns, print, save and publish the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/arkilian/tabular/internal/app"
	"github.com/arkilian/tabular/internal/config"
	"github.com/arkilian/tabular/pkg/types"
)

var (
	version = "dev"
	commit  = "unknown"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	// Parse command line flags
	var (
		configFile  string
		workDir     string
		output      string
		maxRows     int
		autoDetect  bool
		noCompress  bool
		printTable  bool
		showTypes   bool
		fetch       string
		publish     string
		setTypes    stringList
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&workDir, "work-dir", "", "Base directory for fetched files and local storage")
	flag.StringVar(&output, "out", "", "Save the table to this file (format from extension)")
	flag.IntVar(&maxRows, "max-rows", -1, "Split output into chunks of at most this many rows (0 = single file)")
	flag.BoolVar(&autoDetect, "auto-detect", false, "Detect column types after loading")
	flag.BoolVar(&noCompress, "no-compress", false, "Disable snappy compression of binary output")
	flag.BoolVar(&printTable, "print", false, "Print the table to stdout")
	flag.BoolVar(&showTypes, "types", false, "Print each column's type to stdout")
	flag.StringVar(&fetch, "fetch", "", "Load the table files archived under this prefix")
	flag.StringVar(&publish, "publish", "", "Upload the saved files under this prefix")
	flag.Var(&setTypes, "set-type", "Re-type a column, as column=TYPE (repeatable)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tabular - load, type and convert tabular files\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tabular [options] [file ...]\n\n")
		fmt.Fprintf(os.Stderr, "Formats: .csv, .pkl/.pickle (binary), .sqlite/.db, .txt (write only)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tabular -auto-detect -types prices.csv\n")
		fmt.Fprintf(os.Stderr, "  tabular -set-type price=FLOAT -out prices.pkl prices.csv\n")
		fmt.Fprintf(os.Stderr, "  tabular -max-rows 10000 -out big.pkl -publish daily/big big.csv\n")
		fmt.Fprintf(os.Stderr, "  tabular -fetch daily/big -out big.sqlite\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  TABULAR_WORK_DIR        Base directory for working files\n")
		fmt.Fprintf(os.Stderr, "  TABULAR_AUTO_DETECT     Detect column types after loading (true, false)\n")
		fmt.Fprintf(os.Stderr, "  TABULAR_MAX_ROWS        Rows per output chunk\n")
		fmt.Fprintf(os.Stderr, "  TABULAR_COMPRESS        Compress binary output (true, false)\n")
		fmt.Fprintf(os.Stderr, "  TABULAR_STORAGE_TYPE    Storage type (local, s3)\n")
		fmt.Fprintf(os.Stderr, "  TABULAR_S3_*            S3 bucket, region, endpoint and path style\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("tabular version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	plan, err := app.ParseTypeAssignments(setTypes)
	if err != nil {
		log.Fatalf("Invalid -set-type: %v", err)
	}

	// Load configuration
	cfg, err := loadConfig(configFile, workDir, maxRows, autoDetect, noCompress)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	printSummary(cfg, plan)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	_, err = application.Run(ctx, app.Job{
		Inputs:        flag.Args(),
		FetchPrefix:   fetch,
		SetTypes:      plan,
		Print:         printTable,
		ShowTypes:     showTypes,
		Output:        output,
		PublishPrefix: publish,
		Out:           os.Stdout,
	})
	if err != nil {
		stop()
		log.Fatalf("Run failed: %v", err)
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, workDir string, maxRows int, autoDetect, noCompress bool) (*config.Config, error) {
	var cfg *config.Config
	var err error

	// Start with defaults or load from file
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// Apply environment variables
	config.LoadFromEnv(cfg)

	// Apply command line flags (highest priority)
	if workDir != "" {
		cfg.WorkDir = workDir
	}
	if maxRows >= 0 {
		cfg.Save.MaxRows = maxRows
	}
	if autoDetect {
		cfg.Load.AutoDetect = true
	}
	if noCompress {
		cfg.Save.Compress = false
	}

	return cfg, nil
}

// printSummary logs the effective configuration.
func printSummary(cfg *config.Config, plan map[string]types.ColumnType) {
	log.Printf("tabular %s", version)
	log.Printf("  Work Dir:    %s", cfg.WorkDir)
	log.Printf("  Storage:     %s", cfg.Storage.Type)
	log.Printf("  Auto Detect: %v", cfg.Load.AutoDetect)
	log.Printf("  Max Rows:    %d", cfg.Save.MaxRows)
	for _, name := range app.SortedColumns(plan) {
		log.Printf("  Set Type:    %s=%s", name, plan[name])
	}
}
