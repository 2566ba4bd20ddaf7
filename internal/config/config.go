// Package config provides configuration for the tabular tool.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage types.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds the configuration for loading, saving and archiving tables.
type Config struct {
	// WorkDir is the base directory for fetched files and local storage
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// Load configuration
	Load LoadConfig `json:"load" yaml:"load"`

	// Save configuration
	Save SaveConfig `json:"save" yaml:"save"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// LoadConfig holds table loading configuration.
type LoadConfig struct {
	// AutoDetect detects and applies column types after inputs are merged
	AutoDetect bool `json:"auto_detect" yaml:"auto_detect"`

	// FetchDir is where archived files are downloaded before loading
	FetchDir string `json:"fetch_dir" yaml:"fetch_dir"`

	// FetchConcurrency is the number of parallel downloads
	FetchConcurrency int `json:"fetch_concurrency" yaml:"fetch_concurrency"`
}

// SaveConfig holds table saving configuration.
type SaveConfig struct {
	// MaxRows splits output into chunk files of at most this many rows (0 = single file)
	MaxRows int `json:"max_rows" yaml:"max_rows"`

	// Compress enables snappy compression of binary files
	Compress bool `json:"compress" yaml:"compress"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing (required for MinIO)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`

	// MaxRetries bounds retries of a failed request
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DefaultConfig returns the default configuration for local use.
func DefaultConfig() *Config {
	return &Config{
		WorkDir: "./data/tabular",
		Load: LoadConfig{
			AutoDetect:       false,
			FetchConcurrency: 4,
		},
		Save: SaveConfig{
			MaxRows:  0,
			Compress: true,
		},
		Storage: StorageConfig{
			Type: StorageLocal,
			S3: S3Config{
				Region:     "us-east-1",
				MaxRetries: 3,
			},
		},
	}
}

// Resolve resolves relative paths and sets defaults based on WorkDir.
func (c *Config) Resolve() {
	if c.WorkDir == "" {
		c.WorkDir = "./data/tabular"
	}

	// Resolve storage path
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.WorkDir, "storage")
	}

	// Resolve fetch path
	if c.Load.FetchDir == "" {
		c.Load.FetchDir = filepath.Join(c.WorkDir, "fetch")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir is required")
	}

	if c.Save.MaxRows < 0 {
		return fmt.Errorf("save.max_rows must not be negative, got %d", c.Save.MaxRows)
	}

	if c.Load.FetchConcurrency < 1 {
		return fmt.Errorf("load.fetch_concurrency must be at least 1, got %d", c.Load.FetchConcurrency)
	}

	if c.Storage.Type != StorageLocal && c.Storage.Type != StorageS3 {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == StorageS3 && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the TABULAR_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("TABULAR_WORK_DIR"); v != "" {
		cfg.WorkDir = v
	}

	// Load configuration
	if v := os.Getenv("TABULAR_AUTO_DETECT"); v != "" {
		cfg.Load.AutoDetect = v == "true" || v == "1"
	}
	if v := os.Getenv("TABULAR_FETCH_DIR"); v != "" {
		cfg.Load.FetchDir = v
	}
	if v := os.Getenv("TABULAR_FETCH_CONCURRENCY"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Load.FetchConcurrency)
	}

	// Save configuration
	if v := os.Getenv("TABULAR_MAX_ROWS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Save.MaxRows)
	}
	if v := os.Getenv("TABULAR_COMPRESS"); v != "" {
		cfg.Save.Compress = v == "true" || v == "1"
	}

	// Storage configuration
	if v := os.Getenv("TABULAR_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("TABULAR_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("TABULAR_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("TABULAR_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("TABULAR_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("TABULAR_S3_USE_PATH_STYLE"); v != "" {
		cfg.Storage.S3.UsePathStyle = v == "true" || v == "1"
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.WorkDir, c.Load.FetchDir}
	if c.Storage.Type == StorageLocal {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
