package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/arkilian/tabular/internal/codec"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// S3Storage implements ObjectStorage for AWS S3 and S3-compatible stores.
type S3Storage struct {
	client     *s3.Client
	bucket     string
	maxRetries int
}

// S3Config holds configuration for S3 storage.
type S3Config struct {
	// Region is the AWS region for the S3 bucket.
	Region string
	// Endpoint is an optional custom endpoint (for MinIO, LocalStack, etc.).
	Endpoint string
	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool
	// MaxRetries bounds retries of a failed request (default: 3).
	MaxRetries int
}

// DefaultS3Config returns the default S3 configuration.
func DefaultS3Config() S3Config {
	return S3Config{
		Region:     "us-east-1",
		MaxRetries: 3,
	}
}

// NewS3Storage creates a new S3 storage client.
func NewS3Storage(ctx context.Context, bucket string, cfg S3Config) (*S3Storage, error) {
	var opts []func(*config.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return NewS3StorageWithClient(s3.NewFromConfig(awsCfg, s3Opts...), bucket, cfg), nil
}

// NewS3StorageWithClient creates a new S3 storage with a pre-configured client.
func NewS3StorageWithClient(client *s3.Client, bucket string, cfg S3Config) *S3Storage {
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return &S3Storage{
		client:     client,
		bucket:     bucket,
		maxRetries: retries,
	}
}

// Upload stores a table file under objectPath, tagged with the content type
// of its format.
func (s *S3Storage) Upload(ctx context.Context, localPath, objectPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return uploadFailed(objectPath, err)
	}
	defer file.Close()

	err = s.retryWithBackoff(ctx, func() error {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return err
		}
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(objectPath),
			Body:        file,
			ContentType: aws.String(contentType(objectPath)),
		})
		return err
	})
	if err != nil {
		return uploadFailed(objectPath, err)
	}
	return nil
}

// Download writes the object to localPath. The body lands in a sibling
// ".part" file first, so a failed transfer never leaves a truncated table
// where Load would pick it up.
func (s *S3Storage) Download(ctx context.Context, objectPath, localPath string) error {
	var resp *s3.GetObjectOutput
	err := s.retryWithBackoff(ctx, func() error {
		var getErr error
		resp, getErr = s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectPath),
		})
		return getErr
	})
	if err != nil {
		if isNotFound(err) {
			return terrors.NewStorageError(terrors.CodeObjectNotFound, fmt.Sprintf("object %s not found", objectPath), err)
		}
		return downloadFailed(objectPath, err)
	}
	defer resp.Body.Close()

	if err := writePartial(resp.Body, localPath); err != nil {
		return downloadFailed(objectPath, err)
	}
	return nil
}

func writePartial(body io.Reader, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return err
	}
	part := localPath + ".part"
	file, err := os.Create(part)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		_ = os.Remove(part)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(part)
		return err
	}
	return os.Rename(part, localPath)
}

// Delete removes an object from S3.
func (s *S3Storage) Delete(ctx context.Context, objectPath string) error {
	err := s.retryWithBackoff(ctx, func() error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectPath),
		})
		return err
	})
	if err != nil {
		return terrors.NewStorageError(terrors.CodeDeleteFailed, fmt.Sprintf("delete %s failed", objectPath), err)
	}
	return nil
}

// Exists checks if an object exists in S3.
func (s *S3Storage) Exists(ctx context.Context, objectPath string) (bool, error) {
	var exists bool
	err := s.retryWithBackoff(ctx, func() error {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectPath),
		})
		if err != nil {
			if isNotFound(err) {
				exists = false
				return nil
			}
			return err
		}
		exists = true
		return nil
	})

	return exists, err
}

// ListObjects returns all object paths under the given prefix.
func (s *S3Storage) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	var objects []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, aws.ToString(obj.Key))
		}
	}

	return objects, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

func uploadFailed(objectPath string, err error) error {
	return terrors.NewStorageError(terrors.CodeUploadFailed, fmt.Sprintf("upload %s failed", objectPath), err)
}

func downloadFailed(objectPath string, err error) error {
	return terrors.NewStorageError(terrors.CodeDownloadFailed, fmt.Sprintf("download %s failed", objectPath), err)
}

// contentType maps a table file's extension to the MIME type stored with it.
func contentType(objectPath string) string {
	format, err := codec.FormatFromPath(objectPath)
	if err != nil {
		return "application/octet-stream"
	}
	switch format {
	case codec.FormatCSV:
		return "text/csv"
	case codec.FormatText:
		return "text/plain; charset=utf-8"
	case codec.FormatSQLite:
		return "application/vnd.sqlite3"
	default:
		return "application/octet-stream"
	}
}

// retryWithBackoff runs operation until it succeeds, the object turns out
// to be missing, or maxRetries retries are spent.
func (s *S3Storage) retryWithBackoff(ctx context.Context, operation func() error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil || isNotFound(lastErr) {
			return lastErr
		}

		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}
	}
	return lastErr
}

const (
	baseBackoff = 100 * time.Millisecond
	maxBackoff  = 5 * time.Second
)

// backoff doubles from baseBackoff and is capped at maxBackoff.
func backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * baseBackoff
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}
