package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/config"
)

// MinioClient implements ObjectStorage for MinIO and other S3-compatible services.
type MinioClient struct {
	client *minio.Client
	bucket string
}

// NewMinioClient connects to the configured endpoint and makes sure the bucket exists.
func NewMinioClient(ctx context.Context, cfg config.StorageConfig) (*MinioClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: strings.TrimSpace(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("Created document bucket")
	}

	return &MinioClient{client: client, bucket: cfg.Bucket}, nil
}

// ListObjects lists all objects for a given prefix.
func (c *MinioClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	for object := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("minio list failed: %w", object.Err)
		}
		results = append(results, ObjectInfo{Key: object.Key, Size: object.Size})
	}
	return results, nil
}

// DownloadObject downloads an object to the provided destination path.
func (c *MinioClient) DownloadObject(ctx context.Context, key, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}
	if err := c.client.FGetObject(ctx, c.bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("minio download %s: %w", key, err)
	}
	return nil
}

// UploadObject stores data under key with a content type guessed from the extension.
func (c *MinioClient) UploadObject(ctx context.Context, key string, data []byte) error {
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("minio upload %s: %w", key, err)
	}
	return nil
}

var _ ObjectStorage = (*MinioClient)(nil)
