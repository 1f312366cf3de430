package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/clothy/internal/config"
)

// Storage persists uploaded files and returns a public URL for each.
type Storage interface {
	Save(ctx context.Context, filename string, contentType string, r io.Reader) (string, error)
}

// NewFromConfig picks the storage backend named by STORAGE_DRIVER.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region)
	case "", "local":
		return NewLocalStorage(cfg.UploadDir, cfg.BackendURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// objectName builds a collision-free name keeping the original extension.
func objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
}
