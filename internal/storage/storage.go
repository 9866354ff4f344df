package storage

import (
	"fmt"
	"io"

	cfg "github.com/foldervault/foldervault/internal/config"
)

// Storage defines the interface for file blob operations
type Storage interface {
	// Save stores a blob at the given path
	Save(path string, r io.Reader) error

	// Open returns the blob contents for reading. A missing blob is
	// reported as an error satisfying errors.Is(err, fs.ErrNotExist).
	Open(path string) (io.ReadCloser, error)

	// Delete removes the blob at the given path
	Delete(path string) error
}

// New creates the storage backend selected by config: local disk by
// default, or any S3-compatible service (AWS S3, MinIO, R2, Spaces).
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case "", "local":
		return NewLocalStorage(c.StoragePath)
	case "s3":
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
