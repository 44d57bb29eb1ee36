package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/johnquangdev/meeting-recapper/pkg/config"
)

// Storage persists uploaded recordings and returns a file reference the
// transcription client can consume: a local path or a fetchable URL.
type Storage interface {
	Save(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
}

// New creates the storage backend selected by config
func New(cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "minio":
		return NewMinIOStorage(cfg)
	case "local", "":
		return NewLocalStorage(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
