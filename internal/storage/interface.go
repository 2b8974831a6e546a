package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/jrosser/cuecut/config"
)

// Storage defines the interface for placing downloaded sources and cut
// segment files.
type Storage interface {
	// SourceDir returns the directory downloads are placed in.
	SourceDir() string

	// SegmentPath returns the path a cut segment should be written to.
	SegmentPath(title, segmentFile string) (string, error)

	// CreateOutputDir prepares the output location for one source's segments.
	CreateOutputDir(title string) error

	// Publish moves a finished segment to its final location and returns
	// where it ended up. For local storage this is the identity.
	Publish(localPath, title string) (string, error)

	// Open reads back a published segment by the path Publish returned.
	Open(path string) (io.ReadCloser, error)

	Cleanup() error
}

// NewStorage builds the storage backend selected in the configuration.
func NewStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Type {
	case "", "local":
		return NewLocalFileStorage(cfg.Storage.DataDir, cfg.Storage.OutputDir, cfg.Storage.TempDir)
	case "gcs":
		return NewGCSStorage(ctx, cfg.Storage.Bucket, cfg.Storage.ObjectPrefix, cfg.Storage.TempDir, cfg.Storage.CredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}
