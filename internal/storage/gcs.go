package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage implements the Storage interface for Google Cloud Storage.
// Segments are cut into a local temp directory, then uploaded on Publish.
type GCSStorage struct {
	client       *storage.Client
	bucket       string
	tempDir      string
	objectPrefix string
	ctx          context.Context
}

// NewGCSStorage creates a new GCSStorage instance
func NewGCSStorage(ctx context.Context, bucketName, objectPrefix, tempDir, credentialsFile string) (*GCSStorage, error) {
	var client *storage.Client
	var err error

	// Create a client
	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		// Use application default credentials
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	tempDir = filepath.Join(tempDir, "cuecut")
	if err := os.MkdirAll(tempDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &GCSStorage{
		client:       client,
		bucket:       bucketName,
		tempDir:      tempDir,
		objectPrefix: objectPrefix,
		ctx:          ctx,
	}, nil
}

// SourceDir returns the local staging directory downloads are placed in
func (s *GCSStorage) SourceDir() string {
	return s.tempDir
}

// SegmentPath returns a local staging path for a segment; the file is
// uploaded to the bucket when Publish is called
func (s *GCSStorage) SegmentPath(title, segmentFile string) (string, error) {
	outputDir := filepath.Join(s.tempDir, title)
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return filepath.Join(outputDir, segmentFile), nil
}

// CreateOutputDir creates the local staging directory for a source's segments
func (s *GCSStorage) CreateOutputDir(title string) error {
	return os.MkdirAll(filepath.Join(s.tempDir, title), os.ModePerm)
}

// Publish uploads a finished segment to the bucket and returns the object name
func (s *GCSStorage) Publish(localPath, title string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer f.Close()

	objectName := title + "/" + filepath.Base(localPath)
	if s.objectPrefix != "" {
		objectName = s.objectPrefix + "/" + objectName
	}

	ctx, cancel := context.WithTimeout(s.ctx, time.Minute*5)
	defer cancel()

	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		return "", fmt.Errorf("failed to copy file to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return objectName, nil
}

// Open reads back a published segment. Paths under the staging directory are
// read locally; anything else is treated as an object name in the bucket.
func (s *GCSStorage) Open(path string) (io.ReadCloser, error) {
	if strings.HasPrefix(path, s.tempDir) {
		return os.Open(path)
	}

	rc, err := s.client.Bucket(s.bucket).Object(path).NewReader(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", path, err)
	}
	return rc, nil
}

// Cleanup removes the local staging directory
func (s *GCSStorage) Cleanup() error {
	if err := os.RemoveAll(s.tempDir); err != nil {
		return fmt.Errorf("failed to remove staging directory: %w", err)
	}
	return nil
}
