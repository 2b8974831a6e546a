package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalFileStorage implements the Storage interface for local filesystem
type LocalFileStorage struct {
	dataDir   string
	outputDir string
	tempDir   string
}

// NewLocalFileStorage creates a new local file storage instance. Temporary
// files live in a dedicated subdirectory so Cleanup never touches anything
// else in a shared temp location.
func NewLocalFileStorage(dataDir, outputDir, tempDir string) (*LocalFileStorage, error) {
	tempDir = filepath.Join(tempDir, "cuecut")

	// Ensure directories exist
	for _, dir := range []string{dataDir, outputDir, tempDir} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &LocalFileStorage{
		dataDir:   dataDir,
		outputDir: outputDir,
		tempDir:   tempDir,
	}, nil
}

// SourceDir returns the directory downloaded sources are placed in
func (s *LocalFileStorage) SourceDir() string {
	return s.dataDir
}

// SegmentPath returns the path where a cut segment should be written
func (s *LocalFileStorage) SegmentPath(title, segmentFile string) (string, error) {
	outputDir := filepath.Join(s.outputDir, title)
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	return filepath.Join(outputDir, segmentFile), nil
}

// CreateOutputDir creates the output directory for a source's segments
func (s *LocalFileStorage) CreateOutputDir(title string) error {
	return os.MkdirAll(filepath.Join(s.outputDir, title), os.ModePerm)
}

// Publish is a no-op for local storage; segments are already in place
func (s *LocalFileStorage) Publish(localPath, title string) (string, error) {
	return localPath, nil
}

// Open reads back a published segment file
func (s *LocalFileStorage) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Cleanup removes temporary files
func (s *LocalFileStorage) Cleanup() error {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read temp directory: %w", err)
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(s.tempDir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove temp file: %w", err)
		}
	}
	return nil
}
