package cuesource

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// FileSource reads cue lines from a local text file. When ref is empty it
// falls back to the configured default path.
type FileSource struct {
	defaultPath string
}

func NewFileSource(defaultPath string) *FileSource {
	return &FileSource{defaultPath: defaultPath}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Lines(ctx context.Context, ref string) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path := ref
	if path == "" {
		path = f.defaultPath
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return nil, fmt.Errorf("not a local file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cue file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cue file: %w", err)
	}

	return lines, nil
}
