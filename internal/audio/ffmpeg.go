// Package audio cuts segments out of audio files using FFmpeg invoked as an
// external process.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Supported audio file extensions and their corresponding FFmpeg codecs and formats
var (
	supportedExtensions = map[string]struct {
		codec  string
		format string
	}{
		"mp3":  {"libmp3lame", "mp3"},
		"m4a":  {"aac", "mp4"},
		"wav":  {"pcm_s16le", "wav"},
		"flac": {"flac", "flac"},
	}

	// Default audio settings
	defaultAudioBitrate = "128k"
	defaultID3Version   = "3"
)

var (
	ErrFileNotFound     = fmt.Errorf("file not found")
	ErrFileEmpty        = fmt.Errorf("file is empty")
	ErrInvalidPath      = fmt.Errorf("invalid path")
	ErrInvalidExtension = fmt.Errorf("invalid file extension")
)

// ffmpegError wraps FFmpeg command errors with additional context
type ffmpegError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *ffmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *ffmpegError) Unwrap() error {
	return e.wrapped
}

// newFFmpegError creates a new ffmpegError with truncated command output
func newFFmpegError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	return &ffmpegError{
		cmd:     cmdStr,
		output:  string(output),
		wrapped: err,
	}
}

type ffmpeg struct{}

func NewFFMPEGEngine() *ffmpeg {
	return &ffmpeg{}
}

func (f *ffmpeg) validateFile(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("unable to access file: %s: %w", path, err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrFileEmpty, path)
	}

	return nil
}

// sanitizePath ensures the path is safe and returns an absolute path
func (f *ffmpeg) sanitizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	// Allow temporary files (system temp directory)
	tempDir := os.TempDir()
	if tempDir != "" {
		absTempDir, err := filepath.Abs(tempDir)
		if err == nil && strings.HasPrefix(absPath, absTempDir) {
			return absPath, nil
		}
	}

	// Allow paths within the working directory
	baseDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	if strings.HasPrefix(absPath, baseDir) {
		return absPath, nil
	}

	// Check for path traversal attempts
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("%w: path contains '..' which is not allowed", ErrInvalidPath)
	}

	// For output directories, allow if they're absolute paths without traversal
	if filepath.IsAbs(path) && !strings.Contains(path, "..") {
		return absPath, nil
	}

	return "", fmt.Errorf("%w: path must be within the working directory or a safe absolute path", ErrInvalidPath)
}

// Cut extracts one segment from the input file. An open-ended segment runs to
// the end of the source; no duration flag is passed to FFmpeg in that case.
func (f *ffmpeg) Cut(ctx context.Context, params CutParams) error {
	if err := f.validateFile(params.InputPath); err != nil {
		return fmt.Errorf("segment cutting failed: %w", err)
	}

	codecInfo, ok := supportedExtensions[strings.ToLower(params.FileExtension)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidExtension, params.FileExtension)
	}

	sanitizedOutputPath, err := f.sanitizePath(params.OutputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	startSeconds, err := timeToSeconds(params.Segment.StartTime)
	if err != nil {
		return fmt.Errorf("error parsing start time for segment %d: %w", params.Segment.Index, err)
	}

	var duration float64
	if !params.Segment.OpenEnded() {
		endSeconds, err := timeToSeconds(params.Segment.EndTime)
		if err != nil {
			return fmt.Errorf("error parsing end time for segment %d: %w", params.Segment.Index, err)
		}
		duration = endSeconds - startSeconds
		if duration <= 0 {
			return fmt.Errorf("segment %d has non-positive duration (%s to %s)",
				params.Segment.Index, params.Segment.StartTime, params.Segment.EndTime)
		}
	}

	outputDir := filepath.Dir(sanitizedOutputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	slog.Debug("Cutting audio segment",
		"input", params.InputPath,
		"output", sanitizedOutputPath,
		"start", fmt.Sprintf("%.3f", startSeconds),
		"duration", fmt.Sprintf("%.3f", duration),
	)

	args := []string{
		"-y",
		"-i", params.InputPath,
		"-ss", fmt.Sprintf("%.3f", startSeconds),
	}

	if duration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", duration))
	}

	args = append(args,
		"-map", "0:a",
		"-c:a", codecInfo.codec,
		"-f", codecInfo.format,
		"-b:a", defaultAudioBitrate,
		"-af", "aresample=async=1",
		"-movflags", "+faststart",
		"-id3v2_version", defaultID3Version,
	)

	// Tag the output so players order the segments correctly
	metadata := map[string]string{
		"title": params.Segment.Name,
		"track": fmt.Sprintf("%d/%d", params.Segment.Index, params.SegmentCount),
	}
	if params.Album != "" {
		metadata["album"] = params.Album
	}
	for k, v := range metadata {
		args = append(args, "-metadata", fmt.Sprintf("%s=%s", k, v))
	}

	args = append(args, sanitizedOutputPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newFFmpegError(cmd, output, err)
	}

	return nil
}
