// Package downloader provides functionality for downloading audio files from
// various sources. Video platform URLs go through yt-dlp; plain audio URLs
// are fetched directly over HTTP.
package downloader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// Default timeout for downloads
	defaultDownloadTimeout = 30 * time.Minute

	// Minimum file size to consider a download valid (100KB)
	minValidFileSize = 100 * 1024

	// Supported audio file extensions
	supportedAudioExtensions = ".mp3,.m4a,.wav,.flac,.opus"
)

// Error types for better error handling
var (
	ErrYtDlpNotAvailable = fmt.Errorf("yt-dlp not available")
	ErrNoAudioFiles      = fmt.Errorf("no audio files found")
	ErrFileTooSmall      = fmt.Errorf("file too small")
	ErrDownloadTimeout   = fmt.Errorf("download timeout")
)

// Hosts whose URLs are handed to yt-dlp. Anything else that is still
// http(s) falls through to the plain HTTP downloader.
var ytDlpHosts = []string{
	"youtube.com",
	"youtu.be",
	"soundcloud.com",
	"vimeo.com",
	"mixcloud.com",
	"twitch.tv",
}

// YtDlpDownloader extracts audio from video URLs using yt-dlp
type YtDlpDownloader struct {
	timeout time.Duration
}

// NewYtDlpDownloader creates a new yt-dlp based downloader
func NewYtDlpDownloader() *YtDlpDownloader {
	return &YtDlpDownloader{
		timeout: defaultDownloadTimeout,
	}
}

// SupportsURL checks if the URL belongs to a platform yt-dlp handles
func (d *YtDlpDownloader) SupportsURL(url string) bool {
	for _, host := range ytDlpHosts {
		if strings.Contains(url, host) {
			return true
		}
	}
	return false
}

// Download extracts the audio track from the given URL into outputDir and
// returns the path of the downloaded file.
func (d *YtDlpDownloader) Download(ctx context.Context, url, outputDir string) (string, error) {
	slog.Info("Downloading audio", "url", url, "outputDir", outputDir)

	if err := d.checkYtDlpAvailable(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"--no-playlist",
		"--output", filepath.Join(outputDir, "%(title)s.%(ext)s"),
		"--force-overwrites",
		url,
	}

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)

	slog.Debug("Executing yt-dlp command", "args", args)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			slog.Error("yt-dlp command failed",
				"error", err,
				"stderr", stderrBuf.String(),
			)
			return "", fmt.Errorf("yt-dlp download failed: %w\nstderr: %s", err, stderrBuf.String())
		}
	case <-ctx.Done():
		slog.Warn("Context cancelled, killing yt-dlp process", "pid", cmd.Process.Pid)
		if err := cmd.Process.Kill(); err != nil {
			slog.Error("Failed to kill process after context cancellation", "error", err)
		}
		return "", ctx.Err()
	case <-time.After(d.timeout):
		slog.Error("Download timeout reached", "timeout", d.timeout, "pid", cmd.Process.Pid)
		if err := cmd.Process.Kill(); err != nil {
			slog.Error("Failed to kill process after timeout", "error", err)
		}
		return "", fmt.Errorf("%w: %v", ErrDownloadTimeout, d.timeout)
	}

	downloadedFile, err := d.findDownloadedFile(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to find downloaded file: %w", err)
	}

	if err := d.validateAudioFile(downloadedFile); err != nil {
		return "", fmt.Errorf("downloaded file validation failed: %w", err)
	}

	slog.Info("Successfully downloaded audio", "file", downloadedFile)
	return downloadedFile, nil
}

// checkYtDlpAvailable verifies that yt-dlp is installed and available
func (d *YtDlpDownloader) checkYtDlpAvailable() error {
	cmd := exec.Command("yt-dlp", "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrYtDlpNotAvailable, err)
	}
	return nil
}

// findDownloadedFile finds the most recently downloaded audio file in the directory
func (d *YtDlpDownloader) findDownloadedFile(outputDir string) (string, error) {
	audioExtensions := strings.Split(supportedAudioExtensions, ",")
	var mostRecentFile string
	var mostRecentTime time.Time

	err := filepath.Walk(outputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		for _, audioExt := range audioExtensions {
			if ext == audioExt {
				if info.ModTime().After(mostRecentTime) {
					mostRecentTime = info.ModTime()
					mostRecentFile = path
				}
				break
			}
		}

		return nil
	})

	if err != nil {
		return "", fmt.Errorf("error scanning output directory: %w", err)
	}

	if mostRecentFile == "" {
		return "", fmt.Errorf("%w: in directory %s", ErrNoAudioFiles, outputDir)
	}

	return mostRecentFile, nil
}

// validateAudioFile checks if the downloaded file is a valid audio file
func (d *YtDlpDownloader) validateAudioFile(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Size() == 0 {
		return fmt.Errorf("%w: file is empty", ErrFileTooSmall)
	}

	if info.Size() < minValidFileSize {
		return fmt.Errorf("%w: file size %d bytes is less than minimum %d bytes",
			ErrFileTooSmall, info.Size(), minValidFileSize)
	}

	return nil
}
