package server

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/jrosser/cuecut/internal/job"
)

// downloadJobResults streams all cut segments of a completed job as a single
// ZIP archive. Segments are read back through the storage backend, so this
// works for published GCS objects as well as local files.
func (s *Server) downloadJobResults(c *gin.Context) {
	jobStatus, err := s.jobManager.GetJob(c.Param("id"))
	if err != nil {
		c.JSON(404, gin.H{"error": err.Error()})
		return
	}

	if jobStatus.Status != job.StatusCompleted {
		c.JSON(400, gin.H{"error": fmt.Sprintf("job is %s, not completed", jobStatus.Status)})
		return
	}
	if len(jobStatus.Results) == 0 {
		c.JSON(404, gin.H{"error": "job has no results"})
		return
	}

	// Validate every segment before writing headers; once the stream starts
	// there is no way to report a clean error.
	for i, path := range jobStatus.Results {
		rc, err := s.store.Open(path)
		if err != nil {
			c.JSON(500, gin.H{"error": fmt.Sprintf("segment %d is unavailable: %s", i+1, filepath.Base(path))})
			return
		}
		rc.Close()
	}

	archiveName := jobStatus.Plan.Title
	if archiveName == "" {
		archiveName = jobStatus.ID
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, archiveName))

	zw := zip.NewWriter(c.Writer)
	defer zw.Close()

	for _, path := range jobStatus.Results {
		if err := s.addSegmentToZip(zw, path); err != nil {
			// Headers are already sent; log via gin's error list and stop.
			_ = c.Error(err)
			return
		}
	}
}

func (s *Server) addSegmentToZip(zw *zip.Writer, path string) error {
	rc, err := s.store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer rc.Close()

	entry, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create zip entry for %s: %w", filepath.Base(path), err)
	}

	if _, err := io.Copy(entry, rc); err != nil {
		return fmt.Errorf("failed to write %s to zip: %w", filepath.Base(path), err)
	}
	return nil
}
