package server

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jrosser/cuecut/internal/cueplan"
	"github.com/jrosser/cuecut/internal/job"
)

// startSplit accepts a source URL plus cue lines, builds the segment plan up
// front so malformed cues fail fast, and runs the cutting work in the
// background.
func (s *Server) startSplit(c *gin.Context) {
	var req job.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	plan, err := cueplan.BuildFromCue(req.CueLines, req.LastEnd)
	if err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid cue sheet: %v", err)})
		return
	}
	plan.Title = req.Title

	if req.FileExtension == "" {
		req.FileExtension = s.cfg.FileExtension
	}

	jobStatus, ctx := s.jobManager.CreateJob(*plan)

	go s.processInBackground(ctx, jobStatus.ID, req, plan)

	c.JSON(202, gin.H{
		"job_id":   jobStatus.ID,
		"status":   "accepted",
		"message":  "Processing started",
		"segments": len(plan.Segments),
	})
}

// getJobStatus handles job status requests
func (s *Server) getJobStatus(c *gin.Context) {
	jobStatus, err := s.jobManager.GetJob(c.Param("id"))
	if err != nil {
		c.JSON(404, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, jobStatus)
}

// cancelJob handles job cancellation requests
func (s *Server) cancelJob(c *gin.Context) {
	err := s.jobManager.CancelJob(c.Param("id"))
	switch {
	case err == nil:
		c.JSON(200, gin.H{"message": "Job cancelled"})
	case errors.Is(err, job.ErrNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	default:
		c.JSON(400, gin.H{"error": err.Error()})
	}
}

// listJobs handles listing all jobs with pagination
func (s *Server) listJobs(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", job.DefaultPageSize)

	c.JSON(200, s.jobManager.ListJobs(page, pageSize))
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
