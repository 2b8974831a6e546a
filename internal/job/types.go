package job

import (
	"context"
	"time"

	"github.com/jrosser/cuecut/internal/domain"
	"github.com/jrosser/cuecut/internal/progress"
)

// Constants for job status
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Constants for progress percentages
const (
	ProgressDownloadStart = 0
	ProgressDownloadEnd   = 25
	ProgressCuttingStart  = 25
	ProgressCuttingEnd    = 99
	ProgressComplete      = 100
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Status represents the current state of a processing job.
type Status struct {
	ID         string             `json:"id"`
	Status     string             `json:"status"`
	Progress   float64            `json:"progress"`
	Message    string             `json:"message"`
	Error      string             `json:"error,omitempty"`
	Results    []string           `json:"results,omitempty"`
	Events     []progress.Event   `json:"events"`
	StartTime  time.Time          `json:"start_time"`
	EndTime    *time.Time         `json:"end_time,omitempty"`
	Plan       domain.SegmentPlan `json:"plan"`
	cancelFunc context.CancelFunc
}

// Request represents the request body for splitting a source URL.
type Request struct {
	URL           string   `json:"url" binding:"required"`
	CueLines      []string `json:"cue_lines" binding:"required"`
	LastEnd       string   `json:"last_end"`
	Title         string   `json:"title"`
	FileExtension string   `json:"file_extension"`
}

// Response represents the response for job status listings.
type Response struct {
	Jobs       []*Status `json:"jobs"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalJobs  int       `json:"total_jobs"`
	TotalPages int       `json:"total_pages"`
}
