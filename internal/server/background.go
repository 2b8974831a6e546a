package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/jrosser/cuecut/internal/domain"
	"github.com/jrosser/cuecut/internal/job"
	"github.com/jrosser/cuecut/internal/progress"
	"github.com/jrosser/cuecut/internal/splitter"
)

// jobTimeout bounds how long a single job may run before it is abandoned.
const jobTimeout = 45 * time.Minute

// processInBackground runs the cutting workflow for a job and keeps the job
// status in sync with the tracker's events.
func (s *Server) processInBackground(ctx context.Context, jobID string, req job.Request, plan *domain.SegmentPlan) {
	slog.Info("Starting background processing", "jobId", jobID, "url", req.URL, "segments", len(plan.Segments))

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	s.updateJob(jobID, func(js *job.Status) {
		js.Status = job.StatusProcessing
		js.Message = "Starting download and cutting"
	})

	tracker := progress.NewProgressTracker()
	tracker.AddListener(func(event progress.Event) {
		s.updateJob(jobID, func(js *job.Status) {
			js.Progress = event.Progress
			js.Message = event.Message
			js.Events = append(js.Events, event)
		})
	})

	opts := &splitter.Options{
		URL:     req.URL,
		LastEnd: req.LastEnd,
		Title:   req.Title,
	}

	results, err := s.process(ctx, opts, plan, tracker, req.FileExtension)

	endTime := time.Now()
	s.updateJob(jobID, func(js *job.Status) {
		js.EndTime = &endTime

		switch {
		case err != nil && ctx.Err() == context.Canceled:
			// CancelJob already set the cancelled state; keep it.
			if js.Status != job.StatusCancelled {
				js.Status = job.StatusCancelled
				js.Message = "Processing was cancelled"
			}
		case err != nil:
			js.Status = job.StatusFailed
			js.Error = err.Error()
			js.Message = "Processing failed"
		default:
			js.Status = job.StatusCompleted
			js.Progress = job.ProgressComplete
			js.Message = "Processing completed successfully"
			js.Results = results
		}
	})

	if err != nil {
		slog.Error("Job finished with error", "jobId", jobID, "error", err)
	} else {
		slog.Info("Job completed", "jobId", jobID, "results", len(results))
	}
}

func (s *Server) updateJob(jobID string, update func(*job.Status)) {
	if err := s.jobManager.UpdateJob(jobID, update); err != nil {
		slog.Error("Failed to update job", "jobId", jobID, "error", err)
	}
}
