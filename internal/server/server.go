package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jrosser/cuecut/config"
	"github.com/jrosser/cuecut/internal/audio"
	"github.com/jrosser/cuecut/internal/cuesource"
	"github.com/jrosser/cuecut/internal/domain"
	"github.com/jrosser/cuecut/internal/job"
	"github.com/jrosser/cuecut/internal/progress"
	"github.com/jrosser/cuecut/internal/splitter"
	"github.com/jrosser/cuecut/internal/storage"
)

// ProcessFunc executes an already built segment plan. It exists as a seam so
// handler tests do not need ffmpeg or network access.
type ProcessFunc func(ctx context.Context, opts *splitter.Options, plan *domain.SegmentPlan, tracker *progress.ProgressTracker, fileExtension string) ([]string, error)

// Server handles HTTP requests for the segment cutting service
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	jobManager *job.Manager
	store      storage.Storage
	process    ProcessFunc
}

// New creates a new HTTP server instance
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	router := gin.Default()

	server := &Server{
		cfg:        cfg,
		router:     router,
		jobManager: job.NewManager(),
		store:      store,
	}
	server.process = server.runPlan

	server.setupRoutes()
	return server, nil
}

// runPlan is the default ProcessFunc, backed by a real splitter.
func (s *Server) runPlan(ctx context.Context, opts *splitter.Options, plan *domain.SegmentPlan, tracker *progress.ProgressTracker, fileExtension string) ([]string, error) {
	processor := splitter.NewProcessor(
		cuesource.NewFileSource(s.cfg.CuePath),
		audio.NewFFMPEGEngine(),
		s.store,
		fileExtension,
	)
	return processor.ProcessPlan(ctx, opts, plan, tracker)
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api/v1")
	{
		api.POST("/split", s.startSplit)
		api.GET("/jobs", s.listJobs)
		api.GET("/jobs/:id", s.getJobStatus)
		api.GET("/jobs/:id/download", s.downloadJobResults)
		api.DELETE("/jobs/:id", s.cancelJob)
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.router.Run(":" + s.cfg.Server.Port)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "cuecut",
	})
}
