package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrosser/cuecut/config"
	"github.com/jrosser/cuecut/internal/domain"
	"github.com/jrosser/cuecut/internal/job"
	"github.com/jrosser/cuecut/internal/progress"
	"github.com/jrosser/cuecut/internal/splitter"
)

func newTestServer(t *testing.T, process ProcessFunc) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	base := t.TempDir()
	cfg := &config.Config{
		FileExtension: "mp3",
		Storage: config.StorageConfig{
			Type:      "local",
			DataDir:   filepath.Join(base, "data"),
			OutputDir: filepath.Join(base, "output"),
			TempDir:   filepath.Join(base, "tmp"),
		},
	}
	cfg.Server.Port = "0"

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	if process != nil {
		s.process = process
	}
	return s
}

func doRequest(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func waitForStatus(t *testing.T, s *Server, jobID, want string) *job.Status {
	t.Helper()
	var got *job.Status
	require.Eventually(t, func() bool {
		js, err := s.jobManager.GetJob(jobID)
		if err != nil {
			return false
		}
		got = js
		return js.Status == want
	}, 2*time.Second, 10*time.Millisecond, "job never reached status %q", want)
	return got
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/health", nil)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestStartSplitInvalidRequest(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodPost, "/api/v1/split", gin.H{"url": "https://example.com/mix.mp3"})

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request")
}

func TestStartSplitMalformedCueLine(t *testing.T) {
	s := newTestServer(t, nil)

	// Matches the cue line shape but has too many timestamp fields.
	w := doRequest(s, http.MethodPost, "/api/v1/split", job.Request{
		URL:      "https://example.com/mix.mp3",
		CueLines: []string{"Allegro 0:00", "Broken 1:02:03:04"},
	})

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "invalid cue sheet")
}

func TestStartSplitNoSegments(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodPost, "/api/v1/split", job.Request{
		URL:      "https://example.com/mix.mp3",
		CueLines: []string{"just chatter", "no timestamps here"},
	})

	assert.Equal(t, 400, w.Code)
}

func TestStartSplitRunsJobToCompletion(t *testing.T) {
	var gotExt string
	process := func(ctx context.Context, opts *splitter.Options, plan *domain.SegmentPlan, tracker *progress.ProgressTracker, ext string) ([]string, error) {
		gotExt = ext
		tracker.UpdateProgress(progress.StageCutting, 50, "Cutting segments")
		return []string{"/out/01 - Allegro.mp3", "/out/02 - Adagio.mp3"}, nil
	}
	s := newTestServer(t, process)

	w := doRequest(s, http.MethodPost, "/api/v1/split", job.Request{
		URL:      "https://example.com/mix.mp3",
		CueLines: []string{"Allegro 0:00", "Adagio 4:15"},
		LastEnd:  "9:02",
		Title:    "Morning Mix",
	})
	require.Equal(t, 202, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	jobID := resp["job_id"].(string)
	assert.Equal(t, float64(2), resp["segments"])

	js := waitForStatus(t, s, jobID, job.StatusCompleted)
	assert.Equal(t, "mp3", gotExt)
	assert.Len(t, js.Results, 2)
	assert.Equal(t, "Morning Mix", js.Plan.Title)
	assert.NotEmpty(t, js.Events)
	assert.NotNil(t, js.EndTime)
}

func TestStartSplitFailedJob(t *testing.T) {
	process := func(ctx context.Context, opts *splitter.Options, plan *domain.SegmentPlan, tracker *progress.ProgressTracker, ext string) ([]string, error) {
		return nil, fmt.Errorf("download failed")
	}
	s := newTestServer(t, process)

	w := doRequest(s, http.MethodPost, "/api/v1/split", job.Request{
		URL:      "https://example.com/mix.mp3",
		CueLines: []string{"Allegro 0:00"},
	})
	require.Equal(t, 202, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	js := waitForStatus(t, s, resp["job_id"].(string), job.StatusFailed)
	assert.Contains(t, js.Error, "download failed")
}

func TestCancelRunningJob(t *testing.T) {
	started := make(chan struct{})
	process := func(ctx context.Context, opts *splitter.Options, plan *domain.SegmentPlan, tracker *progress.ProgressTracker, ext string) ([]string, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	s := newTestServer(t, process)

	w := doRequest(s, http.MethodPost, "/api/v1/split", job.Request{
		URL:      "https://example.com/mix.mp3",
		CueLines: []string{"Allegro 0:00"},
	})
	require.Equal(t, 202, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	jobID := resp["job_id"].(string)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job never started")
	}

	cw := doRequest(s, http.MethodDelete, "/api/v1/jobs/"+jobID, nil)
	assert.Equal(t, 200, cw.Code)

	waitForStatus(t, s, jobID, job.StatusCancelled)
}

func TestCancelUnknownJob(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodDelete, "/api/v1/jobs/nope", nil)
	assert.Equal(t, 404, w.Code)
}

func TestGetJobStatusNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/api/v1/jobs/nope", nil)
	assert.Equal(t, 404, w.Code)
}

func TestListJobsPagination(t *testing.T) {
	s := newTestServer(t, nil)

	for i := 0; i < 15; i++ {
		s.jobManager.CreateJob(domain.SegmentPlan{Title: fmt.Sprintf("plan %d", i)})
	}

	w := doRequest(s, http.MethodGet, "/api/v1/jobs?page=2&page_size=10", nil)
	require.Equal(t, 200, w.Code)

	var resp job.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 15, resp.TotalJobs)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Len(t, resp.Jobs, 5)
}

func TestDownloadJobResults(t *testing.T) {
	s := newTestServer(t, nil)

	dir := t.TempDir()
	paths := make([]string, 0, 2)
	for _, name := range []string{"01 - Allegro.mp3", "02 - Adagio.mp3"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("audio"), 0644))
		paths = append(paths, p)
	}

	js, _ := s.jobManager.CreateJob(domain.SegmentPlan{Title: "Morning Mix"})
	require.NoError(t, s.jobManager.UpdateJob(js.ID, func(j *job.Status) {
		j.Status = job.StatusCompleted
		j.Results = paths
	}))

	w := doRequest(s, http.MethodGet, "/api/v1/jobs/"+js.ID+"/download", nil)
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Morning Mix.zip")

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "01 - Allegro.mp3", zr.File[0].Name)
}

// stubObjectStore serves published segments from memory, the way an object
// store backend returns object names rather than local file paths.
type stubObjectStore struct {
	objects map[string][]byte
}

func (s *stubObjectStore) SourceDir() string                             { return "" }
func (s *stubObjectStore) SegmentPath(title, f string) (string, error)   { return filepath.Join(title, f), nil }
func (s *stubObjectStore) CreateOutputDir(title string) error            { return nil }
func (s *stubObjectStore) Publish(localPath, title string) (string, error) { return localPath, nil }
func (s *stubObjectStore) Cleanup() error                                { return nil }

func (s *stubObjectStore) Open(path string) (io.ReadCloser, error) {
	data, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("no such object: %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestDownloadJobResultsFromObjectStore(t *testing.T) {
	s := newTestServer(t, nil)
	s.store = &stubObjectStore{objects: map[string][]byte{
		"sets/Morning Mix/01 - Allegro.mp3": []byte("audio one"),
		"sets/Morning Mix/02 - Adagio.mp3":  []byte("audio two"),
	}}

	js, _ := s.jobManager.CreateJob(domain.SegmentPlan{Title: "Morning Mix"})
	require.NoError(t, s.jobManager.UpdateJob(js.ID, func(j *job.Status) {
		j.Status = job.StatusCompleted
		j.Results = []string{
			"sets/Morning Mix/01 - Allegro.mp3",
			"sets/Morning Mix/02 - Adagio.mp3",
		}
	}))

	w := doRequest(s, http.MethodGet, "/api/v1/jobs/"+js.ID+"/download", nil)
	require.Equal(t, 200, w.Code)

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "01 - Allegro.mp3", zr.File[0].Name)
}

func TestDownloadMissingObject(t *testing.T) {
	s := newTestServer(t, nil)
	s.store = &stubObjectStore{objects: map[string][]byte{}}

	js, _ := s.jobManager.CreateJob(domain.SegmentPlan{Title: "Morning Mix"})
	require.NoError(t, s.jobManager.UpdateJob(js.ID, func(j *job.Status) {
		j.Status = job.StatusCompleted
		j.Results = []string{"sets/Morning Mix/01 - Allegro.mp3"}
	}))

	w := doRequest(s, http.MethodGet, "/api/v1/jobs/"+js.ID+"/download", nil)
	assert.Equal(t, 500, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")
}

func TestDownloadIncompleteJob(t *testing.T) {
	s := newTestServer(t, nil)

	js, _ := s.jobManager.CreateJob(domain.SegmentPlan{})

	w := doRequest(s, http.MethodGet, "/api/v1/jobs/"+js.ID+"/download", nil)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "not completed")
}
