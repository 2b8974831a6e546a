package job

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrosser/cuecut/internal/domain"
	"github.com/jrosser/cuecut/internal/progress"
)

func testPlan() domain.SegmentPlan {
	return domain.SegmentPlan{
		Title: "My Mix",
		Segments: []*domain.Segment{
			{Index: 1, Name: "Allegro", StartTime: "00:00:00", EndTime: "00:04:15"},
			{Index: 2, Name: "Finale", StartTime: "00:04:15"},
		},
	}
}

func TestCreateJob(t *testing.T) {
	manager := NewManager()

	job, ctx := manager.CreateJob(testPlan())

	require.NotNil(t, job)
	require.NotNil(t, ctx)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, StatusPending, job.Status)
	assert.Len(t, job.Plan.Segments, 2)

	fetched, err := manager.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, fetched.ID)
}

func TestGetJobNotFound(t *testing.T) {
	manager := NewManager()

	job, err := manager.GetJob("unknown")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, job)
}

func TestCancelJob(t *testing.T) {
	manager := NewManager()

	job, ctx := manager.CreateJob(testPlan())

	require.NoError(t, manager.CancelJob(job.ID))
	assert.Equal(t, StatusCancelled, job.Status)
	assert.NotNil(t, job.EndTime)

	// The job context is cancelled along with the job
	select {
	case <-ctx.Done():
	default:
		t.Fatal("expected job context to be cancelled")
	}

	// Cancelling again is an invalid state transition
	err := manager.CancelJob(job.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateJob(t *testing.T) {
	manager := NewManager()

	job, _ := manager.CreateJob(testPlan())

	err := manager.UpdateJob(job.ID, func(s *Status) {
		s.Status = StatusProcessing
		s.Progress = 50
	})
	require.NoError(t, err)

	fetched, err := manager.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, fetched.Status)
	assert.Equal(t, float64(50), fetched.Progress)

	assert.ErrorIs(t, manager.UpdateJob("unknown", func(s *Status) {}), ErrNotFound)
}

func TestListJobsPagination(t *testing.T) {
	manager := NewManager()

	for i := 0; i < 25; i++ {
		manager.CreateJob(testPlan())
	}

	resp := manager.ListJobs(1, 10)
	assert.Len(t, resp.Jobs, 10)
	assert.Equal(t, 25, resp.TotalJobs)
	assert.Equal(t, 3, resp.TotalPages)

	resp = manager.ListJobs(3, 10)
	assert.Len(t, resp.Jobs, 5)

	resp = manager.ListJobs(4, 10)
	assert.Empty(t, resp.Jobs)

	// Out-of-range page size falls back to the default
	resp = manager.ListJobs(1, 1000)
	assert.Len(t, resp.Jobs, DefaultPageSize)
}

func TestGetJobSnapshotIsIndependent(t *testing.T) {
	manager := NewManager()
	job, _ := manager.CreateJob(testPlan())

	snapshot, err := manager.GetJob(job.ID)
	require.NoError(t, err)

	require.NoError(t, manager.UpdateJob(job.ID, func(s *Status) {
		s.Status = StatusProcessing
		s.Events = append(s.Events, progress.Event{Message: "downloading"})
	}))

	// The earlier snapshot is unaffected by the update
	assert.Equal(t, StatusPending, snapshot.Status)
	assert.Empty(t, snapshot.Events)
}

func TestConcurrentUpdateAndMarshal(t *testing.T) {
	manager := NewManager()
	job, _ := manager.CreateJob(testPlan())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = manager.UpdateJob(job.ID, func(s *Status) {
				s.Progress = float64(i)
				s.Message = fmt.Sprintf("update %d", i)
				s.Events = append(s.Events, progress.Event{Message: s.Message})
			})
		}
	}()

	for i := 0; i < 500; i++ {
		fetched, err := manager.GetJob(job.ID)
		require.NoError(t, err)
		_, err = json.Marshal(fetched)
		require.NoError(t, err)

		_, err = json.Marshal(manager.ListJobs(1, 10))
		require.NoError(t, err)
	}

	wg.Wait()
}
