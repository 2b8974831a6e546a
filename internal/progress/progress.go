package progress

import (
	"encoding/json"
	"reflect"
	"sync"
	"time"
)

// Stage represents the current stage of processing
type Stage string

const (
	StageInitializing Stage = "initializing"
	StagePlanning     Stage = "planning"
	StageDownloading  Stage = "downloading"
	StageCutting      Stage = "cutting"
	StageComplete     Stage = "complete"
	StageError        Stage = "error"
)

// Event represents a progress event
type Event struct {
	Stage          Stage           `json:"stage"`
	Progress       float64         `json:"progress"`
	Message        string          `json:"message"`
	Timestamp      time.Time       `json:"timestamp"`
	SegmentDetails *SegmentDetails `json:"segmentDetails,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// SegmentDetails contains information about the current segment being cut
type SegmentDetails struct {
	SegmentIndex   int    `json:"segmentIndex"`
	TotalSegments  int    `json:"totalSegments"`
	CurrentSegment string `json:"currentSegment"`
	CutSegments    int    `json:"cutSegments"`
}

// ProgressTracker manages progress tracking
type ProgressTracker struct {
	mu             sync.RWMutex
	stage          Stage
	progress       float64
	message        string
	segmentDetails *SegmentDetails
	error          error
	listeners      []func(Event)
}

// NewProgressTracker creates a new ProgressTracker instance
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		stage:     StageInitializing,
		listeners: make([]func(Event), 0),
	}
}

// AddListener adds a new progress event listener
func (pt *ProgressTracker) AddListener(listener func(Event)) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.listeners = append(pt.listeners, listener)
}

// RemoveListener removes a progress event listener
func (pt *ProgressTracker) RemoveListener(listener func(Event)) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	listenerPtr := reflect.ValueOf(listener).Pointer()
	for i := range pt.listeners {
		if reflect.ValueOf(pt.listeners[i]).Pointer() == listenerPtr {
			pt.listeners = append(pt.listeners[:i], pt.listeners[i+1:]...)
			break
		}
	}
}

// UpdateProgress updates the progress and notifies all listeners
func (pt *ProgressTracker) UpdateProgress(stage Stage, progress float64, message string) {
	pt.mu.Lock()
	pt.stage = stage
	pt.progress = progress
	pt.message = message
	pt.mu.Unlock()

	pt.notifyListeners(Event{
		Stage:     stage,
		Progress:  progress,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// UpdateSegmentProgress updates segment-specific progress
func (pt *ProgressTracker) UpdateSegmentProgress(segmentIndex, totalSegments, cutSegments int, currentSegment string) {
	pt.mu.Lock()
	pt.segmentDetails = &SegmentDetails{
		SegmentIndex:   segmentIndex,
		TotalSegments:  totalSegments,
		CurrentSegment: currentSegment,
		CutSegments:    cutSegments,
	}
	event := Event{
		Stage:          pt.stage,
		Progress:       pt.progress,
		Message:        pt.message,
		Timestamp:      time.Now(),
		SegmentDetails: pt.segmentDetails,
	}
	pt.mu.Unlock()

	pt.notifyListeners(event)
}

// SetError sets an error state and notifies all listeners
func (pt *ProgressTracker) SetError(err error) {
	pt.mu.Lock()
	pt.stage = StageError
	pt.error = err
	event := Event{
		Stage:     StageError,
		Progress:  pt.progress,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Error:     err.Error(),
	}
	pt.mu.Unlock()

	pt.notifyListeners(event)
}

// notifyListeners sends an event to all registered listeners
func (pt *ProgressTracker) notifyListeners(event Event) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	for _, listener := range pt.listeners {
		listener(event)
	}
}

// GetCurrentState returns the current progress state
func (pt *ProgressTracker) GetCurrentState() Event {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	event := Event{
		Stage:          pt.stage,
		Progress:       pt.progress,
		Message:        pt.message,
		Timestamp:      time.Now(),
		SegmentDetails: pt.segmentDetails,
	}
	if pt.error != nil {
		event.Error = pt.error.Error()
	}
	return event
}

// MarshalJSON implements json.Marshaler for Event
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Alias:     (*Alias)(&e),
	})
}

// UnmarshalJSON implements json.Unmarshaler for Event
func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	aux := &struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, aux.Timestamp)
	if err != nil {
		return err
	}
	e.Timestamp = t
	return nil
}
