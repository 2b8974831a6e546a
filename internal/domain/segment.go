package domain

import "fmt"

// Segment represents one planned output slice of a source media file.
type Segment struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
	Index     int    `json:"index"`
}

// OpenEnded reports whether the segment runs to the end of the source.
func (s *Segment) OpenEnded() bool {
	return s.EndTime == ""
}

// DefaultName returns the fallback label for a segment at the given
// 1-based position.
func DefaultName(index int) string {
	return fmt.Sprintf("Part_%d", index)
}

// SegmentPlan represents the ordered sequence of segments planned for one
// source file. Index values run 1..N matching slice order.
type SegmentPlan struct {
	Title    string     `json:"title,omitempty"`
	Segments []*Segment `json:"segments"`
}
