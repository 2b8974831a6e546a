package cueplan

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jrosser/cuecut/internal/domain"
)

// ErrNoSegments indicates the input source yielded zero usable entries. It is
// a terminal outcome the caller must handle, not a builder failure.
var ErrNoSegments = errors.New("no segments found in input")

// ErrEndNotAfterStart indicates a segment whose end does not come after its
// start.
var ErrEndNotAfterStart = errors.New("end time is not after start time")

// Entry is one interactively supplied (start, end, name) triple.
type Entry struct {
	Start string
	End   string
	Name  string
}

// EntryFunc supplies the next interactive triple. Returning ok=false, or an
// Entry with a blank Start, ends the session.
type EntryFunc func() (entry Entry, ok bool)

// RejectFunc receives the validation error for a rejected triple so the
// caller can show the offending value and re-prompt.
type RejectFunc func(err error)

// BuildFromCue assembles a segment plan from cue-sheet lines. Each segment
// ends where the next one starts; the last segment ends at lastEnd when that
// normalizes, and is otherwise left open-ended. A cue entry with an invalid
// start time aborts the build; an invalid lastEnd only costs the final end
// time.
func BuildFromCue(lines []string, lastEnd string) (*domain.SegmentPlan, error) {
	entries, err := ParseCueSheet(lines)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoSegments
	}

	plan := &domain.SegmentPlan{
		Segments: make([]*domain.Segment, 0, len(entries)),
	}

	for i, entry := range entries {
		segment := &domain.Segment{
			Index:     i + 1,
			Name:      entry.Name,
			StartTime: entry.Start,
		}
		if i+1 < len(entries) {
			segment.EndTime = entries[i+1].Start
		}
		plan.Segments = append(plan.Segments, segment)
	}

	if lastEnd != "" {
		end, err := NormalizeTimestamp(strings.TrimSpace(lastEnd))
		if err != nil {
			slog.Warn("Ignoring invalid end time for final segment, leaving it open-ended", "value", lastEnd)
		} else {
			plan.Segments[len(plan.Segments)-1].EndTime = end
		}
	}

	return plan, nil
}

// BuildInteractive assembles a segment plan by pulling (start, end, name)
// triples from next until it signals the end of input or supplies a blank
// start. A triple with an invalid start or end, or whose end is not after
// its start, is rejected through onReject and the same index is offered
// again; accepted triples always carry an explicit end time. Blank names
// default to Part_<index>.
func BuildInteractive(next EntryFunc, onReject RejectFunc) (*domain.SegmentPlan, error) {
	plan := &domain.SegmentPlan{}
	index := 1

	for {
		entry, ok := next()
		if !ok || strings.TrimSpace(entry.Start) == "" {
			break
		}

		start, err := NormalizeTimestamp(strings.TrimSpace(entry.Start))
		if err != nil {
			reject(onReject, err)
			continue
		}

		end, err := NormalizeTimestamp(strings.TrimSpace(entry.End))
		if err != nil {
			reject(onReject, err)
			continue
		}

		if canonicalSeconds(end) <= canonicalSeconds(start) {
			reject(onReject, fmt.Errorf("%w: %s to %s", ErrEndNotAfterStart, start, end))
			continue
		}

		name := strings.TrimSpace(entry.Name)
		if name == "" {
			name = domain.DefaultName(index)
		}

		plan.Segments = append(plan.Segments, &domain.Segment{
			Index:     index,
			Name:      name,
			StartTime: start,
			EndTime:   end,
		})
		index++
	}

	if len(plan.Segments) == 0 {
		return nil, ErrNoSegments
	}

	return plan, nil
}

func reject(onReject RejectFunc, err error) {
	if onReject != nil {
		onReject(err)
	}
}
