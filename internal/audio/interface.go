package audio

import (
	"context"

	"github.com/jrosser/cuecut/internal/domain"
)

// Cutter cuts one time range out of a source media file.
type Cutter interface {
	Cut(ctx context.Context, params CutParams) error
}

type CutParams struct {
	InputPath     string
	OutputPath    string
	FileExtension string
	Segment       domain.Segment
	SegmentCount  int
	Album         string
}
