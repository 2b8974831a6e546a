// Package cuesource loads raw cue-sheet lines from local files or web pages.
// The lines are free-form text; internal/cueplan decides which of them are
// usable cue entries.
package cuesource

import (
	"context"
	"fmt"
)

// Source yields the raw lines of a cue sheet identified by ref.
type Source interface {
	Lines(ctx context.Context, ref string) ([]string, error)
	Name() string
}

// CompositeSource tries multiple sources in sequence until one succeeds
type CompositeSource struct {
	sources []Source
}

func NewCompositeSource(sources ...Source) *CompositeSource {
	return &CompositeSource{sources: sources}
}

func (c *CompositeSource) Name() string {
	return "composite"
}

func (c *CompositeSource) Lines(ctx context.Context, ref string) ([]string, error) {
	var errs []error
	for _, source := range c.sources {
		lines, err := source.Lines(ctx, ref)
		if err == nil {
			return lines, nil
		}
		errs = append(errs, fmt.Errorf("%s: %v", source.Name(), err))
	}
	return nil, fmt.Errorf("all cue sources failed: %v", errs)
}
