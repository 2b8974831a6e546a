// Package splitter orchestrates the full workflow: fetch cue lines, build a
// segment plan, download the source audio and cut it into per-segment files.
package splitter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/jrosser/cuecut/internal/audio"
	"github.com/jrosser/cuecut/internal/cueplan"
	"github.com/jrosser/cuecut/internal/cuesource"
	"github.com/jrosser/cuecut/internal/domain"
	"github.com/jrosser/cuecut/internal/downloader"
	"github.com/jrosser/cuecut/internal/progress"
	"github.com/jrosser/cuecut/internal/storage"
)

// DownloaderResolver picks a downloader for a URL. Injected so tests can
// avoid real downloads.
type DownloaderResolver func(url string) (downloader.Downloader, error)

type Processor struct {
	cueSource     cuesource.Source
	cutter        audio.Cutter
	store         storage.Storage
	getDownloader DownloaderResolver
	fileExtension string
}

func NewProcessor(
	cueSource cuesource.Source,
	cutter audio.Cutter,
	store storage.Storage,
	fileExtension string,
) *Processor {
	return &Processor{
		cueSource:     cueSource,
		cutter:        cutter,
		store:         store,
		getDownloader: downloader.GetDownloader,
		fileExtension: fileExtension,
	}
}

// WithDownloaderResolver overrides downloader selection.
func (p *Processor) WithDownloaderResolver(resolver DownloaderResolver) *Processor {
	p.getDownloader = resolver
	return p
}

type Options struct {
	// URL of the source audio/video to download.
	URL string

	// CueRef identifies the cue sheet (file path or web URL). Empty means
	// the cue source's default location.
	CueRef string

	// LastEnd optionally closes the final segment.
	LastEnd string

	// Title names the output directory; derived from the downloaded file
	// when empty.
	Title string

	// ShowProgressBar draws a terminal progress bar during cutting.
	ShowProgressBar bool
}

// BuildPlan fetches cue lines and assembles the segment plan without
// touching the network for audio.
func (p *Processor) BuildPlan(ctx context.Context, opts *Options) (*domain.SegmentPlan, error) {
	lines, err := p.cueSource.Lines(ctx, opts.CueRef)
	if err != nil {
		return nil, fmt.Errorf("failed to load cue sheet: %w", err)
	}

	plan, err := cueplan.BuildFromCue(lines, opts.LastEnd)
	if err != nil {
		return nil, err
	}
	plan.Title = opts.Title
	return plan, nil
}

// Process runs the whole workflow and returns the paths of the published
// segment files.
func (p *Processor) Process(ctx context.Context, opts *Options, tracker *progress.ProgressTracker) ([]string, error) {
	updateProgress(tracker, progress.StagePlanning, 0, "Building segment plan")

	plan, err := p.BuildPlan(ctx, opts)
	if err != nil {
		setError(tracker, err)
		return nil, err
	}

	results, err := p.ProcessPlan(ctx, opts, plan, tracker)
	if err != nil {
		setError(tracker, err)
		return nil, err
	}
	return results, nil
}

// ProcessPlan downloads the source and cuts it according to an already built
// plan. Segments are cut one at a time, strictly in plan order.
func (p *Processor) ProcessPlan(ctx context.Context, opts *Options, plan *domain.SegmentPlan, tracker *progress.ProgressTracker) ([]string, error) {
	updateProgress(tracker, progress.StageDownloading, 5, "Downloading source audio")

	dl, err := p.getDownloader(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to get downloader: %w", err)
	}

	sourcePath, err := dl.Download(ctx, opts.URL, p.store.SourceDir())
	if err != nil {
		return nil, fmt.Errorf("failed to download source: %w", err)
	}

	title := plan.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
		plan.Title = title
	}
	title = sanitizeTitle(title)

	if err := p.store.CreateOutputDir(title); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	slog.Info("Cutting segments", "title", title, "segments", len(plan.Segments))
	updateProgress(tracker, progress.StageCutting, 25, "Cutting segments")

	var bar *progressbar.ProgressBar
	if opts.ShowProgressBar {
		bar = progressbar.NewOptions(
			len(plan.Segments),
			progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionFullWidth(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("[cyan][2/2][reset] Cutting segments..."),
		)
	}

	results := make([]string, 0, len(plan.Segments))
	for i, segment := range plan.Segments {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		segmentFile := fmt.Sprintf("%02d - %s.%s", segment.Index, sanitizeTitle(segment.Name), p.fileExtension)
		outputPath, err := p.store.SegmentPath(title, segmentFile)
		if err != nil {
			return nil, err
		}

		cutParams := audio.CutParams{
			InputPath:     sourcePath,
			OutputPath:    outputPath,
			FileExtension: p.fileExtension,
			Segment:       *segment,
			SegmentCount:  len(plan.Segments),
			Album:         title,
		}

		if err := p.cutter.Cut(ctx, cutParams); err != nil {
			return nil, fmt.Errorf("segment %d (%s): %w", segment.Index, segment.Name, err)
		}

		published, err := p.store.Publish(outputPath, title)
		if err != nil {
			return nil, fmt.Errorf("segment %d (%s): %w", segment.Index, segment.Name, err)
		}
		results = append(results, published)

		if bar != nil {
			bar.Add(1)
		}
		if tracker != nil {
			cutting := 25 + float64(i+1)/float64(len(plan.Segments))*74
			tracker.UpdateProgress(progress.StageCutting, cutting, fmt.Sprintf("Cut %d of %d segments", i+1, len(plan.Segments)))
			tracker.UpdateSegmentProgress(segment.Index, len(plan.Segments), i+1, segment.Name)
		}
	}

	updateProgress(tracker, progress.StageComplete, 100, "All segments cut")
	return results, nil
}

func updateProgress(tracker *progress.ProgressTracker, stage progress.Stage, pct float64, message string) {
	if tracker != nil {
		tracker.UpdateProgress(stage, pct, message)
	}
}

func setError(tracker *progress.ProgressTracker, err error) {
	if tracker != nil {
		tracker.SetError(err)
	}
}

func sanitizeTitle(title string) string {
	replacer := strings.NewReplacer("/", "-", ":", "-", "\"", "'", "?", "", "\\", "-", "|", "-")
	return replacer.Replace(title)
}
