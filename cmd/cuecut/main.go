package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jrosser/cuecut/config"
	"github.com/jrosser/cuecut/internal/audio"
	"github.com/jrosser/cuecut/internal/cuesource"
	"github.com/jrosser/cuecut/internal/domain"
	"github.com/jrosser/cuecut/internal/prompt"
	"github.com/jrosser/cuecut/internal/splitter"
	"github.com/jrosser/cuecut/internal/storage"
)

func main() {
	url := flag.String("url", "", "URL of the source audio (required)")
	cueRef := flag.String("cue", "", "Path or URL of the cue sheet")
	lastEnd := flag.String("last-end", "", "End time of the final segment (blank leaves it open-ended)")
	title := flag.String("title", "", "Album title (defaults to the downloaded file name)")
	ext := flag.String("ext", "", "Output file extension")
	interactive := flag.Bool("interactive", false, "Enter segments manually instead of reading a cue sheet")
	configPath := flag.String("config", "./config/config.yaml", "Path to the config file")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *url == "" {
		log.Fatal("Missing required flag: -url")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *ext != "" {
		cfg.FileExtension = *ext
	}

	ctx := context.Background()

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to clean up temporary files: %v\n", err)
		}
	}()

	cueSource := cuesource.NewCompositeSource(
		cuesource.NewFileSource(cfg.CuePath),
		cuesource.NewWebSource(filepath.Join(cfg.Storage.DataDir, "cue_cache")),
	)

	processor := splitter.NewProcessor(cueSource, audio.NewFFMPEGEngine(), store, cfg.FileExtension)

	opts := &splitter.Options{
		URL:             *url,
		CueRef:          *cueRef,
		LastEnd:         *lastEnd,
		Title:           *title,
		ShowProgressBar: true,
	}

	plan, err := buildPlan(ctx, processor, opts, *interactive)
	if err != nil {
		log.Fatal(err)
	}

	results, err := processor.ProcessPlan(ctx, opts, plan, nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\nCut %d segments:\n", len(results))
	for _, path := range results {
		fmt.Println("  " + path)
	}
}

// buildPlan gets the segment plan from the cue sheet, or from the terminal
// when -interactive is set or the cue sheet turns out to be unusable.
func buildPlan(ctx context.Context, processor *splitter.Processor, opts *splitter.Options, interactive bool) (*domain.SegmentPlan, error) {
	if !interactive {
		plan, err := processor.BuildPlan(ctx, opts)
		if err == nil {
			return plan, nil
		}
		fmt.Fprintf(os.Stderr, "Could not build a plan from the cue sheet (%v); switching to interactive entry.\n", err)
	}

	plan, err := prompt.NewSession(os.Stdin, os.Stderr).Run()
	if err != nil {
		return nil, err
	}
	plan.Title = opts.Title
	return plan, nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}
