package cuesource

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
)

// WebSource scrapes cue lines out of a web page: tracklist pages, video
// descriptions with chapters, forum posts with timestamps. Scraped lines are
// cached on disk so repeated runs against the same page don't refetch it.
type WebSource struct {
	cacheDir   string
	cacheTTL   time.Duration
	userAgents []string
}

func NewWebSource(cacheDir string) *WebSource {
	return &WebSource{
		cacheDir: cacheDir,
		cacheTTL: 24 * time.Hour,
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
	}
}

func (w *WebSource) Name() string {
	return "web"
}

func (w *WebSource) Lines(ctx context.Context, ref string) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return nil, fmt.Errorf("not a web URL: %s", ref)
	}

	cacheFile := filepath.Join(w.cacheDir, strings.ReplaceAll(ref, "/", "")+".json")

	if w.cacheDir != "" {
		if err := os.MkdirAll(w.cacheDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}

		if cached, err := w.loadFromCache(cacheFile); err == nil {
			slog.Debug("Using cached cue lines", "url", ref)
			return cached, nil
		}
	}

	lines, err := w.scrapeWithColly(ref)
	if err != nil {
		return nil, fmt.Errorf("scraping failed: %w", err)
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("no text lines found at %s", ref)
	}

	if w.cacheDir != "" {
		if err := w.saveToCache(cacheFile, lines); err != nil {
			slog.Warn("Failed to cache cue lines", "error", err)
		}
	}

	return lines, nil
}

func (w *WebSource) scrapeWithColly(url string) ([]string, error) {
	var lines []string

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.MaxDepth(1),
		colly.UserAgent(w.userAgents[rand.Intn(len(w.userAgents))]),
	)
	c.SetRequestTimeout(30 * time.Second)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Connection", "keep-alive")
	})

	c.OnHTML("body", func(e *colly.HTMLElement) {
		// Visible block-level text is the usual home of cue entries. Collect
		// it all; the cue parser decides which lines qualify.
		e.DOM.Find("li, p, td, div, pre").Each(func(_ int, s *goquery.Selection) {
			if s.Children().Length() > 0 {
				return
			}
			for _, line := range strings.Split(s.Text(), "\n") {
				line = strings.TrimSpace(line)
				if line != "" {
					lines = append(lines, line)
				}
			}
		})
	})

	if err := c.Visit(url); err != nil {
		return nil, err
	}

	return lines, nil
}

type cachedLines struct {
	FetchedAt time.Time `json:"fetched_at"`
	Lines     []string  `json:"lines"`
}

func (w *WebSource) loadFromCache(cacheFile string) ([]string, error) {
	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return nil, err
	}

	var cached cachedLines
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	if time.Since(cached.FetchedAt) > w.cacheTTL {
		return nil, fmt.Errorf("cache entry expired")
	}

	return cached.Lines, nil
}

func (w *WebSource) saveToCache(cacheFile string, lines []string) error {
	data, err := json.Marshal(cachedLines{
		FetchedAt: time.Now(),
		Lines:     lines,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(cacheFile, data, 0644)
}
