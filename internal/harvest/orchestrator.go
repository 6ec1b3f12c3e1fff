// Package harvest orchestrates one scraping run: URL discovery,
// deterministic partitioning across a bounded worker pool, and the
// fan-in merge of every worker's raw records.
package harvest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alpentrace/harvester/internal/clock"
	"github.com/alpentrace/harvester/internal/extractor"
	"github.com/alpentrace/harvester/internal/fetcher"
	"github.com/alpentrace/harvester/internal/listing"
)

// Config bounds one harvest run.
type Config struct {
	// MaxPages caps paginated discovery so malformed pagination markup
	// cannot loop forever.
	MaxPages int
	// DelayMin/DelayMax bound the randomized polite delay between a
	// worker's requests.
	DelayMin time.Duration
	DelayMax time.Duration
}

// Orchestrator runs discovery and drives the worker pool for one source.
type Orchestrator struct {
	ext    extractor.Extractor
	fetch  fetcher.Fetcher
	cfg    Config
	clock  clock.Clock
	logger *zap.Logger
}

// New constructs an Orchestrator.
func New(
	ext extractor.Extractor,
	fetch fetcher.Fetcher,
	cfg Config,
	clk clock.Clock,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 100
	}
	return &Orchestrator{
		ext:    ext,
		fetch:  fetch,
		cfg:    cfg,
		clock:  clk,
		logger: logger.With(zap.String("source", ext.Source())),
	}
}

// Discover walks the source's listing index pages and returns the
// deduplicated URL set in first-seen order. A page fetch failure ends
// discovery early with whatever was already accumulated; the has-more
// indicator and the page bound both terminate the loop.
func (o *Orchestrator) Discover(ctx context.Context) []string {
	var urls []string
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		if page > o.cfg.MaxPages {
			o.logger.Warn("discovery stopped at page bound", zap.Int("max_pages", o.cfg.MaxPages))
			break
		}
		pageURL := o.ext.PageURL(page)
		o.logger.Info("fetching index page", zap.String("url", pageURL))

		fetched, err := o.fetch.Fetch(ctx, pageURL)
		if err != nil {
			o.logger.Warn("index page fetch failed, stopping discovery",
				zap.String("url", pageURL), zap.Error(err))
			break
		}
		doc, err := fetched.Document()
		if err != nil {
			o.logger.Warn("index page parse failed, stopping discovery",
				zap.String("url", pageURL), zap.Error(err))
			break
		}

		for _, u := range o.ext.ListingURLs(doc) {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		}

		if !o.ext.HasMore(doc) {
			break
		}
	}

	o.logger.Info("discovery finished", zap.Int("urls", len(urls)))
	return urls
}

// Partition splits urls into n disjoint contiguous subsets whose sizes
// differ by at most one, preserving input order within each subset.
// Identical inputs always produce identical assignments.
func Partition(urls []string, n int) [][]string {
	if n <= 0 {
		return nil
	}
	parts := make([][]string, n)
	base := len(urls) / n
	extra := len(urls) % n
	offset := 0
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		parts[i] = urls[offset : offset+size]
		offset += size
	}
	return parts
}

// Run discovers the URL set, partitions it across n workers, runs the
// workers concurrently and merges their output. No ordering is
// guaranteed across workers. A worker's crash is recovered and logged;
// it never discards the other workers' results.
func (o *Orchestrator) Run(ctx context.Context, n int) []listing.RawRecord {
	urls := o.Discover(ctx)
	parts := Partition(urls, n)

	o.logger.Info("deploying workers", zap.Int("workers", n), zap.Int("urls", len(urls)))

	results := make(chan []listing.RawRecord, n)
	var wg sync.WaitGroup
	for i, part := range parts {
		worker := NewWorker(
			fmt.Sprintf("%s_%d", o.ext.Source(), i+1),
			part,
			o.ext,
			o.fetch,
			o.cfg.DelayMin,
			o.cfg.DelayMax,
			o.clock,
			o.logger,
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error("worker crashed, its results are lost",
						zap.String("worker", worker.name),
						zap.Any("panic", r),
					)
				}
			}()
			results <- worker.Run(ctx)
		}()
	}
	wg.Wait()
	close(results)

	var merged []listing.RawRecord
	for batch := range results {
		merged = append(merged, batch...)
	}
	o.logger.Info("run merged", zap.Int("records", len(merged)))
	return merged
}
