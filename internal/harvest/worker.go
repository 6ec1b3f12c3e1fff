package harvest

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/alpentrace/harvester/internal/clock"
	"github.com/alpentrace/harvester/internal/extractor"
	"github.com/alpentrace/harvester/internal/fetcher"
	"github.com/alpentrace/harvester/internal/listing"
	"github.com/alpentrace/harvester/internal/metrics"
)

// Worker sequentially harvests its assigned URL subset. Workers share
// no mutable state with each other; the extractor they hold is
// immutable after construction.
type Worker struct {
	name     string
	urls     []string
	ext      extractor.Extractor
	fetch    fetcher.Fetcher
	delayMin time.Duration
	delayMax time.Duration
	clock    clock.Clock
	pauser   pauser
	logger   *zap.Logger
}

// NewWorker constructs a Worker over its immutable URL assignment.
func NewWorker(
	name string,
	urls []string,
	ext extractor.Extractor,
	fetch fetcher.Fetcher,
	delayMin, delayMax time.Duration,
	clk clock.Clock,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		name:     name,
		urls:     urls,
		ext:      ext,
		fetch:    fetch,
		delayMin: delayMin,
		delayMax: delayMax,
		clock:    clk,
		pauser:   timerPauser{},
		logger:   logger.With(zap.String("worker", name)),
	}
}

// Process fetches and extracts one URL. Every failure is contained:
// the URL contributes nothing and Process reports false.
func (w *Worker) Process(ctx context.Context, url string) (listing.RawRecord, bool) {
	page, err := w.fetch.Fetch(ctx, url)
	if err != nil {
		w.logger.Warn("fetch failed, skipping url", zap.String("url", url), zap.Error(err))
		metrics.PageFailed(w.ext.Source())
		return nil, false
	}

	doc, err := page.Document()
	if err != nil {
		w.logger.Warn("page parse failed, skipping url", zap.String("url", url), zap.Error(err))
		metrics.PageFailed(w.ext.Source())
		return nil, false
	}

	raw, err := w.ext.Fields(url, doc)
	if err != nil {
		w.logger.Warn("extraction failed, skipping url", zap.String("url", url), zap.Error(err))
		metrics.PageFailed(w.ext.Source())
		return nil, false
	}
	metrics.PageFetched(w.ext.Source())

	finalURL := page.FinalURL
	if finalURL == "" {
		finalURL = url
	}
	raw[listing.FieldDate] = w.clock.Now().Format("2006-01-02")
	raw[listing.FieldSourceID] = w.name
	raw[listing.FieldURL] = finalURL

	metrics.RecordExtracted(w.ext.Source())
	return raw, true
}

// Run visits the assigned subset in order, applying a randomized polite
// delay between requests. The context is checked between URLs so a
// cancellation takes effect at the next boundary.
func (w *Worker) Run(ctx context.Context) []listing.RawRecord {
	records := make([]listing.RawRecord, 0, len(w.urls))
	for i, url := range w.urls {
		if ctx.Err() != nil {
			w.logger.Info("run canceled", zap.Int("visited", i))
			break
		}
		if i > 0 {
			w.pauser.Pause(ctx, w.politeDelay())
		}
		raw, ok := w.Process(ctx, url)
		if !ok {
			continue
		}
		records = append(records, raw)
	}
	w.logger.Info("worker finished",
		zap.Int("assigned", len(w.urls)),
		zap.Int("extracted", len(records)),
	)
	return records
}

func (w *Worker) politeDelay() time.Duration {
	if w.delayMax <= w.delayMin {
		return w.delayMin
	}
	return w.delayMin + rand.N(w.delayMax-w.delayMin)
}
