package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// HeadlessConfig controls the browser-backed fetcher.
type HeadlessConfig struct {
	UserAgent         string
	NavigationTimeout time.Duration
}

// HeadlessFetcher renders JavaScript-heavy sources through headless
// Chrome before extraction.
type HeadlessFetcher struct {
	cfg         HeadlessConfig
	allocator   context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// NewHeadlessFetcher creates a chromedp-backed Fetcher.
func NewHeadlessFetcher(cfg HeadlessConfig, logger *zap.Logger) *HeadlessFetcher {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &HeadlessFetcher{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}
}

// Close cancels the allocator context.
func (f *HeadlessFetcher) Close() {
	f.allocCancel()
}

// Fetch navigates with a headless browser and returns the rendered DOM.
func (f *HeadlessFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	taskCtx, taskCancel := chromedp.NewContext(f.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, f.cfg.NavigationTimeout)
	defer cancel()

	var html string
	var finalURL string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(rawURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return Page{}, fmt.Errorf("headless fetch %s: %w", rawURL, err)
	}
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if finalURL == "" {
		finalURL = rawURL
	}

	f.logger.Debug("headless page rendered",
		zap.String("url", rawURL),
		zap.Int("bytes", len(html)),
	)
	return Page{
		URL:        rawURL,
		FinalURL:   finalURL,
		StatusCode: http.StatusOK,
		Body:       []byte(html),
	}, nil
}
