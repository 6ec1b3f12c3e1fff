// Package fetcher retrieves listing pages. The harvester core treats
// retrieval as a port: failures are values, never unhandled faults.
package fetcher

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Page is one fetched listing page.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
}

// Document parses the page body for selector-based extraction.
func (p Page) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.URL, err)
	}
	return doc, nil
}

// Fetcher retrieves one URL. Implementations must return an error for
// non-2xx responses so callers can treat any failure uniformly.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}
