// Package extractor converts fetched pages into raw field strings, one
// variant per source site. Variants are plain values behind a common
// capability interface and are selected through a registry keyed by
// source name; orchestration code never knows which site it serves.
package extractor

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alpentrace/harvester/internal/listing"
)

// Extractor is the per-source capability set: discovering listing URLs
// from index pages and extracting raw fields from detail pages.
type Extractor interface {
	// Source is the registry name, also used as the store collection.
	Source() string
	// PageURL returns the URL of the nth listing index page (1-based).
	PageURL(page int) string
	// ListingURLs extracts detail-page URLs from an index page.
	ListingURLs(doc *goquery.Document) []string
	// HasMore reports whether the index page advertises another page.
	HasMore(doc *goquery.Document) bool
	// Fields extracts the raw field strings of one detail page.
	Fields(pageURL string, doc *goquery.Document) (listing.RawRecord, error)
}

var registry = map[string]func() Extractor{
	"luxuryestate":  func() Extractor { return NewLuxuryEstate() },
	"acmimmobilier": func() Extractor { return NewACMImmobilier() },
	"agenceolivier": func() Extractor { return NewAgenceOlivier() },
	"ascensionimmo": func() Extractor { return NewAscensionImmo() },
	"morzineimmo":   func() Extractor { return NewMorzineImmo() },
	"cimalpes":      func() Extractor { return NewCimalpes() },
}

// New returns the extractor registered under source.
func New(source string) (Extractor, error) {
	factory, ok := registry[source]
	if !ok {
		return nil, fmt.Errorf("unknown source %q (known: %s)", source, strings.Join(Sources(), ", "))
	}
	return factory(), nil
}

// Sources lists the registered source names, sorted.
func Sources() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveURL joins a possibly relative href against base.
func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// splitFeature parses a "label : value" pair as rendered by several of
// the target sites.
func splitFeature(text string) (label, value string, ok bool) {
	parts := strings.SplitN(text, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	label = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])
	if label == "" || value == "" {
		return "", "", false
	}
	return label, value, true
}
