package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alpentrace/harvester/internal/listing"
)

// luxuryEstateFields maps the site's feature labels onto canonical
// field names. Loaded once, never mutated during a run.
var luxuryEstateFields = map[string]string{
	"Bedrooms":             "bedrooms",
	"Bathrooms":            "bathrooms",
	"Rooms":                "rooms",
	"Size":                 "size",
	"External size":        "external_size",
	"Floor":                "floor",
	"Terrace":              "terrace",
	"Elevator":             "elevator",
	"Heating":              "heating",
	"Garden":               "garden",
	"Parking":              "parking",
	"View":                 "view",
	"Year of construction": "year_of_construction",
	"Energy performance":   "energy_performance",
	"Condition":            "status",
	"Type":                 "type",
	"Location":             "location",
}

// LuxuryEstate extracts listings from luxuryestate.com.
type LuxuryEstate struct {
	base string
}

// NewLuxuryEstate builds the luxuryestate.com extractor.
func NewLuxuryEstate() *LuxuryEstate {
	return &LuxuryEstate{base: "https://www.luxuryestate.com/france/portes-du-soleil"}
}

// Source implements Extractor.
func (e *LuxuryEstate) Source() string { return "luxuryestate" }

// PageURL implements Extractor; the site paginates via ?pag=N.
func (e *LuxuryEstate) PageURL(page int) string {
	return fmt.Sprintf("%s?pag=%d", e.base, page)
}

// ListingURLs implements Extractor.
func (e *LuxuryEstate) ListingURLs(doc *goquery.Document) []string {
	var urls []string
	doc.Find(`li[data-role="go-to-detail"] a[href]`).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			urls = append(urls, resolveURL(e.base, href))
		}
	})
	return urls
}

// HasMore implements Extractor: pagination ends when a page stops
// yielding listings.
func (e *LuxuryEstate) HasMore(doc *goquery.Document) bool {
	return len(e.ListingURLs(doc)) > 0
}

// Fields implements Extractor.
func (e *LuxuryEstate) Fields(pageURL string, doc *goquery.Document) (listing.RawRecord, error) {
	raw := listing.RawRecord{"agency": "Luxury Estate"}

	title := strings.TrimSpace(doc.Find("h1.serif-light.title-property").Text())
	if title == "" {
		return nil, fmt.Errorf("missing title on %s", pageURL)
	}
	raw[listing.FieldTitle] = title

	price := strings.TrimSpace(doc.Find(`div[data-role="property-price"]`).Text())
	if price == "" {
		return nil, fmt.Errorf("missing price on %s", pageURL)
	}
	raw[listing.FieldPrice] = price

	raw[listing.FieldReference] = referenceFromURL(pageURL)

	if v := strings.TrimSpace(doc.Find(`span[data-role="property-currency-selected"]`).Text()); v != "" {
		raw["currency"] = v
	}
	if v := strings.TrimSpace(doc.Find(`span[data-role="description-text-content"]`).Text()); v != "" {
		raw["description"] = v
	}
	if v := strings.TrimSpace(doc.Find("div.agency__name-container a").Text()); v != "" {
		raw["agency"] = v
	}

	doc.Find("div.general-features div.item-inner.feat-item").Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Find("span.feat-label").Text())
		value := strings.TrimSpace(s.Find("div.single-value").Text())
		if label == "" || value == "" {
			return
		}
		if name, ok := luxuryEstateFields[label]; ok {
			raw[name] = value
		}
	})

	return raw, nil
}

// referenceFromURL derives the source-assigned listing id from the last
// path segment of the canonical URL.
func referenceFromURL(pageURL string) string {
	trimmed := strings.TrimRight(pageURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
