package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alpentrace/harvester/internal/listing"
)

// cimalpesFields maps the site's French feature labels onto canonical
// field names. Loaded once, never mutated during a run.
var cimalpesFields = map[string]string{
	"Surface habitable":     "size",
	"Surface terrain":       "external_size",
	"Chambres":              "bedrooms",
	"Salles de bains":       "bathrooms",
	"Pièces":                "rooms",
	"Étage":                 "floor",
	"Exposition":            "view",
	"Chauffage":             "heating",
	"Terrasse":              "terrace",
	"Ascenseur":             "elevator",
	"Année de construction": "year_of_construction",
}

// Cimalpes extracts listings from cimalpes.com.
type Cimalpes struct {
	base string
}

// NewCimalpes builds the cimalpes.com extractor.
func NewCimalpes() *Cimalpes {
	return &Cimalpes{base: "https://cimalpes.com/fr/recherche-immobilier/"}
}

// Source implements Extractor.
func (e *Cimalpes) Source() string { return "cimalpes" }

// PageURL implements Extractor; the first page is the bare search, the
// rest paginate through the page_nb query parameter.
func (e *Cimalpes) PageURL(page int) string {
	if page <= 1 {
		return e.base
	}
	return fmt.Sprintf("%s?&rtype=achat&page_nb=%d&chambre=-1/", e.base, page)
}

// ListingURLs implements Extractor.
func (e *Cimalpes) ListingURLs(doc *goquery.Document) []string {
	var urls []string
	doc.Find("div.col-sm-6.col-lg-4.py-4 a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			urls = append(urls, resolveURL(e.base, href))
		}
	})
	return urls
}

// HasMore implements Extractor.
func (e *Cimalpes) HasMore(doc *goquery.Document) bool {
	return doc.Find("a.page-link.btn.btn-primary.pointeur").Length() > 0
}

// Fields implements Extractor.
func (e *Cimalpes) Fields(pageURL string, doc *goquery.Document) (listing.RawRecord, error) {
	raw := listing.RawRecord{"agency": "Cimalpes"}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		return nil, fmt.Errorf("missing title on %s", pageURL)
	}
	raw[listing.FieldTitle] = title

	price := strings.TrimSpace(doc.Find("div.prix").First().Text())
	if price == "" {
		return nil, fmt.Errorf("missing price on %s", pageURL)
	}
	raw[listing.FieldPrice] = price

	raw[listing.FieldReference] = referenceFromURL(pageURL)

	if v := strings.TrimSpace(doc.Find("div.description-bien").Text()); v != "" {
		raw["description"] = v
	}

	doc.Find("div.caracteristiques li").Each(func(_ int, s *goquery.Selection) {
		label, value, ok := splitFeature(s.Text())
		if !ok {
			return
		}
		if name, ok := cimalpesFields[label]; ok {
			raw[name] = value
		}
	})

	return raw, nil
}
