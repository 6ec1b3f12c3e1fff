package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alpentrace/harvester/internal/listing"
)

// ascensionFields maps the site's French feature labels onto canonical
// field names. Loaded once, never mutated during a run.
var ascensionFields = map[string]string{
	"Surface":          "size",
	"Chambre":          "bedrooms",
	"Nombre de pièces": "rooms",
	"Nombre d'étages":  "nb_floor",
	"Salle de bains":   "bathrooms",
	"Parking":          "parking",
	"Copropriété":      "coownership",
	"Chauffage":        "heating",
	"Garage":           "garage",
	"Exposition":       "view",
}

// AscensionImmo extracts listings from ascension-immo.com.
type AscensionImmo struct {
	base string
}

// NewAscensionImmo builds the ascension-immo.com extractor.
func NewAscensionImmo() *AscensionImmo {
	return &AscensionImmo{base: "https://www.ascension-immo.com/immobilier-morzine/vente/page"}
}

// Source implements Extractor.
func (e *AscensionImmo) Source() string { return "ascensionimmo" }

// PageURL implements Extractor; the site appends the page number to
// the index path.
func (e *AscensionImmo) PageURL(page int) string {
	return fmt.Sprintf("%s%d/", e.base, page)
}

// ListingURLs implements Extractor.
func (e *AscensionImmo) ListingURLs(doc *goquery.Document) []string {
	var urls []string
	doc.Find("div.property-item-content a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			urls = append(urls, resolveURL(e.base, href))
		}
	})
	return urls
}

// HasMore implements Extractor.
func (e *AscensionImmo) HasMore(doc *goquery.Document) bool {
	return doc.Find("a.next.page-numbers").Length() > 0
}

// Fields implements Extractor.
func (e *AscensionImmo) Fields(pageURL string, doc *goquery.Document) (listing.RawRecord, error) {
	raw := listing.RawRecord{"agency": "Ascension Immobilier"}

	title := strings.TrimSpace(doc.Find("div.property-heading h1").Text())
	if title == "" {
		return nil, fmt.Errorf("missing title on %s", pageURL)
	}
	raw[listing.FieldTitle] = title

	price := strings.TrimSpace(doc.Find("span.property-price").Text())
	if price == "" {
		return nil, fmt.Errorf("missing price on %s", pageURL)
	}
	raw[listing.FieldPrice] = price

	ref := strings.TrimSpace(doc.Find("div.property-id p.property-info-value").Text())
	if ref == "" {
		return nil, fmt.Errorf("missing reference on %s", pageURL)
	}
	raw[listing.FieldReference] = ref

	if v := strings.TrimSpace(doc.Find("div.property-description div.ere-property-element").Text()); v != "" {
		raw["description"] = v
	}
	if v := strings.TrimSpace(doc.Find("span.property_type_cat").First().Text()); v != "" {
		raw["type"] = v
	}
	if v := featureAfterMarker(doc, "(DPE)"); v != "" {
		raw["energy_performance"] = v
	}
	if v := featureAfterMarker(doc, "(GES)"); v != "" {
		raw["greenhouse_emission"] = v
	}

	doc.Find("div.property_type_inner li").Each(func(_ int, s *goquery.Selection) {
		label, value, ok := splitFeature(s.Text())
		if !ok {
			return
		}
		if name, ok := ascensionFields[label]; ok {
			raw[name] = value
		}
	})

	return raw, nil
}

// featureAfterMarker finds the span mentioning marker and returns the
// last line of the value span that follows it. The site renders its
// energy ratings this way instead of in the feature list.
func featureAfterMarker(doc *goquery.Document, marker string) string {
	var out string
	doc.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(s.Text(), marker) {
			return true
		}
		value := s.NextAllFiltered("span.property_type_title").First()
		if value.Length() == 0 {
			value = s.Parent().Find("span.property_type_title").First()
		}
		lines := strings.Split(strings.TrimSpace(value.Text()), "\n")
		out = strings.TrimSpace(lines[len(lines)-1])
		return false
	})
	return out
}
