package extractor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alpentrace/harvester/internal/listing"
)

// acmFields maps the site's French feature labels onto canonical field
// names. Loaded once, never mutated during a run.
var acmFields = map[string]string{
	"Surface habitable":     "size",
	"Surface terrain":       "external_size",
	"Nbre de pièces":        "rooms",
	"Chambre":               "bedrooms",
	"Nbre d'étages":         "nb_floor",
	"Exposition":            "view",
	"Année de construction": "year_of_construction",
	"Parking":               "parking",
	"Cave":                  "interior_amenities",
	"Nbre de balcon":        "balcony_count",
	"Terrasse":              "exterior_amenities",
	"Nature chauffage":      "heating",
	"Étage":                 "floor",
	"Ascenseur":             "elevator",
}

// acmBathroomLabels are summed into one bathrooms value; the site
// splits shower rooms and bathrooms into distinct features.
var acmBathroomLabels = map[string]struct{}{
	"Salle d'eau":    {},
	"Salle de bains": {},
}

// ACMImmobilier extracts listings from acm-immobilier.fr.
type ACMImmobilier struct {
	base string
}

// NewACMImmobilier builds the acm-immobilier.fr extractor.
func NewACMImmobilier() *ACMImmobilier {
	return &ACMImmobilier{base: "https://www.acm-immobilier.fr/fr/ventes"}
}

// Source implements Extractor.
func (e *ACMImmobilier) Source() string { return "acmimmobilier" }

// PageURL implements Extractor; the site paginates via a trailing
// page number.
func (e *ACMImmobilier) PageURL(page int) string {
	return fmt.Sprintf("%s/%d", e.base, page)
}

// ListingURLs implements Extractor.
func (e *ACMImmobilier) ListingURLs(doc *goquery.Document) []string {
	var urls []string
	doc.Find("div.filter-vignette a.img_bien").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			urls = append(urls, resolveURL(e.base, href))
		}
	})
	return urls
}

// HasMore implements Extractor.
func (e *ACMImmobilier) HasMore(doc *goquery.Document) bool {
	return doc.Find("ul.pagination.center-align span.waves-effect").Length() > 0
}

// Fields implements Extractor.
func (e *ACMImmobilier) Fields(pageURL string, doc *goquery.Document) (listing.RawRecord, error) {
	raw := listing.RawRecord{"agency": "ACM Immobilier"}

	title := strings.TrimSpace(doc.Find("title").Text())
	if title == "" {
		return nil, fmt.Errorf("missing title on %s", pageURL)
	}
	raw[listing.FieldTitle] = title

	price := strings.TrimSpace(doc.Find("span.prix").Text())
	if price == "" {
		return nil, fmt.Errorf("missing price on %s", pageURL)
	}
	raw[listing.FieldPrice] = price

	ref := strings.TrimSpace(doc.Find("span.reference").Text())
	if ref == "" {
		return nil, fmt.Errorf("missing reference on %s", pageURL)
	}
	raw[listing.FieldReference] = ref

	if v := strings.TrimSpace(doc.Find("div#description").Text()); v != "" {
		raw["description"] = v
	}

	bathrooms := 0
	doc.Find("div.critere-wrapper div").Each(func(_ int, s *goquery.Selection) {
		cells := s.Find("b")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(1).Text())
		if label == "" || value == "" {
			return
		}
		if _, ok := acmBathroomLabels[label]; ok {
			if n, err := strconv.Atoi(value); err == nil {
				bathrooms += n
			}
			return
		}
		if name, ok := acmFields[label]; ok {
			raw[name] = value
		}
	})
	if bathrooms > 0 {
		raw["bathrooms"] = strconv.Itoa(bathrooms)
	}

	return raw, nil
}
