package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alpentrace/harvester/internal/listing"
)

// agenceOlivierFields maps the site's French feature labels onto
// canonical field names. Loaded once, never mutated during a run.
var agenceOlivierFields = map[string]string{
	"Surface habitable":          "size",
	"Nombre de pièce":            "rooms",
	"Chambres":                   "bedrooms",
	"Salle de bain":              "bathrooms",
	"Parking":                    "parking",
	"Exposition":                 "view",
	"Balcon":                     "balcony_count",
	"Ascenseur":                  "elevator",
	"Ville":                      "location",
	"Etage":                      "floor",
	"Charges de copropriété":     "coownership",
	"Consommations énergétiques": "energy_performance",
	"Émissions de GES":           "greenhouse_emission",
}

// AgenceOlivier extracts listings from agence-olivier.fr. The site
// publishes its whole inventory on a single index page.
type AgenceOlivier struct {
	seed string
}

// NewAgenceOlivier builds the agence-olivier.fr extractor.
func NewAgenceOlivier() *AgenceOlivier {
	return &AgenceOlivier{seed: "https://www.agence-olivier.fr/acheter.html"}
}

// Source implements Extractor.
func (e *AgenceOlivier) Source() string { return "agenceolivier" }

// PageURL implements Extractor; every page number maps to the single
// index page.
func (e *AgenceOlivier) PageURL(int) string { return e.seed }

// ListingURLs implements Extractor.
func (e *AgenceOlivier) ListingURLs(doc *goquery.Document) []string {
	var urls []string
	doc.Find("div.bloc_vente a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			urls = append(urls, resolveURL(e.seed, href))
		}
	})
	return urls
}

// HasMore implements Extractor: the inventory is a single page.
func (e *AgenceOlivier) HasMore(*goquery.Document) bool { return false }

// Fields implements Extractor.
func (e *AgenceOlivier) Fields(pageURL string, doc *goquery.Document) (listing.RawRecord, error) {
	raw := listing.RawRecord{"agency": "Agence Olivier"}

	title := strings.TrimSpace(doc.Find("div.bloc_desc h2").First().Text())
	if title == "" {
		return nil, fmt.Errorf("missing title on %s", pageURL)
	}
	raw[listing.FieldTitle] = title

	price := strings.TrimSpace(doc.Find("span.prix").Text())
	if price == "" {
		return nil, fmt.Errorf("missing price on %s", pageURL)
	}
	raw[listing.FieldPrice] = price

	ref := strings.TrimSpace(doc.Find("span.ref").Text())
	if ref == "" {
		return nil, fmt.Errorf("missing reference on %s", pageURL)
	}
	raw[listing.FieldReference] = ref

	if v := strings.TrimSpace(doc.Find("div.bloc_desc p").First().Text()); v != "" {
		raw["description"] = v
	}

	doc.Find("article.info_plus_bien li").Each(func(_ int, s *goquery.Selection) {
		label, value, ok := splitFeature(s.Text())
		if !ok {
			return
		}
		if name, ok := agenceOlivierFields[label]; ok {
			raw[name] = value
		}
	})

	return raw, nil
}
