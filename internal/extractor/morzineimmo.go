package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alpentrace/harvester/internal/listing"
)

// morzineFields maps the site's labeled features onto canonical field
// names. Loaded once, never mutated during a run.
var morzineFields = map[string]string{
	"Chambres":          "bedrooms",
	"Salle de bain":     "bathrooms",
	"Etages":            "floor",
	"Surface Habitable": "size",
}

// morzineKeywordFeatures covers the site's unlabeled amenity bullets:
// presence of a keyword sets a fixed field value. Checked in order so
// "appartement" wins over a later "chalet" mention.
var morzineKeywordFeatures = []struct {
	keywords []string
	field    string
	value    string
}{
	{[]string{"garage"}, "garage", "1"},
	{[]string{"terrasse"}, "terrace", "1"},
	{[]string{"balcon"}, "balcony_count", "1"},
	{[]string{"apartment", "appartement"}, "type", "Appartement"},
	{[]string{"chalet"}, "type", "Chalet"},
	{[]string{"jardin"}, "garden", "Yes"},
	{[]string{"parking"}, "parking", "1"},
	{[]string{"cave"}, "interior_amenities", "cave"},
}

// morzineSkippedFeatures are bullet keywords with no schema
// counterpart; matching bullets are dropped without a warning.
var morzineSkippedFeatures = []string{
	"référence", "taxe", "sauna", "local", "salon", "buanderie",
	"cinéma", "cabine", "land", "bibliothèque", "séjour", "terrain",
	"entrée", "salle", "mezzanine", "commercial", "bureau", "piscine",
	"master", "dégagement", "studio", "sous-sol",
}

// MorzineImmo extracts listings from morzine-immo.com.
type MorzineImmo struct {
	base string
}

// NewMorzineImmo builds the morzine-immo.com extractor.
func NewMorzineImmo() *MorzineImmo {
	return &MorzineImmo{base: "https://www.morzine-immo.com/fr/acheter/"}
}

// Source implements Extractor.
func (e *MorzineImmo) Source() string { return "morzineimmo" }

// PageURL implements Extractor; the first page is the bare index, the
// rest paginate under page/N/.
func (e *MorzineImmo) PageURL(page int) string {
	if page <= 1 {
		return e.base
	}
	return fmt.Sprintf("%spage/%d/", e.base, page)
}

// ListingURLs implements Extractor.
func (e *MorzineImmo) ListingURLs(doc *goquery.Document) []string {
	var urls []string
	doc.Find("article.rental-property a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			urls = append(urls, resolveURL(e.base, href))
		}
	})
	return urls
}

// HasMore implements Extractor.
func (e *MorzineImmo) HasMore(doc *goquery.Document) bool {
	return doc.Find("a.next.page-numbers").Length() > 0
}

// Fields implements Extractor.
func (e *MorzineImmo) Fields(pageURL string, doc *goquery.Document) (listing.RawRecord, error) {
	raw := listing.RawRecord{"agency": "Morzine Immo"}

	title := strings.TrimSpace(doc.Find("h1.entry-title").Text())
	if title == "" {
		return nil, fmt.Errorf("missing title on %s", pageURL)
	}
	raw[listing.FieldTitle] = title

	price := strings.TrimSpace(doc.Find("div.price").First().Text())
	if price == "" {
		return nil, fmt.Errorf("missing price on %s", pageURL)
	}
	raw[listing.FieldPrice] = price

	ref := e.reference(doc)
	if ref == "" {
		return nil, fmt.Errorf("missing reference on %s", pageURL)
	}
	raw[listing.FieldReference] = ref

	if v := e.description(doc); v != "" {
		raw["description"] = v
	}

	doc.Find("div.property-meta li").Each(func(_ int, s *goquery.Selection) {
		e.applyFeature(raw, s.Text())
	})

	return raw, nil
}

// reference returns the text of the bullet carrying the listing id.
func (e *MorzineImmo) reference(doc *goquery.Document) string {
	var ref string
	doc.Find("li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.Text(), "Référence") {
			ref = strings.TrimSpace(s.Text())
			return false
		}
		return true
	})
	return ref
}

// description returns the paragraph following the description heading.
func (e *MorzineImmo) description(doc *goquery.Document) string {
	var out string
	doc.Find("h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) != "Description de la propriété" {
			return true
		}
		p := s.NextAllFiltered("p").First()
		if p.Length() == 0 {
			p = s.Parent().Find("p").First()
		}
		out = strings.TrimSpace(p.Text())
		return false
	})
	return out
}

// applyFeature handles one amenity bullet: skip list first, then the
// labeled table, then keyword presence.
func (e *MorzineImmo) applyFeature(raw listing.RawRecord, text string) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	for _, useless := range morzineSkippedFeatures {
		if strings.Contains(lowered, useless) {
			return
		}
	}

	if label, value, ok := splitFeature(text); ok {
		if name, ok := morzineFields[label]; ok {
			raw[name] = value
		}
		return
	}

	for _, kw := range morzineKeywordFeatures {
		for _, key := range kw.keywords {
			if strings.Contains(lowered, key) {
				if _, taken := raw[kw.field]; !taken {
					raw[kw.field] = kw.value
				}
				return
			}
		}
	}
}
