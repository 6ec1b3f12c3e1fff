package extractor

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/alpentrace/harvester/internal/listing"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestRegistry(t *testing.T) {
	for _, name := range Sources() {
		ext, err := New(name)
		require.NoError(t, err)
		require.Equal(t, name, ext.Source())
	}

	_, err := New("nosuchsite")
	require.Error(t, err)
}

func TestResolveURL(t *testing.T) {
	require.Equal(t,
		"https://www.acm-immobilier.fr/fr/bien/42",
		resolveURL("https://www.acm-immobilier.fr/fr/ventes", "/fr/bien/42"),
	)
	require.Equal(t,
		"https://elsewhere.example/offer",
		resolveURL("https://www.acm-immobilier.fr/fr/ventes", "https://elsewhere.example/offer"),
	)
}

func TestSplitFeature(t *testing.T) {
	label, value, ok := splitFeature("  Chambres : 3 ")
	require.True(t, ok)
	require.Equal(t, "Chambres", label)
	require.Equal(t, "3", value)

	_, _, ok = splitFeature("pas de séparateur")
	require.False(t, ok)
}

const luxuryDetailHTML = `
<html><body>
<h1 class="serif-light title-property">Chalet Les Gets</h1>
<div class="text-right price" data-role="property-price">2,500,000</div>
<span class="selected value--text" data-role="property-currency-selected">EUR</span>
<span data-role="description-text-content">Grand chalet avec vue.</span>
<div class="agency__name-container"><a>Mountain Agency</a></div>
<div class="general-features">
  <div class="item-inner feat-item"><span class="feat-label">Bedrooms</span><div class="single-value">5</div></div>
  <div class="item-inner feat-item"><span class="feat-label">Size</span><div class="single-value">240 m²</div></div>
  <div class="item-inner feat-item"><span class="feat-label">Helipad</span><div class="single-value">yes</div></div>
</div>
</body></html>`

func TestLuxuryEstateFields(t *testing.T) {
	ext := NewLuxuryEstate()
	raw, err := ext.Fields("https://www.luxuryestate.com/p12345", docFromHTML(t, luxuryDetailHTML))
	require.NoError(t, err)

	require.Equal(t, "Chalet Les Gets", raw[listing.FieldTitle])
	require.Equal(t, "2,500,000", raw[listing.FieldPrice])
	require.Equal(t, "p12345", raw[listing.FieldReference])
	require.Equal(t, "EUR", raw["currency"])
	require.Equal(t, "Mountain Agency", raw["agency"])
	require.Equal(t, "5", raw["bedrooms"])
	require.Equal(t, "240 m²", raw["size"])
	_, unknownKept := raw["Helipad"]
	require.False(t, unknownKept, "labels outside the conversion table must be ignored")
}

func TestLuxuryEstateFieldsRequiresTitle(t *testing.T) {
	ext := NewLuxuryEstate()
	_, err := ext.Fields("https://www.luxuryestate.com/p1", docFromHTML(t, "<html><body></body></html>"))
	require.Error(t, err)
}

const luxuryIndexHTML = `
<html><body><ul>
<li data-role="go-to-detail"><a href="https://www.luxuryestate.com/p1">1</a></li>
<li data-role="go-to-detail"><a href="https://www.luxuryestate.com/p2">2</a></li>
</ul></body></html>`

func TestLuxuryEstateDiscovery(t *testing.T) {
	ext := NewLuxuryEstate()
	doc := docFromHTML(t, luxuryIndexHTML)

	urls := ext.ListingURLs(doc)
	require.Equal(t, []string{"https://www.luxuryestate.com/p1", "https://www.luxuryestate.com/p2"}, urls)
	require.True(t, ext.HasMore(doc))
	require.False(t, ext.HasMore(docFromHTML(t, "<html><body></body></html>")))
	require.Contains(t, ext.PageURL(3), "?pag=3")
}

const acmDetailHTML = `
<html><head><title>Appartement T3 Morzine</title></head><body>
<span class="prix">395 000 €</span>
<span class="reference">ACM-77</span>
<div id="description">Bel appartement au centre.</div>
<div class="critere-wrapper">
  <div><b>Surface habitable</b><b>72 m²</b></div>
  <div><b>Chambre</b><b>2</b></div>
  <div><b>Salle d'eau</b><b>1</b></div>
  <div><b>Salle de bains</b><b>1</b></div>
  <div><b>Ascenseur</b><b>oui</b></div>
  <div><b>Jacuzzi</b><b>non</b></div>
</div>
</body></html>`

func TestACMImmobilierFields(t *testing.T) {
	ext := NewACMImmobilier()
	raw, err := ext.Fields("https://www.acm-immobilier.fr/fr/bien/77", docFromHTML(t, acmDetailHTML))
	require.NoError(t, err)

	require.Equal(t, "Appartement T3 Morzine", raw[listing.FieldTitle])
	require.Equal(t, "395 000 €", raw[listing.FieldPrice])
	require.Equal(t, "ACM-77", raw[listing.FieldReference])
	require.Equal(t, "72 m²", raw["size"])
	require.Equal(t, "2", raw["bedrooms"])
	require.Equal(t, "oui", raw["elevator"])
	require.Equal(t, "2", raw["bathrooms"], "shower rooms and bathrooms are summed")
	_, unknownKept := raw["Jacuzzi"]
	require.False(t, unknownKept)
}

const acmIndexHTML = `
<html><body>
<div class="filter-vignette"><a class="img_bien" href="/fr/bien/1">x</a></div>
<div class="filter-vignette"><a class="img_bien" href="/fr/bien/2">x</a></div>
<ul class="pagination center-align"><span class="waves-effect">2</span></ul>
</body></html>`

func TestACMImmobilierDiscovery(t *testing.T) {
	ext := NewACMImmobilier()
	doc := docFromHTML(t, acmIndexHTML)

	urls := ext.ListingURLs(doc)
	require.Equal(t, []string{
		"https://www.acm-immobilier.fr/fr/bien/1",
		"https://www.acm-immobilier.fr/fr/bien/2",
	}, urls)
	require.True(t, ext.HasMore(doc))
	require.Equal(t, "https://www.acm-immobilier.fr/fr/ventes/4", ext.PageURL(4))

	noMore := docFromHTML(t, `<html><body><ul class="pagination center-align"></ul></body></html>`)
	require.False(t, ext.HasMore(noMore))
}

const olivierDetailHTML = `
<html><body>
<div class="bloc_desc"><h2>Ferme rénovée</h2><p>Ancienne ferme rénovée avec goût.</p></div>
<span class="prix">1 200 000 €</span>
<span class="ref">AO-12</span>
<article class="info_plus_bien">
  <ul>
    <li>Chambres : 4</li>
    <li>Surface habitable : 180 m²</li>
    <li>Ville : Morzine</li>
    <li>Sans séparateur</li>
  </ul>
</article>
</body></html>`

func TestAgenceOlivierFields(t *testing.T) {
	ext := NewAgenceOlivier()
	raw, err := ext.Fields("https://www.agence-olivier.fr/bien-12.html", docFromHTML(t, olivierDetailHTML))
	require.NoError(t, err)

	require.Equal(t, "Ferme rénovée", raw[listing.FieldTitle])
	require.Equal(t, "1 200 000 €", raw[listing.FieldPrice])
	require.Equal(t, "AO-12", raw[listing.FieldReference])
	require.Equal(t, "4", raw["bedrooms"])
	require.Equal(t, "180 m²", raw["size"])
	require.Equal(t, "Morzine", raw["location"])
}

func TestAgenceOlivierSinglePage(t *testing.T) {
	ext := NewAgenceOlivier()
	require.Equal(t, ext.PageURL(1), ext.PageURL(7))
	require.False(t, ext.HasMore(docFromHTML(t, "<html></html>")))
}

const ascensionDetailHTML = `
<html><body>
<div class="property-heading"><h1>Chalet Ascension</h1></div>
<span class="property-price">1 850 000 €</span>
<div class="property-id"><p class="property-info-value">ASC-9</p></div>
<div class="property-description"><div class="ere-property-element">Chalet neuf skis aux pieds.</div></div>
<span class="property_type_cat">Chalet</span>
<div>
  <span>Diagnostic (DPE)</span>
  <span class="property_type_title">DPE
C</span>
</div>
<div>
  <span>Émissions (GES)</span>
  <span class="property_type_title">GES
B</span>
</div>
<div class="property_type_inner">
  <ul>
    <li>Surface : 210 m²</li>
    <li>Chambre : 5</li>
    <li>Garage : 2</li>
    <li>Sans valeur connue : x</li>
  </ul>
</div>
</body></html>`

func TestAscensionImmoFields(t *testing.T) {
	ext := NewAscensionImmo()
	raw, err := ext.Fields("https://www.ascension-immo.com/bien/9/", docFromHTML(t, ascensionDetailHTML))
	require.NoError(t, err)

	require.Equal(t, "Chalet Ascension", raw[listing.FieldTitle])
	require.Equal(t, "1 850 000 €", raw[listing.FieldPrice])
	require.Equal(t, "ASC-9", raw[listing.FieldReference])
	require.Equal(t, "Chalet", raw["type"])
	require.Equal(t, "210 m²", raw["size"])
	require.Equal(t, "5", raw["bedrooms"])
	require.Equal(t, "2", raw["garage"])
	require.Equal(t, "C", raw["energy_performance"], "the rating is the last line of the value span")
	require.Equal(t, "B", raw["greenhouse_emission"])
}

const ascensionIndexHTML = `
<html><body>
<div class="property-item-content"><a href="https://www.ascension-immo.com/bien/1/">1</a></div>
<div class="property-item-content"><a href="/bien/2/">2</a></div>
<a class="next page-numbers" href="#">next</a>
</body></html>`

func TestAscensionImmoDiscovery(t *testing.T) {
	ext := NewAscensionImmo()
	doc := docFromHTML(t, ascensionIndexHTML)

	urls := ext.ListingURLs(doc)
	require.Equal(t, []string{
		"https://www.ascension-immo.com/bien/1/",
		"https://www.ascension-immo.com/bien/2/",
	}, urls)
	require.True(t, ext.HasMore(doc))
	require.False(t, ext.HasMore(docFromHTML(t, "<html></html>")))
	require.Equal(t, "https://www.ascension-immo.com/immobilier-morzine/vente/page3/", ext.PageURL(3))
}

const morzineDetailHTML = `
<html><body>
<h1 class="entry-title">Appartement centre Morzine</h1>
<div class="price">620 000 €</div>
<h3>Description de la propriété</h3>
<p>Appartement rénové proche des pistes.</p>
<div class="property-meta">
  <ul>
    <li>Référence : MZ-41</li>
    <li>Chambres : 3</li>
    <li>Surface Habitable : 95 m²</li>
    <li>Garage double</li>
    <li>Grande terrasse plein sud</li>
    <li>Taxe foncière : 1 200 €</li>
  </ul>
</div>
</body></html>`

func TestMorzineImmoFields(t *testing.T) {
	ext := NewMorzineImmo()
	raw, err := ext.Fields("https://www.morzine-immo.com/fr/bien/41/", docFromHTML(t, morzineDetailHTML))
	require.NoError(t, err)

	require.Equal(t, "Appartement centre Morzine", raw[listing.FieldTitle])
	require.Equal(t, "620 000 €", raw[listing.FieldPrice])
	require.Equal(t, "Référence : MZ-41", raw[listing.FieldReference])
	require.Equal(t, "Appartement rénové proche des pistes.", raw["description"])
	require.Equal(t, "3", raw["bedrooms"])
	require.Equal(t, "95 m²", raw["size"])
	require.Equal(t, "1", raw["garage"], "keyword bullets map to fixed values")
	require.Equal(t, "1", raw["terrace"])
	_, taxKept := raw["taxe"]
	require.False(t, taxKept, "skip-listed bullets are dropped")
}

const morzineIndexHTML = `
<html><body>
<article class="rental-property"><a href="https://www.morzine-immo.com/fr/bien/1/">1</a></article>
<article class="rental-property"><a href="/fr/bien/2/">2</a></article>
<a class="next page-numbers" href="#">suivant</a>
</body></html>`

func TestMorzineImmoDiscovery(t *testing.T) {
	ext := NewMorzineImmo()
	doc := docFromHTML(t, morzineIndexHTML)

	urls := ext.ListingURLs(doc)
	require.Equal(t, []string{
		"https://www.morzine-immo.com/fr/bien/1/",
		"https://www.morzine-immo.com/fr/bien/2/",
	}, urls)
	require.True(t, ext.HasMore(doc))
	require.Equal(t, "https://www.morzine-immo.com/fr/acheter/", ext.PageURL(1))
	require.Equal(t, "https://www.morzine-immo.com/fr/acheter/page/2/", ext.PageURL(2))
}

const cimalpesDetailHTML = `
<html><body>
<h1>Chalet Les Crêtes</h1>
<div class="prix">3 900 000 €</div>
<div class="description-bien">Chalet d'exception avec vue sur les Dents Blanches.</div>
<div class="caracteristiques">
  <ul>
    <li>Surface habitable : 320 m²</li>
    <li>Chambres : 6</li>
    <li>Ascenseur : oui</li>
    <li>Héliport : oui</li>
  </ul>
</div>
</body></html>`

func TestCimalpesFields(t *testing.T) {
	ext := NewCimalpes()
	raw, err := ext.Fields("https://cimalpes.com/fr/bien/chalet-les-cretes", docFromHTML(t, cimalpesDetailHTML))
	require.NoError(t, err)

	require.Equal(t, "Chalet Les Crêtes", raw[listing.FieldTitle])
	require.Equal(t, "3 900 000 €", raw[listing.FieldPrice])
	require.Equal(t, "chalet-les-cretes", raw[listing.FieldReference])
	require.Equal(t, "320 m²", raw["size"])
	require.Equal(t, "6", raw["bedrooms"])
	require.Equal(t, "oui", raw["elevator"])
	_, unknownKept := raw["Héliport"]
	require.False(t, unknownKept)
}

const cimalpesIndexHTML = `
<html><body>
<div class="col-sm-6 col-lg-4 py-4"><a href="/fr/bien/1">1</a></div>
<div class="col-sm-6 col-lg-4 py-4"><a href="/fr/bien/2">2</a></div>
<a class="page-link btn btn-primary pointeur" href="#">2</a>
</body></html>`

func TestCimalpesDiscovery(t *testing.T) {
	ext := NewCimalpes()
	doc := docFromHTML(t, cimalpesIndexHTML)

	urls := ext.ListingURLs(doc)
	require.Equal(t, []string{
		"https://cimalpes.com/fr/bien/1",
		"https://cimalpes.com/fr/bien/2",
	}, urls)
	require.True(t, ext.HasMore(doc))
	require.False(t, ext.HasMore(docFromHTML(t, "<html></html>")))
	require.Equal(t, "https://cimalpes.com/fr/recherche-immobilier/", ext.PageURL(1))
	require.Contains(t, ext.PageURL(4), "page_nb=4")
}
