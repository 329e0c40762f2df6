package scrape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"discflight/internal/store"
)

var (
	errNoManufacturer = errors.New("manufacturer not found")
	errNoApprovedDate = errors.New("approved date not found")
)

// ListingLinks returns absolute disc page URLs linked from the list page, in
// page order without duplicates. Links carrying query strings are paging or
// filter links and are skipped, as is the list page itself.
func ListingLinks(doc *goquery.Document, baseURL, listPath string) []string {
	baseURL = strings.TrimRight(baseURL, "/")
	listPage := strings.TrimRight(listPath, "/")
	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, listPath) {
			return
		}
		if strings.ContainsAny(href, "?=") {
			return
		}
		if strings.TrimRight(href, "/") == listPage {
			return
		}
		full := baseURL + href
		if _, ok := seen[full]; ok {
			return
		}
		seen[full] = struct{}{}
		links = append(links, full)
	})
	return links
}

// measurement fields keyed by the suffix of their views-field class.
var measurementFields = []struct {
	class string
	set   func(*store.Disc, string)
}{
	{"max-weight", func(d *store.Disc, v string) { d.MaxWeight = v }},
	{"outside-diameter", func(d *store.Disc, v string) { d.Diameter = v }},
	{"height", func(d *store.Disc, v string) { d.Height = v }},
	{"rim-depth", func(d *store.Disc, v string) { d.RimDepth = v }},
	{"rim-thickness", func(d *store.Disc, v string) { d.RimThickness = v }},
	{"inside-rim-diameter", func(d *store.Disc, v string) { d.InsideRimDiameter = v }},
	{"depth-diameter-ratio", func(d *store.Disc, v string) { d.RimDepthDiameterRatio = v }},
	{"rim-config", func(d *store.Disc, v string) { d.RimConfig = v }},
	{"flexibility", func(d *store.Disc, v string) { d.Flexibility = v }},
}

// ParseDisc extracts a disc record from its detail page. Manufacturer and
// approval date are required; measurements that are absent stay empty and
// the names of those fields are returned.
func ParseDisc(doc *goquery.Document, pageURL string) (store.Disc, []string, error) {
	disc := store.Disc{URL: pageURL, Name: NameFromURL(pageURL)}

	disc.Manufacturer = text(doc.Find("div.views-field-field-equipment-manuf-ref span").First())
	if disc.Manufacturer == "" {
		return store.Disc{}, nil, fmt.Errorf("%s: %w", pageURL, errNoManufacturer)
	}
	disc.ApprovedDate = text(doc.Find("span.date-display-single").First())
	if disc.ApprovedDate == "" {
		return store.Disc{}, nil, fmt.Errorf("%s: %w", pageURL, errNoApprovedDate)
	}

	var missing []string
	for _, field := range measurementFields {
		sel := doc.Find("div.views-field-field-disc-" + field.class + " span.field-content").First()
		value := text(sel)
		if value == "" {
			missing = append(missing, field.class)
			continue
		}
		field.set(&disc, value)
	}
	return disc, missing, nil
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
