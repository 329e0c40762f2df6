package scrape

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// NameFromURL derives a display name from the last path segment of a disc
// page URL, e.g. ".../discs/star-destroyer" becomes "Star Destroyer".
func NameFromURL(raw string) string {
	p := raw
	if parsed, err := url.Parse(raw); err == nil {
		p = parsed.Path
	}
	last := path.Base(strings.TrimRight(p, "/"))
	if last == "." || last == "/" {
		return ""
	}
	words := strings.Split(last, "-")
	out := words[:0]
	for _, w := range words {
		if w == "" {
			continue
		}
		out = append(out, titleCaser.String(w))
	}
	return strings.Join(out, " ")
}
