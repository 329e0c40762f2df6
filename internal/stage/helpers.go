package stage

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Label turns a stage or endpoint name such as "scrape_and_store" into a
// display label ("Scrape and store").
func Label(name string) string {
	parts := strings.Fields(strings.ReplaceAll(strings.TrimSpace(name), "_", " "))
	if len(parts) == 0 {
		return ""
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	runes := []rune(parts[0])
	runes[0] = unicode.ToUpper(runes[0])
	parts[0] = string(runes)
	return strings.Join(parts, " ")
}

// CountsSummary renders counts as "k=v" pairs in key order.
func CountsSummary(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(counts[k]))
	}
	return b.String()
}
