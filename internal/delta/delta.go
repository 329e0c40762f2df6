// Package delta selects source records that have not been processed yet.
package delta

import "discflight/internal/store"

// Select returns the discs whose URL is not in processed, preserving source
// order. It builds a set from processed once, so the cost is O(len(source) +
// len(processed)). The result is empty, not nil-with-error, when nothing is new.
func Select(source []store.Disc, processed []string) []store.Disc {
	seen := make(map[string]struct{}, len(processed))
	for _, url := range processed {
		seen[url] = struct{}{}
	}
	fresh := make([]store.Disc, 0)
	for _, disc := range source {
		if _, ok := seen[disc.URL]; ok {
			continue
		}
		fresh = append(fresh, disc)
	}
	return fresh
}

// URLs returns the natural keys of discs in order.
func URLs(discs []store.Disc) []string {
	out := make([]string, len(discs))
	for i, d := range discs {
		out[i] = d.URL
	}
	return out
}
