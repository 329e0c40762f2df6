package api

import (
	"sort"
	"strings"
	"time"

	"discflight/internal/features"
)

// approvedDateLayout is the source site's approval date format.
const approvedDateLayout = "Jan 2, 2006"

// ParseApprovedDate parses dates such as "Apr 23, 2024".
func ParseApprovedDate(value string) (time.Time, bool) {
	t, err := time.Parse(approvedDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SortByApprovedDate orders predictions newest approval first. Records with
// unparsable dates sort last, by URL.
func SortByApprovedDate(preds []Prediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		ti, okI := ParseApprovedDate(preds[i].ApprovedDate)
		tj, okJ := ParseApprovedDate(preds[j].ApprovedDate)
		switch {
		case okI && okJ:
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return preds[i].URL < preds[j].URL
		case okI != okJ:
			return okI
		default:
			return preds[i].URL < preds[j].URL
		}
	})
}

// DisplayMeasurement strips the unit suffix for tabular output, falling back
// to the raw value (or "-") when nothing numeric remains.
func DisplayMeasurement(raw string) string {
	if v, ok := features.Normalize(raw); ok {
		return v
	}
	if strings.TrimSpace(raw) == "" {
		return "-"
	}
	return strings.TrimSpace(raw)
}
