package logs

import (
	"encoding/json"
	"strings"
)

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Filter selects log lines. Empty fields match everything.
type Filter struct {
	RunID     string
	Stage     string
	EventType string
	MinLevel  string
}

func (f Filter) empty() bool {
	return f.RunID == "" && f.Stage == "" && f.EventType == "" && f.MinLevel == ""
}

// Match reports whether line passes the filter.
func (f Filter) Match(line string) bool {
	if f.empty() {
		return true
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return f.matchText(line)
	}
	if f.RunID != "" && !strings.HasPrefix(field(record, "run_id"), f.RunID) {
		return false
	}
	if f.Stage != "" && !strings.EqualFold(field(record, "stage"), f.Stage) {
		return false
	}
	if f.EventType != "" && field(record, "event_type") != f.EventType {
		return false
	}
	if minRank, ok := levelRank[strings.ToLower(f.MinLevel)]; ok {
		rank, known := levelRank[strings.ToLower(field(record, "level"))]
		if known && rank < minRank {
			return false
		}
	}
	return true
}

// matchText handles console-format lines, which prefix records with
// "[stage runid]" where the run ID is cut to eight characters.
func (f Filter) matchText(line string) bool {
	if f.RunID != "" {
		id := f.RunID
		if len(id) > 8 {
			id = id[:8]
		}
		if !strings.Contains(line, id) {
			return false
		}
	}
	if f.Stage != "" {
		stage := strings.ToLower(f.Stage)
		if !strings.Contains(line, "["+stage+" ") && !strings.Contains(line, "["+stage+"]") {
			return false
		}
	}
	if f.EventType != "" && !strings.Contains(line, "event_type="+f.EventType) {
		return false
	}
	return true
}

func field(record map[string]any, key string) string {
	value, ok := record[key].(string)
	if !ok {
		return ""
	}
	return value
}
