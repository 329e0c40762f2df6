package store

import "time"

// Disc is one scraped certification record. URL is its natural key.
type Disc struct {
	URL                   string    `json:"url"`
	Manufacturer          string    `json:"manufacturer"`
	Name                  string    `json:"name"`
	ApprovedDate          string    `json:"approved_date"`
	MaxWeight             string    `json:"max_weight"`
	Diameter              string    `json:"diameter"`
	Height                string    `json:"height"`
	RimDepth              string    `json:"rim_depth"`
	RimThickness          string    `json:"rim_thickness"`
	InsideRimDiameter     string    `json:"inside_rim_diameter"`
	RimDepthDiameterRatio string    `json:"rim_depth_diameter_ratio"`
	RimConfig             string    `json:"rim_config"`
	Flexibility           string    `json:"flexibility"`
	CreatedAt             time.Time `json:"-"`
}

// Prediction is a disc enriched with estimated flight numbers.
type Prediction struct {
	Disc
	Speed       int        `json:"SPEED"`
	Glide       int        `json:"GLIDE"`
	Turn        int        `json:"TURN"`
	Fade        int        `json:"FADE"`
	Published   bool       `json:"published"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// PredictionFilter narrows ListPredictions. Zero values match everything.
type PredictionFilter struct {
	Published    *bool
	Manufacturer string
	Limit        int
}

// UsageEntry is one logged trigger request.
type UsageEntry struct {
	Endpoint        string    `json:"endpoint"`
	Method          string    `json:"method"`
	Time            time.Time `json:"time"`
	ResponseCode    int       `json:"response_code"`
	ResponseMessage string    `json:"response_message"`
	ResponseTimeMS  float64   `json:"response_time"`
}

// EndpointUsage aggregates usage entries for a single endpoint.
type EndpointUsage struct {
	Endpoint      string    `json:"endpoint"`
	Count         int       `json:"count"`
	LastRun       time.Time `json:"last_run"`
	AverageTimeMS float64   `json:"average_time"`
}

// Run outcomes.
const (
	OutcomeRunning   = "running"
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Run is the status record of one stage invocation.
type Run struct {
	ID         string         `json:"run_id"`
	Stage      string         `json:"stage"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Outcome    string         `json:"outcome"`
	Message    string         `json:"message"`
	Counts     map[string]int `json:"counts,omitempty"`
}
