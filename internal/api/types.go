package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// MessageResponse is a plain status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse reports a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TriggerResponse is returned by a successful stage trigger.
type TriggerResponse struct {
	Message string         `json:"message"`
	RunID   string         `json:"run_id"`
	Counts  map[string]int `json:"counts"`
}

// RunStatus is the last-run record of a stage.
type RunStatus struct {
	RunID      string         `json:"run_id"`
	Stage      string         `json:"stage"`
	Outcome    string         `json:"outcome"`
	Message    string         `json:"message,omitempty"`
	StartedAt  string         `json:"started_at"`
	FinishedAt string         `json:"finished_at,omitempty"`
	DurationMS int64          `json:"duration_ms,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"`
}

// Prediction mirrors a persisted prediction record.
type Prediction struct {
	URL                   string `json:"url"`
	Manufacturer          string `json:"manufacturer"`
	Name                  string `json:"name"`
	ApprovedDate          string `json:"approved_date"`
	MaxWeight             string `json:"max_weight"`
	Diameter              string `json:"diameter"`
	Height                string `json:"height"`
	RimDepth              string `json:"rim_depth"`
	RimThickness          string `json:"rim_thickness"`
	InsideRimDiameter     string `json:"inside_rim_diameter"`
	RimDepthDiameterRatio string `json:"rim_depth_diameter_ratio"`
	RimConfig             string `json:"rim_config"`
	Flexibility           string `json:"flexibility"`
	Speed                 int    `json:"SPEED"`
	Glide                 int    `json:"GLIDE"`
	Turn                  int    `json:"TURN"`
	Fade                  int    `json:"FADE"`
	Published             bool   `json:"published"`
	CreatedAt             string `json:"created_at,omitempty"`
	PublishedAt           string `json:"published_at,omitempty"`
}

// PredictionListResponse wraps a prediction listing.
type PredictionListResponse struct {
	Count       int          `json:"count"`
	Predictions []Prediction `json:"predictions"`
}

// EndpointUsage aggregates trigger calls per endpoint.
type EndpointUsage struct {
	Endpoint      string  `json:"endpoint"`
	Count         int     `json:"count"`
	LastRun       string  `json:"last_run,omitempty"`
	AverageTimeMS float64 `json:"average_time"`
}

// UsageEntry is one logged trigger call.
type UsageEntry struct {
	Endpoint        string  `json:"endpoint"`
	Method          string  `json:"method"`
	Time            string  `json:"time"`
	ResponseCode    int     `json:"response_code"`
	ResponseMessage string  `json:"response_message"`
	ResponseTimeMS  float64 `json:"response_time"`
}

// AdminResponse is the admin usage view.
type AdminResponse struct {
	Endpoints []EndpointUsage `json:"endpoints"`
	Log       []UsageEntry    `json:"log"`
}

// StageHealth mirrors readiness reporting for a stage.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}
