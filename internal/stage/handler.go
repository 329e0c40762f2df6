package stage

import "context"

// Stage names.
const (
	Scrape  = "scrape"
	Predict = "predict"
	Publish = "publish"
)

// Names lists the pipeline stages in execution order.
var Names = []string{Scrape, Predict, Publish}

// Result is what a stage reports after a run. Counts always carries the
// record totals the stage touched, even on partial success.
type Result struct {
	Message string
	Counts  map[string]int
}

// Runner describes the contract every pipeline stage implements.
type Runner interface {
	Name() string
	Run(context.Context) (Result, error)
	HealthCheck(context.Context) Health
}
