package preflight

import (
	"context"
	"slices"
	"strings"

	"discflight/internal/config"
	"discflight/internal/model"
	"discflight/internal/stage"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the checks relevant to stages. An empty stage list means
// every stage.
func RunAll(ctx context.Context, cfg *config.Config, stages []string) []Result {
	if cfg == nil {
		return nil
	}
	if len(stages) == 0 {
		stages = stage.Names
	}
	selected := make([]string, 0, len(stages))
	for _, name := range stages {
		selected = append(selected, strings.ToLower(strings.TrimSpace(name)))
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDatabase(ctx, cfg.Paths.Database),
	}

	if slices.Contains(selected, stage.Scrape) {
		results = append(results, CheckSource(ctx, cfg.Scraper.BaseURL+cfg.Scraper.ListPath, cfg.Scraper.UserAgent, cfg.ScraperTimeout()))
	}

	if slices.Contains(selected, stage.Predict) {
		results = append(results, CheckDirectoryAccess("Model directory", cfg.Predictor.ModelDir))
		if err := cfg.ValidateStorage(); err != nil {
			results = append(results, Result{Name: modelBucketCheck, Detail: err.Error()})
		} else if objects, err := model.NewS3Store(cfg.Storage); err != nil {
			results = append(results, Result{Name: modelBucketCheck, Detail: err.Error()})
		} else {
			results = append(results, CheckModelBucket(ctx, objects, cfg.StorageTimeout()))
		}
	}

	if slices.Contains(selected, stage.Publish) {
		results = append(results, CheckPublisher(cfg))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
