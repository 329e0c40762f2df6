package api

import (
	"time"

	"discflight/internal/stage"
	"discflight/internal/store"
)

// FromRun converts a run-status record.
func FromRun(run store.Run) RunStatus {
	dto := RunStatus{
		RunID:     run.ID,
		Stage:     run.Stage,
		Outcome:   run.Outcome,
		Message:   run.Message,
		StartedAt: formatTime(run.StartedAt),
		Counts:    run.Counts,
	}
	if run.FinishedAt != nil {
		dto.FinishedAt = formatTime(*run.FinishedAt)
		dto.DurationMS = run.FinishedAt.Sub(run.StartedAt).Milliseconds()
	}
	return dto
}

// FromPrediction converts a stored prediction.
func FromPrediction(p store.Prediction) Prediction {
	dto := Prediction{
		URL:                   p.URL,
		Manufacturer:          p.Manufacturer,
		Name:                  p.Name,
		ApprovedDate:          p.ApprovedDate,
		MaxWeight:             p.MaxWeight,
		Diameter:              p.Diameter,
		Height:                p.Height,
		RimDepth:              p.RimDepth,
		RimThickness:          p.RimThickness,
		InsideRimDiameter:     p.InsideRimDiameter,
		RimDepthDiameterRatio: p.RimDepthDiameterRatio,
		RimConfig:             p.RimConfig,
		Flexibility:           p.Flexibility,
		Speed:                 p.Speed,
		Glide:                 p.Glide,
		Turn:                  p.Turn,
		Fade:                  p.Fade,
		Published:             p.Published,
		CreatedAt:             formatTime(p.CreatedAt),
	}
	if p.PublishedAt != nil {
		dto.PublishedAt = formatTime(*p.PublishedAt)
	}
	return dto
}

// FromPredictions converts a listing. The result is never nil.
func FromPredictions(preds []store.Prediction) PredictionListResponse {
	out := make([]Prediction, 0, len(preds))
	for _, p := range preds {
		out = append(out, FromPrediction(p))
	}
	return PredictionListResponse{Count: len(out), Predictions: out}
}

// FromUsage converts the usage summary and log for the admin view.
func FromUsage(summary []store.EndpointUsage, entries []store.UsageEntry) AdminResponse {
	resp := AdminResponse{
		Endpoints: make([]EndpointUsage, 0, len(summary)),
		Log:       make([]UsageEntry, 0, len(entries)),
	}
	for _, s := range summary {
		resp.Endpoints = append(resp.Endpoints, EndpointUsage{
			Endpoint:      s.Endpoint,
			Count:         s.Count,
			LastRun:       formatTime(s.LastRun),
			AverageTimeMS: s.AverageTimeMS,
		})
	}
	for _, e := range entries {
		resp.Log = append(resp.Log, UsageEntry{
			Endpoint:        e.Endpoint,
			Method:          e.Method,
			Time:            formatTime(e.Time),
			ResponseCode:    e.ResponseCode,
			ResponseMessage: e.ResponseMessage,
			ResponseTimeMS:  e.ResponseTimeMS,
		})
	}
	return resp
}

// FromHealth converts a stage health record.
func FromHealth(h stage.Health) StageHealth {
	return StageHealth{Name: h.Name, Ready: h.Ready, Detail: h.Detail}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
