package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"discflight/internal/api"
	"discflight/internal/logging"
	"discflight/internal/services"
	"discflight/internal/stage"
	"discflight/internal/store"
)

const adminLogLimit = 500

// instrument tags the request with a correlation ID and counts it.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(services.WithRequestID(r.Context(), requestID))

		rec := &responseRecorder{ResponseWriter: w}
		next(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.metrics.observeRequest(route, rec.status)
	}
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	// The run outlives a client that hangs up mid-request.
	ctx := context.WithoutCancel(r.Context())
	started := time.Now()
	run, err := stage.Execute(ctx, stage.Options{
		Logger:   logging.WithContext(ctx, s.logger),
		Recorder: s.store,
		Runner:   s.runner,
	})
	outcome := run.Outcome
	if outcome == "" {
		outcome = store.OutcomeFailed
	}
	s.metrics.observeRun(outcome, time.Since(started), run.Counts)

	if err != nil {
		s.writeError(w, services.HTTPStatus(err), err.Error())
		return
	}
	counts := run.Counts
	if counts == nil {
		counts = map[string]int{}
	}
	s.writeJSON(w, http.StatusOK, api.TriggerResponse{
		Message: run.Message,
		RunID:   run.ID,
		Counts:  counts,
	})
}

func (s *Server) handleLastRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.LastRun(r.Context(), s.runner.Name())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.writeJSON(w, http.StatusOK, api.MessageResponse{
			Message: fmt.Sprintf("%s endpoint has not been called yet.", s.routes.Label),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromRun(*run))
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.UsageSummary(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	limit := adminLogLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	entries, err := s.store.UsageEntries(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromUsage(summary, entries))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.runner.HealthCheck(r.Context())
	status := http.StatusOK
	if !health.Ready {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, api.FromHealth(health))
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.PredictionFilter{Manufacturer: strings.TrimSpace(query.Get("manufacturer"))}
	if raw := strings.TrimSpace(query.Get("published")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "published must be true or false")
			return
		}
		filter.Published = &v
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	preds, err := s.store.ListPredictions(r.Context(), filter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromPredictions(preds))
}
