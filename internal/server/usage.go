package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"discflight/internal/logging"
	"discflight/internal/store"
)

const maxCapturedBody = 4096

// responseRecorder keeps the status code and the start of the body so the
// usage log can store the response message.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	if room := maxCapturedBody - r.body.Len(); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		r.body.Write(p[:room])
	}
	return r.ResponseWriter.Write(p)
}

// logUsage appends a usage_log entry for every request that reaches next.
func (s *Server) logUsage(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w}
		next(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		entry := store.UsageEntry{
			Endpoint:        route,
			Method:          r.Method,
			Time:            start,
			ResponseCode:    rec.status,
			ResponseMessage: responseMessage(rec.body.Bytes()),
			ResponseTimeMS:  float64(time.Since(start).Microseconds()) / 1000,
		}
		if err := s.store.RecordUsage(context.WithoutCancel(r.Context()), entry); err != nil {
			logging.WarnWithContext(s.log(), "usage log write failed", "usage_log_failed",
				logging.String("route", route),
				logging.String(logging.FieldImpact, "admin usage view will miss this request"),
				logging.Error(err),
			)
		}
	}
}

func responseMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(bytes.TrimSpace(body))
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
