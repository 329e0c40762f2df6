package stage_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"discflight/internal/services"
	"discflight/internal/stage"
	"discflight/internal/store"
)

type stubRunner struct {
	result stage.Result
	err    error
	runID  string
	stage  string
}

func (s *stubRunner) Name() string { return "predict" }

func (s *stubRunner) Run(ctx context.Context) (stage.Result, error) {
	s.runID, _ = services.RunIDFromContext(ctx)
	s.stage, _ = services.StageFromContext(ctx)
	return s.result, s.err
}

func (s *stubRunner) HealthCheck(context.Context) stage.Health { return stage.Healthy("predict") }

type memoryRecorder struct {
	runs []store.Run
	err  error
}

func (m *memoryRecorder) RecordRun(_ context.Context, run store.Run) error {
	m.runs = append(m.runs, run)
	return m.err
}

func fixedClock() func() time.Time {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	return func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
}

func TestExecuteRecordsRunningThenSucceeded(t *testing.T) {
	runner := &stubRunner{result: stage.Result{Message: "done", Counts: map[string]int{"predicted": 2}}}
	recorder := &memoryRecorder{}

	run, err := stage.Execute(context.Background(), stage.Options{Recorder: recorder, Runner: runner, Now: fixedClock()})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if run.ID == "" || runner.runID != run.ID {
		t.Fatalf("expected run id propagated through context, run=%q ctx=%q", run.ID, runner.runID)
	}
	if runner.stage != "predict" {
		t.Fatalf("expected stage in context, got %q", runner.stage)
	}
	if len(recorder.runs) != 2 {
		t.Fatalf("expected two status writes, got %d", len(recorder.runs))
	}
	if recorder.runs[0].Outcome != store.OutcomeRunning {
		t.Fatalf("expected first write to be running, got %q", recorder.runs[0].Outcome)
	}
	final := recorder.runs[1]
	if final.Outcome != store.OutcomeSucceeded || final.Message != "done" {
		t.Fatalf("unexpected final record: %+v", final)
	}
	if diff := cmp.Diff(map[string]int{"predicted": 2}, final.Counts); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
	if final.FinishedAt == nil || !final.FinishedAt.After(final.StartedAt) {
		t.Fatalf("expected finished after started: %+v", final)
	}
}

func TestExecuteRecordsFailure(t *testing.T) {
	boom := services.Wrap(services.ErrModelUnavailable, "predict", "list artifacts", "", errors.New("offline"))
	runner := &stubRunner{err: boom, result: stage.Result{Counts: map[string]int{"new": 3}}}
	recorder := &memoryRecorder{}

	run, err := stage.Execute(context.Background(), stage.Options{Recorder: recorder, Runner: runner})
	if !errors.Is(err, services.ErrModelUnavailable) {
		t.Fatalf("expected model unavailable, got %v", err)
	}
	if run.Outcome != store.OutcomeFailed {
		t.Fatalf("expected failed outcome, got %q", run.Outcome)
	}
	if run.Counts["new"] != 3 {
		t.Fatalf("expected partial counts kept, got %v", run.Counts)
	}
}

func TestExecuteIgnoresRecorderFailure(t *testing.T) {
	runner := &stubRunner{result: stage.Result{Message: "ok"}}
	recorder := &memoryRecorder{err: errors.New("disk full")}
	if _, err := stage.Execute(context.Background(), stage.Options{Recorder: recorder, Runner: runner}); err != nil {
		t.Fatalf("recorder failure should not fail the run: %v", err)
	}
}

func TestExecuteRequiresRunner(t *testing.T) {
	if _, err := stage.Execute(context.Background(), stage.Options{}); err == nil {
		t.Fatal("expected error without runner")
	}
}

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"scrape_and_store": "Scrape and store",
		"predict":          "Predict",
		"CREATE_TWEET":     "Create tweet",
		"":                 "",
	}
	for in, want := range cases {
		if got := stage.Label(in); got != want {
			t.Fatalf("Label(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCountsSummarySortsKeys(t *testing.T) {
	got := stage.CountsSummary(map[string]int{"published": 1, "failed": 2})
	if got != "failed=2 published=1" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestExecuteFailureLogsEventAndHint(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	runner := &stubRunner{err: services.Wrap(services.ErrModelUnavailable, "predict", "list artifacts", "no artifacts in storage", nil)}

	if _, err := stage.Execute(context.Background(), stage.Options{Logger: logger, Runner: runner, Now: fixedClock()}); err == nil {
		t.Fatal("expected run error")
	}

	var failure map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if record["event_type"] == "stage_failure" {
			failure = record
		}
	}
	if failure == nil {
		t.Fatalf("expected a stage_failure record in:\n%s", buf.String())
	}
	if failure["level"] != "ERROR" {
		t.Fatalf("expected ERROR level, got %v", failure["level"])
	}
	if failure["error_hint"] != "check model storage and the uploaded artifact" {
		t.Fatalf("unexpected error_hint %v", failure["error_hint"])
	}
}
