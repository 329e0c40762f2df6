package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// RecordRun inserts or updates the status record for run.ID.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" || strings.TrimSpace(run.Stage) == "" {
		return errors.New("record run: id and stage are required")
	}
	var counts any
	if len(run.Counts) > 0 {
		data, err := json.Marshal(run.Counts)
		if err != nil {
			return fmt.Errorf("encode run counts: %w", err)
		}
		counts = string(data)
	}
	_, err := s.exec(ctx, psql.Insert("runs").
		Columns("id", "stage", "started_at", "finished_at", "outcome", "message", "counts_json").
		Values(run.ID, run.Stage, formatTime(run.StartedAt), nullableTime(run.FinishedAt), run.Outcome, run.Message, counts).
		Suffix("ON CONFLICT(id) DO UPDATE SET finished_at = excluded.finished_at, outcome = excluded.outcome, message = excluded.message, counts_json = excluded.counts_json"))
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// LastRun returns the most recently started run for stage, or nil when the
// stage has never run.
func (s *Store) LastRun(ctx context.Context, stage string) (*Run, error) {
	query, args, err := psql.Select("id", "stage", "started_at", "finished_at", "outcome", "message", "counts_json").
		From("runs").
		Where(sq.Eq{"stage": stage}).
		OrderBy("started_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build last run query: %w", err)
	}

	var (
		run      Run
		started  string
		finished sql.NullString
		counts   sql.NullString
	)
	err = s.db.QueryRowContext(ensureContext(ctx), query, args...).
		Scan(&run.ID, &run.Stage, &started, &finished, &run.Outcome, &run.Message, &counts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last run %s: %w", stage, err)
	}
	run.StartedAt, _ = parseTime(started)
	if finished.Valid {
		if ts, err := parseTime(finished.String); err == nil {
			run.FinishedAt = &ts
		}
	}
	if counts.Valid && counts.String != "" {
		if err := json.Unmarshal([]byte(counts.String), &run.Counts); err != nil {
			return nil, fmt.Errorf("decode run counts: %w", err)
		}
	}
	return &run, nil
}
