package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RecordUsage appends a trigger request to the usage log.
func (s *Store) RecordUsage(ctx context.Context, entry UsageEntry) error {
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	_, err := s.exec(ctx, psql.Insert("usage_log").
		Columns("endpoint", "method", "time", "response_code", "response_message", "response_time_ms").
		Values(entry.Endpoint, entry.Method, formatTime(entry.Time), entry.ResponseCode, entry.ResponseMessage, entry.ResponseTimeMS))
	if err != nil {
		return fmt.Errorf("record usage %s %s: %w", entry.Method, entry.Endpoint, err)
	}
	return nil
}

// UsageEntries returns logged requests newest first. A limit of zero returns all.
func (s *Store) UsageEntries(ctx context.Context, limit int) ([]UsageEntry, error) {
	builder := psql.Select("endpoint", "method", "time", "response_code", "response_message", "response_time_ms").
		From("usage_log").
		OrderBy("time DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	rows, err := s.query(ctx, builder)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	defer rows.Close()

	var entries []UsageEntry
	for rows.Next() {
		var (
			entry UsageEntry
			ts    string
		)
		if err := rows.Scan(&entry.Endpoint, &entry.Method, &ts, &entry.ResponseCode, &entry.ResponseMessage, &entry.ResponseTimeMS); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		entry.Time, _ = parseTime(ts)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// UsageSummary aggregates the usage log per endpoint. Average response time is
// rounded to two decimals.
func (s *Store) UsageSummary(ctx context.Context) ([]EndpointUsage, error) {
	rows, err := s.query(ctx, psql.Select("endpoint", "COUNT(1)", "MAX(time)", "AVG(response_time_ms)").
		From("usage_log").
		GroupBy("endpoint").
		OrderBy("endpoint"))
	if err != nil {
		return nil, fmt.Errorf("summarize usage: %w", err)
	}
	defer rows.Close()

	var out []EndpointUsage
	for rows.Next() {
		var (
			item    EndpointUsage
			lastRun string
			avg     sql.NullFloat64
		)
		if err := rows.Scan(&item.Endpoint, &item.Count, &lastRun, &avg); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		item.LastRun, _ = parseTime(lastRun)
		if avg.Valid {
			item.AverageTimeMS = round2(avg.Float64)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
