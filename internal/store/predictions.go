package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// PredictionURLs returns the natural keys of every stored prediction.
func (s *Store) PredictionURLs(ctx context.Context) ([]string, error) {
	rows, err := s.query(ctx, psql.Select("url").From("predictions"))
	if err != nil {
		return nil, fmt.Errorf("list prediction urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan prediction url: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// InsertPredictions writes the batch in a single transaction. Rows whose URL is
// already present are skipped. It returns the number of rows written; on error
// nothing from the batch is persisted.
func (s *Store) InsertPredictions(ctx context.Context, predictions []Prediction) (int, error) {
	if len(predictions) == 0 {
		return 0, nil
	}
	for _, p := range predictions {
		if strings.TrimSpace(p.URL) == "" {
			return 0, errors.New("insert predictions: url is required")
		}
	}

	now := time.Now()
	var inserted int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		inserted = 0
		for _, p := range predictions {
			createdAt := p.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			query, args, err := psql.Insert("predictions").
				Columns(predictionColumns...).
				Values(predictionValues(p, createdAt)...).
				Suffix("ON CONFLICT(url) DO NOTHING").
				ToSql()
			if err != nil {
				return fmt.Errorf("build insert: %w", err)
			}
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("insert prediction %s: %w", p.URL, err)
			}
			if affected, err := res.RowsAffected(); err == nil {
				inserted += int(affected)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert predictions: %w", err)
	}
	return inserted, nil
}

// ListPredictions returns predictions matching filter, oldest first.
func (s *Store) ListPredictions(ctx context.Context, filter PredictionFilter) ([]Prediction, error) {
	builder := psql.Select(predictionColumns...).From("predictions").OrderBy("id")
	if filter.Published != nil {
		builder = builder.Where(sq.Eq{"published": boolToInt(*filter.Published)})
	}
	if m := strings.TrimSpace(filter.Manufacturer); m != "" {
		builder = builder.Where("manufacturer = ? COLLATE NOCASE", m)
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	rows, err := s.query(ctx, builder)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var out []Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UnpublishedPredictions returns every prediction still awaiting announcement.
func (s *Store) UnpublishedPredictions(ctx context.Context) ([]Prediction, error) {
	unpublished := false
	return s.ListPredictions(ctx, PredictionFilter{Published: &unpublished})
}

// MarkPublished flips the published flag for url. The update only matches an
// unpublished row, so it reports false when the flag was already set.
func (s *Store) MarkPublished(ctx context.Context, url string, at time.Time) (bool, error) {
	res, err := s.exec(ctx, psql.Update("predictions").
		Set("published", 1).
		Set("published_at", formatTime(at)).
		Where(sq.Eq{"url": url, "published": 0}))
	if err != nil {
		return false, fmt.Errorf("mark published %s: %w", url, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark published %s: rows affected: %w", url, err)
	}
	return affected > 0, nil
}

// CountPredictions returns the number of predictions, optionally filtered by flag.
func (s *Store) CountPredictions(ctx context.Context, published *bool) (int, error) {
	builder := psql.Select("COUNT(1)").From("predictions")
	if published != nil {
		builder = builder.Where(sq.Eq{"published": boolToInt(*published)})
	}
	return s.count(ctx, builder)
}
