package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// InsertDisc stores a scraped disc unless its URL is already present.
// It reports whether a new row was written.
func (s *Store) InsertDisc(ctx context.Context, disc Disc) (bool, error) {
	if strings.TrimSpace(disc.URL) == "" {
		return false, errors.New("insert disc: url is required")
	}
	createdAt := disc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := s.exec(ctx, psql.Insert("discs").
		Columns(discColumns...).
		Values(discValues(disc, createdAt)...).
		Suffix("ON CONFLICT(url) DO NOTHING"))
	if err != nil {
		return false, fmt.Errorf("insert disc %s: %w", disc.URL, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert disc %s: rows affected: %w", disc.URL, err)
	}
	return affected > 0, nil
}

// ListDiscs returns every scraped disc in insertion order.
func (s *Store) ListDiscs(ctx context.Context) ([]Disc, error) {
	rows, err := s.query(ctx, psql.Select(discColumns...).From("discs").OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list discs: %w", err)
	}
	defer rows.Close()

	var discs []Disc
	for rows.Next() {
		disc, err := scanDisc(rows)
		if err != nil {
			return nil, fmt.Errorf("scan disc: %w", err)
		}
		discs = append(discs, disc)
	}
	return discs, rows.Err()
}

// CountDiscs returns the number of stored discs.
func (s *Store) CountDiscs(ctx context.Context) (int, error) {
	return s.count(ctx, psql.Select("COUNT(1)").From("discs"))
}

func (s *Store) count(ctx context.Context, builder sq.SelectBuilder) (int, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ensureContext(ctx), query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
