package store

import (
	"database/sql"
	"errors"
	"math"
	"time"
)

// timeLayout is fixed width so lexical ordering in SQL matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var discColumns = []string{
	"url", "manufacturer", "name", "approved_date", "max_weight", "diameter", "height",
	"rim_depth", "rim_thickness", "inside_rim_diameter", "rim_depth_diameter_ratio",
	"rim_config", "flexibility", "created_at",
}

var predictionColumns = append(append([]string{}, discColumns...),
	"speed", "glide", "turn", "fade", "published", "published_at")

func discValues(d Disc, createdAt time.Time) []any {
	return []any{
		d.URL, d.Manufacturer, d.Name, d.ApprovedDate, d.MaxWeight, d.Diameter, d.Height,
		d.RimDepth, d.RimThickness, d.InsideRimDiameter, d.RimDepthDiameterRatio,
		d.RimConfig, d.Flexibility, formatTime(createdAt),
	}
}

func predictionValues(p Prediction, createdAt time.Time) []any {
	values := discValues(p.Disc, createdAt)
	return append(values, p.Speed, p.Glide, p.Turn, p.Fade, boolToInt(p.Published), nullableTime(p.PublishedAt))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func discTargets(d *Disc, created *string) []any {
	return []any{
		&d.URL, &d.Manufacturer, &d.Name, &d.ApprovedDate, &d.MaxWeight, &d.Diameter, &d.Height,
		&d.RimDepth, &d.RimThickness, &d.InsideRimDiameter, &d.RimDepthDiameterRatio,
		&d.RimConfig, &d.Flexibility, created,
	}
}

func scanDisc(scanner rowScanner) (Disc, error) {
	var (
		d       Disc
		created string
	)
	if err := scanner.Scan(discTargets(&d, &created)...); err != nil {
		return Disc{}, err
	}
	d.CreatedAt, _ = parseTime(created)
	return d, nil
}

func scanPrediction(scanner rowScanner) (Prediction, error) {
	var (
		p           Prediction
		created     string
		published   int
		publishedAt sql.NullString
	)
	targets := append(discTargets(&p.Disc, &created), &p.Speed, &p.Glide, &p.Turn, &p.Fade, &published, &publishedAt)
	if err := scanner.Scan(targets...); err != nil {
		return Prediction{}, err
	}
	p.CreatedAt, _ = parseTime(created)
	p.Disc.CreatedAt = p.CreatedAt
	p.Published = published != 0
	if publishedAt.Valid {
		if ts, err := parseTime(publishedAt.String); err == nil {
			p.PublishedAt = &ts
		}
	}
	return p, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTime(*value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(timeLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
