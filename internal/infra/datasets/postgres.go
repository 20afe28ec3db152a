package datasets

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yanqian/property-valuator/internal/domain/nqs"
)

// PostgresSource reads districts and their per-category scores from Postgres.
//
//	districts(key text primary key, city text, name text, lon double precision, lat double precision, position int)
//	district_scores(district_key text references districts(key), category text, score double precision)
//
// A NULL city or name loads as empty; NULL scores are skipped.
type PostgresSource struct {
	db querier
}

// querier is the subset of *pgxpool.Pool the source reads through.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewPostgresSource constructs the source over a pool or connection.
func NewPostgresSource(db querier) *PostgresSource {
	return &PostgresSource{db: db}
}

// Load implements Source.
func (s *PostgresSource) Load(ctx context.Context) (nqs.Dataset, error) {
	districts, err := s.loadDistricts(ctx)
	if err != nil {
		return nqs.Dataset{}, err
	}
	tables, err := s.loadScores(ctx)
	if err != nil {
		return nqs.Dataset{}, err
	}
	return build(districts, tables)
}

func (s *PostgresSource) loadDistricts(ctx context.Context) ([]nqs.District, error) {
	rows, err := s.db.Query(ctx, `
		SELECT key, COALESCE(city, ''), COALESCE(name, ''), lon, lat
		FROM districts
		ORDER BY position, key
	`)
	if err != nil {
		return nil, fmt.Errorf("query districts: %w", err)
	}
	defer rows.Close()

	var out []nqs.District
	for rows.Next() {
		var d nqs.District
		if err := rows.Scan(&d.Key, &d.City, &d.Name, &d.Lon, &d.Lat); err != nil {
			return nil, fmt.Errorf("scan district: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresSource) loadScores(ctx context.Context) (map[string]map[string]float64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT district_key, category, score
		FROM district_scores
		WHERE score IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("query district scores: %w", err)
	}
	defer rows.Close()

	tables := make(map[string]map[string]float64)
	for rows.Next() {
		var (
			key, category string
			score         float64
		)
		if err := rows.Scan(&key, &category, &score); err != nil {
			return nil, fmt.Errorf("scan district score: %w", err)
		}
		if tables[category] == nil {
			tables[category] = make(map[string]float64)
		}
		tables[category][key] = score
	}
	return tables, rows.Err()
}

var _ Source = (*PostgresSource)(nil)
