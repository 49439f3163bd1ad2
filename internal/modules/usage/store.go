package usage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles model_usage persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Insert writes one entry. Nil token counts are stored as NULL.
func (s *Store) Insert(ctx context.Context, e Entry) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO model_usage
			(id, model_id, provider, latency_ms, input_tokens, output_tokens, cost_micro_usd, cached, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.ModelID, e.Provider, e.LatencyMs, e.InputTokens, e.OutputTokens, e.CostMicroUSD, e.Cached, e.CreatedAt)
	return err
}

// Summary aggregates entries created at or after since, one row per model.
func (s *Store) Summary(ctx context.Context, since time.Time) ([]ModelSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT
			model_id,
			provider,
			COUNT(*)::bigint,
			COUNT(*) FILTER (WHERE cached)::bigint,
			COALESCE(AVG(latency_ms) FILTER (WHERE NOT cached), 0)::float8,
			COALESCE(SUM(input_tokens), 0)::bigint,
			COALESCE(SUM(output_tokens), 0)::bigint,
			COALESCE(SUM(cost_micro_usd), 0)::bigint
		FROM model_usage
		WHERE created_at >= $1
		GROUP BY model_id, provider
		ORDER BY model_id
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ModelSummary
	for rows.Next() {
		var m ModelSummary
		if err := rows.Scan(&m.ModelID, &m.Provider, &m.Calls, &m.CachedCalls, &m.AvgLatencyMs,
			&m.InputTokens, &m.OutputTokens, &m.CostMicroUSD); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
