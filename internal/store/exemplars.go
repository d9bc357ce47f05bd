package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AddExemplar indexes a text for Search. Duplicate bodies are ignored.
func (s *Store) AddExemplar(ctx context.Context, body, source string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO exemplars (id, body, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (body) DO NOTHING`,
		uuid.New(), body, source,
	)
	if err != nil {
		return fmt.Errorf("insert exemplar: %w", err)
	}
	return nil
}

// Search returns up to k exemplars ranked by full-text relevance to query.
// Query terms are OR-ed so a single shared word is enough to match.
func (s *Store) Search(ctx context.Context, query string, k int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		WITH q AS (
			SELECT replace(plainto_tsquery('english', $1)::text, '&', '|')::tsquery AS tsq
		)
		SELECT e.body
		FROM exemplars e, q
		WHERE numnode(q.tsq) > 0 AND e.body_tsv @@ q.tsq
		ORDER BY ts_rank(e.body_tsv, q.tsq) DESC, e.created_at
		LIMIT $2`,
		query, k,
	)
	if err != nil {
		return nil, fmt.Errorf("search exemplars: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan exemplar: %w", err)
		}
		out = append(out, body)
	}
	return out, rows.Err()
}
