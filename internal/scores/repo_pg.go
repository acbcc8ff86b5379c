package scores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

var _ Repo = (*PGRepo)(nil)

func (r *PGRepo) Add(ctx context.Context, e Entry) error {
	categories, err := json.Marshal(e.CategoryScores)
	if err != nil {
		return fmt.Errorf("encode category scores: %w", err)
	}
	const query = `
INSERT INTO score_history (id, owner_id, resume_id, overall_score, category_scores, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.DB.ExecContext(ctx, query,
		e.ID,
		e.OwnerID,
		e.ResumeID,
		e.OverallScore,
		categories,
		e.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert score entry: %w", err)
	}
	return nil
}

func (r *PGRepo) ListByResume(ctx context.Context, ownerID, resumeID string, limit int) ([]Entry, error) {
	const query = `
SELECT id, owner_id, resume_id, overall_score, category_scores, created_at
FROM (
  SELECT id, owner_id, resume_id, overall_score, category_scores, created_at
  FROM score_history
  WHERE owner_id = $1 AND resume_id = $2
  ORDER BY created_at DESC
  LIMIT $3
) newest
ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, resumeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list score entries: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e          Entry
			categories []byte
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.ResumeID, &e.OverallScore, &categories, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score entry: %w", err)
		}
		e.CategoryScores = map[string]int{}
		if len(categories) > 0 {
			if err := json.Unmarshal(categories, &e.CategoryScores); err != nil {
				return nil, fmt.Errorf("decode category scores for %s: %w", e.ID, err)
			}
		}
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list score entries: %w", err)
	}
	return out, nil
}
