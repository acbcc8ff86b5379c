package jobmatches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

var _ Repo = (*PGRepo)(nil)

const matchColumns = `id, owner_id, resume_id, job_title, company, job_description, score, result, created_at`

// matchResult is the JSONB result column.
type matchResult struct {
	Matches       []string `json:"matches"`
	MissingSkills []string `json:"missingSkills"`
	Suggestions   []string `json:"suggestions"`
}

func (r *PGRepo) Create(ctx context.Context, m SavedMatch) error {
	result, err := json.Marshal(matchResult{
		Matches:       m.Matches,
		MissingSkills: m.MissingSkills,
		Suggestions:   m.Suggestions,
	})
	if err != nil {
		return fmt.Errorf("encode match result: %w", err)
	}
	const query = `
INSERT INTO saved_job_matches (` + matchColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.DB.ExecContext(ctx, query,
		m.ID,
		m.OwnerID,
		nullableString(m.ResumeID),
		m.JobTitle,
		m.Company,
		m.JobDescription,
		m.Score,
		result,
		m.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert saved match: %w", err)
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, ownerID string) ([]SavedMatch, error) {
	const query = `SELECT ` + matchColumns + ` FROM saved_job_matches WHERE owner_id = $1 ORDER BY created_at DESC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list saved matches: %w", err)
	}
	defer rows.Close()

	out := []SavedMatch{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list saved matches: %w", err)
	}
	return out, nil
}

func (r *PGRepo) Get(ctx context.Context, ownerID, id string) (SavedMatch, error) {
	const query = `SELECT ` + matchColumns + ` FROM saved_job_matches WHERE owner_id = $1 AND id = $2`
	m, err := scanMatch(r.DB.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SavedMatch{}, ErrNotFound
		}
		return SavedMatch{}, err
	}
	return m, nil
}

func (r *PGRepo) Delete(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM saved_job_matches WHERE owner_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete saved match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete saved match: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (SavedMatch, error) {
	var (
		m        SavedMatch
		resumeID sql.NullString
		result   []byte
	)
	if err := row.Scan(
		&m.ID,
		&m.OwnerID,
		&resumeID,
		&m.JobTitle,
		&m.Company,
		&m.JobDescription,
		&m.Score,
		&result,
		&m.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SavedMatch{}, err
		}
		return SavedMatch{}, fmt.Errorf("scan saved match: %w", err)
	}
	var res matchResult
	if len(result) > 0 {
		if err := json.Unmarshal(result, &res); err != nil {
			return SavedMatch{}, fmt.Errorf("decode match result for %s: %w", m.ID, err)
		}
	}
	m.ResumeID = resumeID.String
	m.Matches = nonNil(res.Matches)
	m.MissingSkills = nonNil(res.MissingSkills)
	m.Suggestions = nonNil(res.Suggestions)
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
