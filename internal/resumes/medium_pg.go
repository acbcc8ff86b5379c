package resumes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGMedium stores encoded records in the resume_records table.
type PGMedium struct {
	DB *sql.DB
}

func (m *PGMedium) Load(ctx context.Context, id string) (Item, error) {
	const query = `
SELECT id, owner_id, body, body_hash
FROM resume_records
WHERE id = $1`
	var it Item
	var body string
	err := m.DB.QueryRowContext(ctx, query, id).Scan(&it.ID, &it.OwnerID, &body, &it.Token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Item{}, err
	}
	it.Body = []byte(body)
	return it, nil
}

func (m *PGMedium) Insert(ctx context.Context, item Item) error {
	const query = `
INSERT INTO resume_records (id, owner_id, body, body_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT (id) DO NOTHING`
	res, err := m.DB.ExecContext(ctx, query, item.ID, item.OwnerID, string(item.Body), ContentToken(item.Body))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %s already exists", ErrConflict, item.ID)
	}
	return nil
}

func (m *PGMedium) Replace(ctx context.Context, item Item, token string) error {
	const query = `
UPDATE resume_records
SET owner_id = $2, body = $3, body_hash = $4, updated_at = NOW()
WHERE id = $1 AND ($5 = '' OR body_hash = $5)`
	res, err := m.DB.ExecContext(ctx, query, item.ID, item.OwnerID, string(item.Body), ContentToken(item.Body), token)
	if err != nil {
		return err
	}
	return m.checkWritten(ctx, res, item.ID)
}

func (m *PGMedium) Remove(ctx context.Context, id, token string) error {
	const query = `
DELETE FROM resume_records
WHERE id = $1 AND ($2 = '' OR body_hash = $2)`
	res, err := m.DB.ExecContext(ctx, query, id, token)
	if err != nil {
		return err
	}
	return m.checkWritten(ctx, res, id)
}

// checkWritten turns a zero-row conditional write into ErrNotFound or ErrConflict.
func (m *PGMedium) checkWritten(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	const query = `SELECT 1 FROM resume_records WHERE id = $1`
	var one int
	err = m.DB.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: record %s changed since it was read", ErrConflict, id)
}

func (m *PGMedium) Scan(ctx context.Context, ownerHint string) ([]Item, error) {
	const query = `
SELECT id, owner_id, body, body_hash
FROM resume_records
WHERE ($1 = '' OR owner_id = $1)
ORDER BY id`
	rows, err := m.DB.QueryContext(ctx, query, ownerHint)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		var body string
		if err := rows.Scan(&it.ID, &it.OwnerID, &body, &it.Token); err != nil {
			return nil, err
		}
		it.Body = []byte(body)
		out = append(out, it)
	}
	return out, rows.Err()
}

// Close leaves the pool open; its owner closes it.
func (m *PGMedium) Close() error { return nil }

var _ Medium = (*PGMedium)(nil)
