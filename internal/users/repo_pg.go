package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

var _ Repo = (*PGRepo)(nil)

const userColumns = `id, provider, email, name, picture_url, created_at, last_login_at`

func (r *PGRepo) Upsert(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (id, provider, email, name, picture_url, created_at, last_login_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  name = EXCLUDED.name,
  picture_url = EXCLUDED.picture_url,
  last_login_at = now()
RETURNING ` + userColumns
	stored, err := scanUser(r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Provider,
		user.Email,
		user.Name,
		nullableString(user.PictureURL),
	))
	if err != nil {
		return User{}, fmt.Errorf("upsert user: %w", err)
	}
	return stored, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (User, error) {
	var (
		user       User
		pictureURL sql.NullString
	)
	if err := row.Scan(
		&user.ID,
		&user.Provider,
		&user.Email,
		&user.Name,
		&pictureURL,
		&user.CreatedAt,
		&user.LastLoginAt,
	); err != nil {
		return User{}, err
	}
	user.PictureURL = pictureURL.String
	user.CreatedAt = user.CreatedAt.UTC()
	user.LastLoginAt = user.LastLoginAt.UTC()
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
