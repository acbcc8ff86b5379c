package users

import "context"

// Repo persists accounts keyed by their "<provider>:<subject>" id.
type Repo interface {
	// Upsert inserts the user or refreshes its profile and last login,
	// keeping the original CreatedAt. It returns the stored row.
	Upsert(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, userID string) (User, error)
}
