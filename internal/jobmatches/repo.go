package jobmatches

import "context"

// Repo persists saved matches. Reads and deletes are scoped to the owner, so
// another owner's id behaves as missing.
type Repo interface {
	Create(ctx context.Context, m SavedMatch) error
	// List returns the owner's matches, newest first.
	List(ctx context.Context, ownerID string) ([]SavedMatch, error)
	Get(ctx context.Context, ownerID, id string) (SavedMatch, error)
	Delete(ctx context.Context, ownerID, id string) error
}
