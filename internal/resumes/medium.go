package resumes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Item is one encoded record as held by a Medium.
type Item struct {
	ID      string
	OwnerID string
	Body    []byte
	// Token identifies the exact body that was read; see ContentToken.
	Token string
}

// Medium is the keyed collection the Store persists encoded records into.
//
// Replace and Remove take the token of the body the caller last read. When
// the stored body no longer matches, the write fails with ErrConflict. An
// empty token writes unconditionally.
type Medium interface {
	Load(ctx context.Context, id string) (Item, error)
	Insert(ctx context.Context, item Item) error
	Replace(ctx context.Context, item Item, token string) error
	Remove(ctx context.Context, id, token string) error
	// Scan returns items for ownerHint, or every item when ownerHint is empty.
	// Media may return extra items; the Store filters after decoding.
	Scan(ctx context.Context, ownerHint string) ([]Item, error)
	Close() error
}

// ContentToken returns the hex SHA-256 of an encoded body.
func ContentToken(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func newItem(id, ownerID string, body []byte) Item {
	return Item{ID: id, OwnerID: ownerID, Body: body, Token: ContentToken(body)}
}
