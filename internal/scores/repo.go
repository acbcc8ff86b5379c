package scores

import "context"

// Repo persists score entries per owner and resume.
type Repo interface {
	Add(ctx context.Context, e Entry) error
	// ListByResume returns at most limit of the newest entries, oldest first.
	ListByResume(ctx context.Context, ownerID, resumeID string, limit int) ([]Entry, error)
}
