package jobmatches

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	matches map[string]SavedMatch
}

var _ Repo = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{matches: make(map[string]SavedMatch)}
}

func (r *MemoryRepo) Create(ctx context.Context, m SavedMatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[m.ID]; ok {
		return fmt.Errorf("%w: id %s already exists", ErrValidation, m.ID)
	}
	r.matches[m.ID] = clone(m)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, ownerID string) ([]SavedMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []SavedMatch{}
	for _, m := range r.matches {
		if m.OwnerID == ownerID {
			out = append(out, clone(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, ownerID, id string) (SavedMatch, error) {
	if err := ctx.Err(); err != nil {
		return SavedMatch{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[id]
	if !ok || m.OwnerID != ownerID {
		return SavedMatch{}, ErrNotFound
	}
	return clone(m), nil
}

func (r *MemoryRepo) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok || m.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.matches, id)
	return nil
}

func clone(m SavedMatch) SavedMatch {
	m.Matches = append([]string{}, m.Matches...)
	m.MissingSkills = append([]string{}, m.MissingSkills...)
	m.Suggestions = append([]string{}, m.Suggestions...)
	return m
}
