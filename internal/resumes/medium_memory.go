package resumes

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryMedium keeps encoded records in process memory.
type MemoryMedium struct {
	mu    sync.RWMutex
	items map[string]Item
}

// NewMemoryMedium constructs an empty MemoryMedium.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{items: make(map[string]Item)}
}

func (m *MemoryMedium) Load(ctx context.Context, id string) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyItem(it), nil
}

func (m *MemoryMedium) Insert(ctx context.Context, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; ok {
		return fmt.Errorf("%w: id %s already exists", ErrConflict, item.ID)
	}
	m.items[item.ID] = newItem(item.ID, item.OwnerID, append([]byte(nil), item.Body...))
	return nil
}

func (m *MemoryMedium) Replace(ctx context.Context, item Item, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[item.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, item.ID)
	}
	if token != "" && cur.Token != token {
		return fmt.Errorf("%w: record %s changed since it was read", ErrConflict, item.ID)
	}
	m.items[item.ID] = newItem(item.ID, item.OwnerID, append([]byte(nil), item.Body...))
	return nil
}

func (m *MemoryMedium) Remove(ctx context.Context, id, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if token != "" && cur.Token != token {
		return fmt.Errorf("%w: record %s changed since it was read", ErrConflict, id)
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryMedium) Scan(ctx context.Context, ownerHint string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		if ownerHint != "" && it.OwnerID != ownerHint {
			continue
		}
		out = append(out, copyItem(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close is a no-op.
func (m *MemoryMedium) Close() error { return nil }

func copyItem(it Item) Item {
	it.Body = append([]byte(nil), it.Body...)
	return it
}

var _ Medium = (*MemoryMedium)(nil)
