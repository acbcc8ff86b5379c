package resumes

import (
	"context"
	"strings"
)

// RecordReader is the read side of a Store.
type RecordReader interface {
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, ownerID string) ([]Record, error)
}

// ListFilter narrows FindAllByOwner results. Zero values match everything.
type ListFilter struct {
	Method        Method
	TitleContains string
}

func (f ListFilter) match(r Record) bool {
	if f.Method != "" && r.Method != f.Method {
		return false
	}
	if q := strings.TrimSpace(f.TitleContains); q != "" {
		return strings.Contains(strings.ToLower(r.Title), strings.ToLower(q))
	}
	return true
}

// Finder is the lookup API used by the dashboard and assistant pages.
type Finder struct {
	store RecordReader
}

// NewFinder wraps a store.
func NewFinder(store RecordReader) *Finder {
	return &Finder{store: store}
}

// FindByID returns one record.
func (f *Finder) FindByID(ctx context.Context, id string) (Record, error) {
	return f.store.Get(ctx, id)
}

// FindAllByOwner returns the owner's records in store order, keeping those that match every filter.
func (f *Finder) FindAllByOwner(ctx context.Context, ownerID string, filters ...ListFilter) ([]Record, error) {
	recs, err := f.store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return recs, nil
	}
	out := recs[:0]
	for _, r := range recs {
		keep := true
		for _, flt := range filters {
			if !flt.match(r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out, nil
}
