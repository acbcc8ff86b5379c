package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	fileLockRetry = 10 * time.Millisecond
	fileLockStale = 30 * time.Second
)

// FileMedium stores every record in one JSON object file keyed by id.
// The file is re-read on every call, so several processes may share it.
// Writes hold an exclusive lock file and replace the collection by renaming
// a synced temp file over the original.
type FileMedium struct {
	path string
	mu   sync.Mutex
}

// NewFileMedium prepares a FileMedium at path, creating its directory.
func NewFileMedium(path string) (*FileMedium, error) {
	if path == "" {
		return nil, errors.New("record file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create record dir: %w", err)
	}
	return &FileMedium{path: path}, nil
}

// Path returns the backing file path.
func (m *FileMedium) Path() string { return m.path }

func (m *FileMedium) Load(ctx context.Context, id string) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, err := m.read()
	if err != nil {
		return Item{}, err
	}
	body, ok := coll[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return newItem(id, ownerOf(body), body), nil
}

func (m *FileMedium) Insert(ctx context.Context, item Item) error {
	return m.mutate(ctx, func(coll map[string]json.RawMessage) error {
		if _, ok := coll[item.ID]; ok {
			return fmt.Errorf("%w: id %s already exists", ErrConflict, item.ID)
		}
		return putBody(coll, item)
	})
}

func (m *FileMedium) Replace(ctx context.Context, item Item, token string) error {
	return m.mutate(ctx, func(coll map[string]json.RawMessage) error {
		cur, ok := coll[item.ID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, item.ID)
		}
		if token != "" && ContentToken(cur) != token {
			return fmt.Errorf("%w: record %s changed since it was read", ErrConflict, item.ID)
		}
		return putBody(coll, item)
	})
}

func (m *FileMedium) Remove(ctx context.Context, id, token string) error {
	return m.mutate(ctx, func(coll map[string]json.RawMessage) error {
		cur, ok := coll[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if token != "" && ContentToken(cur) != token {
			return fmt.Errorf("%w: record %s changed since it was read", ErrConflict, id)
		}
		delete(coll, id)
		return nil
	})
}

func (m *FileMedium) Scan(ctx context.Context, ownerHint string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, err := m.read()
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(coll))
	for id, body := range coll {
		owner := ownerOf(body)
		// Entries without a readable owner only show up in full scans.
		if ownerHint != "" && owner != ownerHint {
			continue
		}
		out = append(out, newItem(id, owner, body))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close is a no-op; the file is not held open between calls.
func (m *FileMedium) Close() error { return nil }

func (m *FileMedium) mutate(ctx context.Context, fn func(map[string]json.RawMessage) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	coll, err := m.read()
	if err != nil {
		return err
	}
	if err := fn(coll); err != nil {
		return err
	}
	return m.write(coll)
}

func (m *FileMedium) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var coll map[string]json.RawMessage
	if err := json.Unmarshal(data, &coll); err != nil {
		return nil, fmt.Errorf("%w: record file %s: %v", ErrDecode, m.path, err)
	}
	if coll == nil {
		coll = map[string]json.RawMessage{}
	}
	for id, body := range coll {
		var buf bytes.Buffer
		if err := json.Compact(&buf, body); err != nil {
			return nil, fmt.Errorf("%w: record %s: %v", ErrDecode, id, err)
		}
		coll[id] = buf.Bytes()
	}
	return coll, nil
}

func (m *FileMedium) write(coll map[string]json.RawMessage) error {
	data, err := json.Marshal(coll)
	if err != nil {
		return fmt.Errorf("%w: record file: %v", ErrEncode, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(m.path), filepath.Base(m.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp record file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp record file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp record file: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		cleanup()
		return fmt.Errorf("replace record file: %w", err)
	}
	return nil
}

// lock takes the cross-process lock file, removing it when it is older than
// fileLockStale.
func (m *FileMedium) lock(ctx context.Context) (func(), error) {
	lockPath := m.path + ".lock"
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("lock record file: %w", err)
		}
		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > fileLockStale {
			_ = os.Remove(lockPath)
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(fileLockRetry):
		}
	}
}

func putBody(coll map[string]json.RawMessage, item Item) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, item.Body); err != nil {
		return fmt.Errorf("%w: record %s: %v", ErrEncode, item.ID, err)
	}
	coll[item.ID] = buf.Bytes()
	return nil
}

// ownerOf reads the owner field of an encoded record without a full decode.
func ownerOf(body []byte) string {
	var head struct {
		OwnerID string `json:"ownerId"`
		UserID  string `json:"userId"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return ""
	}
	if head.OwnerID != "" {
		return head.OwnerID
	}
	return head.UserID
}

var _ Medium = (*FileMedium)(nil)
