package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/AjayKumar0077/Resumelit/internal/shared/util"
)

var (
	// ErrNotFound is returned by Open for a key that was never written or was deleted.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidKey is returned for empty, absolute or traversing keys.
	ErrInvalidKey = errors.New("invalid object key")
)

// Store keeps the source files behind upload-built resumes.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// SourceKey builds the key for an uploaded file: sources/<owner>/<uuid>_<name>.
func SourceKey(ownerID, fileName string) (string, error) {
	name, err := util.SafeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join("sources", util.OwnerKey(ownerID), uuid.NewString()+"_"+name), nil
}

// CleanKey normalizes key to a relative slash-separated path.
func CleanKey(key string) (string, error) {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}
