package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"unicode"
)

const maxFileNameLen = 100

// ErrInvalidFileName is returned when nothing usable is left of a file name.
var ErrInvalidFileName = errors.New("invalid file name")

// OwnerKey returns a path-safe, non-reversible directory name for an owner id.
func OwnerKey(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:16])
}

// SafeFileName keeps the base name of an uploaded file, replacing path
// separators, control characters and spaces. Long names are shortened
// with the extension kept.
func SafeFileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ' ':
			b.WriteByte('_')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	s := strings.Trim(b.String(), "._")
	if s == "" {
		return "", ErrInvalidFileName
	}
	if r := []rune(s); len(r) > maxFileNameLen {
		ext := filepath.Ext(s)
		if len([]rune(ext)) > 10 {
			ext = ""
		}
		keep := maxFileNameLen - len([]rune(ext))
		s = string(r[:keep]) + ext
	}
	return s, nil
}
