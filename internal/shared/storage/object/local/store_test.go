package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/AjayKumar0077/Resumelit/internal/shared/storage/object"
)

func TestPutOpenDelete(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	key, err := object.SourceKey("guest:g1", "My CV.pdf")
	if err != nil {
		t.Fatalf("source key: %v", err)
	}
	if !strings.HasPrefix(key, "sources/") || !strings.HasSuffix(key, "_My_CV.pdf") {
		t.Fatalf("unexpected key %q", key)
	}

	n, err := s.Put(ctx, key, "application/pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != int64(len("%PDF-1.4 body")) {
		t.Fatalf("unexpected size %d", n)
	}

	rc, err := s.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != "%PDF-1.4 body" {
		t.Fatalf("unexpected body %q", got)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.Open(ctx, key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, key := range []string{"", "../x", "/etc/passwd", "a/../../b"} {
		if _, err := s.Put(context.Background(), key, "text/plain", strings.NewReader("x")); !errors.Is(err, object.ErrInvalidKey) {
			t.Errorf("Put(%q): expected ErrInvalidKey, got %v", key, err)
		}
		if _, err := s.Open(context.Background(), key); !errors.Is(err, object.ErrInvalidKey) {
			t.Errorf("Open(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}
