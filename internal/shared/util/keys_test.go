package util

import (
	"errors"
	"strings"
	"testing"
)

func TestOwnerKey(t *testing.T) {
	id := "guest:12345"
	got := OwnerKey(id)
	if got != OwnerKey(id) {
		t.Fatalf("expected stable key, got %s", got)
	}
	if got == OwnerKey("guest:12346") {
		t.Fatal("expected different owners to get different keys")
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("key contains non-hex character: %c", ch)
		}
	}
	if len(got) != 32 {
		t.Fatalf("expected 32 hex characters, got %d", len(got))
	}
}

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"resume.pdf":            "resume.pdf",
		"  My Resume.docx  ":    "My_Resume.docx",
		"dir/sub\\cv.pdf":       "dir_sub_cv.pdf",
		"tab\tname.txt":         "tabname.txt",
		".hidden":               "hidden",
		"Lebenslauf-Müller.pdf": "Lebenslauf-Müller.pdf",
	}
	for in, want := range cases {
		got, err := SafeFileName(in)
		if err != nil {
			t.Fatalf("SafeFileName(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("SafeFileName(%q) = %q, want %q", in, got, want)
		}
	}

	for _, bad := range []string{"", "   ", "../etc/passwd", "..", "___"} {
		if _, err := SafeFileName(bad); !errors.Is(err, ErrInvalidFileName) {
			t.Errorf("SafeFileName(%q): expected ErrInvalidFileName, got %v", bad, err)
		}
	}
}

func TestSafeFileNameKeepsExtensionWhenShortened(t *testing.T) {
	got, err := SafeFileName(strings.Repeat("a", 300) + ".docx")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != maxFileNameLen || !strings.HasSuffix(got, ".docx") {
		t.Fatalf("unexpected name %q (len %d)", got, len(got))
	}
}
