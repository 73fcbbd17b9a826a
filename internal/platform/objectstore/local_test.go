package objectstore

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

func newLocal(t *testing.T) *LocalStore {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	s, err := NewLocalStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return s
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n <= 0 {
		return 0, errors.New("connection reset")
	}
	k := copy(p, strings.Repeat("x", r.n))
	r.n -= k
	return k, nil
}

func TestLocalStorePutListDelete(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	n, err := s.Put(ctx, "20260101_120000_abcd1234.pdf", strings.NewReader("%PDF-1.7"))
	if err != nil || n != 8 {
		t.Fatalf("Put: n=%d err=%v", n, err)
	}
	if _, err := s.Put(ctx, "20260101_120001_ffff0000.xml", strings.NewReader("<score-partwise/>")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	files, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 || files[0].Name != "20260101_120000_abcd1234.pdf" || files[0].Size != 8 {
		t.Fatalf("List: %+v", files)
	}

	ok, err := s.Exists(ctx, files[1].Name)
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
	if err := s.Delete(ctx, files[1].Name); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, files[1].Name); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Delete (again): want ErrNotExist, got %v", err)
	}
	if ok, _ := s.Exists(ctx, files[1].Name); ok {
		t.Fatalf("deleted file still exists")
	}
}

func TestLocalStorePutFailureLeavesNothing(t *testing.T) {
	s := newLocal(t)
	_, err := s.Put(context.Background(), "broken.pdf", io.MultiReader(strings.NewReader("abc"), &failingReader{n: 0}))
	if err == nil {
		t.Fatalf("expected error")
	}
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("partial files left behind: %v", entries)
	}
}

func TestValidateName(t *testing.T) {
	bad := []string{"", "  ", "../etc/passwd", "a/b.pdf", `a\b.pdf`, "..", ".hidden"}
	for _, name := range bad {
		if err := ValidateName(name); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("ValidateName(%q): want ErrInvalidName, got %v", name, err)
		}
	}
	if err := ValidateName("20260101_120000_abcd1234.musicxml"); err != nil {
		t.Fatalf("ValidateName: %v", err)
	}

	s := newLocal(t)
	if _, err := s.Put(context.Background(), "../escape.pdf", strings.NewReader("x")); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("Put with traversal: %v", err)
	}
}
