package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	ErrNotExist    = errors.New("object does not exist")
	ErrInvalidName = errors.New("invalid object name")
)

type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store holds uploaded score files under flat names.
type Store interface {
	// Put writes the whole of r under name. On error nothing is left behind.
	Put(ctx context.Context, name string, r io.Reader) (int64, error)
	// Delete returns ErrNotExist when name is absent.
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]FileInfo, error)
}

// ValidateName rejects empty names and anything that could escape the
// store's flat namespace.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.ContainsAny(name, `/\`), strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
