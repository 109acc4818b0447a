package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"safetyhub/internal/errs"
	"safetyhub/internal/ports"
)

// LocalStore keeps uploads under a module-private root. Filenames are
// generated (time prefix + random component + sanitized original), so a
// stored name never collides and never echoes unsafe path input.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, errors.New("upload root is required")
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, errs.Wrapf(err, "create upload root %q", trimmed)
	}
	return &LocalStore{root: trimmed}, nil
}

func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (ports.StoredFile, error) {
	if ctx == nil {
		return ports.StoredFile{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.StoredFile{}, errs.Wrap(err, "check context")
	}

	name := GenerateFileName(originalName)
	path := filepath.Join(s.root, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return ports.StoredFile{}, errs.Wrapf(err, "create upload file %q", name)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return ports.StoredFile{}, errs.Wrapf(err, "write upload file %q", name)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return ports.StoredFile{}, errs.Wrapf(err, "close upload file %q", name)
	}

	return ports.StoredFile{Name: name, Size: written}, nil
}

func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	clean := filepath.Base(name)
	if clean != name || clean == "." || clean == "" {
		return nil, ports.ErrFileNotFound
	}

	f, err := os.Open(filepath.Join(s.root, clean))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ports.ErrFileNotFound
		}
		return nil, errs.Wrapf(err, "open stored file %q", clean)
	}
	return f, nil
}

func (s *LocalStore) Remove(ctx context.Context, name string) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	clean := filepath.Base(name)
	if clean != name || clean == "." || clean == "" {
		return ports.ErrFileNotFound
	}

	if err := os.Remove(filepath.Join(s.root, clean)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ports.ErrFileNotFound
		}
		return errs.Wrapf(err, "remove stored file %q", clean)
	}
	return nil
}

// GenerateFileName builds a collision-resistant stored name.
func GenerateFileName(originalName string) string {
	stamp := time.Now().UTC().Format("20060102T150405")
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return stamp + "_" + random + "_" + SanitizeFileName(originalName)
}

// SanitizeFileName strips path components and replaces anything outside
// a conservative character set.
func SanitizeFileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}
