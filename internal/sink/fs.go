package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathInvalid is returned for keys that are empty, absolute, or escape the root.
var ErrPathInvalid = errors.New("invalid output path")

// FS writes objects under a root directory, replacing files atomically.
type FS struct {
	root string
}

// NewFS creates the root directory if needed.
func NewFS(root string) (*FS, error) {
	if strings.TrimSpace(root) == "" {
		return nil, os.ErrInvalid
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FS{root: root}, nil
}

func (w *FS) Name() string { return "fs" }

// Root is the output directory.
func (w *FS) Root() string { return w.root }

func (w *FS) Write(ctx context.Context, obj Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest, err := w.mapPath(obj.Key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return writeAtomic(dest, []byte(obj.Content))
}

func (w *FS) Close() error { return nil }

// mapPath joins key under the root, rejecting anything that leaves it.
func (w *FS) mapPath(key string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(key))
	if rel == "." || rel == "" || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", ErrPathInvalid
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathInvalid
	}
	return filepath.Join(w.root, rel), nil
}

// writeAtomic writes to a temp file in the target directory, then renames.
func writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
