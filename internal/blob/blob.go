// Package blob defines the narrow object-store interface the rest of the
// system persists through, plus a filesystem-backed implementation. The
// interface mirrors a key/value object store (get, put, list-by-prefix,
// delete) so a future revision can swap in per-item storage with
// conditional writes without touching orchestrator logic.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned by Get for a key with no stored object.
var ErrNotFound = errors.New("blob: object not found")

// Object identifies one stored object.
type Object struct {
	Key string
}

// ListResult is one page of a prefix listing. Callers must loop until
// Truncated is false, passing Cursor back in.
type ListResult struct {
	Objects   []Object
	Truncated bool
	Cursor    string
}

// Store is the object-store contract. All collections (pending,
// published, feedback journal, comments, review verdicts) live behind
// it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	List(ctx context.Context, prefix, cursor string) (ListResult, error)
	Delete(ctx context.Context, key string) error
}

// Dir is a filesystem-backed Store rooted at a directory. Keys map to
// relative file paths; nested keys create directories as needed.
type Dir struct {
	root     string
	pageSize int
}

// NewDir creates (if needed) and opens a directory-backed store.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root %s: %w", root, err)
	}
	return &Dir{root: root, pageSize: 1000}, nil
}

func (d *Dir) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(d.root, clean), nil
}

// Get returns the stored bytes for key, or ErrNotFound.
func (d *Dir) Get(_ context.Context, key string) ([]byte, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Put stores data under key, replacing any existing object. The content
// type is ignored by the filesystem backend.
func (d *Dir) Put(_ context.Context, key string, data []byte, _ string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	// Write-then-rename keeps a crashed writer from leaving a torn
	// snapshot behind.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", key, err)
	}
	return nil
}

// List returns one page of keys under prefix, in lexical order. Cursor
// is the last key of the previous page.
func (d *Dir) List(_ context.Context, prefix, cursor string) (ListResult, error) {
	var keys []string
	err := filepath.WalkDir(d.root, func(p string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) && key > cursor {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list prefix %q: %w", prefix, err)
	}
	sort.Strings(keys)

	res := ListResult{}
	if len(keys) > d.pageSize {
		res.Truncated = true
		keys = keys[:d.pageSize]
		res.Cursor = keys[len(keys)-1]
	}
	for _, k := range keys {
		res.Objects = append(res.Objects, Object{Key: k})
	}
	return res, nil
}

// Delete removes the object under key. Deleting a missing key is not an
// error.
func (d *Dir) Delete(_ context.Context, key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
