package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores entries as files under a directory, for CLI use.
//
// Each file holds a one-line JSON header (key and expiry) followed by the raw
// payload, so SVG and layout JSON are stored as-is. Writes go to a temporary
// file that is renamed into place; concurrent readers (e.g. the HTTP server)
// never see a partial entry.
type FileCache struct {
	dir string
	now func() time.Time
}

// DefaultDir returns the user cache directory for kintree, falling back to
// the system temp dir when none is known.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "kintree")
	}
	return filepath.Join(os.TempDir(), "kintree-cache")
}

// NewFileCache opens (creating if needed) a cache in dir. An empty dir uses
// DefaultDir.
func NewFileCache(dir string) (*FileCache, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

type entryHeader struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (h entryHeader) expired(now time.Time) bool {
	return !h.ExpiresAt.IsZero() && now.After(h.ExpiresAt)
}

// readEntry splits a cache file into header and payload.
func readEntry(path string) (entryHeader, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return entryHeader{}, nil, err
	}
	line, payload, ok := bytes.Cut(raw, []byte("\n"))
	var h entryHeader
	if !ok || json.Unmarshal(line, &h) != nil || h.Key == "" {
		return entryHeader{}, nil, errCorruptEntry
	}
	return h, payload, nil
}

// Get returns the payload stored under key. Corrupt, expired and colliding
// entries are misses; the first two are removed.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	h, payload, err := readEntry(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err == errCorruptEntry:
		_ = os.Remove(path)
		return nil, false, nil
	case err != nil:
		return nil, false, err
	case h.Key != key:
		return nil, false, nil
	case h.expired(c.now()):
		_ = os.Remove(path)
		return nil, false, nil
	}
	return payload, true, nil
}

// Set stores data under key. A non-positive ttl never expires.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	h := entryHeader{Key: key}
	if ttl > 0 {
		h.ExpiresAt = c.now().Add(ttl)
	}
	line, err := json.Marshal(h)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	buf := make([]byte, 0, len(line)+1+len(data))
	buf = append(append(append(buf, line...), '\n'), data...)
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. Missing keys are not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every entry and recreates the empty directory.
func (c *FileCache) Clear(ctx context.Context) error {
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// Prune removes expired and corrupt entries and returns how many it removed.
func (c *FileCache) Prune(ctx context.Context) (int, error) {
	now := c.now()
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || filepath.Ext(path) != ".entry" {
			return nil
		}
		h, _, err := readEntry(path)
		if err == nil && !h.expired(now) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error { return nil }

// path spreads entries over 256 subdirectories by key hash.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".entry")
}

var (
	_ Cache   = (*FileCache)(nil)
	_ Clearer = (*FileCache)(nil)
)
