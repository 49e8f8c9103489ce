package kv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileBackend stores each key as a JSON file in a directory. File names are
// hashes of the key, so arbitrary keys are safe; the key itself is stored in
// the file for listing.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a file backend in dir.
// The directory will be created if it doesn't exist.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

// Dir returns the backend directory.
func (b *FileBackend) Dir() string { return b.dir }

// Name implements Backend.
func (b *FileBackend) Name() string { return "file" }

type fileEntry struct {
	Key  string `json:"key"`
	Data []byte `json:"data"`
}

// Get implements Backend. A corrupt entry is removed and reported as a miss.
func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := b.path(key)
	entry, err := readEntry(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			_ = os.Remove(path)
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Data, true, nil
}

// Set implements Backend. Values are written to a temporary file and renamed
// into place so readers never see partial data.
func (b *FileBackend) Set(ctx context.Context, key string, data []byte) error {
	raw, err := json.Marshal(fileEntry{Key: key, Data: data})
	if err != nil {
		return err
	}

	path := b.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete implements Backend.
func (b *FileBackend) Delete(ctx context.Context, key string) error {
	err := os.Remove(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Keys implements Backend.
func (b *FileBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := b.walk(func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := readEntry(path)
		if err != nil {
			// Skip entries that vanished or are being written.
			return nil
		}
		if strings.HasPrefix(entry.Key, prefix) {
			keys = append(keys, entry.Key)
		}
		return nil
	})
	sort.Strings(keys)
	return keys, err
}

// Clear implements Backend.
func (b *FileBackend) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(b.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Close does nothing for the file backend.
func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) walk(fn func(path string) error) error {
	return filepath.WalkDir(b.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		return fn(path)
	})
}

func readEntry(path string) (fileEntry, error) {
	var entry fileEntry
	raw, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	err = json.Unmarshal(raw, &entry)
	return entry, err
}

// path maps key to <dir>/<ab>/<rest of sha256>.json.
func (b *FileBackend) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(b.dir, name[:2], name[2:]+".json")
}

var _ Backend = (*FileBackend)(nil)
