package patchcache

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	originalSuffix = "-or.patch"
	acceptedSuffix = "-ac.patch"
	ignoredSuffix  = "-ig.patch"
)

// File is one scratch file and the patch text written to it.
type File struct {
	Path  string
	Patch string
}

// Entry groups the scratch files of one file selection.
type Entry struct {
	Hash     string
	Original File
	Accepted File
	// Ignored is nil when every hunk was accepted.
	Ignored *File
}

// Files returns the scratch files of the entry.
func (e Entry) Files() []File {
	files := []File{e.Original, e.Accepted}
	if e.Ignored != nil {
		files = append(files, *e.Ignored)
	}
	return files
}

// Paths returns the scratch file paths of the entry.
func (e Entry) Paths() []string {
	var paths []string
	for _, f := range e.Files() {
		paths = append(paths, f.Path)
	}
	return paths
}

// Cache tracks entries and their scratch files under one directory.
type Cache struct {
	dir string

	mu      sync.Mutex
	entries map[string]Entry
}

// New creates a Cache writing to dir, creating the directory if needed.
// An empty dir uses DefaultDir.
func New(dir string) (*Cache, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating patch directory: %w", err)
	}
	return &Cache{
		dir:     dir,
		entries: make(map[string]Entry),
	}, nil
}

// DefaultDir is the scratch directory used when none is configured.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "gitpick", "patches")
}

// Dir returns the scratch directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Create writes the patch documents for filePath and registers the entry.
// An empty ignored document means no hunk was rejected and no -ig.patch file
// is written. On a write error any file already written is removed.
func (c *Cache) Create(filePath, total, accepted, ignored string) (string, error) {
	hash := NewHash(filePath)
	entry := Entry{
		Hash:     hash,
		Original: File{Path: c.path(hash, originalSuffix), Patch: total},
		Accepted: File{Path: c.path(hash, acceptedSuffix), Patch: accepted},
	}
	if ignored != "" {
		entry.Ignored = &File{Path: c.path(hash, ignoredSuffix), Patch: ignored}
	}

	var written []string
	for _, f := range entry.Files() {
		if err := os.WriteFile(f.Path, []byte(f.Patch), 0o644); err != nil {
			for _, w := range written {
				_ = os.Remove(w)
			}
			return "", fmt.Errorf("writing patch file: %w", err)
		}
		written = append(written, f.Path)
	}

	c.mu.Lock()
	c.entries[hash] = entry
	c.mu.Unlock()
	return hash, nil
}

// Lookup returns the entry registered under hash.
func (c *Cache) Lookup(hash string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[hash]
	return e, ok
}

// Clear removes the scratch files of hash and forgets the entry. It returns
// false when hash is unknown. Files that are already gone are ignored; any
// other removal error is returned and the entry is kept.
func (c *Cache) Clear(hash string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[hash]
	if !ok {
		return false, nil
	}
	for _, p := range e.Paths() {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return true, fmt.Errorf("removing patch file: %w", err)
		}
	}
	delete(c.entries, hash)
	return true, nil
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) path(hash, suffix string) string {
	return filepath.Join(c.dir, hash+suffix)
}

// NewHash derives an entry hash from filePath, the current time and a random
// nonce, so the same file processed twice within one clock tick still gets
// distinct scratch files.
func NewHash(filePath string) string {
	salt := strconv.FormatInt(time.Now().UnixNano(), 16)
	h := sha256.Sum256([]byte(filePath + salt + uuid.NewString()))
	return fmt.Sprintf("%x", h)
}
