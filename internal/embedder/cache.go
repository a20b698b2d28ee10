package embedder

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// VectorCache is a content-addressed, append-only store of window/query
// embeddings, keyed by sha256 of the text that produced them, one JSON
// file per key under dir. This is the Go-native counterpart of the
// Python pipeline's .npy-per-window_cache_path scheme, ported to JSON
// since nothing in this module's dependency stack reads .npy.
type VectorCache struct {
	dir string
}

// NewVectorCache opens a cache rooted at dir, creating it if necessary.
func NewVectorCache(dir string) (*VectorCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("embedder: create cache dir %s: %w", dir, err)
	}
	return &VectorCache{dir: dir}, nil
}

// KeyFor returns the cache key for a piece of embedded text.
func KeyFor(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *VectorCache) pathFor(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get returns the cached vector for key, if present.
func (c *VectorCache) Get(key string) ([]float32, bool, error) {
	b, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("embedder: read cache entry %s: %w", key, err)
	}
	var vec []float32
	if err := json.Unmarshal(b, &vec); err != nil {
		return nil, false, fmt.Errorf("embedder: decode cache entry %s: %w", key, err)
	}
	return vec, true, nil
}

// Put writes vec under key via temp file + atomic rename.
func (c *VectorCache) Put(key string, vec []float32) error {
	b, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("embedder: marshal cache entry %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(c.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("embedder: create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("embedder: write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("embedder: close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, c.pathFor(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("embedder: rename cache file into place: %w", err)
	}
	return nil
}

// Has reports whether key already has a cached entry, without reading it.
func (c *VectorCache) Has(key string) bool {
	_, err := os.Stat(c.pathFor(key))
	return err == nil
}
