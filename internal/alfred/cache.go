package alfred

import (
	"fmt"
	"os"
	"path/filepath"

	aw "github.com/deanishe/awgo"
)

// Name of the directory used outside of Alfred.
const cacheName = "wikisearch"

// Cache stores values as JSON files in a directory.
type Cache struct {
	cache *aw.Cache
}

// CacheDir returns the workflow cache directory Alfred passes in the
// environment, falling back to a directory in the user cache.
func CacheDir() (string, error) {
	if dir := os.Getenv(aw.EnvVarCacheDir); dir != "" {
		return dir, nil
	}

	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("no cache directory: %w", err)
	}

	return filepath.Join(dir, cacheName), nil
}

// NewCache opens the cache in dir, creating the directory if needed.
func NewCache(dir string) (*Cache, error) {
	// aw.NewCache panics when it cannot create dir.
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Cache{cache: aw.NewCache(dir)}, nil
}

// Dir returns the directory the cache is stored in.
func (c *Cache) Dir() string {
	return c.cache.Dir
}

// Store saves v under key as key.json, replacing what was there.
func (c *Cache) Store(key string, v any) error {
	if err := c.cache.StoreJSON(key+".json", v); err != nil {
		return fmt.Errorf("failed to store %q: %w", key, err)
	}
	return nil
}
