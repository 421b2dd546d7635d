package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
)

// Cache stores rendered pages on disk, one file per request URL.
// A nil *Cache is valid and caches nothing.
type Cache struct {
	dir    string
	maxAge time.Duration
}

// New returns a cache rooted at dir, or nil when maxAge disables caching.
func New(dir string, maxAge time.Duration) *Cache {
	if maxAge <= 0 {
		return nil
	}
	log.Info().Str("dir", dir).Dur("max_age", maxAge).Msg("page cache enabled")
	return &Cache{dir: dir, maxAge: maxAge}
}

// Path returns the cache file path for key
func (c *Cache) Path(key string) string {
	hash := generateHash(key)
	return filepath.Join(c.dir, hash[:2], hash+".html")
}

// generateHash generates an xxHash hash for the given string
func generateHash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// Write stores html under key
func (c *Cache) Write(key, html string) error {
	if c == nil {
		return nil
	}
	path := c.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(html), 0644)
}

// Read returns the cached page for key if it exists and is not expired
func (c *Cache) Read(key string) (string, bool) {
	if c == nil {
		return "", false
	}

	path := c.Path(key)
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if time.Since(info.ModTime()) > c.maxAge {
		return "", false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(content), true
}

// ClearAll removes every cached page. Content edits call it since one record
// can appear on many pages.
func (c *Cache) ClearAll() error {
	if c == nil {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// ClearOld removes cached pages older than the cache max age
func (c *Cache) ClearOld() error {
	if c == nil {
		return nil
	}

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		if time.Since(info.ModTime()) > c.maxAge {
			os.Remove(path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
