// Package cache stores audit results on disk, one file per URL, and serves
// them back while they are younger than the configured TTL.
//
// There is no locking. Concurrent writers for the same URL race and the last
// rename wins; readers always see a complete file because writes go through a
// temporary file.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrMiss is returned by Get when there is no fresh entry for the URL.
var ErrMiss = errors.New("cache miss")

// ErrDisabled is returned by Get and Put when the TTL is zero.
var ErrDisabled = errors.New("cache disabled")

type entry[T any] struct {
	URL       string    `json:"url"`
	WrittenAt time.Time `json:"written_at"`
	Value     T         `json:"value"`
}

// Cache is a flat directory of JSON entries keyed by a hash of the URL.
type Cache[T any] struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// New creates a cache rooted at dir. The directory is created on first write.
func New[T any](dir string, ttl time.Duration) *Cache[T] {
	return &Cache[T]{dir: dir, ttl: ttl, now: time.Now}
}

// WithTTL returns a view of the same directory using a different TTL.
func (c *Cache[T]) WithTTL(ttl time.Duration) *Cache[T] {
	cp := *c
	cp.ttl = ttl
	return &cp
}

// TTL returns the freshness window.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// SetClock replaces the time source.
func (c *Cache[T]) SetClock(now func() time.Time) {
	c.now = now
}

// Key returns the file name stem used for url.
func Key(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

func (c *Cache[T]) path(url string) string {
	return filepath.Join(c.dir, Key(url)+".json")
}

// Get returns the value stored for url if it was written no more than TTL ago.
// A missing, stale or foreign entry yields ErrMiss; anything else is an I/O or
// decode failure.
func (c *Cache[T]) Get(url string) (T, error) {
	var zero T
	if c.ttl <= 0 {
		return zero, ErrDisabled
	}

	data, err := os.ReadFile(c.path(url))
	if err != nil {
		if os.IsNotExist(err) {
			return zero, ErrMiss
		}
		return zero, fmt.Errorf("reading cache entry: %w", err)
	}

	var e entry[T]
	if err := json.Unmarshal(data, &e); err != nil {
		return zero, fmt.Errorf("decoding cache entry: %w", err)
	}
	if e.URL != url {
		return zero, ErrMiss
	}
	if c.now().Sub(e.WrittenAt) > c.ttl {
		return zero, ErrMiss
	}
	return e.Value, nil
}

// Put stores value for url, replacing any previous entry.
func (c *Cache[T]) Put(url string, value T) error {
	if c.ttl <= 0 {
		return ErrDisabled
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(entry[T]{URL: url, WrittenAt: c.now(), Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, Key(url)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path(url)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
