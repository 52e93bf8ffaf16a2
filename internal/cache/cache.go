// Package cache stores synthesized paragraph clips on disk so an
// interrupted script run can resume without re-synthesizing.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ontypehq/qtts/internal/audio"
)

type Cache struct {
	dir string
}

func New(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) Dir() string { return c.dir }

// Key hashes the parts that determine a clip's content.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".wav")
}

// Get returns the cached clip for key, or false on a miss. Unreadable
// entries count as misses.
func (c *Cache) Get(key string) (*audio.Clip, bool) {
	clip, err := audio.ReadWAV(c.path(key))
	if err != nil {
		return nil, false
	}
	return clip, true
}

func (c *Cache) Put(key string, clip *audio.Clip) error {
	if err := audio.WriteWAV(c.path(key), clip); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

type Stats struct {
	Files int
	Bytes int64
}

func (c *Cache) Stats() (Stats, error) {
	var s Stats
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".wav") {
			continue
		}
		if info, err := e.Info(); err == nil {
			s.Files++
			s.Bytes += info.Size()
		}
	}
	return s, nil
}

// Clear removes every cached clip and reports how many were deleted.
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	var count int
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".wav") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		count++
	}
	return count, errors.Join(errs...)
}

func FormatSize(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
