package bank

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/maypok86/otter"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// cachedUnit is a parsed file together with the stat it was parsed from.
type cachedUnit struct {
	unit    *model.FileUnit
	size    int64
	modTime time.Time
}

// parseCache keeps parsed files between Generate calls. An entry is valid
// while the file's size and modification time are unchanged.
type parseCache struct {
	entries otter.Cache[string, cachedUnit]
}

func newParseCache(capacity int) (*parseCache, error) {
	entries, err := otter.MustBuilder[string, cachedUnit](capacity).
		Cost(func(key string, value cachedUnit) uint32 {
			return 1
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build parse cache: %w", err)
	}
	return &parseCache{entries: entries}, nil
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// get returns the cached unit for path if it was parsed from a file of the same size and mtime.
func (c *parseCache) get(path string, size int64, modTime time.Time) (*model.FileUnit, bool) {
	entry, ok := c.entries.Get(cacheKey(path))
	if !ok {
		return nil, false
	}
	if entry.size != size || !entry.modTime.Equal(modTime) {
		c.entries.Delete(cacheKey(path))
		return nil, false
	}
	return entry.unit, true
}

func (c *parseCache) set(path string, size int64, modTime time.Time, unit *model.FileUnit) {
	c.entries.Set(cacheKey(path), cachedUnit{unit: unit, size: size, modTime: modTime})
}

func (c *parseCache) len() int {
	return c.entries.Size()
}

func (c *parseCache) close() {
	c.entries.Close()
}
