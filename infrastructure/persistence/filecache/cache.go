// Package filecache stores calendar results as JSON files, one per queried
// identity. Writes go to a uniquely named temporary file in the same
// directory and are renamed over the target, so readers only ever see a
// complete entry.
package filecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	apperrors "github.com/konstantinWDK/github-light-calendar/pkg/errors"
)

// Cache is a directory-backed ResponseCache.
type Cache struct {
	dir    string
	logger *zap.Logger
}

// New creates the cache directory if needed and returns a cache rooted there.
func New(dir string, logger *zap.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %q: %w", dir, err)
	}
	return &Cache{dir: dir, logger: logger}, nil
}

// Path returns the file holding the entry for identity.
func (c *Cache) Path(identity string) string {
	return filepath.Join(c.dir, "github_"+calendar.CacheKey(identity)+".json")
}

// Get reads the entry for identity. A missing file is a miss.
func (c *Cache) Get(_ context.Context, identity string) (calendar.CacheEntry, bool, error) {
	data, err := os.ReadFile(c.Path(identity))
	if errors.Is(err, fs.ErrNotExist) {
		return calendar.CacheEntry{}, false, nil
	}
	if err != nil {
		return calendar.CacheEntry{}, false, apperrors.NewCacheUnavailableError("read", err)
	}

	var entry calendar.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return calendar.CacheEntry{}, false, apperrors.NewCacheUnavailableError("decode", err)
	}
	return entry, true, nil
}

// Put atomically replaces the entry for identity.
func (c *Cache) Put(_ context.Context, identity string, entry calendar.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return apperrors.NewCacheUnavailableError("encode", err)
	}

	target := c.Path(identity)
	tmp := filepath.Join(c.dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(target), uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.NewCacheUnavailableError("write", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			c.logger.Warn("Failed to remove temporary cache file",
				zap.String("path", tmp),
				zap.Error(rmErr),
			)
		}
		return apperrors.NewCacheUnavailableError("write", err)
	}

	c.logger.Debug("Cached calendar",
		zap.String("path", target),
		zap.String("source", entry.Source.String()),
	)
	return nil
}
