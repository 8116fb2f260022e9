package fetchcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

// LocalCache keeps one copy of the dataset per location key in a directory.
type LocalCache struct {
	dir    string
	maxAge time.Duration
	now    func() time.Time
}

// NewLocalCache creates a cache rooted at dir. Entries older than maxAge are misses.
func NewLocalCache(dir string, maxAge time.Duration) *LocalCache {
	return &LocalCache{dir: dir, maxAge: maxAge, now: time.Now}
}

// Load copies a fresh entry for key to path.
func (c *LocalCache) Load(ctx context.Context, key, path string) (domain.FetchedDataset, bool, error) {
	entry := c.entryPath(key)
	info, err := os.Stat(entry)
	if errors.Is(err, os.ErrNotExist) {
		return domain.FetchedDataset{}, false, nil
	}
	if err != nil {
		return domain.FetchedDataset{}, false, err
	}
	if c.maxAge > 0 && c.now().Sub(info.ModTime()) > c.maxAge {
		return domain.FetchedDataset{}, false, nil
	}
	if err := copyFile(entry, path); err != nil {
		return domain.FetchedDataset{}, false, err
	}
	return domain.FetchedDataset{Path: path, FetchedAt: info.ModTime()}, true, nil
}

// Store copies the dataset into the cache directory.
func (c *LocalCache) Store(ctx context.Context, key string, ds domain.FetchedDataset) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", c.dir, err)
	}
	return copyFile(ds.Path, c.entryPath(key))
}

func (c *LocalCache) entryPath(key string) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, key)
	return filepath.Join(c.dir, safe+".csv")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// NopCache never hits and never stores.
type NopCache struct{}

func (NopCache) Load(context.Context, string, string) (domain.FetchedDataset, bool, error) {
	return domain.FetchedDataset{}, false, nil
}

func (NopCache) Store(context.Context, string, domain.FetchedDataset) error { return nil }
