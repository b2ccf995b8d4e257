package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"rmspp/internal/diag"
	"rmspp/internal/observ"
	"rmspp/internal/project"
)

// diskCacheSchemaVersion меняется при любом изменении DiskPayload.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores processed outputs on disk, keyed by the hash of the
// input text combined with the config fingerprint. Only documents without
// diagnostics are stored, so a hit never hides a warning. Safe for
// concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the msgpack record of one cached document.
type DiskPayload struct {
	Schema    uint16        `msgpack:"schema"`
	Path      string        `msgpack:"path"`
	Output    string        `msgpack:"output"`
	Hoisted   int           `msgpack:"hoisted"`
	Truncated bool          `msgpack:"truncated"`
	Timing    observ.Report `msgpack:"timing"`
}

// OpenDiskCache opens the cache under $XDG_CACHE_HOME/app (or ~/.cache/app).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens (creating if needed) a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := key.String()
	// подкаталог по первым двум символам, чтобы не держать тысячи файлов в одном
	return filepath.Join(c.dir, "out", hexKey[:2], hexKey+".mp")
}

// Put writes payload atomically.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the payload for key. A missing entry or an entry written by
// another schema version is a miss.
func (c *DiskCache) Get(key project.Digest) (*DiskPayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var out DiskPayload
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if out.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// cached serves doc from the cache. Read errors count as a miss.
func cached(c *DiskCache, key project.Digest, doc *Document) (*Result, bool) {
	payload, ok, err := c.Get(key)
	if err != nil || !ok {
		return nil, false
	}
	return &Result{
		Path:      doc.File.Path,
		Output:    payload.Output,
		FileSet:   doc.FileSet,
		Bag:       doc.Bag,
		Timing:    payload.Timing,
		Hoisted:   payload.Hoisted,
		Truncated: payload.Truncated,
		Cached:    true,
	}, true
}

func store(c *DiskCache, key project.Digest, res *Result) {
	if c == nil || !clean(res) {
		return
	}
	// кэш - оптимизация, ошибка записи не должна ломать сборку
	_ = c.Put(key, &DiskPayload{
		Path:      res.Path,
		Output:    res.Output,
		Hoisted:   res.Hoisted,
		Truncated: res.Truncated,
		Timing:    res.Timing,
	})
}

// clean reports whether res has no diagnostics besides timings.
func clean(res *Result) bool {
	for _, d := range res.Diagnostics() {
		if d.Code != diag.ObsTimings {
			return false
		}
	}
	return true
}
