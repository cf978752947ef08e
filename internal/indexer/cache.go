package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rvtools/rvenc/internal/isa"
)

const cacheIndexVersion = 1

// resolverVersion invalidates cached results when resolution semantics
// change. Bump it whenever the resolved model's shape or meaning moves.
const resolverVersion = "1"

type cacheEntry struct {
	ContentHash     string `json:"content_hash"`
	ResultPath      string `json:"result_path"`
	ResolverVersion string `json:"resolver_version"`
}

type cacheIndex struct {
	Version int                   `json:"version"`
	Entries map[string]cacheEntry `json:"entries"`
}

// resultsCache is the read-through cache of resolved instructions, keyed
// by definition-file path and content hash. It is owned by the caller and
// passed into the run explicitly; nothing here is process-global.
type resultsCache struct {
	dir   string
	mu    sync.Mutex
	index cacheIndex
}

func newResultsCache(dir string) *resultsCache {
	return &resultsCache{
		dir: dir,
		index: cacheIndex{
			Version: cacheIndexVersion,
			Entries: make(map[string]cacheEntry),
		},
	}
}

func (c *resultsCache) indexPath() string {
	return filepath.Join(c.dir, "index.json")
}

func (c *resultsCache) resultsDir() string {
	return filepath.Join(c.dir, "resolved")
}

func (c *resultsCache) resultPathForFile(filePath string) string {
	h := sha256.Sum256([]byte(filePath))
	return filepath.Join(c.resultsDir(), hex.EncodeToString(h[:])+".json")
}

func (c *resultsCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("cache mkdir: %w", err)
	}
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache index: %w", err)
	}
	var idx cacheIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("parse cache index: %w", err)
	}
	if idx.Version != cacheIndexVersion {
		// Reset on version mismatch
		c.index = cacheIndex{Version: cacheIndexVersion, Entries: make(map[string]cacheEntry)}
		return nil
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]cacheEntry)
	}
	c.index = idx
	return nil
}

func (c *resultsCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeJSONAtomic(c.indexPath(), c.index)
}

func (c *resultsCache) Get(filePath, contentHash string) (isa.Resolved, bool, error) {
	c.mu.Lock()
	entry, ok := c.index.Entries[filePath]
	c.mu.Unlock()
	if !ok {
		return isa.Resolved{}, false, nil
	}
	if entry.ContentHash != contentHash || entry.ResolverVersion != resolverVersion {
		return isa.Resolved{}, false, nil
	}

	data, err := os.ReadFile(entry.ResultPath)
	if err != nil {
		return isa.Resolved{}, false, fmt.Errorf("read cached result: %w", err)
	}
	var resolved isa.Resolved
	if err := json.Unmarshal(data, &resolved); err != nil {
		return isa.Resolved{}, false, fmt.Errorf("parse cached result: %w", err)
	}
	return resolved, true, nil
}

func (c *resultsCache) Put(filePath, contentHash string, resolved isa.Resolved) error {
	resultPath := c.resultPathForFile(filePath)
	if err := os.MkdirAll(filepath.Dir(resultPath), 0o755); err != nil {
		return fmt.Errorf("cache results dir: %w", err)
	}
	if err := writeJSONAtomic(resultPath, resolved); err != nil {
		return err
	}

	c.mu.Lock()
	c.index.Entries[filePath] = cacheEntry{
		ContentHash:     contentHash,
		ResultPath:      resultPath,
		ResolverVersion: resolverVersion,
	}
	c.mu.Unlock()
	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache json: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
