package llm

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// promptKey derives the cache key for a prompt.
func promptKey(prompt string) string {
	sum := md5.Sum([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// responseCache stores completed responses on disk, one JSON file per prompt
// key. Cache misses and corrupt entries are silently ignored; the caller just
// pays for a fresh request.
type responseCache struct {
	dir string
}

func newResponseCache(dir string) (*responseCache, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "odiscan-llm-cache")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &responseCache{dir: dir}, nil
}

func (c *responseCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *responseCache) get(key string) (string, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return "", false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	return entry.Response, true
}

func (c *responseCache) put(key, response string) {
	entry := cacheEntry{Response: response, Timestamp: time.Now()}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = os.WriteFile(c.path(key), data, 0o640)
}
