// Package cache memoizes a run's final event list on disk for a short TTL,
// keyed deterministically by the resolved query parameters.
package cache

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stockii/event-skill-for-openclaw/internal/daterange"
	"github.com/stockii/event-skill-for-openclaw/internal/event"
)

// TTL after which an entry is treated as absent and evicted.
const TTL = 30 * time.Minute

// Cache stores result entries as JSON files in a data directory.
type Cache struct {
	dataDir string
	ttl     time.Duration
}

// Entry is one cached result.
type Entry struct {
	Events   []*event.Event `json:"events"`
	StoredAt time.Time      `json:"stored_at"`
}

// New creates a Cache rooted at dataDir, creating it if needed. A leading
// "~/" expands to the home directory.
func New(dataDir string) (*Cache, error) {
	return NewWithTTL(dataDir, TTL)
}

// NewWithTTL is New with an explicit TTL.
func NewWithTTL(dataDir string, ttl time.Duration) (*Cache, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dataDir: dataDir, ttl: ttl}, nil
}

// Key derives the deterministic cache key for a resolved query.
func Key(region string, r daterange.Range, radiusKM int) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s|%s|%s|%d",
		strings.ToLower(strings.TrimSpace(region)),
		r.Start.UTC().Format(time.RFC3339),
		r.End.UTC().Format(time.RFC3339),
		radiusKM,
	)
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dataDir, "result_"+key+".json")
}

// Get returns the cached events for key, or ok=false when there is no entry
// or the entry has outlived the TTL. Stale entries are evicted on read.
func (c *Cache) Get(key string) ([]*event.Event, bool, error) {
	path := c.entryPath(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("parsing cache entry: %w", err)
	}

	if time.Since(entry.StoredAt) > c.ttl {
		os.Remove(path)
		return nil, false, nil
	}
	return entry.Events, true, nil
}

// Put stores events under key with the current timestamp.
func (c *Cache) Put(key string, events []*event.Event) error {
	entry := Entry{Events: events, StoredAt: time.Now().UTC()}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := os.WriteFile(c.entryPath(key), data, 0644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}
