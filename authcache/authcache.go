// Package authcache persists connector-token verification freshness to a
// small JSON file so repeated validation runs can skip re-verifying tokens
// inside a validity window. It caches authentication freshness only; no
// workflow state survives a restart.
package authcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	defaultDir      = "./cache"
	defaultFile     = "auth_cache.json"
	defaultValidity = 10 * time.Minute
)

// Entry is one persisted authentication record.
type Entry struct {
	AuthenticatedAt    time.Time `json:"authenticated_at"`
	ConnectedAccountID string    `json:"connected_account_id,omitempty"`
}

// EntryStatus is a human-oriented view of one entry for status reporting.
type EntryStatus struct {
	AuthenticatedAt time.Time     `json:"authenticated_at"`
	Valid           bool          `json:"valid"`
	ExpiresIn       time.Duration `json:"expires_in"`
}

// Options configures a Cache.
type Options struct {
	// Dir holds the cache file; created on first write.
	Dir string

	// Validity is the authentication freshness window.
	Validity time.Duration

	// Clock overrides the time source for tests.
	Clock func() time.Time
}

// WithDir overrides the cache directory.
func WithDir(dir string) func(o *Options) {
	return func(o *Options) { o.Dir = dir }
}

// WithValidity overrides the freshness window.
func WithValidity(d time.Duration) func(o *Options) {
	return func(o *Options) { o.Validity = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) func(o *Options) {
	return func(o *Options) { o.Clock = now }
}

// Cache is a file-backed map of "<user>_<service>" keys to authentication
// records. Writes are serialized by a mutex within one process; a missing or
// corrupt file simply starts the cache empty.
type Cache struct {
	mu       sync.Mutex
	path     string
	validity time.Duration
	now      func() time.Time
}

// New constructs a Cache. The directory is not created until the first write.
func New(optFns ...func(o *Options)) *Cache {
	opts := Options{
		Dir:      defaultDir,
		Validity: defaultValidity,
		Clock:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Cache{
		path:     filepath.Join(opts.Dir, defaultFile),
		validity: opts.Validity,
		now:      opts.Clock,
	}
}

// IsAuthenticated reports whether user/service has a record inside the
// validity window.
func (c *Cache) IsAuthenticated(user, service string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load()
	entry, ok := entries[key(user, service)]
	if !ok {
		return false
	}
	return c.now().Sub(entry.AuthenticatedAt) < c.validity
}

// MarkAuthenticated records a successful verification for user/service.
func (c *Cache) MarkAuthenticated(user, service, accountID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load()
	entries[key(user, service)] = Entry{
		AuthenticatedAt:    c.now(),
		ConnectedAccountID: accountID,
	}
	return c.save(entries)
}

// Clear removes the record for user/service, if any.
func (c *Cache) Clear(user, service string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load()
	delete(entries, key(user, service))
	return c.save(entries)
}

// Status reports every cached entry with its validity.
func (c *Cache) Status() map[string]EntryStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load()
	status := make(map[string]EntryStatus, len(entries))
	for k, entry := range entries {
		age := c.now().Sub(entry.AuthenticatedAt)
		valid := age < c.validity
		expiresIn := c.validity - age
		if !valid {
			expiresIn = 0
		}
		status[k] = EntryStatus{
			AuthenticatedAt: entry.AuthenticatedAt,
			Valid:           valid,
			ExpiresIn:       expiresIn,
		}
	}
	return status
}

func key(user, service string) string {
	return user + "_" + service
}

// load tolerates a missing or corrupt file by starting empty.
func (c *Cache) load() map[string]Entry {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return map[string]Entry{}
	}

	var entries map[string]Entry
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return map[string]Entry{}
	}
	return entries
}

func (c *Cache) save(entries map[string]Entry) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}
