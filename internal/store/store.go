// Package store implements the disk-backed fetch cache: a key to
// {payload, expiry} map that survives process restarts.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Entry is a single cached payload with an absolute expiry.
type Entry struct {
	Body        []byte    `json:"body"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Store holds the in-memory cache map and knows how to load and persist it.
// All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
	now     func() time.Time
}

// Open loads the cache file at path. Any read or parse failure yields an
// empty cache: a corrupt or missing file must never block startup. Entries
// already expired at load time are dropped.
func Open(path string) *Store {
	s := &Store{
		path:    path,
		entries: make(map[string]Entry),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithFields(log.Fields{"path": path, "error": err}).Warn("fetch cache unreadable, starting empty")
		}
		return s
	}

	var loaded map[string]Entry
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.WithFields(log.Fields{"path": path, "error": err}).Warn("fetch cache corrupt, starting empty")
		return s
	}

	now := s.now()
	pruned := 0
	for key, e := range loaded {
		if !now.Before(e.ExpiresAt) {
			pruned++
			continue
		}
		s.entries[key] = e
	}

	log.WithFields(log.Fields{
		"path":    path,
		"entries": len(s.entries),
		"pruned":  pruned,
	}).Debug("fetch cache loaded")

	return s
}

// Get returns the entry for key if present and unexpired.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	if !s.now().Before(e.ExpiresAt) {
		delete(s.entries, key)
		return Entry{}, false
	}
	return e, true
}

// Put stores or overwrites the entry for key with a fresh absolute expiry.
func (s *Store) Put(key string, body []byte, contentType string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{
		Body:        body,
		ContentType: contentType,
		ExpiresAt:   s.now().Add(ttl),
	}
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Save writes the whole map back to disk in one overwrite. Called at the
// end of a discovery run rather than after every Put, so a crash between
// saves loses recent gains but never correctness: a half-written file is
// treated as absent on the next Open.
func (s *Store) Save() error {
	s.mu.Lock()
	data, err := json.Marshal(s.entries)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
