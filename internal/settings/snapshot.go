package settings

import (
	"sync"
	"time"

	"jobmate/jobboard-service/internal/location"
)

// Snapshot is the in-memory copy of the lists last read from disk. Readers
// never touch the filesystem; Reload swaps the whole set at once.
type Snapshot struct {
	mu        sync.RWMutex
	keywords  []string
	allowed   []string // as stored, before normalisation
	locations *location.Matcher
	loadedAt  time.Time
}

// NewSnapshot returns a snapshot holding the built-in defaults until the
// first Reload.
func NewSnapshot() *Snapshot {
	allowed := location.DefaultAllowed()
	return &Snapshot{
		keywords:  DefaultKeywords(),
		allowed:   allowed,
		locations: location.NewMatcher(allowed),
	}
}

// Reload re-reads keywords and locations from store.
func (s *Snapshot) Reload(store *Store) {
	keywords := store.LoadKeywords()
	allowed := store.LoadAllowedLocations()
	locations := location.NewMatcher(allowed)

	s.mu.Lock()
	s.keywords = keywords
	s.allowed = allowed
	s.locations = locations
	s.loadedAt = time.Now()
	s.mu.Unlock()
}

// Keywords returns a copy of the current keywords.
func (s *Snapshot) Keywords() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.keywords...)
}

// AllowedLocations returns a copy of the allow-list as it was stored.
func (s *Snapshot) AllowedLocations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.allowed...)
}

// Locations returns the current location matcher.
func (s *Snapshot) Locations() *location.Matcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locations
}

// LoadedAt is the time of the last Reload, zero before the first one.
func (s *Snapshot) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
