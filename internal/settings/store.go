// Package settings persists the job board's editable lists (search keywords,
// allowed locations) and reads the companies documents.
//
// Loading never fails: a missing or corrupt file yields the built-in default
// and a warning in the log. Only writes return errors.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"jobmate/jobboard-service/internal/config"
	"jobmate/jobboard-service/internal/location"
	"jobmate/jobboard-service/internal/model"
)

// Setting names passed to Notifier.
const (
	SettingKeywords  = "keywords"
	SettingLocations = "locations"
)

var defaultKeywords = [...]string{
	"devops", "sre", "site reliability", "platform engineer",
	"infrastructure", "cloud engineer", "devsecops", "kubernetes", "terraform",
}

// DefaultKeywords returns a fresh copy of the built-in search keywords.
func DefaultKeywords() []string {
	return append([]string(nil), defaultKeywords[:]...)
}

// Notifier is told about every successful save.
type Notifier interface {
	SettingsUpdated(ctx context.Context, setting string) error
}

// Store reads and writes the settings files described by a config.Paths.
type Store struct {
	paths    config.Paths
	notifier Notifier
	mu       sync.Mutex // serialises writes
}

// NewStore returns a Store rooted at paths. notifier may be nil.
func NewStore(paths config.Paths, notifier Notifier) *Store {
	return &Store{paths: paths, notifier: notifier}
}

// LoadCompanies reads companies.json, or an empty document.
func (s *Store) LoadCompanies() model.Companies {
	return loadCompanies(s.paths.CompaniesFile)
}

// LoadDiscoveredCompanies reads discovered_companies.json, or an empty document.
func (s *Store) LoadDiscoveredCompanies() model.Companies {
	return loadCompanies(s.paths.DiscoveredFile)
}

func loadCompanies(path string) model.Companies {
	c, ok := LoadJSON[model.Companies](path)
	if !ok || c == nil {
		return model.Companies{}
	}
	return c
}

// LoadKeywords returns the saved keywords, or DefaultKeywords when the file is
// absent, malformed or holds an empty list.
func (s *Store) LoadKeywords() []string {
	kw, ok := LoadJSON[[]string](s.paths.KeywordsFile)
	if ok && len(kw) > 0 {
		return kw
	}
	return DefaultKeywords()
}

// SaveKeywords replaces keywords.json with a compact JSON array.
func (s *Store) SaveKeywords(ctx context.Context, keywords []string) error {
	if keywords == nil {
		keywords = []string{}
	}
	return s.save(ctx, SettingKeywords, s.paths.KeywordsFile, keywords, false)
}

// LoadAllowedLocations resolves the location allow-list in order:
// locations.json {"allowed": [...]}, then companies.json
// {"locations": {"allowed": [...]}}, then location.DefaultAllowed.
func (s *Store) LoadAllowedLocations() []string {
	if doc, ok := LoadJSON[map[string]json.RawMessage](s.paths.LocationsFile); ok {
		if raw, ok := doc["allowed"]; ok {
			var allowed []string
			if err := json.Unmarshal(raw, &allowed); err == nil && allowed != nil {
				return allowed
			}
			slog.Warn("locations file has no usable allowed list, ignoring",
				"path", s.paths.LocationsFile)
		}
	}

	if allowed, ok := s.LoadCompanies().AllowedLocations(); ok {
		return allowed
	}

	return location.DefaultAllowed()
}

// LoadLocations wraps LoadAllowedLocations in its persisted shape.
func (s *Store) LoadLocations() model.Locations {
	return model.Locations{Allowed: s.LoadAllowedLocations()}
}

// SaveLocations replaces locations.json.
func (s *Store) SaveLocations(ctx context.Context, locs model.Locations) error {
	if locs.Allowed == nil {
		locs.Allowed = []string{}
	}
	return s.save(ctx, SettingLocations, s.paths.LocationsFile, locs, true)
}

func (s *Store) save(ctx context.Context, setting, path string, v any, indent bool) error {
	s.mu.Lock()
	err := SaveJSON(path, v, indent)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("save %s: %w", setting, err)
	}

	if s.notifier != nil {
		if err := s.notifier.SettingsUpdated(ctx, setting); err != nil {
			slog.Warn("settings update notification failed", "setting", setting, "err", err)
		}
	}
	return nil
}
