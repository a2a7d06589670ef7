// Package model defines the data shared by the jobboard service packages.
package model

import "encoding/json"

// Locations is the persisted form of the location filter:
// {"allowed": ["remote", "usa", ...]}.
type Locations struct {
	Allowed []string `json:"allowed"`
}

// Companies is a loosely typed companies document (companies.json or
// discovered_companies.json). Top-level keys are kept raw because each job
// board source stores its own shape.
type Companies map[string]json.RawMessage

// AllowedLocations returns companies["locations"]["allowed"].
// A "locations" object without an "allowed" key yields an empty list and ok
// true. ok is false when there is no "locations" key, when it is not an
// object, or when "allowed" is null or not a list of strings, so the caller
// moves on to its default.
func (c Companies) AllowedLocations() (allowed []string, ok bool) {
	raw, ok := c["locations"]
	if !ok {
		return nil, false
	}
	var loc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &loc); err != nil || loc == nil {
		return nil, false
	}
	rawAllowed, ok := loc["allowed"]
	if !ok {
		return []string{}, true
	}
	if err := json.Unmarshal(rawAllowed, &allowed); err != nil || allowed == nil {
		return nil, false
	}
	return allowed, true
}

// SearchConfig mirrors the search_configs table row relevant to filtering.
type SearchConfig struct {
	ID           string
	UserID       string
	JobTitles    []string
	Locations    []string // allow-list; empty means the built-in default
	RemotePolicy string
	Keywords     []string // must-have tech/role keywords
	RedFlags     []string // exclusion terms, any match discards the offer
	SalaryMin    *int
	SalaryMax    *int
}

// JobResult is a normalised offer as produced by the scrapers.
type JobResult struct {
	ExternalID   string                 `json:"externalId"`
	Title        string                 `json:"title"`
	Company      string                 `json:"company"`
	Location     string                 `json:"location"`
	Description  string                 `json:"description"`
	SalaryMin    float64                `json:"salaryMin,omitempty"`
	SalaryMax    float64                `json:"salaryMax,omitempty"`
	SourceURL    string                 `json:"sourceUrl"`
	ContractType string                 `json:"contractType,omitempty"`
	PublishedAt  string                 `json:"publishedAt,omitempty"`
	Extra        map[string]interface{} `json:"extra,omitempty"`
}
