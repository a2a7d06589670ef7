// Package filter decides whether a scraped offer is shown to a user, based on
// the allowed locations, search keywords and red flags of a search config.
package filter

import (
	"jobmate/jobboard-service/internal/location"
	"jobmate/jobboard-service/internal/model"
)

// ContainsRedFlag returns true if any red flag term appears as a whole word
// (case-insensitive) in the combined title + company + description text.
func ContainsRedFlag(title, company, description string, redFlags []string) bool {
	if len(redFlags) == 0 {
		return false
	}
	return location.Matches(title+" "+company+" "+description, redFlags)
}

// Filter holds the lists an offer is checked against.
type Filter struct {
	Locations *location.Matcher
	Keywords  *location.Matcher // nil accepts every title/description
	RedFlags  []string
}

// New builds a Filter. Empty allowed falls back to the default allow-list;
// empty keywords disables the keyword check.
func New(allowed, keywords, redFlags []string) Filter {
	f := Filter{RedFlags: redFlags}
	if len(allowed) == 0 {
		f.Locations = location.Default()
	} else {
		f.Locations = location.NewMatcher(allowed)
	}
	if len(keywords) > 0 {
		f.Keywords = location.NewMatcher(keywords)
	}
	return f
}

// FromSearchConfig builds the Filter for one user's search config.
func FromSearchConfig(cfg model.SearchConfig) Filter {
	return New(cfg.Locations, cfg.Keywords, cfg.RedFlags)
}

// Accept reports whether job passes every check. An offer with no location
// text is rejected since it cannot be placed.
func (f Filter) Accept(job model.JobResult) bool {
	if !f.Locations.Match(job.Location) {
		return false
	}
	if f.Keywords != nil && !f.Keywords.Match(job.Title+" "+job.Description) {
		return false
	}
	return !ContainsRedFlag(job.Title, job.Company, job.Description, f.RedFlags)
}

// Any accepts an offer when at least one of its filters does. An empty Any
// accepts nothing.
type Any []Filter

// Accept reports whether any filter in a accepts job.
func (a Any) Accept(job model.JobResult) bool {
	for _, f := range a {
		if f.Accept(job) {
			return true
		}
	}
	return false
}
