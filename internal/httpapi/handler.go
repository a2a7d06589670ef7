// Package httpapi implements the HTTP handlers for the jobboard service.
//
// Routes:
//
//	GET  /settings/keywords           → current search keywords
//	PUT  /settings/keywords           → replace keywords (JSON array)
//	GET  /settings/locations          → current allowed locations
//	PUT  /settings/locations          → replace allowed locations ({"allowed": [...]})
//	GET  /companies                   → companies.json
//	GET  /companies/discovered        → discovered_companies.json
//	GET  /locations/match?text=…      → whole-word location check
//	POST /jobs/filter                 → keep the offers that pass the filter
//
// /locations/match and /jobs/filter accept ?config=<search config id> to use
// that config's lists instead of the saved settings. /jobs/filter also takes
// ?config=active: an offer is kept when any active search config accepts it.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"jobmate/jobboard-service/internal/db"
	"jobmate/jobboard-service/internal/filter"
	"jobmate/jobboard-service/internal/location"
	"jobmate/jobboard-service/internal/model"
	"jobmate/jobboard-service/internal/settings"
)

const (
	maxBodyBytes = 1 << 20

	// activeConfigs selects every is_active search config in /jobs/filter.
	activeConfigs = "active"
)

// accepter is satisfied by filter.Filter and filter.Any.
type accepter interface {
	Accept(job model.JobResult) bool
}

// Handler holds shared dependencies.
type Handler struct {
	store   *settings.Store
	snap    *settings.Snapshot
	configs db.Querier // nil when DATABASE_URL is not set
}

// NewHandler returns a configured Handler. configs may be nil.
func NewHandler(store *settings.Store, snap *settings.Snapshot, configs db.Querier) *Handler {
	return &Handler{store: store, snap: snap, configs: configs}
}

// RegisterRoutes mounts all jobboard routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/settings/keywords", h.handleKeywords)
	mux.HandleFunc("/settings/locations", h.handleLocations)
	mux.HandleFunc("/companies", h.handleCompanies)
	mux.HandleFunc("/companies/discovered", h.handleDiscovered)
	mux.HandleFunc("/locations/match", h.handleMatch)
	mux.HandleFunc("/jobs/filter", h.handleFilter)
}

// ─── Settings ─────────────────────────────────────────────────────────────────

type locationsResponse struct {
	Allowed []string `json:"allowed"`
}

func (h *Handler) handleKeywords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.snap.Keywords())
	case http.MethodPut:
		var body []string
		if !decodeBody(w, r, &body) {
			return
		}
		keywords := cleanList(body)
		if len(keywords) == 0 {
			jsonError(w, "keywords must contain at least one non-blank entry", http.StatusBadRequest)
			return
		}
		if err := h.store.SaveKeywords(r.Context(), keywords); err != nil {
			log.Printf("[httpapi] SaveKeywords error: %v", err)
			jsonError(w, "could not save keywords", http.StatusInternalServerError)
			return
		}
		h.snap.Reload(h.store)
		writeJSON(w, http.StatusOK, keywords)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleLocations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, locationsResponse{Allowed: h.snap.AllowedLocations()})
	case http.MethodPut:
		var body struct {
			Allowed *[]string `json:"allowed"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Allowed == nil {
			jsonError(w, `"allowed" is required`, http.StatusBadRequest)
			return
		}
		locs := model.Locations{Allowed: cleanList(*body.Allowed)}
		if err := h.store.SaveLocations(r.Context(), locs); err != nil {
			log.Printf("[httpapi] SaveLocations error: %v", err)
			jsonError(w, "could not save locations", http.StatusInternalServerError)
			return
		}
		h.snap.Reload(h.store)
		writeJSON(w, http.StatusOK, locationsResponse{Allowed: locs.Allowed})
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCompanies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.store.LoadCompanies())
}

func (h *Handler) handleDiscovered(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.store.LoadDiscoveredCompanies())
}

// ─── Matching ─────────────────────────────────────────────────────────────────

type matchResponse struct {
	Match   bool     `json:"match"`
	Allowed []string `json:"allowed"`
}

// handleMatch handles GET /locations/match?text=…[&config=id]
func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	f, ok := h.filterFor(w, r)
	if !ok {
		return
	}
	text := r.URL.Query().Get("text")
	writeJSON(w, http.StatusOK, matchResponse{
		Match:   f.Locations.Match(text),
		Allowed: f.Locations.Terms(),
	})
}

type filterResponse struct {
	Accepted []model.JobResult `json:"accepted"`
	Rejected int               `json:"rejected"`
}

// handleFilter handles POST /jobs/filter[?config=id|active] with a JSON array
// of offers.
func (h *Handler) handleFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var jobs []model.JobResult
	if !decodeBody(w, r, &jobs) {
		return
	}

	var (
		f  accepter
		ok bool
	)
	if r.URL.Query().Get("config") == activeConfigs {
		f, ok = h.activeFilters(w, r)
	} else {
		f, ok = h.filterFor(w, r)
	}
	if !ok {
		return
	}

	resp := filterResponse{Accepted: make([]model.JobResult, 0, len(jobs))}
	for _, job := range jobs {
		if f.Accept(job) {
			resp.Accepted = append(resp.Accepted, job)
		} else {
			resp.Rejected++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// filterFor returns the filter selected by the optional ?config= parameter,
// or one built from the current settings snapshot. It writes the error
// response itself and returns ok=false on failure.
func (h *Handler) filterFor(w http.ResponseWriter, r *http.Request) (filter.Filter, bool) {
	id := r.URL.Query().Get("config")
	if id == "" {
		return filter.Filter{
			Locations: h.snap.Locations(),
			Keywords:  location.NewMatcher(h.snap.Keywords()),
		}, true
	}

	if h.configs == nil {
		jsonError(w, "search configs unavailable: no database configured", http.StatusServiceUnavailable)
		return filter.Filter{}, false
	}
	if _, err := uuid.Parse(id); err != nil {
		jsonError(w, "config must be a UUID", http.StatusBadRequest)
		return filter.Filter{}, false
	}

	cfg, err := db.LoadSearchConfig(r.Context(), h.configs, id)
	switch {
	case errors.Is(err, db.ErrNotFound):
		jsonError(w, "search config not found", http.StatusNotFound)
		return filter.Filter{}, false
	case errors.Is(err, context.Canceled):
		return filter.Filter{}, false
	case err != nil:
		log.Printf("[httpapi] LoadSearchConfig(%s) error: %v", id, err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return filter.Filter{}, false
	}
	return filter.FromSearchConfig(cfg), true
}

// activeFilters builds one filter per active search config.
func (h *Handler) activeFilters(w http.ResponseWriter, r *http.Request) (filter.Any, bool) {
	if h.configs == nil {
		jsonError(w, "search configs unavailable: no database configured", http.StatusServiceUnavailable)
		return nil, false
	}

	configs, err := db.LoadActiveConfigs(r.Context(), h.configs)
	switch {
	case errors.Is(err, context.Canceled):
		return nil, false
	case err != nil:
		log.Printf("[httpapi] LoadActiveConfigs error: %v", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	filters := make(filter.Any, 0, len(configs))
	for _, cfg := range configs {
		filters = append(filters, filter.FromSearchConfig(cfg))
	}
	return filters, true
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// cleanList trims entries and drops blank ones.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
