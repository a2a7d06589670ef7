package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/jobboard-service/internal/config"
	"jobmate/jobboard-service/internal/db"
	"jobmate/jobboard-service/internal/httpapi"
	"jobmate/jobboard-service/internal/model"
	"jobmate/jobboard-service/internal/settings"
)

const knownConfigID = "5f0c6a1e-3b7d-4c8e-9a51-2d4f6b8e0c13"

// configRow scans a fixed search config, or pgx.ErrNoRows for unknown ids.
type configRow struct{ found bool }

func (r configRow) Scan(dest ...any) error {
	if !r.found {
		return pgx.ErrNoRows
	}
	*dest[0].(*string) = knownConfigID
	*dest[3].(*[]string) = []string{"berlin"}
	*dest[5].(*[]string) = []string{"golang"}
	*dest[6].(*[]string) = []string{"unpaid"}
	return nil
}

// activeRows iterates over a fixed set of search configs.
type activeRows struct {
	configs []model.SearchConfig
	pos     int
}

func (r *activeRows) Close()                                       {}
func (r *activeRows) Err() error                                   { return nil }
func (r *activeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *activeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *activeRows) Values() ([]any, error)                       { return nil, nil }
func (r *activeRows) RawValues() [][]byte                          { return nil }
func (r *activeRows) Conn() *pgx.Conn                              { return nil }

func (r *activeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.configs)
}

func (r *activeRows) Scan(dest ...any) error {
	c := r.configs[r.pos-1]
	*dest[0].(*string) = c.ID
	*dest[3].(*[]string) = c.Locations
	*dest[5].(*[]string) = c.Keywords
	*dest[6].(*[]string) = c.RedFlags
	return nil
}

type fakeConfigs struct {
	active   []model.SearchConfig
	queryErr error
}

func (f fakeConfigs) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &activeRows{configs: f.active}, nil
}

func (fakeConfigs) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	return configRow{found: args[0] == knownConfigID}
}

func newServer(t *testing.T, configs db.Querier) http.Handler {
	t.Helper()
	store := settings.NewStore(config.NewPaths(t.TempDir(), ""), nil)
	snap := settings.NewSnapshot()
	snap.Reload(store)

	mux := http.NewServeMux()
	httpapi.NewHandler(store, snap, configs).RegisterRoutes(mux)
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type matchBody struct {
	Match   bool     `json:"match"`
	Allowed []string `json:"allowed"`
}

func matchURL(text, configID string) string {
	q := url.Values{"text": {text}}
	if configID != "" {
		q.Set("config", configID)
	}
	return "/locations/match?" + q.Encode()
}

// ── Keywords ───────────────────────────────────────────────────────────────

func TestKeywords(t *testing.T) {
	h := newServer(t, nil)

	rec := do(t, h, http.MethodGet, "/settings/keywords", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, settings.DefaultKeywords(), decode[[]string](t, rec))

	rec = do(t, h, http.MethodPut, "/settings/keywords", `[" golang ", "", "sre"]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"golang", "sre"}, decode[[]string](t, rec))

	rec = do(t, h, http.MethodGet, "/settings/keywords", "")
	assert.Equal(t, []string{"golang", "sre"}, decode[[]string](t, rec))
}

func TestKeywords_BadRequests(t *testing.T) {
	h := newServer(t, nil)

	for _, body := range []string{`[]`, `["  "]`, `{"a":1}`, `not json`} {
		rec := do(t, h, http.MethodPut, "/settings/keywords", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
	rec := do(t, h, http.MethodDelete, "/settings/keywords", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ── Locations ──────────────────────────────────────────────────────────────

func TestLocations_SaveThenMatch(t *testing.T) {
	h := newServer(t, nil)

	rec := do(t, h, http.MethodPut, "/settings/locations", `{"allowed": ["Berlin", " remote "]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	put := decode[map[string][]string](t, rec)["allowed"]
	assert.Equal(t, []string{"Berlin", "remote"}, put)

	// GET returns exactly what PUT stored.
	rec = do(t, h, http.MethodGet, "/settings/locations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, put, decode[map[string][]string](t, rec)["allowed"])

	rec = do(t, h, http.MethodGet, matchURL("Berlin, Germany", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[matchBody](t, rec).Match)

	rec = do(t, h, http.MethodGet, matchURL("Remote (USA)", ""), "")
	assert.True(t, decode[matchBody](t, rec).Match)

	rec = do(t, h, http.MethodGet, matchURL("USA", ""), "")
	assert.False(t, decode[matchBody](t, rec).Match)
}

func TestLocations_MissingAllowed(t *testing.T) {
	h := newServer(t, nil)
	rec := do(t, h, http.MethodPut, "/settings/locations", `{"locations": ["x"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ── Match ──────────────────────────────────────────────────────────────────

func TestMatch_DefaultAllowList(t *testing.T) {
	h := newServer(t, nil)

	rec := do(t, h, http.MethodGet, matchURL("Remote (Worldwide)", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[matchBody](t, rec)
	assert.True(t, body.Match)
	assert.Contains(t, body.Allowed, "worldwide")

	rec = do(t, h, http.MethodGet, matchURL("Sydney, Australia", ""), "")
	assert.False(t, decode[matchBody](t, rec).Match)
}

func TestMatch_SearchConfig(t *testing.T) {
	t.Run("NoDatabase", func(t *testing.T) {
		rec := do(t, newServer(t, nil), http.MethodGet, matchURL("Berlin", knownConfigID), "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	h := newServer(t, fakeConfigs{})

	t.Run("BadID", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, matchURL("Berlin", "not-a-uuid"), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, matchURL("Berlin", "00000000-0000-0000-0000-000000000000"), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Known", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, matchURL("Berlin, DE", knownConfigID), "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[matchBody](t, rec)
		assert.True(t, body.Match)
		assert.Equal(t, []string{"berlin"}, body.Allowed)

		rec = do(t, h, http.MethodGet, matchURL("Remote", knownConfigID), "")
		assert.False(t, decode[matchBody](t, rec).Match)
	})
}

// ── Filter ─────────────────────────────────────────────────────────────────

type filterBody struct {
	Accepted []model.JobResult `json:"accepted"`
	Rejected int               `json:"rejected"`
}

func TestFilter_WithSettings(t *testing.T) {
	h := newServer(t, nil)
	jobs := `[
		{"title": "DevOps Engineer", "location": "Remote - USA"},
		{"title": "DevOps Engineer", "location": "Sydney, Australia"},
		{"title": "Sales Manager", "location": "Remote"}
	]`
	rec := do(t, h, http.MethodPost, "/jobs/filter", jobs)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[filterBody](t, rec)
	require.Len(t, body.Accepted, 1)
	assert.Equal(t, "Remote - USA", body.Accepted[0].Location)
	assert.Equal(t, 2, body.Rejected)
}

func TestFilter_WithSearchConfig(t *testing.T) {
	h := newServer(t, fakeConfigs{})
	jobs := `[
		{"title": "Golang Developer", "location": "Berlin"},
		{"title": "Golang Developer", "location": "Berlin", "description": "unpaid trial week"},
		{"title": "Golang Developer", "location": "Remote"}
	]`
	rec := do(t, h, http.MethodPost, "/jobs/filter?config="+knownConfigID, jobs)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[filterBody](t, rec)
	assert.Len(t, body.Accepted, 1)
	assert.Equal(t, 2, body.Rejected)
}

func TestFilter_ActiveConfigs(t *testing.T) {
	h := newServer(t, fakeConfigs{active: []model.SearchConfig{
		{ID: "a", Locations: []string{"berlin"}, Keywords: []string{"golang"}},
		{ID: "b", Locations: []string{"remote"}, Keywords: []string{"sre"}, RedFlags: []string{"unpaid"}},
	}})
	jobs := `[
		{"title": "Golang Developer", "location": "Berlin"},
		{"title": "SRE", "location": "Remote"},
		{"title": "SRE", "location": "Remote", "description": "unpaid"},
		{"title": "Golang Developer", "location": "Remote"}
	]`
	rec := do(t, h, http.MethodPost, "/jobs/filter?config=active", jobs)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[filterBody](t, rec)
	require.Len(t, body.Accepted, 2)
	assert.Equal(t, "Berlin", body.Accepted[0].Location)
	assert.Equal(t, "SRE", body.Accepted[1].Title)
	assert.Equal(t, 2, body.Rejected)
}

func TestFilter_ActiveConfigsErrors(t *testing.T) {
	jobs := `[{"title": "SRE", "location": "Remote"}]`

	t.Run("NoDatabase", func(t *testing.T) {
		rec := do(t, newServer(t, nil), http.MethodPost, "/jobs/filter?config=active", jobs)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("QueryFails", func(t *testing.T) {
		h := newServer(t, fakeConfigs{queryErr: errors.New("conn reset")})
		rec := do(t, h, http.MethodPost, "/jobs/filter?config=active", jobs)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("NoneActive", func(t *testing.T) {
		rec := do(t, newServer(t, fakeConfigs{}), http.MethodPost, "/jobs/filter?config=active", jobs)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[filterBody](t, rec)
		assert.Empty(t, body.Accepted)
		assert.Equal(t, 1, body.Rejected)
	})
}

func TestFilter_BadBody(t *testing.T) {
	rec := do(t, newServer(t, nil), http.MethodPost, "/jobs/filter", `{"title": "x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ── Companies ──────────────────────────────────────────────────────────────

func TestCompanies_EmptyDocuments(t *testing.T) {
	h := newServer(t, nil)
	for _, path := range []string{"/companies", "/companies/discovered"} {
		rec := do(t, h, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{}`, rec.Body.String(), path)
	}
}
