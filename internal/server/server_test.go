package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/jobtrack/internal/config"
	"github.com/jonathan/jobtrack/internal/form"
	"github.com/jonathan/jobtrack/internal/logging"
	"github.com/jonathan/jobtrack/internal/seed"
	"github.com/jonathan/jobtrack/internal/server/ratelimit"
	"github.com/jonathan/jobtrack/internal/store"
	"github.com/jonathan/jobtrack/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(st *store.Store) Config {
	return Config{
		Port:      0,
		PageSize:  10,
		Store:     st,
		JWT:       &config.JWTConfig{Secret: "test-secret-key", ExpirationHours: 1},
		RateLimit: &ratelimit.Config{Enabled: false},
		Logger:    logging.Discard(),
	}
}

// newTestServer returns a server over a store seeded with the demo records.
func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	st := store.New()
	_, err := seed.Load(st, "")
	require.NoError(t, err)

	srv, err := New(testConfig(st))
	require.NoError(t, err)
	t.Cleanup(srv.rateLimiter.Stop)
	return srv, srv.Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func login(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	w := doRequest(t, h, http.MethodPost, "/login", "", types.LoginRequest{Email: email, Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[types.LoginResponse](t, w).Token
}

type pageResponse struct {
	Records      []types.ApplicationRecord `json:"records"`
	TotalCount   int                       `json:"totalCount"`
	TotalPages   int                       `json:"totalPages"`
	Page         int                       `json:"page"`
	PageSize     int                       `json:"pageSize"`
	ViewState    types.ViewParams          `json:"viewState"`
	Summary      types.TableSummary        `json:"summary"`
	StatusColors map[string]string         `json:"statusColors"`
}

func companyNames(records []types.ApplicationRecord) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.CompanyName)
	}
	return names
}

func TestHealthEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	w := doRequest(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestNotFound(t *testing.T) {
	_, h := newTestServer(t)

	for _, path := range []string{"/nope", "/applications/1/extra", "/profile"} {
		w := doRequest(t, h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"error":"page not found"}`, w.Body.String())
	}
}

func TestHome(t *testing.T) {
	_, h := newTestServer(t)

	w := doRequest(t, h, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	anon := decode[homeResponse](t, w)
	assert.Equal(t, "JobTracker", anon.Name)
	assert.Nil(t, anon.User)

	token := login(t, h, "boss.admin@example.com")
	signedIn := decode[homeResponse](t, doRequest(t, h, http.MethodGet, "/", token, nil))
	require.NotNil(t, signedIn.User)
	assert.Equal(t, types.RoleAdmin, signedIn.User.Role)
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestServer(t)

	w := doRequest(t, h, http.MethodOptions, "/applications", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestLogin(t *testing.T) {
	_, h := newTestServer(t)

	w := doRequest(t, h, http.MethodPost, "/login", "", types.LoginRequest{Email: "jane@example.com", Password: "hunter2"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[types.LoginResponse](t, w)
	assert.Equal(t, types.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_ValidationErrors(t *testing.T) {
	_, h := newTestServer(t)

	w := doRequest(t, h, http.MethodPost, "/login", "", types.LoginRequest{Email: "jane", Password: "123"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode[errorBody](t, w)
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, "Please enter a valid email address", body.Fields["email"])
	assert.Equal(t, "Password must be at least 6 characters", body.Fields["password"])
}

func TestLogin_BadBody(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, h := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/dashboard"},
		{http.MethodGet, "/applications"},
		{http.MethodPost, "/applications"},
		{http.MethodPost, "/add-application"},
		{http.MethodGet, "/applications/1"},
		{http.MethodPatch, "/applications/1"},
		{http.MethodDelete, "/applications/1"},
		{http.MethodPost, "/applications/sort"},
		{http.MethodPost, "/applications/reset"},
		{http.MethodPost, "/logout"},
	}
	for _, rt := range routes {
		w := doRequest(t, h, rt.method, rt.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
}

func TestLogout(t *testing.T) {
	_, h := newTestServer(t)
	token := login(t, h, "jane@example.com")

	w := doRequest(t, h, http.MethodPost, "/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, h, http.MethodGet, "/dashboard", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboard(t *testing.T) {
	_, h := newTestServer(t)
	token := login(t, h, "jane@example.com")

	w := doRequest(t, h, http.MethodGet, "/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	d := decode[types.Dashboard](t, w)
	assert.Equal(t, "jane@example.com", d.User.Email)
	assert.Equal(t, 5, d.Stats.Total)
	assert.Equal(t, 1, d.Stats.Selected)
	assert.Equal(t, 20.0, d.Stats.OfferRate)
	assert.Equal(t, []string{"Google", "Apple", "Amazon", "Microsoft", "Meta"}, companyNames(d.Recent))
}

func TestListApplications_Default(t *testing.T) {
	_, h := newTestServer(t)
	token := login(t, h, "jane@example.com")

	w := doRequest(t, h, http.MethodGet, "/applications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	page := decode[pageResponse](t, w)
	assert.Equal(t, []string{"Google", "Apple", "Amazon", "Microsoft", "Meta"}, companyNames(page.Records))
	assert.Equal(t, 5, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, types.DefaultViewParams(), page.ViewState)
	assert.Equal(t, types.TableSummary{Total: 5, ActiveInterviews: 1, PendingReview: 2, Rejected: 1}, page.Summary)
	assert.Equal(t, "success", page.StatusColors["Selected"])
}

func TestListApplications_SearchAndFilters(t *testing.T) {
	_, h := newTestServer(t)
	token := login(t, h, "jane@example.com")

	page := decode[pageResponse](t, doRequest(t, h, http.MethodGet, "/applications?search=remote", token, nil))
	assert.ElementsMatch(t, []string{"Google", "Meta"}, companyNames(page.Records))

	// Filters stick to the session across requests.
	page = decode[pageResponse](t, doRequest(t, h, http.MethodGet, "/applications?jobType=Full-time", token, nil))
	assert.Equal(t, []string{"Google"}, companyNames(page.Records))
	assert.Equal(t, "remote", page.ViewState.Search)

	page = decode[pageResponse](t, doRequest(t, h, http.MethodGet, "/applications?search=zzz", token, nil))
	assert.Empty(t, page.Records)
	assert.Zero(t, page.TotalPages)
}

func TestListApplications_PageClamped(t *testing.T) {
	_, h := newTestServer(t)
	token := login(t, h, "jane@example.com")

	page := decode[pageResponse](t, doRequest(t, h, http.MethodGet, "/applications?page=99", token, nil))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.ViewState.Page)
	assert.Len(t, page.Records, 5)
}

func TestListApplications_SearchResetsPage(t *testing.T) {
	srv, h := newTestServer(t)
	for i := 0; i < 20; i++ {
		srv.store.Add(types.ApplicationRecord{
			CompanyName: "Filler",
			JobTitle:    "Engineer",
			JobType:     types.JobTypeRemote,
			Status:      types.StatusApplied,
			Location:    "Remote",
			AppliedDate: types.NewDate(2023, time.June, 1),
		})
	}
	token := login(t, h, "jane@example.com")

	page := decode[pageResponse](t, doRequest(t, h, http.MethodGet, "/applications?page=3", token, nil))
	require.Equal(t, 3, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Records, 5)

	page = decode[pageResponse](t, doRequest(t, h, http.MethodGet, "/applications?search=engineer", token, nil))
	assert.Equal(t, 1, page.Page)
}

func TestListApplications_BadParam(t *testing.T) {
	_, h := newTestServer(t)
	token := login(t, h, "jane@example.com")

	w := doRequest(t, h, http.MethodGet, "/applications?sort=salary", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The failed request left the view alone.
	page := decode[pageResponse](t, doRequest(t, h, http.MethodGet, "/applications", token, nil))
	assert.Equal(t, types.SortByAppliedDate, page.ViewState.SortKey)
}

func TestListApplications_PageBounds(t *testing.T) {
	_, h := newTestServer(t)
	token := login(t, h, "jane@example.com")

	w := doRequest(t, h, http.MethodGet, "/applications?pageSize=4611686018427387904&page=3", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, http.MethodGet, "/applications?pageSize=100&page=9223372036854775807", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[pageResponse](t, w)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Records, 5)
}

func TestToggleSortAndReset(t *testing.T) {
	_, h := newTestServer(t)
	token := login(t, h, "jane@example.com")

	w := doRequest(t, h, http.MethodPost, "/applications/sort", token, sortRequest{Key: types.SortByCompanyName})
	require.Equal(t, http.StatusOK, w.Code)

	page := decode[pageResponse](t, doRequest(t, h, http.MethodGet, "/applications", token, nil))
	assert.Equal(t, []string{"Amazon", "Apple", "Google", "Meta", "Microsoft"}, companyNames(page.Records))

	doRequest(t, h, http.MethodPost, "/applications/sort", token, sortRequest{Key: types.SortByCompanyName})
	page = decode[pageResponse](t, doRequest(t, h, http.MethodGet, "/applications", token, nil))
	assert.Equal(t, []string{"Microsoft", "Meta", "Google", "Apple", "Amazon"}, companyNames(page.Records))

	w = doRequest(t, h, http.MethodPost, "/applications/sort", token, sortRequest{Key: "salary"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, http.MethodPost, "/applications/reset", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[pageResponse](t, doRequest(t, h, http.MethodGet, "/applications", token, nil))
	assert.Equal(t, types.DefaultViewParams(), page.ViewState)
}

func TestViewStateIsPerSession(t *testing.T) {
	_, h := newTestServer(t)
	jane := login(t, h, "jane@example.com")
	joe := login(t, h, "joe@example.com")

	doRequest(t, h, http.MethodGet, "/applications?status=Rejected", jane, nil)

	page := decode[pageResponse](t, doRequest(t, h, http.MethodGet, "/applications", joe, nil))
	assert.Len(t, page.Records, 5)
}

func TestCreateApplication(t *testing.T) {
	for _, path := range []string{"/applications", "/add-application"} {
		t.Run(path, func(t *testing.T) {
			srv, h := newTestServer(t)
			token := login(t, h, "jane@example.com")

			w := doRequest(t, h, http.MethodPost, path, token, form.Submission{
				CompanyName: "Netflix",
				JobTitle:    "Platform Engineer",
				JobType:     types.JobTypeHybrid,
				Status:      types.StatusApplied,
				Location:    "Los Gatos, CA",
				AppliedDate: types.NewDate(2024, time.February, 1),
			})
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			res := decode[form.Result](t, w)
			assert.Equal(t, int64(6), res.Record.ID)
			assert.Equal(t, "/applications", res.Redirect)
			assert.Equal(t, "/applications/6", w.Header().Get("Location"))
			assert.Equal(t, 6, srv.store.Len())
		})
	}
}

func TestCreateApplication_Validation(t *testing.T) {
	srv, h := newTestServer(t)
	token := login(t, h, "jane@example.com")

	w := doRequest(t, h, http.MethodPost, "/applications", token, map[string]string{"companyName": "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode[errorBody](t, w)
	assert.Equal(t, "Company name is required", body.Fields["companyName"])
	assert.Equal(t, "Location is required", body.Fields["location"])
	assert.Equal(t, 5, srv.store.Len())
}

func TestGetUpdateDeleteApplication(t *testing.T) {
	srv, h := newTestServer(t)
	token := login(t, h, "jane@example.com")

	w := doRequest(t, h, http.MethodGet, "/applications/2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	before := decode[types.ApplicationRecord](t, w)
	assert.Equal(t, "Amazon", before.CompanyName)

	w = doRequest(t, h, http.MethodPatch, "/applications/2", token, map[string]any{"id": 77, "status": "Interview Scheduled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	after := decode[types.ApplicationRecord](t, w)
	assert.Equal(t, types.StatusInterviewScheduled, after.Status)
	before.Status = types.StatusInterviewScheduled
	assert.Equal(t, before, after, "only status changed")

	w = doRequest(t, h, http.MethodPut, "/applications/2", token, map[string]any{"jobType": "Gig"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, http.MethodDelete, "/applications/2", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 4, srv.store.Len())

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		w = doRequest(t, h, method, "/applications/2", token, map[string]any{})
		assert.Equal(t, http.StatusNotFound, w.Code, method)
	}

	w = doRequest(t, h, http.MethodGet, "/applications/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateApplication_TrimsAndRejectsBlankDate(t *testing.T) {
	_, h := newTestServer(t)
	token := login(t, h, "jane@example.com")

	w := doRequest(t, h, http.MethodPatch, "/applications/1", token, map[string]any{"companyName": "  Alphabet  ", "location": " Zurich "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec := decode[types.ApplicationRecord](t, w)
	assert.Equal(t, "Alphabet", rec.CompanyName)
	assert.Equal(t, "Zurich", rec.Location)

	w = doRequest(t, h, http.MethodPatch, "/applications/1", token, map[string]any{"appliedDate": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, http.MethodGet, "/applications/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-01-15", decode[types.ApplicationRecord](t, w).AppliedDate.String(), "date kept")
}

func TestRateLimit(t *testing.T) {
	st := store.New()
	cfg := testConfig(st)
	cfg.RateLimit = &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Tiers:         ratelimit.DefaultTiers(2, 100),
		Rules:         ratelimit.DefaultRules(),
	}
	srv, err := New(cfg)
	require.NoError(t, err)
	defer srv.rateLimiter.Stop()
	h := srv.Handler()

	creds := types.LoginRequest{Email: "jane@example.com", Password: "secret1"}
	w := doRequest(t, h, http.MethodPost, "/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	w = doRequest(t, h, http.MethodPost, "/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = doRequest(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t)
	login(t, h, "jane@example.com")
	doRequest(t, h, http.MethodGet, "/health", "", nil)

	w := doRequest(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `jobtrack_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, body, `jobtrack_auth_logins_total{result="success"} 1`)
	assert.Contains(t, body, "jobtrack_applications_records 5")
}

func TestServe_GracefulShutdown(t *testing.T) {
	srv, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
