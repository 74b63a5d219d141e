package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/zapponejosh/airac-api/internal/airac"
	"github.com/zapponejosh/airac-api/internal/config"
	"github.com/zapponejosh/airac-api/internal/database"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

// testEnv sets up a complete test environment with database, config, and router
type testEnv struct {
	db       *database.DB
	cfg      *config.Config
	handlers *Handlers
	router   http.Handler
	apiKey   string
}

// setupTest creates a fresh test environment
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	dbCfg := database.Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))

	db, err := database.Open(dbCfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	apiKey := "test-key-for-calendar-regeneration"
	cfg := &config.Config{
		Port:             8080,
		Env:              config.EnvStaging,
		DatabasePath:     ":memory:",
		APIKey:           apiKey,
		LogLevel:         "error",
		LogFormat:        "text",
		CycleLengthWeeks: 4,
		Epoch:            config.DefaultEpoch,
	}

	handlers := NewHandlers(db, airac.Default(), cfg, logger)
	handlers.now = func() time.Time {
		return time.Date(2020, time.January, 15, 12, 0, 0, 0, time.UTC)
	}

	return &testEnv{
		db:       db,
		cfg:      cfg,
		handlers: handlers,
		router:   SetupRoutes(handlers, cfg, logger),
		apiKey:   apiKey,
	}
}

// do sends a request through the full router
func (env *testEnv) do(method, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// envelope mirrors Response with a typed payload
type envelope[T any] struct {
	Success bool       `json:"success"`
	Data    T          `json:"data"`
	Error   *ErrorInfo `json:"error"`
}

// parseResponse parses JSON response
func parseResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var resp envelope[T]
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, rr.Body.String())
	}
	return resp
}

type cycleData struct {
	Date       string        `json:"date"`
	Identifier string        `json:"identifier"`
	Cycle      CycleResponse `json:"cycle"`
}

type rangeData struct {
	Count  int             `json:"count"`
	Cycles []CycleResponse `json:"cycles"`
}

type calendarData struct {
	Year   int                    `json:"year"`
	Stored bool                   `json:"stored"`
	Cycles []database.StoredCycle `json:"cycles"`
}

// =============================================================================
// HEALTH & MIDDLEWARE
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusOK)
	}

	resp := parseResponse[map[string]interface{}](t, rr)
	if resp.Data["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", resp.Data["status"])
	}
	if resp.Data["cycle_length_days"] != float64(28) {
		t.Errorf("cycle_length_days = %v, want 28", resp.Data["cycle_length_days"])
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/health", "")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "client-id-1")
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-ID"); got != "client-id-1" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-id-1")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1})))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTest(t)

	rr := env.do("OPTIONS", "/api/v1/cycles/current", "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Access-Control-Allow-Origin not set")
	}
}

func TestNotFoundRoute(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/api/v1/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	resp := parseResponse[any](t, rr)
	if resp.Error == nil || resp.Error.Code != CodeNotFound {
		t.Errorf("Error = %+v, want code %s", resp.Error, CodeNotFound)
	}
}

// =============================================================================
// CYCLE ENDPOINTS
// =============================================================================

func TestGetCycleByDate(t *testing.T) {
	tests := []struct {
		path          string
		wantID        string
		wantOrdinal   int
		wantEffective string
	}{
		{"/api/v1/cycles/date/2020-01-01", "1913", 13, "2019-12-05"},
		{"/api/v1/cycles/date/2020-01-02", "2001", 1, "2020-01-02"},
		{"/api/v1/cycles/date/2004-01-21", "0313", 13, "2003-12-25"},
		{"/api/v1/cycles/date/2020-01-30?weeks=1", "2005", 5, "2020-01-30"},
	}

	env := setupTest(t)
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := env.do("GET", tt.path, "")
			if rr.Code != http.StatusOK {
				t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
			}

			resp := parseResponse[cycleData](t, rr)
			if resp.Data.Cycle.Identifier != tt.wantID {
				t.Errorf("Identifier = %s, want %s", resp.Data.Cycle.Identifier, tt.wantID)
			}
			if resp.Data.Cycle.Ordinal != tt.wantOrdinal {
				t.Errorf("Ordinal = %d, want %d", resp.Data.Cycle.Ordinal, tt.wantOrdinal)
			}
			if resp.Data.Cycle.EffectiveDate != tt.wantEffective {
				t.Errorf("EffectiveDate = %s, want %s", resp.Data.Cycle.EffectiveDate, tt.wantEffective)
			}
		})
	}
}

func TestGetCycleByDate_Invalid(t *testing.T) {
	env := setupTest(t)

	for _, path := range []string{
		"/api/v1/cycles/date/2021-02-30",
		"/api/v1/cycles/date/not-a-date",
	} {
		rr := env.do("GET", path, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: Status = %d, want %d", path, rr.Code, http.StatusBadRequest)
			continue
		}
		resp := parseResponse[any](t, rr)
		if resp.Error == nil || resp.Error.Code != CodeInvalidDate {
			t.Errorf("%s: Error = %+v, want code %s", path, resp.Error, CodeInvalidDate)
		}
	}
}

func TestGetCycleByIdentifier(t *testing.T) {
	tests := []struct {
		path          string
		wantEffective string
		wantYear      int
	}{
		{"/api/v1/cycles/identifier/1913", "2019-12-05", 2019},
		{"/api/v1/cycles/identifier/2001", "2020-01-02", 2020},
		{"/api/v1/cycles/identifier/6301", "2063-01-04", 2063},
		{"/api/v1/cycles/identifier/6401", "1964-01-16", 1964},
		{"/api/v1/cycles/identifier/2005?weeks=1", "2020-01-30", 2020},
		{"/api/v1/cycles/identifier/2000", "2019-12-05", 2019},
		{"/api/v1/cycles/identifier/2415", "2025-02-20", 2025},
	}

	env := setupTest(t)
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := env.do("GET", tt.path, "")
			if rr.Code != http.StatusOK {
				t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
			}
			resp := parseResponse[cycleData](t, rr)
			if resp.Data.Cycle.EffectiveDate != tt.wantEffective {
				t.Errorf("EffectiveDate = %s, want %s", resp.Data.Cycle.EffectiveDate, tt.wantEffective)
			}
			if resp.Data.Cycle.Year != tt.wantYear {
				t.Errorf("Year = %d, want %d", resp.Data.Cycle.Year, tt.wantYear)
			}
		})
	}
}

func TestGetCycleByIdentifier_Invalid(t *testing.T) {
	env := setupTest(t)

	for _, id := range []string{"301", "20011", "20a1", "-001"} {
		rr := env.do("GET", "/api/v1/cycles/identifier/"+id, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: Status = %d, want %d", id, rr.Code, http.StatusBadRequest)
			continue
		}
		resp := parseResponse[any](t, rr)
		if resp.Error == nil || resp.Error.Code != CodeInvalidIdentifier {
			t.Errorf("%s: Error = %+v, want code %s", id, resp.Error, CodeInvalidIdentifier)
		}
	}
}

func TestGetCurrentCycle(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/api/v1/cycles/current", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
	resp := parseResponse[cycleData](t, rr)
	if resp.Data.Date != "2020-01-15" {
		t.Errorf("Date = %s, want 2020-01-15", resp.Data.Date)
	}
	if resp.Data.Cycle.Identifier != "2001" {
		t.Errorf("Identifier = %s, want 2001", resp.Data.Cycle.Identifier)
	}
	if resp.Data.Cycle.EndDate != "2020-01-29" {
		t.Errorf("EndDate = %s, want 2020-01-29", resp.Data.Cycle.EndDate)
	}
}

func TestGetCycleRange(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/api/v1/cycles/range?start=2020-01-01&end=2020-02-01", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := parseResponse[rangeData](t, rr)
	if resp.Data.Count != 3 {
		t.Fatalf("Count = %d, want 3", resp.Data.Count)
	}
	want := []string{"1913", "2001", "2002"}
	for i, cy := range resp.Data.Cycles {
		if cy.Identifier != want[i] {
			t.Errorf("Cycles[%d] = %s, want %s", i, cy.Identifier, want[i])
		}
	}
}

func TestGetCycleRange_Invalid(t *testing.T) {
	env := setupTest(t)

	for _, path := range []string{
		"/api/v1/cycles/range?start=2020-01-01",
		"/api/v1/cycles/range?start=2020-02-01&end=2020-01-01",
		"/api/v1/cycles/range?start=2000-01-01&end=2020-01-01",
		"/api/v1/cycles/range?start=2020-01-01&end=2020-02-31",
		"/api/v1/cycles/range?start=2020-01-01&end=2020-02-01&weeks=0",
		"/api/v1/cycles/range?start=2020-01-01&end=2020-02-01&weeks=x",
	} {
		rr := env.do("GET", path, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: Status = %d, want %d", path, rr.Code, http.StatusBadRequest)
		}
	}
}

// =============================================================================
// CALENDAR ENDPOINTS
// =============================================================================

func TestGetCalendar_GeneratesThenStores(t *testing.T) {
	env := setupTest(t)

	rr := env.do("GET", "/api/v1/calendar/2020", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := parseResponse[calendarData](t, rr)
	if resp.Data.Stored {
		t.Error("Stored = true on first request, want false")
	}
	if len(resp.Data.Cycles) != 14 {
		t.Errorf("len(Cycles) = %d, want 14", len(resp.Data.Cycles))
	}

	rr = env.do("GET", "/api/v1/calendar/2020", "")
	resp = parseResponse[calendarData](t, rr)
	if !resp.Data.Stored {
		t.Error("Stored = false on second request, want true")
	}
	if resp.Data.Cycles[13].Identifier != "2014" {
		t.Errorf("Cycles[13] = %s, want 2014", resp.Data.Cycles[13].Identifier)
	}
}

func TestGetCalendar_InvalidYear(t *testing.T) {
	env := setupTest(t)

	for _, path := range []string{"/api/v1/calendar/abc", "/api/v1/calendar/0", "/api/v1/calendar/10000"} {
		rr := env.do("GET", path, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: Status = %d, want %d", path, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestRegenerateCalendar_Auth(t *testing.T) {
	env := setupTest(t)

	rr := env.do("POST", "/api/v1/calendar/2024", "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("missing key: Status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	rr = env.do("POST", "/api/v1/calendar/2024", "wrong-key")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: Status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	rr = env.do("POST", "/api/v1/calendar/2024?weeks=1", env.apiKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("valid key: Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := parseResponse[calendarData](t, rr)
	if len(resp.Data.Cycles) != 52 {
		t.Errorf("len(Cycles) = %d, want 52 weekly cycles in 2024", len(resp.Data.Cycles))
	}

	stats, err := env.db.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.Calendars != 1 || stats.Cycles != 52 {
		t.Errorf("GetStats() = %+v, want 1 calendar with 52 cycles", stats)
	}
}

func TestAuthMiddleware_DevelopmentWithoutKey(t *testing.T) {
	cfg := &config.Config{Env: config.EnvDevelopment}
	handler := AuthMiddleware(cfg, slog.Default())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := setupTest(t)

	rr := env.do("DELETE", "/api/v1/calendar/2020", env.apiKey)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}
