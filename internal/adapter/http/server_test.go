package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-widgets/internal/adapter/api"
	"github.com/simaogato/wealthflow-widgets/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-widgets/internal/domain"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/series"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/simulation"
)

var refreshed = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

const testToken = "widget-token"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()

	instruments := memory.NewInstrumentRepository()
	require.NoError(t, instruments.Create(ctx, &domain.Instrument{ID: "sp500", Name: "S&P 500", Kind: domain.InstrumentKindIndex, Currency: "USD"}))
	require.NoError(t, instruments.Create(ctx, &domain.Instrument{ID: "uah-deposit", Name: "UAH Deposit", Kind: domain.InstrumentKindDeposit, Currency: "UAH"}))

	seriesRepo := memory.NewReturnSeriesRepository()
	require.NoError(t, seriesRepo.Upsert(ctx, "sp500", 2020, decimal.NewFromInt(10)))
	require.NoError(t, seriesRepo.Upsert(ctx, "uah-deposit", 2020, decimal.NewFromInt(20)))

	cache := series.NewCache(seriesRepo, zerolog.Nop())
	require.NoError(t, cache.Refresh(ctx))

	return New(Config{
		Port: 0,
		Log:  zerolog.Nop(),
		API: api.NewService(
			instruments,
			series.NewService(instruments, seriesRepo),
			simulation.NewService(instruments, cache.Lookup, zerolog.Nop()),
		),
		CORSOrigins: []string{"https://widgets.example.com"},
		RefreshedAt: func() time.Time { return refreshed },
		APIToken:    testToken,
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2026-01-02T03:04:05Z", body["series_refreshed_at"])
}

func TestInstrumentRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/instruments?kind=INDEX", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list api.InstrumentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Instruments, 1)
	assert.Equal(t, "sp500", list.Instruments[0].ID)

	rec = do(t, s, http.MethodGet, "/api/instruments/sp500/series", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rs api.SeriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rs))
	require.Len(t, rs.Points, 1)
	assert.Equal(t, 2020, rs.Points[0].Year)

	rec = do(t, s, http.MethodGet, "/api/instruments/btc/series", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAllocationRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		body     string
		expected domain.AllocationSet
	}{
		{
			name:     "set",
			path:     "/api/allocation/set",
			body:     `{"allocation":[{"id":"a","value":50},{"id":"b","value":30},{"id":"c","value":20}],"id":"a","value":20}`,
			expected: domain.AllocationSet{{ID: "a", Value: 20}, {ID: "b", Value: 45}, {ID: "c", Value: 35}},
		},
		{
			name:     "toggle lock",
			path:     "/api/allocation/toggle-lock",
			body:     `{"allocation":[{"id":"a","value":70},{"id":"b","value":30}],"id":"b"}`,
			expected: domain.AllocationSet{{ID: "a", Value: 70}, {ID: "b", Value: 30, Locked: true}},
		},
		{
			name:     "toggle instrument",
			path:     "/api/allocation/toggle-instrument",
			body:     `{"allocation":[{"id":"sp500","value":100}],"id":"uah-deposit"}`,
			expected: domain.AllocationSet{{ID: "sp500", Value: 50}, {ID: "uah-deposit", Value: 50}},
		},
		{
			name:     "equalize",
			path:     "/api/allocation/equalize",
			body:     `{"allocation":[{"id":"a","value":90,"locked":true},{"id":"b","value":5},{"id":"c","value":5}]}`,
			expected: domain.AllocationSet{{ID: "a", Value: 34}, {ID: "b", Value: 33}, {ID: "c", Value: 33}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp api.AllocationResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expected, resp.Allocation)
		})
	}
}

func TestSplitAndSimulate(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/allocation/split", `{"allocation":[{"id":"a","value":50},{"id":"b","value":50}],"amount":"0.05"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var split api.SplitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &split))
	assert.True(t, split.Split["a"].Equal(decimal.RequireFromString("0.03")))
	assert.True(t, split.Split["b"].Equal(decimal.RequireFromString("0.02")))

	rec = do(t, s, http.MethodPost, "/api/simulate", `{"allocation":[{"id":"sp500","value":50},{"id":"uah-deposit","value":50}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result simulation.SimulationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Portfolio, 1)
	assert.True(t, result.Portfolio[0].Value.Equal(decimal.RequireFromString("0.15")), "got %s", result.Portfolio[0].Value)
	assert.Len(t, result.Instruments, 2)
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"malformed body", "/api/allocation/set", `{"allocation":`, http.StatusBadRequest},
		{"unknown field", "/api/allocation/equalize", `{"buckets":[]}`, http.StatusBadRequest},
		{"bad total", "/api/allocation/set", `{"allocation":[{"id":"a","value":40}],"id":"a","value":10}`, http.StatusBadRequest},
		{"reversed window", "/api/simulate", `{"allocation":[{"id":"sp500","value":100}],"start_year":2021,"end_year":2020}`, http.StatusBadRequest},
		{"unknown instrument", "/api/allocation/toggle-instrument", `{"allocation":[],"id":"btc"}`, http.StatusNotFound},
		{"deadlock", "/api/allocation/set", `{"allocation":[{"id":"a","value":50},{"id":"b","value":50,"locked":true}],"id":"a","value":10}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestDeadlockBody(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/allocation/set", `{"allocation":[{"id":"a","value":50},{"id":"b","value":50,"locked":true}],"id":"a","value":10}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a", body["bucket_id"])
	assert.Equal(t, float64(40), body["remaining"])
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/simulate", nil)
	req.Header.Set("Origin", "https://widgets.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://widgets.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code, "preflight carries no credentials")
}

func TestAPIToken(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantError  string
	}{
		{"missing header", "/api/instruments", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong token", "/api/instruments", "Bearer nope", http.StatusUnauthorized, "invalid token"},
		{"bearer token", "/api/instruments", "Bearer " + testToken, http.StatusOK, ""},
		{"raw token", "/api/instruments", testToken, http.StatusOK, ""},
		{"health stays public", "/health", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
