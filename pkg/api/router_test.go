package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"strategic_finance/pkg/api/config"
	apifinance "strategic_finance/pkg/api/finance"
	"strategic_finance/pkg/core/agent"
	"strategic_finance/pkg/core/export"
	corefinance "strategic_finance/pkg/core/finance"
	"strategic_finance/pkg/core/knowledge"
	"strategic_finance/pkg/core/llm"
	"strategic_finance/pkg/core/logger"
	"strategic_finance/pkg/core/resolver"
	"strategic_finance/pkg/core/store"
	"strategic_finance/pkg/models"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	agents := agent.NewManager(agent.Config{ActiveProvider: agent.ProviderOffline}, map[string]llm.Provider{
		"static": &llm.StaticProvider{Response: "{}"},
	}, log)
	svc := corefinance.NewService(
		resolver.New(nil, nil, 0, log),
		knowledge.Static(knowledge.DefaultRules()),
		store.NewMemoryStore(),
		nil,
		log,
	)
	return NewRouter(apifinance.NewHandler(svc, log), config.NewHandler(agents))
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func search(t *testing.T, h http.Handler, query string) corefinance.QueryResponse {
	t.Helper()
	rec := do(t, h, http.MethodGet, "/api/v1/search?query="+url.QueryEscape(query), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp corefinance.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","message":"Autonomous Finance API is running"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSearch(t *testing.T) {
	h := newTestRouter(t)
	resp := search(t, h, "6 month forecast with 2 salespeople")

	assert.Len(t, resp.MonthlyProjections, 6)
	assert.Equal(t, 2, resp.MonthlyProjections[0].SalesPeople)
	assert.Equal(t, "/api/v1/export/excel/"+resp.ModelID, resp.ExcelDownloadURL)
	assert.Len(t, resp.BusinessLogic, 4)
	assert.Equal(t, 6, resp.Summary.Months)
}

func TestSearch_BadRequests(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/search?query="+url.QueryEscape("0 months"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body apifinance.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body.Detail, "Error processing query:"))
}

func TestExportExcel(t *testing.T) {
	h := newTestRouter(t)
	resp := search(t, h, "3 months")

	rec := do(t, h, http.MethodGet, resp.ExcelDownloadURL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="financial_model_`+resp.ModelID+`.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.ForecastSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestUnknownModel(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{
		"/api/v1/export/excel/does-not-exist",
		"/api/v1/models/does-not-exist",
		"/api/v1/models/does-not-exist/report",
	} {
		rec := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"detail":"Model not found"}`, rec.Body.String())
	}
}

func TestModelAndReport(t *testing.T) {
	h := newTestRouter(t)
	resp := search(t, h, "2 months")

	rec := do(t, h, http.MethodGet, "/api/v1/models/"+resp.ModelID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var m models.FinancialModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "2 months", m.Query)
	assert.Equal(t, models.SourceFallback, m.ResolverSource)

	rec = do(t, h, http.MethodGet, "/api/v1/models/"+resp.ModelID+"/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypeHTML, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "forecast-table")
}

func TestRevenueDrivers(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/api/v1/revenue-drivers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var drivers []knowledge.DriverInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &drivers))
	assert.NotEmpty(t, drivers)
}

func TestConfigEndpoints(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active_provider":"offline","available":["offline","static"]}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/config/switch", []byte(`{"provider":"static"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active_provider":"static","available":["offline","static"]}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/config/switch", []byte(`{"provider":"nope"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/config/switch", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreflightAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodOptions, "/api/config/switch", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	search(t, h, "1 month")
	rec = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "finance_http_requests_total")
	assert.Contains(t, rec.Body.String(), "finance_projections_computed_total")
}
