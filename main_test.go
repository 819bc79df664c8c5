package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"firmen-scout/config"
	"firmen-scout/models"
	"firmen-scout/providers"
	"firmen-scout/services"
)

type stubSearch struct{}

func (stubSearch) Search(ctx context.Context, query string, num int, mode providers.SearchMode) []providers.SearchResult {
	return nil
}

func (stubSearch) SearchRaw(ctx context.Context, query string, num int) providers.RawSearchResponse {
	return providers.RawSearchResponse{}
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(ctx context.Context, prompt, systemInstruction string) string {
	return ""
}

type stubPages struct{}

func (stubPages) FetchText(ctx context.Context, url string) string { return "" }

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Company{}))
	require.NoError(t, db.AutoMigrate(researchTables()...))

	cfg := &config.Config{MaxShareholderSearches: 3}
	log := zap.NewNop()
	svc := services.NewResearchService(cfg, db, log, stubSearch{}, stubSummarizer{}, stubPages{}, nil)

	router := gin.New()
	setupResearchRoutes(router, db, svc, log)
	setupCompanyRoutes(router, db, log)
	setupResultRoutes(router, db, log)
	return router, db
}

func postResearch(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/research", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestResearchMissingCompanyID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postResearch(router, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "error")
}

func TestResearchUnknownCompany(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postResearch(router, `{"company_id": 999}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResearchMigrateMode(t *testing.T) {
	router, _ := newTestRouter(t)

	// Beide Formen werden akzeptiert: mode-Feld und Wert im modules-Array
	for _, body := range []string{`{"mode": "migrate"}`, `{"modules": ["migrate"]}`} {
		w := postResearch(router, body)
		require.Equal(t, http.StatusOK, w.Code, body)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"], body)
	}
}

func TestResearchDiagnoseMode(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, body := range []string{`{"mode": "diagnose"}`, `{"modules": ["diagnose"]}`} {
		w := postResearch(router, body)
		require.Equal(t, http.StatusOK, w.Code, body)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["serper_key_set"], body)
		assert.Equal(t, false, resp["gemini_key_set"], body)
	}
}

func TestResearchFullRunWithoutExternalData(t *testing.T) {
	router, db := newTestRouter(t)

	company := &models.Company{CompanyName: "Testfirma GmbH", AddressCity: "Hamburg"}
	require.NoError(t, db.Create(company).Error)

	w := postResearch(router, `{"company_id": 1}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Results map[string]string `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Results, 3)

	var status models.ResearchStatus
	require.NoError(t, db.Where("company_id = ?", company.ID).First(&status).Error)
	assert.Equal(t, models.OverallCompleted, status.OverallStatus)
	assert.Equal(t, models.ModuleCompleted, status.WebsiteStatus)
	assert.NotNil(t, status.CompletedAt)

	// Ohne Suchergebnisse meldet das Website-Modul not_found
	var profile models.WebsiteProfile
	require.NoError(t, db.Where("company_id = ?", company.ID).First(&profile).Error)
	assert.Equal(t, models.CrawlNotFound, profile.CrawlStatus)

	// Statusendpunkt liefert die Zeile für das Frontend
	req := httptest.NewRequest(http.MethodGet, "/companies/1/research/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetCompanyNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/companies/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
