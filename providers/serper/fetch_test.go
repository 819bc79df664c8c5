package serper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"firmen-scout/config"
	"firmen-scout/providers"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		SerperAPIKey:   "test-key",
		SerperBaseURL:  baseURL,
		SearchCountry:  "de",
		SearchLanguage: "de",
	}
}

func TestSearchWithoutAPIKey(t *testing.T) {
	cfg := testConfig("https://google.serper.dev")
	cfg.SerperAPIKey = ""
	client := NewClient(cfg, zap.NewNop())

	results := client.Search(context.Background(), "Testfirma GmbH", 10, providers.ModeOrganic)
	assert.Empty(t, results)

	raw := client.SearchRaw(context.Background(), "Testfirma GmbH", 10)
	assert.Empty(t, raw.Organic)
}

func TestSearchOrganic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"organic": [
				{"title": "Testfirma GmbH - Startseite", "link": "https://testfirma.de", "snippet": "Wir sind die Testfirma.", "position": 1,
				 "sitelinks": [{"title": "Impressum", "link": "https://testfirma.de/impressum"}]}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	results := client.Search(context.Background(), "Testfirma GmbH Hamburg", 10, providers.ModeOrganic)

	require.Len(t, results, 1)
	assert.Equal(t, "Testfirma GmbH - Startseite", results[0].Title)
	assert.Equal(t, "https://testfirma.de", results[0].Link)
	assert.Equal(t, "testfirma.de", results[0].Source)
}

func TestSearchNewsUsesDescriptionFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"news": [
				{"title": "Testfirma expandiert", "link": "https://zeitung.example/artikel", "description": "Die Testfirma wächst.", "source": "Zeitung", "date": "12.03.2024"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	results := client.Search(context.Background(), "Testfirma", 10, providers.ModeNews)

	require.Len(t, results, 1)
	assert.Equal(t, "Die Testfirma wächst.", results[0].Snippet)
	assert.Equal(t, "Zeitung", results[0].Source)
	assert.Equal(t, "2024-03-12", results[0].Date)
}

func TestSearchRawPreservesSitelinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"organic": [
				{"title": "Testfirma", "link": "https://testfirma.de", "position": 1,
				 "sitelinks": [{"title": "Impressum", "link": "https://testfirma.de/impressum"}, {"title": "Kontakt", "link": "https://testfirma.de/kontakt"}]}
			],
			"knowledgeGraph": {"title": "Testfirma GmbH"}
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	raw := client.SearchRaw(context.Background(), "Testfirma", 10)

	require.Len(t, raw.Organic, 1)
	require.Len(t, raw.Organic[0].Sitelinks, 2)
	assert.Equal(t, "Impressum", raw.Organic[0].Sitelinks[0].Title)
	assert.Equal(t, "Testfirma GmbH", raw.KnowledgeGraph["title"])
}

func TestSearchNon200ReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	results := client.Search(context.Background(), "Testfirma", 10, providers.ModeOrganic)
	assert.Empty(t, results)
}
