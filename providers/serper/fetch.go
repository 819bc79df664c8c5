package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"firmen-scout/config"
	"firmen-scout/providers"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Client kapselt die Serper.dev-API (Google-Suche, organisch und News).
// Maximal 10 Ergebnisse pro Abfrage, Sprache und Region aus der Konfiguration.
type Client struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewClient erstellt einen neuen Serper-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (c *Client) Name() string {
	return "serper"
}

// Search führt eine vereinfachte Suche aus. Fehler jeder Art ergeben ein
// leeres Ergebnis; Aufrufer werten das als "keine Information gefunden".
func (c *Client) Search(ctx context.Context, query string, num int, mode providers.SearchMode) []providers.SearchResult {
	data := c.query(ctx, query, num, mode)
	if data == nil {
		return nil
	}

	items := data.Organic
	if mode == providers.ModeNews {
		items = data.News
	}

	results := make([]providers.SearchResult, 0, len(items))
	for _, item := range items {
		snippet := item.Snippet
		if snippet == "" {
			snippet = item.Description
		}
		source := item.Source
		if source == "" {
			if u, err := url.Parse(item.Link); err == nil {
				source = u.Hostname()
			}
		}
		results = append(results, providers.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: snippet,
			Source:  source,
			Date:    NormalizeDate(item.Date, time.Now()),
		})
	}
	return results
}

// SearchRaw führt eine organische Suche aus und erhält die Sitelinks der
// Treffer (für die Impressum- und Über-uns-Erkennung).
func (c *Client) SearchRaw(ctx context.Context, query string, num int) providers.RawSearchResponse {
	data := c.query(ctx, query, num, providers.ModeOrganic)
	if data == nil {
		return providers.RawSearchResponse{}
	}

	organic := make([]providers.OrganicResult, 0, len(data.Organic))
	for _, item := range data.Organic {
		result := providers.OrganicResult{
			Title:    item.Title,
			Link:     item.Link,
			Snippet:  item.Snippet,
			Position: item.Position,
		}
		for _, sl := range item.Sitelinks {
			result.Sitelinks = append(result.Sitelinks, providers.Sitelink{Title: sl.Title, Link: sl.Link})
		}
		organic = append(organic, result)
	}
	return providers.RawSearchResponse{Organic: organic, KnowledgeGraph: data.KnowledgeGraph}
}

// query setzt den eigentlichen API-Call ab. nil bedeutet "keine Antwort".
func (c *Client) query(ctx context.Context, query string, num int, mode providers.SearchMode) *searchResponse {
	if c.Config.SerperAPIKey == "" {
		c.Logger.Warn("Serper API nicht konfiguriert, Suche wird übersprungen", zap.String("query", query))
		return nil
	}

	if num > 10 {
		num = 10
	}
	body, err := json.Marshal(searchRequest{
		Q:   query,
		Num: num,
		GL:  c.Config.SearchCountry,
		HL:  c.Config.SearchLanguage,
	})
	if err != nil {
		c.Logger.Warn("Serper-Request konnte nicht serialisiert werden", zap.Error(err))
		return nil
	}

	endpoint := c.Config.SerperBaseURL + "/" + string(mode)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		c.Logger.Warn("Serper-Request konnte nicht gebaut werden", zap.Error(err))
		return nil
	}
	req.Header.Set("X-API-KEY", c.Config.SerperAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		c.Logger.Warn("Serper-Suche fehlgeschlagen", zap.String("query", query), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.Logger.Warn("Serper-API hat nicht-200-Status zurückgegeben",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return nil
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.Logger.Warn("Serper-Antwort konnte nicht geparst werden", zap.Error(err))
		return nil
	}
	return &data
}
