package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"firmen-scout/config"
	"firmen-scout/models"
	"firmen-scout/providers"
)

// fakeSearch liefert vorbereitete Treffer pro Query-Substring.
type fakeSearch struct {
	results map[string][]providers.SearchResult
	raw     providers.RawSearchResponse
	queries []string
}

func (f *fakeSearch) Search(ctx context.Context, query string, num int, mode providers.SearchMode) []providers.SearchResult {
	f.queries = append(f.queries, string(mode)+":"+query)
	for key, results := range f.results {
		if key != "" && strings.Contains(query, key) {
			if len(results) > num {
				return results[:num]
			}
			return results
		}
	}
	return nil
}

func (f *fakeSearch) SearchRaw(ctx context.Context, query string, num int) providers.RawSearchResponse {
	f.queries = append(f.queries, "raw:"+query)
	return f.raw
}

// fakeSummarizer gibt immer denselben Text zurück.
type fakeSummarizer struct {
	answer string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, prompt, systemInstruction string) string {
	return f.answer
}

// fakePages beantwortet FetchText aus einer URL-Tabelle.
type fakePages struct {
	pages map[string]string
}

func (f *fakePages) FetchText(ctx context.Context, url string) string {
	return f.pages[url]
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Company{},
		&models.ResearchStatus{},
		&models.WebsiteProfile{},
		&models.MediaSearchStatus{},
		&models.MediaMention{},
		&models.ShareholderBackground{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, search providers.SearchClient, summarizer providers.Summarizer, pages providers.PageFetcher) *ResearchService {
	t.Helper()
	cfg := &config.Config{
		MaxShareholderSearches: 3,
		CrawlMaxChars:          10000,
	}
	if search == nil {
		search = &fakeSearch{}
	}
	if summarizer == nil {
		summarizer = &fakeSummarizer{}
	}
	if pages == nil {
		pages = &fakePages{}
	}
	return NewResearchService(cfg, db, zap.NewNop(), search, summarizer, pages, nil)
}
