package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"firmen-scout/models"
	"firmen-scout/providers"
)

// ResearchMedia sucht Medienerwähnungen zur Firma und ihren Gesellschaftern.
// Der Mentions-Bestand wird pro Lauf vollständig ersetzt.
func (s *ResearchService) ResearchMedia(ctx context.Context, company *models.Company) {
	log := s.Logger.With(zap.Uint("company_id", company.ID), zap.String("module", "media"))
	log.Info("Medienrecherche gestartet", zap.String("company", company.CompanyName))

	s.upsertMediaStatus(&models.MediaSearchStatus{
		CompanyID:    company.ID,
		SearchStatus: models.SearchSearching,
	}, []string{"search_status", "updated_at"})

	mentions := s.collectMentions(ctx, company)
	log.Info("Medientreffer gesammelt", zap.Int("mentions", len(mentions)))

	if err := s.replaceMentions(company.ID, mentions); err != nil {
		log.Warn("Medientreffer konnten nicht gespeichert werden", zap.Error(err))
		s.upsertMediaStatus(&models.MediaSearchStatus{
			CompanyID:    company.ID,
			SearchStatus: models.SearchFailed,
			SearchError:  err.Error(),
		}, []string{"search_status", "search_error", "updated_at"})
		return
	}

	var summary string
	if len(mentions) > 0 {
		summary = s.summarizeMentions(ctx, company, mentions)
	}

	now := time.Now()
	s.upsertMediaStatus(&models.MediaSearchStatus{
		CompanyID:      company.ID,
		SearchStatus:   models.SearchCompleted,
		SearchError:    "",
		MentionsFound:  len(mentions),
		MediaSummary:   summary,
		LastSearchedAt: &now,
	}, []string{"search_status", "search_error", "mentions_found", "media_summary", "last_searched_at", "updated_at"})

	log.Info("Medienrecherche abgeschlossen", zap.Int("mentions", len(mentions)))
}

// collectMentions fragt Nachrichten- und Websuche für die Firma und bis zu
// MaxShareholderSearches natürliche Gesellschafter ab, dedupliziert nach URL.
func (s *ResearchService) collectMentions(ctx context.Context, company *models.Company) []models.MediaMention {
	var mentions []models.MediaMention
	seen := map[string]bool{}

	add := func(results []providers.SearchResult, mentionType, relatedShareholder, query string) {
		for _, result := range results {
			if result.Link == "" || seen[result.Link] {
				continue
			}
			seen[result.Link] = true
			mentions = append(mentions, models.MediaMention{
				CompanyID:          company.ID,
				URL:                result.Link,
				Title:              result.Title,
				Source:             result.Source,
				PublishedAt:        parsePublished(result.Date),
				Snippet:            result.Snippet,
				MentionType:        mentionType,
				RelatedShareholder: relatedShareholder,
				SearchQuery:        query,
			})
		}
	}

	companyQuery := fmt.Sprintf("%q %s", company.CompanyName, company.AddressCity)
	add(s.Search.Search(ctx, companyQuery, 10, providers.ModeNews), models.MentionCompany, "", companyQuery)
	add(s.Search.Search(ctx, companyQuery, 10, providers.ModeOrganic), models.MentionCompany, "", companyQuery)

	searched := 0
	for _, name := range company.ShareholderList() {
		if searched >= s.Config.MaxShareholderSearches {
			break
		}
		if IsCorporateName(name) {
			continue
		}
		searched++

		query := fmt.Sprintf("%q %q", name, company.CompanyName)
		add(s.Search.Search(ctx, query, 5, providers.ModeNews), models.MentionShareholder, name, query)

		organicQuery := fmt.Sprintf("%q %q OR %q", name, company.CompanyName, company.AddressCity)
		add(s.Search.Search(ctx, organicQuery, 5, providers.ModeOrganic), models.MentionShareholder, name, query)
	}

	return mentions
}

// replaceMentions ersetzt den Mentions-Bestand der Firma atomar.
func (s *ResearchService) replaceMentions(companyID uint, mentions []models.MediaMention) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", companyID).Delete(&models.MediaMention{}).Error; err != nil {
			return err
		}
		if len(mentions) == 0 {
			return nil
		}
		return tx.Create(&mentions).Error
	})
}

// summarizeMentions lässt Gemini die Medienlage in 3-5 Sätzen bewerten.
func (s *ResearchService) summarizeMentions(ctx context.Context, company *models.Company, mentions []models.MediaMention) string {
	var lines []string
	for _, m := range mentions {
		lines = append(lines, fmt.Sprintf("[%s] %s (%s): %s",
			strings.ToUpper(m.MentionType), m.Title, m.Source, m.Snippet))
	}

	system := "Du bewertest die Medienpräsenz deutscher Mittelstandsfirmen für eine " +
		"Nachfolge-Recherche. Antworte mit 3-5 Sätzen Fließtext, ohne Aufzählung. " +
		"Bestehen die Treffer nur aus Verzeichniseinträgen, sage das ausdrücklich."
	prompt := fmt.Sprintf("Firma: %s (%s)\n\nGefundene Erwähnungen:\n%s",
		company.CompanyName, company.AddressCity, strings.Join(lines, "\n"))

	return s.Summarizer.Summarize(ctx, prompt, system)
}

func (s *ResearchService) upsertMediaStatus(status *models.MediaSearchStatus, columns []string) {
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(status).Error; err != nil {
		s.Logger.Error("Medien-Status konnte nicht gespeichert werden",
			zap.Uint("company_id", status.CompanyID), zap.Error(err))
	}
}

// parsePublished wandelt ein normalisiertes Datum (yyyy-MM-dd) in einen
// Zeitstempel um; unparsebare Angaben bleiben NULL.
func parsePublished(date string) *time.Time {
	if date == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil
	}
	return &t
}
