package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"firmen-scout/models"
	"firmen-scout/providers"
)

// Rollen-Schlüsselwörter in Snippets, die auf ein weiteres Mandat hindeuten.
var roleKeywords = []string{"geschäftsführer", "gesellschafter", "managing director", "prokurist"}

// ResearchShareholders reichert jeden Gesellschafter der Firma einzeln an.
// Ein Fehlschlag bei einem Namen berührt die übrigen nicht.
func (s *ResearchService) ResearchShareholders(ctx context.Context, company *models.Company) {
	log := s.Logger.With(zap.Uint("company_id", company.ID), zap.String("module", "shareholders"))
	names := company.ShareholderList()
	log.Info("Gesellschafter-Recherche gestartet", zap.Int("shareholders", len(names)))

	for _, name := range names {
		if IsCorporateName(name) {
			s.enrichCorporate(ctx, company, name, log)
			continue
		}

		s.upsertShareholder(&models.ShareholderBackground{
			CompanyID:        company.ID,
			ShareholderName:  name,
			EnrichmentStatus: models.EnrichmentEnriching,
		}, []string{"enrichment_status", "updated_at"})

		if err := s.enrichIndividual(ctx, company, name); err != nil {
			log.Warn("Gesellschafter-Anreicherung fehlgeschlagen",
				zap.String("shareholder", name), zap.Error(err))
			s.upsertShareholder(&models.ShareholderBackground{
				CompanyID:        company.ID,
				ShareholderName:  name,
				EnrichmentStatus: models.EnrichmentFailed,
				EnrichmentError:  err.Error(),
			}, []string{"enrichment_status", "enrichment_error", "updated_at"})
		}
	}

	log.Info("Gesellschafter-Recherche abgeschlossen")
}

// enrichCorporate behandelt juristische Personen: keine Personenrecherche,
// aber eine Registersuche nach dem Gesellschafts-Gesellschafter selbst.
func (s *ResearchService) enrichCorporate(ctx context.Context, company *models.Company, name string, log *zap.Logger) {
	now := time.Now()
	s.upsertShareholder(&models.ShareholderBackground{
		CompanyID:        company.ID,
		ShareholderName:  name,
		EnrichmentStatus: models.EnrichmentIsCompany,
		EnrichedAt:       &now,
	}, []string{"enrichment_status", "enriched_at", "updated_at"})

	query := fmt.Sprintf("%q Handelsregister OR Geschäftsführer", name)
	results := s.Search.Search(ctx, query, 5, providers.ModeOrganic)

	// Auch ein leeres Ergebnis überschreibt den Altbestand aus früheren Läufen
	others := make([]models.OtherCompany, 0, len(results))
	for _, result := range results {
		others = append(others, models.OtherCompany{
			Name:      strings.TrimSpace(strings.SplitN(result.Title, " - ", 2)[0]),
			SourceURL: result.Link,
			Snippet:   result.Snippet,
		})
	}

	s.upsertShareholder(&models.ShareholderBackground{
		CompanyID:        company.ID,
		ShareholderName:  name,
		EnrichmentStatus: models.EnrichmentIsCompany,
		OtherCompanies:   mustJSON(others),
		EnrichedAt:       &now,
	}, []string{"enrichment_status", "other_companies", "enriched_at", "updated_at"})
	log.Debug("Gesellschafts-Gesellschafter recherchiert",
		zap.String("shareholder", name), zap.Int("hits", len(others)))
}

// enrichIndividual recherchiert eine natürliche Person: Registerfunde,
// LinkedIn/Xing, Querverweise im Bestand und eine Kurz-Bio.
func (s *ResearchService) enrichIndividual(ctx context.Context, company *models.Company, name string) error {
	registryQuery := fmt.Sprintf("%q Geschäftsführer OR Handelsregister OR Gesellschafter %s", name, company.AddressCity)
	registryResults := s.Search.Search(ctx, registryQuery, 5, providers.ModeOrganic)

	others := []models.OtherCompany{}
	entries := []models.RegisterEntry{}
	var registryLines []string
	for _, result := range registryResults {
		registryLines = append(registryLines, result.Title+": "+result.Snippet)

		lower := strings.ToLower(result.Snippet)
		for _, keyword := range roleKeywords {
			if strings.Contains(lower, keyword) {
				others = append(others, models.OtherCompany{
					Name:      strings.TrimSpace(strings.SplitN(result.Title, " - ", 2)[0]),
					SourceURL: result.Link,
					Snippet:   result.Snippet,
				})
				break
			}
		}
		if hrb := ExtractHRBNumber(result.Snippet); hrb != "" {
			entries = append(entries, models.RegisterEntry{
				HRBNumber: "HRB " + hrb,
				Source:    result.Link,
				Context:   result.Snippet,
			})
		}
	}

	linkedinURL := s.firstProfileLink(ctx, fmt.Sprintf("site:linkedin.com %q %s", name, company.AddressCity))
	xingURL := s.firstProfileLink(ctx, fmt.Sprintf("site:xing.com %q %s", name, company.AddressCity))

	crossRefs, err := s.crossReferences(company.ID, name)
	if err != nil {
		return err
	}

	var bio string
	if len(strings.Join(registryLines, "\n")) > 50 {
		bio = s.summarizeShareholder(ctx, company, name, registryLines)
	}

	background := models.ShareholderBackground{
		CompanyID:              company.ID,
		ShareholderName:        name,
		ShareholderDOB:         s.shareholderDOB(company, name),
		OtherCompanies:         mustJSON(others),
		HandelsregisterEntries: mustJSON(entries),
		CrossReferences:        mustJSON(crossRefs),
		PublicRoles:            mustJSON([]string{}),
		LinkedInURL:            linkedinURL,
		XingURL:                xingURL,
		BioSummary:             bio,
		EnrichmentStatus:       models.EnrichmentCompleted,
		EnrichmentError:        "",
	}
	now := time.Now()
	background.EnrichedAt = &now

	s.upsertShareholder(&background, []string{
		"shareholder_dob", "other_companies", "handelsregister_entries",
		"cross_references", "public_roles", "linkedin_url", "xing_url",
		"bio_summary", "enrichment_status", "enrichment_error", "enriched_at",
		"updated_at",
	})
	return nil
}

// firstProfileLink liefert den ersten Treffer einer site:-Suche.
func (s *ResearchService) firstProfileLink(ctx context.Context, query string) string {
	results := s.Search.Search(ctx, query, 3, providers.ModeOrganic)
	if len(results) == 0 {
		return ""
	}
	return results[0].Link
}

// crossReferences findet andere Firmen im Bestand mit demselben
// Gesellschafternamen. LOWER/LIKE statt ILIKE, damit die Abfrage auch auf
// SQLite läuft.
func (s *ResearchService) crossReferences(companyID uint, name string) ([]models.CrossReference, error) {
	var rows []struct {
		ID          uint
		CompanyName string
	}
	err := s.DB.Model(&models.Company{}).
		Select("id", "company_name").
		Where("id != ? AND LOWER(shareholder_names) LIKE ?", companyID, "%"+strings.ToLower(name)+"%").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	refs := make([]models.CrossReference, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, models.CrossReference{CompanyID: row.ID, CompanyName: row.CompanyName})
	}
	return refs, nil
}

// summarizeShareholder erstellt eine Kurz-Bio aus den Registerfunden.
func (s *ResearchService) summarizeShareholder(ctx context.Context, company *models.Company, name string, lines []string) string {
	system := "Du fasst öffentlich auffindbare Informationen über Gesellschafter deutscher " +
		"Mittelstandsfirmen zusammen. Antworte mit 2-3 Sätzen Fließtext. Ist die Datenlage " +
		"dünn, sage das ausdrücklich statt zu spekulieren."
	prompt := fmt.Sprintf("Gesellschafter: %s von %s (%s)\n\nSuchtreffer:\n%s",
		name, company.CompanyName, company.AddressCity, strings.Join(lines, "\n"))
	return s.Summarizer.Summarize(ctx, prompt, system)
}

// shareholderDOB liefert das Geburtsdatum aus den strukturierten Details.
func (s *ResearchService) shareholderDOB(company *models.Company, name string) string {
	if len(company.ShareholderDetails) == 0 {
		return ""
	}
	var details []models.ShareholderDetail
	if err := json.Unmarshal(company.ShareholderDetails, &details); err != nil {
		return ""
	}
	for _, d := range details {
		if strings.EqualFold(d.Name, name) {
			return d.DOB
		}
	}
	return ""
}

func (s *ResearchService) upsertShareholder(background *models.ShareholderBackground, columns []string) {
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "shareholder_name"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(background).Error; err != nil {
		s.Logger.Error("Gesellschafter-Hintergrund konnte nicht gespeichert werden",
			zap.Uint("company_id", background.CompanyID),
			zap.String("shareholder", background.ShareholderName), zap.Error(err))
	}
}
