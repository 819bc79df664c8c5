package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"firmen-scout/models"
	"firmen-scout/providers"
)

var (
	aboutLinkRe   = regexp.MustCompile(`(?i)über uns|about|unternehmen|geschäftsleitung|team`)
	contactLinkRe = regexp.MustCompile(`(?i)kontakt|contact`)
	jsonFenceRe   = regexp.MustCompile("(?s)^```(?:json)?\\s*|\\s*```$")
)

// websiteSummary ist die erwartete Struktur der Gemini-Antwort.
type websiteSummary struct {
	Description      string              `json:"description"`
	ProductsServices []string            `json:"products_services"`
	TeamMembers      []models.TeamMember `json:"team_members"`
}

// ResearchWebsite findet und crawlt die Firmen-Website. Fehler werden in der
// Profilzeile persistiert, nie propagiert.
func (s *ResearchService) ResearchWebsite(ctx context.Context, company *models.Company) {
	log := s.Logger.With(zap.Uint("company_id", company.ID), zap.String("module", "website"))
	log.Info("Website-Recherche gestartet", zap.String("company", company.CompanyName))

	s.upsertWebsiteProfile(&models.WebsiteProfile{
		CompanyID:   company.ID,
		CrawlStatus: models.CrawlCrawling,
	}, []string{"crawl_status", "updated_at"})

	if err := s.researchWebsite(ctx, company, log); err != nil {
		log.Warn("Website-Recherche fehlgeschlagen", zap.Error(err))
		s.upsertWebsiteProfile(&models.WebsiteProfile{
			CompanyID:   company.ID,
			CrawlStatus: models.CrawlFailed,
			CrawlError:  err.Error(),
		}, []string{"crawl_status", "crawl_error", "updated_at"})
	}
}

func (s *ResearchService) researchWebsite(ctx context.Context, company *models.Company, log *zap.Logger) error {
	query := fmt.Sprintf("%q %s", company.CompanyName, company.AddressCity)
	raw := s.Search.SearchRaw(ctx, query, 10)

	var websiteURL string
	var sitelinks []providers.Sitelink

	if company.Website != "" {
		// Bekannte Website aus dem Bestand; die Suche liefert trotzdem
		// Sitelinks und Snippets als Crawl-Hilfen.
		websiteURL = NormalizeWebsiteURL(company.Website)
		knownHost := hostnameOf(websiteURL)
		for _, result := range raw.Organic {
			if knownHost != "" && strings.Contains(strings.ToLower(hostnameOf(result.Link)), knownHost) {
				sitelinks = result.Sitelinks
				break
			}
		}
	} else {
		if len(raw.Organic) == 0 {
			now := time.Now()
			s.upsertWebsiteProfile(&models.WebsiteProfile{
				CompanyID:     company.ID,
				CrawlStatus:   models.CrawlNotFound,
				CrawlError:    "No search results found",
				SearchResults: mustJSON([]models.StoredSearchResult{}),
				CrawledAt:     &now,
			}, []string{"crawl_status", "crawl_error", "search_results", "crawled_at", "updated_at"})
			log.Info("Keine Suchergebnisse zur Firma")
			return nil
		}
		best := s.Resolver.PickBest(company.CompanyName, raw.Organic)
		websiteURL = best.Link
		sitelinks = best.Sitelinks
	}

	domain := hostnameOf(websiteURL)
	log.Info("Website ermittelt", zap.String("url", websiteURL))

	mainText := s.Pages.FetchText(ctx, websiteURL)

	// Impressum: erst Sitelink, dann Standard-Pfade raten
	impressumURL, impressumText := s.findImpressum(ctx, websiteURL, sitelinks)

	// Über-uns-Seite analog: Sitelink zuerst, sonst Standard-Pfade
	aboutPage := s.findSection(ctx, websiteURL, sitelinks, aboutLinkRe, "Über uns",
		[]string{"/ueber-uns", "/about", "/unternehmen", "/ueber-uns/"})

	var contactPage crawledPage
	for _, sl := range sitelinks {
		if contactLinkRe.MatchString(sl.Title) {
			contactPage = crawledPage{URL: sl.Link, Title: sl.Title, Text: s.Pages.FetchText(ctx, sl.Link)}
			break
		}
	}

	impressumFields := ExtractImpressumFields(impressumText, DefaultImpressumPatterns)

	combined := combineTexts(mainText, aboutPage.Text, contactPage.Text, snippetBlock(raw.Organic))
	summary := websiteSummary{}
	if len(combined) > 50 {
		summary = s.summarizeWebsite(ctx, company, combined, log)
	}

	// Social-Profile stehen teils nur in den Treffer-URLs, nicht im Seitentext
	textParts := []string{mainText, aboutPage.Text, contactPage.Text, impressumText}
	for _, result := range raw.Organic {
		textParts = append(textParts, result.Link)
	}
	socialLinks := ExtractSocialLinks(strings.Join(textParts, " "), DefaultSocialPatterns)

	crawledUnion := mainText + " " + aboutPage.Text + " " + impressumText + " " + contactPage.Text
	contactEmail := company.Email
	if contactEmail == "" {
		contactEmail = ExtractEmail(crawledUnion)
	}
	contactPhone := company.Tel
	if contactPhone == "" {
		contactPhone = ExtractPhone(crawledUnion)
	}

	rawPages := collectRawPages(websiteURL, mainText, impressumURL, impressumText, aboutPage, contactPage)

	now := time.Now()
	profile := models.WebsiteProfile{
		CompanyID:          company.ID,
		WebsiteURL:         websiteURL,
		Domain:             domain,
		ImpressumURL:       impressumURL,
		CompanyDescription: summary.Description,
		ProductsServices:   mustJSON(summary.ProductsServices),
		TeamMembers:        mustJSON(summary.TeamMembers),
		ContactEmail:       contactEmail,
		ContactPhone:       contactPhone,
		ContactFax:         company.Fax,
		SocialLinks:        mustJSON(socialLinks),
		ImpressumData:      mustJSON(impressumFields),
		SearchResults:      mustJSON(storedResults(raw.Organic)),
		RawPages:           mustJSON(rawPages),
		CrawlStatus:        models.CrawlCompleted,
		CrawlError:         "",
		CrawledAt:          &now,
	}
	s.upsertWebsiteProfile(&profile, []string{
		"website_url", "domain", "impressum_url", "company_description",
		"products_services", "team_members", "contact_email", "contact_phone",
		"contact_fax", "social_links", "impressum_data", "search_results",
		"raw_pages", "crawl_status", "crawl_error", "crawled_at", "updated_at",
	})

	if s.Archive != nil {
		if payload, err := json.Marshal(profile); err == nil {
			if link, aerr := s.Archive.ArchiveSnapshot(ctx, company.ID, "website", payload); aerr != nil {
				log.Warn("Snapshot-Archivierung fehlgeschlagen", zap.Error(aerr))
			} else {
				log.Debug("Snapshot archiviert", zap.String("link", link))
			}
		}
	}

	log.Info("Website-Recherche abgeschlossen",
		zap.String("domain", domain),
		zap.Bool("impressum_found", impressumURL != ""))
	return nil
}

// findImpressum sucht die Impressumsseite: zuerst über Sitelinks, danach über
// die üblichen Pfade. Texte unter 100 Zeichen gelten als Fehlseite.
func (s *ResearchService) findImpressum(ctx context.Context, websiteURL string, sitelinks []providers.Sitelink) (string, string) {
	for _, sl := range sitelinks {
		if strings.Contains(strings.ToLower(sl.Title), "impressum") {
			if text := s.Pages.FetchText(ctx, sl.Link); len(text) > 100 {
				return sl.Link, text
			}
		}
	}

	base := strings.TrimSuffix(websiteURL, "/")
	candidates := []string{base + "/impressum", base + "/impressum/"}
	if u, err := url.Parse(websiteURL); err == nil && !strings.HasPrefix(u.Hostname(), "www.") {
		u.Host = "www." + u.Host
		u.Path = "/impressum"
		candidates = append(candidates, u.String())
	}
	for _, candidate := range candidates {
		if text := s.Pages.FetchText(ctx, candidate); len(text) > 100 {
			return candidate, text
		}
	}
	return "", ""
}

// crawledPage ist eine geholte Unterseite samt Herkunft für raw_pages.
type crawledPage struct {
	URL   string
	Title string
	Text  string
}

// findSection holt eine Unterseite über Sitelink-Titel oder geratene Pfade.
// Texte unter 100 Zeichen gelten als Fehlseite.
func (s *ResearchService) findSection(ctx context.Context, websiteURL string, sitelinks []providers.Sitelink, titleRe *regexp.Regexp, fallbackTitle string, guesses []string) crawledPage {
	for _, sl := range sitelinks {
		if titleRe.MatchString(sl.Title) {
			if text := s.Pages.FetchText(ctx, sl.Link); len(text) > 100 {
				return crawledPage{URL: sl.Link, Title: sl.Title, Text: text}
			}
		}
	}
	base := strings.TrimSuffix(websiteURL, "/")
	for _, guess := range guesses {
		if text := s.Pages.FetchText(ctx, base+guess); len(text) > 100 {
			return crawledPage{URL: base + guess, Title: fallbackTitle, Text: text}
		}
	}
	return crawledPage{}
}

// summarizeWebsite lässt Gemini Beschreibung, Leistungen und Team extrahieren.
// Liefert das Modell kein valides JSON, wird der Rohtext zur Beschreibung.
func (s *ResearchService) summarizeWebsite(ctx context.Context, company *models.Company, combined string, log *zap.Logger) websiteSummary {
	system := "Du bist ein Analyst für deutsche Mittelstandsfirmen. Antworte ausschließlich mit " +
		"einem JSON-Objekt der Form {\"description\": string, \"products_services\": [string], " +
		"\"team_members\": [{\"name\": string, \"role\": string}]}. Die Beschreibung hat 2-4 Sätze, " +
		"products_services höchstens 8 Einträge. Kein Markdown, keine Erklärungen."
	prompt := fmt.Sprintf("Firma: %s (%s, Branche: %s)\n\nWebsite-Texte:\n%s",
		company.CompanyName, company.AddressCity, company.WZDescription, combined)

	answer := s.Summarizer.Summarize(ctx, prompt, system)
	if answer == "" {
		return websiteSummary{}
	}

	cleaned := jsonFenceRe.ReplaceAllString(strings.TrimSpace(answer), "")
	var summary websiteSummary
	if err := json.Unmarshal([]byte(cleaned), &summary); err != nil {
		log.Debug("Gemini-Antwort war kein valides JSON", zap.Error(err))
		return websiteSummary{Description: truncate(answer, 500)}
	}
	if len(summary.ProductsServices) > 8 {
		summary.ProductsServices = summary.ProductsServices[:8]
	}
	return summary
}

func (s *ResearchService) upsertWebsiteProfile(profile *models.WebsiteProfile, columns []string) {
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(profile).Error; err != nil {
		s.Logger.Error("Website-Profil konnte nicht gespeichert werden",
			zap.Uint("company_id", profile.CompanyID), zap.Error(err))
	}
}

// combineTexts baut den Prompt-Kontext aus den gecrawlten Abschnitten.
func combineTexts(mainText, aboutText, contactText, snippet string) string {
	var parts []string
	if mainText != "" {
		parts = append(parts, truncate(mainText, 3000))
	}
	if aboutText != "" {
		parts = append(parts, truncate(aboutText, 2000))
	}
	if contactText != "" {
		parts = append(parts, truncate(contactText, 500))
	}
	if snippet != "" {
		parts = append(parts, snippet)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func collectRawPages(websiteURL, mainText, impressumURL, impressumText string, about, contact crawledPage) []models.RawPage {
	var pages []models.RawPage
	if mainText != "" {
		pages = append(pages, models.RawPage{URL: websiteURL, Title: "Startseite", TextExcerpt: truncate(mainText, 500)})
	}
	if impressumText != "" {
		pages = append(pages, models.RawPage{URL: impressumURL, Title: "Impressum", TextExcerpt: truncate(impressumText, 500)})
	}
	if about.Text != "" {
		pages = append(pages, models.RawPage{URL: about.URL, Title: about.Title, TextExcerpt: truncate(about.Text, 500)})
	}
	if contact.Text != "" {
		pages = append(pages, models.RawPage{URL: contact.URL, Title: contact.Title, TextExcerpt: truncate(contact.Text, 500)})
	}
	return pages
}

// snippetBlock fasst Titel und Snippet aller Suchtreffer als Kontextzeilen
// für die Zusammenfassung zusammen.
func snippetBlock(organic []providers.OrganicResult) string {
	var lines []string
	for _, result := range organic {
		if result.Snippet == "" {
			continue
		}
		lines = append(lines, result.Title+": "+result.Snippet)
	}
	return strings.Join(lines, "\n")
}

func storedResults(organic []providers.OrganicResult) []models.StoredSearchResult {
	stored := make([]models.StoredSearchResult, 0, len(organic))
	for _, result := range organic {
		item := models.StoredSearchResult{
			Title:    result.Title,
			Link:     result.Link,
			Snippet:  result.Snippet,
			Position: result.Position,
		}
		for _, sl := range result.Sitelinks {
			item.Sitelinks = append(item.Sitelinks, models.SitelinkRef{Title: sl.Title, Link: sl.Link})
		}
		stored = append(stored, item)
	}
	return stored
}

func hostnameOf(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
