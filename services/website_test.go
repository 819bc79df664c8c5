package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firmen-scout/models"
	"firmen-scout/providers"
)

const testHomepage = "Willkommen bei der Testfirma GmbH. Wir fertigen seit 1985 Präzisionsteile " +
	"für den Maschinenbau und beliefern Kunden in ganz Europa. Unser Team aus 45 Mitarbeitern " +
	"steht für Qualität und Termintreue."

const testImpressum = "Impressum Testfirma GmbH Musterstraße 12 20095 Hamburg " +
	"Geschäftsführer: Max Mustermann; Amtsgericht Hamburg, HRB 123456 " +
	"Telefon: +49 40 123456-0 E-Mail: info@testfirma.de " +
	"Besuchen Sie uns auf linkedin.com/company/testfirma"

const testAbout = "Über uns: Die Testfirma wurde 1985 von Max Mustermann gegründet und wird heute " +
	"in zweiter Generation geführt. Der Betrieb in Hamburg-Bergedorf beschäftigt 45 Mitarbeiter."

// recordingSummarizer merkt sich die Prompts für Kontext-Assertions.
type recordingSummarizer struct {
	answer  string
	prompts []string
}

func (r *recordingSummarizer) Summarize(ctx context.Context, prompt, systemInstruction string) string {
	r.prompts = append(r.prompts, prompt)
	return r.answer
}

func TestResearchWebsiteDiscovery(t *testing.T) {
	db := newTestDB(t)
	company := &models.Company{CompanyName: "Testfirma GmbH", AddressCity: "Hamburg"}
	require.NoError(t, db.Create(company).Error)

	search := &fakeSearch{raw: providers.RawSearchResponse{
		Organic: []providers.OrganicResult{
			{
				Title:    "Testfirma GmbH - Präzisionsteile aus Hamburg",
				Link:     "https://www.testfirma.de",
				Snippet:  "Präzisionsteile für den Maschinenbau.",
				Position: 1,
				Sitelinks: []providers.Sitelink{
					{Title: "Impressum", Link: "https://www.testfirma.de/impressum"},
					{Title: "Über uns", Link: "https://www.testfirma.de/ueber-uns"},
				},
			},
			{
				Title:    "Testfirma GmbH erhält Innovationspreis",
				Link:     "https://fachblatt.example/testfirma",
				Snippet:  "Auszeichnung für neue Fertigungstechnik.",
				Position: 2,
			},
			{
				Title:    "Testfirma GmbH | XING",
				Link:     "https://www.xing.com/companies/testfirma",
				Position: 3,
			},
		},
	}}
	pages := &fakePages{pages: map[string]string{
		"https://www.testfirma.de":           testHomepage,
		"https://www.testfirma.de/impressum": testImpressum,
		"https://www.testfirma.de/ueber-uns": testAbout,
	}}
	summarizer := &recordingSummarizer{answer: `{"description": "Fertiger von Präzisionsteilen.", "products_services": ["Präzisionsteile", "Lohnfertigung"], "team_members": [{"name": "Max Mustermann", "role": "Geschäftsführer"}]}`}

	svc := newTestService(t, db, search, summarizer, pages)
	svc.ResearchWebsite(context.Background(), company)

	var profile models.WebsiteProfile
	require.NoError(t, db.Where("company_id = ?", company.ID).First(&profile).Error)

	assert.Equal(t, models.CrawlCompleted, profile.CrawlStatus)
	assert.Equal(t, "https://www.testfirma.de", profile.WebsiteURL)
	assert.Equal(t, "testfirma.de", profile.Domain)
	assert.Equal(t, "https://www.testfirma.de/impressum", profile.ImpressumURL)
	assert.Equal(t, "Fertiger von Präzisionsteilen.", profile.CompanyDescription)
	assert.Equal(t, "info@testfirma.de", profile.ContactEmail)
	assert.NotNil(t, profile.CrawledAt)

	var impressumData map[string]string
	require.NoError(t, json.Unmarshal(profile.ImpressumData, &impressumData))
	assert.Equal(t, "Max Mustermann", impressumData["geschaeftsfuehrer"])
	assert.Equal(t, "123456", impressumData["hrb_number"])

	// Social-Profile zählen auch, wenn sie nur als Treffer-URL auftauchen
	var social map[string]string
	require.NoError(t, json.Unmarshal(profile.SocialLinks, &social))
	assert.Equal(t, "https://linkedin.com/company/testfirma", social["linkedin"])
	assert.Equal(t, "https://xing.com/companies/testfirma", social["xing"])

	var team []models.TeamMember
	require.NoError(t, json.Unmarshal(profile.TeamMembers, &team))
	require.Len(t, team, 1)
	assert.Equal(t, "Max Mustermann", team[0].Name)

	// Über-uns wird auch bei ausreichendem Startseitentext gecrawlt und mit
	// der echten Sitelink-URL abgelegt
	var rawPages []models.RawPage
	require.NoError(t, json.Unmarshal(profile.RawPages, &rawPages))
	var aboutPage *models.RawPage
	for i := range rawPages {
		if rawPages[i].Title == "Über uns" {
			aboutPage = &rawPages[i]
		}
	}
	require.NotNil(t, aboutPage)
	assert.Equal(t, "https://www.testfirma.de/ueber-uns", aboutPage.URL)
	assert.Contains(t, aboutPage.TextExcerpt, "zweiter Generation")

	// Der LLM-Kontext enthält Über-uns-Text und die Snippets aller Treffer
	require.Len(t, summarizer.prompts, 1)
	assert.Contains(t, summarizer.prompts[0], "zweiter Generation")
	assert.Contains(t, summarizer.prompts[0], "Auszeichnung für neue Fertigungstechnik")
}

func TestResearchWebsiteNoResults(t *testing.T) {
	db := newTestDB(t)
	company := &models.Company{CompanyName: "Unbekannte Firma", AddressCity: "Nirgendwo"}
	require.NoError(t, db.Create(company).Error)

	svc := newTestService(t, db, &fakeSearch{}, nil, nil)
	svc.ResearchWebsite(context.Background(), company)

	var profile models.WebsiteProfile
	require.NoError(t, db.Where("company_id = ?", company.ID).First(&profile).Error)

	assert.Equal(t, models.CrawlNotFound, profile.CrawlStatus)
	assert.Equal(t, "No search results found", profile.CrawlError)
	assert.NotNil(t, profile.CrawledAt)
}

func TestResearchWebsiteKnownURL(t *testing.T) {
	db := newTestDB(t)
	company := &models.Company{
		CompanyName: "Testfirma GmbH",
		AddressCity: "Hamburg",
		Website:     "testfirma.de",
		Email:       "kontakt@testfirma.de",
	}
	require.NoError(t, db.Create(company).Error)

	pages := &fakePages{pages: map[string]string{
		"https://testfirma.de":           testHomepage,
		"https://testfirma.de/impressum": testImpressum,
	}}
	svc := newTestService(t, db, &fakeSearch{}, &fakeSummarizer{answer: "Kein JSON, nur Fließtext."}, pages)
	svc.ResearchWebsite(context.Background(), company)

	var profile models.WebsiteProfile
	require.NoError(t, db.Where("company_id = ?", company.ID).First(&profile).Error)

	assert.Equal(t, models.CrawlCompleted, profile.CrawlStatus)
	assert.Equal(t, "https://testfirma.de", profile.WebsiteURL)
	// Bestandsdaten haben Vorrang vor Regex-Funden
	assert.Equal(t, "kontakt@testfirma.de", profile.ContactEmail)
	// Unparsebare Gemini-Antwort wird zur Beschreibung
	assert.Equal(t, "Kein JSON, nur Fließtext.", profile.CompanyDescription)
}

func TestResearchWebsiteContactFromHomepage(t *testing.T) {
	db := newTestDB(t)
	company := &models.Company{
		CompanyName: "Testfirma GmbH",
		AddressCity: "Hamburg",
		Website:     "testfirma.de",
	}
	require.NoError(t, db.Create(company).Error)

	// Kontaktdaten stehen nur auf der Startseite, es gibt kein Impressum
	homepage := testHomepage + " Schreiben Sie uns: vertrieb@testfirma.de oder rufen Sie an: +49 40 987654-0"
	pages := &fakePages{pages: map[string]string{
		"https://testfirma.de": homepage,
	}}
	svc := newTestService(t, db, &fakeSearch{}, nil, pages)
	svc.ResearchWebsite(context.Background(), company)

	var profile models.WebsiteProfile
	require.NoError(t, db.Where("company_id = ?", company.ID).First(&profile).Error)

	assert.Equal(t, models.CrawlCompleted, profile.CrawlStatus)
	assert.Equal(t, "vertrieb@testfirma.de", profile.ContactEmail)
	assert.NotEmpty(t, profile.ContactPhone)
}

func TestSnippetBlock(t *testing.T) {
	block := snippetBlock([]providers.OrganicResult{
		{Title: "Erster", Snippet: "Snippet eins"},
		{Title: "Ohne Snippet"},
		{Title: "Zweiter", Snippet: "Snippet zwei"},
	})
	assert.Equal(t, "Erster: Snippet eins\nZweiter: Snippet zwei", block)
}

func TestCombineTexts(t *testing.T) {
	combined := combineTexts("haupt", "ueber", "kontakt", "snippet")
	assert.Contains(t, combined, "haupt")
	assert.Contains(t, combined, "\n\n---\n\n")

	assert.Equal(t, "", combineTexts("", "", "", ""))
}
