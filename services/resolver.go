package services

import (
	"net/url"
	"regexp"
	"strings"

	"firmen-scout/providers"
)

// DefaultAggregatorDomains sind Verzeichnisse, Register und Portale, die bei
// der Auswahl der Firmen-Website übersprungen werden.
var DefaultAggregatorDomains = []string{
	"northdata.de", "northdata.com", "facebook.com", "xing.com",
	"linkedin.com", "instagram.com", "youtube.com", "twitter.com",
	"handelsregister.de", "unternehmensregister.de", "firmenwissen.de",
	"wlw.de", "gelbeseiten.de", "yelp.de", "kununu.com", "glassdoor.de",
	"heinze.de", "google.com", "google.de", "wikipedia.org",
}

// legalFormRe entfernt Rechtsform-Zusätze aus Firmennamen, bevor Tokens gegen
// Hostnamen geprüft werden.
var legalFormRe = regexp.MustCompile(`(?i)gmbh|ag|kg|ohg|e\.v\.|mbh|co\.|&|g\.m\.b\.h\.`)

// WebsiteResolver wählt aus Suchergebnissen die wahrscheinlichste eigene
// Website einer Firma. Die Aggregator-Liste ist injizierbar, damit Tests sie
// ersetzen können.
type WebsiteResolver struct {
	Aggregators []string
}

// NewWebsiteResolver erstellt einen Resolver mit der Standard-Blockliste.
func NewWebsiteResolver() WebsiteResolver {
	return WebsiteResolver{Aggregators: DefaultAggregatorDomains}
}

// IsAggregator prüft einen Link gegen die Blockliste.
func (r WebsiteResolver) IsAggregator(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	hostname := strings.ToLower(u.Hostname())
	for _, d := range r.Aggregators {
		if strings.Contains(hostname, d) {
			return true
		}
	}
	return false
}

// PickBest wählt den besten Kandidaten: bevorzugt wird ein Nicht-Aggregator,
// dessen Hostname ein Namens-Token der Firma enthält; ist das Standard-Erst-
// ergebnis selbst ein Aggregator, rückt das erste Nicht-Aggregator-Ergebnis
// nach. Ohne bessere Option bleibt es beim ersten Treffer.
func (r WebsiteResolver) PickBest(companyName string, results []providers.OrganicResult) providers.OrganicResult {
	tokens := nameTokens(companyName)
	best := results[0]

	for _, result := range results {
		u, err := url.Parse(result.Link)
		if err != nil {
			continue
		}
		hostname := strings.ToLower(u.Hostname())
		if r.IsAggregator(result.Link) {
			continue
		}
		for _, token := range tokens {
			if strings.Contains(hostname, token) {
				return result
			}
		}
	}

	if r.IsAggregator(best.Link) {
		for _, result := range results {
			if !r.IsAggregator(result.Link) {
				return result
			}
		}
	}
	return best
}

// nameTokens zerlegt den Firmennamen in prüfbare Tokens ohne Rechtsform.
func nameTokens(companyName string) []string {
	cleaned := legalFormRe.ReplaceAllString(strings.ToLower(companyName), "")
	var tokens []string
	for _, part := range strings.Fields(cleaned) {
		if len(part) > 2 {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// NormalizeWebsiteURL ergänzt bei bekannten Websites das fehlende Schema.
func NormalizeWebsiteURL(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return "https://" + raw
}
