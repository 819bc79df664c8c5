package services

import (
	"regexp"
	"strings"
)

// DefaultImpressumPatterns extrahieren die Registerangaben deutscher
// Impressumsseiten. Pro Feld zählt die erste Capture-Gruppe des ersten
// Treffers; fehlende Felder werden weggelassen.
var DefaultImpressumPatterns = map[string]*regexp.Regexp{
	// "Geschäftsführer: Max Mustermann, ..." -- endet an Komma/Semikolon/Zeile
	"geschaeftsfuehrer": regexp.MustCompile(`(?i)(?:Geschäftsführ(?:er|ung)|Managing Director|Vertretungsberechtig)[\s:]*([^` + "\n" + `,;]+)`),
	// "HRB 12345", auch "HR B" und "Handelsregister B"
	"hrb_number": regexp.MustCompile(`(?i)(?:HRB|HR B|Handelsregister[\s:]*B?)[\s:]*(\d+)`),
	// "Amtsgericht Hamburg, HRB ..." -- Ortsname bis Satzzeichen oder HRB
	"amtsgericht": regexp.MustCompile(`(?i)(?:Amtsgericht|Registergericht|AG)[\s:]*([A-ZÄÖÜa-zäöü\s]+?)(?:\s*[,;.]|\s*HRB)`),
	// "USt-IdNr.: DE 123456789"
	"ust_id": regexp.MustCompile(`(?i)(?:USt-?Id(?:Nr)?\.?|Umsatzsteuer-?Identifikationsnummer)[\s.:]*([A-Z]{2}\s*\d[\d\s]*)`),
	// "Steuernummer: 12/345/67890"
	"steuernummer": regexp.MustCompile(`(?i)(?:Steuernummer|St\.?\s*Nr\.?)[\s.:]*(\d[\d\s/]+)`),
}

// DefaultSocialPatterns erkennen Profil-URLs der gängigen Plattformen; der
// erste Treffer pro Plattform gewinnt.
var DefaultSocialPatterns = map[string]*regexp.Regexp{
	"linkedin":  regexp.MustCompile(`(?i)linkedin\.com/(?:company|in)/[\w-]+`),
	"xing":      regexp.MustCompile(`(?i)xing\.com/(?:companies|profile)/[\w-]+`),
	"facebook":  regexp.MustCompile(`(?i)facebook\.com/[\w.-]+`),
	"instagram": regexp.MustCompile(`(?i)instagram\.com/[\w.-]+`),
	"youtube":   regexp.MustCompile(`(?i)youtube\.com/(?:channel|c|@)/[\w.-]+`),
}

var (
	emailRe = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	phoneRe = regexp.MustCompile(`(?:\+49|0049|0)\s*[\d\s/()-]{6,20}`)
	hrbRe   = regexp.MustCompile(`(?i)HRB\s*(\d+)`)

	// corporateNameRe erkennt juristische Personen unter den Gesellschaftern.
	corporateNameRe = regexp.MustCompile(`(?i)gmbh|ag|kg|ohg|e\.v\.|holding|verwaltung|beteiligung|mbh|g\.m\.b\.h`)
)

// ExtractImpressumFields wendet die Feld-Patterns auf den Impressumstext an.
func ExtractImpressumFields(text string, patterns map[string]*regexp.Regexp) map[string]string {
	fields := map[string]string{}
	for key, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			fields[key] = strings.TrimSpace(m[1])
		}
	}
	return fields
}

// ExtractSocialLinks sucht Social-Media-Profile im Gesamttext.
func ExtractSocialLinks(text string, patterns map[string]*regexp.Regexp) map[string]string {
	links := map[string]string{}
	for platform, pattern := range patterns {
		if m := pattern.FindString(text); m != "" {
			links[platform] = "https://" + m
		}
	}
	return links
}

// ExtractEmail liefert die erste E-Mail-Adresse im Text.
func ExtractEmail(text string) string {
	return emailRe.FindString(text)
}

// ExtractPhone liefert die erste deutsche Telefonnummer im Text.
func ExtractPhone(text string) string {
	return strings.TrimSpace(phoneRe.FindString(text))
}

// ExtractHRBNumber liefert die Ziffern der ersten HRB-Nummer im Text.
func ExtractHRBNumber(text string) string {
	if m := hrbRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// IsCorporateName prüft, ob ein Gesellschaftername eine Gesellschaft statt
// einer natürlichen Person bezeichnet.
func IsCorporateName(name string) bool {
	return corporateNameRe.MatchString(name)
}
