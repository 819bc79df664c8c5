package providers

import "context"

// SearchMode unterscheidet organische Suche und Nachrichtensuche.
type SearchMode string

const (
	ModeOrganic SearchMode = "search"
	ModeNews    SearchMode = "news"
)

// SearchResult ist ein vereinfachter Suchtreffer.
type SearchResult struct {
	Title   string
	Link    string
	Snippet string
	Source  string
	// Date ist das normalisierte Datum (yyyy-MM-dd) oder leer.
	Date string
}

// Sitelink ist ein Unterseiten-Link eines organischen Treffers.
type Sitelink struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// OrganicResult ist ein roher organischer Treffer inklusive Sitelinks.
type OrganicResult struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Snippet   string     `json:"snippet"`
	Position  int        `json:"position"`
	Sitelinks []Sitelink `json:"sitelinks"`
}

// RawSearchResponse ist die Rohantwort einer organischen Suche.
type RawSearchResponse struct {
	Organic        []OrganicResult
	KnowledgeGraph map[string]any
}

// SearchClient ist das Interface des Websuche-Providers. Transport- und
// API-Fehler werden nie propagiert: jede fehlgeschlagene Suche liefert ein
// leeres Ergebnis, Aufrufer behandeln das als "nichts gefunden".
type SearchClient interface {
	Search(ctx context.Context, query string, num int, mode SearchMode) []SearchResult
	SearchRaw(ctx context.Context, query string, num int) RawSearchResponse
}

// Summarizer ist das Interface des LLM-Providers. Ein leerer Rückgabewert
// bedeutet "Anreicherung überspringen" (kein Credential oder Fehlschlag),
// niemals einen fatalen Fehler.
type Summarizer interface {
	Summarize(ctx context.Context, prompt, systemInstruction string) string
}

// PageFetcher holt eine URL und liefert begrenzten Klartext. Netzwerkfehler,
// Timeouts und Nicht-2xx-Antworten ergeben einen leeren String.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) string
}
