package serper

// searchRequest ist der Request-Body der Serper-API.
type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
}

// resultItem ist ein einzelner Treffer; organische Suche und News teilen sich
// das Schema, News liefert "description" statt "snippet".
type resultItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Date        string `json:"date"`
	Position    int    `json:"position"`
	Sitelinks   []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"sitelinks"`
}

// searchResponse ist die Antwort der Serper-API.
type searchResponse struct {
	Organic        []resultItem   `json:"organic"`
	News           []resultItem   `json:"news"`
	KnowledgeGraph map[string]any `json:"knowledgeGraph"`
}
