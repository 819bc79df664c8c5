package webpage

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"firmen-scout/config"
)

var (
	scriptRe  = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleRe   = regexp.MustCompile(`(?is)<style.*?</style>`)
	navRe     = regexp.MustCompile(`(?is)<nav.*?</nav>`)
	footerRe  = regexp.MustCompile(`(?is)<footer.*?</footer>`)
	numEntRe  = regexp.MustCompile(`&#\d+;`)
	spacesRe  = regexp.MustCompile(`\s+`)
)

// customTransport fügt jeder Anfrage den konfigurierten User-Agent hinzu.
type customTransport struct {
	userAgent string
	transport http.RoundTripper
}

func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	return t.transport.RoundTrip(req)
}

// Fetcher lädt Webseiten und reduziert sie auf begrenzten Klartext.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
	policy *bluemonday.Policy
}

// NewFetcher erstellt einen neuen Seiten-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config: cfg,
		Logger: logger,
		client: &http.Client{
			Timeout: time.Duration(cfg.CrawlTimeoutSeconds) * time.Second,
			Transport: &customTransport{
				userAgent: cfg.CrawlUserAgent,
				transport: http.DefaultTransport,
			},
		},
		policy: bluemonday.StrictPolicy(),
	}
}

// FetchText holt eine URL und liefert Klartext, begrenzt auf CrawlMaxChars.
// Netzwerkfehler, Timeout und Nicht-2xx-Antworten ergeben den leeren String.
func (f *Fetcher) FetchText(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.Logger.Debug("Ungültige Crawl-URL", zap.String("url", url), zap.Error(err))
		return ""
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.Logger.Debug("Seitenabruf fehlgeschlagen", zap.String("url", url), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.Logger.Debug("Seitenabruf mit Fehlerstatus", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.Logger.Debug("Seiteninhalt konnte nicht gelesen werden", zap.String("url", url), zap.Error(err))
		return ""
	}

	text := f.htmlToText(string(body))
	if len(text) > f.Config.CrawlMaxChars {
		text = text[:f.Config.CrawlMaxChars]
	}
	return text
}

// htmlToText entfernt Script-, Style-, Nav- und Footer-Blöcke, streicht die
// restlichen Tags und dekodiert die gängigen Entities.
func (f *Fetcher) htmlToText(html string) string {
	html = scriptRe.ReplaceAllString(html, " ")
	html = styleRe.ReplaceAllString(html, " ")
	html = navRe.ReplaceAllString(html, " ")
	html = footerRe.ReplaceAllString(html, " ")

	// Leerzeichen vor jedem Tag, damit Textknoten beim Strippen nicht verkleben.
	html = strings.ReplaceAll(html, "<", " <")
	text := f.policy.Sanitize(html)

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#34;", `"`,
		"&#39;", "'",
	)
	text = replacer.Replace(text)
	text = numEntRe.ReplaceAllString(text, "")
	text = spacesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
