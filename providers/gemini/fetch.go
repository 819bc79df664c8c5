package gemini

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"firmen-scout/config"
)

// Client kapselt die Gemini-API für Zusammenfassungen. Ohne konfigurierten
// API-Key bleibt der innere Client nil und jede Anfrage wird übersprungen --
// das ist der vorgesehene Degradationspfad, kein Fehler.
type Client struct {
	Config *config.Config
	Logger *zap.Logger
	client *genai.Client
}

// NewClient erstellt einen neuen Gemini-Client.
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Client {
	c := &Client{Config: cfg, Logger: logger}
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY nicht gesetzt, LLM-Zusammenfassungen werden übersprungen")
		return c
	}

	inner, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Warn("Gemini-Client konnte nicht erstellt werden", zap.Error(err))
		return c
	}
	c.client = inner
	return c
}

// Name gibt den Namen des Providers zurück.
func (c *Client) Name() string {
	return "gemini"
}

// Configured meldet, ob ein nutzbarer Client vorliegt.
func (c *Client) Configured() bool {
	return c.client != nil
}

// Summarize schickt Inhalt plus Systeminstruktion an Gemini. Ein leerer
// Rückgabewert heißt "keine Zusammenfassung verfügbar"; Aufrufer überspringen
// die Anreicherung dann.
func (c *Client) Summarize(ctx context.Context, prompt, systemInstruction string) string {
	if c.client == nil {
		return ""
	}

	result, err := c.client.Models.GenerateContent(ctx, c.Config.GeminiModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.3),
			MaxOutputTokens:   1500,
		})
	if err != nil {
		c.Logger.Warn("Gemini-Zusammenfassung fehlgeschlagen", zap.Error(err))
		return ""
	}

	text := result.Text()
	c.Logger.Debug("Gemini-Antwort erhalten", zap.Int("length", len(text)))
	return text
}

// Probe setzt einen minimalen Testaufruf ab (für den Diagnose-Modus).
func (c *Client) Probe(ctx context.Context) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.Config.GeminiModel,
		genai.Text("Say hello in one word"), nil)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}
