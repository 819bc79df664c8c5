package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Serper.dev (Google-Suche). Ohne Key liefern Suchen leere Ergebnisse.
	SerperAPIKey   string `envconfig:"SERPER_API_KEY"`
	SerperBaseURL  string `envconfig:"SERPER_BASE_URL" default:"https://google.serper.dev"`
	SearchCountry  string `envconfig:"SEARCH_COUNTRY" default:"de"`
	SearchLanguage string `envconfig:"SEARCH_LANGUAGE" default:"de"`

	// Gemini-Zusammenfassung. Ohne Key wird die Anreicherung übersprungen.
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	CrawlUserAgent      string `envconfig:"CRAWL_USER_AGENT" default:"Mozilla/5.0 (compatible; FirmenScoutBot/1.0; +https://firmen-scout.de)"`
	CrawlTimeoutSeconds int    `envconfig:"CRAWL_TIMEOUT_SECONDS" default:"15"`
	CrawlMaxChars       int    `envconfig:"CRAWL_MAX_CHARS" default:"10000"`

	MaxShareholderSearches int `envconfig:"MAX_SHAREHOLDER_SEARCHES" default:"3"`

	// Geplante Auffrischung veralteter Recherchen
	RefreshEnabled    bool   `envconfig:"REFRESH_ENABLED" default:"false"`
	CronSchedule      string `envconfig:"CRON_SCHEDULE" default:"0 3 * * *"`
	RefreshMaxAgeDays int    `envconfig:"REFRESH_MAX_AGE_DAYS" default:"30"`
	RefreshBatchSize  int    `envconfig:"REFRESH_BATCH_SIZE" default:"5"`

	// Optionales S3-kompatibles Archiv für Recherche-Snapshots
	SnapshotS3Key    string `envconfig:"SNAPSHOT_S3_KEY"`
	SnapshotS3Secret string `envconfig:"SNAPSHOT_S3_SECRET"`
	SnapshotS3URL    string `envconfig:"SNAPSHOT_S3_URL"`
	SnapshotS3Region string `envconfig:"SNAPSHOT_S3_REGION"`
	SnapshotS3Bucket string `envconfig:"SNAPSHOT_S3_BUCKET"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// SnapshotArchiveConfigured meldet, ob das S3-Snapshot-Archiv nutzbar ist.
func (c *Config) SnapshotArchiveConfigured() bool {
	return c.SnapshotS3Key != "" && c.SnapshotS3Secret != "" && c.SnapshotS3URL != "" &&
		c.SnapshotS3Region != "" && c.SnapshotS3Bucket != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
