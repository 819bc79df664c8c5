package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"firmen-scout/config"
	"firmen-scout/models"
	"firmen-scout/providers"
	"firmen-scout/storage"
)

// ErrCompanyNotFound meldet eine unbekannte Firmen-ID an den HTTP-Handler.
var ErrCompanyNotFound = errors.New("company not found")

// ModuleOrder legt die Ausführungsreihenfolge fest. Die Module laufen strikt
// sequenziell, um die Rate-Limits der externen APIs nicht zu sprengen.
var ModuleOrder = []string{"website", "media", "shareholders"}

var moduleStatusColumn = map[string]string{
	"website":      "website_status",
	"media":        "media_status",
	"shareholders": "shareholders_status",
}

// ResearchService orchestriert die Recherche-Module einer Firma.
type ResearchService struct {
	Config     *config.Config
	DB         *gorm.DB
	Logger     *zap.Logger
	Search     providers.SearchClient
	Summarizer providers.Summarizer
	Pages      providers.PageFetcher
	Archive    *storage.SnapshotArchive
	Resolver   WebsiteResolver
}

// NewResearchService erstellt den Recherche-Service.
func NewResearchService(cfg *config.Config, db *gorm.DB, logger *zap.Logger,
	search providers.SearchClient, summarizer providers.Summarizer,
	pages providers.PageFetcher, archive *storage.SnapshotArchive) *ResearchService {
	return &ResearchService{
		Config:     cfg,
		DB:         db,
		Logger:     logger,
		Search:     search,
		Summarizer: summarizer,
		Pages:      pages,
		Archive:    archive,
		Resolver:   NewWebsiteResolver(),
	}
}

// Run führt die angeforderten Module für eine Firma aus. Modulinterne Fehler
// landen in den Statusfeldern der jeweiligen Modultabelle und blockieren den
// Gesamtabschluss nicht; nur Infrastrukturfehler brechen den Lauf ab und
// hinterlassen overall_status "failed".
func (s *ResearchService) Run(ctx context.Context, companyID uint, modules []string) (results map[string]string, err error) {
	if len(modules) == 0 {
		modules = ModuleOrder
	}
	requested := map[string]bool{}
	for _, m := range modules {
		requested[m] = true
	}

	var company models.Company
	if err := s.DB.First(&company, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	log := s.Logger.With(zap.Uint("company_id", companyID))
	log.Info("Starte Firmenrecherche", zap.Strings("modules", modules))

	now := time.Now()
	status := models.ResearchStatus{
		CompanyID:          companyID,
		OverallStatus:      models.OverallInProgress,
		WebsiteStatus:      initialModuleStatus(requested["website"]),
		MediaStatus:        initialModuleStatus(requested["media"]),
		ShareholdersStatus: initialModuleStatus(requested["shareholders"]),
		TriggeredAt:        &now,
		CompletedAt:        nil,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"website_status", "media_status", "shareholders_status",
			"overall_status", "triggered_at", "completed_at", "updated_at",
		}),
	}).Create(&status).Error; err != nil {
		return nil, err
	}

	// Die Statuszeile wird immer finalisiert, damit das Frontend bei einem
	// Abbruch nicht endlos auf "in_progress" pollt.
	defer func() {
		final := models.OverallCompleted
		if err != nil {
			final = models.OverallFailed
		}
		completed := time.Now()
		if uerr := s.DB.Model(&models.ResearchStatus{}).
			Where("company_id = ?", companyID).
			Updates(map[string]any{"overall_status": final, "completed_at": completed}).Error; uerr != nil {
			log.Error("Recherche-Status konnte nicht finalisiert werden", zap.Error(uerr))
		}
	}()

	results = map[string]string{}
	for _, name := range ModuleOrder {
		if !requested[name] {
			continue
		}
		switch name {
		case "website":
			s.ResearchWebsite(ctx, &company)
		case "media":
			s.ResearchMedia(ctx, &company)
		case "shareholders":
			s.ResearchShareholders(ctx, &company)
		}
		// Modulinterne Fehlschläge stehen in der Modultabelle; aus Sicht des
		// Orchestrators hat das Modul seinen Durchlauf abgeschlossen.
		results[name] = models.ModuleCompleted
		if err = s.DB.Model(&models.ResearchStatus{}).
			Where("company_id = ?", companyID).
			Update(moduleStatusColumn[name], models.ModuleCompleted).Error; err != nil {
			return nil, err
		}
	}

	log.Info("Firmenrecherche abgeschlossen", zap.Int("modules_run", len(results)))
	return results, nil
}

func initialModuleStatus(requested bool) string {
	if requested {
		return models.ModuleInProgress
	}
	return models.ModuleNotStarted
}

// geminiProber wird vom Diagnose-Modus genutzt; der Gemini-Client erfüllt es.
type geminiProber interface {
	Configured() bool
	Probe(ctx context.Context) (string, error)
}

// Diagnose meldet den Konfigurationszustand der externen Dienste und testet
// die Gemini-Anbindung mit einem minimalen Aufruf.
func (s *ResearchService) Diagnose(ctx context.Context) map[string]any {
	diag := map[string]any{
		"serper_key_set":    s.Config.SerperAPIKey != "",
		"gemini_key_set":    s.Config.GeminiAPIKey != "",
		"gemini_key_length": len(s.Config.GeminiAPIKey),
	}

	if prober, ok := s.Summarizer.(geminiProber); ok && prober.Configured() {
		text, err := prober.Probe(ctx)
		if err != nil {
			diag["gemini_error"] = err.Error()
		} else {
			if len(text) > 500 {
				text = text[:500]
			}
			diag["gemini_response"] = text
		}
	}
	return diag
}

// mustJSON serialisiert Payload-Strukturen für jsonb-Spalten.
func mustJSON(v any) datatypes.JSON {
	b, _ := json.Marshal(v)
	return datatypes.JSON(b)
}

// truncate begrenzt einen String auf n Bytes.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
