package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"firmen-scout/config"
	"firmen-scout/models"
	"firmen-scout/providers/gemini"
	"firmen-scout/providers/serper"
	"firmen-scout/providers/webpage"
	"firmen-scout/services"
	"firmen-scout/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	researchRunsCounter  prometheus.Counter
	mentionsFoundCounter prometheus.Counter
)

func init() {
	researchRunsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "research_runs_total",
			Help: "Total number of company research runs triggered.",
		},
	)
	mentionsFoundCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "media_mentions_found_total",
			Help: "Total number of media mentions stored across all runs.",
		},
	)
	prometheus.MustRegister(researchRunsCounter, mentionsFoundCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// corsMiddleware erlaubt Browser-Aufrufe aus dem Presentation-Frontend.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type, x-api-key")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// researchTables sind die vom Dienst verwalteten Tabellen. Die companies-
// Tabelle gehört dem Import-Prozess und wird hier nicht migriert.
func researchTables() []any {
	return []any{
		&models.ResearchStatus{},
		&models.WebsiteProfile{},
		&models.MediaSearchStatus{},
		&models.MediaMention{},
		&models.ShareholderBackground{},
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to research database.")

	logging.Info("Running database auto-migration...")
	if err := db.AutoMigrate(researchTables()...); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Setup Providers
	searchClient := serper.NewClient(cfg, logging)
	summarizer := gemini.NewClient(context.Background(), cfg, logging)
	pageFetcher := webpage.NewFetcher(cfg, logging)

	archive, err := storage.NewSnapshotArchive(cfg)
	if err != nil {
		logging.Fatal("Snapshot archive creation failed", zap.Error(err))
	}
	if archive == nil {
		logging.Info("Snapshot archive not configured, skipping S3 uploads.")
	}

	researchService := services.NewResearchService(cfg, db, logging, searchClient, summarizer, pageFetcher, archive)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupResearchRoutes(router, db, researchService, logging)
	setupCompanyRoutes(router, db, logging)
	setupResultRoutes(router, db, logging)

	// Setup Cron
	if cfg.RefreshEnabled {
		cronScheduler := cron.New()
		cronScheduler.AddFunc(cfg.CronSchedule, func() {
			logging.Info("Running scheduled research refresh...")
			count := refreshStaleResearch(cfg, db, researchService, logging)
			logging.Info("Refresh job completed", zap.Int("companies_refreshed", count))
		})
		cronScheduler.Start()
		logging.Info("Refresh cron enabled", zap.String("schedule", cfg.CronSchedule))
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupResearchRoutes(router *gin.Engine, db *gorm.DB, svc *services.ResearchService, log *zap.Logger) {
	router.POST("/research", func(c *gin.Context) {
		var req struct {
			CompanyID uint     `json:"company_id"`
			Modules   []string `json:"modules"`
			Mode      string   `json:"mode"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		// Wartungsmodi laufen ohne company_id; sie können auch als Wert im
		// modules-Array angefordert werden
		mode := req.Mode
		for _, m := range req.Modules {
			if m == "migrate" || m == "diagnose" {
				mode = m
			}
		}
		switch mode {
		case "migrate":
			if err := db.AutoMigrate(researchTables()...); err != nil {
				log.Error("Manual migration failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Migration failed", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Migration completed"})
			return
		case "diagnose":
			c.JSON(http.StatusOK, svc.Diagnose(c.Request.Context()))
			return
		}

		if req.CompanyID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "company_id is required"})
			return
		}

		researchRunsCounter.Inc()
		results, err := svc.Run(c.Request.Context(), req.CompanyID, req.Modules)
		if err != nil {
			if errors.Is(err, services.ErrCompanyNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
				return
			}
			log.Error("Research run failed", zap.Uint("company_id", req.CompanyID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Research failed", "details": err.Error()})
			return
		}

		var mediaStatus models.MediaSearchStatus
		if err := db.Where("company_id = ?", req.CompanyID).First(&mediaStatus).Error; err == nil {
			mentionsFoundCounter.Add(float64(mediaStatus.MentionsFound))
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"company_id": req.CompanyID,
			"results":    results,
		})
	})
}

func setupCompanyRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/companies")

	rg.GET("/", func(c *gin.Context) {
		var companies []models.Company
		query := db.Model(&models.Company{})
		if city := c.Query("city"); city != "" {
			query = query.Where("address_city = ?", city)
		}
		if err := query.Limit(100).Find(&companies).Error; err != nil {
			log.Error("Database query for companies failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, companies)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var company models.Company
		if err := db.First(&company, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, company)
	})
}

// setupResultRoutes liefert die Rechercheergebnisse für das Frontend.
func setupResultRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/companies/:id/research")

	rg.GET("/status", func(c *gin.Context) {
		var status models.ResearchStatus
		if err := db.Where("company_id = ?", c.Param("id")).First(&status).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No research triggered yet"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, status)
	})

	rg.GET("/website", func(c *gin.Context) {
		var profile models.WebsiteProfile
		if err := db.Where("company_id = ?", c.Param("id")).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No website profile found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, profile)
	})

	rg.GET("/media", func(c *gin.Context) {
		id := c.Param("id")
		var status models.MediaSearchStatus
		if err := db.Where("company_id = ?", id).First(&status).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No media search found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		var mentions []models.MediaMention
		if err := db.Where("company_id = ?", id).Order("published_at desc NULLS LAST").Find(&mentions).Error; err != nil {
			log.Error("Database query for media mentions failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "mentions": mentions})
	})

	rg.GET("/shareholders", func(c *gin.Context) {
		var backgrounds []models.ShareholderBackground
		if err := db.Where("company_id = ?", c.Param("id")).Find(&backgrounds).Error; err != nil {
			log.Error("Database query for shareholder backgrounds failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, backgrounds)
	})
}

// refreshStaleResearch stößt die Recherche für Firmen neu an, deren letzter
// abgeschlossener Lauf älter als RefreshMaxAgeDays ist.
func refreshStaleResearch(cfg *config.Config, db *gorm.DB, svc *services.ResearchService, log *zap.Logger) int {
	cutoff := time.Now().AddDate(0, 0, -cfg.RefreshMaxAgeDays)

	var stale []models.ResearchStatus
	if err := db.Where("overall_status = ? AND completed_at < ?", models.OverallCompleted, cutoff).
		Order("completed_at asc").
		Limit(cfg.RefreshBatchSize).
		Find(&stale).Error; err != nil {
		log.Error("Stale research query failed", zap.Error(err))
		return 0
	}

	refreshed := 0
	for _, status := range stale {
		researchRunsCounter.Inc()
		if _, err := svc.Run(context.Background(), status.CompanyID, nil); err != nil {
			log.Error("Scheduled refresh failed", zap.Uint("company_id", status.CompanyID), zap.Error(err))
			continue
		}
		refreshed++
	}
	return refreshed
}
