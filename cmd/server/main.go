package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mkhalor/juno/internal/agent"
	"github.com/mkhalor/juno/internal/api/handlers"
	"github.com/mkhalor/juno/internal/config"
	"github.com/mkhalor/juno/internal/database"
	"github.com/mkhalor/juno/internal/escalation"
	"github.com/mkhalor/juno/internal/feedback"
	"github.com/mkhalor/juno/internal/health"
	"github.com/mkhalor/juno/internal/middleware"
	"github.com/mkhalor/juno/internal/notify"
	"github.com/mkhalor/juno/internal/repository"
	"github.com/mkhalor/juno/internal/retrieval"
	"github.com/mkhalor/juno/internal/session"
	"github.com/mkhalor/juno/pkg/utils"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	utils.InitLogger()
	logger := utils.GetLogger()

	logger.Info("Starting HR assistant server...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := cfg.ValidateAnthropic(); err != nil {
		logger.WithError(err).Fatal("Anthropic configuration validation failed")
	}

	// Storage backend: Postgres when configured, append-only file log otherwise.
	var dbManager *database.Manager
	var store feedback.Store

	switch cfg.Storage.Backend {
	case "postgres":
		dbConfig := &database.Config{
			DatabaseURL: cfg.Database.URL,
			RedisURL:    cfg.Redis.URL,
			LogLevel:    os.Getenv("LOG_LEVEL"),
		}

		dbManager, err = database.NewManager(dbConfig, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database manager")
		}
		defer dbManager.Close()

		if err := dbManager.Migrate(); err != nil {
			logger.WithError(err).Fatal("Failed to run database migrations")
		}

		repoManager := repository.NewRepositoryManager(dbManager.DB)
		store = feedback.NewRecordStore(repoManager.Feedback, cfg.Feedback.Dir, logger)

	case "file":
		fileStore, err := feedback.NewFileStore(cfg.Feedback.Dir, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize feedback store")
		}
		store = fileStore

	default:
		logger.WithField("backend", cfg.Storage.Backend).Fatal("Unknown storage backend")
	}

	// Knowledge base retrieval is optional; the agent falls back to its
	// built-in tools when it is not configured.
	var knowledgeBase *retrieval.Service
	if err := cfg.ValidateRetrieval(); err != nil {
		logger.WithError(err).Warn("Knowledge base retrieval disabled")
	} else {
		retrievalClient := retrieval.NewClient(cfg.Retrieval.BaseURL, cfg.Retrieval.APIKey, logger)
		knowledgeBase = retrieval.NewService(retrievalClient, logger)
	}

	hrAgent := agent.New(cfg.Anthropic.APIKey, cfg.Anthropic.Model, agent.HRTools(knowledgeBase), logger)

	gate := escalation.NewGate(escalation.Config{
		ConfidenceThreshold: cfg.Escalation.ConfidenceThreshold,
		FallbackThreshold:   cfg.Escalation.FallbackThreshold,
		FormFailThreshold:   cfg.Escalation.FormFailThreshold,
		LoopThreshold:       cfg.Escalation.LoopThreshold,
		Message:             cfg.Escalation.Message,
	})
	events := escalation.NewEventLog(cfg.Escalation.LogPath, logger)
	tracker := session.NewTracker(time.Hour)
	notifier := notify.NewSlackNotifier(cfg.Slack.Token, cfg.Slack.Channel, logger)

	var cache *database.Cache
	if dbManager != nil {
		cache = database.NewCache(dbManager.Redis, logger)
	}

	chatHandler := handlers.NewChatHandler(gate, events, tracker, hrAgent, notifier, logger)
	feedbackHandler := handlers.NewFeedbackHandler(store, cache, logger)

	checker := health.NewChecker(dbManager, store, cfg.Retrieval.BaseURL, logger)
	statusHandler := handlers.NewStatusHandler(checker)

	healthCtx, cancelHealth := context.WithCancel(context.Background())
	defer cancelHealth()
	go checker.PeriodicHealthCheck(healthCtx, 30*time.Second)

	startExportScheduler(cfg.Feedback.ExportSchedule, store, logger)

	router := setupRouter(chatHandler, feedbackHandler, statusHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}

	logger.Info("Server stopped")
}

func setupRouter(
	chatHandler *handlers.ChatHandler,
	feedbackHandler *handlers.FeedbackHandler,
	statusHandler *handlers.StatusHandler,
) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter(60)
	router.Use(rateLimiter.RateLimit())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Session-ID", "X-Request-ID")
	router.Use(cors.New(corsConfig))

	router.GET("/health", statusHandler.HandleHealth)

	api := router.Group("/api")
	{
		api.POST("/chat", chatHandler.HandleChat)
		api.POST("/feedback", feedbackHandler.HandleFeedback)
		api.GET("/analytics", feedbackHandler.HandleAnalytics)
		api.POST("/analytics/export", feedbackHandler.HandleExport)
		api.GET("/status", statusHandler.HandleStatus)
	}

	return router
}

// startExportScheduler runs periodic feedback exports when a cron schedule is
// configured. An empty schedule disables the job.
func startExportScheduler(schedule string, store feedback.Store, logger *logrus.Logger) {
	if schedule == "" {
		logger.Info("Scheduled feedback export disabled (feedback.export_schedule not set)")
		return
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		path, err := store.Export("")
		if err != nil {
			logger.WithError(err).Error("Scheduled feedback export failed")
			return
		}
		logger.WithField("path", path).Info("Scheduled feedback export completed")
	})
	if err != nil {
		logger.WithError(err).WithField("schedule", schedule).Error("Invalid export schedule, scheduled exports disabled")
		return
	}

	c.Start()
	logger.WithField("schedule", schedule).Info("Scheduled feedback export enabled")
}
