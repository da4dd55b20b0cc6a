// File: verdebot/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"verdebot/config"
	"verdebot/cron"
	"verdebot/database"
	calendarRepo "verdebot/database/repository/calendar"
	historyRepo "verdebot/database/repository/history"
	"verdebot/handlers"
	"verdebot/routes"
	"verdebot/services/catalog"
	"verdebot/services/conversation"
	"verdebot/services/estimate"
	"verdebot/services/extract"
	"verdebot/services/notification"
	"verdebot/services/schedule"
	"verdebot/services/tasks"
	"verdebot/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	history := historyRepo.NewMongoHistoryRepo()
	calendar := calendarRepo.NewMongoCalendarRepo()

	// services.
	svcCatalog := catalog.Default()
	estimator := estimate.Estimator{Catalog: svcCatalog}

	searcher := &schedule.Searcher{
		Calendar: calendar,
		Hours: schedule.WorkingHours{
			StartHour:     config.AppConfig.WorkStartHour,
			EndHour:       config.AppConfig.WorkEndHour,
			Saturday:      config.AppConfig.WorkSaturday,
			LookaheadDays: config.AppConfig.LookaheadDays,
		},
	}

	keywordExtractor := &extract.KeywordExtractor{Catalog: svcCatalog}
	var extractor extract.Extractor = keywordExtractor
	var advisor extract.Advisor
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		gemini, err := extract.NewGeminiExtractor(key, keywordExtractor, logger)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize gemini extractor: %v", err)
		}
		extractor = gemini
		advisor = gemini
	}

	sessionStore := conversation.NewRedisSessionStore(
		utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionTTLMin)*time.Minute,
	)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer asynqClient.Close()
	reminderScheduler := &tasks.Scheduler{Client: asynqClient}

	convoService := &conversation.DefaultConversationService{
		Store:     sessionStore,
		Extractor: extractor,
		Advisor:   advisor,
		Catalog:   svcCatalog,
		Estimator: estimator,
		Calendar:  calendar,
		Searcher:  searcher,
		History:   history,
		Reminders: reminderScheduler,
		Logger:    logger,
	}

	chatHandler := handlers.NewChatHandler(convoService, logger)
	historyHandler := handlers.NewHistoryHandler(history, logger)

	// Register routes.
	routes.RegisterRoutes(router, chatHandler, historyHandler)

	// Start the reminder worker.
	notifier := &notification.LogNotifier{Logger: logger}
	cron.InitReminderWorker(notifier)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
