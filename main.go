package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"african-culture-quiz/db"
	"african-culture-quiz/handlers"
	"african-culture-quiz/jobs"
	"african-culture-quiz/quiz"
	"african-culture-quiz/utils"
)

func main() {
	// Set up logging with timestamps
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	utils.LogStartup("African Culture Quiz API starting...")

	if err := godotenv.Load(); err != nil {
		utils.LogStartup("No .env file found, using environment as-is")
	}

	port := utils.GetEnvOrDefault("PORT", "8060")
	dataPath := utils.GetEnvOrDefault("DATA_PATH", "./data")
	dbPath := utils.GetEnvOrDefault("DB_PATH", "./quiz.db")
	cacheTTL := time.Duration(utils.GetEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second
	utils.LogStartup("Config: port=%s data=%s db=%s cache_ttl=%s", port, dataPath, dbPath, cacheTTL)

	// Initialize database
	database, err := db.InitDB(dbPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize database: %v", err)
	}

	// Question banks and translations
	store := quiz.NewStore(dataPath, cacheTTL, []string{"fr", "en"})
	translations := quiz.NewTranslations(dataPath, cacheTTL)
	service := quiz.NewService(store)

	// Warm the caches so the first request does not pay the disk read
	if err := store.Refresh(); err != nil {
		utils.LogError("Initial question load failed: %v", err)
	}
	if err := translations.Refresh(); err != nil {
		utils.LogError("Initial translation load failed: %v", err)
	}

	// Background jobs need Redis; without it webhooks are applied inline
	var jobManager *jobs.JobManager
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		jobManager = jobs.NewJobManager(redisURL, database, store, translations)
		go func() {
			if err := jobManager.Start(); err != nil {
				utils.LogError("Job manager stopped: %v", err)
			}
		}()
	} else {
		utils.LogStartup("REDIS_URL not set, background jobs disabled")
	}

	cfg := handlers.Config{
		WebhookSecret:   os.Getenv("WEBHOOK_SECRET"),
		AdminTokenHash:  os.Getenv("ADMIN_TOKEN_HASH"),
		CheckoutBaseURL: utils.GetEnvOrDefault("CHECKOUT_BASE_URL", "https://checkout.example.com"),
	}

	router := handlers.NewRouter(service, translations, database, jobManager, cfg)

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		utils.LogShutdown("Received shutdown signal")
		if jobManager != nil {
			jobManager.Stop()
		}
		if err := database.Close(); err != nil {
			utils.LogError("Error closing database: %v", err)
		} else {
			utils.LogShutdown("Database connection closed")
		}
		os.Exit(0)
	}()

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	utils.LogStartup("Server ready at http://localhost:%s", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[FATAL] Server failed to start: %v", err)
	}
}
