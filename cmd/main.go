package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/kidani/kidani-backend/internal/app"
	"github.com/kidani/kidani-backend/internal/clients/deepseek"
	"github.com/kidani/kidani-backend/internal/clients/sora"
	"github.com/kidani/kidani-backend/internal/handlers"
	"github.com/kidani/kidani-backend/internal/logger"
	"github.com/kidani/kidani-backend/internal/server"
	"github.com/kidani/kidani-backend/internal/services"
	"github.com/kidani/kidani-backend/internal/sse"
)

func main() {
	// .env is optional; deployed environments inject real env vars.
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Loading configuration...")
	cfg := app.LoadConfig(log)

	apiConfigured := cfg.DeepSeekAPIKey != "" && cfg.SoraAPIKey != ""
	if !apiConfigured {
		log.Warn("Upstream API keys are not configured; lesson generation is disabled")
	}

	// Clients
	scriptClient := deepseek.NewClient(log, cfg.DeepSeekBaseURL, cfg.DeepSeekAPIKey, cfg.DeepSeekModel, cfg.ScriptTimeout)
	videoClient := sora.NewClient(log, cfg.SoraBaseURL, cfg.SoraAPIKey, cfg.SoraModel, cfg.SubmitTimeout, cfg.PollTimeout)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewHub(log)

	// Services
	log.Info("Setting up Services from main...")
	jobStore := services.NewMemoryJobStore()
	videoGen := services.NewVideoGenService(log, videoClient, services.VideoGenConfig{
		PollInterval:  cfg.PollInterval,
		PollAttempts:  cfg.PollAttempts,
		SubmitRetries: cfg.SubmitRetries,
		RetryBackoff:  cfg.RetryBackoff,
	})
	lessonGen := services.NewLessonGenService(log, jobStore, scriptClient, videoGen, sseHub, cfg.PlaceholderVideoURL)

	// Handlers
	healthHandler := handlers.NewHealthHandler(apiConfigured)
	lessonHandler := handlers.NewLessonHandler(lessonGen, sseHub, apiConfigured)

	router := server.NewRouter(server.RouterConfig{
		HealthHandler: healthHandler,
		LessonHandler: lessonHandler,
	})

	addr := ":" + cfg.Port
	log.Info("Starting HTTP server", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("HTTP server exited", "error", err)
	}
}
