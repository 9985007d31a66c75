package app

import (
	"time"

	"github.com/kidani/kidani-backend/internal/logger"
	"github.com/kidani/kidani-backend/internal/utils"
)

type Config struct {
	Port    string
	LogMode string

	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string
	ScriptTimeout   time.Duration

	SoraAPIKey    string
	SoraBaseURL   string
	SoraModel     string
	SubmitTimeout time.Duration
	PollTimeout   time.Duration

	PollInterval  time.Duration
	PollAttempts  int
	SubmitRetries int
	RetryBackoff  time.Duration

	PlaceholderVideoURL string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:    utils.GetEnv("PORT", "8000", log),
		LogMode: utils.GetEnv("LOG_MODE", "development", log),

		DeepSeekAPIKey:  utils.GetEnv("DEEPSEEK_API_KEY", "", log),
		DeepSeekBaseURL: utils.GetEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1", log),
		DeepSeekModel:   utils.GetEnv("DEEPSEEK_MODEL", "deepseek-chat", log),
		ScriptTimeout:   utils.GetEnvAsSeconds("SCRIPT_TIMEOUT_SECONDS", 30*time.Second, log),

		SoraAPIKey:    utils.GetEnv("SORA_API_KEY", "", log),
		SoraBaseURL:   utils.GetEnv("SORA_BASE_URL", "https://grsai.dakka.com.cn", log),
		SoraModel:     utils.GetEnv("SORA_MODEL", "sora-2", log),
		SubmitTimeout: utils.GetEnvAsSeconds("VIDEO_SUBMIT_TIMEOUT_SECONDS", 120*time.Second, log),
		PollTimeout:   utils.GetEnvAsSeconds("VIDEO_POLL_TIMEOUT_SECONDS", 15*time.Second, log),

		PollInterval:  utils.GetEnvAsSeconds("VIDEO_POLL_INTERVAL_SECONDS", 10*time.Second, log),
		PollAttempts:  utils.GetEnvAsInt("VIDEO_POLL_ATTEMPTS", 100, log),
		SubmitRetries: utils.GetEnvAsInt("VIDEO_SUBMIT_RETRIES", 3, log),
		RetryBackoff:  utils.GetEnvAsSeconds("VIDEO_RETRY_BACKOFF_SECONDS", 5*time.Second, log),

		PlaceholderVideoURL: utils.GetEnv("PLACEHOLDER_VIDEO_URL", "https://media.giphy.com/media/3o7TKMGpxx36E20Nl6/giphy.gif", log),
	}
}
