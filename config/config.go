package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every configuration parameter of the service.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// League scheduling parameters. All slot arithmetic runs in
	// LeagueTimezone; slots are exposed in UTC.
	LeagueTimezone       string
	SlotStepMinutes      int
	MatchDurationMinutes int
	MinLeadTimeMinutes   int

	// Súmula OCR service.
	OCRBaseURL        string
	OCRTimeoutSeconds int

	// Cloudflare R2 (score sheet image storage).
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from environment variables, optionally
// sourcing a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	cfg.JWTSecretKey = os.Getenv("JWT_SECRET_KEY")
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	var err error
	if cfg.ServerPort, err = intEnv("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}

	cfg.LeagueTimezone = os.Getenv("LEAGUE_TIMEZONE")
	if cfg.LeagueTimezone == "" {
		cfg.LeagueTimezone = "America/Sao_Paulo"
	}
	if _, err := time.LoadLocation(cfg.LeagueTimezone); err != nil {
		return nil, fmt.Errorf("invalid LEAGUE_TIMEZONE %q: %w", cfg.LeagueTimezone, err)
	}

	if cfg.SlotStepMinutes, err = intEnv("SLOT_STEP_MINUTES", 30); err != nil {
		return nil, err
	}
	if cfg.MatchDurationMinutes, err = intEnv("MATCH_DURATION_MINUTES", 60); err != nil {
		return nil, err
	}
	if cfg.MinLeadTimeMinutes, err = intEnv("MIN_LEAD_TIME_MINUTES", 120); err != nil {
		return nil, err
	}
	if cfg.SlotStepMinutes <= 0 || cfg.MatchDurationMinutes <= 0 || cfg.MinLeadTimeMinutes < 0 {
		return nil, fmt.Errorf("slot parameters must be positive (step=%d, duration=%d, lead=%d)",
			cfg.SlotStepMinutes, cfg.MatchDurationMinutes, cfg.MinLeadTimeMinutes)
	}

	cfg.OCRBaseURL = os.Getenv("OCR_BASE_URL")
	if cfg.OCRBaseURL == "" {
		return nil, fmt.Errorf("OCR_BASE_URL environment variable is not set")
	}
	if cfg.OCRTimeoutSeconds, err = intEnv("OCR_TIMEOUT_SECONDS", 15); err != nil {
		return nil, err
	}

	cfg.R2AccountID = os.Getenv("R2_ACCOUNT_ID")
	cfg.R2AccessKeyID = os.Getenv("R2_ACCESS_KEY_ID")
	cfg.R2SecretAccessKey = os.Getenv("R2_SECRET_ACCESS_KEY")
	cfg.R2BucketName = os.Getenv("R2_BUCKET_NAME")
	cfg.R2PublicBaseURL = os.Getenv("R2_PUBLIC_BASE_URL")

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}
