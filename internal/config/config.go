package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is loaded once at startup
// and treated as immutable afterwards; in particular the JWT secret is never
// rotated at runtime.
type Config struct {
	ServerPort   int
	DatabasePath string

	JWTSecret string
	JWTExpiry time.Duration

	BcryptCost int

	UploadDir      string // Base path for stored upload files
	MaxUploadBytes int64

	CORSOrigin      string
	RateLimitMax    int
	RateLimitWindow time.Duration

	SweepSchedule string // Standard cron expression for the orphan-file sweep

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	expiryHours, err := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "168"))
	if err != nil {
		return nil, err
	}

	bcryptCost, err := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	if err != nil {
		return nil, err
	}

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", strconv.Itoa(5<<20)), 10, 64)
	if err != nil {
		return nil, err
	}

	rateMax, err := strconv.Atoi(getEnv("RATE_LIMIT_MAX_REQUESTS", "100"))
	if err != nil {
		return nil, err
	}

	rateWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "15m"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./jewelry.db"),
		JWTSecret:       secret,
		JWTExpiry:       time.Duration(expiryHours) * time.Hour,
		BcryptCost:      bcryptCost,
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:  maxUpload,
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
		RateLimitMax:    rateMax,
		RateLimitWindow: rateWindow,
		SweepSchedule:   getEnv("SWEEP_SCHEDULE", "0 3 * * *"),
		AdminName:       getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
