package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	SecretKey       string
	EmailAddress    string // sender identity for fire alerts
	UploadFolder    string
	ModelPath       string
	TokenPath       string
	CredentialsPath string
	AllowedOrigin   string
	LogDirectory    string
	MaxUploadSize   int64 // maximum size of the upload folder in GB
	SweepInterval   int   // seconds between upload folder size checks
	Debug           bool
}

// Load reads configuration from the environment (and .env if present).
// EMAIL_ADDRESS has no sane default, so loading fails without it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 1311),
		SecretKey:       getEnv("SECRET_KEY", ""),
		EmailAddress:    getEnv("EMAIL_ADDRESS", ""),
		UploadFolder:    getEnv("UPLOAD_FOLDER", "uploads"),
		ModelPath:       getEnv("MODEL_PATH", filepath.Join("models", "fire_detection2.tflite")),
		TokenPath:       getEnv("TOKEN_PATH", "token.json"),
		CredentialsPath: getEnv("CREDENTIALS_PATH", "credentials.json"),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		LogDirectory:    getEnv("LOG_DIR", filepath.Join(".", "logs")),
		MaxUploadSize:   getEnvAsInt64("MAX_UPLOAD_DIRECTORY_SIZE", 4),
		SweepInterval:   getEnvAsInt("SWEEP_INTERVAL", 60),
		Debug:           getEnv("APP_ENV", "") == "development",
	}

	if cfg.EmailAddress == "" {
		return nil, fmt.Errorf("EMAIL_ADDRESS must be set in the environment or .env")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
