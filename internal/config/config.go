// Package config loads the runtime configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	DataDir string

	// DatabaseURL switches reservation storage from JSON files to
	// Postgres when set.
	DatabaseURL string

	TemporalHost      string
	TemporalTaskQueue string

	JWTSecret     string
	JWTExpiration time.Duration

	AWSRegion         string
	SQSReportQueueURL string
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	jwtExpHours, err := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	if err != nil || jwtExpHours <= 0 {
		log.Printf("Warning: invalid JWT_EXPIRATION_HOURS %q, using 24", getEnv("JWT_EXPIRATION_HOURS", "24"))
		jwtExpHours = 24
	}

	return &Config{
		APIPort: getEnv("API_PORT", "8080"),
		DataDir: getEnv("DATA_DIR", "data"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		TemporalHost:      getEnv("TEMPORAL_HOST", ""),
		TemporalTaskQueue: getEnv("TEMPORAL_TASK_QUEUE", "parkeasy-violations"),

		JWTSecret:     getEnv("JWT_SECRET", "parkeasy-dev-secret"),
		JWTExpiration: time.Duration(jwtExpHours) * time.Hour,

		AWSRegion:         getEnv("AWS_REGION", "ap-south-1"),
		SQSReportQueueURL: getEnv("SQS_REPORT_QUEUE_URL", ""),
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
