package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime knob of the application. Loaded once at
// startup and passed explicitly to the components that need it.
type Config struct {
	DatabasePath string
	LogLevel     string

	// Rate source for converting foreign currencies to the base currency.
	RatesURL      string
	RatesCacheTTL time.Duration
	RatesTimeout  time.Duration

	// Two-phase import session cache.
	SessionCapacity      int
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
}

// LoadConfig reads the environment (and an optional .env file) into a Config.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, relying on OS environment variables and defaults.")
	}

	return &Config{
		DatabasePath: getEnv("DATABASE_PATH", "./moneyfolio.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		RatesURL:      getEnv("RATES_URL", "https://data-api.ecb.europa.eu/service/data/EXR/D..EUR.SP00.A?lastNObservations=1&format=jsondata"),
		RatesCacheTTL: getEnvAsDuration("RATES_CACHE_TTL", 6*time.Hour),
		RatesTimeout:  getEnvAsDuration("RATES_TIMEOUT", 10*time.Second),

		SessionCapacity:      getEnvAsInt("SESSION_CAPACITY", 16),
		SessionTTL:           getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s (%q), using default: %d", key, valueStr, fallback)
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid duration value for %s (%q), using default: %s", key, valueStr, fallback)
		return fallback
	}
	return value
}
