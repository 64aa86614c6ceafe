package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TokenSecret string // Required: HMAC secret for access tokens
	Issuer      string // Optional: issuer claim for tokens (default: canteen)

	DatabaseURL  string // Optional: postgres DSN; when set, postgres is used instead of sqlite
	DatabaseFile string // Optional: path to SQLite database file (default: ./canteen.db)

	ResetTimezone string // Optional: IANA zone for the calendar-day allowance boundary (default: Local)

	AdminEmail    string // Optional: seed an admin account at startup when set
	AdminPassword string // Required when AdminEmail is set
	AdminEmpCode  string // Optional: employee code for the seeded admin (default: ADMIN)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	TokenTTL             time.Duration // Access token lifetime (default: 12h)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Orphaned-transfer scan interval (default: 5m)
}

func LoadConfig() Config {
	// A local .env is a dev convenience; in deployment the environment is set
	// by the runtime and the file doesn't exist.
	_ = godotenv.Load()

	return Config{
		TokenSecret:          os.Getenv("CANTEEN_TOKEN_SECRET"),
		Issuer:               getEnvOrDefault("CANTEEN_ISSUER", "canteen"),
		DatabaseURL:          os.Getenv("CANTEEN_DATABASE_URL"),
		DatabaseFile:         getEnvOrDefault("CANTEEN_DATABASE_FILE", "canteen.db"),
		ResetTimezone:        getEnvOrDefault("CANTEEN_RESET_TIMEZONE", "Local"),
		AdminEmail:           os.Getenv("CANTEEN_ADMIN_EMAIL"),
		AdminPassword:        os.Getenv("CANTEEN_ADMIN_PASSWORD"),
		AdminEmpCode:         getEnvOrDefault("CANTEEN_ADMIN_EMP_CODE", "ADMIN"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		TokenTTL:             getEnvDurationOrDefault("CANTEEN_TOKEN_TTL", 12*time.Hour),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 5*time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
