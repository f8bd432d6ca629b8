package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type Config struct {
	Port              string
	AppEnv            string
	LogLevel          string
	JWTSecret         string
	StoreBackend      string
	DBUrl             string
	MongoURL          string
	MongoDatabase     string
	Redis             RedisConfig
	JoinMaxAttempts   int
	ReconcileEnabled  bool
	ReconcileSchedule string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		AppEnv:        normalizeEnv(getEnv("APP_ENV", "production")),
		LogLevel:      getEnv("LOG_LEVEL", ""),
		JWTSecret:     jwtSecret,
		StoreBackend:  strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", BackendPostgres))),
		DBUrl:         getEnv("DB_URL", ""),
		MongoURL:      getEnv("MONGO_URL", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "gym"),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Channel:  getEnv("NOTIFY_CHANNEL", "training:refresh"),
		},
		JoinMaxAttempts:   getEnvInt("JOIN_MAX_ATTEMPTS", 3),
		ReconcileEnabled:  getEnvBool("RECONCILE_ENABLED", true),
		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "0 0 * * * *"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DBUrl == "" {
			return fmt.Errorf("DB_URL is required for the postgres backend")
		}
	case BackendMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("MONGO_URL is required for the mongo backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.JoinMaxAttempts <= 0 {
		return fmt.Errorf("JOIN_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func (c *Config) RedisEnabled() bool {
	return c != nil && c.Redis.Addr != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
