package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppEnv                 string
	LogLevel               slog.Level
	HTTPPort               string
	PostgreSQLHost         string
	PostgreSQLPort         int64
	PostgreSQLUser         string
	PostgreSQLPassword     string
	PostgreSQLDatabase     string
	JWTSecret              string
	JWTIssuer              string
	JWTAudience            string
	AccessTokenExpiryMins  int64
	RefreshTokenExpiryDays int64
	RedisHost              string
	RedisPort              int64
	RedisPassword          string
	RedisDB                int64
	RateLimitRequests      int64
	RateLimitWindowSecs    int64
}

func LoadConfig() *Config {
	return &Config{
		AppEnv:                 getEnv("APP_ENV", "development"),                 // Default development
		LogLevel:               getLogLevel(),                                    // Default INFO
		HTTPPort:               getEnv("HTTP_PORT", "8080"),                      // Default 8080
		PostgreSQLHost:         getEnv("POSTGRESQL_HOST", "db"),                  // Default db
		PostgreSQLPort:         getEnvAsInt64("POSTGRESQL_PORT", 5432),           // Default 5432
		PostgreSQLUser:         getEnv("POSTGRESQL_USER", "todolist_user"),       // Default user
		PostgreSQLPassword:     getEnv("POSTGRESQL_PASSWORD", "todolist_pass"),   // Default password
		PostgreSQLDatabase:     getEnv("POSTGRESQL_DATABASE", "todolist_db"),     // Default database name
		JWTSecret:              getEnv("JWT_SECRET", "todolist_secret"),          // Default secret key
		JWTIssuer:              getEnv("JWT_ISSUER", "todolist-api"),             // Default issuer
		JWTAudience:            getEnv("JWT_AUDIENCE", "todolist-clients"),       // Default audience
		AccessTokenExpiryMins:  getEnvAsInt64("ACCESS_TOKEN_EXPIRY_MINUTES", 30), // Default 30 minutes
		RefreshTokenExpiryDays: getEnvAsInt64("REFRESH_TOKEN_EXPIRY_DAYS", 30),   // Default 30 days
		RedisHost:              getEnv("REDIS_HOST", "redis"),                    // Default redis
		RedisPort:              getEnvAsInt64("REDIS_PORT", 6379),                // Default 6379
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),                     // Default empty
		RedisDB:                getEnvAsInt64("REDIS_DATABASE", 0),               // Default 0
		RateLimitRequests:      getEnvAsInt64("RATE_LIMIT_REQUESTS", 5),          // Default 5 requests
		RateLimitWindowSecs:    getEnvAsInt64("RATE_LIMIT_WINDOW_SECONDS", 1),    // Default 1 second window
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getLogLevel() slog.Level {
	levelStr := getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
