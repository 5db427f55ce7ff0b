package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	AppID           string
	ServerSecret    string
	DatabaseURL     string
	RedisURL        string
	ServerPort      string
	TokenExpiry     time.Duration
	RequiredBattles uint32

	UpstreamTimeout   time.Duration
	AccountAPIRate    int
	DBConnectAttempts int
	DBConnectInterval time.Duration

	NonceTTL       time.Duration
	AuthRateLimit  int
	ActivityWindow time.Duration

	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		AppID:           getEnv("APP_ID", ""),
		ServerSecret:    getEnv("SERVER_SECRET", ""),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		TokenExpiry:     getDurationEnv("TOKEN_EXPIRY", 30*24*time.Hour),
		RequiredBattles: uint32(getIntEnv("REQUIRED_BATTLES", 200)),

		UpstreamTimeout:   getDurationEnv("UPSTREAM_TIMEOUT", 10*time.Second),
		AccountAPIRate:    getIntEnv("ACCOUNT_API_RATE", 10),
		DBConnectAttempts: getIntEnv("DB_CONNECT_ATTEMPTS", 60),
		DBConnectInterval: getDurationEnv("DB_CONNECT_INTERVAL", 2*time.Second),

		NonceTTL:       getDurationEnv("NONCE_TTL", 24*time.Hour),
		AuthRateLimit:  getIntEnv("AUTH_RATE_LIMIT", 20),
		ActivityWindow: getDurationEnv("ACTIVITY_WINDOW", time.Hour),

		AllowedOrigins: getListEnv("ALLOWED_ORIGINS", []string{"*"}),
	}

	var missing []string
	for _, v := range []struct{ key, value string }{
		{"APP_ID", cfg.AppID},
		{"SERVER_SECRET", cfg.ServerSecret},
		{"DATABASE_URL", cfg.DatabaseURL},
	} {
		if v.value == "" {
			missing = append(missing, v.key)
		}
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Message: strings.Join(missing, ", ") + " must be set"}
	}

	if cfg.TokenExpiry <= 0 {
		return nil, &ConfigError{Message: fmt.Sprintf("TOKEN_EXPIRY must be positive, got %s", cfg.TokenExpiry)}
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, &ConfigError{Message: fmt.Sprintf("UPSTREAM_TIMEOUT must be positive, got %s", cfg.UpstreamTimeout)}
	}
	if cfg.AuthRateLimit <= 0 {
		return nil, &ConfigError{Message: fmt.Sprintf("AUTH_RATE_LIMIT must be positive, got %d", cfg.AuthRateLimit)}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue >= 0 {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
