package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server         ServerConfig
	Mongo          MongoConfig
	Auth           AuthConfig
	Redis          RedisConfig
	RateLimit      RateLimitConfig
	CORS           CORSConfig
	Logging        LoggingConfig
	AdminBootstrap AdminBootstrapConfig
}

type ServerConfig struct {
	Host string
	Port int
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type AuthConfig struct {
	JWTPrivateKey string
	JWTExpiry     time.Duration
}

// RedisConfig is optional: an empty Addr disables the response cache and the quota.
type RedisConfig struct {
	Addr       string
	CacheTTL   time.Duration
	DailyQuota int
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type RateLimitConfig struct {
	RPS       float64
	Burst     int
	AuthRPS   float64
	AuthBurst int
	UserRPS   float64
	UserBurst int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type AdminBootstrapConfig struct {
	Name     string
	Email    string
	Password string
}

func (a AdminBootstrapConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

// Load reads the process environment (plus a .env file when one exists).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database: getEnv("MONGO_DATABASE", "eventapp"),
			Timeout:  time.Duration(getEnvInt("MONGO_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		Auth: AuthConfig{
			JWTPrivateKey: getEnv("JWT_PRIVATE_KEY", ""),
			JWTExpiry:     time.Duration(getEnvInt("JWT_EXPIRY_MINUTES", 60)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			CacheTTL:   time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,
			DailyQuota: getEnvInt("QUOTA_DAILY_LIMIT", 2000),
		},
		RateLimit: RateLimitConfig{
			RPS:       getEnvFloat("RATE_LIMIT_RPS", 20),
			Burst:     getEnvInt("RATE_LIMIT_BURST", 40),
			AuthRPS:   getEnvFloat("AUTH_RATE_LIMIT_RPS", 0.5),
			AuthBurst: getEnvInt("AUTH_RATE_LIMIT_BURST", 5),
			UserRPS:   getEnvFloat("USER_RATE_LIMIT_RPS", 5),
			UserBurst: getEnvInt("USER_RATE_LIMIT_BURST", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		AdminBootstrap: AdminBootstrapConfig{
			Name:     getEnv("ADMIN_NAME", "Administrator"),
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if cfg.Auth.JWTPrivateKey == "" {
		return Config{}, fmt.Errorf("JWT_PRIVATE_KEY is required")
	}
	if cfg.Auth.JWTExpiry <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRY_MINUTES must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
