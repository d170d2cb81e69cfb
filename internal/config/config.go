package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                   string
	AllowedOrigin          string
	DatabaseURL            string
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	ReportCacheTTLSeconds  int
	AuthSecret             string
	AccessTokenTTLMinutes  int
	LogLevel               string
	SessionMaxGapMinutes   int
	SessionClosingMinItems int
	DeleteConcurrency      int
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "http://127.0.0.1:3000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REPORT_CACHE_TTL_SECONDS", 20)
	v.SetDefault("AUTH_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 480)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_MAX_GAP_MINUTES", 30)
	v.SetDefault("SESSION_CLOSING_MIN_ITEMS", 2)
	v.SetDefault("DELETE_CONCURRENCY", 4)
	v.AutomaticEnv()

	return Config{
		Port:                   v.GetString("PORT"),
		AllowedOrigin:          v.GetString("ALLOWED_ORIGIN"),
		DatabaseURL:            strings.TrimSpace(v.GetString("DATABASE_URL")),
		RedisAddr:              strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:          v.GetString("REDIS_PASSWORD"),
		RedisDB:                atLeast(v.GetInt("REDIS_DB"), 0, 0),
		ReportCacheTTLSeconds:  atLeast(v.GetInt("REPORT_CACHE_TTL_SECONDS"), 1, 20),
		AuthSecret:             strings.TrimSpace(v.GetString("AUTH_SECRET")),
		AccessTokenTTLMinutes:  atLeast(v.GetInt("ACCESS_TOKEN_TTL_MINUTES"), 1, 480),
		LogLevel:               strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		SessionMaxGapMinutes:   atLeast(v.GetInt("SESSION_MAX_GAP_MINUTES"), 1, 30),
		SessionClosingMinItems: atLeast(v.GetInt("SESSION_CLOSING_MIN_ITEMS"), 0, 2),
		DeleteConcurrency:      atLeast(v.GetInt("DELETE_CONCURRENCY"), 1, 4),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) ReportCacheTTL() time.Duration {
	return time.Duration(c.ReportCacheTTLSeconds) * time.Second
}

func (c Config) SessionMaxGap() time.Duration {
	return time.Duration(c.SessionMaxGapMinutes) * time.Minute
}

func atLeast(val int, floor int, fallback int) int {
	if val < floor {
		return fallback
	}
	return val
}
