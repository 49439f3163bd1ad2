// README: Config loader with env defaults for HTTP, DB, Redis, Maps, and model dispatch settings.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"shutterplan/internal/ai"
)

const envPrefix = "SHUTTERPLAN_"

type Config struct {
	HTTP struct {
		Addr           string
		RequestTimeout time.Duration
	}
	DB struct {
		// DSN is empty when the usage ledger is disabled.
		DSN string
	}
	Redis struct {
		// Addr is empty when the plan cache is disabled.
		Addr     string
		CacheTTL time.Duration
	}
	Maps struct {
		// APIKey is empty when photo-spot lookup is disabled.
		APIKey string
	}
	AI struct {
		ModelsFile     string
		MaxTokens      int
		CompareWorkers int
		BaseURLs       map[ai.Provider]string
	}
	Log struct {
		Level string
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault(envPrefix+"HTTP_ADDR", ":8080")
	cfg.HTTP.RequestTimeout = envOrDefaultDuration(envPrefix+"REQUEST_TIMEOUT", 120*time.Second)
	cfg.DB.DSN = os.Getenv(envPrefix + "DB_DSN")
	cfg.Redis.Addr = os.Getenv(envPrefix + "REDIS_ADDR")
	cfg.Redis.CacheTTL = envOrDefaultDuration(envPrefix+"CACHE_TTL", 24*time.Hour)
	cfg.Maps.APIKey = envOrDefault(envPrefix+"MAPS_API_KEY", os.Getenv("GOOGLE_MAPS_API_KEY"))
	cfg.AI.ModelsFile = os.Getenv(envPrefix + "MODELS_FILE")
	cfg.AI.MaxTokens = envOrDefaultInt(envPrefix+"MAX_TOKENS", ai.DefaultMaxTokens)
	cfg.AI.CompareWorkers = envOrDefaultInt(envPrefix+"COMPARE_WORKERS", 4)
	cfg.AI.BaseURLs = make(map[ai.Provider]string)
	for _, p := range ai.Providers {
		if v := os.Getenv(baseURLEnv(p)); v != "" {
			cfg.AI.BaseURLs[p] = v
		}
	}
	cfg.Log.Level = envOrDefault(envPrefix+"LOG_LEVEL", "info")
	return cfg, nil
}

// baseURLEnv names the endpoint override for p, e.g. SHUTTERPLAN_OPENAI_BASE_URL.
// Every provider takes a full URL; Gemini's generate calls go over REST.
func baseURLEnv(p ai.Provider) string {
	return envPrefix + strings.ToUpper(string(p)) + "_BASE_URL"
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
