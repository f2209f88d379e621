package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenMeteo   = "openmeteo"
	ProviderAccuWeather = "accuweather"
)

type AppConfig struct {
	Port        string `validate:"required,numeric"`
	LogLevel    string `validate:"oneof=debug info warn warning error"`
	Environment string `validate:"required"`

	// WeatherProvider selects the upstream used for resolving and fetching.
	WeatherProvider     string `validate:"oneof=openmeteo accuweather"`
	AccuWeatherAPIKey   string `validate:"required_if=WeatherProvider accuweather"`
	AccuWeatherLanguage string
	GoogleGeocoderKey   string

	HTTPTimeout        time.Duration `validate:"gt=0"`
	AggregateTimeout   time.Duration `validate:"gte=0"`
	UpstreamMaxRetries int           `validate:"gte=0,lte=10"`

	// Location cache. An empty RedisAddr keeps the cache in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int           `validate:"gte=0"`
	CacheTTL      time.Duration `validate:"gte=0"`

	SessionIdleTTL time.Duration `validate:"gt=0"`
	SweepInterval  time.Duration `validate:"gt=0"`

	// DashboardURL is linked from chat replies when set.
	DashboardURL string `validate:"omitempty,url"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:                getenvDefault("PORT", "8080"),
		LogLevel:            strings.ToLower(getenvDefault("LOG_LEVEL", "info")),
		Environment:         getenvDefault("ENVIRONMENT", "development"),
		WeatherProvider:     strings.ToLower(getenvDefault("WEATHER_PROVIDER", ProviderOpenMeteo)),
		AccuWeatherAPIKey:   os.Getenv("ACCUWEATHER_API_KEY"),
		AccuWeatherLanguage: getenvDefault("ACCUWEATHER_LANGUAGE", "en-us"),
		GoogleGeocoderKey:   os.Getenv("GOOGLE_GEOCODER_API_KEY"),
		UpstreamMaxRetries:  getenvInt("UPSTREAM_MAX_RETRIES", 0),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getenvInt("REDIS_DB", 0),
		DashboardURL:        os.Getenv("DASHBOARD_URL"),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"AGGREGATE_TIMEOUT", "30s", &cfg.AggregateTimeout},
		{"CACHE_TTL", "24h", &cfg.CacheTTL},
		{"SESSION_IDLE_TTL", "30m", &cfg.SessionIdleTTL},
		{"SWEEP_INTERVAL", "5m", &cfg.SweepInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// UseRedis reports whether the location cache should live in Redis.
func (c *AppConfig) UseRedis() bool {
	return c.RedisAddr != ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
