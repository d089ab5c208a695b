package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// DefaultCORSOrigins are the local front-end dev servers.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://localhost:3000",
}

type AppConfig struct {
	Env      string `validate:"required,oneof=development production test"`
	LogLevel string `validate:"required,oneof=trace debug info warn error"`
	Port     string `validate:"required,numeric"`

	// APIPrefix is where the weather routes are mounted.
	APIPrefix string `validate:"required,startswith=/"`

	// Providers lists upstream providers in fallback order.
	Providers         []string `validate:"dive,oneof=openweathermap weatherapi openmeteo"`
	OpenWeatherAPIKey string
	OpenWeatherURL    string `validate:"omitempty,url"`
	WeatherAPIKey     string
	WeatherAPIURL     string `validate:"omitempty,url"`

	HTTPTimeout time.Duration `validate:"gt=0"`

	// StoreMaxHistory bounds the retained search window.
	StoreMaxHistory int `validate:"min=1,max=10000"`

	// Lookup cache; a zero TTL disables it.
	CacheSize int           `validate:"min=1"`
	CacheTTL  time.Duration `validate:"gte=0"`

	// Cities whose lookups are refreshed in the background.
	WarmCities   []string
	WarmInterval time.Duration `validate:"gte=1m"`

	CORSOrigins []string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	cfg := &AppConfig{}

	cfg.Env = getenvDefault("APP_ENV", "development")
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.APIPrefix = strings.TrimRight(getenvDefault("API_PREFIX", "/api/weather"), "/")

	cfg.Providers = splitList(getenvDefault("WEATHER_PROVIDERS", "openweathermap,weatherapi"))
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherURL = os.Getenv("OPENWEATHER_BASE_URL")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.WeatherAPIURL = os.Getenv("WEATHERAPI_BASE_URL")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 100)

	cfg.CacheSize = getenvInt("CACHE_SIZE", 256)
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "5m"); err != nil {
		return nil, err
	}

	cfg.WarmCities = splitList(os.Getenv("WARM_CITIES"))
	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	cfg.CORSOrigins = DefaultCORSOrigins
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/"
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Simulated reports whether no configured provider can serve real data.
func (c *AppConfig) Simulated() bool {
	for _, p := range c.Providers {
		switch p {
		case "openmeteo":
			return false
		case "openweathermap":
			if c.OpenWeatherAPIKey != "" {
				return false
			}
		case "weatherapi":
			if c.WeatherAPIKey != "" {
				return false
			}
		}
	}
	return true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring non-integer value")
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
