package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/cache"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

const serviceName = "weather-dashboard"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(serviceName, cfg.Env, cfg.LogLevel)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory search history with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory)

	// Providers with resilience (backoff + circuit breaker), in fallback order.
	provs := buildProviders(cfg, httpClient)

	lookups := cache.New[weather.CurrentWeather](cfg.CacheSize, cfg.CacheTTL)
	service := weather.NewService(memStore, provs, weather.WithCache(lookups))

	// Scheduler that keeps popular lookups warm.
	sched := scheduler.New(cfg.WarmCities, cfg.WarmInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   serviceName,
			"simulated": cfg.Simulated(),
		})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		p := cfg.APIPrefix
		return c.JSON(fiber.Map{
			"service":       serviceName,
			"totalSearches": service.Total(),
			"endpoints": []string{
				"POST " + p + "/search",
				"GET " + p + "/history",
				"DELETE " + p + "/history",
				"GET " + p + "/popular",
				"GET " + p + "/stats",
				"GET " + p + "/forecast",
				"GET " + p + "/suggest",
			},
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app.Group(cfg.APIPrefix), service)

	go func() {
		log.Info().Str("port", cfg.Port).Str("prefix", cfg.APIPrefix).Msg("http server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

// buildProviders returns the configured providers that can serve requests,
// falling back to simulated data when none can.
func buildProviders(cfg *config.AppConfig, client *http.Client) []weather.Provider {
	if cfg.Simulated() {
		log.Warn().Msg("no weather provider credentials configured; serving simulated data")
		return []weather.Provider{providers.NewSimulatedProvider()}
	}

	var provs []weather.Provider
	for _, name := range cfg.Providers {
		switch name {
		case "openweathermap":
			if cfg.OpenWeatherAPIKey == "" {
				log.Warn().Msg("OPENWEATHER_API_KEY not set; skipping openweathermap")
				continue
			}
			provs = append(provs, providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey, cfg.OpenWeatherURL))
		case "weatherapi":
			if cfg.WeatherAPIKey == "" {
				log.Warn().Msg("WEATHERAPI_API_KEY not set; skipping weatherapi")
				continue
			}
			provs = append(provs, providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey, cfg.WeatherAPIURL))
		case "openmeteo":
			provs = append(provs, providers.NewOpenMeteoProvider(client, "", ""))
		}
	}
	return provs
}
