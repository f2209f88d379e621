package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/itinerary-weather/internal/api/http"
	"github.com/i474232898/itinerary-weather/internal/cache"
	"github.com/i474232898/itinerary-weather/internal/chat"
	"github.com/i474232898/itinerary-weather/internal/config"
	"github.com/i474232898/itinerary-weather/internal/itinerary"
	"github.com/i474232898/itinerary-weather/internal/logger"
	"github.com/i474232898/itinerary-weather/internal/metrics"
	"github.com/i474232898/itinerary-weather/internal/scheduler"
	"github.com/i474232898/itinerary-weather/internal/store"
	"github.com/i474232898/itinerary-weather/internal/view"
	"github.com/i474232898/itinerary-weather/internal/weather"
	"github.com/i474232898/itinerary-weather/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog := logger.New(cfg.LogLevel, cfg.Environment)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		appLog.Fatalf("failed to register metrics: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	backoff := providers.BackoffConfig{
		MaxRetries:      cfg.UpstreamMaxRetries,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}

	var provider weather.Provider
	switch cfg.WeatherProvider {
	case config.ProviderAccuWeather:
		provider = providers.NewAccuWeatherProvider(httpClient, cfg.AccuWeatherAPIKey, cfg.AccuWeatherLanguage, backoff)
	default:
		provider = providers.NewOpenMeteoProvider(httpClient, backoff)
	}
	appLog.Infof("using weather provider %s", provider.Name())

	// Route coordinates come from the provider, then Google when a key is set.
	coords := providers.ChainCoordinates{provider}
	if cfg.GoogleGeocoderKey != "" {
		coords = append(coords, providers.NewGoogleGeocoder(cfg.GoogleGeocoderKey))
	}

	// Location cache: Redis when configured, in memory otherwise.
	var (
		backend   cache.Backend
		cacheJobs []scheduler.Job
	)
	if cfg.UseRedis() {
		rb, err := cache.NewRedisBackend(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLog.Fatalf("failed to initialize Redis cache: %v", err)
		}
		defer rb.Close()
		backend = rb
	} else {
		mb := cache.NewMemoryBackend()
		backend = mb
		cacheJobs = append(cacheJobs, scheduler.Job{Name: "location-cache", Sweep: mb.Sweep})
	}
	locations := cache.NewResolver(provider.Name(), provider, coords, backend, cfg.CacheTTL, appLog)

	// Core service orchestrating aggregation and the result store.
	aggregator := weather.NewAggregator(locations, locations, provider, appLog)
	service := weather.NewService(store.NewMemoryStore(), aggregator, cfg.AggregateTimeout, appLog)

	forms := itinerary.NewFormRegistry()
	chatService := chat.NewService(service, cfg.DashboardURL, appLog)

	// Scheduler that sweeps idle sessions, forms and cache entries.
	jobs := append([]scheduler.Job{
		{Name: "chat-sessions", Sweep: func() int { return chatService.Sweep(cfg.SessionIdleTTL) }},
		{Name: "forms", Sweep: func() int { return forms.Sweep(cfg.SessionIdleTTL) }},
	}, cacheJobs...)
	sched := scheduler.New(jobs, cfg.SweepInterval, appLog)
	if err := sched.Start(); err != nil {
		appLog.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "itinerary-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.AggregateTimeout + 10*time.Second,
		ErrorHandler:          httpapi.NewErrorHandler(appLog),
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "itinerary-weather",
			"provider": provider.Name(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Forecasts: service,
		Boards:    view.NewBoards(),
		Forms:     forms,
		Chat:      chatService,
	})

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLog.Errorf("fiber server stopped: %v", err)
		}
	}()
	appLog.Infof("listening on :%s", cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLog.Errorf("error during shutdown: %v", err)
	}
}
