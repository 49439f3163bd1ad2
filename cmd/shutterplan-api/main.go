// README: Entry point; loads config, wires the dispatcher and optional backends, serves the HTTP API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shutterplan/internal/ai"
	"shutterplan/internal/compare"
	"shutterplan/internal/config"
	httptransport "shutterplan/internal/http"
	"shutterplan/internal/http/handlers"
	"shutterplan/internal/infra"
	"shutterplan/internal/maps"
	"shutterplan/internal/modules/plancache"
	"shutterplan/internal/modules/pricing"
	"shutterplan/internal/modules/usage"
	"shutterplan/internal/observe"
	"shutterplan/internal/service"
)

const (
	serviceName     = "shutterplan"
	serviceVersion  = "0.1.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := observe.SetupLogger(os.Stdout, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := observe.InitProvider(ctx, serviceName, serviceVersion)
	if err != nil {
		log.Fatalf("metrics init: %v", err)
	}
	defer func() { _ = shutdownMetrics(context.Background()) }()
	metrics := observe.DefaultMetrics()

	models, err := config.LoadModels(cfg.AI.ModelsFile)
	if err != nil {
		log.Fatalf("load models: %v", err)
	}
	catalog, err := ai.NewCatalog(models)
	if err != nil {
		log.Fatal(err)
	}

	dispatcher := ai.NewDispatcher(ai.Options{
		MaxTokens: cfg.AI.MaxTokens,
		BaseURLs:  cfg.AI.BaseURLs,
		Metrics:   metrics,
		Logger:    logger,
	})
	for _, m := range catalog.Enabled() {
		if !dispatcher.IsAvailable(m) {
			logger.Warn("model credential missing", "model", m.ID, "env", ai.CredentialEnv[m.Provider])
		}
	}

	pricingSvc := pricing.NewService()
	checks := map[string]handlers.HealthCheck{}
	deps := service.PlannerDeps{
		Catalog:    catalog,
		Dispatcher: dispatcher,
		Pricing:    pricingSvc,
		Metrics:    metrics,
	}

	// Optional backends are assigned only when configured so the planner's
	// interfaces stay nil rather than holding typed nil pointers.
	var usageSvc handlers.UsageSummarizer
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		svc := usage.NewService(usage.NewStore(dbPool), pricingSvc)
		deps.Usage = svc
		usageSvc = svc
		checks["postgres"] = dbPool.Ping
	} else {
		logger.Info("usage ledger disabled", "env", "SHUTTERPLAN_DB_DSN")
	}

	if cfg.Redis.Addr != "" {
		redisClient := infra.NewRedis(cfg.Redis.Addr)
		defer redisClient.Close()
		cache := plancache.NewStore(redisClient, cfg.Redis.CacheTTL)
		deps.Cache = cache
		checks["redis"] = cache.Ping
	} else {
		logger.Info("plan cache disabled", "env", "SHUTTERPLAN_REDIS_ADDR")
	}

	if cfg.Maps.APIKey != "" {
		places, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatal(err)
		}
		routes, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatal(err)
		}
		deps.Spots = places
		deps.Routes = routes
	} else {
		logger.Info("photo spot lookup disabled", "env", "SHUTTERPLAN_MAPS_API_KEY")
	}

	planner := service.NewPlanner(deps)
	runner := compare.NewRunner(dispatcher, compare.Options{
		Workers: cfg.AI.CompareWorkers,
		Timeout: cfg.HTTP.RequestTimeout,
		Pricing: pricingSvc,
		Logger:  logger,
	})

	gin.SetMode(gin.ReleaseMode)
	handler := httptransport.NewServer(httptransport.ServerDeps{
		Catalog:        catalog,
		Availability:   dispatcher,
		Planner:        planner,
		Compare:        runner,
		Usage:          usageSvc,
		Metrics:        metrics,
		MetricsHandler: promhttp.Handler(),
		HealthChecks:   checks,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", "error", err)
		}
	}()

	logger.Info("http listening", "addr", cfg.HTTP.Addr, "models", len(catalog.Enabled()))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
