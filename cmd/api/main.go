package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/entitlement"
	"server/internal/gate"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/quota"
	"server/internal/speech"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	var sql infra.SQLExecutor
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		sql = infra.NewSQLRunner(dbpool, logger)
	}

	var usageLog domain.UsageLog
	if sql != nil {
		usageLog = repo.NewUsageLog(sql)
	} else {
		logger.Warn().Msg("no database configured, usage log is in-memory")
		usageLog = repo.NewMemoryUsageLog()
	}

	resolver := buildResolver(cfg, sql, logger)

	limits := quota.Table{
		Free:    quota.Limits{MaxCharsPerAction: cfg.FreeCharLimit, MaxActionsPerDay: cfg.FreeDailyLimit},
		Premium: quota.Limits{MaxCharsPerAction: cfg.PremiumCharLimit, MaxActionsPerDay: cfg.PremiumDailyLimit},
	}

	actionGate := gate.New(gate.Options{
		Resolver:       resolver,
		UsageLog:       usageLog,
		Limits:         limits,
		ResolveTimeout: cfg.EntitlementTimeout,
		StoreTimeout:   cfg.StoreTimeout,
		Logger:         logger,
	})

	sessions := speech.NewSessions(speech.NewSimulator(0), logger)

	app := handlers.NewApp(sql, actionGate, sessions, logger)

	country := countryLookup(cfg, logger)
	router := httpapi.NewRouter(app, cfg, logger, country)

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildResolver(cfg *infra.Config, sql infra.SQLExecutor, logger infra.Logger) entitlement.Resolver {
	var resolver entitlement.Resolver
	switch cfg.EntitlementMode {
	case "static":
		tier, ok := domain.ParseTier(cfg.EntitlementStatic)
		if !ok {
			logger.Fatal().Str("tier", cfg.EntitlementStatic).Msg("invalid static tier")
		}
		resolver = entitlement.Static{Tier: tier}
	case "http":
		resolver = entitlement.NewHTTPResolver(entitlement.HTTPOptions{
			URL:        cfg.EntitlementURL,
			APIKey:     cfg.EntitlementAPIKey,
			HTTPClient: &http.Client{Timeout: cfg.EntitlementTimeout},
		})
	default:
		if sql == nil {
			logger.Fatal().Msg("db entitlement mode requires DATABASE_URL")
		}
		resolver = entitlement.NewPGResolver(sql, cfg.EntitlementTimeout)
	}

	if cfg.EntitlementCacheTTL > 0 {
		resolver = entitlement.NewCached(resolver, cfg.EntitlementCacheTTL)
	}
	if cfg.EntitlementFailOpen {
		resolver = entitlement.FailOpen{Inner: resolver}
	}
	return resolver
}

func countryLookup(cfg *infra.Config, logger infra.Logger) middleware.CountryLookup {
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
		return nil
	}
	if resolver == nil {
		return nil
	}
	return resolver.CountryCode
}
