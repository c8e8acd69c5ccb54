package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greencycle/greencycle-go/internal/config"
	"github.com/greencycle/greencycle-go/internal/db"
	"github.com/greencycle/greencycle-go/internal/handler"
	"github.com/greencycle/greencycle-go/internal/metrics"
	"github.com/greencycle/greencycle-go/internal/middleware"
	"github.com/greencycle/greencycle-go/internal/repository"
	"github.com/greencycle/greencycle-go/internal/router"
	"github.com/greencycle/greencycle-go/internal/service"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		middleware.InitLogger("info", "greencycle-api", false)
		middleware.Logger.Fatal().Err(err).Msg("invalid configuration")
	}
	log := middleware.InitLogger(cfg.LogLevel, "greencycle-api", cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		pool    *pgxpool.Pool
		users   service.UserStore
		reports service.ReportStore
	)
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		users = repository.NewMemoryUserRepo()
		reports = repository.NewMemoryReportRepo()
	default:
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
		users = repository.NewUserRepo(pool)
		reports = repository.NewReportRepo(pool)
	}

	catalog, err := repository.LoadMarketplaceCatalog(cfg.MarketplaceCatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.MarketplaceCatalogPath).Msg("failed to load marketplace catalog")
	}

	cache := service.NewCacheService(cfg.RedisURL, cfg.LeaderboardCacheTTL, log)
	defer cache.Close()

	metrics.Register(pool)

	ledger := service.NewScoreLedger(users, cache, log)
	engine := service.NewSearchEngine(reports, users, catalog)
	userSvc := service.NewUserService(users, ledger, log)
	reportSvc := service.NewReportService(reports, ledger, log)

	if cfg.SeedSampleScores {
		n, err := userSvc.SeedSampleScores(ctx)
		if err != nil {
			log.Error().Err(err).Msg("seeding sample scores failed")
		} else {
			log.Info().Int("users", n).Msg("sample scores seeded")
		}
	}

	stats := service.NewStatsScheduler(users, cfg.StatsRefreshInterval, log)
	if err := stats.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start stats scheduler")
	}

	app := fiber.New(fiber.Config{
		AppName:      "GreenCycle API",
		ServerHeader: "GreenCycle",
		ErrorHandler: middleware.ErrorHandler,
	})

	release := router.Setup(app, &router.Handlers{
		Leaderboard: handler.NewLeaderboardHandler(ledger, userSvc),
		Search:      handler.NewSearchHandler(engine),
		Report:      handler.NewReportHandler(reportSvc),
		User:        handler.NewUserHandler(userSvc),
		Stats:       handler.NewStatsHandler(userSvc, reportSvc),
		Health:      handler.NewHealthHandler(pool, cache.Client(), version),
	}, cfg.CORSOrigins)
	defer release()

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Str("store", cfg.StoreBackend).
		Msg("GreenCycle backend starting")
	if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}

	if err := stats.Stop(); err != nil {
		log.Error().Err(err).Msg("stats scheduler shutdown failed")
	}
}
