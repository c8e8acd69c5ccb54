package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/greencycle/greencycle-go/internal/handler"
	"github.com/greencycle/greencycle-go/internal/metrics"
	"github.com/greencycle/greencycle-go/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Leaderboard *handler.LeaderboardHandler
	Search      *handler.SearchHandler
	Report      *handler.ReportHandler
	User        *handler.UserHandler
	Stats       *handler.StatsHandler
	Health      *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given
// Fiber app. The returned func releases the rate limiters.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) func() {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(metrics.Middleware())
	app.Use(middleware.NewCORS(corsOrigins))

	searchLimit := middleware.NewSearchRateLimiter()
	scoreLimit := middleware.NewScoreUpdateRateLimiter()
	reportLimit := middleware.NewReportSubmitRateLimiter()
	registerLimit := middleware.NewRegisterRateLimiter()

	// Probes and metrics sit outside /api
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// Leaderboard routes
	lb := api.Group("/leaderboard")
	lb.Get("/", h.Leaderboard.GetLeaderboard)
	lb.Get("/test", h.Leaderboard.Test)
	lb.Get("/me", middleware.UserContext(true), h.Leaderboard.Me)
	lb.Post("/update-score", middleware.UserContext(true), scoreLimit.Handler(), h.Leaderboard.UpdateScore)

	// Search routes
	search := api.Group("/search", searchLimit.Handler())
	search.Get("/", h.Search.Search)
	search.Get("/dumps", h.Search.Dumps)
	search.Get("/users", h.Search.Users)
	search.Get("/marketplace", h.Search.Marketplace)
	search.Get("/suggestions", h.Search.Suggestions)

	// Dump report routes
	api.Post("/dumps", reportLimit.Handler(), h.Report.Submit)
	api.Get("/dumps", h.Report.List)

	// User routes
	api.Post("/users", registerLimit.Handler(), h.User.Register)

	// Stats routes
	api.Get("/stats", h.Stats.GetStats)

	return func() {
		searchLimit.Close()
		scoreLimit.Close()
		reportLimit.Close()
		registerLimit.Close()
	}
}
