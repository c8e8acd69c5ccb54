package metrics

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Collectors are constructed eagerly so services can record into them even
// when Register was never called (tests, tools).
var (
	ActivitiesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greencycle_activities_recorded_total",
			Help: "Score-earning activities applied to a user, by kind.",
		},
		[]string{"kind"},
	)

	LeaderboardDegraded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "greencycle_leaderboard_degraded_total",
			Help: "Leaderboard reads answered with an empty list because the store failed.",
		},
	)

	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greencycle_search_requests_total",
			Help: "Search requests, by scope.",
		},
		[]string{"scope"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "greencycle_search_duration_seconds",
			Help:    "Duration of composite searches.",
			Buckets: prometheus.DefBuckets,
		},
	)

	DumpReportsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "greencycle_dump_reports_submitted_total",
			Help: "Dump reports stored.",
		},
	)

	UsersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "greencycle_users_total",
			Help: "Registered users, refreshed periodically.",
		},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "greencycle_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "greencycle_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greencycle_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "greencycle_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. pool may be
// nil when the service runs on the in-memory stores. Safe to call twice.
func Register(pool *pgxpool.Pool) {
	registerOnce.Do(func() {
		if pool != nil {
			prometheus.MustRegister(
				prometheus.NewGaugeFunc(
					prometheus.GaugeOpts{
						Name: "greencycle_db_connection_pool_active",
						Help: "Number of active database connections.",
					},
					func() float64 { return float64(pool.Stat().AcquiredConns()) },
				),
				prometheus.NewGaugeFunc(
					prometheus.GaugeOpts{
						Name: "greencycle_db_connection_pool_idle",
						Help: "Number of idle database connections.",
					},
					func() float64 { return float64(pool.Stat().IdleConns()) },
				),
			)
		}

		prometheus.MustRegister(
			ActivitiesRecorded,
			LeaderboardDegraded,
			SearchRequests,
			SearchDuration,
			DumpReportsSubmitted,
			UsersTotal,
			CacheHits,
			CacheMisses,
			RequestDuration,
			RequestsInFlight,
		)
	})
}

// Middleware records request duration and in-flight count. Requests are
// labelled with the template of the route that served them; anything that
// did not reach a registered route is labelled "other".
func Middleware() fiber.Handler {
	var (
		once  sync.Once
		known map[string]struct{}
	)
	return func(c fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		method := string([]byte(c.Method()))

		RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		// Routes are registered after the middleware, so look them up lazily.
		once.Do(func() { known = routeTemplates(c.App()) })
		endpoint := endpointLabel(c.Route().Path, known)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(responseStatus(c, err))

		RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		RequestsInFlight.Dec()

		return err
	}
}

func routeTemplates(app *fiber.App) map[string]struct{} {
	known := make(map[string]struct{})
	for _, r := range app.GetRoutes(true) {
		known[r.Path] = struct{}{}
	}
	return known
}

// endpointLabel keeps label cardinality bounded by the route table.
func endpointLabel(routePath string, known map[string]struct{}) string {
	if routePath == "" || routePath == "/" {
		return "other"
	}
	if _, ok := known[routePath]; ok {
		return routePath
	}
	return "other"
}

// responseStatus is the status the error handler will write for err.
func responseStatus(c fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// Handler serves the Prometheus /metrics endpoint via Fiber.
func Handler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
