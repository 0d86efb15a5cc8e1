package http

import (
	"context"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/summitops/event-pay-gateway/internal/cache"
	"github.com/summitops/event-pay-gateway/internal/config"
	"github.com/summitops/event-pay-gateway/internal/http/middleware"
	"github.com/summitops/event-pay-gateway/internal/metrics"
	"github.com/summitops/event-pay-gateway/internal/repository"
	"github.com/summitops/event-pay-gateway/internal/service/capture"
	"github.com/summitops/event-pay-gateway/internal/stripe"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client) *Server {
	// repos (MySQL)
	leadsRepo := repository.NewLeadsRepository(mysqlDB)
	outboxRepo := repository.NewOutboxRepository(mysqlDB)

	// repos (ClickHouse)
	chLeadsRepo := repository.NewCHLeadsRepository(clickhouseDB)

	// services
	captureSvc := capture.New(mysqlDB, leadsRepo, outboxRepo)
	stripeClient := stripe.NewClient(cfg.Stripe.APIKey, cfg.Stripe.Timeout)
	customers := cache.NewCustomerCache(cfg.Cache.CustomerTTL, cfg.Cache.CustomerMaxSize)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	corsMW := middleware.CORSMiddleware(middleware.NewCORSPolicy(middleware.CORSOptions{
		CanonicalOrigin: cfg.CORS.CanonicalOrigin,
		DevOrigins:      cfg.CORS.DevOrigins,
		PreviewSuffix:   cfg.CORS.PreviewSuffix,
	}))
	e.Use(corsMW)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		Max:            cfg.RateLimit.Max,
		Window:         cfg.RateLimit.Window,
		KeyPrefix:      "rl:ip:",
		Environment:    cfg.CORS.Environment,
		RetryAfterHint: true,
	})
	adminMW := middleware.AdminKeyMiddleware(cfg.Admin.APIKey)

	// routes
	v1 := e.Group("/v1", rlMW)
	v1.POST("/payment-intent", createPaymentIntentHandler(stripeClient, customers))
	v1.POST("/leads", captureLeadHandler(captureSvc))

	reports := e.Group("/v1/reports", adminMW)
	reports.GET("/leads", listLeadsHandler(chLeadsRepo))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
