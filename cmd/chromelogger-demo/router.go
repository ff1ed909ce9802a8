package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/R3E-Network/chromelogger/internal/config"
	"github.com/R3E-Network/chromelogger/internal/logging"
	"github.com/R3E-Network/chromelogger/internal/metrics"
	"github.com/R3E-Network/chromelogger/internal/middleware"
	"github.com/R3E-Network/chromelogger/pkg/chromelogger/ginconsole"
)

func newRouter(ctx context.Context, cfg *config.Config, logger *logging.Logger, m *metrics.Collector, zl *zap.Logger) *mux.Router {
	s := &server{logger: logger, zap: zl, service: cfg.Server.Service}

	router := mux.NewRouter()
	router.Use(middleware.NewTracingMiddleware().Handler)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.MetricsMiddleware(cfg.Server.Service, m))
	router.Use(middleware.NewCORSMiddleware(cfg.Server.AllowedOrigins).Handler)
	if cfg.Server.RateLimit > 0 {
		rl := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, logger)
		rl.StartCleanup(ctx, 5*time.Minute)
		router.Use(rl.Handler)
	}

	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.PathPrefix("/gin/").Handler(newGinEngine(cfg.Console))

	console := middleware.NewConsoleMiddleware(cfg.Console, logger, m)
	router.Handle("/", console.Handler(http.HandlerFunc(s.handleOrder))).Methods(http.MethodGet)

	demo := router.PathPrefix("/demo").Subrouter()
	demo.Use(console.Handler)
	demo.HandleFunc("/order", s.handleOrder).Methods(http.MethodGet)
	demo.HandleFunc("/level", s.handleLevel).Methods(http.MethodGet)
	demo.HandleFunc("/zap", s.handleZap).Methods(http.MethodGet)
	demo.HandleFunc("/panic", s.handlePanic).Methods(http.MethodGet)

	return router
}

func newGinEngine(cfg config.ConsoleConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.Enabled {
		engine.Use(ginconsole.Middleware(cfg.EncoderConfig()))
	}
	engine.GET("/gin/hello", func(c *gin.Context) {
		name := c.DefaultQuery("name", "world")
		ginconsole.FromContext(c).Info("hello from gin", name)
		c.JSON(http.StatusOK, gin.H{"hello": name})
	})
	return engine
}
