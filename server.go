package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/currency"
	"github.com/URVIL2512/Finance-Suite-sub001/documents"
	"github.com/URVIL2512/Finance-Suite-sub001/handlers"
	"github.com/URVIL2512/Finance-Suite-sub001/middlewares"
	"github.com/URVIL2512/Finance-Suite-sub001/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	port := config.ServerPort()
	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server first; app endpoints answer 503 until the database is ready.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/readyz", readinessHandler())

	r.Use(cors.New(corsConfig()))

	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		limit := positiveIntFromEnv("RATE_LIMIT_MAX_REQUESTS", 600)
		windowSec := positiveIntFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)
		rateLimiter := middlewares.NewRateLimiter(config.GetRedisDB, int64(limit), time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())
	handlers.Register(r)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry(sigCtx, 5)

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can block tables; large deployments run it as a separate job.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	models.SetRateConverter(currency.NewConverterFromEnv())

	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	defer cancelDispatcher()
	dispatcher := documents.NewDispatcherFromEnv(logger)
	dispatcher.Start(dispatcherCtx)
	models.SetDocumentQueue(dispatcher)

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on port ", port)

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	// No new invoices can be queued once HTTP has drained; flush the document queue.
	models.SetDocumentQueue(nil)
	dispatcher.Stop()
	cancelDispatcher()
	config.ClosePubSub()

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	origins := config.AllowedOrigins()
	production := strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
	switch {
	case !production, len(origins) == 1 && origins[0] == "*":
		corsConfig.AllowAllOrigins = true
	default:
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders(
		middlewares.TokenHeader,
		middlewares.BusinessIdHeader,
		middlewares.UserIdHeader,
		middlewares.UserNameHeader,
		middlewares.CorrelationHeader,
		"Origin", "Content-Type", "Authorization",
	)
	corsConfig.AddExposeHeaders("Content-Length", middlewares.CorrelationHeader)
	return corsConfig
}

// readinessHandler pings the database and redis.
func readinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := config.GetDB().DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database: " + err.Error()})
			return
		}
		if err := config.PingRedis(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "redis: " + err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func positiveIntFromEnv(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
