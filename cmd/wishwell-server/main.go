package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/config"
	"github.com/mikepea/wishwell/pkg/wishwell/database"
	"github.com/mikepea/wishwell/pkg/wishwell/logging"
	"github.com/mikepea/wishwell/pkg/wishwell/middleware"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"github.com/mikepea/wishwell/pkg/wishwell/notify"
	"github.com/mikepea/wishwell/pkg/wishwell/server"
	"github.com/mikepea/wishwell/pkg/wishwell/storage"
	"github.com/mikepea/wishwell/pkg/wishwell/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTELEndpoint)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error("failed to connect to database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	if err := models.AutoMigrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed", "driver", cfg.DBDriver)

	var uploader storage.Uploader
	if cfg.StorageEnabled() {
		uploader = storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StorageBucket)
	} else {
		logger.Info("object storage not configured, image uploads disabled")
	}

	var notifier notify.Notifier = notify.LogNotifier{Logger: logger}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, notifier)
		if err != nil {
			logger.Error("failed to create telegram bot", "error", err)
			os.Exit(1)
		}
		notifier = tg
	}

	limiter := middleware.NewIPRateLimiter(cfg.InviteRatePerMin, cfg.InviteRateBurst, 10*time.Minute)
	go limiter.Cleanup(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gin.SetMode(gin.ReleaseMode)
	router := server.New(server.Deps{
		DB:            db,
		Verifier:      auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Logger:        logger,
		Uploader:      uploader,
		Notifier:      notifier,
		InviteLimiter: limiter,
		Registry:      reg,
		CORSOrigins:   cfg.CORSOrigins,
		WebDistPath:   cfg.WebDistPath,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting wishwell server", "port", cfg.Port, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
