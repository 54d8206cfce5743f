package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-notification-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-notification-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-notification-go/internal/repository/postgresql"
	notificationService "github.com/cmlabs-hris/hris-notification-go/internal/service/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logLevel := appHTTP.ParseLogLevel(cfg.App.LogLevel)
	logger := appHTTP.NewLogger(cfg.App.Env, logLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		logger.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	notificationRepo := postgresql.NewNotificationRepository(db)
	scheduleRepo := postgresql.NewScheduleSnapshotRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub[notificationService.Event](10)

	notifService := notificationService.NewNotificationService(notificationRepo, scheduleRepo, hub, notificationService.Config{
		BatchSize:          cfg.Notification.BatchSize,
		FlushInterval:      cfg.Notification.FlushInterval,
		WorkerCount:        cfg.Notification.Workers,
		QueueSize:          cfg.Notification.QueueSize,
		ScheduleWindowDays: cfg.Render.ScheduleWindowDays,
		Location:           cfg.Render.Location,
	})

	scheduler := cron.NewScheduler(logger)
	cron.NewNotificationJobs(notifService, cfg.Notification.Retention, cfg.Notification.PurgeInterval, logger).RegisterJobs(scheduler)
	scheduler.Start()

	notificationHandler := appHTTP.NewNotificationHandler(notifService, JWTService)
	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		LogLevel:       logLevel,
	}, logger, JWTService, notificationHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server running", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	// SSE streams end when their subscriptions close
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	scheduler.Stop()
	notifService.Stop()
}
