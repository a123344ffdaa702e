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

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/movement"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geocode"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/ratelimit"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/telemetry"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/alert"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	geofenceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/geofence"
	movementService "github.com/cmlabs-hris/attendance-backend-go/internal/service/movement"
	notificationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/notification"
	settingsService "github.com/cmlabs-hris/attendance-backend-go/internal/service/settings"
	"github.com/cmlabs-hris/attendance-backend-go/migrations"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.SlogLevel(),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		TraceQueries:    cfg.Database.TraceQueries,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db.Pool); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	// Repositories
	userRepo := postgresql.NewUserRepository(db)
	sessionRepo := postgresql.NewSessionRepository(db)
	summaryRepo := postgresql.NewSummaryRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	fenceRepo := postgresql.NewGeoFenceRepository(db)
	appConfigRepo := postgresql.NewAppConfigRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	dayLocker := postgresql.NewDayLocker(db)

	var cooldownStore movement.CooldownStore
	var cooldownPurger movement.CooldownPurger
	switch cfg.Movement.CooldownStore {
	case "postgres":
		repo := postgresql.NewCooldownRepository(db)
		cooldownStore, cooldownPurger = repo, repo
	default:
		cooldownStore = movementService.NewMemoryCooldownStore(cfg.Movement.Cooldown)
	}

	// Infrastructure
	jwtService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("init email: %w", err)
	}
	var geocoder geocode.Geocoder
	if cfg.Geocoding.Enabled {
		geocoder = geocode.NewNominatimClient(cfg.Geocoding)
	}
	hub := sse.NewHub(sse.WithBufferSize(32))

	// Services
	notifSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{})
	settingsSvc := settingsService.NewSettingsService(appConfigRepo)
	dispatcher := alert.NewDispatcher(userRepo, emailService, notifSvc, alert.Config{
		Workers:     cfg.Dispatcher.Workers,
		QueueSize:   cfg.Dispatcher.QueueSize,
		TaskTimeout: cfg.Dispatcher.TaskTimeout,
	})
	monitorSvc := movementService.NewMonitorService(
		sessionRepo,
		userRepo,
		settingsSvc,
		cooldownStore,
		dispatcher,
		cfg.Movement.Cooldown,
	)
	attendanceSvc := attendanceService.NewAttendanceService(
		dayLocker,
		sessionRepo,
		summaryRepo,
		userRepo,
		shiftRepo,
		settingsSvc,
		geofenceService.NewGuard(fenceRepo),
		geocoder,
		ratelimit.New(cfg.RateLimit.MaxActions, cfg.RateLimit.Window),
		monitorSvc,
		attendanceService.WithNotifier(notifSvc),
	)

	// Background jobs
	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(sessionRepo, attendanceSvc, cooldownPurger, cfg.Movement.Cooldown).RegisterJobs(scheduler)
	scheduler.Start(ctx)

	// HTTP
	router := appHTTP.NewRouter(
		cfg,
		jwtService,
		appHTTP.NewAttendanceHandler(attendanceSvc, monitorSvc),
		appHTTP.NewNotificationHandler(notifSvc, jwtService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// SSE streams never finish on their own.
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}

	// Producers stop before consumers so queued alerts still reach the notifier.
	scheduler.Stop()
	dispatcher.Stop()
	notifSvc.Stop()

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("Tracing shutdown failed", "error", err)
	}

	slog.Info("Server stopped")
	return nil
}
