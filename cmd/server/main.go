// Package main implements the entry point for the dayplan API server,
// which tracks boards of tasks, records time against them, and composes
// daily work schedules.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dayplan-app/dayplan-api/internal/config"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/platform/payment"
	"github.com/dayplan-app/dayplan-api/internal/platform/postgres"
	"github.com/dayplan-app/dayplan-api/internal/platform/redcache"
	"github.com/dayplan-app/dayplan-api/internal/service"
	"github.com/dayplan-app/dayplan-api/internal/service/auth"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run loads configuration, wires the application together, and serves
// until interrupted.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := postgres.MigrateUp(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	appLogger.Info("database migrations applied")

	statusCache := redcache.New(cfg.Redis, appLogger)
	defer func() {
		if err := statusCache.Close(); err != nil {
			appLogger.Error("failed to close status cache", "error", err)
		}
	}()

	app, err := newApplication(cfg, db, statusCache, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}

// application holds the wired services shared by the router.
type application struct {
	config              *config.Config
	logger              *slog.Logger
	guard               *auth.Guard
	boardService        service.BoardService
	taskService         service.TaskService
	trackingService     service.TimeTrackingService
	scheduleService     service.ScheduleService
	paymentService      service.PaymentService
	provisioningService service.ProvisioningService
}

// newApplication builds the store, auth, and service graph on top of the
// shared database handle.
func newApplication(
	cfg *config.Config,
	db *sql.DB,
	statusCache *redcache.PaymentStatusCache,
	appLogger *slog.Logger,
) (*application, error) {
	boards := postgres.NewPostgresBoardStore(db, appLogger)
	tasks := postgres.NewPostgresTaskStore(db, appLogger)
	entries := postgres.NewPostgresTimeEntryStore(db, appLogger)
	identities := postgres.NewPostgresIdentityStore(db, appLogger)
	regKeys := postgres.NewPostgresRegistrationKeyStore(db, appLogger)

	keyVerifier := auth.NewBcryptVerifier()

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	guard := auth.NewGuard(identities, keyVerifier, jwtService, statusCache, cfg.Auth, appLogger)

	boardService, err := service.NewBoardService(db, boards, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create board service: %w", err)
	}

	taskService, err := service.NewTaskService(db, boards, tasks, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	trackingService, err := service.NewTimeTrackingService(db, boards, tasks, entries, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create time tracking service: %w", err)
	}

	scheduleService, err := service.NewScheduleService(db, boards, tasks, entries, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule service: %w", err)
	}

	verifier := payment.NewClient(cfg.Payment, appLogger)
	paymentService, err := service.NewPaymentService(
		db, identities, verifier, statusCache, cfg.Payment.PolicyWindowDays, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment service: %w", err)
	}

	provisioningService, err := service.NewProvisioningService(
		db, identities, regKeys, keyVerifier, jwtService, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create provisioning service: %w", err)
	}

	return &application{
		config:              cfg,
		logger:              appLogger,
		guard:               guard,
		boardService:        boardService,
		taskService:         taskService,
		trackingService:     trackingService,
		scheduleService:     scheduleService,
		paymentService:      paymentService,
		provisioningService: provisioningService,
	}, nil
}
