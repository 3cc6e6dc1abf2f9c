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

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"downtime-tracker/api"
	"downtime-tracker/auth"
	"downtime-tracker/domain"
	"downtime-tracker/internal"
	"downtime-tracker/observability"
	"downtime-tracker/realtime"
	"downtime-tracker/repositories"
	"downtime-tracker/runtime/workers"
	"downtime-tracker/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close, worker
// shutdown) executes before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	options := badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & auth
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	machineRepo := repositories.NewMachineRepository(db)
	ticketRepo := repositories.NewTicketRepository(db)
	batchRepo := repositories.NewBatchRepository(db)

	if err := seedAdmin(logger, userRepo, config); err != nil {
		return exitRuntime, err
	}

	sessionManager := auth.NewSessionManager(logger, sessionRepo, userRepo, config.SessionTTL)

	// 4. Real-time subsystem
	registry := realtime.NewRegistry()
	router := realtime.NewRouter(logger, registry)
	broadcaster := realtime.NewBroadcaster(logger, registry)
	guard := realtime.NewOriginGuard(config.Development(), config.Origins())
	wsHandler := realtime.NewHandler(logger, guard, sessionManager, registry, router, config.SessionCookieName)

	sweeper := realtime.NewSweeper(logger, registry, config.HeartbeatInterval)
	monitor := observability.NewMonitor(logger, registry, config.MonitorInterval)

	supervisor := workers.NewSupervisor(logger)
	supervisor.Add(sweeper, monitor)
	go supervisor.Run(ctx)
	defer supervisor.Stop()

	if logger.Enabled(ctx, slog.LevelDebug) {
		url := fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort)
		logger.Info("Debug inspector available", "url", url)
		internal.StartDebugServer(db, config.DebugPort, "/inspect", nil, monitor.StatsMap)
	}

	// 5. Services & HTTP surface
	authService := services.NewAuthService(userRepo, sessionManager)
	machineService := services.NewMachineService(machineRepo, broadcaster)
	ticketService := services.NewTicketService(ticketRepo, machineRepo, userRepo, broadcaster)
	batchService := services.NewBatchService(batchRepo, machineRepo, broadcaster)

	handler := api.NewRouter(api.Deps{
		Log:        logger,
		Auth:       api.NewAuthHandler(logger, authService, config.SessionCookieName, config.SessionTTL, !config.Development()),
		Machines:   api.NewMachineHandler(logger, machineService),
		Tickets:    api.NewTicketHandler(logger, ticketService),
		Batches:    api.NewBatchHandler(logger, batchService),
		Users:      api.NewUserHandler(logger, userRepo),
		Realtime:   wsHandler,
		Resolver:   sessionManager,
		CookieName: config.SessionCookieName,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: handler,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", server.Addr, "environment", config.Environment)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitRuntime, fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return exitRuntime, fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return exitOK, nil
}

// seedAdmin bootstraps the first admin account on an empty store so the
// deployment is reachable before any user CRUD exists.
func seedAdmin(logger *slog.Logger, users repositories.IUserRepository, config internal.Config) error {
	if config.AdminEmail == "" || config.AdminPassword == "" {
		return nil
	}

	count, err := users.CountUsers()
	if err != nil {
		return fmt.Errorf("user count failed: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(config.AdminPassword)
	if err != nil {
		return fmt.Errorf("admin password hashing failed: %w", err)
	}
	admin, err := users.CreateUser(config.AdminEmail, "Administrator", domain.RoleAdmin, hash)
	if err != nil {
		return fmt.Errorf("admin seeding failed: %w", err)
	}
	logger.Info("Seeded initial admin user", "userId", admin.ID, "email", admin.Email)
	return nil
}
