package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmanzanog/leek-tracker/internal/application"
	"github.com/jmanzanog/leek-tracker/internal/domain"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/config"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/marketdata/fundgz"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/marketdata/leekhub"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/marketdata/sina"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/persistence/memory"
	"github.com/jmanzanog/leek-tracker/internal/infrastructure/persistence/sqldb"
	httpHandler "github.com/jmanzanog/leek-tracker/internal/interfaces/http"
	"github.com/joho/godotenv"
	_ "github.com/sijms/go-ora/v2"
)

// parseLogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogger configures and returns a structured logger with source information
func setupLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(level),
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	return logger
}

// initializeDatabase sets up the database connection and runs migrations
func initializeDatabase(cfg *config.Config) (*sqldb.Repository, *sql.DB, error) {
	var db *sql.DB
	var dialect sqldb.Dialect
	var err error

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err = sql.Open("pgx", cfg.DBDSN)
		dialect = &sqldb.PostgresDialect{}
	case config.StorageOracle:
		db, err = sql.Open("oracle", cfg.DBDSN)
		dialect = &sqldb.OracleDialect{}
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.StorageDriver)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := sqldb.NewRepository(sqldb.New(db, dialect))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, db, nil
}

// initializeStorage picks the code list store. The returned *sql.DB is nil
// for the memory store.
func initializeStorage(cfg *config.Config) (domain.CodeListRepository, *sql.DB, error) {
	if cfg.StorageDriver == config.StorageMemory {
		return memory.NewCodeListRepository(), nil, nil
	}
	repo, db, err := initializeDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return repo, db, nil
}

// seedCodeLists stores the configured codes for every list that is still empty.
func seedCodeLists(ctx context.Context, repo domain.CodeListRepository, cfg *config.Config) error {
	seeds := []struct {
		kind  domain.ListKind
		codes domain.CodeList
	}{
		{domain.ListKindFund, cfg.FundCodes},
		{domain.ListKindStock, cfg.StockCodes},
	}

	for _, seed := range seeds {
		if len(seed.codes) == 0 {
			continue
		}
		stored, err := repo.Load(ctx, seed.kind)
		if err != nil {
			return fmt.Errorf("failed to load %s codes: %w", seed.kind, err)
		}
		if len(stored) > 0 {
			continue
		}
		if err := repo.Save(ctx, seed.kind, seed.codes); err != nil {
			return fmt.Errorf("failed to seed %s codes: %w", seed.kind, err)
		}
		slog.Info("Seeded code list", "kind", seed.kind, "count", len(seed.codes))
	}
	return nil
}

func newFundClient(cfg *config.Config) *fundgz.Client {
	client := fundgz.NewClientWithBaseURL(cfg.FundBaseURL)
	client.SetConcurrency(cfg.FundConcurrency)
	client.SetTimeout(cfg.FundTimeout)
	return client
}

// buildServer creates and configures the HTTP server with all routes and handlers
func buildServer(cfg *config.Config, handler *httpHandler.Handler) *http.Server {
	router := gin.Default()
	httpHandler.SetupRoutes(router, handler)

	// request contexts end on shutdown so open event streams let go
	baseCtx, cancel := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancel)

	return server
}

// App wraps the application components for easier testing
type App struct {
	Server    *http.Server
	Scheduler *application.RefreshScheduler
	DB        *sql.DB
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	a.Scheduler.Dispose()

	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close error: %w", err))
		}
	}

	return errors.Join(errs...)
}

// buildApp wires stores, clients, services, scheduler and HTTP server.
func buildApp(ctx context.Context, cfg *config.Config) (*App, error) {
	repo, db, err := initializeStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage initialization failed: %w", err)
	}
	closeDB := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	if err := seedCodeLists(ctx, repo, cfg); err != nil {
		closeDB()
		return nil, err
	}

	events := application.NewBroadcaster()

	funds, err := application.NewFundService(ctx, repo, newFundClient(cfg), events)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("failed to create fund service: %w", err)
	}
	stocks, err := application.NewStockService(ctx, repo, sina.NewClientWithBaseURL(cfg.StockBaseURL), events)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("failed to create stock service: %w", err)
	}
	funds.SetCoalesce(cfg.ReloadCoalesce)
	stocks.SetCoalesce(cfg.ReloadCoalesce)

	symbols := application.NewSymbolDirectory(leekhub.NewClientWithURL(cfg.SymbolDirectoryURL))
	scheduler := application.NewRefreshScheduler(cfg.PollInterval, cfg.DebounceDelay, funds, stocks)

	handler := httpHandler.NewHandler(funds, stocks, scheduler, symbols, events)

	return &App{
		Server:    buildServer(cfg, handler),
		Scheduler: scheduler,
		DB:        db,
	}, nil
}

// run contains the main application logic without os.Exit calls
// This makes it testeable
func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg.LogLevel)
	slog.Info("Using code list storage", "driver", cfg.StorageDriver)

	app, err := buildApp(context.Background(), cfg)
	if err != nil {
		return err
	}

	if cfg.ViewVisible {
		app.Scheduler.SetVisible(true)
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "host", cfg.ServerHost, "port", cfg.ServerPort)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case err := <-serverErrors:
		serveErr = fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return errors.Join(serveErr, fmt.Errorf("shutdown failed: %w", err))
	}
	if serveErr != nil {
		return serveErr
	}

	slog.Info("Server exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
