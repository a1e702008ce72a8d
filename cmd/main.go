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

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	_ "loan-marketplace/docs"
	"loan-marketplace/internal/api"
	mw "loan-marketplace/internal/api/middleware"
	"loan-marketplace/internal/batch"
	"loan-marketplace/internal/config"
	"loan-marketplace/internal/domain/analysis"
	"loan-marketplace/internal/domain/borrower"
	"loan-marketplace/internal/domain/eligibility"
	"loan-marketplace/internal/domain/financial"
	"loan-marketplace/internal/domain/lender"
	"loan-marketplace/internal/domain/loanrequest"
	"loan-marketplace/internal/event"
	"loan-marketplace/internal/infrastructure/cache"
	"loan-marketplace/internal/infrastructure/database/postgres"
	"loan-marketplace/internal/infrastructure/extraction"
	"loan-marketplace/internal/infrastructure/logging"
	"loan-marketplace/internal/infrastructure/storage"
)

const defaultLenderStatsSchedule = "*/15 * * * *"

// @title Loan Marketplace API
// @version 1.0
// @description Education loan marketplace: financial profile aggregation, lender matching, analysis history and loan request lifecycle.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	redisClient := initializeCache(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	rabbitConn, publisher := initializePublisher(cfg, logger)
	if rabbitConn != nil {
		defer closeRabbitMQ(rabbitConn, logger)
	}

	extractionFactory := extraction.NewClientFactory(cfg.Extraction, logger)
	defer extractionFactory.Close()

	svcs, lenderService := initializeServices(cfg, dbPool, redisClient, publisher, extractionFactory, logger)

	statsJob := batch.NewRefreshLenderStatsJob(lenderService, cfg.Batch.LenderStatsTimeout, logger)
	cronScheduler := startBatchJobs(cfg, logger, statsJob)

	rateLimiter := mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger)
	defer rateLimiter.Stop()
	router := api.SetupRouter(svcs, rateLimiter, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

// initializeCache returns nil when Redis is not configured or unreachable.
// The lender catalog then reads through to Postgres on every call.
func initializeCache(cfg *config.Config, logger *slog.Logger) *redis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("Lender catalog cache unavailable, continuing without it", "error", err)
		return nil
	}
	if client == nil {
		logger.Info("Redis not configured, lender catalog cache disabled")
		return nil
	}
	logger.Info("Lender catalog cache connected", "ttl", cfg.Redis.CatalogTTL)
	return client
}

func initializePublisher(cfg *config.Config, logger *slog.Logger) (*amqp.Connection, event.EventPublisher) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ disabled, loan request events will only be logged")
		return nil, event.NewNoopPublisher(logger)
	}

	conn, err := connectRabbitMQ(cfg.RabbitMQ, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", slog.Any("error", err))
		os.Exit(1)
	}
	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to create RabbitMQ publisher", slog.Any("error", err))
		os.Exit(1)
	}
	return conn, publisher
}

func connectRabbitMQ(cfg config.RabbitMQConfig, logger *slog.Logger) (*amqp.Connection, error) {
	logger.Info("Connecting to RabbitMQ", "host", cfg.Host)
	uri := fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.Username, cfg.Password, cfg.Host, cfg.Port)

	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	logger.Info("RabbitMQ connection established.")

	go func() {
		if closeErr := <-conn.NotifyClose(make(chan *amqp.Error, 1)); closeErr != nil {
			logger.Error("RabbitMQ connection closed unexpectedly", slog.Any("error", closeErr))
		}
	}()

	return conn, nil
}

func closeRabbitMQ(conn *amqp.Connection, logger *slog.Logger) {
	logger.Info("Closing RabbitMQ connection...")
	if err := conn.Close(); err != nil {
		logger.Error("Error closing RabbitMQ connection", slog.Any("error", err))
	}
}

func initializeServices(
	cfg *config.Config,
	dbPool *pgxpool.Pool,
	redisClient *redis.Client,
	publisher event.EventPublisher,
	extractionFactory *extraction.ClientFactory,
	logger *slog.Logger,
) (api.Services, lender.Service) {
	logger.Info("Initializing application components...")

	aggregation, err := financial.AggregationConfigFrom(cfg.Aggregation)
	if err != nil {
		logger.Error("Invalid aggregation configuration", "error", err)
		os.Exit(1)
	}

	artifactStore, err := storage.NewLocalStore(cfg.Storage, logger)
	if err != nil {
		logger.Error("Failed to initialize artifact store", "error", err)
		os.Exit(1)
	}

	var catalogCache lender.CatalogCache
	if redisClient != nil {
		catalogCache = cache.NewLenderCatalog(redisClient, cfg.Redis.CatalogKey, cfg.Redis.CatalogTTL)
	}

	borrowerRepo := postgres.NewBorrowerRepository(dbPool, logger)
	lenderRepo := postgres.NewLenderRepository(dbPool, logger)
	snapshotRepo := postgres.NewSnapshotRepository(dbPool, logger)
	loanRequestRepo := postgres.NewLoanRequestRepository(dbPool, logger)

	borrowerService := borrower.NewService(borrowerRepo, aggregation, logger)
	lenderService := lender.NewService(lenderRepo, catalogCache, logger)
	matcher := eligibility.NewMatcher(eligibility.DefaultWeights(), logger)
	analysisService := analysis.NewService(snapshotRepo, borrowerService, lenderService, matcher, logger)
	loanRequestService := loanrequest.NewService(loanRequestRepo, analysisService, lenderService, publisher, logger)
	evidenceService := borrower.NewEvidenceService(borrowerService, artifactStore, extractionFactory.Chain(), cfg.Storage.TempDir, logger)

	return api.Services{
		Analysis:     analysisService,
		LoanRequests: loanRequestService,
		Lenders:      lenderService,
		Borrowers:    borrowerService,
		Evidence:     evidenceService,
	}, lenderService
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, statsJob *batch.RefreshLenderStatsJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.LenderStatsSchedule
	if scheduleSpec == "" {
		scheduleSpec = defaultLenderStatsSchedule
		logger.Warn("Lender statistics schedule not configured, using default", "schedule", scheduleSpec)
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "RefreshLenderStats")
		jobLogger.Info("Cron triggered: Running lender statistics refresh job.")

		if runErr := statsJob.Run(context.Background()); runErr != nil {
			jobLogger.Error("Lender statistics refresh job finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Lender statistics refresh job finished successfully.")
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule lender statistics refresh job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled lender statistics refresh job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}
