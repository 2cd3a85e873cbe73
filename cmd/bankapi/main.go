package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portsrepo "github.com/sunubank/bankapi/internal/core/ports/repositories"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/core/services"
	"github.com/sunubank/bankapi/internal/handlers"
	"github.com/sunubank/bankapi/internal/jobs"
	"github.com/sunubank/bankapi/internal/middleware"
	"github.com/sunubank/bankapi/internal/notification"
	"github.com/sunubank/bankapi/internal/platform/config"
	"github.com/sunubank/bankapi/internal/platform/validation"
	pgsqlrepo "github.com/sunubank/bankapi/internal/repositories/database/pgsql"
	"github.com/sunubank/bankapi/internal/utils"
	"github.com/sunubank/bankapi/pkg/database"
	"github.com/sunubank/bankapi/pkg/rabbitmq"
)

// @title Bank Account API
// @version 1.0
// @description REST API for managing bank accounts, their lifecycle and transactions.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	validation.RegisterCustomValidators()

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := portsrepo.RepositoryProvider{
		AccountRepo:     pgsqlrepo.NewAccountRepository(dbPool),
		ClientRepo:      pgsqlrepo.NewClientRepository(dbPool),
		TransactionRepo: pgsqlrepo.NewTransactionRepository(dbPool),
		UserRepo:        pgsqlrepo.NewUserRepository(dbPool),
	}

	notifier, producer := buildNotifier(cfg, logger)
	if producer != nil {
		defer producer.Close()
	}

	container := services.NewServiceContainer(cfg, repos, notifier)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, buildLoginLimiter(cfg, logger))

	var scheduler *jobs.Scheduler
	if cfg.SweepEnabled {
		scheduler = jobs.NewScheduler(logger, container.Account, cfg.SweepSchedule)
		if err := scheduler.Start(); err != nil {
			logger.Error("Failed to start archival scheduler", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	logger.Info("Server exited")
}

// runMigrations applies all pending "up" migrations from the migrations
// directory over a short-lived database/sql connection.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Database migrations applied")
	}
	return nil
}

// buildNotifier connects the AMQP producer when an URL is configured and
// falls back to log-only delivery otherwise.
func buildNotifier(cfg *config.Config, logger *slog.Logger) (portssvc.NotificationSink, *rabbitmq.EventProducer) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP_URL not set, notifications will be logged only")
		return notification.NewLogSink(), nil
	}
	producer, err := rabbitmq.NewEventProducer(cfg.AMQPURL, cfg.NotifyExchange)
	if err != nil {
		logger.Error("Failed to connect to AMQP, falling back to log-only notifications",
			slog.String("error", err.Error()))
		return notification.NewLogSink(), nil
	}
	logger.Info("Connected to AMQP", slog.String("exchange", cfg.NotifyExchange))
	return notification.NewAMQPSink(producer), producer
}

// buildLoginLimiter builds the per-IP rate limiter applied to the login
// endpoint from the configured format, e.g. "5-M".
func buildLoginLimiter(cfg *config.Config, logger *slog.Logger) *limiter.Limiter {
	rate, err := limiter.NewRateFromFormatted(cfg.LoginRateLimit)
	if err != nil {
		logger.Warn("Invalid LOGIN_RATE_LIMIT, defaulting to 5-M", slog.String("error", err.Error()))
		rate, _ = limiter.NewRateFromFormatted("5-M")
	}
	return limiter.New(memory.NewStore(), rate)
}
