// Command sweeper runs one archival sweep over expired blocked accounts and
// exits. It is meant for cron-style environments where the in-process
// scheduler of the API server is disabled.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	portsrepo "github.com/sunubank/bankapi/internal/core/ports/repositories"
	"github.com/sunubank/bankapi/internal/core/services"
	"github.com/sunubank/bankapi/internal/notification"
	"github.com/sunubank/bankapi/internal/platform/config"
	pgsqlrepo "github.com/sunubank/bankapi/internal/repositories/database/pgsql"
	"github.com/sunubank/bankapi/pkg/database"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report candidate accounts without archiving them")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		logger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	repos := portsrepo.RepositoryProvider{
		AccountRepo:     pgsqlrepo.NewAccountRepository(dbPool),
		ClientRepo:      pgsqlrepo.NewClientRepository(dbPool),
		TransactionRepo: pgsqlrepo.NewTransactionRepository(dbPool),
		UserRepo:        pgsqlrepo.NewUserRepository(dbPool),
	}

	container := services.NewServiceContainer(cfg, repos, notification.NewLogSink())

	result, err := container.Account.ArchiveExpiredBlocked(ctx, *dryRun)
	if err != nil {
		logger.Error("Archival sweep failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *dryRun {
		fmt.Printf("dry run: %d account(s) would be archived\n", len(result.AccountIDs))
	} else {
		fmt.Printf("archived %d account(s)\n", len(result.AccountIDs))
	}
	for _, id := range result.AccountIDs {
		fmt.Println(id)
	}
}
