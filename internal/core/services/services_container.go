package services

import (
	portsrepo "github.com/sunubank/bankapi/internal/core/ports/repositories"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/platform/config"
)

// NewServiceContainer wires the repositories and the notification sink into
// the full service set the HTTP layer and jobs run on.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.NotificationSink) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{Notifier: notifier}

	container.Client = NewClientService(repos.ClientRepo)
	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg, container.User, repos.UserRepo)

	container.Account = NewAccountService(
		repos.AccountRepo,
		repos.ClientRepo,
		repos.TransactionRepo,
		container.User,
		notifier,
		cfg.MinOpeningBalance,
	)
	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		repos.AccountRepo,
		repos.ClientRepo,
	)

	return container
}
