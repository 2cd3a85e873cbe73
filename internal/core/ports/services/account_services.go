package services

import (
	"context"

	"github.com/sunubank/bankapi/internal/core/domain"
	"github.com/sunubank/bankapi/internal/dto"
)

// AccountWithHolder pairs an account with its holder's display name.
type AccountWithHolder struct {
	Account domain.Account
	Holder  string
}

// AccountPage is one page of an account listing.
type AccountPage struct {
	Accounts []AccountWithHolder
	Total    int64
}

// SweepResult reports which accounts an archival sweep run touched (or, in
// dry-run mode, would touch).
type SweepResult struct {
	DryRun     bool
	AccountIDs []string
}

// AccountReaderSvc defines read operations on accounts.
type AccountReaderSvc interface {
	// GetAccount returns the account if the caller is admin or owns it.
	// Non-owners receive ErrNotFound, never ErrForbidden.
	GetAccount(ctx context.Context, caller domain.Caller, accountID string) (*AccountWithHolder, error)

	// ListAccounts returns the page of accounts visible to the caller.
	ListAccounts(ctx context.Context, caller domain.Caller, params dto.ListAccountsParams) (*AccountPage, error)
}

// AccountWriterSvc defines account creation and holder updates.
type AccountWriterSvc interface {
	// CreateAccount opens a new account for the client in the request,
	// creating the client and its login user when they do not exist yet.
	// Admin only.
	CreateAccount(ctx context.Context, caller domain.Caller, req dto.CreateAccountRequest) (*AccountWithHolder, error)

	// UpdateAccount applies a partial update of the holder's details.
	UpdateAccount(ctx context.Context, caller domain.Caller, accountID string, req dto.UpdateAccountRequest) (*AccountWithHolder, error)
}

// AccountLifecycleSvc defines the lifecycle transitions of an account.
type AccountLifecycleSvc interface {
	// BlockAccount places a block interval on an active account. Admin only.
	BlockAccount(ctx context.Context, caller domain.Caller, accountID string, req dto.BlockAccountRequest) (*AccountWithHolder, error)

	// CloseAccount archives the account and cascades to its transactions.
	// Owner or admin. Archival is terminal and soft; rows are never deleted.
	CloseAccount(ctx context.Context, caller domain.Caller, accountID string) (*AccountWithHolder, error)

	// ArchiveExpiredBlocked archives every non-archived account whose
	// bounded block interval has fully elapsed. With dryRun the candidates
	// are reported without any mutation.
	ArchiveExpiredBlocked(ctx context.Context, dryRun bool) (*SweepResult, error)
}

// AccountSvcFacade combines all account service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountLifecycleSvc
}
