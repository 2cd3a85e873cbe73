package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sunubank/bankapi/internal/core/domain"
)

// AccountFilter narrows and orders an account listing. Status filtering is
// evaluated against the same interval predicate the domain uses in memory,
// at the instant given by Now.
type AccountFilter struct {
	ClientID string // restrict to one owning client ("" = all, admin only)
	Type     domain.AccountType
	Status   domain.AccountStatus
	Search   string // matches account number or holder name/email
	SortBy   string // openedAt | balance | holder
	Order    string // asc | desc
	Limit    int
	Offset   int
	Now      time.Time
}

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a filtered, paginated page of accounts plus the
	// total number of matches.
	ListAccounts(ctx context.Context, filter AccountFilter) ([]domain.Account, int64, error)

	// NumberExists reports whether an account number is already taken.
	NumberExists(ctx context.Context, number string) (bool, error)

	// FindExpiredBlocked returns the non-archived accounts whose bounded
	// block interval ended before now. Used by the archival sweep.
	FindExpiredBlocked(ctx context.Context, now time.Time) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// TouchLastTransaction records the time a transaction last touched the account.
	TouchLastTransaction(ctx context.Context, accountID string, at time.Time) error
}

// AccountLifecycleSupport defines the row-locked operations that lifecycle
// transitions run inside a database transaction.
type AccountLifecycleSupport interface {
	// FindAccountByIDForUpdate selects an account and locks its row within tx.
	FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)

	// UpdateLifecycleInTx writes the blocking interval and archive flags of
	// the given account within tx, guarded by the account's version. The
	// stored version is bumped; a stale version yields ErrConflict.
	UpdateLifecycleInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error
}

// AccountRepository combines all account repository interfaces.
type AccountRepository interface {
	AccountReader
	AccountWriter
	AccountLifecycleSupport
	TransactionManager
}
