package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sunubank/bankapi/internal/core/domain"
)

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	AccountID string
	Type      domain.TransactionType
	Status    domain.TransactionStatus
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// TransactionReader defines read operations for ledger records.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered, paginated page of transactions
	// plus the total number of matches.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, int64, error)

	// ReferenceExists reports whether a transaction reference is already taken.
	ReferenceExists(ctx context.Context, reference string) (bool, error)
}

// TransactionWriter defines write operations for ledger records.
type TransactionWriter interface {
	// SaveTransaction persists a new transaction.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction updates a transaction's status and description.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error
}

// TransactionArchivalSupport is consumed by the account archival cascade.
type TransactionArchivalSupport interface {
	// ArchiveAllForAccountInTx marks every transaction owned by the account
	// as archived at the given instant, within tx. Returns the number of
	// newly archived rows. Already-archived rows are untouched.
	ArchiveAllForAccountInTx(ctx context.Context, tx pgx.Tx, accountID string, at time.Time, userID string) (int64, error)
}

// TransactionRepository combines all transaction repository interfaces.
type TransactionRepository interface {
	TransactionReader
	TransactionWriter
	TransactionArchivalSupport
}
