package services

import (
	"context"

	"github.com/sunubank/bankapi/internal/core/domain"
	"github.com/sunubank/bankapi/internal/dto"
)

// TransactionPage is one page of a transaction listing.
type TransactionPage struct {
	Transactions []domain.Transaction
	Total        int64
}

// TransactionSvcFacade defines ledger operations. Records are append-only:
// updates touch status and description, cancellation is a status change, and
// archival happens only through the owning account's cascade.
type TransactionSvcFacade interface {
	// CreateTransaction records a transaction on an active account and
	// touches the account's last-transaction timestamp.
	CreateTransaction(ctx context.Context, caller domain.Caller, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// GetTransaction returns the transaction if visible to the caller.
	GetTransaction(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns the page of transactions visible to the caller.
	ListTransactions(ctx context.Context, caller domain.Caller, params dto.ListTransactionsParams) (*TransactionPage, error)

	// UpdateTransaction updates a transaction's status or description.
	UpdateTransaction(ctx context.Context, caller domain.Caller, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error)

	// CancelTransaction marks a transaction cancelled. Admin only.
	CancelTransaction(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error)
}
