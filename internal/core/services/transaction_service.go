package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sunubank/bankapi/internal/apperrors"
	"github.com/sunubank/bankapi/internal/core/domain"
	portsrepo "github.com/sunubank/bankapi/internal/core/ports/repositories"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/dto"
	"github.com/sunubank/bankapi/internal/utils"
)

// maxReferenceAttempts bounds the retry loop when a generated transaction
// reference collides with an existing one.
const maxReferenceAttempts = 5

type transactionService struct {
	BaseService
	txnRepo     portsrepo.TransactionRepository
	accountRepo portsrepo.AccountRepository
	clientRepo  portsrepo.ClientRepository
}

// NewTransactionService creates the ledger service.
func NewTransactionService(
	txnRepo portsrepo.TransactionRepository,
	accountRepo portsrepo.AccountRepository,
	clientRepo portsrepo.ClientRepository,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		clientRepo:  clientRepo,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// visibleAccount loads the account and applies the owner-or-admin rule,
// reporting ErrNotFound for accounts the caller must not learn about.
func (s *transactionService) visibleAccount(ctx context.Context, caller domain.Caller, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if caller.IsAdmin() {
		return account, nil
	}

	if caller.Email == "" {
		return nil, apperrors.ErrNotFound
	}
	client, err := s.clientRepo.FindClientByEmail(ctx, caller.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve caller's client record: %w", err)
	}
	if client.ClientID != account.ClientID {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

// CreateTransaction records a transaction on an active account.
func (s *transactionService) CreateTransaction(ctx context.Context, caller domain.Caller, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	account, err := s.visibleAccount(ctx, caller, req.AccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to resolve account for transaction", slog.String("account_id", req.AccountID))
		return nil, err
	}

	now := time.Now()
	if status := account.StatusAt(now); status != domain.StatusActive {
		return nil, fmt.Errorf("%w: account is %s", apperrors.ErrValidation, status)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if req.Currency != account.Currency {
		return nil, fmt.Errorf("%w: transaction currency must match account currency %s", apperrors.ErrValidation, account.Currency)
	}

	isTransfer := req.Type == domain.TxnTransferIn || req.Type == domain.TxnTransferOut
	if isTransfer && req.DestinationAccountID == nil {
		return nil, fmt.Errorf("%w: transfers require a destination account", apperrors.ErrValidation)
	}
	if !isTransfer && req.DestinationAccountID != nil {
		return nil, fmt.Errorf("%w: only transfers carry a destination account", apperrors.ErrValidation)
	}

	destination := ""
	if req.DestinationAccountID != nil {
		if *req.DestinationAccountID == account.AccountID {
			return nil, fmt.Errorf("%w: destination must differ from the source account", apperrors.ErrValidation)
		}
		dest, err := s.accountRepo.FindAccountByID(ctx, *req.DestinationAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: destination account not found", apperrors.ErrValidation)
			}
			s.LogError(ctx, err, "Failed to resolve destination account")
			return nil, fmt.Errorf("failed to resolve destination account: %w", err)
		}
		if dest.StatusAt(now) != domain.StatusActive {
			return nil, fmt.Errorf("%w: destination account is not active", apperrors.ErrValidation)
		}
		destination = dest.AccountID
	}

	txn := domain.Transaction{
		TransactionID:        uuid.NewString(),
		Type:                 req.Type,
		Amount:               req.Amount,
		Currency:             req.Currency,
		Description:          req.Description,
		Status:               domain.TxnCompleted,
		AccountID:            account.AccountID,
		DestinationAccountID: destination,
		OccurredAt:           now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	if err := s.saveWithFreshReference(ctx, &txn, now); err != nil {
		return nil, err
	}

	if err := s.accountRepo.TouchLastTransaction(ctx, account.AccountID, now); err != nil {
		// The record is saved; a stale activity timestamp is tolerable.
		s.LogError(ctx, err, "Failed to touch last transaction timestamp", slog.String("account_id", account.AccountID))
	}

	s.LogInfo(ctx, "Transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("reference", txn.Reference),
		slog.String("type", string(txn.Type)),
	)
	return &txn, nil
}

func (s *transactionService) saveWithFreshReference(ctx context.Context, txn *domain.Transaction, now time.Time) error {
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		reference := utils.GenerateTransactionReference(now)
		taken, err := s.txnRepo.ReferenceExists(ctx, reference)
		if err != nil {
			s.LogError(ctx, err, "Failed to check transaction reference")
			return fmt.Errorf("failed to check transaction reference: %w", err)
		}
		if taken {
			continue
		}

		txn.Reference = reference
		err = s.txnRepo.SaveTransaction(ctx, *txn)
		if err == nil {
			return nil
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			continue
		}
		s.LogError(ctx, err, "Failed to save transaction", slog.String("transaction_id", txn.TransactionID))
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return fmt.Errorf("%w: could not allocate a unique transaction reference", apperrors.ErrDependency)
}

// GetTransaction returns the transaction if visible to the caller.
func (s *transactionService) GetTransaction(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to get transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if _, err := s.visibleAccount(ctx, caller, txn.AccountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to authorize transaction access", slog.String("transaction_id", transactionID))
		return nil, err
	}
	return txn, nil
}

// ListTransactions returns the page of transactions visible to the caller.
func (s *transactionService) ListTransactions(ctx context.Context, caller domain.Caller, params dto.ListTransactionsParams) (*portssvc.TransactionPage, error) {
	filter := portsrepo.TransactionFilter{
		AccountID: params.AccountID,
		Type:      domain.TransactionType(params.Type),
		Status:    domain.TransactionStatus(params.Status),
		From:      params.From,
		To:        params.To,
		Limit:     params.Limit,
		Offset:    (params.Page - 1) * params.Limit,
	}

	if params.AccountID != "" {
		// Scoped listing: the account must be visible to the caller.
		if _, err := s.visibleAccount(ctx, caller, params.AccountID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrNotFound
			}
			s.LogError(ctx, err, "Failed to authorize transaction listing")
			return nil, err
		}
	} else if !caller.IsAdmin() {
		// Unscoped listing is admin only; clients list per account.
		return nil, apperrors.ErrForbidden
	}

	txns, total, err := s.txnRepo.ListTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &portssvc.TransactionPage{Transactions: txns, Total: total}, nil
}

// UpdateTransaction updates a transaction's status or description. Admin only.
func (s *transactionService) UpdateTransaction(ctx context.Context, caller domain.Caller, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	if err := s.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if req.Status == nil && req.Description == nil {
		return nil, fmt.Errorf("%w: no fields to update", apperrors.ErrValidation)
	}

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to find transaction for update", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	if txn.Archived {
		return nil, fmt.Errorf("%w: transaction is archived", apperrors.ErrAlreadyArchived)
	}

	if req.Status != nil {
		txn.Status = *req.Status
	}
	if req.Description != nil {
		txn.Description = *req.Description
	}
	txn.LastUpdatedAt = time.Now()
	txn.LastUpdatedBy = caller.UserID

	if err := s.txnRepo.UpdateTransaction(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction updated", slog.String("transaction_id", transactionID))
	return txn, nil
}

// CancelTransaction marks a transaction cancelled. Admin only.
func (s *transactionService) CancelTransaction(ctx context.Context, caller domain.Caller, transactionID string) (*domain.Transaction, error) {
	cancelled := domain.TxnCancelled
	return s.UpdateTransaction(ctx, caller, transactionID, dto.UpdateTransactionRequest{Status: &cancelled})
}
