package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/sunubank/bankapi/internal/apperrors"
	"github.com/sunubank/bankapi/internal/core/domain"
)

type txHandle = pgx.Tx

// withAccountLock runs fn with the account's row locked inside a database
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise.
func (s *accountService) withAccountLock(ctx context.Context, accountID string, fn func(ctx context.Context, tx txHandle, account *domain.Account) error) error {
	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin transaction", slog.String("account_id", accountID))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := s.accountRepo.Rollback(ctx, tx); rbErr != nil {
				s.LogError(ctx, rbErr, "Failed to rollback transaction", slog.String("account_id", accountID))
			}
		}
	}()

	account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to lock account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to lock account: %w", err)
	}

	if err := fn(ctx, tx, account); err != nil {
		return err
	}

	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit transaction", slog.String("account_id", accountID))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}
