package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sunubank/bankapi/internal/apperrors"
	"github.com/sunubank/bankapi/internal/core/domain"
	portsrepo "github.com/sunubank/bankapi/internal/core/ports/repositories"
	"github.com/sunubank/bankapi/internal/models"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// NewTransactionRepository creates a new repository for ledger records.
func NewTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, reference, type, amount, currency, description, status, account_id, destination_account_id, occurred_at, archived, archived_at, created_at, created_by, last_updated_at, last_updated_by`

func toModelTransaction(d domain.Transaction) models.Transaction {
	var description, destination *string
	if d.Description != "" {
		description = &d.Description
	}
	if d.DestinationAccountID != "" {
		destination = &d.DestinationAccountID
	}
	return models.Transaction{
		TransactionID:        d.TransactionID,
		Reference:            d.Reference,
		Type:                 string(d.Type),
		Amount:               d.Amount,
		Currency:             d.Currency,
		Description:          description,
		Status:               string(d.Status),
		AccountID:            d.AccountID,
		DestinationAccountID: destination,
		OccurredAt:           d.OccurredAt,
		Archived:             d.Archived,
		ArchivedAt:           d.ArchivedAt,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainTransaction(m models.Transaction) domain.Transaction {
	description := ""
	if m.Description != nil {
		description = *m.Description
	}
	destination := ""
	if m.DestinationAccountID != nil {
		destination = *m.DestinationAccountID
	}
	return domain.Transaction{
		TransactionID:        m.TransactionID,
		Reference:            m.Reference,
		Type:                 domain.TransactionType(m.Type),
		Amount:               m.Amount,
		Currency:             m.Currency,
		Description:          description,
		Status:               domain.TransactionStatus(m.Status),
		AccountID:            m.AccountID,
		DestinationAccountID: destination,
		OccurredAt:           m.OccurredAt,
		Archived:             m.Archived,
		ArchivedAt:           m.ArchivedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Reference,
		&m.Type,
		&m.Amount,
		&m.Currency,
		&m.Description,
		&m.Status,
		&m.AccountID,
		&m.DestinationAccountID,
		&m.OccurredAt,
		&m.Archived,
		&m.ArchivedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction row: %w", err)
	}
	t := toDomainTransaction(m)
	return &t, nil
}

// SaveTransaction persists a new ledger record.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := toModelTransaction(txn)

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.TransactionID,
		m.Reference,
		m.Type,
		m.Amount,
		m.Currency,
		m.Description,
		m.Status,
		m.AccountID,
		m.DestinationAccountID,
		m.OccurredAt,
		m.Archived,
		m.ArchivedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction reference %s already exists", apperrors.ErrDuplicate, m.Reference)
		}
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// UpdateTransaction updates a transaction's status and description.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	m := toModelTransaction(txn)

	query := `
		UPDATE transactions
		SET status = $2, description = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.TransactionID,
		m.Status,
		m.Description,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	t, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return t, nil
}

// ReferenceExists reports whether a transaction reference is already taken.
func (r *PgxTransactionRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE reference = $1);`, reference).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction reference %s: %w", reference, err)
	}
	return exists, nil
}

// ListTransactions retrieves a filtered, paginated page of transactions plus
// the total match count, newest first.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.Transaction, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	where := "WHERE TRUE"
	args := []any{}

	arg := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if filter.AccountID != "" {
		n := arg(filter.AccountID)
		where += fmt.Sprintf(" AND (account_id = $%[1]d OR destination_account_id = $%[1]d)", n)
	}
	if filter.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", arg(string(filter.Type)))
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", arg(string(filter.Status)))
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND occurred_at >= $%d", arg(*filter.From))
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND occurred_at <= $%d", arg(*filter.To))
	}

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM transactions %s;`, where)
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	limitPos := arg(filter.Limit)
	offsetPos := arg(filter.Offset)
	listQuery := fmt.Sprintf(`
		SELECT `+transactionColumns+`
		FROM transactions
		%s
		ORDER BY occurred_at DESC, transaction_id
		LIMIT $%d OFFSET $%d;`, where, limitPos, offsetPos)

	rows, err := r.Pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, *t)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}

	return transactions, total, nil
}

// ArchiveAllForAccountInTx archives every live transaction owned by the
// account, within tx. Rows already archived keep their original timestamp.
func (r *PgxTransactionRepository) ArchiveAllForAccountInTx(ctx context.Context, tx pgx.Tx, accountID string, at time.Time, userID string) (int64, error) {
	query := `
		UPDATE transactions
		SET archived = TRUE, archived_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND archived = FALSE;
	`
	cmdTag, err := tx.Exec(ctx, query, accountID, at, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to archive transactions for account %s: %w", accountID, err)
	}
	return cmdTag.RowsAffected(), nil
}
