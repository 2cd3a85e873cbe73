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

type PgxAccountRepository struct {
	BaseRepository
}

// NewAccountRepository creates a new repository for account data.
func NewAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, number, account_type, balance, currency, client_id, opened_at, last_transaction_at, block_start, block_end, block_reason, archived, archived_at, version, created_at, created_by, last_updated_at, last_updated_by`

// Helper to convert domain.Account to models.Account for DB storage.
func toModelAccount(d domain.Account) models.Account {
	var reason *string
	if d.BlockReason != "" {
		reason = &d.BlockReason
	}
	return models.Account{
		AccountID:         d.AccountID,
		Number:            d.Number,
		AccountType:       string(d.AccountType),
		Balance:           d.Balance,
		Currency:          d.Currency,
		ClientID:          d.ClientID,
		OpenedAt:          d.OpenedAt,
		LastTransactionAt: d.LastTransactionAt,
		BlockStart:        d.BlockStart,
		BlockEnd:          d.BlockEnd,
		BlockReason:       reason,
		Archived:          d.Archived,
		ArchivedAt:        d.ArchivedAt,
		Version:           d.Version,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// Helper to convert models.Account from DB to domain.Account.
func toDomainAccount(m models.Account) domain.Account {
	reason := ""
	if m.BlockReason != nil {
		reason = *m.BlockReason
	}
	return domain.Account{
		AccountID:         m.AccountID,
		Number:            m.Number,
		AccountType:       domain.AccountType(m.AccountType),
		Balance:           m.Balance,
		Currency:          m.Currency,
		ClientID:          m.ClientID,
		OpenedAt:          m.OpenedAt,
		LastTransactionAt: m.LastTransactionAt,
		BlockStart:        m.BlockStart,
		BlockEnd:          m.BlockEnd,
		BlockReason:       reason,
		Archived:          m.Archived,
		ArchivedAt:        m.ArchivedAt,
		Version:           m.Version,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Number,
		&m.AccountType,
		&m.Balance,
		&m.Currency,
		&m.ClientID,
		&m.OpenedAt,
		&m.LastTransactionAt,
		&m.BlockStart,
		&m.BlockEnd,
		&m.BlockReason,
		&m.Archived,
		&m.ArchivedAt,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account row: %w", err)
	}
	acc := toDomainAccount(m)
	return &acc, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Number,
		m.AccountType,
		m.Balance,
		m.Currency,
		m.ClientID,
		m.OpenedAt,
		m.LastTransactionAt,
		m.BlockStart,
		m.BlockEnd,
		m.BlockReason,
		m.Archived,
		m.ArchivedAt,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account number %s already exists", apperrors.ErrDuplicate, m.Number)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return acc, nil
}

// NumberExists reports whether an account number is already taken.
func (r *PgxAccountRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE number = $1);`, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account number %s: %w", number, err)
	}
	return exists, nil
}

// ListAccounts retrieves a filtered, paginated page of accounts plus the
// total match count. The status filter reproduces, in SQL, the exact
// predicate domain.Account.StatusAt evaluates in memory.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter portsrepo.AccountFilter) ([]domain.Account, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}

	where := []string{"TRUE"}
	args := []any{}

	arg := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if filter.ClientID != "" {
		where = append(where, fmt.Sprintf("a.client_id = $%d", arg(filter.ClientID)))
	}
	if filter.Type != "" {
		where = append(where, fmt.Sprintf("a.account_type = $%d", arg(string(filter.Type))))
	}
	switch filter.Status {
	case domain.StatusArchived:
		where = append(where, "a.archived = TRUE")
	case domain.StatusBlocked:
		n := arg(now)
		where = append(where, "a.archived = FALSE", fmt.Sprintf(`a.block_start IS NOT NULL AND a.block_start <= $%[1]d AND (a.block_end IS NULL OR a.block_end > $%[1]d)`, n))
	case domain.StatusActive:
		n := arg(now)
		where = append(where, "a.archived = FALSE", fmt.Sprintf(`NOT (a.block_start IS NOT NULL AND a.block_start <= $%[1]d AND (a.block_end IS NULL OR a.block_end > $%[1]d))`, n))
	}
	if filter.Search != "" {
		n := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf(`(a.number ILIKE $%[1]d OR c.name ILIKE $%[1]d OR c.email ILIKE $%[1]d)`, n))
	}

	whereSQL := ""
	for i, w := range where {
		if i == 0 {
			whereSQL = "WHERE " + w
		} else {
			whereSQL += " AND " + w
		}
	}

	orderCol := "a.opened_at"
	switch filter.SortBy {
	case "balance":
		orderCol = "a.balance"
	case "holder":
		orderCol = "c.name"
	}
	direction := "DESC"
	if filter.Order == "asc" {
		direction = "ASC"
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM accounts a
		JOIN clients c ON c.client_id = a.client_id
		%s;`, whereSQL)

	var total int64
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	limitPos := arg(filter.Limit)
	offsetPos := arg(filter.Offset)
	listQuery := fmt.Sprintf(`
		SELECT a.account_id, a.number, a.account_type, a.balance, a.currency, a.client_id, a.opened_at, a.last_transaction_at, a.block_start, a.block_end, a.block_reason, a.archived, a.archived_at, a.version, a.created_at, a.created_by, a.last_updated_at, a.last_updated_by
		FROM accounts a
		JOIN clients c ON c.client_id = a.client_id
		%s
		ORDER BY %s %s, a.account_id
		LIMIT $%d OFFSET $%d;`, whereSQL, orderCol, direction, limitPos, offsetPos)

	rows, err := r.Pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, *acc)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("error iterating account rows: %w", rows.Err())
	}

	return accounts, total, nil
}

// FindExpiredBlocked returns non-archived accounts whose bounded block
// interval ended before now. The block_end index keeps this scan cheap.
func (r *PgxAccountRepository) FindExpiredBlocked(ctx context.Context, now time.Time) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE block_end IS NOT NULL AND block_end < $1 AND archived = FALSE
		ORDER BY block_end;
	`
	rows, err := r.Pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired blocked accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating expired blocked rows: %w", rows.Err())
	}
	return accounts, nil
}

// TouchLastTransaction records the time a transaction last touched the account.
func (r *PgxAccountRepository) TouchLastTransaction(ctx context.Context, accountID string, at time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, `UPDATE accounts SET last_transaction_at = $2 WHERE account_id = $1;`, accountID, at)
	if err != nil {
		return fmt.Errorf("failed to touch last transaction for account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountByIDForUpdate selects an account and locks its row for update.
// Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`
	acc, err := scanAccount(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	return acc, nil
}

// UpdateLifecycleInTx writes the blocking interval and archive flags within
// tx, guarded by the version the caller read under the row lock. The stored
// version is bumped; a stale version reports ErrConflict.
func (r *PgxAccountRepository) UpdateLifecycleInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	m := toModelAccount(account)

	query := `
		UPDATE accounts
		SET block_start = $2, block_end = $3, block_reason = $4, archived = $5, archived_at = $6,
		    version = version + 1, last_updated_at = $7, last_updated_by = $8
		WHERE account_id = $1 AND version = $9;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.AccountID,
		m.BlockStart,
		m.BlockEnd,
		m.BlockReason,
		m.Archived,
		m.ArchivedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update lifecycle of account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Row exists (caller holds the lock), so the version moved under us.
		return fmt.Errorf("%w: account %s version %d is stale", apperrors.ErrConflict, m.AccountID, m.Version)
	}
	return nil
}
