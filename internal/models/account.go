package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the persistence shape of a bank account. Lifecycle status is
// never stored; only the raw blocking interval and archive flags are.
type Account struct {
	AccountID         string          `db:"account_id"`
	Number            string          `db:"number"`
	AccountType       string          `db:"account_type"`
	Balance           decimal.Decimal `db:"balance"`
	Currency          string          `db:"currency"`
	ClientID          string          `db:"client_id"`
	OpenedAt          time.Time       `db:"opened_at"`
	LastTransactionAt *time.Time      `db:"last_transaction_at"`
	BlockStart        *time.Time      `db:"block_start"`
	BlockEnd          *time.Time      `db:"block_end"`
	BlockReason       *string         `db:"block_reason"`
	Archived          bool            `db:"archived"`
	ArchivedAt        *time.Time      `db:"archived_at"`
	Version           int64           `db:"version"`
	AuditFields
}
