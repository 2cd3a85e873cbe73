package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the persistence shape of a ledger record. The archived pair
// mirrors the owning account's and is only written by the archival cascade.
type Transaction struct {
	TransactionID        string          `db:"transaction_id"`
	Reference            string          `db:"reference"`
	Type                 string          `db:"type"`
	Amount               decimal.Decimal `db:"amount"`
	Currency             string          `db:"currency"`
	Description          *string         `db:"description"`
	Status               string          `db:"status"`
	AccountID            string          `db:"account_id"`
	DestinationAccountID *string         `db:"destination_account_id"`
	OccurredAt           time.Time       `db:"occurred_at"`
	Archived             bool            `db:"archived"`
	ArchivedAt           *time.Time      `db:"archived_at"`
	AuditFields
}
