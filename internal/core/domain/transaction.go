package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies the direction and nature of a transaction.
type TransactionType string

const (
	TxnDeposit     TransactionType = "deposit"
	TxnWithdrawal  TransactionType = "withdrawal"
	TxnTransferIn  TransactionType = "transfer_in"
	TxnTransferOut TransactionType = "transfer_out"
	TxnPayment     TransactionType = "payment"
)

// TransactionStatus is the processing state of a transaction.
type TransactionStatus string

const (
	TxnCompleted TransactionStatus = "completed"
	TxnPending   TransactionStatus = "pending"
	TxnCancelled TransactionStatus = "cancelled"
)

// Transaction is an append-only ledger record tied to exactly one owning
// account and, for transfers, one destination account. Transactions are
// mutated only by status updates and by the owning account's archival
// cascade, which sets Archived/ArchivedAt in lockstep with the account.
type Transaction struct {
	TransactionID        string            `json:"transactionID"`
	Reference            string            `json:"reference"` // unique, generated
	Type                 TransactionType   `json:"type"`
	Amount               decimal.Decimal   `json:"amount"`
	Currency             string            `json:"currency"`
	Description          string            `json:"description,omitempty"`
	Status               TransactionStatus `json:"status"`
	AccountID            string            `json:"accountID"`
	DestinationAccountID string            `json:"destinationAccountID,omitempty"`
	OccurredAt           time.Time         `json:"occurredAt"`
	Archived             bool              `json:"archived"`
	ArchivedAt           *time.Time        `json:"archivedAt,omitempty"`
	AuditFields
}

// IsCredit reports whether the transaction increases the account balance.
func (t *Transaction) IsCredit() bool {
	return t.Type == TxnDeposit || t.Type == TxnTransferIn
}
