package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sunubank/bankapi/internal/core/domain"
)

// CreateTransactionRequest defines the data needed to record a transaction.
type CreateTransactionRequest struct {
	Type                 domain.TransactionType `json:"type" binding:"required,oneof=deposit withdrawal transfer_in transfer_out payment"`
	Amount               decimal.Decimal        `json:"amount" binding:"required"`
	Currency             string                 `json:"currency" binding:"required,len=3,uppercase"`
	Description          string                 `json:"description" binding:"max=500"`
	AccountID            string                 `json:"accountID" binding:"required,uuid"`
	DestinationAccountID *string                `json:"destinationAccountID" binding:"omitempty,uuid"`
}

// UpdateTransactionRequest defines the mutable fields of a transaction.
type UpdateTransactionRequest struct {
	Status      *domain.TransactionStatus `json:"status" binding:"omitempty,oneof=completed pending cancelled"`
	Description *string                   `json:"description" binding:"omitempty,max=500"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Page      int        `form:"page,default=1" binding:"omitempty,min=1"`
	Limit     int        `form:"limit,default=15" binding:"omitempty,min=1,max=100"`
	AccountID string     `form:"accountID" binding:"omitempty,uuid"`
	Type      string     `form:"type" binding:"omitempty,oneof=deposit withdrawal transfer_in transfer_out payment"`
	Status    string     `form:"status" binding:"omitempty,oneof=completed pending cancelled"`
	From      *time.Time `form:"from" time_format:"2006-01-02" binding:"omitempty"`
	To        *time.Time `form:"to" time_format:"2006-01-02" binding:"omitempty"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID        string                   `json:"id"`
	Reference            string                   `json:"reference"`
	Type                 domain.TransactionType   `json:"type"`
	Amount               decimal.Decimal          `json:"amount"`
	Currency             string                   `json:"currency"`
	Description          string                   `json:"description,omitempty"`
	Status               domain.TransactionStatus `json:"status"`
	AccountID            string                   `json:"accountID"`
	DestinationAccountID string                   `json:"destinationAccountID,omitempty"`
	OccurredAt           time.Time                `json:"occurredAt"`
	Archived             bool                     `json:"archived"`
	ArchivedAt           *time.Time               `json:"archivedAt,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to its response shape.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:        txn.TransactionID,
		Reference:            txn.Reference,
		Type:                 txn.Type,
		Amount:               txn.Amount,
		Currency:             txn.Currency,
		Description:          txn.Description,
		Status:               txn.Status,
		AccountID:            txn.AccountID,
		DestinationAccountID: txn.DestinationAccountID,
		OccurredAt:           txn.OccurredAt,
		Archived:             txn.Archived,
		ArchivedAt:           txn.ArchivedAt,
	}
}

// ToListTransactionsResponse converts a slice of domain transactions.
func ToListTransactionsResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   Pagination            `json:"pagination"`
}
