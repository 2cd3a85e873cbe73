package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sunubank/bankapi/internal/core/domain"
)

// ClientPayload identifies the holder when opening an account. If no client
// matches the email or phone, a new client plus a login user are created.
type ClientPayload struct {
	Name    string `json:"name" binding:"required,max=255"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required,intlphone"`
	Address string `json:"address" binding:"required,max=500"`
}

// CreateAccountRequest defines the data needed to open a new account.
// The account number is generated server-side and never supplied by callers.
type CreateAccountRequest struct {
	AccountType    domain.AccountType `json:"type" binding:"required,oneof=checking savings business"`
	InitialBalance decimal.Decimal    `json:"balance" binding:"required"`
	Currency       string             `json:"currency" binding:"required,len=3,uppercase"`
	Client         ClientPayload      `json:"client" binding:"required"`
}

// BlockAccountRequest defines the blocking interval. A nil end means the
// block is indefinite.
type BlockAccountRequest struct {
	BlockStart time.Time  `json:"blockStart" binding:"required"`
	BlockEnd   *time.Time `json:"blockEnd"`
	Reason     string     `json:"reason" binding:"required,max=255"`
}

// ClientContactPayload carries optional contact updates for the holder.
type ClientContactPayload struct {
	Phone    *string `json:"phone" binding:"omitempty,intlphone"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,strongpwd"`
}

// UpdateAccountRequest defines the partial update of holder details.
// At least one field must be provided.
type UpdateAccountRequest struct {
	HolderName *string               `json:"holderName" binding:"omitempty,max=255"`
	Contact    *ClientContactPayload `json:"contact"`
}

// IsEmpty reports whether the request carries no field at all.
func (r UpdateAccountRequest) IsEmpty() bool {
	if r.HolderName != nil {
		return false
	}
	return r.Contact == nil || (r.Contact.Phone == nil && r.Contact.Email == nil && r.Contact.Password == nil)
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Page   int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit  int    `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Type   string `form:"type" binding:"omitempty,oneof=checking savings business"`
	Status string `form:"status" binding:"omitempty,oneof=active blocked archived"`
	Search string `form:"search"`
	SortBy string `form:"sort,default=openedAt" binding:"omitempty,oneof=openedAt balance holder"`
	Order  string `form:"order,default=desc" binding:"omitempty,oneof=asc desc"`
}

// AccountResponse defines the data returned for an account. Status is always
// derived at response time, never read from storage.
type AccountResponse struct {
	AccountID   string               `json:"id"`
	Number      string               `json:"number"`
	Holder      string               `json:"holder"`
	AccountType domain.AccountType   `json:"type"`
	Balance     decimal.Decimal      `json:"balance"`
	Currency    string               `json:"currency"`
	OpenedAt    time.Time            `json:"openedAt"`
	Status      domain.AccountStatus `json:"status"`
	BlockStart  *time.Time           `json:"blockStart,omitempty"`
	BlockEnd    *time.Time           `json:"blockEnd,omitempty"`
	BlockReason string               `json:"blockReason,omitempty"`
	ArchivedAt  *time.Time           `json:"archivedAt,omitempty"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Version     int64                `json:"version"`
}

// ToAccountResponse converts a domain.Account to an AccountResponse,
// deriving the status at the given instant.
func ToAccountResponse(acc *domain.Account, holder string, now time.Time) AccountResponse {
	return AccountResponse{
		AccountID:   acc.AccountID,
		Number:      acc.Number,
		Holder:      holder,
		AccountType: acc.AccountType,
		Balance:     acc.Balance,
		Currency:    acc.Currency,
		OpenedAt:    acc.OpenedAt,
		Status:      acc.StatusAt(now),
		BlockStart:  acc.BlockStart,
		BlockEnd:    acc.BlockEnd,
		BlockReason: acc.BlockReason,
		ArchivedAt:  acc.ArchivedAt,
		UpdatedAt:   acc.LastUpdatedAt,
		Version:     acc.Version,
	}
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts   []AccountResponse `json:"accounts"`
	Pagination Pagination        `json:"pagination"`
}

// SweepResponse reports the outcome of an archival sweep run.
type SweepResponse struct {
	DryRun     bool     `json:"dryRun"`
	AccountIDs []string `json:"accountIDs"`
	Count      int      `json:"count"`
}
