package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType defines the product type of a bank account.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeBusiness AccountType = "business"
)

// AccountStatus is the derived lifecycle state of an account. It is never
// persisted; storage only holds the raw interval and flags, and StatusAt
// recomputes the status from them on every read.
type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusBlocked  AccountStatus = "blocked"
	StatusArchived AccountStatus = "archived"
)

// Account represents a client's bank account.
//
// Blocking is an interval predicate over wall-clock time: BlockStart/BlockEnd
// define when the account counts as blocked, and a nil BlockEnd means the
// block is indefinite. Archived is the terminal marker; once set, no further
// transition is permitted.
type Account struct {
	AccountID         string          `json:"accountID"`
	Number            string          `json:"number"` // unique, generated, never reassigned
	AccountType       AccountType     `json:"accountType"`
	Balance           decimal.Decimal `json:"balance"`
	Currency          string          `json:"currency"` // ISO 4217 code
	ClientID          string          `json:"clientID"`
	OpenedAt          time.Time       `json:"openedAt"`
	LastTransactionAt *time.Time      `json:"lastTransactionAt,omitempty"`
	BlockStart        *time.Time      `json:"blockStart,omitempty"`
	BlockEnd          *time.Time      `json:"blockEnd,omitempty"` // nil while BlockStart is set = indefinite
	BlockReason       string          `json:"blockReason,omitempty"`
	Archived          bool            `json:"archived"`
	ArchivedAt        *time.Time      `json:"archivedAt,omitempty"`
	Version           int64           `json:"version"` // checked on every mutating update
	AuditFields
}

// IsBlockedAt reports whether a block is in effect at the given instant:
// BlockStart <= now and (BlockEnd is nil or BlockEnd > now).
func (a *Account) IsBlockedAt(now time.Time) bool {
	if a.BlockStart == nil || a.BlockStart.After(now) {
		return false
	}
	return a.BlockEnd == nil || a.BlockEnd.After(now)
}

// StatusAt derives the lifecycle status of the account at the given instant.
// Archived wins over everything; otherwise the blocking interval decides.
// Every read path (get, list, status filters) must agree with this function.
func (a *Account) StatusAt(now time.Time) AccountStatus {
	if a.Archived {
		return StatusArchived
	}
	if a.IsBlockedAt(now) {
		return StatusBlocked
	}
	return StatusActive
}

// BlockExpiredAt reports whether the account carried a time-bounded block
// whose end has passed. Such accounts are retired by the archival sweep
// rather than silently reactivated.
func (a *Account) BlockExpiredAt(now time.Time) bool {
	return a.BlockEnd != nil && a.BlockEnd.Before(now) && !a.Archived
}
