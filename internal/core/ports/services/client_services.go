package services

import (
	"context"

	"github.com/sunubank/bankapi/internal/core/domain"
)

// ClientReaderSvc resolves client records, including the caller-identity
// lookup that scopes non-admin access to accounts.
type ClientReaderSvc interface {
	// GetClientByID retrieves a client by its unique identifier.
	GetClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// FindByCallerIdentity resolves the client record matching the caller's
	// email, or ErrNotFound when the caller has no client record.
	FindByCallerIdentity(ctx context.Context, caller domain.Caller) (*domain.Client, error)
}
