package repositories

import (
	"context"

	"github.com/sunubank/bankapi/internal/core/domain"
)

// ClientReader defines read operations for client data.
type ClientReader interface {
	// FindClientByID retrieves a client by its unique identifier.
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// FindClientByEmail retrieves a client by its unique email.
	FindClientByEmail(ctx context.Context, email string) (*domain.Client, error)

	// FindClientByEmailOrPhone retrieves a client matching either contact field.
	FindClientByEmailOrPhone(ctx context.Context, email, phone string) (*domain.Client, error)

	// FindClientsByIDs retrieves clients for the given IDs, keyed by ID.
	// Missing IDs are simply absent from the result map.
	FindClientsByIDs(ctx context.Context, clientIDs []string) (map[string]domain.Client, error)
}

// ClientWriter defines write operations for client data.
type ClientWriter interface {
	// SaveClient persists a new client.
	SaveClient(ctx context.Context, client domain.Client) error

	// UpdateClient updates an existing client's contact details.
	UpdateClient(ctx context.Context, client domain.Client) error
}

// ClientRepository combines all client repository interfaces.
type ClientRepository interface {
	ClientReader
	ClientWriter
}
