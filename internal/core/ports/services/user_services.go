package services

import (
	"context"

	"github.com/sunubank/bankapi/internal/core/domain"
	"github.com/sunubank/bankapi/internal/dto"
)

// UserSvcFacade defines operations on login identities.
type UserSvcFacade interface {
	// CreateUser creates a login identity. Admin only via the HTTP surface.
	CreateUser(ctx context.Context, req dto.CreateUserRequest, createdBy string) (*domain.User, error)

	// GetUserByID retrieves a user by its unique identifier.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail retrieves a user by its unique email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListUsers retrieves a paginated list of users.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	// UpdateUser applies a partial update to a user.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updatedBy string) (*domain.User, error)

	// DeactivateUser marks a user inactive so it can no longer log in.
	DeactivateUser(ctx context.Context, userID string, updatedBy string) error

	// EnsureClientUser creates (or returns) the login user backing a client
	// record, used when opening an account for a brand-new client.
	EnsureClientUser(ctx context.Context, name, email, password, createdBy string) (*domain.User, error)
}
