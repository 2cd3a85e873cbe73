package services

import (
	"context"

	"github.com/sunubank/bankapi/internal/core/domain"
	"github.com/sunubank/bankapi/internal/dto"
)

// TokenSvcFacade issues and validates the bearer tokens the API runs on.
// Access tokens are short-lived JWTs carrying the caller's role; refresh
// tokens are opaque random strings stored hashed.
type TokenSvcFacade interface {
	// Login verifies credentials and issues an access/refresh token pair.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)

	// Refresh validates a refresh token and issues a fresh pair; the old
	// refresh token is rotated out.
	Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.TokenResponse, error)

	// Logout clears the caller's stored refresh token.
	Logout(ctx context.Context, caller domain.Caller) error

	// GoogleSignIn validates a Google ID token and issues a token pair for
	// the matching user.
	GoogleSignIn(ctx context.Context, req dto.GoogleSignInRequest) (*dto.TokenResponse, error)
}
