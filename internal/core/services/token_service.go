package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/sunubank/bankapi/internal/apperrors"
	"github.com/sunubank/bankapi/internal/core/domain"
	portsrepo "github.com/sunubank/bankapi/internal/core/ports/repositories"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/dto"
	"github.com/sunubank/bankapi/internal/platform/config"
	"github.com/sunubank/bankapi/internal/utils"
)

type tokenService struct {
	BaseService
	cfg      *config.Config
	userSvc  portssvc.UserSvcFacade
	userRepo portsrepo.UserRepository
}

// NewTokenService creates the authentication service. The repository handle
// is for refresh-token state, which stays out of the user facade.
func NewTokenService(cfg *config.Config, userSvc portssvc.UserSvcFacade, userRepo portsrepo.UserRepository) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg, userSvc: userSvc, userRepo: userRepo}
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// issueTokenPair mints an access JWT and rotates the stored refresh token.
// Refresh tokens are opaque "<userID>.<random>" strings stored hashed, so a
// presented token identifies its user without a token table.
func (s *tokenService) issueTokenPair(ctx context.Context, user *domain.User) (*dto.TokenResponse, error) {
	accessToken, err := utils.GenerateJWT(
		user.UserID, user.Email, string(user.Role),
		s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer,
	)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign access token", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	random, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate refresh token")
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshToken := user.UserID + "." + random
	refreshHash := utils.HashRefreshToken(refreshToken)
	expiry := time.Now().Add(s.cfg.RefreshTokenExpiryDuration)

	if err := s.userRepo.UpdateRefreshToken(ctx, user.UserID, &refreshHash, &expiry); err != nil {
		s.LogError(ctx, err, "Failed to store refresh token", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWTExpiryDuration.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *tokenService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userSvc.GetUserByEmail(ctx, req.Login)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "User logged in", slog.String("user_id", user.UserID))
	return pair, nil
}

// Refresh validates a refresh token, rotates it, and issues a fresh pair.
func (s *tokenService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.TokenResponse, error) {
	userID, _, found := strings.Cut(req.RefreshToken, ".")
	if !found || userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.userSvc.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		s.LogError(ctx, err, "Failed to look up user for refresh")
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}
	if user.RefreshTokenHash == "" || user.RefreshTokenExpiry == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if time.Now().After(*user.RefreshTokenExpiry) {
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CompareRefreshTokenHash(req.RefreshToken, user.RefreshTokenHash) {
		return nil, apperrors.ErrUnauthorized
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	s.LogDebug(ctx, "Refresh token rotated", slog.String("user_id", user.UserID))
	return pair, nil
}

// Logout clears the caller's stored refresh token.
func (s *tokenService) Logout(ctx context.Context, caller domain.Caller) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, caller.UserID, nil, nil); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to clear refresh token", slog.String("user_id", caller.UserID))
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	s.LogInfo(ctx, "User logged out", slog.String("user_id", caller.UserID))
	return nil
}

// GoogleSignIn validates a Google ID token and issues a token pair,
// provisioning a client-role user on first sign-in.
func (s *tokenService) GoogleSignIn(ctx context.Context, req dto.GoogleSignInRequest) (*dto.TokenResponse, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, fmt.Errorf("%w: google sign-in is not configured", apperrors.ErrDependency)
	}

	payload, err := idtoken.Validate(ctx, req.IDToken, s.cfg.GoogleClientID)
	if err != nil {
		s.LogDebug(ctx, "Google ID token rejected", slog.String("error", err.Error()))
		return nil, apperrors.ErrUnauthorized
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if verified, _ := payload.Claims["email_verified"].(bool); !verified {
		return nil, apperrors.ErrUnauthorized
	}
	name, _ := payload.Claims["name"].(string)
	if name == "" {
		name = email
	}

	user, err := s.userSvc.GetUserByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		tempPassword, pwErr := utils.GenerateTempPassword()
		if pwErr != nil {
			s.LogError(ctx, pwErr, "Failed to generate password for federated user")
			return nil, fmt.Errorf("failed to generate password: %w", pwErr)
		}
		user, err = s.userSvc.EnsureClientUser(ctx, name, email, tempPassword, systemActor)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve federated user")
		return nil, fmt.Errorf("failed to resolve federated user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "User signed in with Google", slog.String("user_id", user.UserID))
	return pair, nil
}
