package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/sunubank/bankapi/internal/apperrors"
	"github.com/sunubank/bankapi/internal/core/domain"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/core/services"
	"github.com/sunubank/bankapi/internal/dto"
	"github.com/sunubank/bankapi/internal/platform/config"
	"github.com/sunubank/bankapi/internal/utils"
)

type TokenServiceTestSuite struct {
	suite.Suite
	userRepo *MockUserRepository
	svc      portssvc.TokenSvcFacade
	cfg      *config.Config
}

func (s *TokenServiceTestSuite) SetupTest() {
	s.userRepo = &MockUserRepository{}
	s.cfg = &config.Config{
		JWTSecret:                  "unit-test-secret-key",
		JWTExpiryDuration:          time.Hour,
		JWTIssuer:                  "bank-account-api",
		RefreshTokenExpiryDuration: 24 * time.Hour,
	}
	userSvc := services.NewUserService(s.userRepo)
	s.svc = services.NewTokenService(s.cfg, userSvc, s.userRepo)
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

func (s *TokenServiceTestSuite) activeUser(password string) *domain.User {
	hash, err := utils.HashPassword(password)
	s.Require().NoError(err)
	return &domain.User{
		UserID:       uuid.NewString(),
		Name:         "Aissatou Ndiaye",
		Email:        "aissatou@bank.test",
		PasswordHash: hash,
		Role:         domain.RoleClient,
		IsActive:     true,
	}
}

func (s *TokenServiceTestSuite) TestLogin_IssuesValidTokenPair() {
	user := s.activeUser("Correct-horse-99!!")
	s.userRepo.FindUserByEmailFn = func(_ context.Context, _ string) (*domain.User, error) {
		return user, nil
	}
	var storedHash *string
	s.userRepo.UpdateRefreshTokenFn = func(_ context.Context, _ string, tokenHash *string, _ *time.Time) error {
		storedHash = tokenHash
		return nil
	}

	pair, err := s.svc.Login(context.Background(), dto.LoginRequest{Login: user.Email, Password: "Correct-horse-99!!"})
	s.Require().NoError(err)

	assert.Equal(s.T(), "Bearer", pair.TokenType)
	assert.Equal(s.T(), int64(3600), pair.ExpiresIn)

	claims, err := utils.ParseAndValidateJWT(pair.AccessToken, s.cfg.JWTSecret)
	s.Require().NoError(err)
	assert.Equal(s.T(), user.UserID, claims.Subject)
	assert.Equal(s.T(), string(domain.RoleClient), claims.Role)

	assert.True(s.T(), strings.HasPrefix(pair.RefreshToken, user.UserID+"."))
	s.Require().NotNil(storedHash)
	assert.True(s.T(), utils.CompareRefreshTokenHash(pair.RefreshToken, *storedHash))
}

func (s *TokenServiceTestSuite) TestLogin_WrongPasswordUnauthorized() {
	user := s.activeUser("Correct-horse-99!!")
	s.userRepo.FindUserByEmailFn = func(_ context.Context, _ string) (*domain.User, error) {
		return user, nil
	}

	_, err := s.svc.Login(context.Background(), dto.LoginRequest{Login: user.Email, Password: "Wrong-horse-99!!"})
	assert.ErrorIs(s.T(), err, apperrors.ErrUnauthorized)
}

func (s *TokenServiceTestSuite) TestLogin_UnknownUserUnauthorized() {
	s.userRepo.FindUserByEmailFn = func(_ context.Context, _ string) (*domain.User, error) {
		return nil, apperrors.ErrNotFound
	}

	_, err := s.svc.Login(context.Background(), dto.LoginRequest{Login: "nobody@bank.test", Password: "whatever"})
	assert.ErrorIs(s.T(), err, apperrors.ErrUnauthorized)
}

func (s *TokenServiceTestSuite) TestLogin_InactiveUserUnauthorized() {
	user := s.activeUser("Correct-horse-99!!")
	user.IsActive = false
	s.userRepo.FindUserByEmailFn = func(_ context.Context, _ string) (*domain.User, error) {
		return user, nil
	}

	_, err := s.svc.Login(context.Background(), dto.LoginRequest{Login: user.Email, Password: "Correct-horse-99!!"})
	assert.ErrorIs(s.T(), err, apperrors.ErrUnauthorized)
}

func (s *TokenServiceTestSuite) TestRefresh_RotatesToken() {
	user := s.activeUser("Correct-horse-99!!")
	raw := user.UserID + ".deadbeefcafe"
	hash := utils.HashRefreshToken(raw)
	expiry := time.Now().Add(time.Hour)
	user.RefreshTokenHash = hash
	user.RefreshTokenExpiry = &expiry

	s.userRepo.FindUserByIDFn = func(_ context.Context, _ string) (*domain.User, error) {
		return user, nil
	}
	var rotatedHash *string
	s.userRepo.UpdateRefreshTokenFn = func(_ context.Context, _ string, tokenHash *string, _ *time.Time) error {
		rotatedHash = tokenHash
		return nil
	}

	pair, err := s.svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: raw})
	s.Require().NoError(err)

	assert.NotEqual(s.T(), raw, pair.RefreshToken)
	s.Require().NotNil(rotatedHash)
	assert.NotEqual(s.T(), hash, *rotatedHash, "refresh token must be rotated")
}

func (s *TokenServiceTestSuite) TestRefresh_ExpiredTokenUnauthorized() {
	user := s.activeUser("Correct-horse-99!!")
	raw := user.UserID + ".deadbeefcafe"
	expiry := time.Now().Add(-time.Minute)
	user.RefreshTokenHash = utils.HashRefreshToken(raw)
	user.RefreshTokenExpiry = &expiry

	s.userRepo.FindUserByIDFn = func(_ context.Context, _ string) (*domain.User, error) {
		return user, nil
	}

	_, err := s.svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: raw})
	assert.ErrorIs(s.T(), err, apperrors.ErrUnauthorized)
}

func (s *TokenServiceTestSuite) TestRefresh_MalformedTokenUnauthorized() {
	_, err := s.svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: "not-a-composite-token"})
	assert.ErrorIs(s.T(), err, apperrors.ErrUnauthorized)
}

func (s *TokenServiceTestSuite) TestLogout_ClearsStoredToken() {
	sentinel := "sentinel"
	clearedHash := &sentinel
	clearedExpiry := &time.Time{}
	s.userRepo.UpdateRefreshTokenFn = func(_ context.Context, _ string, tokenHash *string, expiry *time.Time) error {
		clearedHash = tokenHash
		clearedExpiry = expiry
		return nil
	}

	err := s.svc.Logout(context.Background(), domain.Caller{UserID: uuid.NewString()})
	s.Require().NoError(err)
	assert.Nil(s.T(), clearedHash)
	assert.Nil(s.T(), clearedExpiry)
}
