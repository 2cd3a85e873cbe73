package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sunubank/bankapi/internal/apperrors"
	"github.com/sunubank/bankapi/internal/core/domain"
	portsrepo "github.com/sunubank/bankapi/internal/core/ports/repositories"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
)

type clientService struct {
	BaseService
	clientRepo portsrepo.ClientRepository
}

// NewClientService creates a new client service.
func NewClientService(clientRepo portsrepo.ClientRepository) portssvc.ClientReaderSvc {
	return &clientService{clientRepo: clientRepo}
}

var _ portssvc.ClientReaderSvc = (*clientService)(nil)

// GetClientByID retrieves a client by its unique identifier.
func (s *clientService) GetClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to get client", slog.String("client_id", clientID))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// FindByCallerIdentity resolves the client record matching the caller's email.
func (s *clientService) FindByCallerIdentity(ctx context.Context, caller domain.Caller) (*domain.Client, error) {
	if caller.Email == "" {
		return nil, apperrors.ErrNotFound
	}
	client, err := s.clientRepo.FindClientByEmail(ctx, caller.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to resolve caller's client record", slog.String("user_id", caller.UserID))
		return nil, fmt.Errorf("failed to resolve caller's client record: %w", err)
	}
	return client, nil
}
