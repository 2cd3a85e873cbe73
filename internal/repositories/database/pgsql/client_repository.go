package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sunubank/bankapi/internal/apperrors"
	"github.com/sunubank/bankapi/internal/core/domain"
	portsrepo "github.com/sunubank/bankapi/internal/core/ports/repositories"
	"github.com/sunubank/bankapi/internal/models"
)

type PgxClientRepository struct {
	BaseRepository
}

// NewClientRepository creates a new repository for client data.
func NewClientRepository(pool *pgxpool.Pool) portsrepo.ClientRepository {
	return &PgxClientRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ClientRepository = (*PgxClientRepository)(nil)

const clientColumns = `client_id, name, email, phone, address, is_active, created_at, created_by, last_updated_at, last_updated_by`

func toDomainClient(m models.Client) domain.Client {
	return domain.Client{
		ClientID:    m.ClientID,
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		Address:     m.Address,
		IsActive:    m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var m models.Client
	err := row.Scan(
		&m.ClientID,
		&m.Name,
		&m.Email,
		&m.Phone,
		&m.Address,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan client row: %w", err)
	}
	c := toDomainClient(m)
	return &c, nil
}

// SaveClient persists a new client.
func (r *PgxClientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		client.ClientID,
		client.Name,
		client.Email,
		client.Phone,
		client.Address,
		client.IsActive,
		client.CreatedAt,
		client.CreatedBy,
		client.LastUpdatedAt,
		client.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: client contact already registered", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save client %s: %w", client.ClientID, err)
	}
	return nil
}

// UpdateClient updates a client's contact details.
func (r *PgxClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3, phone = $4, address = $5, is_active = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE client_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		client.ClientID,
		client.Name,
		client.Email,
		client.Phone,
		client.Address,
		client.IsActive,
		client.LastUpdatedAt,
		client.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: client contact already registered", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to update client %s: %w", client.ClientID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindClientByID retrieves a client by its ID.
func (r *PgxClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = $1;`
	c, err := scanClient(r.Pool.QueryRow(ctx, query, clientID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client by ID %s: %w", clientID, err)
	}
	return c, nil
}

// FindClientByEmail retrieves a client by email.
func (r *PgxClientRepository) FindClientByEmail(ctx context.Context, email string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE email = $1;`
	c, err := scanClient(r.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client by email: %w", err)
	}
	return c, nil
}

// FindClientByEmailOrPhone retrieves a client matching either contact field.
func (r *PgxClientRepository) FindClientByEmailOrPhone(ctx context.Context, email, phone string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE email = $1 OR phone = $2 LIMIT 1;`
	c, err := scanClient(r.Pool.QueryRow(ctx, query, email, phone))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client by contact: %w", err)
	}
	return c, nil
}

// FindClientsByIDs retrieves clients for the given IDs in one round trip.
func (r *PgxClientRepository) FindClientsByIDs(ctx context.Context, clientIDs []string) (map[string]domain.Client, error) {
	result := make(map[string]domain.Client, len(clientIDs))
	if len(clientIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, clientIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		result[c.ClientID] = *c
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating client rows: %w", rows.Err())
	}
	return result, nil
}
