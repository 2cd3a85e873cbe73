package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sunubank/bankapi/internal/apperrors"
	"github.com/sunubank/bankapi/internal/core/domain"
	portsrepo "github.com/sunubank/bankapi/internal/core/ports/repositories"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/dto"
	"github.com/sunubank/bankapi/internal/utils"
)

// systemActor is recorded as the audit actor for mutations performed by
// background jobs rather than an authenticated caller.
const systemActor = "system"

// maxNumberAttempts bounds the retry loop when a generated account number
// collides with an existing one.
const maxNumberAttempts = 5

type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepository
	clientRepo  portsrepo.ClientRepository
	txnRepo     portsrepo.TransactionRepository
	userSvc     portssvc.UserSvcFacade
	notifier    portssvc.NotificationSink

	minOpeningBalance decimal.Decimal
}

// NewAccountService creates the account lifecycle service.
func NewAccountService(
	accountRepo portsrepo.AccountRepository,
	clientRepo portsrepo.ClientRepository,
	txnRepo portsrepo.TransactionRepository,
	userSvc portssvc.UserSvcFacade,
	notifier portssvc.NotificationSink,
	minOpeningBalance decimal.Decimal,
) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:       accountRepo,
		clientRepo:        clientRepo,
		txnRepo:           txnRepo,
		userSvc:           userSvc,
		notifier:          notifier,
		minOpeningBalance: minOpeningBalance,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// resolveOwnClient maps a non-admin caller to its client record.
func (s *accountService) resolveOwnClient(ctx context.Context, caller domain.Caller) (*domain.Client, error) {
	if caller.Email == "" {
		return nil, apperrors.ErrNotFound
	}
	return s.clientRepo.FindClientByEmail(ctx, caller.Email)
}

// authorizeAccountAccess returns the caller's client record when needed and
// ErrNotFound when the account belongs to someone else. Non-owners are told
// the account does not exist rather than that it is off limits.
func (s *accountService) authorizeAccountAccess(ctx context.Context, caller domain.Caller, account *domain.Account) error {
	if caller.IsAdmin() {
		return nil
	}
	client, err := s.resolveOwnClient(ctx, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to resolve caller's client record: %w", err)
	}
	if client.ClientID != account.ClientID {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *accountService) holderName(ctx context.Context, clientID string) string {
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve holder name", slog.String("client_id", clientID))
		return ""
	}
	return client.Name
}

// CreateAccount opens a new account, creating the holder's client record and
// login user when they do not exist yet. Admin only.
func (s *accountService) CreateAccount(ctx context.Context, caller domain.Caller, req dto.CreateAccountRequest) (*portssvc.AccountWithHolder, error) {
	if err := s.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if req.InitialBalance.LessThan(s.minOpeningBalance) {
		return nil, fmt.Errorf("%w: opening balance must be at least %s", apperrors.ErrValidation, s.minOpeningBalance)
	}

	now := time.Now()

	client, isNewClient, tempPassword, err := s.findOrCreateClient(ctx, caller, req.Client, now)
	if err != nil {
		return nil, err
	}

	account := domain.Account{
		AccountID:   uuid.NewString(),
		AccountType: req.AccountType,
		Balance:     req.InitialBalance,
		Currency:    req.Currency,
		ClientID:    client.ClientID,
		OpenedAt:    now,
		Version:     1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	if err := s.saveWithFreshNumber(ctx, &account, now); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("number", account.Number),
		slog.String("client_id", client.ClientID),
	)

	if isNewClient && tempPassword != "" {
		s.notifier.NotifyClientCredentials(ctx, *client, tempPassword)
		s.notifier.NotifyVerificationCode(ctx, *client, utils.GenerateVerificationCode())
	}
	s.notifier.NotifyAccountCreated(ctx, account, *client)

	return &portssvc.AccountWithHolder{Account: account, Holder: client.Name}, nil
}

// findOrCreateClient resolves the holder by email or phone, creating the
// client record plus its login user on first contact.
func (s *accountService) findOrCreateClient(ctx context.Context, caller domain.Caller, payload dto.ClientPayload, now time.Time) (*domain.Client, bool, string, error) {
	existing, err := s.clientRepo.FindClientByEmailOrPhone(ctx, payload.Email, payload.Phone)
	if err == nil {
		return existing, false, "", nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up client by contact")
		return nil, false, "", fmt.Errorf("failed to look up client: %w", err)
	}

	client := domain.Client{
		ClientID: uuid.NewString(),
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Address:  payload.Address,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}
	if err := s.clientRepo.SaveClient(ctx, client); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, false, "", err
		}
		s.LogError(ctx, err, "Failed to save client", slog.String("client_id", client.ClientID))
		return nil, false, "", fmt.Errorf("failed to save client: %w", err)
	}

	tempPassword, err := utils.GenerateTempPassword()
	if err != nil {
		s.LogError(ctx, err, "Failed to generate temporary password")
		return nil, false, "", fmt.Errorf("failed to generate temporary password: %w", err)
	}
	if _, err := s.userSvc.EnsureClientUser(ctx, client.Name, client.Email, tempPassword, caller.UserID); err != nil {
		s.LogError(ctx, err, "Failed to create login user for client", slog.String("client_id", client.ClientID))
		return nil, false, "", fmt.Errorf("failed to create login user: %w", err)
	}

	s.LogInfo(ctx, "Client created", slog.String("client_id", client.ClientID))
	return &client, true, tempPassword, nil
}

// saveWithFreshNumber assigns a generated account number and persists the
// account, retrying on the rare number collision.
func (s *accountService) saveWithFreshNumber(ctx context.Context, account *domain.Account, now time.Time) error {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := utils.GenerateAccountNumber(now)
		taken, err := s.accountRepo.NumberExists(ctx, number)
		if err != nil {
			s.LogError(ctx, err, "Failed to check account number")
			return fmt.Errorf("failed to check account number: %w", err)
		}
		if taken {
			continue
		}

		account.Number = number
		err = s.accountRepo.SaveAccount(ctx, *account)
		if err == nil {
			return nil
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost the race for this number; try another.
			continue
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID))
		return fmt.Errorf("failed to save account: %w", err)
	}
	return fmt.Errorf("%w: could not allocate a unique account number", apperrors.ErrDependency)
}

// GetAccount returns the account if the caller is admin or owns it.
func (s *accountService) GetAccount(ctx context.Context, caller domain.Caller, accountID string) (*portssvc.AccountWithHolder, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if err := s.authorizeAccountAccess(ctx, caller, account); err != nil {
		return nil, err
	}
	return &portssvc.AccountWithHolder{Account: *account, Holder: s.holderName(ctx, account.ClientID)}, nil
}

// ListAccounts returns the page of accounts visible to the caller. Non-admin
// callers only ever see accounts held by their own client record.
func (s *accountService) ListAccounts(ctx context.Context, caller domain.Caller, params dto.ListAccountsParams) (*portssvc.AccountPage, error) {
	filter := portsrepo.AccountFilter{
		Type:   domain.AccountType(params.Type),
		Status: domain.AccountStatus(params.Status),
		Search: params.Search,
		SortBy: params.SortBy,
		Order:  params.Order,
		Limit:  params.Limit,
		Offset: (params.Page - 1) * params.Limit,
		Now:    time.Now(),
	}

	if !caller.IsAdmin() {
		client, err := s.resolveOwnClient(ctx, caller)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return &portssvc.AccountPage{Accounts: []portssvc.AccountWithHolder{}}, nil
			}
			s.LogError(ctx, err, "Failed to resolve caller's client record")
			return nil, fmt.Errorf("failed to resolve caller's client record: %w", err)
		}
		filter.ClientID = client.ClientID
	}

	accounts, total, err := s.accountRepo.ListAccounts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	clientIDs := make([]string, 0, len(accounts))
	seen := map[string]bool{}
	for _, acc := range accounts {
		if !seen[acc.ClientID] {
			seen[acc.ClientID] = true
			clientIDs = append(clientIDs, acc.ClientID)
		}
	}
	clients, err := s.clientRepo.FindClientsByIDs(ctx, clientIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve holders for account page")
		return nil, fmt.Errorf("failed to resolve holders: %w", err)
	}

	page := &portssvc.AccountPage{Total: total, Accounts: make([]portssvc.AccountWithHolder, len(accounts))}
	for i, acc := range accounts {
		page.Accounts[i] = portssvc.AccountWithHolder{Account: acc, Holder: clients[acc.ClientID].Name}
	}
	return page, nil
}

// UpdateAccount applies a partial update of the holder's details.
func (s *accountService) UpdateAccount(ctx context.Context, caller domain.Caller, accountID string, req dto.UpdateAccountRequest) (*portssvc.AccountWithHolder, error) {
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to get account for update", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if err := s.authorizeAccountAccess(ctx, caller, account); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindClientByID(ctx, account.ClientID)
	if err != nil {
		s.LogError(ctx, err, "Failed to get holder for update", slog.String("client_id", account.ClientID))
		return nil, fmt.Errorf("failed to get holder: %w", err)
	}

	previousEmail := client.Email
	if req.HolderName != nil {
		client.Name = *req.HolderName
	}
	if req.Contact != nil {
		if req.Contact.Phone != nil {
			client.Phone = *req.Contact.Phone
		}
		if req.Contact.Email != nil {
			client.Email = *req.Contact.Email
		}
	}
	client.LastUpdatedAt = time.Now()
	client.LastUpdatedBy = caller.UserID

	if err := s.clientRepo.UpdateClient(ctx, *client); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update holder", slog.String("client_id", client.ClientID))
		return nil, fmt.Errorf("failed to update holder: %w", err)
	}

	s.syncLoginUser(ctx, caller, previousEmail, client, req)

	s.LogInfo(ctx, "Account holder updated", slog.String("account_id", accountID))
	return &portssvc.AccountWithHolder{Account: *account, Holder: client.Name}, nil
}

// syncLoginUser propagates holder updates to the backing login user. Missing
// users are tolerated; the client record is already updated.
func (s *accountService) syncLoginUser(ctx context.Context, caller domain.Caller, previousEmail string, client *domain.Client, req dto.UpdateAccountRequest) {
	if req.HolderName == nil && (req.Contact == nil || req.Contact.Password == nil) {
		return
	}

	user, err := s.userSvc.GetUserByEmail(ctx, previousEmail)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to look up login user for holder", slog.String("client_id", client.ClientID))
		}
		return
	}

	update := dto.UpdateUserRequest{}
	if req.HolderName != nil {
		update.Name = req.HolderName
	}
	if req.Contact != nil && req.Contact.Password != nil {
		update.Password = req.Contact.Password
	}
	if _, err := s.userSvc.UpdateUser(ctx, user.UserID, update, caller.UserID); err != nil {
		s.LogError(ctx, err, "Failed to sync login user", slog.String("user_id", user.UserID))
	}
}

// BlockAccount places a block interval on an active account. Admin only.
func (s *accountService) BlockAccount(ctx context.Context, caller domain.Caller, accountID string, req dto.BlockAccountRequest) (*portssvc.AccountWithHolder, error) {
	if err := s.RequireAdmin(caller); err != nil {
		return nil, err
	}

	now := time.Now()
	if req.BlockStart.Before(now.Add(-time.Minute)) {
		return nil, fmt.Errorf("%w: block start must not be in the past", apperrors.ErrInvalidRange)
	}
	if req.BlockEnd != nil && !req.BlockEnd.After(req.BlockStart) {
		return nil, fmt.Errorf("%w: block end must be after block start", apperrors.ErrInvalidRange)
	}

	var updated *domain.Account
	err := s.withAccountLock(ctx, accountID, func(ctx context.Context, tx txHandle, account *domain.Account) error {
		if account.Archived {
			return apperrors.ErrAlreadyArchived
		}
		if account.IsBlockedAt(now) {
			return apperrors.ErrAlreadyBlocked
		}

		account.BlockStart = &req.BlockStart
		account.BlockEnd = req.BlockEnd
		account.BlockReason = req.Reason
		account.LastUpdatedAt = now
		account.LastUpdatedBy = caller.UserID

		if err := s.accountRepo.UpdateLifecycleInTx(ctx, tx, *account); err != nil {
			return err
		}
		account.Version++
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Account blocked",
		slog.String("account_id", accountID),
		slog.Time("block_start", req.BlockStart),
		slog.String("reason", req.Reason),
	)
	s.notifier.NotifyAccountBlocked(ctx, *updated, req.Reason)

	return &portssvc.AccountWithHolder{Account: *updated, Holder: s.holderName(ctx, updated.ClientID)}, nil
}

// CloseAccount archives the account and cascades archival to its
// transactions. Owner or admin. Archival is terminal and soft.
func (s *accountService) CloseAccount(ctx context.Context, caller domain.Caller, accountID string) (*portssvc.AccountWithHolder, error) {
	// Ownership is checked outside the lock; the cheap read keeps lock hold
	// time short and non-owners get the same ErrNotFound as a missing row.
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to get account for closing", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if err := s.authorizeAccountAccess(ctx, caller, account); err != nil {
		return nil, err
	}

	now := time.Now()
	var updated *domain.Account
	var archivedTxns int64
	err = s.withAccountLock(ctx, accountID, func(ctx context.Context, tx txHandle, account *domain.Account) error {
		if account.Archived {
			return apperrors.ErrAlreadyArchived
		}
		return s.archiveInTx(ctx, tx, account, now, caller.UserID, &archivedTxns, &updated)
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Account closed",
		slog.String("account_id", accountID),
		slog.Int64("archived_transactions", archivedTxns),
	)
	s.notifier.NotifyAccountArchived(ctx, *updated)

	return &portssvc.AccountWithHolder{Account: *updated, Holder: s.holderName(ctx, updated.ClientID)}, nil
}

// ArchiveExpiredBlocked archives every non-archived account whose bounded
// block interval has fully elapsed. Each account is processed in its own
// transaction so one failure never rolls back the rest of the sweep.
func (s *accountService) ArchiveExpiredBlocked(ctx context.Context, dryRun bool) (*portssvc.SweepResult, error) {
	now := time.Now()
	candidates, err := s.accountRepo.FindExpiredBlocked(ctx, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to find expired blocked accounts")
		return nil, fmt.Errorf("failed to find expired blocked accounts: %w", err)
	}

	result := &portssvc.SweepResult{DryRun: dryRun, AccountIDs: []string{}}
	if dryRun {
		for _, acc := range candidates {
			result.AccountIDs = append(result.AccountIDs, acc.AccountID)
		}
		s.LogInfo(ctx, "Archival sweep dry run", slog.Int("candidates", len(result.AccountIDs)))
		return result, nil
	}

	for _, candidate := range candidates {
		var updated *domain.Account
		var archivedTxns int64
		err := s.withAccountLock(ctx, candidate.AccountID, func(ctx context.Context, tx txHandle, account *domain.Account) error {
			// Re-check under the lock; the account may have been archived or
			// re-blocked since the candidate scan.
			if !account.BlockExpiredAt(now) {
				return apperrors.ErrConflict
			}
			return s.archiveInTx(ctx, tx, account, now, systemActor, &archivedTxns, &updated)
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrNotFound) {
				s.LogDebug(ctx, "Sweep candidate skipped", slog.String("account_id", candidate.AccountID))
				continue
			}
			s.LogError(ctx, err, "Failed to archive expired blocked account", slog.String("account_id", candidate.AccountID))
			continue
		}

		result.AccountIDs = append(result.AccountIDs, candidate.AccountID)
		s.LogInfo(ctx, "Expired blocked account archived",
			slog.String("account_id", candidate.AccountID),
			slog.String("number", updated.Number),
			slog.Int64("archived_transactions", archivedTxns),
		)
		s.notifier.NotifyAccountArchived(ctx, *updated)
	}

	s.LogInfo(ctx, "Archival sweep finished",
		slog.Int("candidates", len(candidates)),
		slog.Int("archived", len(result.AccountIDs)),
	)
	return result, nil
}

// archiveInTx flips the account to archived and cascades to its transactions
// within the already-open transaction.
func (s *accountService) archiveInTx(ctx context.Context, tx txHandle, account *domain.Account, now time.Time, actor string, archivedTxns *int64, updated **domain.Account) error {
	account.Archived = true
	account.ArchivedAt = &now
	account.LastUpdatedAt = now
	account.LastUpdatedBy = actor

	if err := s.accountRepo.UpdateLifecycleInTx(ctx, tx, *account); err != nil {
		return err
	}
	count, err := s.txnRepo.ArchiveAllForAccountInTx(ctx, tx, account.AccountID, now, actor)
	if err != nil {
		return err
	}
	account.Version++
	*archivedTxns = count
	*updated = account
	return nil
}
