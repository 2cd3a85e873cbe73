package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/sunubank/bankapi/internal/apperrors"
	"github.com/sunubank/bankapi/internal/core/domain"
	portsrepo "github.com/sunubank/bankapi/internal/core/ports/repositories"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/core/services"
	"github.com/sunubank/bankapi/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	accountRepo *MockAccountRepository
	clientRepo  *MockClientRepository
	txnRepo     *MockTransactionRepository
	userRepo    *MockUserRepository
	notifier    *MockNotificationSink
	svc         portssvc.AccountSvcFacade

	admin  domain.Caller
	client domain.Caller
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.accountRepo = &MockAccountRepository{}
	s.clientRepo = &MockClientRepository{}
	s.txnRepo = &MockTransactionRepository{}
	s.userRepo = &MockUserRepository{}
	s.notifier = &MockNotificationSink{}

	userSvc := services.NewUserService(s.userRepo)
	s.svc = services.NewAccountService(
		s.accountRepo, s.clientRepo, s.txnRepo, userSvc, s.notifier,
		decimal.NewFromInt(10000),
	)

	s.admin = domain.Caller{UserID: uuid.NewString(), Email: "admin@bank.test", Role: domain.RoleAdmin}
	s.client = domain.Caller{UserID: uuid.NewString(), Email: "aissatou@bank.test", Role: domain.RoleClient}
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) validCreateRequest() dto.CreateAccountRequest {
	return dto.CreateAccountRequest{
		AccountType:    domain.AccountTypeChecking,
		InitialBalance: decimal.NewFromInt(50000),
		Currency:       "XOF",
		Client: dto.ClientPayload{
			Name:    "Aissatou Ndiaye",
			Email:   "aissatou@bank.test",
			Phone:   "+221771234567",
			Address: "12 Rue Carnot, Dakar",
		},
	}
}

func activeAccount(clientID string) *domain.Account {
	now := time.Now()
	return &domain.Account{
		AccountID:   uuid.NewString(),
		Number:      "ACC2026123456",
		AccountType: domain.AccountTypeChecking,
		Balance:     decimal.NewFromInt(75000),
		Currency:    "XOF",
		ClientID:    clientID,
		OpenedAt:    now.Add(-30 * 24 * time.Hour),
		Version:     1,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
}

// --- CreateAccount ---

func (s *AccountServiceTestSuite) TestCreateAccount_RequiresAdmin() {
	_, err := s.svc.CreateAccount(context.Background(), s.client, s.validCreateRequest())
	assert.ErrorIs(s.T(), err, apperrors.ErrForbidden)
}

func (s *AccountServiceTestSuite) TestCreateAccount_RejectsLowOpeningBalance() {
	req := s.validCreateRequest()
	req.InitialBalance = decimal.NewFromInt(9999)

	_, err := s.svc.CreateAccount(context.Background(), s.admin, req)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestCreateAccount_NewClientGetsCredentials() {
	var savedClient *domain.Client
	var savedUser *domain.User
	var savedAccount *domain.Account

	s.clientRepo.FindClientByEmailOrPhoneFn = func(_ context.Context, _, _ string) (*domain.Client, error) {
		return nil, apperrors.ErrNotFound
	}
	s.clientRepo.SaveClientFn = func(_ context.Context, c domain.Client) error {
		savedClient = &c
		return nil
	}
	s.userRepo.FindUserByEmailFn = func(_ context.Context, _ string) (*domain.User, error) {
		return nil, apperrors.ErrNotFound
	}
	s.userRepo.SaveUserFn = func(_ context.Context, u domain.User) error {
		savedUser = &u
		return nil
	}
	s.accountRepo.NumberExistsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	s.accountRepo.SaveAccountFn = func(_ context.Context, a domain.Account) error {
		savedAccount = &a
		return nil
	}

	result, err := s.svc.CreateAccount(context.Background(), s.admin, s.validCreateRequest())
	s.Require().NoError(err)

	s.Require().NotNil(savedClient)
	assert.Equal(s.T(), "Aissatou Ndiaye", savedClient.Name)
	assert.Equal(s.T(), "Aissatou Ndiaye", result.Holder)

	s.Require().NotNil(savedUser)
	assert.Equal(s.T(), domain.RoleClient, savedUser.Role)
	assert.Equal(s.T(), "aissatou@bank.test", savedUser.Email)

	s.Require().NotNil(savedAccount)
	assert.True(s.T(), strings.HasPrefix(savedAccount.Number, "ACC"))
	assert.Equal(s.T(), savedClient.ClientID, savedAccount.ClientID)
	assert.Equal(s.T(), int64(1), savedAccount.Version)
	assert.Equal(s.T(), domain.StatusActive, savedAccount.StatusAt(time.Now()))

	assert.Len(s.T(), s.notifier.CredentialCalls, 1)
	assert.Len(s.T(), s.notifier.CreatedCalls, 1)
	assert.GreaterOrEqual(s.T(), len(s.notifier.LastTempPassword), 10)
}

func (s *AccountServiceTestSuite) TestCreateAccount_ReusesExistingClient() {
	existing := &domain.Client{ClientID: uuid.NewString(), Name: "Moussa Fall", Email: "moussa@bank.test"}
	s.clientRepo.FindClientByEmailOrPhoneFn = func(_ context.Context, _, _ string) (*domain.Client, error) {
		return existing, nil
	}
	s.accountRepo.NumberExistsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	s.accountRepo.SaveAccountFn = func(_ context.Context, _ domain.Account) error { return nil }

	result, err := s.svc.CreateAccount(context.Background(), s.admin, s.validCreateRequest())
	s.Require().NoError(err)

	assert.Equal(s.T(), existing.ClientID, result.Account.ClientID)
	assert.Empty(s.T(), s.notifier.CredentialCalls, "existing clients keep their credentials")
	assert.Len(s.T(), s.notifier.CreatedCalls, 1)
}

func (s *AccountServiceTestSuite) TestCreateAccount_RetriesOnNumberCollision() {
	calls := 0
	s.clientRepo.FindClientByEmailOrPhoneFn = func(_ context.Context, _, _ string) (*domain.Client, error) {
		return &domain.Client{ClientID: uuid.NewString(), Name: "Moussa Fall"}, nil
	}
	s.accountRepo.NumberExistsFn = func(_ context.Context, _ string) (bool, error) {
		calls++
		return calls <= 2, nil
	}
	s.accountRepo.SaveAccountFn = func(_ context.Context, _ domain.Account) error { return nil }

	_, err := s.svc.CreateAccount(context.Background(), s.admin, s.validCreateRequest())
	s.Require().NoError(err)
	assert.Equal(s.T(), 3, calls)
}

// --- GetAccount ---

func (s *AccountServiceTestSuite) TestGetAccount_HidesOtherOwnersAccounts() {
	other := activeAccount(uuid.NewString())
	s.accountRepo.FindAccountByIDFn = func(_ context.Context, _ string) (*domain.Account, error) {
		return other, nil
	}
	s.clientRepo.FindClientByEmailFn = func(_ context.Context, _ string) (*domain.Client, error) {
		return &domain.Client{ClientID: uuid.NewString()}, nil
	}

	_, err := s.svc.GetAccount(context.Background(), s.client, other.AccountID)
	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound, "non-owners must not learn the account exists")
}

func (s *AccountServiceTestSuite) TestGetAccount_OwnerSeesOwnAccount() {
	clientID := uuid.NewString()
	acc := activeAccount(clientID)
	s.accountRepo.FindAccountByIDFn = func(_ context.Context, _ string) (*domain.Account, error) {
		return acc, nil
	}
	s.clientRepo.FindClientByEmailFn = func(_ context.Context, _ string) (*domain.Client, error) {
		return &domain.Client{ClientID: clientID, Name: "Aissatou Ndiaye"}, nil
	}
	s.clientRepo.FindClientByIDFn = func(_ context.Context, _ string) (*domain.Client, error) {
		return &domain.Client{ClientID: clientID, Name: "Aissatou Ndiaye"}, nil
	}

	result, err := s.svc.GetAccount(context.Background(), s.client, acc.AccountID)
	s.Require().NoError(err)
	assert.Equal(s.T(), acc.AccountID, result.Account.AccountID)
	assert.Equal(s.T(), "Aissatou Ndiaye", result.Holder)
}

// --- ListAccounts ---

func (s *AccountServiceTestSuite) TestListAccounts_ScopesClientsToOwnAccounts() {
	clientID := uuid.NewString()
	var gotClientID string
	s.clientRepo.FindClientByEmailFn = func(_ context.Context, _ string) (*domain.Client, error) {
		return &domain.Client{ClientID: clientID, Name: "Aissatou Ndiaye"}, nil
	}
	s.accountRepo.ListAccountsFn = func(_ context.Context, filter portsrepo.AccountFilter) ([]domain.Account, int64, error) {
		gotClientID = filter.ClientID
		return []domain.Account{*activeAccount(clientID)}, 1, nil
	}
	s.clientRepo.FindClientsByIDsFn = func(_ context.Context, ids []string) (map[string]domain.Client, error) {
		return map[string]domain.Client{clientID: {ClientID: clientID, Name: "Aissatou Ndiaye"}}, nil
	}

	page, err := s.svc.ListAccounts(context.Background(), s.client, dto.ListAccountsParams{Page: 1, Limit: 10})
	s.Require().NoError(err)
	assert.Equal(s.T(), clientID, gotClientID)
	assert.Equal(s.T(), int64(1), page.Total)
	assert.Equal(s.T(), "Aissatou Ndiaye", page.Accounts[0].Holder)
}

func (s *AccountServiceTestSuite) TestListAccounts_ClientWithoutRecordSeesEmptyPage() {
	s.clientRepo.FindClientByEmailFn = func(_ context.Context, _ string) (*domain.Client, error) {
		return nil, apperrors.ErrNotFound
	}

	page, err := s.svc.ListAccounts(context.Background(), s.client, dto.ListAccountsParams{Page: 1, Limit: 10})
	s.Require().NoError(err)
	assert.Empty(s.T(), page.Accounts)
	assert.Zero(s.T(), page.Total)
}

// --- BlockAccount ---

func (s *AccountServiceTestSuite) blockRequest(start time.Time, end *time.Time) dto.BlockAccountRequest {
	return dto.BlockAccountRequest{BlockStart: start, BlockEnd: end, Reason: "suspicious activity"}
}

func (s *AccountServiceTestSuite) TestBlockAccount_RequiresAdmin() {
	_, err := s.svc.BlockAccount(context.Background(), s.client, uuid.NewString(), s.blockRequest(time.Now(), nil))
	assert.ErrorIs(s.T(), err, apperrors.ErrForbidden)
}

func (s *AccountServiceTestSuite) TestBlockAccount_RejectsEndBeforeStart() {
	start := time.Now().Add(time.Hour)
	end := start.Add(-time.Minute)
	_, err := s.svc.BlockAccount(context.Background(), s.admin, uuid.NewString(), s.blockRequest(start, &end))
	assert.ErrorIs(s.T(), err, apperrors.ErrInvalidRange)
}

func (s *AccountServiceTestSuite) TestBlockAccount_RejectsStartInPast() {
	start := time.Now().Add(-2 * time.Hour)
	_, err := s.svc.BlockAccount(context.Background(), s.admin, uuid.NewString(), s.blockRequest(start, nil))
	assert.ErrorIs(s.T(), err, apperrors.ErrInvalidRange)
}

func (s *AccountServiceTestSuite) TestBlockAccount_RejectsAlreadyBlocked() {
	acc := activeAccount(uuid.NewString())
	blockStart := time.Now().Add(-time.Hour)
	acc.BlockStart = &blockStart

	s.accountRepo.FindForUpdateFn = func(_ context.Context, _ pgx.Tx, _ string) (*domain.Account, error) {
		return acc, nil
	}

	_, err := s.svc.BlockAccount(context.Background(), s.admin, acc.AccountID, s.blockRequest(time.Now().Add(time.Minute), nil))
	assert.ErrorIs(s.T(), err, apperrors.ErrAlreadyBlocked)
	assert.Zero(s.T(), s.accountRepo.CommitCount)
	assert.Equal(s.T(), 1, s.accountRepo.RollbackCnt)
}

func (s *AccountServiceTestSuite) TestBlockAccount_RejectsArchivedAccount() {
	acc := activeAccount(uuid.NewString())
	acc.Archived = true

	s.accountRepo.FindForUpdateFn = func(_ context.Context, _ pgx.Tx, _ string) (*domain.Account, error) {
		return acc, nil
	}

	_, err := s.svc.BlockAccount(context.Background(), s.admin, acc.AccountID, s.blockRequest(time.Now().Add(time.Minute), nil))
	assert.ErrorIs(s.T(), err, apperrors.ErrAlreadyArchived)
}

func (s *AccountServiceTestSuite) TestBlockAccount_WritesIntervalAndNotifies() {
	acc := activeAccount(uuid.NewString())
	var written *domain.Account

	s.accountRepo.FindForUpdateFn = func(_ context.Context, _ pgx.Tx, _ string) (*domain.Account, error) {
		return acc, nil
	}
	s.accountRepo.UpdateLifecycleInTxFn = func(_ context.Context, _ pgx.Tx, a domain.Account) error {
		written = &a
		return nil
	}
	s.clientRepo.FindClientByIDFn = func(_ context.Context, _ string) (*domain.Client, error) {
		return &domain.Client{ClientID: acc.ClientID, Name: "Moussa Fall"}, nil
	}

	start := time.Now().Add(time.Minute)
	end := start.Add(48 * time.Hour)
	result, err := s.svc.BlockAccount(context.Background(), s.admin, acc.AccountID, s.blockRequest(start, &end))
	s.Require().NoError(err)

	s.Require().NotNil(written)
	assert.Equal(s.T(), start, *written.BlockStart)
	assert.Equal(s.T(), end, *written.BlockEnd)
	assert.Equal(s.T(), "suspicious activity", written.BlockReason)
	assert.False(s.T(), written.Archived)

	assert.Equal(s.T(), 1, s.accountRepo.CommitCount)
	assert.Equal(s.T(), int64(2), result.Account.Version)
	assert.Equal(s.T(), domain.StatusBlocked, result.Account.StatusAt(start.Add(time.Hour)))
	assert.Len(s.T(), s.notifier.BlockedCalls, 1)
}

// --- CloseAccount ---

func (s *AccountServiceTestSuite) TestCloseAccount_ArchivesAndCascades() {
	acc := activeAccount(uuid.NewString())
	var written *domain.Account
	var cascadedAccount string

	s.accountRepo.FindAccountByIDFn = func(_ context.Context, _ string) (*domain.Account, error) {
		return acc, nil
	}
	s.accountRepo.FindForUpdateFn = func(_ context.Context, _ pgx.Tx, _ string) (*domain.Account, error) {
		return acc, nil
	}
	s.accountRepo.UpdateLifecycleInTxFn = func(_ context.Context, _ pgx.Tx, a domain.Account) error {
		written = &a
		return nil
	}
	s.txnRepo.ArchiveAllForAccountInTxF = func(_ context.Context, _ pgx.Tx, accountID string, _ time.Time, _ string) (int64, error) {
		cascadedAccount = accountID
		return 4, nil
	}
	s.clientRepo.FindClientByIDFn = func(_ context.Context, _ string) (*domain.Client, error) {
		return &domain.Client{ClientID: acc.ClientID, Name: "Moussa Fall"}, nil
	}

	result, err := s.svc.CloseAccount(context.Background(), s.admin, acc.AccountID)
	s.Require().NoError(err)

	s.Require().NotNil(written)
	assert.True(s.T(), written.Archived)
	assert.NotNil(s.T(), written.ArchivedAt)
	assert.Equal(s.T(), acc.AccountID, cascadedAccount)
	assert.Equal(s.T(), 1, s.accountRepo.CommitCount)
	assert.Equal(s.T(), domain.StatusArchived, result.Account.StatusAt(time.Now()))
	assert.Len(s.T(), s.notifier.ArchivedCalls, 1)
}

func (s *AccountServiceTestSuite) TestCloseAccount_RejectsAlreadyArchived() {
	acc := activeAccount(uuid.NewString())
	acc.Archived = true

	s.accountRepo.FindAccountByIDFn = func(_ context.Context, _ string) (*domain.Account, error) {
		return acc, nil
	}
	s.accountRepo.FindForUpdateFn = func(_ context.Context, _ pgx.Tx, _ string) (*domain.Account, error) {
		return acc, nil
	}

	_, err := s.svc.CloseAccount(context.Background(), s.admin, acc.AccountID)
	assert.ErrorIs(s.T(), err, apperrors.ErrAlreadyArchived)
	assert.Empty(s.T(), s.notifier.ArchivedCalls)
}

func (s *AccountServiceTestSuite) TestCloseAccount_StaleVersionRollsBack() {
	acc := activeAccount(uuid.NewString())
	s.accountRepo.FindAccountByIDFn = func(_ context.Context, _ string) (*domain.Account, error) {
		return acc, nil
	}
	s.accountRepo.FindForUpdateFn = func(_ context.Context, _ pgx.Tx, _ string) (*domain.Account, error) {
		return acc, nil
	}
	s.accountRepo.UpdateLifecycleInTxFn = func(_ context.Context, _ pgx.Tx, _ domain.Account) error {
		return apperrors.ErrConflict
	}

	_, err := s.svc.CloseAccount(context.Background(), s.admin, acc.AccountID)
	assert.ErrorIs(s.T(), err, apperrors.ErrConflict)
	assert.Zero(s.T(), s.accountRepo.CommitCount)
	assert.Equal(s.T(), 1, s.accountRepo.RollbackCnt)
}

// --- ArchiveExpiredBlocked ---

func (s *AccountServiceTestSuite) expiredBlockedAccount() *domain.Account {
	acc := activeAccount(uuid.NewString())
	start := time.Now().Add(-72 * time.Hour)
	end := time.Now().Add(-time.Hour)
	acc.BlockStart = &start
	acc.BlockEnd = &end
	acc.BlockReason = "expired interval"
	return acc
}

func (s *AccountServiceTestSuite) TestSweep_DryRunReportsWithoutMutating() {
	candidate := s.expiredBlockedAccount()
	s.accountRepo.FindExpiredBlockedFn = func(_ context.Context, _ time.Time) ([]domain.Account, error) {
		return []domain.Account{*candidate}, nil
	}

	result, err := s.svc.ArchiveExpiredBlocked(context.Background(), true)
	s.Require().NoError(err)

	assert.True(s.T(), result.DryRun)
	assert.Equal(s.T(), []string{candidate.AccountID}, result.AccountIDs)
	assert.Zero(s.T(), s.accountRepo.CommitCount, "dry run must not open a write transaction")
	assert.Empty(s.T(), s.notifier.ArchivedCalls)
}

func (s *AccountServiceTestSuite) TestSweep_ArchivesExpiredAndCascades() {
	candidate := s.expiredBlockedAccount()
	var written *domain.Account

	s.accountRepo.FindExpiredBlockedFn = func(_ context.Context, _ time.Time) ([]domain.Account, error) {
		return []domain.Account{*candidate}, nil
	}
	s.accountRepo.FindForUpdateFn = func(_ context.Context, _ pgx.Tx, _ string) (*domain.Account, error) {
		return candidate, nil
	}
	s.accountRepo.UpdateLifecycleInTxFn = func(_ context.Context, _ pgx.Tx, a domain.Account) error {
		written = &a
		return nil
	}
	s.txnRepo.ArchiveAllForAccountInTxF = func(_ context.Context, _ pgx.Tx, _ string, _ time.Time, userID string) (int64, error) {
		assert.Equal(s.T(), "system", userID)
		return 2, nil
	}

	result, err := s.svc.ArchiveExpiredBlocked(context.Background(), false)
	s.Require().NoError(err)

	assert.False(s.T(), result.DryRun)
	assert.Equal(s.T(), []string{candidate.AccountID}, result.AccountIDs)
	s.Require().NotNil(written)
	assert.True(s.T(), written.Archived)
	assert.Equal(s.T(), "system", written.LastUpdatedBy)
	assert.Len(s.T(), s.notifier.ArchivedCalls, 1)
}

func (s *AccountServiceTestSuite) TestSweep_SkipsCandidateChangedUnderLock() {
	candidate := s.expiredBlockedAccount()
	s.accountRepo.FindExpiredBlockedFn = func(_ context.Context, _ time.Time) ([]domain.Account, error) {
		return []domain.Account{*candidate}, nil
	}
	s.accountRepo.FindForUpdateFn = func(_ context.Context, _ pgx.Tx, _ string) (*domain.Account, error) {
		// Someone archived it between the scan and the lock.
		fresh := *candidate
		fresh.Archived = true
		return &fresh, nil
	}

	result, err := s.svc.ArchiveExpiredBlocked(context.Background(), false)
	s.Require().NoError(err)
	assert.Empty(s.T(), result.AccountIDs)
	assert.Empty(s.T(), s.notifier.ArchivedCalls)
}
