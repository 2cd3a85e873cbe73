package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/sunubank/bankapi/internal/core/domain"
	portsrepo "github.com/sunubank/bankapi/internal/core/ports/repositories"
)

// --- Mock AccountRepository (based on AccountService usage) ---

type MockAccountRepository struct {
	mock.Mock
	SaveAccountFn            func(ctx context.Context, account domain.Account) error
	FindAccountByIDFn        func(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccountsFn           func(ctx context.Context, filter portsrepo.AccountFilter) ([]domain.Account, int64, error)
	NumberExistsFn           func(ctx context.Context, number string) (bool, error)
	FindExpiredBlockedFn     func(ctx context.Context, now time.Time) ([]domain.Account, error)
	TouchLastTransactionFn   func(ctx context.Context, accountID string, at time.Time) error
	FindForUpdateFn          func(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)
	UpdateLifecycleInTxFn    func(ctx context.Context, tx pgx.Tx, account domain.Account) error
	BeginFn                  func(ctx context.Context) (pgx.Tx, error)
	CommitFn                 func(ctx context.Context, tx pgx.Tx) error
	RollbackFn               func(ctx context.Context, tx pgx.Tx) error
	CommitCount, RollbackCnt int
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	if m.SaveAccountFn != nil {
		return m.SaveAccountFn(ctx, account)
	}
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if m.FindAccountByIDFn != nil {
		return m.FindAccountByIDFn(ctx, accountID)
	}
	args := m.Called(ctx, accountID)
	var acc *domain.Account
	if args.Get(0) != nil {
		acc = args.Get(0).(*domain.Account)
	}
	return acc, args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, filter portsrepo.AccountFilter) ([]domain.Account, int64, error) {
	if m.ListAccountsFn != nil {
		return m.ListAccountsFn(ctx, filter)
	}
	args := m.Called(ctx, filter)
	var accounts []domain.Account
	if args.Get(0) != nil {
		accounts = args.Get(0).([]domain.Account)
	}
	return accounts, int64(args.Int(1)), args.Error(2)
}

func (m *MockAccountRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	if m.NumberExistsFn != nil {
		return m.NumberExistsFn(ctx, number)
	}
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) FindExpiredBlocked(ctx context.Context, now time.Time) ([]domain.Account, error) {
	if m.FindExpiredBlockedFn != nil {
		return m.FindExpiredBlockedFn(ctx, now)
	}
	args := m.Called(ctx, now)
	var accounts []domain.Account
	if args.Get(0) != nil {
		accounts = args.Get(0).([]domain.Account)
	}
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) TouchLastTransaction(ctx context.Context, accountID string, at time.Time) error {
	if m.TouchLastTransactionFn != nil {
		return m.TouchLastTransactionFn(ctx, accountID, at)
	}
	return m.Called(ctx, accountID, at).Error(0)
}

func (m *MockAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	if m.FindForUpdateFn != nil {
		return m.FindForUpdateFn(ctx, tx, accountID)
	}
	args := m.Called(ctx, tx, accountID)
	var acc *domain.Account
	if args.Get(0) != nil {
		acc = args.Get(0).(*domain.Account)
	}
	return acc, args.Error(1)
}

func (m *MockAccountRepository) UpdateLifecycleInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	if m.UpdateLifecycleInTxFn != nil {
		return m.UpdateLifecycleInTxFn(ctx, tx, account)
	}
	return m.Called(ctx, tx, account).Error(0)
}

func (m *MockAccountRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.BeginFn != nil {
		return m.BeginFn(ctx)
	}
	return nil, nil
}

func (m *MockAccountRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	m.CommitCount++
	if m.CommitFn != nil {
		return m.CommitFn(ctx, tx)
	}
	return nil
}

func (m *MockAccountRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	m.RollbackCnt++
	if m.RollbackFn != nil {
		return m.RollbackFn(ctx, tx)
	}
	return nil
}

// --- Mock ClientRepository ---

type MockClientRepository struct {
	mock.Mock
	FindClientByIDFn           func(ctx context.Context, clientID string) (*domain.Client, error)
	FindClientByEmailFn        func(ctx context.Context, email string) (*domain.Client, error)
	FindClientByEmailOrPhoneFn func(ctx context.Context, email, phone string) (*domain.Client, error)
	FindClientsByIDsFn         func(ctx context.Context, clientIDs []string) (map[string]domain.Client, error)
	SaveClientFn               func(ctx context.Context, client domain.Client) error
	UpdateClientFn             func(ctx context.Context, client domain.Client) error
}

func (m *MockClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	if m.FindClientByIDFn != nil {
		return m.FindClientByIDFn(ctx, clientID)
	}
	args := m.Called(ctx, clientID)
	var c *domain.Client
	if args.Get(0) != nil {
		c = args.Get(0).(*domain.Client)
	}
	return c, args.Error(1)
}

func (m *MockClientRepository) FindClientByEmail(ctx context.Context, email string) (*domain.Client, error) {
	if m.FindClientByEmailFn != nil {
		return m.FindClientByEmailFn(ctx, email)
	}
	args := m.Called(ctx, email)
	var c *domain.Client
	if args.Get(0) != nil {
		c = args.Get(0).(*domain.Client)
	}
	return c, args.Error(1)
}

func (m *MockClientRepository) FindClientByEmailOrPhone(ctx context.Context, email, phone string) (*domain.Client, error) {
	if m.FindClientByEmailOrPhoneFn != nil {
		return m.FindClientByEmailOrPhoneFn(ctx, email, phone)
	}
	args := m.Called(ctx, email, phone)
	var c *domain.Client
	if args.Get(0) != nil {
		c = args.Get(0).(*domain.Client)
	}
	return c, args.Error(1)
}

func (m *MockClientRepository) FindClientsByIDs(ctx context.Context, clientIDs []string) (map[string]domain.Client, error) {
	if m.FindClientsByIDsFn != nil {
		return m.FindClientsByIDsFn(ctx, clientIDs)
	}
	args := m.Called(ctx, clientIDs)
	var clients map[string]domain.Client
	if args.Get(0) != nil {
		clients = args.Get(0).(map[string]domain.Client)
	}
	return clients, args.Error(1)
}

func (m *MockClientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	if m.SaveClientFn != nil {
		return m.SaveClientFn(ctx, client)
	}
	return m.Called(ctx, client).Error(0)
}

func (m *MockClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	if m.UpdateClientFn != nil {
		return m.UpdateClientFn(ctx, client)
	}
	return m.Called(ctx, client).Error(0)
}

// --- Mock TransactionRepository ---

type MockTransactionRepository struct {
	mock.Mock
	FindTransactionByIDFn     func(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactionsFn        func(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.Transaction, int64, error)
	ReferenceExistsFn         func(ctx context.Context, reference string) (bool, error)
	SaveTransactionFn         func(ctx context.Context, txn domain.Transaction) error
	UpdateTransactionFn       func(ctx context.Context, txn domain.Transaction) error
	ArchiveAllForAccountInTxF func(ctx context.Context, tx pgx.Tx, accountID string, at time.Time, userID string) (int64, error)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if m.FindTransactionByIDFn != nil {
		return m.FindTransactionByIDFn(ctx, transactionID)
	}
	args := m.Called(ctx, transactionID)
	var t *domain.Transaction
	if args.Get(0) != nil {
		t = args.Get(0).(*domain.Transaction)
	}
	return t, args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.Transaction, int64, error) {
	if m.ListTransactionsFn != nil {
		return m.ListTransactionsFn(ctx, filter)
	}
	args := m.Called(ctx, filter)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	return txns, int64(args.Int(1)), args.Error(2)
}

func (m *MockTransactionRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	if m.ReferenceExistsFn != nil {
		return m.ReferenceExistsFn(ctx, reference)
	}
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	if m.SaveTransactionFn != nil {
		return m.SaveTransactionFn(ctx, txn)
	}
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	if m.UpdateTransactionFn != nil {
		return m.UpdateTransactionFn(ctx, txn)
	}
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepository) ArchiveAllForAccountInTx(ctx context.Context, tx pgx.Tx, accountID string, at time.Time, userID string) (int64, error) {
	if m.ArchiveAllForAccountInTxF != nil {
		return m.ArchiveAllForAccountInTxF(ctx, tx, accountID, at, userID)
	}
	args := m.Called(ctx, tx, accountID, at, userID)
	return int64(args.Int(0)), args.Error(1)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
	FindUserByIDFn       func(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmailFn    func(ctx context.Context, email string) (*domain.User, error)
	ListUsersFn          func(ctx context.Context, limit, offset int) ([]domain.User, error)
	SaveUserFn           func(ctx context.Context, user domain.User) error
	UpdateUserFn         func(ctx context.Context, user domain.User) error
	UpdateRefreshTokenFn func(ctx context.Context, userID string, tokenHash *string, expiry *time.Time) error
	DeactivateUserFn     func(ctx context.Context, userID string, updatedBy string, now time.Time) error
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if m.FindUserByIDFn != nil {
		return m.FindUserByIDFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	var u *domain.User
	if args.Get(0) != nil {
		u = args.Get(0).(*domain.User)
	}
	return u, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindUserByEmailFn != nil {
		return m.FindUserByEmailFn(ctx, email)
	}
	args := m.Called(ctx, email)
	var u *domain.User
	if args.Get(0) != nil {
		u = args.Get(0).(*domain.User)
	}
	return u, args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if m.ListUsersFn != nil {
		return m.ListUsersFn(ctx, limit, offset)
	}
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	if m.SaveUserFn != nil {
		return m.SaveUserFn(ctx, user)
	}
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	if m.UpdateUserFn != nil {
		return m.UpdateUserFn(ctx, user)
	}
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, tokenHash *string, expiry *time.Time) error {
	if m.UpdateRefreshTokenFn != nil {
		return m.UpdateRefreshTokenFn(ctx, userID, tokenHash, expiry)
	}
	return m.Called(ctx, userID, tokenHash, expiry).Error(0)
}

func (m *MockUserRepository) DeactivateUser(ctx context.Context, userID string, updatedBy string, now time.Time) error {
	if m.DeactivateUserFn != nil {
		return m.DeactivateUserFn(ctx, userID, updatedBy, now)
	}
	return m.Called(ctx, userID, updatedBy, now).Error(0)
}

// --- Mock NotificationSink (records calls) ---

type MockNotificationSink struct {
	CreatedCalls     []string
	CredentialCalls  []string
	VerificationCnt  int
	BlockedCalls     []string
	ArchivedCalls    []string
	LastTempPassword string
}

func (m *MockNotificationSink) NotifyAccountCreated(_ context.Context, account domain.Account, _ domain.Client) {
	m.CreatedCalls = append(m.CreatedCalls, account.AccountID)
}

func (m *MockNotificationSink) NotifyClientCredentials(_ context.Context, client domain.Client, tempPassword string) {
	m.CredentialCalls = append(m.CredentialCalls, client.ClientID)
	m.LastTempPassword = tempPassword
}

func (m *MockNotificationSink) NotifyVerificationCode(_ context.Context, _ domain.Client, _ string) {
	m.VerificationCnt++
}

func (m *MockNotificationSink) NotifyAccountBlocked(_ context.Context, account domain.Account, _ string) {
	m.BlockedCalls = append(m.BlockedCalls, account.AccountID)
}

func (m *MockNotificationSink) NotifyAccountArchived(_ context.Context, account domain.Account) {
	m.ArchivedCalls = append(m.ArchivedCalls, account.AccountID)
}
