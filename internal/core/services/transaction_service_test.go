package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
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

type TransactionServiceTestSuite struct {
	suite.Suite
	txnRepo     *MockTransactionRepository
	accountRepo *MockAccountRepository
	clientRepo  *MockClientRepository
	svc         portssvc.TransactionSvcFacade

	admin  domain.Caller
	client domain.Caller
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.txnRepo = &MockTransactionRepository{}
	s.accountRepo = &MockAccountRepository{}
	s.clientRepo = &MockClientRepository{}
	s.svc = services.NewTransactionService(s.txnRepo, s.accountRepo, s.clientRepo)

	s.admin = domain.Caller{UserID: uuid.NewString(), Email: "admin@bank.test", Role: domain.RoleAdmin}
	s.client = domain.Caller{UserID: uuid.NewString(), Email: "aissatou@bank.test", Role: domain.RoleClient}
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (s *TransactionServiceTestSuite) depositRequest(accountID string) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		Type:      domain.TxnDeposit,
		Amount:    decimal.NewFromInt(25000),
		Currency:  "XOF",
		AccountID: accountID,
	}
}

func (s *TransactionServiceTestSuite) stubAccount(acc *domain.Account) {
	s.accountRepo.FindAccountByIDFn = func(_ context.Context, id string) (*domain.Account, error) {
		if id == acc.AccountID {
			return acc, nil
		}
		return nil, apperrors.ErrNotFound
	}
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_RecordsDepositAndTouchesAccount() {
	acc := activeAccount(uuid.NewString())
	s.stubAccount(acc)
	s.txnRepo.ReferenceExistsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }

	var saved *domain.Transaction
	s.txnRepo.SaveTransactionFn = func(_ context.Context, t domain.Transaction) error {
		saved = &t
		return nil
	}
	var touched string
	s.accountRepo.TouchLastTransactionFn = func(_ context.Context, accountID string, _ time.Time) error {
		touched = accountID
		return nil
	}

	txn, err := s.svc.CreateTransaction(context.Background(), s.admin, s.depositRequest(acc.AccountID))
	s.Require().NoError(err)

	s.Require().NotNil(saved)
	assert.True(s.T(), strings.HasPrefix(saved.Reference, "TXN"))
	assert.Equal(s.T(), domain.TxnCompleted, saved.Status)
	assert.Equal(s.T(), acc.AccountID, touched)
	assert.False(s.T(), txn.Archived)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_RejectsBlockedAccount() {
	acc := activeAccount(uuid.NewString())
	blockStart := time.Now().Add(-time.Hour)
	acc.BlockStart = &blockStart
	s.stubAccount(acc)

	_, err := s.svc.CreateTransaction(context.Background(), s.admin, s.depositRequest(acc.AccountID))
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_RejectsArchivedAccount() {
	acc := activeAccount(uuid.NewString())
	acc.Archived = true
	s.stubAccount(acc)

	_, err := s.svc.CreateTransaction(context.Background(), s.admin, s.depositRequest(acc.AccountID))
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_RejectsCurrencyMismatch() {
	acc := activeAccount(uuid.NewString())
	s.stubAccount(acc)

	req := s.depositRequest(acc.AccountID)
	req.Currency = "EUR"
	_, err := s.svc.CreateTransaction(context.Background(), s.admin, req)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_TransferNeedsDestination() {
	acc := activeAccount(uuid.NewString())
	s.stubAccount(acc)

	req := s.depositRequest(acc.AccountID)
	req.Type = domain.TxnTransferOut
	_, err := s.svc.CreateTransaction(context.Background(), s.admin, req)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_TransferToInactiveDestinationRejected() {
	src := activeAccount(uuid.NewString())
	dst := activeAccount(uuid.NewString())
	dst.Archived = true

	s.accountRepo.FindAccountByIDFn = func(_ context.Context, id string) (*domain.Account, error) {
		switch id {
		case src.AccountID:
			return src, nil
		case dst.AccountID:
			return dst, nil
		}
		return nil, apperrors.ErrNotFound
	}

	req := s.depositRequest(src.AccountID)
	req.Type = domain.TxnTransferOut
	req.DestinationAccountID = &dst.AccountID
	_, err := s.svc.CreateTransaction(context.Background(), s.admin, req)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_HidesOtherOwnersAccounts() {
	acc := activeAccount(uuid.NewString())
	s.stubAccount(acc)
	s.clientRepo.FindClientByEmailFn = func(_ context.Context, _ string) (*domain.Client, error) {
		return &domain.Client{ClientID: uuid.NewString()}, nil
	}

	_, err := s.svc.CreateTransaction(context.Background(), s.client, s.depositRequest(acc.AccountID))
	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
}

func (s *TransactionServiceTestSuite) TestListTransactions_UnscopedIsAdminOnly() {
	_, err := s.svc.ListTransactions(context.Background(), s.client, dto.ListTransactionsParams{Page: 1, Limit: 15})
	assert.ErrorIs(s.T(), err, apperrors.ErrForbidden)
}

func (s *TransactionServiceTestSuite) TestListTransactions_OwnerListsOwnAccount() {
	clientID := uuid.NewString()
	acc := activeAccount(clientID)
	s.stubAccount(acc)
	s.clientRepo.FindClientByEmailFn = func(_ context.Context, _ string) (*domain.Client, error) {
		return &domain.Client{ClientID: clientID}, nil
	}
	s.txnRepo.ListTransactionsFn = func(_ context.Context, _ portsrepo.TransactionFilter) ([]domain.Transaction, int64, error) {
		return []domain.Transaction{{TransactionID: uuid.NewString(), AccountID: acc.AccountID}}, 1, nil
	}

	page, err := s.svc.ListTransactions(context.Background(), s.client, dto.ListTransactionsParams{
		Page: 1, Limit: 15, AccountID: acc.AccountID,
	})
	s.Require().NoError(err)
	assert.Equal(s.T(), int64(1), page.Total)
	assert.Len(s.T(), page.Transactions, 1)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_RequiresAdmin() {
	desc := "corrected"
	_, err := s.svc.UpdateTransaction(context.Background(), s.client, uuid.NewString(), dto.UpdateTransactionRequest{Description: &desc})
	assert.ErrorIs(s.T(), err, apperrors.ErrForbidden)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_RejectsArchived() {
	txn := &domain.Transaction{TransactionID: uuid.NewString(), Archived: true}
	s.txnRepo.FindTransactionByIDFn = func(_ context.Context, _ string) (*domain.Transaction, error) {
		return txn, nil
	}

	desc := "corrected"
	_, err := s.svc.UpdateTransaction(context.Background(), s.admin, txn.TransactionID, dto.UpdateTransactionRequest{Description: &desc})
	assert.ErrorIs(s.T(), err, apperrors.ErrAlreadyArchived)
}

func (s *TransactionServiceTestSuite) TestCancelTransaction_MarksCancelled() {
	txn := &domain.Transaction{TransactionID: uuid.NewString(), Status: domain.TxnPending}
	s.txnRepo.FindTransactionByIDFn = func(_ context.Context, _ string) (*domain.Transaction, error) {
		return txn, nil
	}
	var updated *domain.Transaction
	s.txnRepo.UpdateTransactionFn = func(_ context.Context, t domain.Transaction) error {
		updated = &t
		return nil
	}

	result, err := s.svc.CancelTransaction(context.Background(), s.admin, txn.TransactionID)
	s.Require().NoError(err)
	s.Require().NotNil(updated)
	assert.Equal(s.T(), domain.TxnCancelled, updated.Status)
	assert.Equal(s.T(), domain.TxnCancelled, result.Status)
}
