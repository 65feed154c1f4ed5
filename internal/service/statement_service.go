package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finapi/internal/domain"
	"finapi/internal/repository"
)

// CreateStatementInput carries one deposit, withdrawal or transfer request.
// ReceiverID is only read for transfers.
type CreateStatementInput struct {
	UserID      string
	Type        domain.OperationType
	Amount      decimal.Decimal
	Description string
	ReceiverID  string
}

// StatementService records ledger operations and answers balance queries.
type StatementService interface {
	CreateStatement(ctx context.Context, in CreateStatementInput) (*domain.Statement, error)
	GetBalance(ctx context.Context, userID string) (*domain.Balance, error)
	GetStatementOperation(ctx context.Context, userID, statementID string) (*domain.Statement, error)
}

type statementService struct {
	users      repository.UserRepository
	statements repository.StatementRepository
	locks      *keyedLocker
	log        logrus.FieldLogger
}

func NewStatementService(users repository.UserRepository, statements repository.StatementRepository, log logrus.FieldLogger) StatementService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &statementService{
		users:      users,
		statements: statements,
		locks:      newKeyedLocker(),
		log:        log.WithField("component", "statements"),
	}
}

// CreateStatement validates everything before the single write, so any
// returned error means nothing was recorded.
func (s *statementService) CreateStatement(ctx context.Context, in CreateStatementInput) (*domain.Statement, error) {
	if err := s.requireUser(ctx, in.UserID); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, domain.ErrInvalidOperation
	}
	if !domain.ValidAmount(in.Amount) {
		return nil, domain.ErrInvalidAmount
	}
	if in.Type == domain.OperationTransfer && in.ReceiverID == in.UserID {
		return nil, domain.ErrSameAccount
	}

	// balance check and write must not interleave with another debit of the same user
	unlock := s.locks.Lock(in.UserID)
	defer unlock()

	statement := &domain.Statement{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
	}

	switch in.Type {
	case domain.OperationWithdraw:
		if err := s.requireFunds(ctx, in.UserID, in.Amount); err != nil {
			return nil, err
		}
	case domain.OperationTransfer:
		if err := s.requireFunds(ctx, in.UserID, in.Amount); err != nil {
			return nil, err
		}
		receiver, err := s.users.GetByID(ctx, in.ReceiverID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, domain.ErrUserNotFound
			}
			return nil, err
		}
		statement.ReceiverID = receiver.ID
	}

	if err := s.statements.Create(ctx, statement); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"statement_id": statement.ID,
		"user_id":      statement.UserID,
		"type":         statement.Type,
		"amount":       statement.Amount.String(),
	}).Info("statement recorded")
	return statement, nil
}

func (s *statementService) GetBalance(ctx context.Context, userID string) (*domain.Balance, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.statements.GetBalance(ctx, userID, true)
}

func (s *statementService) GetStatementOperation(ctx context.Context, userID, statementID string) (*domain.Statement, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	statement, err := s.statements.FindByID(ctx, userID, statementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrStatementNotFound
		}
		return nil, err
	}
	return statement, nil
}

func (s *statementService) requireUser(ctx context.Context, userID string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *statementService) requireFunds(ctx context.Context, userID string, amount decimal.Decimal) error {
	balance, err := s.statements.GetBalance(ctx, userID, false)
	if err != nil {
		return err
	}
	if balance.Amount.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}
	return nil
}
