package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"finapi/internal/auth"
	"finapi/internal/domain"
	"finapi/internal/repository/memory"
)

type fixture struct {
	users      *memory.UserRepository
	statements *memory.StatementRepository
	issuer     auth.Issuer
	userSvc    UserService
	stmtSvc    StatementService
	logs       *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	issuer, err := auth.NewJWTIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	users := memory.NewUserRepository()
	statements := memory.NewStatementRepository()
	userSvc, err := NewUserService(users, issuer, logger, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{
		users:      users,
		statements: statements,
		issuer:     issuer,
		userSvc:    userSvc,
		stmtSvc:    NewStatementService(users, statements, logger),
		logs:       hook,
	}
}

func (f *fixture) register(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := f.userSvc.Register(context.Background(), name, name+"@example.com", "pass-"+name)
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u
}

func (f *fixture) create(t *testing.T, in CreateStatementInput) (*domain.Statement, error) {
	t.Helper()
	return f.stmtSvc.CreateStatement(context.Background(), in)
}

func (f *fixture) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	b, err := f.stmtSvc.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("balance %s: %v", userID, err)
	}
	return b.Amount
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func deposit(userID string, amount int64) CreateStatementInput {
	return CreateStatementInput{UserID: userID, Type: domain.OperationDeposit, Amount: dec(amount), Description: "deposit"}
}

func withdraw(userID string, amount int64) CreateStatementInput {
	return CreateStatementInput{UserID: userID, Type: domain.OperationWithdraw, Amount: dec(amount), Description: "withdraw"}
}

func transfer(from, to string, amount int64) CreateStatementInput {
	return CreateStatementInput{UserID: from, ReceiverID: to, Type: domain.OperationTransfer, Amount: dec(amount), Description: "transfer"}
}
