package repository

import (
	"context"

	"finapi/internal/domain"
)

// StatementRepository is an append-only ledger of statements. It performs no
// validation; callers check balances before writing.
type StatementRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, statement *domain.Statement) error
	// GetBalance folds every statement where userID is the owner or the
	// transfer receiver. Statements are returned in creation order when
	// withStatements is set.
	GetBalance(ctx context.Context, userID string, withStatements bool) (*domain.Balance, error)
	// FindByID only matches statements owned by userID.
	FindByID(ctx context.Context, userID, statementID string) (*domain.Statement, error)
}
