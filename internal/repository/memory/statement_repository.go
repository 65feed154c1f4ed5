package memory

import (
	"context"
	"sync"
	"time"

	"finapi/internal/domain"
	"finapi/internal/repository"
)

// StatementRepository is an append-only slice of statements; slice order is
// creation order.
type StatementRepository struct {
	mu         sync.RWMutex
	statements []domain.Statement
}

func NewStatementRepository() *StatementRepository {
	return &StatementRepository{}
}

func (r *StatementRepository) Init(ctx context.Context) error { return nil }

func (r *StatementRepository) Create(ctx context.Context, statement *domain.Statement) error {
	if statement.CreatedAt.IsZero() {
		statement.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.statements = append(r.statements, *statement)
	r.mu.Unlock()
	return nil
}

func (r *StatementRepository) GetBalance(ctx context.Context, userID string, withStatements bool) (*domain.Balance, error) {
	r.mu.RLock()
	var related []domain.Statement
	for _, st := range r.statements {
		if st.UserID == userID || (st.Type == domain.OperationTransfer && st.ReceiverID == userID) {
			related = append(related, st)
		}
	}
	r.mu.RUnlock()

	return domain.NewBalance(userID, related, withStatements), nil
}

func (r *StatementRepository) FindByID(ctx context.Context, userID, statementID string) (*domain.Statement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.statements {
		if r.statements[i].ID == statementID && r.statements[i].UserID == userID {
			st := r.statements[i]
			return &st, nil
		}
	}
	return nil, repository.ErrNotFound
}

var _ repository.StatementRepository = (*StatementRepository)(nil)
