package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"finapi/internal/domain"
	"finapi/internal/repository"
)

const createStatementsTable = `
CREATE TABLE IF NOT EXISTS statements (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL REFERENCES users(id),
	type TEXT NOT NULL,
	amount NUMERIC(20, 4) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	receiver_id TEXT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS statements_user_id_idx ON statements(user_id);
CREATE INDEX IF NOT EXISTS statements_receiver_id_idx ON statements(receiver_id);
`

// amount travels as text so the decimal never passes through float64.
const selectStatementColumns = `SELECT id, user_id, type, amount::text, description, receiver_id, created_at FROM statements`

type StatementRepository struct {
	pool *pgxpool.Pool
}

func NewStatementRepository(pool *pgxpool.Pool) repository.StatementRepository {
	return &StatementRepository{pool: pool}
}

func (r *StatementRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createStatementsTable); err != nil {
		return fmt.Errorf("create statements table: %w", err)
	}
	return nil
}

func (r *StatementRepository) Create(ctx context.Context, st *domain.Statement) error {
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	var receiver *string
	if st.ReceiverID != "" {
		receiver = &st.ReceiverID
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO statements(id, user_id, type, amount, description, receiver_id, created_at)
		VALUES($1, $2, $3, $4::numeric, $5, $6, $7)
	`, st.ID, st.UserID, string(st.Type), st.Amount.String(), st.Description, receiver, st.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert statement: %w", err)
	}
	return nil
}

func (r *StatementRepository) GetBalance(ctx context.Context, userID string, withStatements bool) (*domain.Balance, error) {
	rows, err := r.pool.Query(ctx, selectStatementColumns+`
		WHERE user_id = $1 OR (type = $2 AND receiver_id = $1)
		ORDER BY seq ASC
	`, userID, string(domain.OperationTransfer))
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	var statements []domain.Statement
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		statements = append(statements, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return domain.NewBalance(userID, statements, withStatements), nil
}

func (r *StatementRepository) FindByID(ctx context.Context, userID, statementID string) (*domain.Statement, error) {
	row := r.pool.QueryRow(ctx, selectStatementColumns+`
		WHERE id = $1 AND user_id = $2
	`, statementID, userID)
	return scanStatement(row)
}

func scanStatement(row pgx.Row) (*domain.Statement, error) {
	var (
		st       domain.Statement
		opType   string
		amount   string
		receiver *string
	)
	if err := row.Scan(&st.ID, &st.UserID, &opType, &amount, &st.Description, &receiver, &st.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan statement: %w", err)
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	st.Type = domain.OperationType(opType)
	st.Amount = parsed
	if receiver != nil {
		st.ReceiverID = *receiver
	}
	return &st, nil
}
