package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finapi/internal/domain"
	"finapi/internal/repository"
)

// seq keeps insertion order stable when created_at values collide.
const createStatementsTable = `
CREATE TABLE IF NOT EXISTS statements (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	amount TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	receiver_id TEXT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id),
	FOREIGN KEY(receiver_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_statements_user_id ON statements(user_id);
CREATE INDEX IF NOT EXISTS idx_statements_receiver_id ON statements(receiver_id);
`

const selectStatementColumns = `SELECT id, user_id, type, amount, description, receiver_id, created_at FROM statements`

type StatementRepository struct {
	db *sql.DB
}

func NewStatementRepository(db *sql.DB) repository.StatementRepository {
	return &StatementRepository{db: db}
}

func (r *StatementRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createStatementsTable); err != nil {
		return fmt.Errorf("create statements table: %w", err)
	}
	return nil
}

func (r *StatementRepository) Create(ctx context.Context, st *domain.Statement) error {
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO statements (id, user_id, type, amount, description, receiver_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.ID,
		st.UserID,
		string(st.Type),
		st.Amount.String(),
		st.Description,
		nullString(st.ReceiverID),
		st.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert statement: %w", err)
	}
	return nil
}

func (r *StatementRepository) GetBalance(ctx context.Context, userID string, withStatements bool) (*domain.Balance, error) {
	rows, err := r.db.QueryContext(ctx, selectStatementColumns+`
WHERE user_id = ? OR (type = ? AND receiver_id = ?)
ORDER BY seq ASC`,
		userID,
		string(domain.OperationTransfer),
		userID,
	)
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
	row := r.db.QueryRowContext(ctx, selectStatementColumns+`
WHERE id = ? AND user_id = ?`,
		statementID,
		userID,
	)
	return scanStatement(row)
}

func scanStatement(row interface {
	Scan(dest ...any) error
}) (*domain.Statement, error) {
	var (
		st       domain.Statement
		opType   string
		receiver sql.NullString
	)
	if err := row.Scan(
		&st.ID,
		&st.UserID,
		&opType,
		&st.Amount,
		&st.Description,
		&receiver,
		&st.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan statement: %w", err)
	}
	st.Type = domain.OperationType(opType)
	st.ReceiverID = receiver.String
	return &st, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
