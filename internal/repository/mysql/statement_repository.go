package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finapi/internal/domain"
	"finapi/internal/repository"
)

// sqlStatement maps the statements table. Seq orders rows by insertion.
type sqlStatement struct {
	Seq         int64           `gorm:"primaryKey;autoIncrement"`
	ID          string          `gorm:"size:36;not null;uniqueIndex"`
	UserID      string          `gorm:"size:36;not null;index"`
	Type        string          `gorm:"size:16;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Description string          `gorm:"type:text;not null"`
	ReceiverID  *string         `gorm:"size:36;index"`
	CreatedAt   time.Time
}

func (*sqlStatement) TableName() string {
	return "statements"
}

type StatementRepository struct {
	client *Client
}

func NewStatementRepository(client *Client) repository.StatementRepository {
	return &StatementRepository{client: client}
}

func (r *StatementRepository) Init(ctx context.Context) error {
	if err := r.client.DB().WithContext(ctx).AutoMigrate(&sqlStatement{}); err != nil {
		return fmt.Errorf("migrate statements: %w", err)
	}
	return nil
}

func (r *StatementRepository) Create(ctx context.Context, st *domain.Statement) error {
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	row := sqlStatement{
		ID:          st.ID,
		UserID:      st.UserID,
		Type:        string(st.Type),
		Amount:      st.Amount,
		Description: st.Description,
		CreatedAt:   st.CreatedAt,
	}
	if st.ReceiverID != "" {
		receiver := st.ReceiverID
		row.ReceiverID = &receiver
	}
	if err := r.client.DB().WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert statement: %w", err)
	}
	return nil
}

func (r *StatementRepository) GetBalance(ctx context.Context, userID string, withStatements bool) (*domain.Balance, error) {
	var rows []sqlStatement
	err := r.client.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		Or("type = ? AND receiver_id = ?", string(domain.OperationTransfer), userID).
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select statements: %w", err)
	}

	statements := make([]domain.Statement, 0, len(rows))
	for i := range rows {
		statements = append(statements, rows[i].toDomain())
	}
	return domain.NewBalance(userID, statements, withStatements), nil
}

func (r *StatementRepository) FindByID(ctx context.Context, userID, statementID string) (*domain.Statement, error) {
	var row sqlStatement
	err := r.client.DB().WithContext(ctx).
		Where("id = ? AND user_id = ?", statementID, userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select statement: %w", err)
	}
	st := row.toDomain()
	return &st, nil
}

func (s *sqlStatement) toDomain() domain.Statement {
	st := domain.Statement{
		ID:          s.ID,
		UserID:      s.UserID,
		Type:        domain.OperationType(s.Type),
		Amount:      s.Amount,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
	if s.ReceiverID != nil {
		st.ReceiverID = *s.ReceiverID
	}
	return st
}
