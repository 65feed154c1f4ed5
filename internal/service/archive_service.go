package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finapi/internal/domain"
	"finapi/internal/repository"
	"finapi/internal/storage"
)

const defaultArchiveURLTTL = 15 * time.Minute

// ArchiveConfig points archives at a bucket. An empty Bucket disables archiving.
type ArchiveConfig struct {
	Bucket    string
	KeyPrefix string
	URLTTL    time.Duration
}

// ArchiveService snapshots a user's balance and statements into object storage.
type ArchiveService interface {
	Archive(ctx context.Context, userID string) (*domain.Archive, error)
	List(ctx context.Context, userID string) ([]domain.Archive, error)
}

type archiveService struct {
	users      repository.UserRepository
	statements StatementService
	store      storage.Service
	cfg        ArchiveConfig
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewArchiveService(users repository.UserRepository, statements StatementService, store storage.Service, cfg ArchiveConfig, log logrus.FieldLogger) ArchiveService {
	if cfg.URLTTL <= 0 {
		cfg.URLTTL = defaultArchiveURLTTL
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &archiveService{
		users:      users,
		statements: statements,
		store:      store,
		cfg:        cfg,
		log:        log.WithField("component", "archive"),
		now:        time.Now,
	}
}

type archiveDocument struct {
	UserID      string             `json:"user_id"`
	Balance     decimal.Decimal    `json:"balance"`
	Statements  []archiveStatement `json:"statements"`
	GeneratedAt time.Time          `json:"generated_at"`
}

type archiveStatement struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReceiverID  string          `json:"receiver_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (s *archiveService) enabled() bool {
	return s.store != nil && s.cfg.Bucket != ""
}

func (s *archiveService) userPrefix(userID string) string {
	return path.Join(s.cfg.KeyPrefix, userID) + "/"
}

func (s *archiveService) Archive(ctx context.Context, userID string) (*domain.Archive, error) {
	if !s.enabled() {
		return nil, domain.ErrArchiveDisabled
	}

	balance, err := s.statements.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := archiveDocument{
		UserID:      userID,
		Balance:     balance.Amount,
		Statements:  make([]archiveStatement, len(balance.Statements)),
		GeneratedAt: now,
	}
	for i, st := range balance.Statements {
		doc.Statements[i] = archiveStatement{
			ID:          st.ID,
			UserID:      st.UserID,
			Type:        string(st.Type),
			Amount:      st.Amount,
			Description: st.Description,
			ReceiverID:  st.ReceiverID,
			CreatedAt:   st.CreatedAt,
		}
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode archive: %w", err)
	}

	key := s.userPrefix(userID) + fmt.Sprintf("%s-%s.json", now.Format("20060102T150405Z"), uuid.NewString()[:8])
	location, err := s.store.Put(ctx, bytes.NewReader(body), storage.PutOptions{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	url, err := s.store.GetObjectURL(ctx, s.cfg.Bucket, key, s.cfg.URLTTL)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "location": location}).Info("statement archive stored")
	return &domain.Archive{
		Key:          key,
		Size:         int64(len(body)),
		LastModified: &now,
		URL:          url,
	}, nil
}

// List returns the user's archives, newest first.
func (s *archiveService) List(ctx context.Context, userID string) ([]domain.Archive, error) {
	if !s.enabled() {
		return nil, domain.ErrArchiveDisabled
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	objects, err := s.store.ListObjects(ctx, s.cfg.Bucket, s.userPrefix(userID))
	if err != nil {
		return nil, err
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key > objects[j].Key })

	archives := make([]domain.Archive, 0, len(objects))
	for _, obj := range objects {
		url, err := s.store.GetObjectURL(ctx, s.cfg.Bucket, obj.Key, s.cfg.URLTTL)
		if err != nil {
			return nil, err
		}
		archives = append(archives, domain.Archive{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			URL:          url,
		})
	}
	return archives, nil
}
