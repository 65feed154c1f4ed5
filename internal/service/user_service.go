package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"finapi/internal/auth"
	"finapi/internal/domain"
	"finapi/internal/repository"
)

// Session is the result of a successful authentication.
type Session struct {
	Token string
	User  *domain.User
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*Session, error)
	ShowProfile(ctx context.Context, userID string) (*domain.User, error)
}

type userService struct {
	users     repository.UserRepository
	tokens    auth.Issuer
	log       logrus.FieldLogger
	hashCost  int
	dummyHash []byte
}

// NewUserService wires the user store and token issuer. hashCost of zero
// selects bcrypt.DefaultCost; an out-of-range cost is an error.
func NewUserService(users repository.UserRepository, tokens auth.Issuer, log logrus.FieldLogger, hashCost int) (UserService, error) {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	// compared against on unknown emails so both failure paths cost one bcrypt check
	dummy, err := bcrypt.GenerateFromPassword([]byte("finapi-unknown-user"), hashCost)
	if err != nil {
		return nil, fmt.Errorf("prepare password hashing: %w", err)
	}
	return &userService{
		users:     users,
		tokens:    tokens,
		log:       log.WithField("component", "users"),
		hashCost:  hashCost,
		dummyHash: dummy,
	}, nil
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidUserInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, domain.ErrIncorrectEmailOrPassword
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrIncorrectEmailOrPassword
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: sanitizeUser(user)}, nil
}

func (s *userService) ShowProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
