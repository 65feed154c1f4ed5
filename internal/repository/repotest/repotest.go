// Package repotest holds behaviour checks shared by every repository backend.
package repotest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finapi/internal/domain"
	"finapi/internal/repository"
)

// NewUser returns an unsaved user with a fresh id.
func NewUser(name, email string) *domain.User {
	return &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func newStatement(userID string, op domain.OperationType, amount string, receiverID string) *domain.Statement {
	return &domain.Statement{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        op,
		Amount:      decimal.RequireFromString(amount),
		Description: string(op),
		ReceiverID:  receiverID,
	}
}

// Users exercises a UserRepository backed by an empty store.
func Users(t *testing.T, users repository.UserRepository) {
	t.Helper()
	ctx := context.Background()

	if err := users.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	u := NewUser("Ada", "ada@example.com")
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	byID, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Email != u.Email || byID.Name != u.Name || byID.PasswordHash != u.PasswordHash {
		t.Fatalf("got=%+v want=%+v", byID, u)
	}

	byEmail, err := users.GetByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("id=%s want=%s", byEmail.ID, u.ID)
	}

	dup := NewUser("Other", u.Email)
	if err := users.Create(ctx, dup); !errors.Is(err, repository.ErrAlreadyExists) {
		t.Fatalf("duplicate email: want ErrAlreadyExists, got %v", err)
	}

	if _, err := users.GetByID(ctx, uuid.NewString()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing id: want ErrNotFound, got %v", err)
	}
	if _, err := users.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing email: want ErrNotFound, got %v", err)
	}
}

// Statements exercises a StatementRepository. users must share storage with
// statements when the backend enforces foreign keys.
func Statements(t *testing.T, users repository.UserRepository, statements repository.StatementRepository) {
	t.Helper()
	ctx := context.Background()

	if err := users.Init(ctx); err != nil {
		t.Fatalf("init users: %v", err)
	}
	if err := statements.Init(ctx); err != nil {
		t.Fatalf("init statements: %v", err)
	}

	alice := NewUser("Alice", "alice-"+uuid.NewString()+"@example.com")
	bob := NewUser("Bob", "bob-"+uuid.NewString()+"@example.com")
	for _, u := range []*domain.User{alice, bob} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	empty, err := statements.GetBalance(ctx, alice.ID, true)
	if err != nil {
		t.Fatalf("empty balance: %v", err)
	}
	if !empty.Amount.IsZero() || empty.Statements == nil || len(empty.Statements) != 0 {
		t.Fatalf("empty balance=%+v want 0 and no statements", empty)
	}

	entries := []*domain.Statement{
		newStatement(alice.ID, domain.OperationDeposit, "100.50", ""),
		newStatement(alice.ID, domain.OperationWithdraw, "20.25", ""),
		newStatement(alice.ID, domain.OperationTransfer, "30", bob.ID),
		newStatement(bob.ID, domain.OperationDeposit, "7", ""),
	}
	for _, st := range entries {
		if err := statements.Create(ctx, st); err != nil {
			t.Fatalf("create statement: %v", err)
		}
		if st.CreatedAt.IsZero() {
			t.Fatalf("create should stamp CreatedAt")
		}
	}

	ab, err := statements.GetBalance(ctx, alice.ID, true)
	if err != nil {
		t.Fatalf("alice balance: %v", err)
	}
	if want := decimal.RequireFromString("50.25"); !ab.Amount.Equal(want) {
		t.Fatalf("alice balance=%s want=%s", ab.Amount, want)
	}
	if len(ab.Statements) != 3 {
		t.Fatalf("alice statements=%d want=3", len(ab.Statements))
	}
	for i, st := range ab.Statements {
		if st.ID != entries[i].ID {
			t.Fatalf("statement %d id=%s want=%s (creation order)", i, st.ID, entries[i].ID)
		}
	}

	bb, err := statements.GetBalance(ctx, bob.ID, false)
	if err != nil {
		t.Fatalf("bob balance: %v", err)
	}
	if want := decimal.NewFromInt(37); !bb.Amount.Equal(want) {
		t.Fatalf("bob balance=%s want=%s", bb.Amount, want)
	}
	if bb.Statements != nil {
		t.Fatalf("statements should be omitted, got %d", len(bb.Statements))
	}

	transfer := entries[2]
	got, err := statements.FindByID(ctx, alice.ID, transfer.ID)
	if err != nil {
		t.Fatalf("find transfer: %v", err)
	}
	if got.ReceiverID != bob.ID || got.Type != domain.OperationTransfer || !got.Amount.Equal(transfer.Amount) {
		t.Fatalf("got=%+v want=%+v", got, transfer)
	}

	if _, err := statements.FindByID(ctx, bob.ID, entries[0].ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("foreign statement: want ErrNotFound, got %v", err)
	}
	if _, err := statements.FindByID(ctx, alice.ID, uuid.NewString()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown statement: want ErrNotFound, got %v", err)
	}

	long := newStatement(bob.ID, domain.OperationDeposit, "0.0001", "")
	long.Description = strings.Repeat("d", 1000)
	if err := statements.Create(ctx, long); err != nil {
		t.Fatalf("create long description: %v", err)
	}
	got, err = statements.FindByID(ctx, bob.ID, long.ID)
	if err != nil {
		t.Fatalf("find long description: %v", err)
	}
	if got.Description != long.Description || !got.Amount.Equal(long.Amount) {
		t.Fatalf("long entry came back as description len=%d amount=%s", len(got.Description), got.Amount)
	}
}
