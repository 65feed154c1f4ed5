package domain

import "errors"

var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientFunds means the balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateUser is returned when the email is already registered.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrStatementNotFound is returned for unknown statements and statements owned by someone else.
	ErrStatementNotFound = errors.New("statement not found")

	// ErrIncorrectEmailOrPassword covers both unknown emails and wrong passwords.
	ErrIncorrectEmailOrPassword = errors.New("incorrect email or password")

	// ErrProfileNotFound is returned when the profile owner does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidAmount is returned for non-positive amounts and amounts outside NUMERIC(20,4).
	ErrInvalidAmount = errors.New("amount must be positive with at most 16 integer and 4 decimal digits")

	// ErrInvalidOperation is returned for an unknown statement type.
	ErrInvalidOperation = errors.New("invalid operation type")

	// ErrSameAccount is returned when a transfer names its own sender as receiver.
	ErrSameAccount = errors.New("cannot transfer to the same user")

	// ErrInvalidUserInput is returned when registration is missing a name, email or password.
	ErrInvalidUserInput = errors.New("name, email and password are required")

	// ErrArchiveDisabled is returned when no archive bucket is configured.
	ErrArchiveDisabled = errors.New("statement archive is not configured")
)
