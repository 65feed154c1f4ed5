package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

type OperationType string

const (
	OperationDeposit  OperationType = "deposit"
	OperationWithdraw OperationType = "withdraw"
	OperationTransfer OperationType = "transfer"
)

// Valid reports whether t is one of the known operation kinds.
func (t OperationType) Valid() bool {
	switch t {
	case OperationDeposit, OperationWithdraw, OperationTransfer:
		return true
	}
	return false
}

const (
	// AmountScale is the number of fractional digits every store keeps.
	AmountScale = 4
	// AmountIntegerDigits bounds the integer part so amounts fit NUMERIC(20,4).
	AmountIntegerDigits = 16

	// coefficients longer than this are rejected before normalising
	maxCoefficientBits = 256
)

var bigTen = big.NewInt(10)

// ValidAmount reports whether d is positive and representable without
// rounding in AmountIntegerDigits integer and AmountScale fractional digits.
// It never rescales d, so huge exponents are rejected without big arithmetic.
func ValidAmount(d decimal.Decimal) bool {
	if !d.IsPositive() {
		return false
	}
	coef := d.Coefficient()
	if coef.BitLen() > maxCoefficientBits {
		return false
	}
	exp := int64(d.Exponent())
	rem := new(big.Int)
	for exp < -AmountScale {
		q, r := new(big.Int).QuoRem(coef, bigTen, rem)
		if r.Sign() != 0 {
			return false
		}
		coef = q
		exp++
	}
	return int64(len(coef.String()))+exp <= AmountIntegerDigits
}

// Statement is an immutable ledger entry. For transfers UserID is the sender
// and ReceiverID the user credited by the same record.
type Statement struct {
	ID          string
	UserID      string
	Type        OperationType
	Amount      decimal.Decimal
	Description string
	ReceiverID  string
	CreatedAt   time.Time
}

// EffectOn returns the signed change this entry makes to userID's balance.
func (s Statement) EffectOn(userID string) decimal.Decimal {
	switch s.Type {
	case OperationDeposit:
		if s.UserID == userID {
			return s.Amount
		}
	case OperationWithdraw:
		if s.UserID == userID {
			return s.Amount.Neg()
		}
	case OperationTransfer:
		switch userID {
		case s.UserID:
			return s.Amount.Neg()
		case s.ReceiverID:
			return s.Amount
		}
	}
	return decimal.Zero
}

// Balance is derived from the statements touching a user.
type Balance struct {
	Amount     decimal.Decimal
	Statements []Statement
}

// FoldBalance sums the effect of every statement on userID.
func FoldBalance(userID string, statements []Statement) decimal.Decimal {
	total := decimal.Zero
	for i := range statements {
		total = total.Add(statements[i].EffectOn(userID))
	}
	return total
}

// NewBalance builds the balance view for userID from statements already in
// creation order. Statements are dropped unless withStatements is set.
func NewBalance(userID string, statements []Statement, withStatements bool) *Balance {
	b := &Balance{Amount: FoldBalance(userID, statements)}
	if withStatements {
		b.Statements = statements
		if b.Statements == nil {
			b.Statements = []Statement{}
		}
	}
	return b
}
