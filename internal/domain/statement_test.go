package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestEffectOnTransferIsReceiverAware(t *testing.T) {
	st := Statement{Type: OperationTransfer, UserID: "alice", ReceiverID: "bob", Amount: amount(40)}

	if got := st.EffectOn("alice"); !got.Equal(amount(-40)) {
		t.Fatalf("sender effect=%s want=-40", got)
	}
	if got := st.EffectOn("bob"); !got.Equal(amount(40)) {
		t.Fatalf("receiver effect=%s want=40", got)
	}
	if got := st.EffectOn("carol"); !got.IsZero() {
		t.Fatalf("bystander effect=%s want=0", got)
	}
}

func TestFoldBalance(t *testing.T) {
	statements := []Statement{
		{Type: OperationDeposit, UserID: "alice", Amount: amount(100)},
		{Type: OperationWithdraw, UserID: "alice", Amount: amount(30)},
		{Type: OperationTransfer, UserID: "alice", ReceiverID: "bob", Amount: amount(50)},
		{Type: OperationTransfer, UserID: "bob", ReceiverID: "alice", Amount: amount(5)},
		{Type: OperationDeposit, UserID: "bob", Amount: amount(1000)},
	}

	if got := FoldBalance("alice", statements); !got.Equal(amount(25)) {
		t.Fatalf("alice=%s want=25", got)
	}
	if got := FoldBalance("bob", statements); !got.Equal(amount(1045)) {
		t.Fatalf("bob=%s want=1045", got)
	}
}

func TestFoldBalanceDecimalPrecision(t *testing.T) {
	statements := []Statement{
		{Type: OperationDeposit, UserID: "u", Amount: decimal.RequireFromString("0.1")},
		{Type: OperationDeposit, UserID: "u", Amount: decimal.RequireFromString("0.2")},
	}
	if got := FoldBalance("u", statements); !got.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("balance=%s want=0.3", got)
	}
}

func TestNewBalanceEmpty(t *testing.T) {
	b := NewBalance("u", nil, true)
	if !b.Amount.IsZero() {
		t.Fatalf("balance=%s want=0", b.Amount)
	}
	if b.Statements == nil || len(b.Statements) != 0 {
		t.Fatalf("statements=%v want empty non-nil", b.Statements)
	}

	if b := NewBalance("u", nil, false); b.Statements != nil {
		t.Fatalf("statements should be omitted, got %v", b.Statements)
	}
}

func TestOperationTypeValid(t *testing.T) {
	for _, op := range []OperationType{OperationDeposit, OperationWithdraw, OperationTransfer} {
		if !op.Valid() {
			t.Fatalf("%s should be valid", op)
		}
	}
	if OperationType("refund").Valid() {
		t.Fatal("refund should be invalid")
	}
}

func TestValidAmount(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"0.0001", true},
		{"10.50000000", true},
		{"9999999999999999.9999", true},
		{"1e3", true},
		{"0", false},
		{"-1", false},
		{"0.00001", false},
		{"1.23456", false},
		{"10000000000000000", false},
		{"1e16", false},
		{"1e30000000", false},
		{"1e-30000000", false},
	}
	for _, tc := range cases {
		if got := ValidAmount(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Errorf("ValidAmount(%s)=%v want=%v", tc.in, got, tc.want)
		}
	}
}
