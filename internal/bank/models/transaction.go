package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Amount bounds. A ledger amount has at most MaxAmountScale fractional
// digits and at most MaxAmountIntDigits integer digits.
const (
	MaxAmountScale     = 18
	MaxAmountIntDigits = 18
)

// ValidAmount reports whether amount is positive and inside the amount
// bounds. It looks only at the coefficient length and the exponent, so a
// value like 1e200000000 is rejected without being expanded.
func ValidAmount(amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}
	exp := amount.Exponent()
	if exp < -MaxAmountScale || exp > MaxAmountIntDigits {
		return false
	}
	return amount.NumDigits()+int(exp) <= MaxAmountIntDigits
}

// Kind is the direction of a ledger record.
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
)

// ParseKind validates a stored kind value.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindDeposit, KindWithdraw:
		return k, nil
	default:
		return "", fmt.Errorf("unknown transaction kind %q", s)
	}
}

// Transaction is one immutable entry of a user's ledger. Amount is always
// positive; Kind carries the sign.
type Transaction struct {
	ID        int64
	Username  string
	Kind      Kind
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// Signed returns the amount with withdrawals negated.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == KindWithdraw {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Fold sums the signed amounts of txs. Callers pass records in id order.
func Fold(txs []Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range txs {
		balance = balance.Add(t.Signed())
	}
	return balance
}
