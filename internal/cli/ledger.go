package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securebank/internal/bank/models"
	"github.com/dmitrijs2005/securebank/internal/common"
	"github.com/shopspring/decimal"
)

func (a *App) Deposit(ctx context.Context) error {
	return a.move(ctx, "Amount to deposit", a.ledger.Deposit)
}

func (a *App) Withdraw(ctx context.Context) error {
	return a.move(ctx, "Amount to withdraw", a.ledger.Withdraw)
}

func (a *App) move(ctx context.Context, prompt string,
	op func(ctx context.Context, token string, amount decimal.Decimal) (*models.Transaction, error)) error {
	amount, err := a.readAmount(prompt)
	if err != nil {
		return a.fail(err)
	}

	t, err := op(ctx, a.token, amount)
	if err != nil {
		return a.fail(err)
	}

	balance, err := a.ledger.Balance(ctx, a.token)
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "%s of %s recorded (#%d). Balance: %s\n", t.Kind, t.Amount.StringFixed(2), t.ID, balance.StringFixed(2))
	return nil
}

func (a *App) readAmount(prompt string) (decimal.Decimal, error) {
	text, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return decimal.Zero, err
	}

	amount, err := decimal.NewFromString(text)
	if err != nil || !models.ValidAmount(amount) {
		return decimal.Zero, common.ErrInvalidAmount
	}
	return amount, nil
}

func (a *App) Balance(ctx context.Context) error {
	balance, err := a.ledger.Balance(ctx, a.token)
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Balance: %s\n", balance.StringFixed(2))
	return nil
}

func (a *App) History(ctx context.Context) error {
	txs, err := a.ledger.History(ctx, a.token)
	if err != nil {
		return a.fail(err)
	}

	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions yet.")
		return nil
	}

	running := decimal.Zero
	for _, t := range txs {
		running = running.Add(t.Signed())
		fmt.Fprintf(a.out, "#%-5d %s  %-8s %12s %12s\n",
			t.ID, t.CreatedAt.Local().Format("2006-01-02 15:04:05"), t.Kind, t.Signed().StringFixed(2), running.StringFixed(2))
	}
	return nil
}

// fail reports err to the user and returns it. A session the gate no
// longer accepts is dropped locally too.
func (a *App) fail(err error) error {
	if errors.Is(err, common.ErrInvalidSession) {
		a.clearSession()
	}
	fmt.Fprintln(a.out, describe(err))
	return err
}

// describe turns an error into a message fit for the terminal.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return fmt.Sprintf("Rejected: %v", err)
	case errors.Is(err, common.ErrAlreadyExists):
		return "That username is taken."
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, common.ErrChallengeMismatch):
		return "Wrong code, try again."
	case errors.Is(err, common.ErrChallengeRetriesExhausted):
		return "Too many wrong codes. Please log in again."
	case errors.Is(err, common.ErrChallengeExpired):
		return "The code has expired. Please log in again."
	case errors.Is(err, common.ErrInvalidSession):
		return "Your session has ended. Please log in again."
	case errors.Is(err, common.ErrInvalidAmount):
		return fmt.Sprintf("Amount must be a positive number with at most %d digits before and %d after the decimal point.",
			models.MaxAmountIntDigits, models.MaxAmountScale)
	case errors.Is(err, common.ErrInsufficientFunds):
		return "Insufficient funds."
	case errors.Is(err, common.ErrStoreUnavailable):
		return "The bank is temporarily unavailable. Please try again."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
