package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/securebank/internal/bank/models"
	"github.com/dmitrijs2005/securebank/internal/common"
	"github.com/shopspring/decimal"
)

// fakeBank implements Registrar, Authenticator and Ledger in memory.
type fakeBank struct {
	users    map[string]string
	code     string
	attempts map[string]string
	tokens   map[string]string
	txs      []models.Transaction
	calls    []string
}

func newFakeBank() *fakeBank {
	return &fakeBank{
		users:    map[string]string{},
		code:     "123456",
		attempts: map[string]string{},
		tokens:   map[string]string{},
	}
}

func (f *fakeBank) Register(ctx context.Context, username, password string) (*models.User, error) {
	f.calls = append(f.calls, "register")
	if username == "" {
		return nil, common.ErrInvalidInput
	}
	if _, ok := f.users[username]; ok {
		return nil, common.ErrAlreadyExists
	}
	f.users[username] = password
	return &models.User{Username: username}, nil
}

func (f *fakeBank) Begin(ctx context.Context, username, password string) (*models.Attempt, error) {
	f.calls = append(f.calls, "begin")
	if pw, ok := f.users[username]; !ok || pw != password {
		return nil, common.ErrInvalidCredentials
	}
	f.attempts["a1"] = username
	return &models.Attempt{ID: "a1", Username: username, State: models.StatePasswordVerified}, nil
}

func (f *fakeBank) Confirm(ctx context.Context, attemptID, code string) (string, *models.Session, error) {
	f.calls = append(f.calls, "confirm")
	username, ok := f.attempts[attemptID]
	if !ok {
		return "", nil, common.ErrChallengeExpired
	}
	if code != f.code {
		return "", nil, common.ErrChallengeMismatch
	}
	delete(f.attempts, attemptID)
	f.tokens["tok-"+username] = username
	return "tok-" + username, &models.Session{ID: "s1", Username: username}, nil
}

func (f *fakeBank) Abandon(ctx context.Context, attemptID string) {
	f.calls = append(f.calls, "abandon")
	delete(f.attempts, attemptID)
}

func (f *fakeBank) Logout(ctx context.Context, token string) error {
	f.calls = append(f.calls, "logout")
	if _, ok := f.tokens[token]; !ok {
		return common.ErrInvalidSession
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeBank) user(token string) (string, error) {
	u, ok := f.tokens[token]
	if !ok {
		return "", common.ErrInvalidSession
	}
	return u, nil
}

func (f *fakeBank) add(token string, kind models.Kind, amount decimal.Decimal) (*models.Transaction, error) {
	u, err := f.user(token)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}
	if kind == models.KindWithdraw && amount.GreaterThan(models.Fold(f.txs)) {
		return nil, common.ErrInsufficientFunds
	}
	t := models.Transaction{ID: int64(len(f.txs) + 1), Username: u, Kind: kind, Amount: amount, CreatedAt: time.Now()}
	f.txs = append(f.txs, t)
	return &t, nil
}

func (f *fakeBank) Deposit(ctx context.Context, token string, amount decimal.Decimal) (*models.Transaction, error) {
	return f.add(token, models.KindDeposit, amount)
}

func (f *fakeBank) Withdraw(ctx context.Context, token string, amount decimal.Decimal) (*models.Transaction, error) {
	return f.add(token, models.KindWithdraw, amount)
}

func (f *fakeBank) Balance(ctx context.Context, token string) (decimal.Decimal, error) {
	if _, err := f.user(token); err != nil {
		return decimal.Zero, err
	}
	return models.Fold(f.txs), nil
}

func (f *fakeBank) History(ctx context.Context, token string) ([]models.Transaction, error) {
	if _, err := f.user(token); err != nil {
		return nil, err
	}
	return f.txs, nil
}

// newTestApp feeds lines to an App backed by bank. Password prompts read
// from the same input because stdin is never a terminal in tests.
func newTestApp(t *testing.T, bank *fakeBank, lines ...string) (*App, *bytes.Buffer) {
	t.Helper()

	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	return NewApp(bank, bank, bank, "outbox file test.txt", in, &out), &out
}
