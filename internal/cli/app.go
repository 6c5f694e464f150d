package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/securebank/internal/bank/models"
	"github.com/shopspring/decimal"
)

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
}

// Authenticator runs the two-step login and ends sessions.
type Authenticator interface {
	Begin(ctx context.Context, username, password string) (*models.Attempt, error)
	Confirm(ctx context.Context, attemptID, code string) (string, *models.Session, error)
	Abandon(ctx context.Context, attemptID string)
	Logout(ctx context.Context, token string) error
}

// Ledger moves and reports money for a session token.
type Ledger interface {
	Deposit(ctx context.Context, token string, amount decimal.Decimal) (*models.Transaction, error)
	Withdraw(ctx context.Context, token string, amount decimal.Decimal) (*models.Transaction, error)
	Balance(ctx context.Context, token string) (decimal.Decimal, error)
	History(ctx context.Context, token string) ([]models.Transaction, error)
}

type App struct {
	registrar Registrar
	auth      Authenticator
	ledger    Ledger
	// codeHint tells the user where the one-time code was sent.
	codeHint string

	reader *bufio.Reader
	out    io.Writer

	userName string
	token    string
}

func NewApp(r Registrar, a Authenticator, l Ledger, codeHint string, in io.Reader, out io.Writer) *App {
	return &App{
		registrar: r,
		auth:      a,
		ledger:    l,
		codeHint:  codeHint,
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

// Run blocks in the REPL until the user exits or ctx is done. A live session
// is revoked on the way out.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to SecureBank (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)

	if a.isLoggedIn() {
		_ = a.auth.Logout(context.WithoutCancel(ctx), a.token)
		a.clearSession()
	}
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.userName)
}

func (a *App) clearSession() {
	a.token = ""
	a.userName = ""
}
