package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securebank/internal/bank/config"
	"github.com/dmitrijs2005/securebank/internal/bank/metrics"
	"github.com/dmitrijs2005/securebank/internal/bank/models"
	"github.com/dmitrijs2005/securebank/internal/bank/repositories/repomanager"
	"github.com/dmitrijs2005/securebank/internal/common"
	"github.com/dmitrijs2005/securebank/internal/dbx"
	"github.com/dmitrijs2005/securebank/internal/logging"
	"github.com/dmitrijs2005/securebank/internal/timex"
	"github.com/shopspring/decimal"
)

// SessionResolver turns a session token into the session it names.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

// LedgerService appends to and folds over each user's transaction log.
// Every call is addressed by session token; the username comes from the
// session, never from the caller.
type LedgerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    SessionResolver
	locks       *userLocks
	store       storePolicy
	clock       timex.Clock
	log         logging.Logger
	metrics     *metrics.Metrics
}

func NewLedgerService(db *sql.DB, m repomanager.RepositoryManager, sessions SessionResolver, cfg *config.Config,
	clock timex.Clock, log logging.Logger, mtr *metrics.Metrics) *LedgerService {
	return &LedgerService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		locks:       newUserLocks(),
		store:       newStorePolicy(cfg),
		clock:       clock,
		log:         log.With("component", "ledger"),
		metrics:     mtr,
	}
}

// Deposit appends a deposit of amount (> 0).
func (s *LedgerService) Deposit(ctx context.Context, token string, amount decimal.Decimal) (*models.Transaction, error) {
	t, err := s.append(ctx, token, models.KindDeposit, amount)
	s.metrics.Ledger("deposit", outcome(err))
	return t, err
}

// Withdraw appends a withdrawal of amount (> 0) unless it exceeds the
// balance, in which case ErrInsufficientFunds is returned and nothing is
// written. The balance check and the append commit together.
func (s *LedgerService) Withdraw(ctx context.Context, token string, amount decimal.Decimal) (*models.Transaction, error) {
	t, err := s.append(ctx, token, models.KindWithdraw, amount)
	s.metrics.Ledger("withdraw", outcome(err))
	return t, err
}

// Balance folds the user's log in id order.
func (s *LedgerService) Balance(ctx context.Context, token string) (decimal.Decimal, error) {
	txs, err := s.history(ctx, token)
	s.metrics.Ledger("balance", outcome(err))
	if err != nil {
		return decimal.Zero, err
	}
	return models.Fold(txs), nil
}

// History returns the user's transactions in id order.
func (s *LedgerService) History(ctx context.Context, token string) ([]models.Transaction, error) {
	txs, err := s.history(ctx, token)
	s.metrics.Ledger("history", outcome(err))
	return txs, err
}

func (s *LedgerService) history(ctx context.Context, token string) ([]models.Transaction, error) {
	session, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	var txs []models.Transaction
	err = s.store.read(ctx, func(ctx context.Context) error {
		var err error
		txs, err = s.repomanager.Transactions(s.db).ListByUsername(ctx, session.Username)
		return err
	})
	if err != nil {
		s.log.Error(ctx, "history read failed", "username", session.Username, "error", err)
		return nil, err
	}

	return txs, nil
}

func (s *LedgerService) append(ctx context.Context, token string, kind models.Kind, amount decimal.Decimal) (*models.Transaction, error) {
	session, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if !models.ValidAmount(amount) {
		return nil, common.ErrInvalidAmount
	}

	release, err := s.locks.acquire(ctx, session.Username)
	if err != nil {
		s.log.Warn(ctx, "ledger lock not acquired", "username", session.Username, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	defer release()

	t := &models.Transaction{
		Username:  session.Username,
		Kind:      kind,
		Amount:    amount,
		CreatedAt: s.clock.Now().UTC(),
	}

	err = s.store.call(ctx, func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			if err := s.repomanager.Users(tx).Lock(ctx, session.Username); err != nil {
				return err
			}

			txRepo := s.repomanager.Transactions(tx)

			if kind == models.KindWithdraw {
				txs, err := txRepo.ListByUsername(ctx, session.Username)
				if err != nil {
					return err
				}
				if amount.GreaterThan(models.Fold(txs)) {
					return common.ErrInsufficientFunds
				}
			}

			return txRepo.Append(ctx, t)
		})
	})

	switch {
	case err == nil:
		s.log.Info(ctx, "transaction appended", "username", t.Username, "id", t.ID, "kind", string(t.Kind), "amount", t.Amount.String())
		return t, nil
	case errors.Is(err, common.ErrorNotFound):
		s.log.Warn(ctx, "session user missing from store", "username", session.Username)
		return nil, common.ErrInvalidSession
	case errors.Is(err, common.ErrInsufficientFunds):
		s.log.Info(ctx, "withdrawal rejected", "username", session.Username, "amount", amount.String())
		return nil, err
	default:
		s.log.Error(ctx, "append failed", "username", session.Username, "kind", string(kind), "error", err)
		return nil, err
	}
}
