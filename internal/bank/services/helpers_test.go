package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/dmitrijs2005/securebank/internal/bank/config"
	"github.com/dmitrijs2005/securebank/internal/bank/metrics"
	"github.com/dmitrijs2005/securebank/internal/bank/notify"
	"github.com/dmitrijs2005/securebank/internal/bank/repositories/repomanager"
	"github.com/dmitrijs2005/securebank/internal/logging"
	"github.com/dmitrijs2005/securebank/internal/timex"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.KDF = "pbkdf2-sha256"
	cfg.StoreRetryBase = time.Millisecond
	return cfg
}

func openTestDB(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(ON)", url.PathEscape(t.Name()))
	db, m, err := repomanager.Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, m
}

type fixture struct {
	cfg      *config.Config
	clock    *timex.Manual
	notifier *notify.MemoryNotifier
	reg      *prometheus.Registry
	creds    *CredentialService
	gate     *Gate
	ledger   *LedgerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, m := openTestDB(t)
	cfg := testConfig()
	clock := timex.NewManual(start)
	log := logging.Nop()
	reg := prometheus.NewRegistry()
	mtr := metrics.New(reg)
	notifier := notify.NewMemoryNotifier()

	creds, err := NewCredentialService(db, m, cfg, clock, log, mtr)
	require.NoError(t, err)
	gate := NewGate(creds, notifier, cfg, clock, log, mtr)

	return &fixture{
		cfg:      cfg,
		clock:    clock,
		notifier: notifier,
		reg:      reg,
		creds:    creds,
		gate:     gate,
		ledger:   NewLedgerService(db, m, gate, cfg, clock, log, mtr),
	}
}

// login registers username and walks it through both factors.
func (f *fixture) login(t *testing.T, username, password string) string {
	t.Helper()
	ctx := context.Background()

	_, err := f.creds.Register(ctx, username, password)
	require.NoError(t, err)

	attempt, err := f.gate.Begin(ctx, username, password)
	require.NoError(t, err)

	msg, ok := f.notifier.Last(username)
	require.True(t, ok)

	token, _, err := f.gate.Confirm(ctx, attempt.ID, msg.Code)
	require.NoError(t, err)
	return token
}

func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}
