package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/securebank/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Register(t *testing.T) {
	bank := newFakeBank()
	a, out := newTestApp(t, bank, "alice", "s3cret", "alice", "other")

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "s3cret", bank.users["alice"])
	assert.Contains(t, out.String(), "Account alice created")

	require.ErrorIs(t, a.Register(context.Background()), common.ErrAlreadyExists)
	assert.Contains(t, out.String(), "That username is taken.")
}

func TestApp_LoginWithRetry(t *testing.T) {
	bank := newFakeBank()
	bank.users["alice"] = "s3cret"
	a, out := newTestApp(t, bank, "alice", "s3cret", "000000", "123456")

	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(alice) ", a.getStatus())
	assert.Contains(t, out.String(), "A one-time code was sent to outbox file test.txt.")
	assert.Contains(t, out.String(), "Wrong code, try again.")
	assert.NotContains(t, out.String(), "123456", "the code is never echoed")
}

func TestApp_LoginBadPassword(t *testing.T) {
	bank := newFakeBank()
	bank.users["alice"] = "s3cret"
	a, out := newTestApp(t, bank, "alice", "nope")

	require.ErrorIs(t, a.Login(context.Background()), common.ErrInvalidCredentials)
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Invalid username or password.")
	assert.NotContains(t, bank.calls, "confirm")
}

func TestApp_LoginCancelAbandonsAttempt(t *testing.T) {
	bank := newFakeBank()
	bank.users["alice"] = "s3cret"
	a, out := newTestApp(t, bank, "alice", "s3cret", "")

	require.NoError(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, bank.calls, "abandon")
	assert.Empty(t, bank.attempts)
	assert.Contains(t, out.String(), "Login cancelled.")
}

func TestApp_LedgerCommands(t *testing.T) {
	bank := newFakeBank()
	bank.users["alice"] = "s3cret"
	a, out := newTestApp(t, bank,
		"alice", "s3cret", "123456",
		"100", "40", "100", "abc",
	)
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	require.NoError(t, a.Deposit(ctx))
	require.NoError(t, a.Withdraw(ctx))
	require.ErrorIs(t, a.Withdraw(ctx), common.ErrInsufficientFunds)
	require.ErrorIs(t, a.Deposit(ctx), common.ErrInvalidAmount)
	require.NoError(t, a.Balance(ctx))
	require.NoError(t, a.History(ctx))

	s := out.String()
	assert.Contains(t, s, "deposit of 100.00 recorded (#1). Balance: 100.00")
	assert.Contains(t, s, "withdraw of 40.00 recorded (#2). Balance: 60.00")
	assert.Contains(t, s, "Insufficient funds.")
	assert.Contains(t, s, "Amount must be a positive number")
	assert.Contains(t, s, "Balance: 60.00")
	assert.Contains(t, s, "-40.00")
}

func TestApp_AmountOutOfRangeNeverReachesLedger(t *testing.T) {
	bank := newFakeBank()
	bank.users["alice"] = "s3cret"
	a, out := newTestApp(t, bank,
		"alice", "s3cret", "123456",
		"1e200000000", "0.0000000000000000001", "1000000000000000000",
	)
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	require.ErrorIs(t, a.Deposit(ctx), common.ErrInvalidAmount)
	require.ErrorIs(t, a.Withdraw(ctx), common.ErrInvalidAmount)
	require.ErrorIs(t, a.Deposit(ctx), common.ErrInvalidAmount)

	assert.Empty(t, bank.txs)
	assert.Contains(t, out.String(), "at most 18 digits before and 18 after the decimal point")
}

func TestApp_ExpiredSessionIsDropped(t *testing.T) {
	bank := newFakeBank()
	bank.users["alice"] = "s3cret"
	a, out := newTestApp(t, bank, "alice", "s3cret", "123456")
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	delete(bank.tokens, a.token)

	require.ErrorIs(t, a.Balance(ctx), common.ErrInvalidSession)
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Your session has ended.")
}

func TestApp_RunLogsOutOnExit(t *testing.T) {
	bank := newFakeBank()
	bank.users["alice"] = "s3cret"
	a, out := newTestApp(t, bank, "login", "alice", "s3cret", "123456", "balance", "exit")

	a.Run(context.Background())

	assert.Contains(t, out.String(), "Welcome, alice.")
	assert.Contains(t, out.String(), "Bye!")
	assert.Equal(t, "logout", bank.calls[len(bank.calls)-1])
	assert.Empty(t, bank.tokens)
	assert.False(t, a.isLoggedIn())
}
