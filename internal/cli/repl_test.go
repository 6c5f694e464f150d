package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Deposit(ctx context.Context) error {
	f.calls = append(f.calls, "deposit")
	return nil
}
func (f *fakeExec) Withdraw(ctx context.Context) error {
	f.calls = append(f.calls, "withdraw")
	return nil
}
func (f *fakeExec) Balance(ctx context.Context) error {
	f.calls = append(f.calls, "balance")
	return nil
}
func (f *fakeExec) History(ctx context.Context) error {
	f.calls = append(f.calls, "history")
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func run(exec *fakeExec, lines ...string) string {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), exec, func() string { return "" }, reader, &out)
	return out.String()
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	exec := &fakeExec{}
	out := run(exec, "help", "balance", "register", "login", "help", "deposit", "withdraw", "", "balance", "history", "foobar", "logout", "exit")

	assert.Equal(t, []string{"register", "login", "deposit", "withdraw", "balance", "history", "logout"}, exec.calls)
	assert.Contains(t, out, "Available commands: register, login, exit")
	assert.Contains(t, out, "Please log in first.")
	assert.Contains(t, out, "Available commands: deposit, withdraw, balance, history, logout, exit")
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "Bye!")
}

func TestRunREPL_EOFEndsLoop(t *testing.T) {
	exec := &fakeExec{loggedIn: true}
	out := run(exec, "balance")

	assert.Equal(t, []string{"balance"}, exec.calls)
	assert.NotContains(t, out, "Bye!")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	exec := &fakeExec{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("register\n")), &out)

	assert.Empty(t, exec.calls)
}
