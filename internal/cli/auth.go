package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securebank/internal/common"
)

func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return a.fail(err)
	}

	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return a.fail(err)
	}
	defer common.WipeByteArray(password)

	if _, err := a.registrar.Register(ctx, userName, string(password)); err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Account %s created. You can log in now.\n", userName)
	return nil
}

// Login asks for username and password, then for the one-time code until it
// is accepted, the attempt is rejected, or the user enters an empty line.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "Already logged in as %s.\n", a.userName)
		return nil
	}

	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return a.fail(err)
	}

	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return a.fail(err)
	}
	defer common.WipeByteArray(password)

	attempt, err := a.auth.Begin(ctx, userName, string(password))
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "A one-time code was sent to %s.\n", a.codeHint)

	for {
		code, err := GetSimpleText(a.reader, "Enter code (empty line to cancel)", a.out)
		if err != nil || code == "" {
			a.auth.Abandon(ctx, attempt.ID)
			fmt.Fprintln(a.out, "Login cancelled.")
			return err
		}

		token, session, err := a.auth.Confirm(ctx, attempt.ID, code)
		if errors.Is(err, common.ErrChallengeMismatch) {
			fmt.Fprintln(a.out, describe(err))
			continue
		}
		if err != nil {
			return a.fail(err)
		}

		a.token = token
		a.userName = session.Username
		fmt.Fprintf(a.out, "Welcome, %s.\n", session.Username)
		return nil
	}
}

func (a *App) Logout(ctx context.Context) error {
	err := a.auth.Logout(ctx, a.token)
	a.clearSession()
	if err != nil && !errors.Is(err, common.ErrInvalidSession) {
		return a.fail(err)
	}

	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
