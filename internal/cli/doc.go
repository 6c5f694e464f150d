// Package cli is the interactive terminal front end of the bank.
//
// It only reads input and prints results: registration, the two-step login
// (password, then the one-time code delivered out of band), deposits,
// withdrawals, balance and statement. All decisions are made by the
// services it is given; the CLI keeps nothing but the current session
// token.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
