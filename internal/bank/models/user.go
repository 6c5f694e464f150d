// Package models holds the persisted and session-level records of the bank.
package models

import "time"

// User is a registered identity. PasswordHash is the derived key produced
// by KDF over the password and Salt; it must never be logged.
type User struct {
	Username     string
	PasswordHash []byte
	Salt         []byte
	KDF          string
	CreatedAt    time.Time
}
