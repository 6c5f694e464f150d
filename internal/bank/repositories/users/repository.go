package users

import (
	"context"

	"github.com/dmitrijs2005/securebank/internal/bank/models"
)

// Repository persists User records.
type Repository interface {
	// Create inserts user if the username is free. It returns
	// common.ErrAlreadyExists, without touching the existing row, otherwise.
	Create(ctx context.Context, user *models.User) error

	// GetByUsername returns common.ErrorNotFound for unknown usernames.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Lock asserts the user exists and, where the dialect supports it, holds
	// a row lock on it until the surrounding transaction ends.
	Lock(ctx context.Context, username string) error
}
