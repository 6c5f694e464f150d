package transactions

import (
	"context"

	"github.com/dmitrijs2005/securebank/internal/bank/models"
)

// Repository is the append-only transaction log. There is deliberately no
// update or delete.
type Repository interface {
	// Append inserts tx and sets tx.ID.
	Append(ctx context.Context, tx *models.Transaction) error

	// ListByUsername returns the user's records in id order.
	ListByUsername(ctx context.Context, username string) ([]models.Transaction, error)
}
