// Package transactions implements the ledger log repository over database/sql.
package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securebank/internal/bank/models"
	"github.com/dmitrijs2005/securebank/internal/dbx"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Append(ctx context.Context, tx *models.Transaction) error {
	query := r.dialect.Rebind(
		`INSERT INTO transactions (username, kind, amount, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		tx.Username, string(tx.Kind), tx.Amount.String(), tx.CreatedAt.UnixNano()).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListByUsername(ctx context.Context, username string) ([]models.Transaction, error) {
	query := r.dialect.Rebind(
		`SELECT id, username, kind, amount, created_at FROM transactions
		 WHERE username = ?
		 ORDER BY id`)

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Transaction{}
	for rows.Next() {
		var (
			item      models.Transaction
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&item.ID, &item.Username, &kind, &item.Amount, &createdAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if item.Kind, err = models.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("corrupt transaction %d: %w", item.ID, err)
		}
		item.CreatedAt = time.Unix(0, createdAt).UTC()
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
