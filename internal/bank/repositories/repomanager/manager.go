package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/securebank/internal/bank/repositories/transactions"
	"github.com/dmitrijs2005/securebank/internal/bank/repositories/users"
	"github.com/dmitrijs2005/securebank/internal/dbx"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against *sql.DB or inside a *sql.Tx.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Dialect() dbx.Dialect
	Users(db dbx.DBTX) users.Repository
	Transactions(db dbx.DBTX) transactions.Repository
}
