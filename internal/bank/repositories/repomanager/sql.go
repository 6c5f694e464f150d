// Package repomanager wires the SQL repositories, opens the store and runs
// the embedded goose migrations for the selected dialect.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/securebank/internal/bank/migrations"
	"github.com/dmitrijs2005/securebank/internal/bank/repositories/transactions"
	"github.com/dmitrijs2005/securebank/internal/bank/repositories/users"
	"github.com/dmitrijs2005/securebank/internal/dbx"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager vends database/sql backed repositories for one dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

func NewSQLRepositoryManager(dialect dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect { return m.dialect }

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

// Transactions returns a transactions.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Transactions(db dbx.DBTX) transactions.Repository {
	return transactions.NewSQLRepository(db, m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseDialect := "sqlite3"
	if m.dialect == dbx.DialectPostgres {
		gooseDialect = "postgres"
	}

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	return gooseUpContext(ctx, db, string(m.dialect))
}

// Open connects to the store named by driver ("sqlite" or "pgx") and dsn,
// verifies the connection and migrates the schema.
//
// SQLite gets a single connection: writes are serialized by the pool and
// the ledger's read-check-append transactions never see SQLITE_BUSY.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, RepositoryManager, error) {
	dialect, err := dbx.DialectForDriver(driver)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if dialect == dbx.DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	m := NewSQLRepositoryManager(dialect)
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	return db, m, nil
}
