// Package users implements the user repository over database/sql.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securebank/internal/bank/models"
	"github.com/dmitrijs2005/securebank/internal/common"
	"github.com/dmitrijs2005/securebank/internal/dbx"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) error {
	query := r.dialect.Rebind(
		`INSERT INTO users (username, password_hash, salt, kdf, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (username) DO NOTHING`)

	res, err := r.db.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.Salt, user.KDF, user.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrAlreadyExists
	}
	return nil
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := r.dialect.Rebind(
		`SELECT username, password_hash, salt, kdf, created_at FROM users
		 WHERE username = ?`)

	user := &models.User{}
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&user.Username, &user.PasswordHash, &user.Salt, &user.KDF, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.CreatedAt = time.Unix(0, createdAt).UTC()

	return user, nil
}

func (r *SQLRepository) Lock(ctx context.Context, username string) error {
	query := `SELECT username FROM users WHERE username = ?`
	if r.dialect == dbx.DialectPostgres {
		query += ` FOR UPDATE`
	}

	var got string
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), username).Scan(&got)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
