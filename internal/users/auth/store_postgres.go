// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/lexica/internal/platform/database/schema"
	"github.com/taibuivan/lexica/internal/platform/dberr"
	"github.com/taibuivan/lexica/internal/platform/sec"
)

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a PostgreSQL [AccountRepository].
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

/*
Create persists a new row into users.account.

Description: Timestamps are initialised when unset. Uniqueness of username and
email is left to the table constraints, which are reported as typed
[*dberr.UniqueViolation] errors.
*/
func (repository *PostgresAccountRepository) Create(ctx context.Context, account *Account) error {
	table := schema.UserAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		table.Table, strings.Join(table.Columns(), ", "),
	)

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		string(account.Role),
		account.DisplayName,
		account.CreatedAt,
		account.UpdatedAt,
	)
	return dberr.Wrap(err, "insert_account")
}

// FindByLogin looks an account up by username or email.
func (repository *PostgresAccountRepository) FindByLogin(ctx context.Context, login string) (*Account, error) {
	table := schema.UserAccount
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 OR lower(%s) = lower($1)
		LIMIT 1`,
		strings.Join(table.Columns(), ", "), table.Table, table.Username, table.Email,
	)

	var (
		account Account
		role    string
	)
	err := repository.pool.QueryRow(ctx, query, login).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&role,
		&account.DisplayName,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_account")
	}

	account.Role = sec.UserRole(role)
	return &account, nil
}

// TouchLogin stamps lastloginat.
func (repository *PostgresAccountRepository) TouchLogin(ctx context.Context, id string) error {
	table := schema.UserAccount
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`, table.Table, table.LastLoginAt, table.ID)

	_, err := repository.pool.Exec(ctx, query, id)
	return dberr.Wrap(err, "touch_account_login")
}
