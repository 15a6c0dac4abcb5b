// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vhminh/atrium/internal/platform/apperr"
	"github.com/vhminh/atrium/internal/platform/dberr"
)

// errAccountNotFound is returned for absent, inactive, and soft-deleted
// accounts alike; the three cases are indistinguishable to callers.
var errAccountNotFound = apperr.New(
	apperr.CodeNotFound, "User not found with this email", http.StatusNotFound)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
FindActiveByEmail retrieves an active user record by their unique email address.

Description: Case-insensitive lookup on the account table joined with the role
table, filtering out inactive and soft-deleted users.

Parameters:
  - context: context.Context
  - email: string (already normalized)

Returns:
  - *User: Hydrated account entity with role name resolved
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindActiveByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT a.id, a.email, a.passwordhash, a.firstname, a.roleid, r.name,
		       a.isactive, a.createdat, a.updatedat, a.deletedat
		FROM users.account a
		JOIN users.role r ON r.id = a.roleid
		WHERE lower(a.email) = $1 AND a.isactive = TRUE AND a.deletedat IS NULL`

	user := &User{}
	err := repository.pool.QueryRow(context, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.RoleID,
		&user.RoleName,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(
			fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err),
			errAccountNotFound,
		)
	}

	return user, nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: apperr.NotFound if the account vanished, or execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
