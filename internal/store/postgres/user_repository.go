// Copyright 2026 The Campus Haiti Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campushaiti/campushaiti/internal/identity"
)

// nullString maps "" to NULL for nullable UUID/text columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// UserRepository implements identity.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, email, role, COALESCE(school_id::text, ''), given_name, family_name, locale,
	failed_login_attempts, locked_until, created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (*identity.User, error) {
	var u identity.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Role, &u.SchoolID, &u.GivenName, &u.FamilyName, &u.Locale,
		&u.FailedLoginAttempts, &u.LockedUntil, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, identity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (
			id, email, role, school_id, given_name, family_name, locale,
			failed_login_attempts, locked_until, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		user.ID, user.Email, user.Role, nullString(user.SchoolID),
		user.GivenName, user.FamilyName, user.Locale,
		user.FailedLoginAttempts, user.LockedUntil, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT`+userColumns+`
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return scanUser(row)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT`+userColumns+`
		FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`, email)
	return scanUser(row)
}

// Update updates a user's mutable fields
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE users SET
			email = $2, role = $3, school_id = $4,
			given_name = $5, family_name = $6, locale = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`,
		user.ID, user.Email, user.Role, nullString(user.SchoolID),
		user.GivenName, user.FamilyName, user.Locale, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// UpdateLockout updates the failed-attempt counter and lockout window
func (r *UserRepository) UpdateLockout(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time) error {
	_, err := r.db.pool.Exec(ctx, `
		UPDATE users SET failed_login_attempts = $2, locked_until = $3, updated_at = now()
		WHERE id = $1
	`, userID, failedAttempts, lockedUntil)
	if err != nil {
		return fmt.Errorf("failed to update lockout: %w", err)
	}
	return nil
}

// List returns a page of users
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*identity.User, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT`+userColumns+`
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*identity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Delete soft-deletes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE users SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// GetCredentials returns a user's password hash
func (r *UserRepository) GetCredentials(ctx context.Context, userID string) (string, error) {
	var hash string
	err := r.db.pool.QueryRow(ctx, `
		SELECT password_hash FROM credentials WHERE user_id = $1
	`, userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", identity.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query credentials: %w", err)
	}
	return hash, nil
}

// SetCredentials upserts a user's password hash
func (r *UserRepository) SetCredentials(ctx context.Context, userID, passwordHash string) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO credentials (user_id, password_hash, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to upsert credentials: %w", err)
	}
	return nil
}
