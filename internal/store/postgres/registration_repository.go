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

	"github.com/jackc/pgx/v5"

	"github.com/campushaiti/campushaiti/internal/school"
)

// RegistrationRepository implements school.RegistrationRepository
type RegistrationRepository struct {
	db *DB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `
	id, school_name, slug, city, contact_email, status,
	COALESCE(decided_by::text, ''), decided_at, created_at`

func scanRegistration(row pgx.Row) (*school.RegistrationRequest, error) {
	var r school.RegistrationRequest
	err := row.Scan(
		&r.ID, &r.SchoolName, &r.Slug, &r.City, &r.ContactEmail, &r.Status,
		&r.DecidedBy, &r.DecidedAt, &r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, school.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan registration request: %w", err)
	}
	return &r, nil
}

// Create stores a new registration request
func (r *RegistrationRepository) Create(ctx context.Context, req *school.RegistrationRequest) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO registration_requests (id, school_name, slug, city, contact_email, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, req.ID, req.SchoolName, req.Slug, req.City, req.ContactEmail, req.Status, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert registration request: %w", err)
	}
	return nil
}

// GetByID retrieves a registration request by ID
func (r *RegistrationRepository) GetByID(ctx context.Context, requestID string) (*school.RegistrationRequest, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT`+registrationColumns+` FROM registration_requests WHERE id = $1
	`, requestID)
	return scanRegistration(row)
}

// Update records the decision on a request
func (r *RegistrationRepository) Update(ctx context.Context, req *school.RegistrationRequest) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE registration_requests SET status = $2, decided_by = $3, decided_at = $4
		WHERE id = $1
	`, req.ID, req.Status, nullString(req.DecidedBy), req.DecidedAt)
	if err != nil {
		return fmt.Errorf("failed to update registration request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return school.ErrRegistrationNotFound
	}
	return nil
}

// List returns registration requests, optionally filtered by status
func (r *RegistrationRepository) List(ctx context.Context, status string, limit, offset int) ([]*school.RegistrationRequest, error) {
	query := `SELECT` + registrationColumns + ` FROM registration_requests`
	args := []any{limit, offset}
	if status != "" {
		query += ` WHERE status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registration requests: %w", err)
	}
	defer rows.Close()

	var reqs []*school.RegistrationRequest
	for rows.Next() {
		req, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// SlugRequested reports whether a pending request already claims the slug
func (r *RegistrationRepository) SlugRequested(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM registration_requests WHERE slug = $1 AND status = 'pending')
	`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending slug: %w", err)
	}
	return exists, nil
}
