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

	"github.com/campushaiti/campushaiti/internal/admission"
)

// ApplicationRepository implements admission.Repository
type ApplicationRepository struct {
	db *DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `
	id, applicant_id, school_id, program_id, status, fee_status,
	given_name, family_name, birth_date, phone, address, essay,
	review_note, submitted_at, decided_at, created_at, updated_at`

func scanApplication(row pgx.Row) (*admission.Application, error) {
	var a admission.Application
	err := row.Scan(
		&a.ID, &a.ApplicantID, &a.SchoolID, &a.ProgramID, &a.Status, &a.FeeStatus,
		&a.GivenName, &a.FamilyName, &a.BirthDate, &a.Phone, &a.Address, &a.Essay,
		&a.ReviewNote, &a.SubmittedAt, &a.DecidedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, admission.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return &a, nil
}

// Create stores a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *admission.Application) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO applications (
			id, applicant_id, school_id, program_id, status, fee_status,
			given_name, family_name, birth_date, phone, address, essay,
			review_note, submitted_at, decided_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`,
		app.ID, app.ApplicantID, app.SchoolID, app.ProgramID, app.Status, app.FeeStatus,
		app.GivenName, app.FamilyName, app.BirthDate, app.Phone, app.Address, app.Essay,
		app.ReviewNote, app.SubmittedAt, app.DecidedAt, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, applicationID string) (*admission.Application, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT`+applicationColumns+` FROM applications WHERE id = $1
	`, applicationID)
	return scanApplication(row)
}

// Update updates an application
func (r *ApplicationRepository) Update(ctx context.Context, app *admission.Application) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE applications SET
			status = $2, fee_status = $3,
			given_name = $4, family_name = $5, birth_date = $6,
			phone = $7, address = $8, essay = $9,
			review_note = $10, submitted_at = $11, decided_at = $12, updated_at = $13
		WHERE id = $1
	`,
		app.ID, app.Status, app.FeeStatus,
		app.GivenName, app.FamilyName, app.BirthDate,
		app.Phone, app.Address, app.Essay,
		app.ReviewNote, app.SubmittedAt, app.DecidedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return admission.ErrApplicationNotFound
	}
	return nil
}

// Delete removes an application and, through the schema, its documents
func (r *ApplicationRepository) Delete(ctx context.Context, applicationID string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM applications WHERE id = $1
	`, applicationID)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return admission.ErrApplicationNotFound
	}
	return nil
}

// ListByApplicant returns all of one applicant's applications
func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID string) ([]*admission.Application, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT`+applicationColumns+`
		FROM applications
		WHERE applicant_id = $1
		ORDER BY created_at DESC
	`, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	return collectApplications(rows)
}

// ListBySchool returns a school's non-draft applications, optionally by status
func (r *ApplicationRepository) ListBySchool(ctx context.Context, schoolID string, status admission.Status, limit, offset int) ([]*admission.Application, error) {
	query := `
		SELECT` + applicationColumns + `
		FROM applications
		WHERE school_id = $1 AND status <> 'draft'`
	args := []any{schoolID, limit, offset}
	if status != "" {
		query += ` AND status = $4`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at DESC NULLS LAST LIMIT $2 OFFSET $3`

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	return collectApplications(rows)
}

// ListAll returns non-draft applications across every school
func (r *ApplicationRepository) ListAll(ctx context.Context, limit, offset int) ([]*admission.Application, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT`+applicationColumns+`
		FROM applications
		WHERE status <> 'draft'
		ORDER BY submitted_at DESC NULLS LAST
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	return collectApplications(rows)
}

// ExistsForProgram reports whether the applicant already has any
// application to the program
func (r *ApplicationRepository) ExistsForProgram(ctx context.Context, applicantID, programID string) (bool, error) {
	var exists bool
	err := r.db.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM applications WHERE applicant_id = $1 AND program_id = $2)
	`, applicantID, programID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing application: %w", err)
	}
	return exists, nil
}

// CountBySchoolStatus returns per-status counts for a school's board
func (r *ApplicationRepository) CountBySchoolStatus(ctx context.Context, schoolID string) (map[admission.Status]int, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM applications
		WHERE school_id = $1 AND status <> 'draft'
		GROUP BY status
	`, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[admission.Status]int)
	for rows.Next() {
		var status admission.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func collectApplications(rows pgx.Rows) ([]*admission.Application, error) {
	defer rows.Close()

	var apps []*admission.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}
