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

// SchoolRepository implements school.Repository
type SchoolRepository struct {
	db *DB
}

// NewSchoolRepository creates a new school repository
func NewSchoolRepository(db *DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

const schoolColumns = `id, slug, name, city, description, locale, created_at, updated_at`

func scanSchool(row pgx.Row) (*school.School, error) {
	var s school.School
	err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.City, &s.Description, &s.Locale, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, school.ErrSchoolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan school: %w", err)
	}
	return &s, nil
}

// Create stores a new school
func (r *SchoolRepository) Create(ctx context.Context, s *school.School) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO schools (id, slug, name, city, description, locale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, s.ID, s.Slug, s.Name, s.City, s.Description, s.Locale, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert school: %w", err)
	}
	return nil
}

// GetByID retrieves a school by ID
func (r *SchoolRepository) GetByID(ctx context.Context, schoolID string) (*school.School, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+schoolColumns+` FROM schools WHERE id = $1
	`, schoolID)
	return scanSchool(row)
}

// GetBySlug retrieves a school by its subdomain slug
func (r *SchoolRepository) GetBySlug(ctx context.Context, slug string) (*school.School, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+schoolColumns+` FROM schools WHERE slug = $1
	`, slug)
	return scanSchool(row)
}

// Update updates a school's mutable fields. Slug never changes.
func (r *SchoolRepository) Update(ctx context.Context, s *school.School) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE schools SET name = $2, city = $3, description = $4, locale = $5, updated_at = $6
		WHERE id = $1
	`, s.ID, s.Name, s.City, s.Description, s.Locale, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update school: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return school.ErrSchoolNotFound
	}
	return nil
}

// List returns a page of schools ordered by name
func (r *SchoolRepository) List(ctx context.Context, limit, offset int) ([]*school.School, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+schoolColumns+` FROM schools ORDER BY name LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query schools: %w", err)
	}
	defer rows.Close()

	var schools []*school.School
	for rows.Next() {
		s, err := scanSchool(rows)
		if err != nil {
			return nil, err
		}
		schools = append(schools, s)
	}
	return schools, rows.Err()
}
