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

// ProgramRepository implements school.ProgramRepository
type ProgramRepository struct {
	db *DB
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(db *DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

const programColumns = `
	id, school_id, name, degree_level, description,
	tuition_cents, app_fee_cents, deadline, active, created_at, updated_at`

func scanProgram(row pgx.Row) (*school.Program, error) {
	var p school.Program
	err := row.Scan(
		&p.ID, &p.SchoolID, &p.Name, &p.DegreeLevel, &p.Description,
		&p.TuitionCents, &p.AppFeeCents, &p.Deadline, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, school.ErrProgramNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan program: %w", err)
	}
	return &p, nil
}

// Create stores a new program
func (r *ProgramRepository) Create(ctx context.Context, p *school.Program) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO programs (
			id, school_id, name, degree_level, description,
			tuition_cents, app_fee_cents, deadline, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		p.ID, p.SchoolID, p.Name, p.DegreeLevel, p.Description,
		p.TuitionCents, p.AppFeeCents, p.Deadline, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert program: %w", err)
	}
	return nil
}

// GetByID retrieves a program by ID
func (r *ProgramRepository) GetByID(ctx context.Context, programID string) (*school.Program, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT`+programColumns+` FROM programs WHERE id = $1
	`, programID)
	return scanProgram(row)
}

// Update updates a program
func (r *ProgramRepository) Update(ctx context.Context, p *school.Program) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE programs SET
			name = $2, degree_level = $3, description = $4,
			tuition_cents = $5, app_fee_cents = $6, deadline = $7, active = $8, updated_at = $9
		WHERE id = $1
	`,
		p.ID, p.Name, p.DegreeLevel, p.Description,
		p.TuitionCents, p.AppFeeCents, p.Deadline, p.Active, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return school.ErrProgramNotFound
	}
	return nil
}

// Delete removes a program
func (r *ProgramRepository) Delete(ctx context.Context, programID string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM programs WHERE id = $1
	`, programID)
	if err != nil {
		return fmt.Errorf("failed to delete program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return school.ErrProgramNotFound
	}
	return nil
}

// ListBySchool returns a school's programs, optionally only active ones
func (r *ProgramRepository) ListBySchool(ctx context.Context, schoolID string, activeOnly bool) ([]*school.Program, error) {
	query := `SELECT` + programColumns + ` FROM programs WHERE school_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.pool.Query(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	var programs []*school.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}
