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

// InvitationRepository implements identity.InvitationRepository
type InvitationRepository struct {
	db *DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationColumns = `
	id, email, role, COALESCE(school_id::text, ''), token,
	COALESCE(invited_by::text, ''), expires_at, accepted_at, created_at`

func scanInvitation(row pgx.Row) (*identity.Invitation, error) {
	var inv identity.Invitation
	err := row.Scan(
		&inv.ID, &inv.Email, &inv.Role, &inv.SchoolID, &inv.Token,
		&inv.InvitedBy, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, identity.ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan invitation: %w", err)
	}
	return &inv, nil
}

// Create stores a new invitation
func (r *InvitationRepository) Create(ctx context.Context, inv *identity.Invitation) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO invitations (id, email, role, school_id, token, invited_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		inv.ID, inv.Email, inv.Role, nullString(inv.SchoolID),
		inv.Token, nullString(inv.InvitedBy), inv.ExpiresAt, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invitation: %w", err)
	}
	return nil
}

// GetByToken retrieves an invitation by its token
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*identity.Invitation, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT`+invitationColumns+`
		FROM invitations
		WHERE token = $1
	`, token)
	return scanInvitation(row)
}

// MarkAccepted records that an invitation was used
func (r *InvitationRepository) MarkAccepted(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE invitations SET accepted_at = $2 WHERE id = $1 AND accepted_at IS NULL
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark invitation accepted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrInviteAlreadyUsed
	}
	return nil
}

// List returns a page of invitations, newest first
func (r *InvitationRepository) List(ctx context.Context, limit, offset int) ([]*identity.Invitation, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT`+invitationColumns+`
		FROM invitations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invs []*identity.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

// Delete removes an invitation
func (r *InvitationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM invitations WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrInviteNotFound
	}
	return nil
}
