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

	"github.com/campushaiti/campushaiti/internal/platform"
)

// SettingsRepository implements platform.SettingsRepository
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves a setting by key
func (r *SettingsRepository) Get(ctx context.Context, key string) (*platform.Setting, error) {
	var s platform.Setting
	err := r.db.pool.QueryRow(ctx, `
		SELECT key, value, COALESCE(updated_by::text, ''), updated_at FROM settings WHERE key = $1
	`, key).Scan(&s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, platform.ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan setting: %w", err)
	}
	return &s, nil
}

// Set upserts a setting
func (r *SettingsRepository) Set(ctx context.Context, setting *platform.Setting) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_by, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
	`, setting.Key, setting.Value, nullString(setting.UpdatedBy), setting.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}

// List returns every setting
func (r *SettingsRepository) List(ctx context.Context) ([]*platform.Setting, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT key, value, COALESCE(updated_by::text, ''), updated_at FROM settings ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var settings []*platform.Setting
	for rows.Next() {
		var s platform.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}

// Delete removes a setting
func (r *SettingsRepository) Delete(ctx context.Context, key string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM settings WHERE key = $1
	`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return platform.ErrSettingNotFound
	}
	return nil
}
