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

// Package platform holds operator-tunable settings stored as key/value
// pairs, such as the maintenance banner or whether self-service school
// registration is open.
package platform

import (
	"context"
	"errors"
	"time"

	"github.com/campushaiti/campushaiti/internal/audit"
)

var ErrSettingNotFound = errors.New("setting not found")

// Well-known setting keys.
const (
	SettingRegistrationOpen  = "registration_open"
	SettingMaintenanceBanner = "maintenance_banner"
	SettingSupportEmail      = "support_email"
)

// Setting is one platform-wide key/value pair.
type Setting struct {
	Key       string
	Value     string
	UpdatedBy string
	UpdatedAt time.Time
}

// SettingsRepository persists settings.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Set(ctx context.Context, setting *Setting) error
	List(ctx context.Context) ([]*Setting, error)
	Delete(ctx context.Context, key string) error
}

// SettingsService reads and writes platform settings.
type SettingsService struct {
	repo        SettingsRepository
	auditLogger audit.Logger
}

func NewSettingsService(repo SettingsRepository, auditLogger audit.Logger) *SettingsService {
	return &SettingsService{repo: repo, auditLogger: auditLogger}
}

// Get returns a setting's value, or fallback when the key is unset.
func (s *SettingsService) Get(ctx context.Context, key, fallback string) (string, error) {
	setting, err := s.repo.Get(ctx, key)
	if errors.Is(err, ErrSettingNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// Set upserts a setting and records who changed it.
func (s *SettingsService) Set(ctx context.Context, actorID, key, value string) error {
	setting := &Setting{
		Key:       key,
		Value:     value,
		UpdatedBy: actorID,
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Set(ctx, setting); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeSettingChanged,
		ActorID:  actorID,
		Resource: "setting",
		Metadata: map[string]any{"key": key},
	})
	return nil
}

// List returns every setting.
func (s *SettingsService) List(ctx context.Context) ([]*Setting, error) {
	return s.repo.List(ctx)
}

// Unset removes a setting, restoring its default behavior.
func (s *SettingsService) Unset(ctx context.Context, actorID, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeSettingChanged,
		ActorID:  actorID,
		Resource: "setting",
		Metadata: map[string]any{"key": key, "unset": true},
	})
	return nil
}
