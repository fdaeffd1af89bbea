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

package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/campushaiti/campushaiti/internal/audit"
	"github.com/campushaiti/campushaiti/internal/authz"
	"github.com/campushaiti/campushaiti/internal/id"
	"github.com/campushaiti/campushaiti/internal/notify"
)

const minPasswordLength = 10

// Service provides account business logic.
type Service struct {
	repo            UserRepository
	invites         InvitationRepository
	hasher          *PasswordHasher
	mailer          notify.Mailer
	auditLogger     audit.Logger
	maxLoginRetries int
	lockoutFor      time.Duration
	inviteTTL       time.Duration
}

// NewService creates a new identity service.
func NewService(
	repo UserRepository,
	invites InvitationRepository,
	hasher *PasswordHasher,
	mailer notify.Mailer,
	auditLogger audit.Logger,
	maxLoginRetries int,
	lockoutFor time.Duration,
	inviteTTL time.Duration,
) *Service {
	return &Service{
		repo:            repo,
		invites:         invites,
		hasher:          hasher,
		mailer:          mailer,
		auditLogger:     auditLogger,
		maxLoginRetries: maxLoginRetries,
		lockoutFor:      lockoutFor,
		inviteTTL:       inviteTTL,
	}
}

// Register creates a self-service applicant account. Roles other than
// applicant are only reachable through invitations or AssignRole.
func (s *Service) Register(ctx context.Context, email, password, givenName, familyName, locale string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	// Hash before touching the store; a row without credentials would
	// leave the email unusable.
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:         id.NewUUIDv7(),
		Email:      email,
		Role:       authz.RoleApplicant,
		GivenName:  givenName,
		FamilyName: familyName,
		Locale:     locale,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := s.repo.SetCredentials(ctx, user.ID, hash); err != nil {
		_ = s.repo.Delete(ctx, user.ID)
		return nil, fmt.Errorf("set credentials: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		ActorID:  user.ID,
		Resource: "user",
		Metadata: map[string]any{"email": user.Email, "role": string(user.Role)},
	})

	return user, nil
}

// Authenticate verifies credentials, enforcing the lockout policy.
// Any failure path returns ErrInvalidCredentials or ErrAccountLocked;
// callers must not distinguish unknown users from wrong passwords.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if user.Locked(now) {
		return nil, ErrAccountLocked
	}

	hash, err := s.repo.GetCredentials(ctx, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, hash)
	if err != nil || !ok {
		attempts := user.FailedLoginAttempts + 1
		var lockedUntil *time.Time
		if attempts >= s.maxLoginRetries {
			until := now.Add(s.lockoutFor)
			lockedUntil = &until
			s.auditLogger.Log(ctx, audit.Event{
				Type:     audit.TypeUserLocked,
				ActorID:  user.ID,
				Resource: "user",
				Metadata: map[string]any{"failed_attempts": attempts},
			})
		}
		// Best effort: a failed counter update must not mask the auth failure.
		_ = s.repo.UpdateLockout(ctx, user.ID, attempts, lockedUntil)
		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		_ = s.repo.UpdateLockout(ctx, user.ID, 0, nil)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// ListUsers returns a page of users.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, error) {
	return s.repo.List(ctx, limit, offset)
}

// ChangePassword updates a password after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	hash, err := s.repo.GetCredentials(ctx, userID)
	if err != nil {
		return ErrInvalidCredentials
	}
	ok, err := s.hasher.Verify(oldPassword, hash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.SetCredentials(ctx, userID, newHash); err != nil {
		return fmt.Errorf("set credentials: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePasswordChanged,
		ActorID:  userID,
		Resource: "user_credentials",
	})
	return nil
}

// AssignRole changes a user's role. School admins must carry a school;
// every other role must not.
func (s *Service) AssignRole(ctx context.Context, actorID, userID string, role authz.Role, schoolID string) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	if role == authz.RoleSchoolAdmin && schoolID == "" {
		return ErrSchoolAdminNoSchool
	}
	if role != authz.RoleSchoolAdmin {
		schoolID = ""
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	user.Role = role
	user.SchoolID = schoolID
	user.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleAssigned,
		SchoolID: schoolID,
		ActorID:  actorID,
		Resource: "user",
		Metadata: map[string]any{"user_id": userID, "role": string(role)},
	})
	return nil
}

// Invite creates an invitation and emails its acceptance link.
// Mail delivery is best effort; the invitation exists either way.
func (s *Service) Invite(ctx context.Context, actorID, email string, role authz.Role, schoolID string) (*Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if role == authz.RoleSchoolAdmin && schoolID == "" {
		return nil, ErrSchoolAdminNoSchool
	}

	token, err := newInviteToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inv := &Invitation{
		ID:        id.NewUUIDv7(),
		Email:     email,
		Role:      role,
		SchoolID:  schoolID,
		Token:     token,
		InvitedBy: actorID,
		ExpiresAt: now.Add(s.inviteTTL),
		CreatedAt: now,
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.mailer.Send(ctx, notify.InvitationMessage(email, string(role), token))

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeInvitationSent,
		SchoolID: schoolID,
		ActorID:  actorID,
		Resource: "invitation",
		Metadata: map[string]any{"email": email, "role": string(role)},
	})
	return inv, nil
}

// ListInvitations returns a page of invitations.
func (s *Service) ListInvitations(ctx context.Context, limit, offset int) ([]*Invitation, error) {
	return s.invites.List(ctx, limit, offset)
}

// RevokeInvitation deletes a pending invitation.
func (s *Service) RevokeInvitation(ctx context.Context, invitationID string) error {
	return s.invites.Delete(ctx, invitationID)
}

// AcceptInvite redeems a token and creates the invited account.
func (s *Service) AcceptInvite(ctx context.Context, token, password, givenName, familyName string) (*User, error) {
	inv, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return nil, ErrInviteNotFound
	}
	if inv.AcceptedAt != nil {
		return nil, ErrInviteAlreadyUsed
	}
	now := time.Now()
	if now.After(inv.ExpiresAt) {
		return nil, ErrInviteExpired
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if existing, err := s.repo.GetByEmail(ctx, inv.Email); err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:         id.NewUUIDv7(),
		Email:      inv.Email,
		Role:       inv.Role,
		SchoolID:   inv.SchoolID,
		GivenName:  givenName,
		FamilyName: familyName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := s.repo.SetCredentials(ctx, user.ID, hash); err != nil {
		_ = s.repo.Delete(ctx, user.ID)
		return nil, fmt.Errorf("set credentials: %w", err)
	}

	if err := s.invites.MarkAccepted(ctx, inv.ID, now); err != nil {
		return nil, fmt.Errorf("mark invitation accepted: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeInvitationAccepted,
		SchoolID: inv.SchoolID,
		ActorID:  user.ID,
		Resource: "invitation",
		Metadata: map[string]any{"email": inv.Email, "role": string(inv.Role)},
	})
	return user, nil
}

func newInviteToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate invite token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// IsNotFound reports whether err is one of the not-found sentinels,
// letting handlers map persistence misses to 404 uniformly.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInviteNotFound)
}
