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
	"errors"
	"time"

	"github.com/campushaiti/campushaiti/internal/authz"
)

// Domain errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrWeakPassword        = errors.New("password does not meet security requirements")
	ErrAccountLocked       = errors.New("account is locked")
	ErrInviteNotFound      = errors.New("invitation not found")
	ErrInviteExpired       = errors.New("invitation expired")
	ErrInviteAlreadyUsed   = errors.New("invitation already accepted")
	ErrSchoolAdminNoSchool = errors.New("school admin requires a school")
)

// User represents an account on the platform. Role is the coarse identity
// category; everything a user may do derives from it through the static
// permission table. SchoolID is set only for school admins.
type User struct {
	ID                  string
	Email               string
	Role                authz.Role
	SchoolID            string
	GivenName           string
	FamilyName          string
	Locale              string
	FailedLoginAttempts int
	LockedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

// Locked reports whether the account is currently locked out.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Invitation lets a platform admin (or a school admin, for their own
// school) grant a role by email. Accepting creates the user with the
// invited role; the token is single-use.
type Invitation struct {
	ID         string
	Email      string
	Role       authz.Role
	SchoolID   string
	Token      string
	InvitedBy  string
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	CreatedAt  time.Time
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateLockout(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time) error
	List(ctx context.Context, limit, offset int) ([]*User, error)
	Delete(ctx context.Context, id string) error

	GetCredentials(ctx context.Context, userID string) (string, error)
	SetCredentials(ctx context.Context, userID, passwordHash string) error
}

// InvitationRepository defines the interface for invitation persistence.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	MarkAccepted(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]*Invitation, error)
	Delete(ctx context.Context, id string) error
}
