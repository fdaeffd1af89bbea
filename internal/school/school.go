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

// Package school holds the tenant domain: schools, their programs, and the
// registration flow through which a school becomes a tenant.
package school

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrSchoolNotFound       = errors.New("school not found")
	ErrSlugTaken            = errors.New("slug already in use")
	ErrInvalidSlug          = errors.New("invalid slug")
	ErrReservedSlug         = errors.New("slug is a reserved name")
	ErrProgramNotFound      = errors.New("program not found")
	ErrRegistrationNotFound = errors.New("registration request not found")
	ErrRegistrationDecided  = errors.New("registration request already decided")
)

// School is one university's isolated namespace on the platform. The slug
// doubles as its subdomain and is immutable once the school is created.
type School struct {
	ID          string
	Slug        string
	Name        string
	City        string
	Description string
	Locale      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Program is a course of study applicants apply to.
type Program struct {
	ID           string
	SchoolID     string
	Name         string
	DegreeLevel  string // licence, master, doctorat, certificat
	Description  string
	TuitionCents int64 // HTG
	AppFeeCents  int64 // HTG; 0 means no fee
	Deadline     *time.Time
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Registration request statuses.
const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
)

// RegistrationRequest is a school's application to join the platform.
// Approval is the only path that creates a School.
type RegistrationRequest struct {
	ID           string
	SchoolName   string
	Slug         string
	City         string
	ContactEmail string
	Status       string
	DecidedBy    string
	DecidedAt    *time.Time
	CreatedAt    time.Time
}

// Repository defines the interface for school persistence.
type Repository interface {
	Create(ctx context.Context, s *School) error
	GetByID(ctx context.Context, id string) (*School, error)
	GetBySlug(ctx context.Context, slug string) (*School, error)
	Update(ctx context.Context, s *School) error
	List(ctx context.Context, limit, offset int) ([]*School, error)
}

// ProgramRepository defines the interface for program persistence.
type ProgramRepository interface {
	Create(ctx context.Context, p *Program) error
	GetByID(ctx context.Context, id string) (*Program, error)
	Update(ctx context.Context, p *Program) error
	Delete(ctx context.Context, id string) error
	ListBySchool(ctx context.Context, schoolID string, activeOnly bool) ([]*Program, error)
}

// RegistrationRepository defines the interface for registration requests.
type RegistrationRepository interface {
	Create(ctx context.Context, r *RegistrationRequest) error
	GetByID(ctx context.Context, id string) (*RegistrationRequest, error)
	Update(ctx context.Context, r *RegistrationRequest) error
	List(ctx context.Context, status string, limit, offset int) ([]*RegistrationRequest, error)
	SlugRequested(ctx context.Context, slug string) (bool, error)
}
