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

// Package admission holds applications, their review lifecycle, and the
// documents applicants attach to them.
package admission

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrNotDraft             = errors.New("application is no longer a draft")
	ErrAlreadySubmitted     = errors.New("application already submitted")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrDuplicateApplication = errors.New("an application for this program already exists")
	ErrMissingFields        = errors.New("required fields are missing")
	ErrFeeAlreadySettled    = errors.New("application fee already settled")
)

// Status is the review state of an application.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
	StatusWaitlisted  Status = "waitlisted"
)

// transitions maps each status to the statuses reviewers may move it to.
// Draft moves through Submit, not through a review transition; waitlisted
// applications can still be decided either way.
var transitions = map[Status][]Status{
	StatusSubmitted:   {StatusUnderReview, StatusAccepted, StatusRejected, StatusWaitlisted},
	StatusUnderReview: {StatusAccepted, StatusRejected, StatusWaitlisted},
	StatusWaitlisted:  {StatusAccepted, StatusRejected},
}

// CanTransition reports whether a reviewer may move an application from
// one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ReviewStatuses are the statuses visible on a school's review board, in
// board column order.
var ReviewStatuses = []Status{
	StatusSubmitted,
	StatusUnderReview,
	StatusWaitlisted,
	StatusAccepted,
	StatusRejected,
}

// FeeStatus tracks the application fee lifecycle.
type FeeStatus string

const (
	FeeUnpaid FeeStatus = "unpaid"
	FeePaid   FeeStatus = "paid"
	FeeWaived FeeStatus = "waived"
)

// Application is one candidate's application to one program. SchoolID is
// denormalized from the program so tenant scoping never needs a join.
type Application struct {
	ID          string
	ApplicantID string
	SchoolID    string
	ProgramID   string
	Status      Status
	FeeStatus   FeeStatus

	GivenName  string
	FamilyName string
	BirthDate  *time.Time
	Phone      string
	Address    string
	Essay      string

	ReviewNote  string
	SubmittedAt *time.Time
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Complete reports whether the fields required for submission are filled.
func (a *Application) Complete() bool {
	return a.GivenName != "" && a.FamilyName != "" && a.BirthDate != nil && a.Phone != ""
}

// Document is a file an applicant attached to an application. Only
// metadata lives here; bytes live in the blob store under StorageKey.
type Document struct {
	ID            string
	ApplicationID string
	Kind          string // transcript, id_card, diploma, photo, other
	FileName      string
	ContentType   string
	SizeBytes     int64
	StorageKey    string
	UploadedAt    time.Time
}

// Repository persists applications.
type Repository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, applicationID string) (*Application, error)
	Update(ctx context.Context, app *Application) error
	Delete(ctx context.Context, applicationID string) error
	ListByApplicant(ctx context.Context, applicantID string) ([]*Application, error)
	ListBySchool(ctx context.Context, schoolID string, status Status, limit, offset int) ([]*Application, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Application, error)
	ExistsForProgram(ctx context.Context, applicantID, programID string) (bool, error)
	CountBySchoolStatus(ctx context.Context, schoolID string) (map[Status]int, error)
}

// DocumentRepository persists document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, documentID string) (*Document, error)
	Delete(ctx context.Context, documentID string) error
	ListByApplication(ctx context.Context, applicationID string) ([]*Document, error)
}
