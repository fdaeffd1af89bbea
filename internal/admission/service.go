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

package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/campushaiti/campushaiti/internal/audit"
	"github.com/campushaiti/campushaiti/internal/id"
	"github.com/campushaiti/campushaiti/internal/identity"
	"github.com/campushaiti/campushaiti/internal/notify"
	"github.com/campushaiti/campushaiti/internal/school"
)

const maxDocumentBytes = 10 << 20

// documentKinds lists the accepted document categories.
var documentKinds = map[string]bool{
	"transcript": true,
	"id_card":    true,
	"diploma":    true,
	"photo":      true,
	"other":      true,
}

// Board is a school's review view: applications grouped by status.
type Board struct {
	Columns map[Status][]*Application
	Counts  map[Status]int
}

// Service provides the application lifecycle.
type Service struct {
	repo        Repository
	documents   DocumentRepository
	programs    school.ProgramRepository
	schools     school.Repository
	users       identity.UserRepository
	mailer      notify.Mailer
	auditLogger audit.Logger
}

// NewService creates a new admission service.
func NewService(
	repo Repository,
	documents DocumentRepository,
	programs school.ProgramRepository,
	schools school.Repository,
	users identity.UserRepository,
	mailer notify.Mailer,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		repo:        repo,
		documents:   documents,
		programs:    programs,
		schools:     schools,
		users:       users,
		mailer:      mailer,
		auditLogger: auditLogger,
	}
}

// CreateDraft opens a draft application to a program. One application per
// applicant per program; the fee status starts waived when the program
// charges no fee.
func (s *Service) CreateDraft(ctx context.Context, applicantID, programID string) (*Application, error) {
	program, err := s.programs.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !program.Active {
		return nil, school.ErrProgramNotFound
	}

	exists, err := s.repo.ExistsForProgram(ctx, applicantID, programID)
	if err != nil {
		return nil, fmt.Errorf("check existing application: %w", err)
	}
	if exists {
		return nil, ErrDuplicateApplication
	}

	feeStatus := FeeUnpaid
	if program.AppFeeCents == 0 {
		feeStatus = FeeWaived
	}

	now := time.Now()
	app := &Application{
		ID:          id.NewUUIDv7(),
		ApplicantID: applicantID,
		SchoolID:    program.SchoolID,
		ProgramID:   programID,
		Status:      StatusDraft,
		FeeStatus:   feeStatus,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

// Get retrieves an application. Access control is the caller's concern.
func (s *Service) Get(ctx context.Context, applicationID string) (*Application, error) {
	return s.repo.GetByID(ctx, applicationID)
}

// UpdateDraft replaces the applicant-editable fields of a draft.
func (s *Service) UpdateDraft(ctx context.Context, applicationID string, fields Application) (*Application, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != StatusDraft {
		return nil, ErrNotDraft
	}

	app.GivenName = fields.GivenName
	app.FamilyName = fields.FamilyName
	app.BirthDate = fields.BirthDate
	app.Phone = fields.Phone
	app.Address = fields.Address
	app.Essay = fields.Essay
	app.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	return app, nil
}

// DeleteDraft discards a draft and its document metadata. Submitted
// applications are part of the school's record and cannot be deleted.
func (s *Service) DeleteDraft(ctx context.Context, applicationID string) error {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.Status != StatusDraft {
		return ErrNotDraft
	}
	return s.repo.Delete(ctx, applicationID)
}

// Submit moves a complete draft into the school's review queue.
func (s *Service) Submit(ctx context.Context, applicationID string) (*Application, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != StatusDraft {
		return nil, ErrAlreadySubmitted
	}
	if !app.Complete() {
		return nil, ErrMissingFields
	}

	program, err := s.programs.GetByID(ctx, app.ProgramID)
	if err != nil {
		return nil, err
	}
	if program.Deadline != nil && time.Now().After(*program.Deadline) {
		return nil, fmt.Errorf("application deadline for %s has passed", program.Name)
	}

	now := time.Now()
	app.Status = StatusSubmitted
	app.SubmittedAt = &now
	app.UpdatedAt = now
	if err := s.repo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeApplicationSubmitted,
		SchoolID: app.SchoolID,
		ActorID:  app.ApplicantID,
		Resource: "application",
		Metadata: map[string]any{"application_id": app.ID, "program_id": app.ProgramID},
	})
	return app, nil
}

// ChangeStatus moves a submitted application through review. Terminal and
// backward moves are rejected; the applicant is notified of the new status.
func (s *Service) ChangeStatus(ctx context.Context, actorID, applicationID string, to Status, note string) (*Application, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(app.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, app.Status, to)
	}

	now := time.Now()
	from := app.Status
	app.Status = to
	if note != "" {
		app.ReviewNote = note
	}
	if to == StatusAccepted || to == StatusRejected {
		app.DecidedAt = &now
	}
	app.UpdatedAt = now
	if err := s.repo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	s.notifyStatusChange(ctx, app)

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeStatusChanged,
		SchoolID: app.SchoolID,
		ActorID:  actorID,
		Resource: "application",
		Metadata: map[string]any{
			"application_id": app.ID,
			"from":           string(from),
			"to":             string(to),
		},
	})
	return app, nil
}

func (s *Service) notifyStatusChange(ctx context.Context, app *Application) {
	user, err := s.users.GetByID(ctx, app.ApplicantID)
	if err != nil {
		return
	}
	schoolName := "the school"
	if sch, err := s.schools.GetByID(ctx, app.SchoolID); err == nil {
		schoolName = sch.Name
	}
	s.mailer.Send(ctx, notify.StatusChangedMessage(user.Email, schoolName, string(app.Status)))
}

// MarkFeePaid records an offline fee payment against an application.
func (s *Service) MarkFeePaid(ctx context.Context, actorID, applicationID string) error {
	return s.settleFee(ctx, actorID, applicationID, FeePaid)
}

// WaiveFee marks an application fee as waived.
func (s *Service) WaiveFee(ctx context.Context, actorID, applicationID string) error {
	return s.settleFee(ctx, actorID, applicationID, FeeWaived)
}

func (s *Service) settleFee(ctx context.Context, actorID, applicationID string, status FeeStatus) error {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.FeeStatus != FeeUnpaid {
		return ErrFeeAlreadySettled
	}

	app.FeeStatus = status
	app.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, app); err != nil {
		return fmt.Errorf("update application: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeFeeRecorded,
		SchoolID: app.SchoolID,
		ActorID:  actorID,
		Resource: "application",
		Metadata: map[string]any{"application_id": app.ID, "fee_status": string(status)},
	})
	return nil
}

// ListMine returns an applicant's own applications, drafts included.
func (s *Service) ListMine(ctx context.Context, applicantID string) ([]*Application, error) {
	return s.repo.ListByApplicant(ctx, applicantID)
}

// ListForSchool returns a school's applications, optionally filtered by
// status. Drafts never appear here.
func (s *Service) ListForSchool(ctx context.Context, schoolID string, status Status, limit, offset int) ([]*Application, error) {
	return s.repo.ListBySchool(ctx, schoolID, status, limit, offset)
}

// ListAll returns applications across every school, for platform staff.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*Application, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

// ReviewBoard builds a school's board: one column per review status.
func (s *Service) ReviewBoard(ctx context.Context, schoolID string) (*Board, error) {
	counts, err := s.repo.CountBySchoolStatus(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}

	board := &Board{
		Columns: make(map[Status][]*Application, len(ReviewStatuses)),
		Counts:  counts,
	}
	for _, status := range ReviewStatuses {
		apps, err := s.repo.ListBySchool(ctx, schoolID, status, 200, 0)
		if err != nil {
			return nil, fmt.Errorf("list %s applications: %w", status, err)
		}
		board.Columns[status] = apps
	}
	return board, nil
}

// AttachDocument records document metadata against a draft or submitted
// application.
func (s *Service) AttachDocument(ctx context.Context, applicationID, kind, fileName, contentType string, sizeBytes int64, storageKey string) (*Document, error) {
	if !documentKinds[kind] {
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}
	if sizeBytes <= 0 || sizeBytes > maxDocumentBytes {
		return nil, fmt.Errorf("document size %d out of range", sizeBytes)
	}
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.DecidedAt != nil {
		return nil, ErrInvalidTransition
	}

	doc := &Document{
		ID:            id.NewUUIDv7(),
		ApplicationID: applicationID,
		Kind:          kind,
		FileName:      fileName,
		ContentType:   contentType,
		SizeBytes:     sizeBytes,
		StorageKey:    storageKey,
		UploadedAt:    time.Now(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// GetDocument retrieves document metadata.
func (s *Service) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	return s.documents.GetByID(ctx, documentID)
}

// RemoveDocument deletes a document from an undecided application.
func (s *Service) RemoveDocument(ctx context.Context, documentID string) error {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	app, err := s.repo.GetByID(ctx, doc.ApplicationID)
	if err != nil {
		return err
	}
	if app.DecidedAt != nil {
		return ErrInvalidTransition
	}
	return s.documents.Delete(ctx, documentID)
}

// ListDocuments returns an application's documents.
func (s *Service) ListDocuments(ctx context.Context, applicationID string) ([]*Document, error) {
	return s.documents.ListByApplication(ctx, applicationID)
}
