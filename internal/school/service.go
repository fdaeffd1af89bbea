package school

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/campushaiti/campushaiti/internal/audit"
	"github.com/campushaiti/campushaiti/internal/id"
	"github.com/campushaiti/campushaiti/internal/notify"
	"github.com/campushaiti/campushaiti/internal/tenancy"
)

// Service provides school, program and registration business logic.
type Service struct {
	repo          Repository
	programs      ProgramRepository
	registrations RegistrationRepository
	mailer        notify.Mailer
	auditLogger   audit.Logger
}

// NewService creates a new school service.
func NewService(
	repo Repository,
	programs ProgramRepository,
	registrations RegistrationRepository,
	mailer notify.Mailer,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		repo:          repo,
		programs:      programs,
		registrations: registrations,
		mailer:        mailer,
		auditLogger:   auditLogger,
	}
}

// ValidateSlug enforces the slug contract at registration time. The
// resolver trusts this and never re-validates.
func ValidateSlug(slug string) error {
	if !tenancy.ValidSlug(slug) {
		return ErrInvalidSlug
	}
	if tenancy.Reserved(slug) {
		return ErrReservedSlug
	}
	return nil
}

// SubmitRegistration records a school's request to join the platform.
func (s *Service) SubmitRegistration(ctx context.Context, schoolName, slug, city, contactEmail string) (*RegistrationRequest, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(contactEmail); err != nil {
		return nil, fmt.Errorf("invalid contact email: %w", err)
	}

	if _, err := s.repo.GetBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	}
	if pending, err := s.registrations.SlugRequested(ctx, slug); err != nil {
		return nil, fmt.Errorf("check pending registrations: %w", err)
	} else if pending {
		return nil, ErrSlugTaken
	}

	req := &RegistrationRequest{
		ID:           id.NewUUIDv7(),
		SchoolName:   strings.TrimSpace(schoolName),
		Slug:         slug,
		City:         city,
		ContactEmail: strings.ToLower(strings.TrimSpace(contactEmail)),
		Status:       RegistrationPending,
		CreatedAt:    time.Now(),
	}
	if err := s.registrations.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create registration request: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRegistrationReceived,
		Resource: "registration_request",
		Metadata: map[string]any{"slug": slug, "school_name": req.SchoolName},
	})
	return req, nil
}

// ApproveRegistration creates the school tenant from a pending request and
// notifies the contact. The slug is immutable from here on. The decided
// request comes back so callers can invite the contact as the school's
// first admin.
func (s *Service) ApproveRegistration(ctx context.Context, actorID, requestID string) (*School, *RegistrationRequest, error) {
	req, err := s.registrations.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req.Status != RegistrationPending {
		return nil, nil, ErrRegistrationDecided
	}

	now := time.Now()
	sch := &School{
		ID:        id.NewUUIDv7(),
		Slug:      req.Slug,
		Name:      req.SchoolName,
		City:      req.City,
		Locale:    tenancy.DefaultLocale,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, sch); err != nil {
		return nil, nil, fmt.Errorf("create school: %w", err)
	}

	req.Status = RegistrationApproved
	req.DecidedBy = actorID
	req.DecidedAt = &now
	if err := s.registrations.Update(ctx, req); err != nil {
		return nil, nil, fmt.Errorf("update registration request: %w", err)
	}

	s.mailer.Send(ctx, notify.RegistrationDecisionMessage(req.ContactEmail, req.SchoolName, true))

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRegistrationApproved,
		SchoolID: sch.ID,
		ActorID:  actorID,
		Resource: "registration_request",
		Metadata: map[string]any{"slug": sch.Slug},
	})
	return sch, req, nil
}

// RejectRegistration declines a pending request.
func (s *Service) RejectRegistration(ctx context.Context, actorID, requestID string) error {
	req, err := s.registrations.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != RegistrationPending {
		return ErrRegistrationDecided
	}

	now := time.Now()
	req.Status = RegistrationRejected
	req.DecidedBy = actorID
	req.DecidedAt = &now
	if err := s.registrations.Update(ctx, req); err != nil {
		return fmt.Errorf("update registration request: %w", err)
	}

	s.mailer.Send(ctx, notify.RegistrationDecisionMessage(req.ContactEmail, req.SchoolName, false))

	s.auditLogger.Log(ctx, audit.Event{
		Type:    audit.TypeRegistrationRejected,
		ActorID: actorID, Resource: "registration_request",
		Metadata: map[string]any{"slug": req.Slug},
	})
	return nil
}

// ListRegistrations returns registration requests, optionally by status.
func (s *Service) ListRegistrations(ctx context.Context, status string, limit, offset int) ([]*RegistrationRequest, error) {
	return s.registrations.List(ctx, status, limit, offset)
}

// Get retrieves a school by ID.
func (s *Service) Get(ctx context.Context, schoolID string) (*School, error) {
	return s.repo.GetByID(ctx, schoolID)
}

// GetBySlug retrieves a school by its subdomain slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*School, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// List returns a page of schools.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*School, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateProfile updates a school's presentational fields. Slug is not
// among them.
func (s *Service) UpdateProfile(ctx context.Context, schoolID, name, city, description, locale string) (*School, error) {
	sch, err := s.repo.GetByID(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	sch.Name = name
	sch.City = city
	sch.Description = description
	if locale != "" {
		sch.Locale = locale
	}
	sch.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, sch); err != nil {
		return nil, fmt.Errorf("update school: %w", err)
	}
	return sch, nil
}

// CreateProgram adds a program to a school.
func (s *Service) CreateProgram(ctx context.Context, actorID string, p *Program) (*Program, error) {
	if _, err := s.repo.GetByID(ctx, p.SchoolID); err != nil {
		return nil, err
	}

	now := time.Now()
	p.ID = id.NewUUIDv7()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.programs.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeProgramCreated,
		SchoolID: p.SchoolID,
		ActorID:  actorID,
		Resource: "program",
		Metadata: map[string]any{"program_id": p.ID, "name": p.Name},
	})
	return p, nil
}

// GetProgram retrieves a program by ID.
func (s *Service) GetProgram(ctx context.Context, programID string) (*Program, error) {
	return s.programs.GetByID(ctx, programID)
}

// UpdateProgram updates a program in place. The school binding is fixed.
func (s *Service) UpdateProgram(ctx context.Context, actorID string, p *Program) error {
	current, err := s.programs.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.SchoolID = current.SchoolID
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = time.Now()
	if err := s.programs.Update(ctx, p); err != nil {
		return fmt.Errorf("update program: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeProgramUpdated,
		SchoolID: p.SchoolID,
		ActorID:  actorID,
		Resource: "program",
		Metadata: map[string]any{"program_id": p.ID},
	})
	return nil
}

// DeleteProgram removes a program.
func (s *Service) DeleteProgram(ctx context.Context, programID string) error {
	return s.programs.Delete(ctx, programID)
}

// ListPrograms returns a school's programs. Applicant-facing callers pass
// activeOnly.
func (s *Service) ListPrograms(ctx context.Context, schoolID string, activeOnly bool) ([]*Program, error) {
	return s.programs.ListBySchool(ctx, schoolID, activeOnly)
}
