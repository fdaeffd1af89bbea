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

package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campushaiti/campushaiti/internal/authz"
	"github.com/campushaiti/campushaiti/internal/observability/logger"
	"github.com/campushaiti/campushaiti/internal/school"
)

// ListSchools returns the public school directory
// @Summary List schools
// @Description Public directory of registered schools
// @Tags Schools
// @Produce json
// @Success 200 {array} map[string]any
// @Router /schools [get]
func (h *Handler) ListSchools(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	schools, err := h.schoolService.List(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list schools", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list schools")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"schools": schools})
}

// CurrentSchool returns the tenant school's public profile
// @Summary Current school
// @Description Profile of the school resolved from the subdomain
// @Tags Schools
// @Produce json
// @Param X-School-Slug header string true "Tenant slug (set by the router)"
// @Success 200 {object} map[string]any
// @Router /school [get]
func (h *Handler) CurrentSchool(w http.ResponseWriter, r *http.Request) {
	sch, _ := GetSchool(r.Context())
	respondJSON(w, http.StatusOK, sch)
}

// UpdateSchoolRequest carries editable school profile fields
type UpdateSchoolRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	City        string `json:"city" validate:"max=100"`
	Description string `json:"description" validate:"max=5000"`
	Locale      string `json:"locale" validate:"omitempty,oneof=en fr ht"`
}

// UpdateSchoolProfile updates the tenant school's profile
func (h *Handler) UpdateSchoolProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateSchoolRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sch, _ := GetSchool(r.Context())
	updated, err := h.schoolService.UpdateProfile(r.Context(), sch.ID, req.Name, req.City, req.Description, req.Locale)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to update school", logger.SchoolID(sch.ID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to update school")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// ListPrograms returns the tenant school's programs. Applicants see only
// active programs; staff see everything.
func (h *Handler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	sch, _ := GetSchool(r.Context())

	activeOnly := true
	if principal, ok := GetPrincipal(r.Context()); ok &&
		authz.HasPermission(principal.Role, authz.PermManagePrograms) &&
		principal.SchoolID == sch.ID {
		activeOnly = false
	}

	programs, err := h.schoolService.ListPrograms(r.Context(), sch.ID, activeOnly)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list programs", logger.SchoolID(sch.ID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list programs")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"programs": programs})
}

// GetProgram returns one of the tenant school's programs
func (h *Handler) GetProgram(w http.ResponseWriter, r *http.Request) {
	sch, _ := GetSchool(r.Context())
	program, err := h.schoolService.GetProgram(r.Context(), chi.URLParam(r, "programID"))
	if err != nil || program.SchoolID != sch.ID {
		respondError(w, http.StatusNotFound, "program not found")
		return
	}
	respondJSON(w, http.StatusOK, program)
}

// ProgramRequest carries program fields
type ProgramRequest struct {
	Name         string     `json:"name" validate:"required,max=200"`
	DegreeLevel  string     `json:"degree_level" validate:"omitempty,oneof=licence master doctorat certificat"`
	Description  string     `json:"description" validate:"max=5000"`
	TuitionCents int64      `json:"tuition_cents" validate:"min=0"`
	AppFeeCents  int64      `json:"app_fee_cents" validate:"min=0"`
	Deadline     *time.Time `json:"deadline"`
	Active       bool       `json:"active"`
}

// CreateProgram adds a program to the tenant school
// @Summary Create a program
// @Tags Programs
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body ProgramRequest true "Program Data"
// @Success 201 {object} map[string]any
// @Failure 403 {object} map[string]string
// @Router /programs [post]
func (h *Handler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	var req ProgramRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sch, _ := GetSchool(r.Context())
	principal, _ := GetPrincipal(r.Context())
	program, err := h.schoolService.CreateProgram(r.Context(), principal.UserID, &school.Program{
		SchoolID:     sch.ID,
		Name:         req.Name,
		DegreeLevel:  req.DegreeLevel,
		Description:  req.Description,
		TuitionCents: req.TuitionCents,
		AppFeeCents:  req.AppFeeCents,
		Deadline:     req.Deadline,
		Active:       req.Active,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create program", logger.SchoolID(sch.ID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create program")
		return
	}
	respondJSON(w, http.StatusCreated, program)
}

// UpdateProgram updates one of the tenant school's programs
func (h *Handler) UpdateProgram(w http.ResponseWriter, r *http.Request) {
	var req ProgramRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sch, _ := GetSchool(r.Context())
	programID := chi.URLParam(r, "programID")
	current, err := h.schoolService.GetProgram(r.Context(), programID)
	if err != nil || current.SchoolID != sch.ID {
		respondError(w, http.StatusNotFound, "program not found")
		return
	}

	principal, _ := GetPrincipal(r.Context())
	program := &school.Program{
		ID:           programID,
		Name:         req.Name,
		DegreeLevel:  req.DegreeLevel,
		Description:  req.Description,
		TuitionCents: req.TuitionCents,
		AppFeeCents:  req.AppFeeCents,
		Deadline:     req.Deadline,
		Active:       req.Active,
	}
	if err := h.schoolService.UpdateProgram(r.Context(), principal.UserID, program); err != nil {
		slog.ErrorContext(r.Context(), "failed to update program", logger.ProgramID(programID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to update program")
		return
	}
	respondJSON(w, http.StatusOK, program)
}

// DeleteProgram removes one of the tenant school's programs
func (h *Handler) DeleteProgram(w http.ResponseWriter, r *http.Request) {
	sch, _ := GetSchool(r.Context())
	programID := chi.URLParam(r, "programID")
	current, err := h.schoolService.GetProgram(r.Context(), programID)
	if err != nil || current.SchoolID != sch.ID {
		respondError(w, http.StatusNotFound, "program not found")
		return
	}

	if err := h.schoolService.DeleteProgram(r.Context(), programID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete program")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegistrationSubmission is a school's public request to join
type RegistrationSubmission struct {
	SchoolName   string `json:"school_name" validate:"required,max=200"`
	Slug         string `json:"slug" validate:"required,max=63"`
	City         string `json:"city" validate:"max=100"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
}

// SubmitRegistration accepts a public school registration request
// @Summary Submit a school registration request
// @Tags Schools
// @Accept json
// @Produce json
// @Param request body RegistrationSubmission true "Registration Data"
// @Success 201 {object} map[string]any
// @Failure 409 {object} map[string]string
// @Router /registrations [post]
func (h *Handler) SubmitRegistration(w http.ResponseWriter, r *http.Request) {
	var req RegistrationSubmission
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.schoolService.SubmitRegistration(r.Context(), req.SchoolName, req.Slug, req.City, req.ContactEmail)
	if err != nil {
		switch {
		case errors.Is(err, school.ErrInvalidSlug), errors.Is(err, school.ErrReservedSlug):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, school.ErrSlugTaken):
			respondError(w, http.StatusConflict, "slug already in use")
		default:
			slog.ErrorContext(r.Context(), "registration submission failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "could not submit registration")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":     request.ID,
		"slug":   request.Slug,
		"status": request.Status,
	})
}

// InviteSchoolAdminRequest invites a colleague into the tenant school
type InviteSchoolAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// InviteSchoolAdmin lets a school admin invite another for their school
func (h *Handler) InviteSchoolAdmin(w http.ResponseWriter, r *http.Request) {
	var req InviteSchoolAdminRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sch, _ := GetSchool(r.Context())
	principal, _ := GetPrincipal(r.Context())
	inv, err := h.identityService.Invite(r.Context(), principal.UserID, req.Email, authz.RoleSchoolAdmin, sch.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "school admin invitation failed", logger.SchoolID(sch.ID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "could not send invitation")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":         inv.ID,
		"email":      inv.Email,
		"expires_at": inv.ExpiresAt,
	})
}
