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

	"github.com/campushaiti/campushaiti/internal/admission"
	"github.com/campushaiti/campushaiti/internal/authz"
	"github.com/campushaiti/campushaiti/internal/observability/logger"
)

// loadOwnApplication fetches an application and enforces that the caller
// owns it; an own-resource permission never grants access to someone
// else's application, whatever the role. Missing and forbidden are both
// 404 so existence never leaks across tenants.
func (h *Handler) loadOwnApplication(w http.ResponseWriter, r *http.Request, perm authz.Permission) *admission.Application {
	principal, _ := GetPrincipal(r.Context())
	app, err := h.admissionService.Get(r.Context(), chi.URLParam(r, "applicationID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "application not found")
		return nil
	}
	if !authz.CanAccessResource(principal.Role, app.ApplicantID, principal.UserID, perm) {
		respondError(w, http.StatusNotFound, "application not found")
		return nil
	}
	return app
}

// CreateApplicationRequest opens a draft for a program
type CreateApplicationRequest struct {
	ProgramID string `json:"program_id" validate:"required,uuid"`
}

// CreateApplication opens a draft application on the tenant school
// @Summary Open a draft application
// @Tags Applications
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body CreateApplicationRequest true "Program to apply to"
// @Success 201 {object} map[string]any
// @Failure 409 {object} map[string]string
// @Router /applications [post]
func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req CreateApplicationRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sch, _ := GetSchool(r.Context())
	program, err := h.schoolService.GetProgram(r.Context(), req.ProgramID)
	if err != nil || program.SchoolID != sch.ID {
		respondError(w, http.StatusNotFound, "program not found")
		return
	}

	principal, _ := GetPrincipal(r.Context())
	app, err := h.admissionService.CreateDraft(r.Context(), principal.UserID, req.ProgramID)
	if err != nil {
		switch {
		case errors.Is(err, admission.ErrDuplicateApplication):
			respondError(w, http.StatusConflict, "you already applied to this program")
		default:
			slog.ErrorContext(r.Context(), "failed to create application", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to create application")
		}
		return
	}
	respondJSON(w, http.StatusCreated, app)
}

// ListMyApplications returns the caller's applications on this school
func (h *Handler) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	principal, _ := GetPrincipal(r.Context())
	sch, _ := GetSchool(r.Context())

	all, err := h.admissionService.ListMine(r.Context(), principal.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list applications", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}

	mine := all[:0]
	for _, app := range all {
		if app.SchoolID == sch.ID {
			mine = append(mine, app)
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"applications": mine})
}

// GetApplication returns one of the caller's applications
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app := h.loadOwnApplication(w, r, authz.PermViewOwnApplications)
	if app == nil {
		return
	}
	respondJSON(w, http.StatusOK, app)
}

// UpdateApplicationRequest carries applicant-editable draft fields
type UpdateApplicationRequest struct {
	GivenName  string     `json:"given_name" validate:"required,max=100"`
	FamilyName string     `json:"family_name" validate:"required,max=100"`
	BirthDate  *time.Time `json:"birth_date"`
	Phone      string     `json:"phone" validate:"max=30"`
	Address    string     `json:"address" validate:"max=500"`
	Essay      string     `json:"essay" validate:"max=20000"`
}

// UpdateApplication edits a draft
func (h *Handler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	var req UpdateApplicationRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	app := h.loadOwnApplication(w, r, authz.PermEditOwnApplication)
	if app == nil {
		return
	}

	updated, err := h.admissionService.UpdateDraft(r.Context(), app.ID, admission.Application{
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		BirthDate:  req.BirthDate,
		Phone:      req.Phone,
		Address:    req.Address,
		Essay:      req.Essay,
	})
	if err != nil {
		if errors.Is(err, admission.ErrNotDraft) {
			respondError(w, http.StatusConflict, "application is no longer editable")
			return
		}
		slog.ErrorContext(r.Context(), "failed to update application", logger.ApplicationID(app.ID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to update application")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteApplication discards a draft
func (h *Handler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	app := h.loadOwnApplication(w, r, authz.PermDeleteOwnApplication)
	if app == nil {
		return
	}

	if err := h.admissionService.DeleteDraft(r.Context(), app.ID); err != nil {
		if errors.Is(err, admission.ErrNotDraft) {
			respondError(w, http.StatusConflict, "submitted applications cannot be deleted")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete application")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitApplication submits a complete draft for review
// @Summary Submit an application
// @Tags Applications
// @Produce json
// @Security CookieAuth
// @Param applicationID path string true "Application ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /applications/{applicationID}/submit [post]
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	app := h.loadOwnApplication(w, r, authz.PermSubmitApplication)
	if app == nil {
		return
	}

	submitted, err := h.admissionService.Submit(r.Context(), app.ID)
	if err != nil {
		switch {
		case errors.Is(err, admission.ErrAlreadySubmitted):
			respondError(w, http.StatusConflict, "application already submitted")
		case errors.Is(err, admission.ErrMissingFields):
			respondError(w, http.StatusBadRequest, "application is incomplete")
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, submitted)
}

// AttachDocumentRequest records an uploaded document
type AttachDocumentRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=transcript id_card diploma photo other"`
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"max=100"`
	SizeBytes   int64  `json:"size_bytes" validate:"required,min=1"`
	StorageKey  string `json:"storage_key" validate:"required,max=500"`
}

// AttachDocument registers document metadata on an application
func (h *Handler) AttachDocument(w http.ResponseWriter, r *http.Request) {
	var req AttachDocumentRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	app := h.loadOwnApplication(w, r, authz.PermUploadOwnDocuments)
	if app == nil {
		return
	}

	doc, err := h.admissionService.AttachDocument(r.Context(), app.ID, req.Kind, req.FileName, req.ContentType, req.SizeBytes, req.StorageKey)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

// ListDocuments returns an application's documents
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	app := h.loadOwnApplication(w, r, authz.PermViewOwnDocuments)
	if app == nil {
		return
	}

	docs, err := h.admissionService.ListDocuments(r.Context(), app.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// RemoveDocument deletes a document from an undecided application
func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	principal, _ := GetPrincipal(r.Context())
	doc, err := h.admissionService.GetDocument(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "document not found")
		return
	}
	app, err := h.admissionService.Get(r.Context(), doc.ApplicationID)
	if err != nil || !authz.CanAccessResource(principal.Role, app.ApplicantID, principal.UserID, authz.PermDeleteOwnDocuments) {
		respondError(w, http.StatusNotFound, "document not found")
		return
	}

	if err := h.admissionService.RemoveDocument(r.Context(), doc.ID); err != nil {
		respondError(w, http.StatusConflict, "document can no longer be removed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSchoolApplications lists the tenant school's submitted applications
func (h *Handler) ListSchoolApplications(w http.ResponseWriter, r *http.Request) {
	sch, _ := GetSchool(r.Context())
	limit, offset := pageParams(r)
	status := admission.Status(r.URL.Query().Get("status"))

	apps, err := h.admissionService.ListForSchool(r.Context(), sch.ID, status, limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list school applications", logger.SchoolID(sch.ID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

// ReviewBoard returns the tenant school's applications grouped by status
// @Summary Review board
// @Description Applications grouped by review status
// @Tags Admissions
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Router /admissions/board [get]
func (h *Handler) ReviewBoard(w http.ResponseWriter, r *http.Request) {
	sch, _ := GetSchool(r.Context())
	board, err := h.admissionService.ReviewBoard(r.Context(), sch.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build review board", logger.SchoolID(sch.ID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to build review board")
		return
	}
	respondJSON(w, http.StatusOK, board)
}

// ChangeStatusRequest moves an application through review
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=under_review accepted rejected waitlisted"`
	Note   string `json:"note" validate:"max=2000"`
}

// ChangeApplicationStatus applies a review decision
// @Summary Change an application's status
// @Tags Admissions
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param applicationID path string true "Application ID"
// @Success 200 {object} map[string]any
// @Failure 409 {object} map[string]string
// @Router /admissions/{applicationID}/status [put]
func (h *Handler) ChangeApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sch, _ := GetSchool(r.Context())
	applicationID := chi.URLParam(r, "applicationID")
	app, err := h.admissionService.Get(r.Context(), applicationID)
	if err != nil || app.SchoolID != sch.ID {
		respondError(w, http.StatusNotFound, "application not found")
		return
	}

	principal, _ := GetPrincipal(r.Context())
	updated, err := h.admissionService.ChangeStatus(r.Context(), principal.UserID, applicationID, admission.Status(req.Status), req.Note)
	if err != nil {
		if errors.Is(err, admission.ErrInvalidTransition) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "failed to change status", logger.ApplicationID(applicationID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to change status")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// SettleFeeRequest records an application fee outcome
type SettleFeeRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=paid waived"`
}

// SettleApplicationFee records an offline payment or a waiver
func (h *Handler) SettleApplicationFee(w http.ResponseWriter, r *http.Request) {
	var req SettleFeeRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sch, _ := GetSchool(r.Context())
	applicationID := chi.URLParam(r, "applicationID")
	app, err := h.admissionService.Get(r.Context(), applicationID)
	if err != nil || app.SchoolID != sch.ID {
		respondError(w, http.StatusNotFound, "application not found")
		return
	}

	principal, _ := GetPrincipal(r.Context())
	if req.Outcome == "paid" {
		err = h.admissionService.MarkFeePaid(r.Context(), principal.UserID, applicationID)
	} else {
		err = h.admissionService.WaiveFee(r.Context(), principal.UserID, applicationID)
	}
	if err != nil {
		if errors.Is(err, admission.ErrFeeAlreadySettled) {
			respondError(w, http.StatusConflict, "fee already settled")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to record fee")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"fee_status": req.Outcome})
}
