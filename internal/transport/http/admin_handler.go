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

	"github.com/go-chi/chi/v5"

	"github.com/campushaiti/campushaiti/internal/authz"
	"github.com/campushaiti/campushaiti/internal/identity"
	"github.com/campushaiti/campushaiti/internal/observability/logger"
	"github.com/campushaiti/campushaiti/internal/school"
)

// ListRegistrations lists school registration requests
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	requests, err := h.schoolService.ListRegistrations(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list registrations", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"registrations": requests})
}

// ApproveRegistration turns a pending request into a live school and
// invites the contact as its first admin
// @Summary Approve a school registration
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Param requestID path string true "Registration request ID"
// @Success 200 {object} map[string]any
// @Failure 409 {object} map[string]string
// @Router /admin/registrations/{requestID}/approve [post]
func (h *Handler) ApproveRegistration(w http.ResponseWriter, r *http.Request) {
	principal, _ := GetPrincipal(r.Context())
	requestID := chi.URLParam(r, "requestID")

	sch, req, err := h.schoolService.ApproveRegistration(r.Context(), principal.UserID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, school.ErrRegistrationNotFound):
			respondError(w, http.StatusNotFound, "registration request not found")
		case errors.Is(err, school.ErrRegistrationDecided):
			respondError(w, http.StatusConflict, "registration request already decided")
		default:
			slog.ErrorContext(r.Context(), "registration approval failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "approval failed")
		}
		return
	}

	// The registration contact becomes the school's first admin.
	if _, err := h.identityService.Invite(r.Context(), principal.UserID, req.ContactEmail, authz.RoleSchoolAdmin, sch.ID); err != nil {
		slog.WarnContext(r.Context(), "failed to invite school admin after approval",
			logger.SchoolID(sch.ID),
			logger.Error(err),
		)
	}

	respondJSON(w, http.StatusOK, sch)
}

// RejectRegistration declines a pending registration request
func (h *Handler) RejectRegistration(w http.ResponseWriter, r *http.Request) {
	principal, _ := GetPrincipal(r.Context())
	if err := h.schoolService.RejectRegistration(r.Context(), principal.UserID, chi.URLParam(r, "requestID")); err != nil {
		switch {
		case errors.Is(err, school.ErrRegistrationNotFound):
			respondError(w, http.StatusNotFound, "registration request not found")
		case errors.Is(err, school.ErrRegistrationDecided):
			respondError(w, http.StatusConflict, "registration request already decided")
		default:
			respondError(w, http.StatusInternalServerError, "rejection failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// ListUsers lists platform users
// @Summary List users
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Success 200 {array} map[string]any
// @Router /admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	users, err := h.identityService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// AssignRoleRequest changes a user's role
type AssignRoleRequest struct {
	Role     string `json:"role" validate:"required,oneof=applicant school_admin platform_admin_viewer platform_admin_full"`
	SchoolID string `json:"school_id" validate:"omitempty,uuid"`
}

// AssignRole changes a user's role and school binding
// @Summary Assign a role
// @Tags Admin
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]string
// @Router /admin/users/{userID}/role [put]
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req AssignRoleRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal, _ := GetPrincipal(r.Context())
	userID := chi.URLParam(r, "userID")
	if err := h.identityService.AssignRole(r.Context(), principal.UserID, userID, authz.Role(req.Role), req.SchoolID); err != nil {
		switch {
		case errors.Is(err, identity.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, identity.ErrSchoolAdminNoSchool):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "role assignment failed", logger.UserID(userID), logger.Error(err))
			respondError(w, http.StatusInternalServerError, "role assignment failed")
		}
		return
	}

	// Old sessions carry the old role claim. Kill them.
	if err := h.sessionService.DestroyAllForUser(r.Context(), userID); err != nil {
		slog.WarnContext(r.Context(), "failed to revoke sessions after role change",
			logger.UserID(userID),
			logger.Error(err),
		)
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "role_assigned"})
}

// ListInvitations lists pending and past invitations
func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	invs, err := h.identityService.ListInvitations(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list invitations")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"invitations": invs})
}

// CreateInvitationRequest invites a user with any role
type CreateInvitationRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=applicant school_admin platform_admin_viewer platform_admin_full"`
	SchoolID string `json:"school_id" validate:"omitempty,uuid"`
}

// CreateInvitation sends a role invitation
func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	var req CreateInvitationRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal, _ := GetPrincipal(r.Context())
	inv, err := h.identityService.Invite(r.Context(), principal.UserID, req.Email, authz.Role(req.Role), req.SchoolID)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrSchoolAdminNoSchool):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, "a user with this email already exists")
		default:
			slog.ErrorContext(r.Context(), "invitation failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "invitation failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":         inv.ID,
		"email":      inv.Email,
		"role":       inv.Role,
		"expires_at": inv.ExpiresAt,
	})
}

// RevokeInvitation cancels an unredeemed invitation
func (h *Handler) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	if err := h.identityService.RevokeInvitation(r.Context(), chi.URLParam(r, "invitationID")); err != nil {
		if errors.Is(err, identity.ErrInviteNotFound) {
			respondError(w, http.StatusNotFound, "invitation not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to revoke invitation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAllApplications lists applications across every school
func (h *Handler) ListAllApplications(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	apps, err := h.admissionService.ListAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

// ListSettings returns every platform setting
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

// PutSettingRequest sets a setting value
type PutSettingRequest struct {
	Value string `json:"value" validate:"required,max=10000"`
}

// PutSetting upserts a platform setting
func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	var req PutSettingRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal, _ := GetPrincipal(r.Context())
	if err := h.settingsService.Set(r.Context(), principal.UserID, chi.URLParam(r, "key"), req.Value); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save setting")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// DeleteSetting removes a platform setting
func (h *Handler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	principal, _ := GetPrincipal(r.Context())
	if err := h.settingsService.Unset(r.Context(), principal.UserID, chi.URLParam(r, "key")); err != nil {
		respondError(w, http.StatusNotFound, "setting not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
