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

	"github.com/campushaiti/campushaiti/internal/identity"
	"github.com/campushaiti/campushaiti/internal/observability/logger"
)

// RegisterRequest represents applicant self-registration data
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=10"`
	GivenName  string `json:"given_name" validate:"max=100"`
	FamilyName string `json:"family_name" validate:"max=100"`
	Locale     string `json:"locale" validate:"omitempty,oneof=en fr ht"`
}

// Register handles applicant self-registration
// @Summary Register a new applicant
// @Description Create an applicant account with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration Data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.identityService.Register(r.Context(), req.Email, req.Password, req.GivenName, req.FamilyName, req.Locale)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, "an account with this email already exists")
		case errors.Is(err, identity.ErrWeakPassword), errors.Is(err, identity.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "registration failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	})
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a user and issues a session cookie
// @Summary Login
// @Description Authenticate and create a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.identityService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrAccountLocked):
			respondError(w, http.StatusForbidden, "account temporarily locked")
		case errors.Is(err, identity.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "invalid email or password")
		default:
			slog.ErrorContext(r.Context(), "login failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	_, token, err := h.sessionService.Create(r.Context(),
		user.ID, user.Email, user.Role, user.SchoolID,
		getIPAddress(r), r.UserAgent(),
	)
	if err != nil {
		slog.ErrorContext(r.Context(), "session creation failed", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"role":      user.Role,
		"school_id": user.SchoolID,
	})
}

// Logout revokes the current session and clears the cookie
// @Summary Logout
// @Tags Auth
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if principal, ok := GetPrincipal(r.Context()); ok {
		if err := h.sessionService.Destroy(r.Context(), principal.SessionID); err != nil {
			slog.WarnContext(r.Context(), "session revocation failed",
				logger.SessionID(principal.SessionID),
				logger.Error(err),
			)
		}
	}
	h.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the authenticated user's profile
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, _ := GetPrincipal(r.Context())
	user, err := h.identityService.GetUser(r.Context(), principal.UserID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":          user.ID,
		"email":       user.Email,
		"role":        user.Role,
		"school_id":   user.SchoolID,
		"given_name":  user.GivenName,
		"family_name": user.FamilyName,
		"locale":      user.Locale,
	})
}

// ChangePasswordRequest carries the old and new password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=10"`
}

// ChangePassword rotates the password and revokes other sessions
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal, _ := GetPrincipal(r.Context())
	if err := h.identityService.ChangePassword(r.Context(), principal.UserID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "old password is incorrect")
		case errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "password change failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "password change failed")
		}
		return
	}

	// Every other session dies with the old password.
	if err := h.sessionService.DestroyAllForUser(r.Context(), principal.UserID); err != nil {
		slog.WarnContext(r.Context(), "failed to revoke sessions after password change",
			logger.UserID(principal.UserID),
			logger.Error(err),
		)
	}
	h.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}

// AcceptInviteRequest redeems an invitation token
type AcceptInviteRequest struct {
	Token      string `json:"token" validate:"required"`
	Password   string `json:"password" validate:"required,min=10"`
	GivenName  string `json:"given_name" validate:"max=100"`
	FamilyName string `json:"family_name" validate:"max=100"`
}

// AcceptInvite creates the invited account and signs it in
// @Summary Accept an invitation
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body AcceptInviteRequest true "Invitation token and account data"
// @Success 201 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Router /auth/invite/accept [post]
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req AcceptInviteRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.identityService.AcceptInvite(r.Context(), req.Token, req.Password, req.GivenName, req.FamilyName)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInviteNotFound):
			respondError(w, http.StatusNotFound, "invitation not found")
		case errors.Is(err, identity.ErrInviteExpired):
			respondError(w, http.StatusGone, "invitation expired")
		case errors.Is(err, identity.ErrInviteAlreadyUsed):
			respondError(w, http.StatusConflict, "invitation already used")
		case errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "invite acceptance failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "could not accept invitation")
		}
		return
	}

	_, token, err := h.sessionService.Create(r.Context(),
		user.ID, user.Email, user.Role, user.SchoolID,
		getIPAddress(r), r.UserAgent(),
	)
	if err == nil {
		h.setSessionCookie(w, token)
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	})
}
