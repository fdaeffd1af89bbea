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

// @title Campus Haiti API
// @version 1.0.0
// @description Multi-tenant university admissions platform
// @contact.name Campus Haiti Support
// @contact.email support@campushaiti.org

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0

// @host campushaiti.org
// @BasePath /api

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name ch_session

// Package http is the transport layer: the tenant router, the session
// and authorization middleware, and the JSON API handlers.
package http

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/campushaiti/campushaiti/internal/admission"
	"github.com/campushaiti/campushaiti/internal/audit"
	"github.com/campushaiti/campushaiti/internal/authz"
	"github.com/campushaiti/campushaiti/internal/identity"
	"github.com/campushaiti/campushaiti/internal/platform"
	"github.com/campushaiti/campushaiti/internal/school"
	"github.com/campushaiti/campushaiti/internal/session"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService  *identity.Service
	sessionService   *session.Service
	schoolService    *school.Service
	admissionService *admission.Service
	settingsService  *platform.SettingsService
	auditLogger      audit.Logger
	sessionConfig    SessionConfig
	validate         *validator.Validate
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName     string
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieSameSite http.SameSite
	CookieMaxAge   time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	sessionService *session.Service,
	schoolService *school.Service,
	admissionService *admission.Service,
	settingsService *platform.SettingsService,
	auditLogger audit.Logger,
	sessionConfig SessionConfig,
) *Handler {
	return &Handler{
		identityService:  identityService,
		sessionService:   sessionService,
		schoolService:    schoolService,
		admissionService: admissionService,
		settingsService:  settingsService,
		auditLogger:      auditLogger,
		sessionConfig:    sessionConfig,
		validate:         validator.New(validator.WithRequiredStructEnabled()),
	}
}

// NewRouter wires all middleware and routes. staticFS, when non-nil,
// serves the compiled front-end for page routes; API-only deployments
// pass nil.
func NewRouter(h *Handler, tenantRouter *TenantRouter, rateLimiter *RateLimiter, staticFS fs.FS) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Tenant resolution runs before everything that cares about context.
	r.Use(tenantRouter.Middleware)
	r.Use(LocaleMiddleware)
	r.Use(h.SessionMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)

	// Shared auth plane: same endpoints on every subdomain.
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/invite/accept", h.AcceptInvite)
		r.With(RequireAuth).Get("/me", h.Me)
		r.With(RequireAuth).Post("/password", h.ChangePassword)
	})

	// Platform apex: public directory and school registration.
	r.Get("/api/schools", h.ListSchools)
	r.Post("/api/registrations", h.SubmitRegistration)

	// Tenant plane: requires a school subdomain.
	r.Group(func(r chi.Router) {
		r.Use(RequireSchool)

		r.Get("/api/school", h.CurrentSchool)
		r.Get("/api/programs", h.ListPrograms)
		r.Get("/api/programs/{programID}", h.GetProgram)

		// Applicants
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			r.Post("/api/applications", h.CreateApplication)
			r.Get("/api/applications", h.ListMyApplications)
			r.Get("/api/applications/{applicationID}", h.GetApplication)
			r.Put("/api/applications/{applicationID}", h.UpdateApplication)
			r.Delete("/api/applications/{applicationID}", h.DeleteApplication)
			r.Post("/api/applications/{applicationID}/submit", h.SubmitApplication)
			r.Post("/api/applications/{applicationID}/documents", h.AttachDocument)
			r.Get("/api/applications/{applicationID}/documents", h.ListDocuments)
			r.Delete("/api/documents/{documentID}", h.RemoveDocument)
		})

		// School administration
		r.Group(func(r chi.Router) {
			r.Use(RequirePermission(authz.PermViewSchoolApplications))
			r.Use(h.requireOwnSchool)
			r.Get("/api/admissions", h.ListSchoolApplications)
			r.Get("/api/admissions/board", h.ReviewBoard)
			r.With(RequirePermission(authz.PermChangeApplicationStatus)).
				Post("/api/admissions/{applicationID}/status", h.ChangeApplicationStatus)
			r.With(RequirePermission(authz.PermViewSchoolApplicationFees)).
				Post("/api/admissions/{applicationID}/fee", h.SettleApplicationFee)
		})
		r.Group(func(r chi.Router) {
			r.Use(RequirePermission(authz.PermManagePrograms))
			r.Use(h.requireOwnSchool)
			r.Post("/api/programs", h.CreateProgram)
			r.Put("/api/programs/{programID}", h.UpdateProgram)
			r.Delete("/api/programs/{programID}", h.DeleteProgram)
		})
		r.Group(func(r chi.Router) {
			r.Use(RequirePermission(authz.PermManageSchoolProfile))
			r.Use(h.requireOwnSchool)
			r.Put("/api/school", h.UpdateSchoolProfile)
		})
		r.Group(func(r chi.Router) {
			r.Use(RequirePermission(authz.PermInviteSchoolAdmins))
			r.Use(h.requireOwnSchool)
			r.Post("/api/school/invitations", h.InviteSchoolAdmin)
		})
	})

	// Platform administration. Reached through the admin subdomain in
	// practice; the guards are permissions, not hostnames.
	r.Route("/api/admin", func(r chi.Router) {
		r.With(RequirePermission(authz.PermApproveRegistrations)).Group(func(r chi.Router) {
			r.Get("/registrations", h.ListRegistrations)
			r.Post("/registrations/{requestID}/approve", h.ApproveRegistration)
			r.Post("/registrations/{requestID}/reject", h.RejectRegistration)
		})
		r.With(RequirePermission(authz.PermManageUsers)).Group(func(r chi.Router) {
			r.Get("/users", h.ListUsers)
			r.Post("/users/{userID}/role", h.AssignRole)
		})
		r.With(RequirePermission(authz.PermManageInvitations)).Group(func(r chi.Router) {
			r.Get("/invitations", h.ListInvitations)
			r.Post("/invitations", h.CreateInvitation)
			r.Delete("/invitations/{invitationID}", h.RevokeInvitation)
		})
		r.With(RequirePermission(authz.PermViewAllApplications)).
			Get("/applications", h.ListAllApplications)
		r.With(RequirePermission(authz.PermManageSettings)).Group(func(r chi.Router) {
			r.Get("/settings", h.ListSettings)
			r.Put("/settings/{key}", h.PutSetting)
			r.Delete("/settings/{key}", h.DeleteSetting)
		})
	})

	// Page routes land on the front-end after rewriting.
	if staticFS != nil {
		spa := SPAHandler{StaticFS: staticFS}
		r.NotFound(spa.ServeHTTP)
	}

	return r
}

// HealthCheck reports liveness
// @Summary Health Check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "campushaiti",
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionConfig.CookieName,
		Value:    token,
		Path:     h.sessionConfig.CookiePath,
		Domain:   h.sessionConfig.CookieDomain,
		Secure:   h.sessionConfig.CookieSecure,
		HttpOnly: true,
		SameSite: h.sessionConfig.CookieSameSite,
		MaxAge:   int(h.sessionConfig.CookieMaxAge.Seconds()),
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   h.sessionConfig.CookieName,
		Value:  "",
		Path:   h.sessionConfig.CookiePath,
		Domain: h.sessionConfig.CookieDomain,
		MaxAge: -1,
	})
}

func (h *Handler) getTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(h.sessionConfig.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// decodeJSON parses and validates a request body.
func (h *Handler) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func pageParams(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
