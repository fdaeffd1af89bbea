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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/campushaiti/campushaiti/internal/admission"
	"github.com/campushaiti/campushaiti/internal/audit"
	"github.com/campushaiti/campushaiti/internal/config"
	"github.com/campushaiti/campushaiti/internal/identity"
	"github.com/campushaiti/campushaiti/internal/notify"
	"github.com/campushaiti/campushaiti/internal/observability/logger"
	"github.com/campushaiti/campushaiti/internal/observability/metrics"
	"github.com/campushaiti/campushaiti/internal/observability/tracing"
	"github.com/campushaiti/campushaiti/internal/platform"
	"github.com/campushaiti/campushaiti/internal/school"
	"github.com/campushaiti/campushaiti/internal/session"
	"github.com/campushaiti/campushaiti/internal/store/cache"
	"github.com/campushaiti/campushaiti/internal/store/postgres"
	transportHTTP "github.com/campushaiti/campushaiti/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting campus haiti platform")

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	_, err = metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Initialize database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	if err := postgres.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		slog.Error("failed to run migrations", logger.Error(err))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	schoolRepo := postgres.NewSchoolRepository(db)
	programRepo := postgres.NewProgramRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)
	documentRepo := postgres.NewDocumentRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)

	// The tenant router resolves a slug on every request; front the
	// school repository with the in-process cache.
	cachedSchools, err := cache.NewSchoolCache(schoolRepo, cfg.Tenancy.SchoolCacheSize, cfg.Tenancy.SchoolCacheTTL)
	if err != nil {
		slog.Error("failed to create school cache", logger.Error(err))
		os.Exit(1)
	}
	defer cachedSchools.Close()

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)

	var mailer notify.Mailer
	if cfg.Email.Backend == "sendgrid" {
		mailer = notify.NewSendgridMailer(cfg.Email.SendgridKey, cfg.Email.FromName, cfg.Email.FromAddress)
	} else {
		mailer = notify.NewConsoleMailer()
	}

	// Initialize services
	identityService := identity.NewService(
		userRepo,
		invitationRepo,
		passwordHasher,
		mailer,
		auditLogger,
		cfg.Security.LockoutMaxAttempts,
		cfg.Security.LockoutDuration,
		cfg.Security.InviteTTL,
	)
	sessionService := session.NewService(
		sessionRepo,
		session.NewTokenCodec(cfg.Session.TokenSecret),
		cfg.Session.Lifetime,
		cfg.Session.IdleTimeout,
	)
	schoolService := school.NewService(cachedSchools, programRepo, registrationRepo, mailer, auditLogger)
	admissionService := admission.NewService(
		applicationRepo,
		documentRepo,
		programRepo,
		cachedSchools,
		userRepo,
		mailer,
		auditLogger,
	)
	settingsService := platform.NewSettingsService(settingsRepo, auditLogger)

	// Promote the bootstrap admin if CH_BOOTSTRAP_ADMIN_EMAIL is set.
	if err := identityService.Bootstrap(ctx); err != nil {
		slog.Error("bootstrap failed", logger.Error(err))
	}

	// Rate Limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Configure SameSite mode
	sameSite := http.SameSiteLaxMode
	switch cfg.Session.CookieSameSite {
	case "Strict":
		sameSite = http.SameSiteStrictMode
	case "None":
		sameSite = http.SameSiteNoneMode
	}

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		identityService,
		sessionService,
		schoolService,
		admissionService,
		settingsService,
		auditLogger,
		transportHTTP.SessionConfig{
			CookieName:     cfg.Session.CookieName,
			CookieDomain:   cfg.Session.CookieDomain,
			CookiePath:     cfg.Session.CookiePath,
			CookieSecure:   cfg.Session.CookieSecure,
			CookieSameSite: sameSite,
			CookieMaxAge:   cfg.Session.Lifetime,
		},
	)

	tenantRouter := transportHTTP.NewTenantRouter(cachedSchools)
	router := transportHTTP.NewRouter(handler, tenantRouter, rateLimiter, nil)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Session cleanup loop
	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if err := sessionService.CleanupExpired(gCtx); err != nil {
					slog.ErrorContext(gCtx, "failed to cleanup expired sessions", logger.Error(err))
				}
			}
		}
	})

	// Graceful shutdown on signal
	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", logger.Error(err))
		os.Exit(1)
	}
	slog.Info("server stopped")
}
