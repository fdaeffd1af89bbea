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

package identity

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/campushaiti/campushaiti/internal/audit"
	"github.com/campushaiti/campushaiti/internal/authz"
)

// EnvBootstrapAdminEmail names the account promoted to full platform
// admin on first start. Without it, bootstrap is a no-op.
const EnvBootstrapAdminEmail = "CH_BOOTSTRAP_ADMIN_EMAIL"

// Bootstrap promotes the configured account to platform admin if it is
// not one already. Run once at startup, after migrations.
func (s *Service) Bootstrap(ctx context.Context) error {
	email := os.Getenv(EnvBootstrapAdminEmail)
	if email == "" {
		return nil
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("bootstrap user %s not found: %w", email, err)
	}
	if user.Role == authz.RolePlatformAdmin {
		return nil
	}

	user.Role = authz.RolePlatformAdmin
	user.SchoolID = ""
	user.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("promote bootstrap admin: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleAssigned,
		ActorID:  "system:bootstrap",
		Resource: "user",
		Metadata: map[string]any{"user_id": user.ID, "role": string(authz.RolePlatformAdmin)},
	})
	return nil
}
