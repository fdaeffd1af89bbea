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

package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campushaiti/campushaiti/internal/authz"
)

// Principal is the authenticated identity carried through a request. It is
// built exclusively from a verified session token; the role claim is
// narrowed to the Role enumeration at that boundary, so an unrecognized or
// missing role can only ever yield the least-privileged principal.
type Principal struct {
	UserID    string
	Email     string
	Role      authz.Role
	SchoolID  string
	SessionID string
}

// Claims is the JWT payload of a session token.
type Claims struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	SchoolID string `json:"school_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies session tokens.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec with an HS256 signing secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Issue signs a token for the given session and user attributes.
func (c *TokenCodec) Issue(sessionID, userID, email string, role authz.Role, schoolID string, expiresAt time.Time) (string, error) {
	claims := Claims{
		Email:    email,
		Role:     string(role),
		SchoolID: schoolID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "campushaiti",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and narrows its claims into a
// Principal. Every failure returns ErrTokenInvalid: callers degrade to
// "unauthenticated", they never surface token parse details.
func (c *TokenCodec) Verify(tokenString string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" || claims.ID == "" {
		return nil, ErrTokenInvalid
	}

	return &Principal{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      authz.RoleFromClaim(claims.Role),
		SchoolID:  claims.SchoolID,
		SessionID: claims.ID,
	}, nil
}
