// Package id generates unique identifiers for domain records.
package id

import "github.com/google/uuid"

// NewUUIDv7 returns a time-ordered UUID. Falls back to v4 if the
// monotonic source fails, which only happens when crypto/rand does.
func NewUUIDv7() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}
