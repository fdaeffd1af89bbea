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

// Package cache wraps repositories with in-process read-through caches.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/campushaiti/campushaiti/internal/school"
)

// SchoolCache is a read-through cache over school.Repository. The hot path
// is GetBySlug: the tenant middleware resolves the subdomain on every
// request, so lookups must not hit the database each time. Writes go
// straight through and invalidate.
type SchoolCache struct {
	inner school.Repository
	slugs *ristretto.Cache[string, *school.School]
	ttl   time.Duration
}

// NewSchoolCache wraps a repository. maxSchools bounds the cache; ttl
// bounds how stale a profile edit can appear on the tenant site.
func NewSchoolCache(inner school.Repository, maxSchools int64, ttl time.Duration) (*SchoolCache, error) {
	slugs, err := ristretto.NewCache(&ristretto.Config[string, *school.School]{
		NumCounters: maxSchools * 10,
		MaxCost:     maxSchools,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create school cache: %w", err)
	}
	return &SchoolCache{inner: inner, slugs: slugs, ttl: ttl}, nil
}

// GetBySlug returns the cached school or falls through to the repository.
// Misses for unknown slugs are not cached; the resolver already filters
// reserved names, and unknown-subdomain traffic is rare.
func (c *SchoolCache) GetBySlug(ctx context.Context, slug string) (*school.School, error) {
	if sch, ok := c.slugs.Get(slug); ok {
		return sch, nil
	}
	sch, err := c.inner.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.slugs.SetWithTTL(slug, sch, 1, c.ttl)
	return sch, nil
}

func (c *SchoolCache) GetByID(ctx context.Context, schoolID string) (*school.School, error) {
	return c.inner.GetByID(ctx, schoolID)
}

func (c *SchoolCache) Create(ctx context.Context, s *school.School) error {
	return c.inner.Create(ctx, s)
}

// Update writes through and drops the stale entry.
func (c *SchoolCache) Update(ctx context.Context, s *school.School) error {
	if err := c.inner.Update(ctx, s); err != nil {
		return err
	}
	c.slugs.Del(s.Slug)
	return nil
}

func (c *SchoolCache) List(ctx context.Context, limit, offset int) ([]*school.School, error) {
	return c.inner.List(ctx, limit, offset)
}

// Close releases the cache's internal goroutines.
func (c *SchoolCache) Close() {
	c.slugs.Close()
}
