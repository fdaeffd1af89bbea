package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushaiti/campushaiti/internal/school"
)

type countingRepo struct {
	schools map[string]*school.School
	hits    int
}

func (r *countingRepo) Create(_ context.Context, s *school.School) error {
	r.schools[s.Slug] = s
	return nil
}

func (r *countingRepo) GetByID(_ context.Context, schoolID string) (*school.School, error) {
	for _, s := range r.schools {
		if s.ID == schoolID {
			return s, nil
		}
	}
	return nil, school.ErrSchoolNotFound
}

func (r *countingRepo) GetBySlug(_ context.Context, slug string) (*school.School, error) {
	r.hits++
	s, ok := r.schools[slug]
	if !ok {
		return nil, school.ErrSchoolNotFound
	}
	return s, nil
}

func (r *countingRepo) Update(_ context.Context, s *school.School) error {
	r.schools[s.Slug] = s
	return nil
}

func (r *countingRepo) List(_ context.Context, _, _ int) ([]*school.School, error) {
	return nil, nil
}

func TestSchoolCacheReadThrough(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{schools: map[string]*school.School{
		"quisqueya": {ID: "s1", Slug: "quisqueya", Name: "Université Quisqueya"},
	}}

	c, err := NewSchoolCache(repo, 100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	first, err := c.GetBySlug(ctx, "quisqueya")
	require.NoError(t, err)
	assert.Equal(t, "s1", first.ID)
	c.slugs.Wait()

	_, err = c.GetBySlug(ctx, "quisqueya")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.hits, "second lookup should be served from cache")
}

func TestSchoolCacheInvalidatesOnUpdate(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{schools: map[string]*school.School{
		"inaghei": {ID: "s2", Slug: "inaghei", Name: "INAGHEI"},
	}}

	c, err := NewSchoolCache(repo, 100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetBySlug(ctx, "inaghei")
	require.NoError(t, err)
	c.slugs.Wait()

	updated := &school.School{ID: "s2", Slug: "inaghei", Name: "INAGHEI (Port-au-Prince)"}
	require.NoError(t, c.Update(ctx, updated))
	c.slugs.Wait()

	got, err := c.GetBySlug(ctx, "inaghei")
	require.NoError(t, err)
	assert.Equal(t, "INAGHEI (Port-au-Prince)", got.Name)
}

func TestSchoolCacheMissNotCached(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{schools: map[string]*school.School{}}

	c, err := NewSchoolCache(repo, 100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetBySlug(ctx, "ghost")
	assert.ErrorIs(t, err, school.ErrSchoolNotFound)
	_, err = c.GetBySlug(ctx, "ghost")
	assert.ErrorIs(t, err, school.ErrSchoolNotFound)
	assert.Equal(t, 2, repo.hits)
}
