package school_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campushaiti/campushaiti/internal/audit"
	"github.com/campushaiti/campushaiti/internal/notify"
	"github.com/campushaiti/campushaiti/internal/school"
)

type mockSchoolRepo struct {
	mock.Mock
}

func (m *mockSchoolRepo) Create(ctx context.Context, s *school.School) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSchoolRepo) GetByID(ctx context.Context, schoolID string) (*school.School, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.School), args.Error(1)
}

func (m *mockSchoolRepo) GetBySlug(ctx context.Context, slug string) (*school.School, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.School), args.Error(1)
}

func (m *mockSchoolRepo) Update(ctx context.Context, s *school.School) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSchoolRepo) List(ctx context.Context, limit, offset int) ([]*school.School, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*school.School), args.Error(1)
}

type mockProgramRepo struct {
	mock.Mock
}

func (m *mockProgramRepo) Create(ctx context.Context, p *school.Program) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProgramRepo) GetByID(ctx context.Context, programID string) (*school.Program, error) {
	args := m.Called(ctx, programID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.Program), args.Error(1)
}

func (m *mockProgramRepo) Update(ctx context.Context, p *school.Program) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProgramRepo) Delete(ctx context.Context, programID string) error {
	return m.Called(ctx, programID).Error(0)
}

func (m *mockProgramRepo) ListBySchool(ctx context.Context, schoolID string, activeOnly bool) ([]*school.Program, error) {
	args := m.Called(ctx, schoolID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*school.Program), args.Error(1)
}

type mockRegistrationRepo struct {
	mock.Mock
}

func (m *mockRegistrationRepo) Create(ctx context.Context, r *school.RegistrationRequest) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRegistrationRepo) GetByID(ctx context.Context, requestID string) (*school.RegistrationRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.RegistrationRequest), args.Error(1)
}

func (m *mockRegistrationRepo) Update(ctx context.Context, r *school.RegistrationRequest) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRegistrationRepo) List(ctx context.Context, status string, limit, offset int) ([]*school.RegistrationRequest, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*school.RegistrationRequest), args.Error(1)
}

func (m *mockRegistrationRepo) SlugRequested(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

type recordingMailer struct {
	sent []notify.Message
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) {
	m.sent = append(m.sent, msg)
}

func newTestService(t *testing.T) (*school.Service, *mockSchoolRepo, *mockProgramRepo, *mockRegistrationRepo, *recordingMailer) {
	t.Helper()
	schools := new(mockSchoolRepo)
	programs := new(mockProgramRepo)
	registrations := new(mockRegistrationRepo)
	mailer := &recordingMailer{}
	auditLogger := audit.NewSlogLogger()
	svc := school.NewService(schools, programs, registrations, mailer, auditLogger)
	return svc, schools, programs, registrations, mailer
}

func TestSubmitRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending request", func(t *testing.T) {
		svc, schools, _, registrations, _ := newTestService(t)
		schools.On("GetBySlug", ctx, "quisqueya").Return(nil, school.ErrSchoolNotFound)
		registrations.On("SlugRequested", ctx, "quisqueya").Return(false, nil)
		registrations.On("Create", ctx, mock.AnythingOfType("*school.RegistrationRequest")).Return(nil)

		req, err := svc.SubmitRegistration(ctx, "Université Quisqueya", "Quisqueya", "Port-au-Prince", "Rector@uniq.edu.ht")
		require.NoError(t, err)
		assert.Equal(t, "quisqueya", req.Slug)
		assert.Equal(t, "rector@uniq.edu.ht", req.ContactEmail)
		assert.Equal(t, school.RegistrationPending, req.Status)
		assert.NotEmpty(t, req.ID)
	})

	t.Run("rejects reserved slug", func(t *testing.T) {
		svc, _, _, _, _ := newTestService(t)
		_, err := svc.SubmitRegistration(ctx, "Nope", "admin", "", "a@b.ht")
		assert.ErrorIs(t, err, school.ErrReservedSlug)
	})

	t.Run("rejects malformed slug", func(t *testing.T) {
		svc, _, _, _, _ := newTestService(t)
		for _, slug := range []string{"", "-leading", "trailing-", "UPPER CASE", "dot.ted"} {
			_, err := svc.SubmitRegistration(ctx, "Nope", slug, "", "a@b.ht")
			assert.ErrorIs(t, err, school.ErrInvalidSlug, "slug %q", slug)
		}
	})

	t.Run("rejects taken slug", func(t *testing.T) {
		svc, schools, _, _, _ := newTestService(t)
		schools.On("GetBySlug", ctx, "inaghei").Return(&school.School{ID: "s1", Slug: "inaghei"}, nil)

		_, err := svc.SubmitRegistration(ctx, "INAGHEI", "inaghei", "", "a@b.ht")
		assert.ErrorIs(t, err, school.ErrSlugTaken)
	})

	t.Run("rejects slug with pending request", func(t *testing.T) {
		svc, schools, _, registrations, _ := newTestService(t)
		schools.On("GetBySlug", ctx, "inaghei").Return(nil, school.ErrSchoolNotFound)
		registrations.On("SlugRequested", ctx, "inaghei").Return(true, nil)

		_, err := svc.SubmitRegistration(ctx, "INAGHEI", "inaghei", "", "a@b.ht")
		assert.ErrorIs(t, err, school.ErrSlugTaken)
	})
}

func TestApproveRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("creates school and notifies contact", func(t *testing.T) {
		svc, schools, _, registrations, mailer := newTestService(t)
		registrations.On("GetByID", ctx, "req-1").Return(&school.RegistrationRequest{
			ID:           "req-1",
			SchoolName:   "Université Quisqueya",
			Slug:         "quisqueya",
			ContactEmail: "rector@uniq.edu.ht",
			Status:       school.RegistrationPending,
		}, nil)
		schools.On("Create", ctx, mock.AnythingOfType("*school.School")).Return(nil)
		registrations.On("Update", ctx, mock.AnythingOfType("*school.RegistrationRequest")).Return(nil)

		sch, req, err := svc.ApproveRegistration(ctx, "admin-1", "req-1")
		require.NoError(t, err)
		assert.Equal(t, "quisqueya", sch.Slug)
		assert.NotEmpty(t, sch.ID)
		assert.Equal(t, school.RegistrationApproved, req.Status)

		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "rector@uniq.edu.ht", mailer.sent[0].ToAddress)
	})

	t.Run("refuses already decided request", func(t *testing.T) {
		svc, _, _, registrations, _ := newTestService(t)
		registrations.On("GetByID", ctx, "req-2").Return(&school.RegistrationRequest{
			ID:     "req-2",
			Status: school.RegistrationRejected,
		}, nil)

		_, _, err := svc.ApproveRegistration(ctx, "admin-1", "req-2")
		assert.ErrorIs(t, err, school.ErrRegistrationDecided)
	})
}

func TestRejectRegistration(t *testing.T) {
	ctx := context.Background()

	svc, _, _, registrations, mailer := newTestService(t)
	registrations.On("GetByID", ctx, "req-3").Return(&school.RegistrationRequest{
		ID:           "req-3",
		Slug:         "esih",
		ContactEmail: "dean@esih.edu",
		Status:       school.RegistrationPending,
	}, nil)
	registrations.On("Update", ctx, mock.AnythingOfType("*school.RegistrationRequest")).Return(nil)

	err := svc.RejectRegistration(ctx, "admin-1", "req-3")
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
}

func TestPrograms(t *testing.T) {
	ctx := context.Background()

	t.Run("create checks school exists", func(t *testing.T) {
		svc, schools, _, _, _ := newTestService(t)
		schools.On("GetByID", ctx, "missing").Return(nil, school.ErrSchoolNotFound)

		_, err := svc.CreateProgram(ctx, "u1", &school.Program{SchoolID: "missing", Name: "Droit"})
		assert.ErrorIs(t, err, school.ErrSchoolNotFound)
	})

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		svc, schools, programs, _, _ := newTestService(t)
		schools.On("GetByID", ctx, "s1").Return(&school.School{ID: "s1"}, nil)
		programs.On("Create", ctx, mock.AnythingOfType("*school.Program")).Return(nil)

		p, err := svc.CreateProgram(ctx, "u1", &school.Program{SchoolID: "s1", Name: "Médecine"})
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.False(t, p.CreatedAt.IsZero())
	})

	t.Run("update cannot move program between schools", func(t *testing.T) {
		svc, _, programs, _, _ := newTestService(t)
		programs.On("GetByID", ctx, "p1").Return(&school.Program{ID: "p1", SchoolID: "s1"}, nil)
		programs.On("Update", ctx, mock.MatchedBy(func(p *school.Program) bool {
			return p.SchoolID == "s1"
		})).Return(nil)

		err := svc.UpdateProgram(ctx, "u1", &school.Program{ID: "p1", SchoolID: "s2", Name: "Génie"})
		require.NoError(t, err)
		programs.AssertExpectations(t)
	})
}
