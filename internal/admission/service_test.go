package admission_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campushaiti/campushaiti/internal/admission"
	"github.com/campushaiti/campushaiti/internal/audit"
	"github.com/campushaiti/campushaiti/internal/identity"
	"github.com/campushaiti/campushaiti/internal/notify"
	"github.com/campushaiti/campushaiti/internal/school"
)

type mockAppRepo struct {
	mock.Mock
}

func (m *mockAppRepo) Create(ctx context.Context, app *admission.Application) error {
	return m.Called(ctx, app).Error(0)
}

func (m *mockAppRepo) GetByID(ctx context.Context, applicationID string) (*admission.Application, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admission.Application), args.Error(1)
}

func (m *mockAppRepo) Update(ctx context.Context, app *admission.Application) error {
	return m.Called(ctx, app).Error(0)
}

func (m *mockAppRepo) Delete(ctx context.Context, applicationID string) error {
	return m.Called(ctx, applicationID).Error(0)
}

func (m *mockAppRepo) ListByApplicant(ctx context.Context, applicantID string) ([]*admission.Application, error) {
	args := m.Called(ctx, applicantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*admission.Application), args.Error(1)
}

func (m *mockAppRepo) ListBySchool(ctx context.Context, schoolID string, status admission.Status, limit, offset int) ([]*admission.Application, error) {
	args := m.Called(ctx, schoolID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*admission.Application), args.Error(1)
}

func (m *mockAppRepo) ListAll(ctx context.Context, limit, offset int) ([]*admission.Application, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*admission.Application), args.Error(1)
}

func (m *mockAppRepo) ExistsForProgram(ctx context.Context, applicantID, programID string) (bool, error) {
	args := m.Called(ctx, applicantID, programID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAppRepo) CountBySchoolStatus(ctx context.Context, schoolID string) (map[admission.Status]int, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[admission.Status]int), args.Error(1)
}

type mockDocRepo struct {
	mock.Mock
}

func (m *mockDocRepo) Create(ctx context.Context, doc *admission.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *mockDocRepo) GetByID(ctx context.Context, documentID string) (*admission.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admission.Document), args.Error(1)
}

func (m *mockDocRepo) Delete(ctx context.Context, documentID string) error {
	return m.Called(ctx, documentID).Error(0)
}

func (m *mockDocRepo) ListByApplication(ctx context.Context, applicationID string) ([]*admission.Document, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*admission.Document), args.Error(1)
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

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) UpdateLockout(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time) error {
	return m.Called(ctx, userID, failedAttempts, lockedUntil).Error(0)
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*identity.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) GetCredentials(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockUserRepo) SetCredentials(ctx context.Context, userID, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

type recordingMailer struct {
	sent []notify.Message
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) {
	m.sent = append(m.sent, msg)
}

type fixture struct {
	svc      *admission.Service
	apps     *mockAppRepo
	docs     *mockDocRepo
	programs *mockProgramRepo
	schools  *mockSchoolRepo
	users    *mockUserRepo
	mailer   *recordingMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		apps:     new(mockAppRepo),
		docs:     new(mockDocRepo),
		programs: new(mockProgramRepo),
		schools:  new(mockSchoolRepo),
		users:    new(mockUserRepo),
		mailer:   &recordingMailer{},
	}
	f.svc = admission.NewService(f.apps, f.docs, f.programs, f.schools, f.users, f.mailer, audit.NewSlogLogger())
	return f
}

func completeDraft() *admission.Application {
	birth := time.Date(2004, 5, 12, 0, 0, 0, 0, time.UTC)
	return &admission.Application{
		ID:          "app-1",
		ApplicantID: "u1",
		SchoolID:    "s1",
		ProgramID:   "p1",
		Status:      admission.StatusDraft,
		FeeStatus:   admission.FeeUnpaid,
		GivenName:   "Marie",
		FamilyName:  "Joseph",
		BirthDate:   &birth,
		Phone:       "+509 3456 7890",
	}
}

func TestCreateDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("fee waived when program has no fee", func(t *testing.T) {
		f := newFixture(t)
		f.programs.On("GetByID", ctx, "p1").Return(&school.Program{ID: "p1", SchoolID: "s1", Active: true}, nil)
		f.apps.On("ExistsForProgram", ctx, "u1", "p1").Return(false, nil)
		f.apps.On("Create", ctx, mock.AnythingOfType("*admission.Application")).Return(nil)

		app, err := f.svc.CreateDraft(ctx, "u1", "p1")
		require.NoError(t, err)
		assert.Equal(t, admission.StatusDraft, app.Status)
		assert.Equal(t, admission.FeeWaived, app.FeeStatus)
		assert.Equal(t, "s1", app.SchoolID)
	})

	t.Run("fee unpaid when program charges", func(t *testing.T) {
		f := newFixture(t)
		f.programs.On("GetByID", ctx, "p1").Return(&school.Program{ID: "p1", SchoolID: "s1", Active: true, AppFeeCents: 250000}, nil)
		f.apps.On("ExistsForProgram", ctx, "u1", "p1").Return(false, nil)
		f.apps.On("Create", ctx, mock.AnythingOfType("*admission.Application")).Return(nil)

		app, err := f.svc.CreateDraft(ctx, "u1", "p1")
		require.NoError(t, err)
		assert.Equal(t, admission.FeeUnpaid, app.FeeStatus)
	})

	t.Run("one application per program", func(t *testing.T) {
		f := newFixture(t)
		f.programs.On("GetByID", ctx, "p1").Return(&school.Program{ID: "p1", SchoolID: "s1", Active: true}, nil)
		f.apps.On("ExistsForProgram", ctx, "u1", "p1").Return(true, nil)

		_, err := f.svc.CreateDraft(ctx, "u1", "p1")
		assert.ErrorIs(t, err, admission.ErrDuplicateApplication)
	})

	t.Run("inactive program not applicable", func(t *testing.T) {
		f := newFixture(t)
		f.programs.On("GetByID", ctx, "p1").Return(&school.Program{ID: "p1", SchoolID: "s1", Active: false}, nil)

		_, err := f.svc.CreateDraft(ctx, "u1", "p1")
		assert.ErrorIs(t, err, school.ErrProgramNotFound)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("submits complete draft", func(t *testing.T) {
		f := newFixture(t)
		f.apps.On("GetByID", ctx, "app-1").Return(completeDraft(), nil)
		f.programs.On("GetByID", ctx, "p1").Return(&school.Program{ID: "p1", SchoolID: "s1", Active: true}, nil)
		f.apps.On("Update", ctx, mock.MatchedBy(func(a *admission.Application) bool {
			return a.Status == admission.StatusSubmitted && a.SubmittedAt != nil
		})).Return(nil)

		app, err := f.svc.Submit(ctx, "app-1")
		require.NoError(t, err)
		assert.Equal(t, admission.StatusSubmitted, app.Status)
	})

	t.Run("rejects incomplete draft", func(t *testing.T) {
		f := newFixture(t)
		draft := completeDraft()
		draft.Phone = ""
		f.apps.On("GetByID", ctx, "app-1").Return(draft, nil)

		_, err := f.svc.Submit(ctx, "app-1")
		assert.ErrorIs(t, err, admission.ErrMissingFields)
	})

	t.Run("rejects double submission", func(t *testing.T) {
		f := newFixture(t)
		submitted := completeDraft()
		submitted.Status = admission.StatusSubmitted
		f.apps.On("GetByID", ctx, "app-1").Return(submitted, nil)

		_, err := f.svc.Submit(ctx, "app-1")
		assert.ErrorIs(t, err, admission.ErrAlreadySubmitted)
	})

	t.Run("rejects past deadline", func(t *testing.T) {
		f := newFixture(t)
		past := time.Now().Add(-24 * time.Hour)
		f.apps.On("GetByID", ctx, "app-1").Return(completeDraft(), nil)
		f.programs.On("GetByID", ctx, "p1").Return(&school.Program{ID: "p1", SchoolID: "s1", Active: true, Deadline: &past}, nil)

		_, err := f.svc.Submit(ctx, "app-1")
		assert.Error(t, err)
	})
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()

	submitted := func() *admission.Application {
		a := completeDraft()
		a.Status = admission.StatusSubmitted
		return a
	}

	t.Run("valid transition notifies applicant", func(t *testing.T) {
		f := newFixture(t)
		f.apps.On("GetByID", ctx, "app-1").Return(submitted(), nil)
		f.apps.On("Update", ctx, mock.AnythingOfType("*admission.Application")).Return(nil)
		f.users.On("GetByID", ctx, "u1").Return(&identity.User{ID: "u1", Email: "marie@example.ht"}, nil)
		f.schools.On("GetByID", ctx, "s1").Return(&school.School{ID: "s1", Name: "Université Quisqueya"}, nil)

		app, err := f.svc.ChangeStatus(ctx, "admin-1", "app-1", admission.StatusUnderReview, "")
		require.NoError(t, err)
		assert.Equal(t, admission.StatusUnderReview, app.Status)
		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, "marie@example.ht", f.mailer.sent[0].ToAddress)
	})

	t.Run("acceptance sets decision time", func(t *testing.T) {
		f := newFixture(t)
		f.apps.On("GetByID", ctx, "app-1").Return(submitted(), nil)
		f.apps.On("Update", ctx, mock.AnythingOfType("*admission.Application")).Return(nil)
		f.users.On("GetByID", ctx, "u1").Return(&identity.User{ID: "u1", Email: "marie@example.ht"}, nil)
		f.schools.On("GetByID", ctx, "s1").Return(&school.School{ID: "s1", Name: "UEH"}, nil)

		app, err := f.svc.ChangeStatus(ctx, "admin-1", "app-1", admission.StatusAccepted, "strong dossier")
		require.NoError(t, err)
		assert.NotNil(t, app.DecidedAt)
		assert.Equal(t, "strong dossier", app.ReviewNote)
	})

	t.Run("waitlisted can still be accepted", func(t *testing.T) {
		assert.True(t, admission.CanTransition(admission.StatusWaitlisted, admission.StatusAccepted))
		assert.True(t, admission.CanTransition(admission.StatusWaitlisted, admission.StatusRejected))
	})

	t.Run("terminal and backward moves rejected", func(t *testing.T) {
		assert.False(t, admission.CanTransition(admission.StatusAccepted, admission.StatusRejected))
		assert.False(t, admission.CanTransition(admission.StatusRejected, admission.StatusSubmitted))
		assert.False(t, admission.CanTransition(admission.StatusUnderReview, admission.StatusSubmitted))
		assert.False(t, admission.CanTransition(admission.StatusDraft, admission.StatusAccepted))
	})

	t.Run("invalid transition surfaces error", func(t *testing.T) {
		f := newFixture(t)
		accepted := submitted()
		accepted.Status = admission.StatusAccepted
		f.apps.On("GetByID", ctx, "app-1").Return(accepted, nil)

		_, err := f.svc.ChangeStatus(ctx, "admin-1", "app-1", admission.StatusRejected, "")
		assert.ErrorIs(t, err, admission.ErrInvalidTransition)
	})
}

func TestFees(t *testing.T) {
	ctx := context.Background()

	t.Run("mark paid", func(t *testing.T) {
		f := newFixture(t)
		f.apps.On("GetByID", ctx, "app-1").Return(completeDraft(), nil)
		f.apps.On("Update", ctx, mock.MatchedBy(func(a *admission.Application) bool {
			return a.FeeStatus == admission.FeePaid
		})).Return(nil)

		require.NoError(t, f.svc.MarkFeePaid(ctx, "admin-1", "app-1"))
	})

	t.Run("cannot settle twice", func(t *testing.T) {
		f := newFixture(t)
		paid := completeDraft()
		paid.FeeStatus = admission.FeePaid
		f.apps.On("GetByID", ctx, "app-1").Return(paid, nil)

		err := f.svc.WaiveFee(ctx, "admin-1", "app-1")
		assert.ErrorIs(t, err, admission.ErrFeeAlreadySettled)
	})
}

func TestReviewBoard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.apps.On("CountBySchoolStatus", ctx, "s1").Return(map[admission.Status]int{
		admission.StatusSubmitted: 2,
		admission.StatusAccepted:  1,
	}, nil)
	for _, status := range admission.ReviewStatuses {
		f.apps.On("ListBySchool", ctx, "s1", status, 200, 0).Return([]*admission.Application{}, nil)
	}

	board, err := f.svc.ReviewBoard(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, board.Columns, len(admission.ReviewStatuses))
	assert.Equal(t, 2, board.Counts[admission.StatusSubmitted])
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("attach validates kind and size", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.AttachDocument(ctx, "app-1", "meme", "x.png", "image/png", 100, "k")
		assert.Error(t, err)

		_, err = f.svc.AttachDocument(ctx, "app-1", "transcript", "x.pdf", "application/pdf", 50<<20, "k")
		assert.Error(t, err)
	})

	t.Run("attach to undecided application", func(t *testing.T) {
		f := newFixture(t)
		f.apps.On("GetByID", ctx, "app-1").Return(completeDraft(), nil)
		f.docs.On("Create", ctx, mock.AnythingOfType("*admission.Document")).Return(nil)

		doc, err := f.svc.AttachDocument(ctx, "app-1", "transcript", "releve.pdf", "application/pdf", 120_000, "s1/app-1/releve.pdf")
		require.NoError(t, err)
		assert.NotEmpty(t, doc.ID)
	})

	t.Run("decided applications are frozen", func(t *testing.T) {
		f := newFixture(t)
		decided := completeDraft()
		now := time.Now()
		decided.DecidedAt = &now
		f.apps.On("GetByID", ctx, "app-1").Return(decided, nil)

		_, err := f.svc.AttachDocument(ctx, "app-1", "transcript", "releve.pdf", "application/pdf", 1000, "k")
		assert.ErrorIs(t, err, admission.ErrInvalidTransition)
	})
}
