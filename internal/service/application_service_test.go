package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TravisChandler1/ewaede/internal/models"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
	"github.com/TravisChandler1/ewaede/pkg/storage"
)

type mockApplicationRepo struct {
	apps    map[string]*models.TeacherApplication
	reviews []string
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *models.TeacherApplication) error {
	if m.apps == nil {
		m.apps = make(map[string]*models.TeacherApplication)
	}
	if app.ID == "" {
		app.ID = "app-" + app.UserID
	}
	copy := *app
	m.apps[app.ID] = &copy
	return nil
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id string) (*models.TeacherApplication, error) {
	if app, ok := m.apps[id]; ok {
		copy := *app
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationRepo) FindLatestByUser(ctx context.Context, userID string) (*models.TeacherApplication, error) {
	var latest *models.TeacherApplication
	for _, app := range m.apps {
		if app.UserID != userID {
			continue
		}
		if latest == nil || app.AppliedAt.After(latest.AppliedAt) {
			latest = app
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	copy := *latest
	return &copy, nil
}

func (m *mockApplicationRepo) FindActiveByUser(ctx context.Context, userID string) (*models.TeacherApplication, error) {
	for _, app := range m.apps {
		if app.UserID == userID && !app.Status.Terminal() {
			copy := *app
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.TeacherApplication, int, error) {
	var apps []models.TeacherApplication
	for _, app := range m.apps {
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		apps = append(apps, *app)
	}
	return apps, len(apps), nil
}

func (m *mockApplicationRepo) UpdateReview(ctx context.Context, id string, status models.ApplicationStatus, reviewedBy string, reason *string, reviewedAt time.Time) error {
	app, ok := m.apps[id]
	if !ok {
		return sql.ErrNoRows
	}
	app.Status = status
	app.ReviewedBy = &reviewedBy
	app.RejectionReason = reason
	app.ReviewedAt = &reviewedAt
	m.reviews = append(m.reviews, id)
	return nil
}

type mockProfileRepo struct {
	profiles  map[string]*models.UserProfile
	roleFlips map[string]models.UserRole
}

func (m *mockProfileRepo) FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	if p, ok := m.profiles[userID]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *models.UserProfile) error {
	if m.profiles == nil {
		m.profiles = make(map[string]*models.UserProfile)
	}
	copy := *profile
	m.profiles[profile.UserID] = &copy
	return nil
}

func (m *mockProfileRepo) Update(ctx context.Context, profile *models.UserProfile) error {
	copy := *profile
	m.profiles[profile.UserID] = &copy
	return nil
}

func (m *mockProfileRepo) UpdateRole(ctx context.Context, userID string, role models.UserRole) error {
	if m.roleFlips == nil {
		m.roleFlips = make(map[string]models.UserRole)
	}
	m.roleFlips[userID] = role
	if p, ok := m.profiles[userID]; ok {
		p.Role = role
	}
	return nil
}

func (m *mockProfileRepo) Deactivate(ctx context.Context, userID string) error {
	if p, ok := m.profiles[userID]; ok {
		p.IsActive = false
		return nil
	}
	return sql.ErrNoRows
}

func (m *mockProfileRepo) List(ctx context.Context, filter models.ProfileFilter) ([]models.UserProfile, int, error) {
	var profiles []models.UserProfile
	for _, p := range m.profiles {
		profiles = append(profiles, *p)
	}
	return profiles, len(profiles), nil
}

type mockAuditRepo struct {
	logs []*models.AuditLog
}

func (m *mockAuditRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func studentProfile(userID string) *models.UserProfile {
	return &models.UserProfile{
		UserID:   userID,
		FullName: "Adaeze Okafor",
		Email:    userID + "@example.com",
		Role:     models.RoleStudent,
		IsActive: true,
	}
}

func validApplication() SubmitApplicationRequest {
	return SubmitApplicationRequest{
		Qualifications:   "BA Yoruba Linguistics",
		ExperienceYears:  4,
		TeachingSubjects: []string{"grammar", "conversation"},
		CoverLetter:      "I have taught Yoruba for four years.",
	}
}

func newApplicationService(apps *mockApplicationRepo, profiles *mockProfileRepo, audits *mockAuditRepo) *ApplicationService {
	return NewApplicationService(apps, profiles, audits, validator.New(), zap.NewNop())
}

func TestSubmitApplication(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	apps := &mockApplicationRepo{}
	audits := &mockAuditRepo{}
	svc := newApplicationService(apps, profiles, audits)

	app, err := svc.Submit(context.Background(), "u1", validApplication())
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, "Adaeze Okafor", app.FullName)
	assert.NotEmpty(t, audits.logs)
}

func TestSubmitApplicationAcceptsSignedCVLink(t *testing.T) {
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("u1", "cv/u1/resume.pdf")
	require.NoError(t, err)

	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	apps := &mockApplicationRepo{}
	svc := newApplicationService(apps, profiles, &mockAuditRepo{})

	req := validApplication()
	cvURL := "/api/v1/files/download?token=" + token
	req.CVURL = &cvURL

	app, err := svc.Submit(context.Background(), "u1", req)
	require.NoError(t, err)
	require.NotNil(t, app.CVURL)
	assert.Equal(t, cvURL, *app.CVURL)
}

func TestSubmitApplicationDuplicateConflict(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	apps := &mockApplicationRepo{}
	svc := newApplicationService(apps, profiles, &mockAuditRepo{})

	_, err := svc.Submit(context.Background(), "u1", validApplication())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "u1", validApplication())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSubmitApplicationAfterRejectionAllowed(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	reason := "not enough experience"
	apps := &mockApplicationRepo{apps: map[string]*models.TeacherApplication{
		"old": {ID: "old", UserID: "u1", Status: models.ApplicationRejected, RejectionReason: &reason, AppliedAt: time.Now().Add(-time.Hour)},
	}}
	svc := newApplicationService(apps, profiles, &mockAuditRepo{})

	_, err := svc.Submit(context.Background(), "u1", validApplication())
	require.NoError(t, err)
}

func TestReviewApproveGrantsTeacherRole(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	apps := &mockApplicationRepo{apps: map[string]*models.TeacherApplication{
		"a1": {ID: "a1", UserID: "u1", Status: models.ApplicationPending, AppliedAt: time.Now()},
	}}
	audits := &mockAuditRepo{}
	svc := newApplicationService(apps, profiles, audits)

	app, err := svc.Review(context.Background(), "a1", "admin1", ReviewApplicationRequest{Action: models.ReviewApprove})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, app.Status)
	assert.Equal(t, models.RoleTeacher, profiles.roleFlips["u1"])
	assert.NotEmpty(t, audits.logs)
}

func TestReviewRejectRecordsDefaultReason(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	apps := &mockApplicationRepo{apps: map[string]*models.TeacherApplication{
		"a1": {ID: "a1", UserID: "u1", Status: models.ApplicationPending, AppliedAt: time.Now()},
	}}
	svc := newApplicationService(apps, profiles, &mockAuditRepo{})

	app, err := svc.Review(context.Background(), "a1", "admin1", ReviewApplicationRequest{Action: models.ReviewReject})
	require.NoError(t, err)
	require.NotNil(t, app.RejectionReason)
	assert.Equal(t, models.DefaultRejectionReason, *app.RejectionReason)
	assert.Empty(t, profiles.roleFlips)
}

func TestReviewRejectKeepsProvidedReason(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	apps := &mockApplicationRepo{apps: map[string]*models.TeacherApplication{
		"a1": {ID: "a1", UserID: "u1", Status: models.ApplicationUnderReview, AppliedAt: time.Now()},
	}}
	svc := newApplicationService(apps, profiles, &mockAuditRepo{})

	reason := "Qualifications could not be verified"
	app, err := svc.Review(context.Background(), "a1", "admin1", ReviewApplicationRequest{Action: models.ReviewReject, Reason: &reason})
	require.NoError(t, err)
	require.NotNil(t, app.RejectionReason)
	assert.Equal(t, reason, *app.RejectionReason)
}

func TestReviewTerminalApplicationConflict(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	apps := &mockApplicationRepo{apps: map[string]*models.TeacherApplication{
		"a1": {ID: "a1", UserID: "u1", Status: models.ApplicationApproved, AppliedAt: time.Now()},
	}}
	svc := newApplicationService(apps, profiles, &mockAuditRepo{})

	_, err := svc.Review(context.Background(), "a1", "admin1", ReviewApplicationRequest{Action: models.ReviewReject})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReviewUnderReviewFromPendingOnly(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	apps := &mockApplicationRepo{apps: map[string]*models.TeacherApplication{
		"a1": {ID: "a1", UserID: "u1", Status: models.ApplicationUnderReview, AppliedAt: time.Now()},
	}}
	svc := newApplicationService(apps, profiles, &mockAuditRepo{})

	_, err := svc.Review(context.Background(), "a1", "admin1", ReviewApplicationRequest{Action: models.ReviewUnderReview})
	require.Error(t, err)
}

func TestStatusReturnsNilWhenNoApplication(t *testing.T) {
	svc := newApplicationService(&mockApplicationRepo{}, &mockProfileRepo{}, &mockAuditRepo{})
	app, err := svc.Status(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, app)
}
