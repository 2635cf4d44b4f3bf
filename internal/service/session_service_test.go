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
	"github.com/TravisChandler1/ewaede/internal/repository"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
)

type mockSessionRepo struct {
	sessions      map[string]*models.LiveSession
	registrations map[string]map[string]bool
	statusChanges []models.SessionStatus
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.LiveSession) error {
	if m.sessions == nil {
		m.sessions = make(map[string]*models.LiveSession)
	}
	if session.ID == "" {
		session.ID = "s-" + session.Title
	}
	copy := *session
	m.sessions[session.ID] = &copy
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.LiveSession, error) {
	if s, ok := m.sessions[id]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) FindSummaryByID(ctx context.Context, id, viewerID string) (*models.SessionSummary, error) {
	s, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.SessionSummary{LiveSession: *s, RegisteredCount: len(m.registrations[id]), IsRegistered: m.registrations[id][viewerID]}, nil
}

func (m *mockSessionRepo) ListAvailable(ctx context.Context, viewerID string) ([]models.SessionSummary, error) {
	return nil, nil
}

func (m *mockSessionRepo) ListRegistered(ctx context.Context, viewerID string) ([]models.SessionSummary, error) {
	return nil, nil
}

func (m *mockSessionRepo) ListCreated(ctx context.Context, teacherID string) ([]models.SessionSummary, error) {
	return nil, nil
}

func (m *mockSessionRepo) Update(ctx context.Context, session *models.LiveSession) error {
	copy := *session
	m.sessions[session.ID] = &copy
	return nil
}

func (m *mockSessionRepo) SetStatus(ctx context.Context, id string, status models.SessionStatus, at time.Time) error {
	s, ok := m.sessions[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.Status = status
	m.statusChanges = append(m.statusChanges, status)
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) Register(ctx context.Context, sessionID, userID string) (*models.SessionRegistration, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if s.Status != models.SessionScheduled {
		return nil, repository.ErrNotJoinable
	}
	if m.registrations == nil {
		m.registrations = make(map[string]map[string]bool)
	}
	if m.registrations[sessionID] == nil {
		m.registrations[sessionID] = make(map[string]bool)
	}
	if m.registrations[sessionID][userID] {
		return nil, repository.ErrDuplicateMember
	}
	if len(m.registrations[sessionID]) >= s.MaxParticipants {
		return nil, repository.ErrCapacityFull
	}
	m.registrations[sessionID][userID] = true
	return &models.SessionRegistration{SessionID: sessionID, UserID: userID, RegisteredAt: time.Now()}, nil
}

func (m *mockSessionRepo) Unregister(ctx context.Context, sessionID, userID string) error {
	if !m.registrations[sessionID][userID] {
		return sql.ErrNoRows
	}
	delete(m.registrations[sessionID], userID)
	return nil
}

func (m *mockSessionRepo) MarkAttendance(ctx context.Context, sessionID, userID string, at time.Time) error {
	if !m.registrations[sessionID][userID] {
		return sql.ErrNoRows
	}
	return nil
}

func (m *mockSessionRepo) Participants(ctx context.Context, sessionID string) ([]models.SessionParticipant, error) {
	return nil, nil
}

func scheduledSession(id, teacherID string, capacity int) *models.LiveSession {
	return &models.LiveSession{
		ID:              id,
		Title:           "Tones in Yoruba",
		TeacherID:       teacherID,
		ScheduledDate:   time.Now().Add(24 * time.Hour),
		DurationMinutes: 60,
		MaxParticipants: capacity,
		SessionType:     "group",
		Status:          models.SessionScheduled,
	}
}

func newSessionService(repo *mockSessionRepo) *SessionService {
	return NewSessionService(repo, validator.New(), zap.NewNop())
}

func teacherClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleTeacher}
}

func TestRegisterForSession(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{"s1": scheduledSession("s1", "t1", 2)}}
	svc := newSessionService(repo)

	reg, err := svc.Register(context.Background(), "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", reg.UserID)
}

func TestRegisterFullSessionConflict(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{"s1": scheduledSession("s1", "t1", 1)}}
	svc := newSessionService(repo)

	_, err := svc.Register(context.Background(), "s1", "u1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "s1", "u2")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "Session is full", appErr.Message)
}

func TestRegisterTwiceConflict(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{"s1": scheduledSession("s1", "t1", 5)}}
	svc := newSessionService(repo)

	_, err := svc.Register(context.Background(), "s1", "u1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "s1", "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUnregisterWithoutRegistrationNotFound(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{"s1": scheduledSession("s1", "t1", 5)}}
	svc := newSessionService(repo)

	err := svc.Unregister(context.Background(), "s1", "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRegisterCancelledSessionConflict(t *testing.T) {
	session := scheduledSession("s1", "t1", 5)
	session.Status = models.SessionCancelled
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{"s1": session}}
	svc := newSessionService(repo)

	_, err := svc.Register(context.Background(), "s1", "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSessionLifecycle(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{"s1": scheduledSession("s1", "t1", 5)}}
	svc := newSessionService(repo)
	caller := teacherClaims("t1")

	require.NoError(t, svc.Start(context.Background(), "s1", caller))
	assert.Equal(t, models.SessionLive, repo.sessions["s1"].Status)

	require.NoError(t, svc.End(context.Background(), "s1", caller))
	assert.Equal(t, models.SessionCompleted, repo.sessions["s1"].Status)
}

func TestStartRequiresScheduledState(t *testing.T) {
	session := scheduledSession("s1", "t1", 5)
	session.Status = models.SessionCompleted
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{"s1": session}}
	svc := newSessionService(repo)

	err := svc.Start(context.Background(), "s1", teacherClaims("t1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLifecycleForbiddenForNonOwner(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{"s1": scheduledSession("s1", "t1", 5)}}
	svc := newSessionService(repo)

	err := svc.Start(context.Background(), "s1", teacherClaims("t2"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestLifecycleAllowedForAdmin(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{"s1": scheduledSession("s1", "t1", 5)}}
	svc := newSessionService(repo)

	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	require.NoError(t, svc.Cancel(context.Background(), "s1", admin))
	assert.Equal(t, models.SessionCancelled, repo.sessions["s1"].Status)
}

func TestDeleteLiveSessionConflict(t *testing.T) {
	session := scheduledSession("s1", "t1", 5)
	session.Status = models.SessionLive
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{"s1": session}}
	svc := newSessionService(repo)

	err := svc.Delete(context.Background(), "s1", teacherClaims("t1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Contains(t, repo.sessions, "s1")
}

func TestDeleteScheduledSession(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{"s1": scheduledSession("s1", "t1", 5)}}
	svc := newSessionService(repo)

	require.NoError(t, svc.Delete(context.Background(), "s1", teacherClaims("t1")))
	assert.NotContains(t, repo.sessions, "s1")
}

func TestCreateSessionRejectsPastDate(t *testing.T) {
	repo := &mockSessionRepo{}
	svc := newSessionService(repo)

	req := CreateSessionRequest{
		Title:           "Tones in Yoruba",
		ScheduledDate:   time.Now().Add(-time.Hour).Format(time.RFC3339),
		DurationMinutes: 60,
		MaxParticipants: 10,
		SessionType:     "group",
	}
	_, err := svc.Create(context.Background(), "t1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
