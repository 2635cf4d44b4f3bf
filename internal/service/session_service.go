package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/TravisChandler1/ewaede/internal/models"
	"github.com/TravisChandler1/ewaede/internal/repository"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
)

type sessionRepository interface {
	Create(ctx context.Context, session *models.LiveSession) error
	FindByID(ctx context.Context, id string) (*models.LiveSession, error)
	FindSummaryByID(ctx context.Context, id, viewerID string) (*models.SessionSummary, error)
	ListAvailable(ctx context.Context, viewerID string) ([]models.SessionSummary, error)
	ListRegistered(ctx context.Context, viewerID string) ([]models.SessionSummary, error)
	ListCreated(ctx context.Context, teacherID string) ([]models.SessionSummary, error)
	Update(ctx context.Context, session *models.LiveSession) error
	SetStatus(ctx context.Context, id string, status models.SessionStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
	Register(ctx context.Context, sessionID, userID string) (*models.SessionRegistration, error)
	Unregister(ctx context.Context, sessionID, userID string) error
	MarkAttendance(ctx context.Context, sessionID, userID string, at time.Time) error
	Participants(ctx context.Context, sessionID string) ([]models.SessionParticipant, error)
}

// CreateSessionRequest is the teacher payload for scheduling a session.
type CreateSessionRequest struct {
	Title           string  `json:"title" validate:"required"`
	Description     string  `json:"description"`
	ScheduledDate   string  `json:"scheduled_date" validate:"required"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0"`
	MaxParticipants int     `json:"max_participants" validate:"required,gt=0"`
	LearningLevel   *string `json:"learning_level,omitempty"`
	SessionType     string  `json:"session_type" validate:"required"`
	MeetingURL      *string `json:"meeting_url,omitempty" validate:"omitempty,url"`
}

// UpdateSessionRequest carries partial session edits.
type UpdateSessionRequest struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	ScheduledDate   *string `json:"scheduled_date,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty" validate:"omitempty,gt=0"`
	MaxParticipants *int    `json:"max_participants,omitempty" validate:"omitempty,gt=0"`
	LearningLevel   *string `json:"learning_level,omitempty"`
	MeetingURL      *string `json:"meeting_url,omitempty" validate:"omitempty,url"`
}

// SessionService implements the live session lifecycle and registration.
type SessionService struct {
	repo      sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(repo sessionRepository, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{repo: repo, validator: validate, logger: logger}
}

// Create schedules a session owned by the calling teacher.
func (s *SessionService) Create(ctx context.Context, teacherID string, req CreateSessionRequest) (*models.LiveSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	when, err := time.Parse(time.RFC3339, req.ScheduledDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scheduled_date must be RFC 3339")
	}
	if when.Before(time.Now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scheduled_date must be in the future")
	}

	session := &models.LiveSession{
		Title:           req.Title,
		Description:     req.Description,
		TeacherID:       teacherID,
		ScheduledDate:   when.UTC(),
		DurationMinutes: req.DurationMinutes,
		MaxParticipants: req.MaxParticipants,
		LearningLevel:   req.LearningLevel,
		SessionType:     req.SessionType,
		MeetingURL:      req.MeetingURL,
		Status:          models.SessionScheduled,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return session, nil
}

// List returns one of the three session listings for the viewer.
func (s *SessionService) List(ctx context.Context, viewerID string, listType models.SessionListType) ([]models.SessionSummary, error) {
	var (
		sessions []models.SessionSummary
		err      error
	)
	switch listType {
	case models.SessionListRegistered:
		sessions, err = s.repo.ListRegistered(ctx, viewerID)
	case models.SessionListCreated:
		sessions, err = s.repo.ListCreated(ctx, viewerID)
	default:
		sessions, err = s.repo.ListAvailable(ctx, viewerID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// Get returns a session summary as seen by the viewer.
func (s *SessionService) Get(ctx context.Context, id, viewerID string) (*models.SessionSummary, error) {
	summary, err := s.repo.FindSummaryByID(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return summary, nil
}

// Update edits a session. Only the owning teacher or an admin may edit, and
// completed or cancelled sessions are immutable.
func (s *SessionService) Update(ctx context.Context, id string, caller *models.JWTClaims, req UpdateSessionRequest) (*models.LiveSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	session, err := s.ownedSession(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionCompleted || session.Status == models.SessionCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "session can no longer be edited")
	}

	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.Description != nil {
		session.Description = *req.Description
	}
	if req.ScheduledDate != nil {
		when, err := time.Parse(time.RFC3339, *req.ScheduledDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "scheduled_date must be RFC 3339")
		}
		session.ScheduledDate = when.UTC()
	}
	if req.DurationMinutes != nil {
		session.DurationMinutes = *req.DurationMinutes
	}
	if req.MaxParticipants != nil {
		session.MaxParticipants = *req.MaxParticipants
	}
	if req.LearningLevel != nil {
		session.LearningLevel = req.LearningLevel
	}
	if req.MeetingURL != nil {
		session.MeetingURL = req.MeetingURL
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}
	return session, nil
}

// Delete removes a session. Only the owning teacher or an admin may delete,
// and never while the session is live.
func (s *SessionService) Delete(ctx context.Context, id string, caller *models.JWTClaims) error {
	session, err := s.ownedSession(ctx, id, caller)
	if err != nil {
		return err
	}
	if session.Status == models.SessionLive {
		return appErrors.Clone(appErrors.ErrConflict, "a live session cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	return nil
}

// Register books a seat for the viewer. Capacity and duplicate checks happen
// atomically in the repository.
func (s *SessionService) Register(ctx context.Context, sessionID, userID string) (*models.SessionRegistration, error) {
	reg, err := s.repo.Register(ctx, sessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		case errors.Is(err, repository.ErrCapacityFull):
			return nil, appErrors.Clone(appErrors.ErrConflict, "Session is full")
		case errors.Is(err, repository.ErrDuplicateMember):
			return nil, appErrors.Clone(appErrors.ErrConflict, "you are already registered for this session")
		case errors.Is(err, repository.ErrNotJoinable):
			return nil, appErrors.Clone(appErrors.ErrConflict, "session is not open for registration")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register")
	}
	return reg, nil
}

// Unregister releases the viewer's seat.
func (s *SessionService) Unregister(ctx context.Context, sessionID, userID string) error {
	if err := s.repo.Unregister(ctx, sessionID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "you are not registered for this session")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unregister")
	}
	return nil
}

// Start moves a scheduled session to live. Owner or admin only.
func (s *SessionService) Start(ctx context.Context, id string, caller *models.JWTClaims) error {
	return s.transition(ctx, id, caller, models.SessionScheduled, models.SessionLive)
}

// End moves a live session to completed. Owner or admin only.
func (s *SessionService) End(ctx context.Context, id string, caller *models.JWTClaims) error {
	return s.transition(ctx, id, caller, models.SessionLive, models.SessionCompleted)
}

// Cancel cancels a session that has not completed. Owner or admin only.
func (s *SessionService) Cancel(ctx context.Context, id string, caller *models.JWTClaims) error {
	session, err := s.ownedSession(ctx, id, caller)
	if err != nil {
		return err
	}
	if session.Status == models.SessionCompleted || session.Status == models.SessionCancelled {
		return appErrors.Clone(appErrors.ErrConflict, "session can no longer be cancelled")
	}
	if err := s.repo.SetStatus(ctx, id, models.SessionCancelled, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel session")
	}
	return nil
}

// MarkAttendance flags a registered participant as present. Owner or admin
// only.
func (s *SessionService) MarkAttendance(ctx context.Context, sessionID, participantID string, caller *models.JWTClaims) error {
	if _, err := s.ownedSession(ctx, sessionID, caller); err != nil {
		return err
	}
	if err := s.repo.MarkAttendance(ctx, sessionID, participantID, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "participant is not registered for this session")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	return nil
}

// Participants lists registered users. Owner or admin only.
func (s *SessionService) Participants(ctx context.Context, sessionID string, caller *models.JWTClaims) ([]models.SessionParticipant, error) {
	if _, err := s.ownedSession(ctx, sessionID, caller); err != nil {
		return nil, err
	}
	participants, err := s.repo.Participants(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participants")
	}
	return participants, nil
}

func (s *SessionService) transition(ctx context.Context, id string, caller *models.JWTClaims, from, to models.SessionStatus) error {
	session, err := s.ownedSession(ctx, id, caller)
	if err != nil {
		return err
	}
	if session.Status != from {
		return appErrors.Clone(appErrors.ErrConflict, "session is not in the required state")
	}
	if err := s.repo.SetStatus(ctx, id, to, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session status")
	}
	return nil
}

func (s *SessionService) ownedSession(ctx context.Context, id string, caller *models.JWTClaims) (*models.LiveSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if caller.Role != models.RoleAdmin && session.TeacherID != caller.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not own this session")
	}
	return session, nil
}
