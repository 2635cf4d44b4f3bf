package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/TravisChandler1/ewaede/internal/models"
)

const sessionColumns = `ls.id, ls.title, ls.description, ls.teacher_id, ls.scheduled_date, ls.duration_minutes, ls.max_participants, ls.learning_level, ls.session_type, ls.meeting_url, ls.status, ls.started_at, ls.ended_at, ls.created_at, ls.updated_at`

// SessionRepository provides database access for live sessions and their
// registrations.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new scheduled session.
func (r *SessionRepository) Create(ctx context.Context, session *models.LiveSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = models.SessionScheduled
	}

	const query = `INSERT INTO live_sessions (id, title, description, teacher_id, scheduled_date, duration_minutes, max_participants, learning_level, session_type, meeting_url, status, created_at, updated_at) VALUES (:id, :title, :description, :teacher_id, :scheduled_date, :duration_minutes, :max_participants, :learning_level, :session_type, :meeting_url, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindByID returns a session row without registration context.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.LiveSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM live_sessions ls WHERE ls.id = $1 LIMIT 1`, sessionColumns)
	var session models.LiveSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find session by id: %w", err)
	}
	return &session, nil
}

// FindSummaryByID returns a session with teacher name, registration count and
// the viewer's registration state.
func (r *SessionRepository) FindSummaryByID(ctx context.Context, id, viewerID string) (*models.SessionSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
		COALESCE(tp.full_name, '') AS teacher_name,
		(SELECT COUNT(*) FROM session_registrations sr WHERE sr.session_id = ls.id) AS registered_count,
		EXISTS (SELECT 1 FROM session_registrations sr WHERE sr.session_id = ls.id AND sr.user_id = $2) AS is_registered
		FROM live_sessions ls
		LEFT JOIN user_profiles tp ON tp.user_id = ls.teacher_id
		WHERE ls.id = $1 LIMIT 1`, sessionColumns)
	var summary models.SessionSummary
	if err := r.db.GetContext(ctx, &summary, query, id, viewerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find session summary: %w", err)
	}
	return &summary, nil
}

// ListAvailable returns upcoming open sessions with the viewer's registration
// state resolved.
func (r *SessionRepository) ListAvailable(ctx context.Context, viewerID string) ([]models.SessionSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
		COALESCE(tp.full_name, '') AS teacher_name,
		(SELECT COUNT(*) FROM session_registrations sr WHERE sr.session_id = ls.id) AS registered_count,
		EXISTS (SELECT 1 FROM session_registrations sr WHERE sr.session_id = ls.id AND sr.user_id = $1) AS is_registered
		FROM live_sessions ls
		LEFT JOIN user_profiles tp ON tp.user_id = ls.teacher_id
		WHERE ls.status IN ('scheduled', 'live')
		ORDER BY ls.scheduled_date ASC`, sessionColumns)
	var sessions []models.SessionSummary
	if err := r.db.SelectContext(ctx, &sessions, query, viewerID); err != nil {
		return nil, fmt.Errorf("list available sessions: %w", err)
	}
	return sessions, nil
}

// ListRegistered returns sessions the viewer is registered for.
func (r *SessionRepository) ListRegistered(ctx context.Context, viewerID string) ([]models.SessionSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
		COALESCE(tp.full_name, '') AS teacher_name,
		(SELECT COUNT(*) FROM session_registrations src WHERE src.session_id = ls.id) AS registered_count,
		TRUE AS is_registered,
		sr.registered_at AS registered_at,
		sr.attended AS attended
		FROM session_registrations sr
		JOIN live_sessions ls ON ls.id = sr.session_id
		LEFT JOIN user_profiles tp ON tp.user_id = ls.teacher_id
		WHERE sr.user_id = $1
		ORDER BY ls.scheduled_date ASC`, sessionColumns)
	var sessions []models.SessionSummary
	if err := r.db.SelectContext(ctx, &sessions, query, viewerID); err != nil {
		return nil, fmt.Errorf("list registered sessions: %w", err)
	}
	return sessions, nil
}

// ListCreated returns sessions created by the given teacher.
func (r *SessionRepository) ListCreated(ctx context.Context, teacherID string) ([]models.SessionSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
		COALESCE(tp.full_name, '') AS teacher_name,
		(SELECT COUNT(*) FROM session_registrations sr WHERE sr.session_id = ls.id) AS registered_count,
		FALSE AS is_registered
		FROM live_sessions ls
		LEFT JOIN user_profiles tp ON tp.user_id = ls.teacher_id
		WHERE ls.teacher_id = $1
		ORDER BY ls.scheduled_date DESC`, sessionColumns)
	var sessions []models.SessionSummary
	if err := r.db.SelectContext(ctx, &sessions, query, teacherID); err != nil {
		return nil, fmt.Errorf("list created sessions: %w", err)
	}
	return sessions, nil
}

// Update persists mutable session fields.
func (r *SessionRepository) Update(ctx context.Context, session *models.LiveSession) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE live_sessions SET title = :title, description = :description, scheduled_date = :scheduled_date, duration_minutes = :duration_minutes, max_participants = :max_participants, learning_level = :learning_level, session_type = :session_type, meeting_url = :meeting_url, status = :status, started_at = :started_at, ended_at = :ended_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// SetStatus moves a session through its lifecycle, stamping the transition
// time into started_at or ended_at as appropriate.
func (r *SessionRepository) SetStatus(ctx context.Context, id string, status models.SessionStatus, at time.Time) error {
	var query string
	switch status {
	case models.SessionLive:
		query = `UPDATE live_sessions SET status = $2, started_at = $3, updated_at = $3 WHERE id = $1`
	case models.SessionCompleted:
		query = `UPDATE live_sessions SET status = $2, ended_at = $3, updated_at = $3 WHERE id = $1`
	default:
		query = `UPDATE live_sessions SET status = $2, updated_at = $3 WHERE id = $1`
	}
	if _, err := r.db.ExecContext(ctx, query, id, status, at); err != nil {
		return fmt.Errorf("set session status: %w", err)
	}
	return nil
}

// Delete removes a session and, via cascade, its registrations.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM live_sessions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Register atomically checks capacity and inserts a registration. The session
// row is locked for the duration of the check so concurrent registrations for
// the last seat serialize; the unique (session_id, user_id) constraint backs
// the duplicate check.
func (r *SessionRepository) Register(ctx context.Context, sessionID, userID string) (*models.SessionRegistration, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin register tx: %w", err)
	}
	defer tx.Rollback()

	var session struct {
		MaxParticipants int                  `db:"max_participants"`
		Status          models.SessionStatus `db:"status"`
	}
	const lockQuery = `SELECT max_participants, status FROM live_sessions WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &session, lockQuery, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock session: %w", err)
	}

	if session.Status != models.SessionScheduled {
		return nil, ErrNotJoinable
	}

	var registered int
	const countQuery = `SELECT COUNT(*) FROM session_registrations WHERE session_id = $1`
	if err := tx.GetContext(ctx, &registered, countQuery, sessionID); err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	if registered >= session.MaxParticipants {
		return nil, ErrCapacityFull
	}

	reg := &models.SessionRegistration{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		UserID:       userID,
		RegisteredAt: time.Now().UTC(),
	}
	const insertQuery = `INSERT INTO session_registrations (id, session_id, user_id, registered_at, attended) VALUES ($1, $2, $3, $4, FALSE)`
	if _, err := tx.ExecContext(ctx, insertQuery, reg.ID, reg.SessionID, reg.UserID, reg.RegisteredAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrDuplicateMember
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit register tx: %w", err)
	}
	return reg, nil
}

// Unregister removes a registration. Returns sql.ErrNoRows when the user was
// not registered.
func (r *SessionRepository) Unregister(ctx context.Context, sessionID, userID string) error {
	const query = `DELETE FROM session_registrations WHERE session_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("unregister: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unregister rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAttendance flags a registration as attended.
func (r *SessionRepository) MarkAttendance(ctx context.Context, sessionID, userID string, at time.Time) error {
	const query = `UPDATE session_registrations SET attended = TRUE, attended_at = $3 WHERE session_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, sessionID, userID, at)
	if err != nil {
		return fmt.Errorf("mark attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark attendance rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Participants lists registered users for a session in registration order.
func (r *SessionRepository) Participants(ctx context.Context, sessionID string) ([]models.SessionParticipant, error) {
	const query = `SELECT sr.id, sr.session_id, sr.user_id, sr.registered_at, sr.attended, sr.attended_at, up.full_name, up.learning_level, up.avatar_url
		FROM session_registrations sr
		JOIN user_profiles up ON up.user_id = sr.user_id
		WHERE sr.session_id = $1
		ORDER BY sr.registered_at ASC`
	var participants []models.SessionParticipant
	if err := r.db.SelectContext(ctx, &participants, query, sessionID); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}
