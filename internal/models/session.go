package models

import "time"

// SessionStatus enumerates the live session lifecycle.
//
//	scheduled -> live -> completed
//	scheduled -> cancelled
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionLive      SessionStatus = "live"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// LiveSession is a teacher-hosted class slot with bounded capacity.
type LiveSession struct {
	ID              string        `db:"id" json:"id"`
	Title           string        `db:"title" json:"title"`
	Description     string        `db:"description" json:"description"`
	TeacherID       string        `db:"teacher_id" json:"teacher_id"`
	ScheduledDate   time.Time     `db:"scheduled_date" json:"scheduled_date"`
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	MaxParticipants int           `db:"max_participants" json:"max_participants"`
	LearningLevel   *string       `db:"learning_level" json:"learning_level,omitempty"`
	SessionType     string        `db:"session_type" json:"session_type"`
	MeetingURL      *string       `db:"meeting_url" json:"meeting_url,omitempty"`
	Status          SessionStatus `db:"status" json:"status"`
	StartedAt       *time.Time    `db:"started_at" json:"started_at,omitempty"`
	EndedAt         *time.Time    `db:"ended_at" json:"ended_at,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionSummary decorates a session with listing metadata.
type SessionSummary struct {
	LiveSession
	TeacherName     string     `db:"teacher_name" json:"teacher_name"`
	RegisteredCount int        `db:"registered_count" json:"registered_count"`
	IsRegistered    bool       `db:"is_registered" json:"is_registered"`
	RegisteredAt    *time.Time `db:"registered_at" json:"registered_at,omitempty"`
	Attended        *bool      `db:"attended" json:"attended,omitempty"`
}

// SessionRegistration links a user to a live session.
type SessionRegistration struct {
	ID           string     `db:"id" json:"id"`
	SessionID    string     `db:"session_id" json:"session_id"`
	UserID       string     `db:"user_id" json:"user_id"`
	RegisteredAt time.Time  `db:"registered_at" json:"registered_at"`
	Attended     bool       `db:"attended" json:"attended"`
	AttendedAt   *time.Time `db:"attended_at" json:"attended_at,omitempty"`
}

// SessionParticipant is a registration joined with profile details.
type SessionParticipant struct {
	SessionRegistration
	FullName      string  `db:"full_name" json:"full_name"`
	LearningLevel *string `db:"learning_level" json:"learning_level,omitempty"`
	AvatarURL     *string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// SessionListType selects which listing a caller wants.
type SessionListType string

const (
	SessionListAvailable  SessionListType = "available"
	SessionListRegistered SessionListType = "registered"
	SessionListCreated    SessionListType = "created"
)
