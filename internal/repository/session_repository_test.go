package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TravisChandler1/ewaede/internal/models"
)

func TestRegisterInsertsWithinCapacity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_participants, status FROM live_sessions WHERE id = (.+) FOR UPDATE").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"max_participants", "status"}).AddRow(20, string(models.SessionScheduled)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM session_registrations`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectExec("INSERT INTO session_registrations").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	reg, err := repo.Register(context.Background(), "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", reg.SessionID)
	assert.Equal(t, "u1", reg.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejectsFullSession(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_participants, status FROM live_sessions WHERE id = (.+) FOR UPDATE").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"max_participants", "status"}).AddRow(20, string(models.SessionScheduled)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM session_registrations`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(20))
	mock.ExpectRollback()

	_, err := repo.Register(context.Background(), "s1", "u1")
	assert.ErrorIs(t, err, ErrCapacityFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejectsClosedSession(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_participants, status FROM live_sessions WHERE id = (.+) FOR UPDATE").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"max_participants", "status"}).AddRow(20, string(models.SessionCompleted)))
	mock.ExpectRollback()

	_, err := repo.Register(context.Background(), "s1", "u1")
	assert.ErrorIs(t, err, ErrNotJoinable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterMissingSession(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_participants, status FROM live_sessions WHERE id = (.+) FOR UPDATE").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Register(context.Background(), "missing", "u1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnregisterNotRegistered(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("DELETE FROM session_registrations").
		WithArgs("s1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Unregister(context.Background(), "s1", "u1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionDefaultsToScheduled(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO live_sessions").WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.LiveSession{
		Title:           "Greetings and Introductions",
		TeacherID:       "t1",
		DurationMinutes: 60,
		MaxParticipants: 20,
		SessionType:     "group",
	}
	err := repo.Create(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, models.SessionScheduled, session.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
