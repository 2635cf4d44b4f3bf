package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TravisChandler1/ewaede/internal/models"
)

func TestCreateApplicationDefaultsToPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO teacher_applications").WillReturnResult(sqlmock.NewResult(1, 1))

	app := &models.TeacherApplication{
		UserID:          "u1",
		FullName:        "Adaeze Okafor",
		Email:           "adaeze@example.com",
		Qualifications:  "BA Linguistics",
		ExperienceYears: 4,
		CoverLetter:     "I want to teach Yoruba.",
	}
	err := repo.Create(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.False(t, app.AppliedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveByUserNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM teacher_applications ta WHERE ta.user_id").
		WithArgs("u1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByUser(context.Background(), "u1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReview(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	reason := "Insufficient experience"
	now := time.Now().UTC()
	mock.ExpectExec("UPDATE teacher_applications SET status").
		WithArgs("a1", models.ApplicationRejected, "admin1", &reason, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateReview(context.Background(), "a1", models.ApplicationRejected, "admin1", &reason, now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListApplicationsFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	now := time.Now()
	cols := []string{"id", "user_id", "full_name", "email", "qualifications", "experience_years", "teaching_subjects", "cv_url", "cover_letter", "status", "rejection_reason", "applied_at", "reviewed_at", "reviewed_by", "reviewer_name"}
	listRows := sqlmock.NewRows(cols).
		AddRow("a1", "u1", "Adaeze Okafor", "adaeze@example.com", "BA", 4, "{grammar}", nil, "letter", string(models.ApplicationPending), nil, now, nil, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM teacher_applications ta LEFT JOIN user_profiles rp").
		WithArgs(models.ApplicationPending).
		WillReturnRows(listRows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM teacher_applications ta`).
		WithArgs(models.ApplicationPending).
		WillReturnRows(countRows)

	status := models.ApplicationPending
	apps, total, err := repo.List(context.Background(), models.ApplicationFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
