package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TravisChandler1/ewaede/internal/models"
)

func TestCreateGroupAddsCreatorMembership(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO study_groups").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO group_memberships").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	group := &models.StudyGroup{
		Name:       "Proverb Circle",
		CreatorID:  "u1",
		IsPublic:   true,
		MaxMembers: 15,
	}
	err := repo.Create(context.Background(), group)
	require.NoError(t, err)
	assert.NotEmpty(t, group.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRejectsFullGroup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_members, is_public FROM study_groups WHERE id = (.+) FOR UPDATE").
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"max_members", "is_public"}).AddRow(10, true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM group_memberships`).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), "g1", "u2")
	assert.ErrorIs(t, err, ErrCapacityFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRejectsPrivateGroup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_members, is_public FROM study_groups WHERE id = (.+) FOR UPDATE").
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"max_members", "is_public"}).AddRow(10, false))
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), "g1", "u2")
	assert.ErrorIs(t, err, ErrNotJoinable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinGrantsMemberRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_members, is_public FROM study_groups WHERE id = (.+) FOR UPDATE").
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"max_members", "is_public"}).AddRow(10, true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM group_memberships`).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec("INSERT INTO group_memberships").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	membership, err := repo.Join(context.Background(), "g1", "u2")
	require.NoError(t, err)
	assert.Equal(t, models.MemberRoleMember, membership.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
