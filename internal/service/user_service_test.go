package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TravisChandler1/ewaede/internal/models"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
)

type mockAccountRepo struct {
	mockAuditRepo
	revoked []string
}

func (m *mockAccountRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revoked = append(m.revoked, userID)
	return nil
}

func newUserService(profiles *mockProfileRepo, accounts *mockAccountRepo) *UserService {
	return NewUserService(profiles, accounts, validator.New(), zap.NewNop())
}

func TestGetProfileReturnsNilWhenMissing(t *testing.T) {
	svc := newUserService(&mockProfileRepo{}, &mockAccountRepo{})
	profile, err := svc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestUpsertProfileCreatesStudent(t *testing.T) {
	profiles := &mockProfileRepo{profiles: make(map[string]*models.UserProfile)}
	accounts := &mockAccountRepo{}
	svc := newUserService(profiles, accounts)

	level := "beginner"
	profile, err := svc.UpsertProfile(context.Background(), "u1", "ade@example.com", UpdateProfileRequest{
		FullName:      "Ade Balogun",
		LearningLevel: &level,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, profile.Role)
	assert.True(t, profile.IsActive)
	assert.NotEmpty(t, accounts.logs)
}

func TestUpsertProfileCannotChangeRole(t *testing.T) {
	existing := studentProfile("u1")
	existing.Role = models.RoleTeacher
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": existing}}
	svc := newUserService(profiles, &mockAccountRepo{})

	profile, err := svc.UpsertProfile(context.Background(), "u1", existing.Email, UpdateProfileRequest{FullName: "New Name"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, profile.Role)
	assert.Equal(t, "New Name", profile.FullName)
}

func TestDeactivateRetainsProfileRow(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	accounts := &mockAccountRepo{}
	svc := newUserService(profiles, accounts)

	err := svc.Deactivate(context.Background(), "admin1", "u1")
	require.NoError(t, err)
	require.Contains(t, profiles.profiles, "u1")
	assert.False(t, profiles.profiles["u1"].IsActive)
	assert.Contains(t, accounts.revoked, "u1")
	assert.NotEmpty(t, accounts.logs)
}

func TestDeactivateSelfForbidden(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"admin1": studentProfile("admin1")}}
	svc := newUserService(profiles, &mockAccountRepo{})

	err := svc.Deactivate(context.Background(), "admin1", "admin1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.True(t, profiles.profiles["admin1"].IsActive)
}

func TestAdminUpdateAuditsOldAndNewValues(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	accounts := &mockAccountRepo{}
	svc := newUserService(profiles, accounts)

	newName := "Adaeze Eze"
	_, err := svc.AdminUpdate(context.Background(), "admin1", "u1", AdminUpdateUserRequest{FullName: &newName})
	require.NoError(t, err)

	require.NotEmpty(t, accounts.logs)
	entry := accounts.logs[len(accounts.logs)-1]

	var oldValues, newValues map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.OldValues, &oldValues))
	require.NoError(t, json.Unmarshal(entry.NewValues, &newValues))
	assert.Equal(t, "Adaeze Okafor", oldValues["full_name"])
	assert.Equal(t, "Adaeze Eze", newValues["full_name"])
}

func TestAdminUpdateSelfDeactivationForbidden(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"admin1": studentProfile("admin1")}}
	svc := newUserService(profiles, &mockAccountRepo{})

	inactive := false
	_, err := svc.AdminUpdate(context.Background(), "admin1", "admin1", AdminUpdateUserRequest{IsActive: &inactive})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
