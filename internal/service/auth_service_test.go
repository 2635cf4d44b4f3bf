package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/TravisChandler1/ewaede/internal/models"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
)

type mockAuthUserRepo struct {
	users         map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	auditLogs     []*models.AuditLog
	revokedAll    []string
}

func (m *mockAuthUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockAuthUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if u, ok := m.users[id]; ok {
		u.PasswordHash = passwordHash
		return nil
	}
	return sql.ErrNoRows
}

func (m *mockAuthUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedAll = append(m.revokedAll, userID)
	return nil
}

func (m *mockAuthUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	copy := *token
	m.refreshTokens[token.Token] = &copy
	return nil
}

func (m *mockAuthUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := m.refreshTokens[token]; ok {
		copy := *rt
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, rt := range m.refreshTokens {
		if rt.ID == id {
			rt.Revoked = true
			rt.RevokedAt = &revokedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockAuthUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockAuthApplicationRepo struct {
	latest map[string]*models.TeacherApplication
}

func (m *mockAuthApplicationRepo) FindLatestByUser(ctx context.Context, userID string) (*models.TeacherApplication, error) {
	if app, ok := m.latest[userID]; ok {
		copy := *app
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func authTestConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "ewaede-test",
	}
}

func hashedUser(id, email, password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &models.User{ID: id, Email: email, PasswordHash: string(hash)}
}

func newAuthService(users *mockAuthUserRepo, profiles *mockProfileRepo, apps *mockAuthApplicationRepo) *AuthService {
	return NewAuthService(users, profiles, apps, validator.New(), zap.NewNop(), authTestConfig())
}

func TestRegisterCreatesStudentProfile(t *testing.T) {
	users := &mockAuthUserRepo{}
	profiles := &mockProfileRepo{profiles: make(map[string]*models.UserProfile)}
	svc := newAuthService(users, profiles, &mockAuthApplicationRepo{})

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "Ade@Example.com",
		Password: "secret1",
		FullName: "Ade Balogun",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.Equal(t, "ade@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	users := &mockAuthUserRepo{users: map[string]*models.User{"u1": hashedUser("u1", "ade@example.com", "secret1")}}
	profiles := &mockProfileRepo{profiles: make(map[string]*models.UserProfile)}
	svc := newAuthService(users, profiles, &mockAuthApplicationRepo{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "ade@example.com",
		Password: "secret1",
		FullName: "Ade Balogun",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLoginIssuesTokens(t *testing.T) {
	users := &mockAuthUserRepo{users: map[string]*models.User{"u1": hashedUser("u1", "ade@example.com", "secret1")}}
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	svc := newAuthService(users, profiles, &mockAuthApplicationRepo{})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "ade@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, users.auditLogs)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	users := &mockAuthUserRepo{users: map[string]*models.User{"u1": hashedUser("u1", "ade@example.com", "secret1")}}
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	svc := newAuthService(users, profiles, &mockAuthApplicationRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ade@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccountForbidden(t *testing.T) {
	users := &mockAuthUserRepo{users: map[string]*models.User{"u1": hashedUser("u1", "ade@example.com", "secret1")}}
	profile := studentProfile("u1")
	profile.IsActive = false
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": profile}}
	svc := newAuthService(users, profiles, &mockAuthApplicationRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ade@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestLoginTeacherGatePendingApplication(t *testing.T) {
	users := &mockAuthUserRepo{users: map[string]*models.User{"u1": hashedUser("u1", "ade@example.com", "secret1")}}
	profile := studentProfile("u1")
	profile.Role = models.RoleTeacher
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": profile}}
	apps := &mockAuthApplicationRepo{latest: map[string]*models.TeacherApplication{
		"u1": {UserID: "u1", Status: models.ApplicationPending},
	}}
	svc := newAuthService(users, profiles, apps)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ade@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPendingApproval.Code, appErrors.FromError(err).Code)
}

func TestLoginTeacherGateRejectedIncludesReason(t *testing.T) {
	users := &mockAuthUserRepo{users: map[string]*models.User{"u1": hashedUser("u1", "ade@example.com", "secret1")}}
	profile := studentProfile("u1")
	profile.Role = models.RoleTeacher
	reason := "Qualifications could not be verified"
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": profile}}
	apps := &mockAuthApplicationRepo{latest: map[string]*models.TeacherApplication{
		"u1": {UserID: "u1", Status: models.ApplicationRejected, RejectionReason: &reason},
	}}
	svc := newAuthService(users, profiles, apps)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ade@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, strings.Contains(appErrors.FromError(err).Message, reason))
}

func TestLoginTeacherGateApprovedAllowed(t *testing.T) {
	users := &mockAuthUserRepo{users: map[string]*models.User{"u1": hashedUser("u1", "ade@example.com", "secret1")}}
	profile := studentProfile("u1")
	profile.Role = models.RoleTeacher
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": profile}}
	apps := &mockAuthApplicationRepo{latest: map[string]*models.TeacherApplication{
		"u1": {UserID: "u1", Status: models.ApplicationApproved},
	}}
	svc := newAuthService(users, profiles, apps)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "ade@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, resp.User.Role)
}

func TestRefreshTokenRotates(t *testing.T) {
	users := &mockAuthUserRepo{users: map[string]*models.User{"u1": hashedUser("u1", "ade@example.com", "secret1")}}
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	svc := newAuthService(users, profiles, &mockAuthApplicationRepo{})

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ade@example.com", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, users.refreshTokens[login.RefreshToken].Revoked)
}

func TestRefreshRevokedTokenUnauthorized(t *testing.T) {
	users := &mockAuthUserRepo{users: map[string]*models.User{"u1": hashedUser("u1", "ade@example.com", "secret1")}}
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	svc := newAuthService(users, profiles, &mockAuthApplicationRepo{})

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ade@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	users := &mockAuthUserRepo{users: map[string]*models.User{"u1": hashedUser("u1", "ade@example.com", "secret1")}}
	profiles := &mockProfileRepo{profiles: map[string]*models.UserProfile{"u1": studentProfile("u1")}}
	svc := newAuthService(users, profiles, &mockAuthApplicationRepo{})

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "secret1", NewPassword: "secret2"})
	require.NoError(t, err)
	assert.Contains(t, users.revokedAll, "u1")
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(&mockAuthUserRepo{}, &mockProfileRepo{}, &mockAuthApplicationRepo{})
	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
