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

type mockGroupRepo struct {
	groups      map[string]*models.StudyGroup
	memberships map[string]map[string]models.MembershipRole
	discussions map[string][]models.GroupDiscussion
}

func (m *mockGroupRepo) Create(ctx context.Context, group *models.StudyGroup) error {
	if m.groups == nil {
		m.groups = make(map[string]*models.StudyGroup)
	}
	if group.ID == "" {
		group.ID = "g-" + group.Name
	}
	copy := *group
	m.groups[group.ID] = &copy
	m.addMember(group.ID, group.CreatorID, models.MemberRoleAdmin)
	return nil
}

func (m *mockGroupRepo) addMember(groupID, userID string, role models.MembershipRole) {
	if m.memberships == nil {
		m.memberships = make(map[string]map[string]models.MembershipRole)
	}
	if m.memberships[groupID] == nil {
		m.memberships[groupID] = make(map[string]models.MembershipRole)
	}
	m.memberships[groupID][userID] = role
}

func (m *mockGroupRepo) FindSummaryByID(ctx context.Context, id, viewerID string) (*models.GroupSummary, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	_, isMember := m.memberships[id][viewerID]
	return &models.GroupSummary{
		StudyGroup:  *g,
		MemberCount: len(m.memberships[id]),
		IsMember:    isMember,
	}, nil
}

func (m *mockGroupRepo) ListJoined(ctx context.Context, viewerID string) ([]models.GroupSummary, error) {
	return nil, nil
}

func (m *mockGroupRepo) ListAvailable(ctx context.Context, viewerID string) ([]models.GroupSummary, error) {
	return nil, nil
}

func (m *mockGroupRepo) ListCreated(ctx context.Context, creatorID string) ([]models.GroupSummary, error) {
	return nil, nil
}

func (m *mockGroupRepo) Join(ctx context.Context, groupID, userID string) (*models.GroupMembership, error) {
	g, ok := m.groups[groupID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if !g.IsPublic {
		return nil, repository.ErrNotJoinable
	}
	if _, exists := m.memberships[groupID][userID]; exists {
		return nil, repository.ErrDuplicateMember
	}
	if len(m.memberships[groupID]) >= g.MaxMembers {
		return nil, repository.ErrCapacityFull
	}
	m.addMember(groupID, userID, models.MemberRoleMember)
	return &models.GroupMembership{GroupID: groupID, UserID: userID, Role: models.MemberRoleMember, JoinedAt: time.Now()}, nil
}

func (m *mockGroupRepo) Leave(ctx context.Context, groupID, userID string) error {
	if _, exists := m.memberships[groupID][userID]; !exists {
		return sql.ErrNoRows
	}
	delete(m.memberships[groupID], userID)
	return nil
}

func (m *mockGroupRepo) FindMembership(ctx context.Context, groupID, userID string) (*models.GroupMembership, error) {
	role, exists := m.memberships[groupID][userID]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return &models.GroupMembership{GroupID: groupID, UserID: userID, Role: role}, nil
}

func (m *mockGroupRepo) Members(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	var members []models.GroupMember
	for userID, role := range m.memberships[groupID] {
		members = append(members, models.GroupMember{
			GroupMembership: models.GroupMembership{GroupID: groupID, UserID: userID, Role: role},
		})
	}
	return members, nil
}

func (m *mockGroupRepo) CreateDiscussion(ctx context.Context, post *models.GroupDiscussion) error {
	if m.discussions == nil {
		m.discussions = make(map[string][]models.GroupDiscussion)
	}
	post.ID = "d-1"
	post.CreatedAt = time.Now()
	m.discussions[post.GroupID] = append(m.discussions[post.GroupID], *post)
	return nil
}

func (m *mockGroupRepo) Discussions(ctx context.Context, groupID string, limit int) ([]models.GroupDiscussion, error) {
	return m.discussions[groupID], nil
}

func newGroupService(repo *mockGroupRepo) *GroupService {
	return NewGroupService(repo, validator.New(), zap.NewNop())
}

func createdGroup(t *testing.T, svc *GroupService, creatorID string, maxMembers int, public bool) *models.StudyGroup {
	t.Helper()
	group, err := svc.Create(context.Background(), creatorID, CreateGroupRequest{
		Name:       "Proverbs circle",
		MaxMembers: maxMembers,
		IsPublic:   &public,
	})
	require.NoError(t, err)
	return group
}

func TestCreateGroupMakesCreatorAdmin(t *testing.T) {
	repo := &mockGroupRepo{}
	svc := newGroupService(repo)

	group := createdGroup(t, svc, "u1", 5, true)

	membership, err := repo.FindMembership(context.Background(), group.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.MemberRoleAdmin, membership.Role)
}

func TestJoinGroup(t *testing.T) {
	repo := &mockGroupRepo{}
	svc := newGroupService(repo)
	group := createdGroup(t, svc, "u1", 5, true)

	membership, err := svc.Join(context.Background(), group.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, models.MemberRoleMember, membership.Role)
}

func TestJoinFullGroupConflict(t *testing.T) {
	repo := &mockGroupRepo{}
	svc := newGroupService(repo)
	group := createdGroup(t, svc, "u1", 2, true)

	_, err := svc.Join(context.Background(), group.ID, "u2")
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), group.ID, "u3")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestJoinPrivateGroupNotFound(t *testing.T) {
	repo := &mockGroupRepo{}
	svc := newGroupService(repo)
	group := createdGroup(t, svc, "u1", 5, false)

	_, err := svc.Join(context.Background(), group.ID, "u2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestJoinTwiceConflict(t *testing.T) {
	repo := &mockGroupRepo{}
	svc := newGroupService(repo)
	group := createdGroup(t, svc, "u1", 5, true)

	_, err := svc.Join(context.Background(), group.ID, "u2")
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), group.ID, "u2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCreatorCannotLeaveOwnGroup(t *testing.T) {
	repo := &mockGroupRepo{}
	svc := newGroupService(repo)
	group := createdGroup(t, svc, "u1", 5, true)

	err := svc.Leave(context.Background(), group.ID, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestLeaveGroup(t *testing.T) {
	repo := &mockGroupRepo{}
	svc := newGroupService(repo)
	group := createdGroup(t, svc, "u1", 5, true)

	_, err := svc.Join(context.Background(), group.ID, "u2")
	require.NoError(t, err)

	require.NoError(t, svc.Leave(context.Background(), group.ID, "u2"))

	_, err = repo.FindMembership(context.Background(), group.ID, "u2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDiscussionsRequireMembership(t *testing.T) {
	repo := &mockGroupRepo{}
	svc := newGroupService(repo)
	group := createdGroup(t, svc, "u1", 5, true)

	_, err := svc.Discussions(context.Background(), group.ID, "outsider", 50)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.PostDiscussion(context.Background(), group.ID, "outsider", PostDiscussionRequest{Content: "hello"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPostAndListDiscussions(t *testing.T) {
	repo := &mockGroupRepo{}
	svc := newGroupService(repo)
	group := createdGroup(t, svc, "u1", 5, true)

	post, err := svc.PostDiscussion(context.Background(), group.ID, "u1", PostDiscussionRequest{Content: "Ẹ káàárọ̀!"})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)

	posts, err := svc.Discussions(context.Background(), group.ID, "u1", 50)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Ẹ káàárọ̀!", posts[0].Content)
}

func TestGetGroupNotFound(t *testing.T) {
	repo := &mockGroupRepo{}
	svc := newGroupService(repo)

	_, err := svc.Get(context.Background(), "missing", "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
