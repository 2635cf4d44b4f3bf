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

type mockBookClubRepo struct {
	clubs       map[string]*models.BookClub
	memberships map[string]map[string]*models.BookClubMembership
}

func (m *mockBookClubRepo) Create(ctx context.Context, club *models.BookClub) error {
	if m.clubs == nil {
		m.clubs = make(map[string]*models.BookClub)
	}
	if club.ID == "" {
		club.ID = "c-" + club.BookTitle
	}
	copy := *club
	m.clubs[club.ID] = &copy
	m.addMember(club.ID, club.CreatorID)
	return nil
}

func (m *mockBookClubRepo) addMember(clubID, userID string) *models.BookClubMembership {
	if m.memberships == nil {
		m.memberships = make(map[string]map[string]*models.BookClubMembership)
	}
	if m.memberships[clubID] == nil {
		m.memberships[clubID] = make(map[string]*models.BookClubMembership)
	}
	membership := &models.BookClubMembership{BookClubID: clubID, UserID: userID, JoinedAt: time.Now()}
	m.memberships[clubID][userID] = membership
	return membership
}

func (m *mockBookClubRepo) FindSummaryByID(ctx context.Context, id, viewerID string) (*models.BookClubSummary, error) {
	club, ok := m.clubs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	_, isMember := m.memberships[id][viewerID]
	return &models.BookClubSummary{
		BookClub:    *club,
		MemberCount: len(m.memberships[id]),
		IsMember:    isMember,
	}, nil
}

func (m *mockBookClubRepo) ListActive(ctx context.Context, viewerID string) ([]models.BookClubSummary, error) {
	return nil, nil
}

func (m *mockBookClubRepo) ListJoined(ctx context.Context, viewerID string) ([]models.BookClubSummary, error) {
	return nil, nil
}

func (m *mockBookClubRepo) Join(ctx context.Context, clubID, userID string) (*models.BookClubMembership, error) {
	club, ok := m.clubs[clubID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if !club.IsActive {
		return nil, repository.ErrNotJoinable
	}
	if _, exists := m.memberships[clubID][userID]; exists {
		return nil, repository.ErrDuplicateMember
	}
	if len(m.memberships[clubID]) >= club.MaxMembers {
		return nil, repository.ErrCapacityFull
	}
	return m.addMember(clubID, userID), nil
}

func (m *mockBookClubRepo) Leave(ctx context.Context, clubID, userID string) error {
	if _, exists := m.memberships[clubID][userID]; !exists {
		return sql.ErrNoRows
	}
	delete(m.memberships[clubID], userID)
	return nil
}

func (m *mockBookClubRepo) FindMembership(ctx context.Context, clubID, userID string) (*models.BookClubMembership, error) {
	membership, exists := m.memberships[clubID][userID]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return membership, nil
}

func (m *mockBookClubRepo) UpdateProgress(ctx context.Context, clubID, userID string, chapter int) error {
	membership, exists := m.memberships[clubID][userID]
	if !exists {
		return sql.ErrNoRows
	}
	membership.ProgressChapter = chapter
	now := time.Now()
	membership.LastUpdated = &now
	return nil
}

func (m *mockBookClubRepo) Members(ctx context.Context, clubID string) ([]models.BookClubMember, error) {
	var members []models.BookClubMember
	for _, membership := range m.memberships[clubID] {
		members = append(members, models.BookClubMember{BookClubMembership: *membership})
	}
	return members, nil
}

func (m *mockBookClubRepo) CreateDiscussion(ctx context.Context, post *models.BookClubDiscussion) error {
	post.ID = "d-1"
	post.CreatedAt = time.Now()
	return nil
}

func (m *mockBookClubRepo) Discussions(ctx context.Context, clubID string, limit int) ([]models.BookClubDiscussion, error) {
	return nil, nil
}

func newBookClubService(repo *mockBookClubRepo) *BookClubService {
	return NewBookClubService(repo, validator.New(), zap.NewNop())
}

func createdClub(t *testing.T, svc *BookClubService, creatorID string, maxMembers, chapters int) *models.BookClub {
	t.Helper()
	club, err := svc.Create(context.Background(), creatorID, CreateBookClubRequest{
		BookTitle:       "Ogboju Ode Ninu Igbo Irunmale",
		Author:          "D. O. Fagunwa",
		TotalChapters:   chapters,
		ReadingSchedule: "weekly",
		DiscussionDay:   "saturday",
		MaxMembers:      maxMembers,
	})
	require.NoError(t, err)
	return club
}

func TestCreateBookClubAddsCreator(t *testing.T) {
	repo := &mockBookClubRepo{}
	svc := newBookClubService(repo)

	club := createdClub(t, svc, "u1", 10, 12)
	assert.True(t, club.IsActive)
	assert.Equal(t, 0, club.CurrentChapter)

	_, err := repo.FindMembership(context.Background(), club.ID, "u1")
	require.NoError(t, err)
}

func TestJoinInactiveClubConflict(t *testing.T) {
	repo := &mockBookClubRepo{}
	svc := newBookClubService(repo)
	club := createdClub(t, svc, "u1", 10, 12)
	repo.clubs[club.ID].IsActive = false

	_, err := svc.Join(context.Background(), club.ID, "u2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestJoinFullClubConflict(t *testing.T) {
	repo := &mockBookClubRepo{}
	svc := newBookClubService(repo)
	club := createdClub(t, svc, "u1", 2, 12)

	_, err := svc.Join(context.Background(), club.ID, "u2")
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), club.ID, "u3")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateProgress(t *testing.T) {
	repo := &mockBookClubRepo{}
	svc := newBookClubService(repo)
	club := createdClub(t, svc, "u1", 10, 12)

	require.NoError(t, svc.UpdateProgress(context.Background(), club.ID, "u1", UpdateProgressRequest{Chapter: 4}))

	membership, err := repo.FindMembership(context.Background(), club.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, membership.ProgressChapter)
	assert.NotNil(t, membership.LastUpdated)
}

func TestUpdateProgressBeyondTotalRejected(t *testing.T) {
	repo := &mockBookClubRepo{}
	svc := newBookClubService(repo)
	club := createdClub(t, svc, "u1", 10, 12)

	err := svc.UpdateProgress(context.Background(), club.ID, "u1", UpdateProgressRequest{Chapter: 13})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateProgressNonMemberForbidden(t *testing.T) {
	repo := &mockBookClubRepo{}
	svc := newBookClubService(repo)
	club := createdClub(t, svc, "u1", 10, 12)

	err := svc.UpdateProgress(context.Background(), club.ID, "outsider", UpdateProgressRequest{Chapter: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestClubMembersRequireMembership(t *testing.T) {
	repo := &mockBookClubRepo{}
	svc := newBookClubService(repo)
	club := createdClub(t, svc, "u1", 10, 12)

	_, err := svc.Members(context.Background(), club.ID, "outsider")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	members, err := svc.Members(context.Background(), club.ID, "u1")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestPostClubDiscussionWithChapter(t *testing.T) {
	repo := &mockBookClubRepo{}
	svc := newBookClubService(repo)
	club := createdClub(t, svc, "u1", 10, 12)

	chapter := 3
	post, err := svc.PostDiscussion(context.Background(), club.ID, "u1", PostClubDiscussionRequest{
		Content:       "The hunter meets Agbako in this chapter.",
		ChapterNumber: &chapter,
	})
	require.NoError(t, err)
	require.NotNil(t, post.ChapterNumber)
	assert.Equal(t, 3, *post.ChapterNumber)
}
