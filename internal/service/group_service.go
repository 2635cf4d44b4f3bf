package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/TravisChandler1/ewaede/internal/models"
	"github.com/TravisChandler1/ewaede/internal/repository"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
)

type groupRepository interface {
	Create(ctx context.Context, group *models.StudyGroup) error
	FindSummaryByID(ctx context.Context, id, viewerID string) (*models.GroupSummary, error)
	ListJoined(ctx context.Context, viewerID string) ([]models.GroupSummary, error)
	ListAvailable(ctx context.Context, viewerID string) ([]models.GroupSummary, error)
	ListCreated(ctx context.Context, creatorID string) ([]models.GroupSummary, error)
	Join(ctx context.Context, groupID, userID string) (*models.GroupMembership, error)
	Leave(ctx context.Context, groupID, userID string) error
	FindMembership(ctx context.Context, groupID, userID string) (*models.GroupMembership, error)
	Members(ctx context.Context, groupID string) ([]models.GroupMember, error)
	CreateDiscussion(ctx context.Context, post *models.GroupDiscussion) error
	Discussions(ctx context.Context, groupID string, limit int) ([]models.GroupDiscussion, error)
}

// CreateGroupRequest is the payload for starting a study group.
type CreateGroupRequest struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	LearningLevel *string `json:"learning_level,omitempty"`
	IsPublic      *bool   `json:"is_public,omitempty"`
	MaxMembers    int     `json:"max_members" validate:"required,gt=1"`
}

// PostDiscussionRequest is the payload for a discussion post.
type PostDiscussionRequest struct {
	Content string `json:"content" validate:"required"`
}

// GroupService implements study group membership and discussion.
type GroupService struct {
	repo      groupRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService constructs a GroupService instance.
func NewGroupService(repo groupRepository, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GroupService{repo: repo, validator: validate, logger: logger}
}

// Create starts a group. The creator automatically becomes its admin member.
func (s *GroupService) Create(ctx context.Context, creatorID string, req CreateGroupRequest) (*models.StudyGroup, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	group := &models.StudyGroup{
		Name:          req.Name,
		Description:   req.Description,
		CreatorID:     creatorID,
		LearningLevel: req.LearningLevel,
		IsPublic:      isPublic,
		MaxMembers:    req.MaxMembers,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	return group, nil
}

// List returns one of the three group listings for the viewer.
func (s *GroupService) List(ctx context.Context, viewerID string, listType models.GroupListType) ([]models.GroupSummary, error) {
	var (
		groups []models.GroupSummary
		err    error
	)
	switch listType {
	case models.GroupListJoined:
		groups, err = s.repo.ListJoined(ctx, viewerID)
	case models.GroupListCreated:
		groups, err = s.repo.ListCreated(ctx, viewerID)
	default:
		groups, err = s.repo.ListAvailable(ctx, viewerID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	return groups, nil
}

// Get returns a group summary as seen by the viewer.
func (s *GroupService) Get(ctx context.Context, id, viewerID string) (*models.GroupSummary, error) {
	summary, err := s.repo.FindSummaryByID(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return summary, nil
}

// Join adds the viewer as a member. Capacity and duplicate checks happen
// atomically in the repository.
func (s *GroupService) Join(ctx context.Context, groupID, userID string) (*models.GroupMembership, error) {
	membership, err := s.repo.Join(ctx, groupID, userID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		case errors.Is(err, repository.ErrCapacityFull):
			return nil, appErrors.Clone(appErrors.ErrConflict, "group is full")
		case errors.Is(err, repository.ErrDuplicateMember):
			return nil, appErrors.Clone(appErrors.ErrConflict, "you are already a member of this group")
		case errors.Is(err, repository.ErrNotJoinable):
			// Private groups are invisible to non-members.
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to join group")
	}
	return membership, nil
}

// Leave removes the viewer's membership. The creator cannot leave their own
// group.
func (s *GroupService) Leave(ctx context.Context, groupID, userID string) error {
	summary, err := s.Get(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if summary.CreatorID == userID {
		return appErrors.Clone(appErrors.ErrForbidden, "the creator cannot leave their own group")
	}

	if err := s.repo.Leave(ctx, groupID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "you are not a member of this group")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to leave group")
	}
	return nil
}

// Members lists the group roster. Members only.
func (s *GroupService) Members(ctx context.Context, groupID, viewerID string) ([]models.GroupMember, error) {
	if err := s.requireMembership(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	members, err := s.repo.Members(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}
	return members, nil
}

// Discussions lists the group feed. Members only.
func (s *GroupService) Discussions(ctx context.Context, groupID, viewerID string, limit int) ([]models.GroupDiscussion, error) {
	if err := s.requireMembership(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	posts, err := s.repo.Discussions(ctx, groupID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list discussions")
	}
	return posts, nil
}

// PostDiscussion appends a post to the group feed. Members only.
func (s *GroupService) PostDiscussion(ctx context.Context, groupID, userID string, req PostDiscussionRequest) (*models.GroupDiscussion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid discussion payload")
	}
	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}

	post := &models.GroupDiscussion{
		GroupID: groupID,
		UserID:  userID,
		Content: req.Content,
	}
	if err := s.repo.CreateDiscussion(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to post discussion")
	}
	return post, nil
}

func (s *GroupService) requireMembership(ctx context.Context, groupID, userID string) error {
	if _, err := s.repo.FindMembership(ctx, groupID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "you are not a member of this group")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	return nil
}
